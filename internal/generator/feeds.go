package generator

import (
	"context"
	"fmt"
	"html"
	"path"
	"sort"
	"strings"
	"time"
)

const maxFeedItems = 100

type feedItem struct {
	Title       string
	Summary     string
	Link        string
	GUID        string
	Tags        []string
	PublishedAt time.Time
	UpdatedAt   time.Time
}

type feedDocument struct {
	Locale   LocaleSpec
	HomeLink string
	FeedLink string
	AtomLink string
	Updated  time.Time
	Items    []feedItem
}

// buildFeedDocuments assembles one RSS/Atom document per locale from the
// pages of the current build. Every timestamp comes from the posts; the
// build clock never leaks into feed bytes.
func (s *service) buildFeedDocuments(buildCtx *BuildContext) []feedDocument {
	if buildCtx == nil || len(buildCtx.Pages) == 0 {
		return nil
	}

	byLocale := make(map[string]*feedDocument)
	seen := make(map[string]map[string]struct{})

	for _, data := range buildCtx.Pages {
		if data == nil || data.Post == nil {
			continue
		}
		if data.Kind == PageKindHome {
			continue
		}
		permalink := strings.TrimSpace(data.Post.Permalink)
		if permalink == "" {
			continue
		}

		localeCode := data.Locale.Code
		doc := byLocale[localeCode]
		if doc == nil {
			doc = &feedDocument{Locale: data.Locale}
			doc.HomeLink = s.routeURL(buildCtx, localeCode, routeHome)
			doc.FeedLink = s.routeURL(buildCtx, localeCode, routeFeed)
			doc.AtomLink = s.routeURL(buildCtx, localeCode, routeAtom)
			byLocale[localeCode] = doc
			seen[localeCode] = map[string]struct{}{}
		}

		guid := fmt.Sprintf("%s:%s", data.Post.ID.String(), localeCode)
		if _, ok := seen[localeCode][guid]; ok {
			continue
		}
		seen[localeCode][guid] = struct{}{}

		title := strings.TrimSpace(data.Post.Title)
		if title == "" {
			title = permalink
		}

		publishedAt := timePtrOrZero(data.Post.PublishedAt)
		updatedAt := data.Post.UpdatedAt.UTC()
		if updatedAt.IsZero() {
			updatedAt = publishedAt
		}

		doc.Items = append(doc.Items, feedItem{
			Title:       title,
			Summary:     normalizeWhitespace(data.Post.Summary),
			Link:        s.postURL(buildCtx, localeCode, permalink),
			GUID:        guid,
			Tags:        append([]string(nil), data.Post.Tags...),
			PublishedAt: publishedAt,
			UpdatedAt:   updatedAt,
		})
	}

	docs := make([]feedDocument, 0, len(byLocale))
	for _, doc := range byLocale {
		if len(doc.Items) == 0 {
			continue
		}
		sort.Slice(doc.Items, func(i, j int) bool {
			left := doc.Items[i].PublishedAt
			if left.IsZero() {
				left = doc.Items[i].UpdatedAt
			}
			right := doc.Items[j].PublishedAt
			if right.IsZero() {
				right = doc.Items[j].UpdatedAt
			}
			if left.Equal(right) {
				return doc.Items[i].GUID < doc.Items[j].GUID
			}
			return left.After(right)
		})
		if len(doc.Items) > maxFeedItems {
			doc.Items = append([]feedItem(nil), doc.Items[:maxFeedItems]...)
		}
		for _, item := range doc.Items {
			doc.Updated = maxTime(doc.Updated, item.PublishedAt, item.UpdatedAt)
		}
		docs = append(docs, *doc)
	}

	sort.Slice(docs, func(i, j int) bool {
		return docs[i].Locale.Code < docs[j].Locale.Code
	})
	return docs
}

func (s *service) routeURL(buildCtx *BuildContext, locale, route string) string {
	if buildCtx != nil && buildCtx.Routes != nil {
		if url, err := buildCtx.Routes.build(locale, route); err == nil {
			return url
		}
	}
	return baseURLWithFallback(s.cfg.BaseURL)
}

func (s *service) postURL(buildCtx *BuildContext, locale, permalink string) string {
	if buildCtx != nil && buildCtx.Routes != nil {
		if url, err := buildCtx.Routes.Post(locale, permalink); err == nil {
			return url
		}
	}
	return absoluteURL(s.cfg.BaseURL, permalink)
}

func (s *service) writeFeeds(
	ctx context.Context,
	writer artifactWriter,
	siteMeta SiteMetadata,
	docs []feedDocument,
	baseDir string,
) (int, error) {
	if len(docs) == 0 {
		return 0, nil
	}
	dirCache := map[string]struct{}{}
	if baseDir != "" {
		dirCache[baseDir] = struct{}{}
		if err := writer.EnsureDir(ctx, baseDir); err != nil {
			return 0, err
		}
	}

	total := 0
	for _, doc := range docs {
		if len(doc.Items) == 0 {
			continue
		}

		rssRel := "feed.xml"
		atomRel := "atom.xml"
		if !doc.Locale.IsDefault {
			code := strings.ToLower(strings.TrimSpace(doc.Locale.Code))
			rssRel = path.Join(code, rssRel)
			atomRel = path.Join(code, atomRel)
		}

		rssContent := buildRSSFeed(siteMeta, doc)
		rssPath := joinOutputPath(baseDir, rssRel)
		if err := ensureDir(ctx, writer, dirCache, path.Dir(rssPath)); err != nil {
			return total, err
		}
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:        rssPath,
			Content:     strings.NewReader(rssContent),
			Size:        int64(len(rssContent)),
			Locale:      doc.Locale.Code,
			Category:    categoryFeed,
			ContentType: "application/rss+xml",
			Checksum:    computeHashFromString(rssContent),
			Metadata:    feedMetadata(doc.Locale.Code, "rss", doc.Updated),
		}); err != nil {
			return total, err
		}
		total++

		atomContent := buildAtomFeed(siteMeta, doc)
		atomPath := joinOutputPath(baseDir, atomRel)
		if err := ensureDir(ctx, writer, dirCache, path.Dir(atomPath)); err != nil {
			return total, err
		}
		if err := writer.WriteFile(ctx, writeFileRequest{
			Path:        atomPath,
			Content:     strings.NewReader(atomContent),
			Size:        int64(len(atomContent)),
			Locale:      doc.Locale.Code,
			Category:    categoryFeed,
			ContentType: "application/atom+xml",
			Checksum:    computeHashFromString(atomContent),
			Metadata:    feedMetadata(doc.Locale.Code, "atom", doc.Updated),
		}); err != nil {
			return total, err
		}
		total++
	}
	return total, nil
}

func buildRSSFeed(site SiteMetadata, doc feedDocument) string {
	title := feedTitleForLocale(site, doc.Locale)
	description := feedDescriptionForLocale(site, doc.Locale)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<rss version="2.0">` + "\n")
	builder.WriteString("  <channel>\n")
	builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(title)))
	builder.WriteString(fmt.Sprintf("    <link>%s</link>\n", escapeXML(doc.HomeLink)))
	builder.WriteString(fmt.Sprintf("    <description>%s</description>\n", escapeXML(description)))
	builder.WriteString(fmt.Sprintf("    <language>%s</language>\n", escapeXML(doc.Locale.Code)))
	if !doc.Updated.IsZero() {
		builder.WriteString(fmt.Sprintf("    <lastBuildDate>%s</lastBuildDate>\n", doc.Updated.UTC().Format(time.RFC1123Z)))
	}
	for _, item := range doc.Items {
		builder.WriteString("    <item>\n")
		builder.WriteString(fmt.Sprintf("      <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf("      <link>%s</link>\n", escapeXML(item.Link)))
		builder.WriteString(fmt.Sprintf("      <guid>%s</guid>\n", escapeXML(item.GUID)))
		pub := item.PublishedAt
		if pub.IsZero() {
			pub = item.UpdatedAt
		}
		if !pub.IsZero() {
			builder.WriteString(fmt.Sprintf("      <pubDate>%s</pubDate>\n", pub.UTC().Format(time.RFC1123Z)))
		}
		for _, tag := range item.Tags {
			if strings.TrimSpace(tag) == "" {
				continue
			}
			builder.WriteString(fmt.Sprintf("      <category>%s</category>\n", escapeXML(tag)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("      <description>%s</description>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("    </item>\n")
	}
	builder.WriteString("  </channel>\n")
	builder.WriteString(`</rss>` + "\n")
	return builder.String()
}

func buildAtomFeed(site SiteMetadata, doc feedDocument) string {
	title := feedTitleForLocale(site, doc.Locale)

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(fmt.Sprintf(`<feed xmlns="http://www.w3.org/2005/Atom" xml:lang="%s">`+"\n", escapeXMLAttr(doc.Locale.Code)))
	builder.WriteString(fmt.Sprintf("  <id>%s</id>\n", escapeXML(doc.AtomLink)))
	builder.WriteString(fmt.Sprintf("  <title>%s</title>\n", escapeXML(title)))
	if !doc.Updated.IsZero() {
		builder.WriteString(fmt.Sprintf("  <updated>%s</updated>\n", doc.Updated.UTC().Format(time.RFC3339)))
	}
	if author := strings.TrimSpace(site.Author); author != "" {
		builder.WriteString("  <author>\n")
		builder.WriteString(fmt.Sprintf("    <name>%s</name>\n", escapeXML(author)))
		builder.WriteString("  </author>\n")
	}
	builder.WriteString(fmt.Sprintf(`  <link rel="alternate" href="%s" />`+"\n", escapeXMLAttr(doc.HomeLink)))
	builder.WriteString(fmt.Sprintf(`  <link rel="self" href="%s" />`+"\n", escapeXMLAttr(doc.AtomLink)))
	for _, item := range doc.Items {
		builder.WriteString("  <entry>\n")
		builder.WriteString(fmt.Sprintf("    <id>%s</id>\n", escapeXML(item.GUID)))
		builder.WriteString(fmt.Sprintf("    <title>%s</title>\n", escapeXML(item.Title)))
		builder.WriteString(fmt.Sprintf(`    <link href="%s" />`+"\n", escapeXMLAttr(item.Link)))
		updated := item.UpdatedAt
		if updated.IsZero() {
			updated = item.PublishedAt
		}
		if !updated.IsZero() {
			builder.WriteString(fmt.Sprintf("    <updated>%s</updated>\n", updated.UTC().Format(time.RFC3339)))
		}
		if !item.PublishedAt.IsZero() {
			builder.WriteString(fmt.Sprintf("    <published>%s</published>\n", item.PublishedAt.UTC().Format(time.RFC3339)))
		}
		for _, tag := range item.Tags {
			if strings.TrimSpace(tag) == "" {
				continue
			}
			builder.WriteString(fmt.Sprintf(`    <category term="%s" />`+"\n", escapeXMLAttr(tag)))
		}
		if item.Summary != "" {
			builder.WriteString(fmt.Sprintf("    <summary>%s</summary>\n", escapeXML(item.Summary)))
		}
		builder.WriteString("  </entry>\n")
	}
	builder.WriteString(`</feed>` + "\n")
	return builder.String()
}

func feedMetadata(locale, feedType string, updated time.Time) map[string]string {
	meta := map[string]string{
		"feed_type": feedType,
	}
	if !updated.IsZero() {
		meta["updated"] = updated.UTC().Format(time.RFC3339)
	}
	if strings.TrimSpace(locale) != "" {
		meta["locale"] = locale
	}
	return meta
}

func feedTitleForLocale(site SiteMetadata, locale LocaleSpec) string {
	base := siteTitle(site)
	if locale.IsDefault || strings.TrimSpace(locale.Code) == "" {
		return base
	}
	return fmt.Sprintf("%s (%s)", base, strings.ToUpper(locale.Code))
}

func feedDescriptionForLocale(site SiteMetadata, locale LocaleSpec) string {
	if desc := strings.TrimSpace(site.Description); desc != "" {
		return desc
	}
	if locale.IsDefault {
		return "Latest posts"
	}
	return fmt.Sprintf("Latest posts for %s", strings.ToUpper(locale.Code))
}

func siteTitle(site SiteMetadata) string {
	if title := strings.TrimSpace(site.Title); title != "" {
		return title
	}
	base := strings.TrimSpace(site.BaseURL)
	if base != "" {
		return base
	}
	return "Site Feed"
}

func baseURLWithFallback(base string) string {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		return "http://localhost"
	}
	return trimmed
}

func absoluteURL(base, route string) string {
	targetBase := baseURLWithFallback(base)
	normalized := strings.TrimSpace(route)
	if normalized == "" {
		return targetBase
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	return targetBase + normalized
}

func timePtrOrZero(ts *time.Time) time.Time {
	if ts == nil {
		return time.Time{}
	}
	return ts.UTC()
}

func normalizeWhitespace(input string) string {
	if strings.TrimSpace(input) == "" {
		return ""
	}
	return strings.Join(strings.Fields(input), " ")
}

func escapeXML(value string) string {
	return html.EscapeString(value)
}

func escapeXMLAttr(value string) string {
	return html.EscapeString(value)
}
