package generator

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

type sitemapEntry struct {
	Location string
	LastMod  time.Time
}

// buildSitemap renders the sitemap XML for the given pages. Locations come
// from the route manager; lastmod comes from the post dates and is omitted
// when unknown so the build clock never shows up in the output.
func buildSitemap(routes *siteRoutes, pages []RenderedPage) string {
	entries := make([]sitemapEntry, 0, len(pages))
	seen := map[string]struct{}{}
	for _, page := range pages {
		location := sitemapLocation(routes, page)
		if location == "" {
			continue
		}
		if _, ok := seen[location]; ok {
			continue
		}
		seen[location] = struct{}{}
		entries = append(entries, sitemapEntry{
			Location: location,
			LastMod:  page.Metadata.LastModified,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].Location < entries[j].Location
	})

	var builder strings.Builder
	builder.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	builder.WriteString(`<urlset xmlns="http://www.sitemaps.org/schemas/sitemap/0.9">` + "\n")
	for _, entry := range entries {
		builder.WriteString("  <url>\n")
		builder.WriteString(fmt.Sprintf("    <loc>%s</loc>\n", escapeXML(entry.Location)))
		if !entry.LastMod.IsZero() {
			builder.WriteString(fmt.Sprintf("    <lastmod>%s</lastmod>\n", entry.LastMod.UTC().Format(time.RFC3339)))
		}
		builder.WriteString("  </url>\n")
	}
	builder.WriteString(`</urlset>` + "\n")
	return builder.String()
}

func sitemapLocation(routes *siteRoutes, page RenderedPage) string {
	permalink := strings.TrimSpace(page.Permalink)
	if permalink == "" {
		permalink = "/"
	}
	if routes != nil {
		if url, err := routes.Post(page.Locale, permalink); err == nil {
			return url
		}
	}
	return absoluteURL("", permalink)
}

func buildRobots(routes *siteRoutes, includeSitemap bool) string {
	var builder strings.Builder
	builder.WriteString("User-agent: *\n")
	builder.WriteString("Allow: /\n")
	if includeSitemap {
		sitemapURL := ""
		if routes != nil {
			sitemapURL, _ = routes.Sitemap()
		}
		if sitemapURL == "" {
			sitemapURL = absoluteURL("", "/sitemap.xml")
		}
		builder.WriteString("\n")
		builder.WriteString(fmt.Sprintf("Sitemap: %s\n", sitemapURL))
	}
	return builder.String()
}
