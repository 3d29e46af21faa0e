package generator

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/themes"
	"github.com/goliatone/go-press/pkg/interfaces"
	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"
)

var errPostsServiceRequired = errors.New("generator: posts service is required")

// BuildContext aggregates the localized page data required to execute a static build.
type BuildContext struct {
	GeneratedAt      time.Time
	ContentUpdatedAt time.Time
	DefaultLocale    string
	Locales          []LocaleSpec
	Pages            []*PageData
	Routes           *siteRoutes
	Options          BuildOptions
}

// LocaleSpec captures resolved locale information for a build.
type LocaleSpec struct {
	Code      string
	IsDefault bool
}

// PageData encapsulates resolved dependencies for a post/locale combination.
type PageData struct {
	Post           *interfaces.PostRecord
	Posts          []*interfaces.PostRecord
	Kind           PageKind
	Locale         LocaleSpec
	TemplateName   string
	Template       *themes.Template
	Theme          *themes.Theme
	ThemeSelection *gotheme.Selection
	Metadata       DependencyMetadata
}

// DependencyMetadata tracks hashes and timestamps for incremental builds.
type DependencyMetadata struct {
	Sources      map[string]string
	Hash         string
	LastModified time.Time
}

func (s *service) loadContext(ctx context.Context, opts BuildOptions) (*BuildContext, error) {
	if s.deps.Posts == nil {
		return nil, errPostsServiceRequired
	}

	locales := s.resolveLocales(opts)
	caches := newBuildCaches()

	theme, err := s.activeTheme(ctx, caches)
	if err != nil {
		return nil, err
	}

	var selection *gotheme.Selection
	if theme != nil && s.themeSelector != nil {
		// Themes without a manifest still render; they just lose tokens,
		// variants, and manifest-driven assets.
		if sel, selErr := s.themeSelector.Selection(theme, s.cfg.Theming.DefaultVariant); selErr == nil {
			selection = sel
		}
	}

	idFilter := buildIDFilter(opts.PostIDs)

	var (
		pageContexts     []*PageData
		contentUpdatedAt time.Time
	)

	for _, spec := range locales.ordered {
		records, err := s.deps.Posts.List(ctx, interfaces.PostListOptions{
			Locale:        spec.Code,
			IncludeDrafts: opts.Drafts,
		})
		if err != nil {
			return nil, err
		}

		ordered := orderPosts(records)
		listing := excludeHomePosts(ordered)

		for _, post := range ordered {
			if ts := postLastModified(post); ts.After(contentUpdatedAt) {
				contentUpdatedAt = ts
			}
		}

		for _, post := range ordered {
			kind := classifyPost(post)
			if len(idFilter) > 0 {
				if _, ok := idFilter[post.ID]; !ok {
					continue
				}
			}

			templateName, templateRecord, err := caches.resolveTemplate(ctx, s.deps.Themes, theme, layoutFor(post, kind))
			if err != nil {
				return nil, err
			}

			metadata := computeDependencyMetadata(post, kind, templateName, templateRecord, theme, listing)

			pageContexts = append(pageContexts, &PageData{
				Post:           post,
				Posts:          listing,
				Kind:           kind,
				Locale:         spec,
				TemplateName:   templateName,
				Template:       templateRecord,
				Theme:          theme,
				ThemeSelection: selection,
				Metadata:       metadata,
			})
		}
	}

	buildCtx := &BuildContext{
		GeneratedAt:      s.now().UTC(),
		ContentUpdatedAt: contentUpdatedAt,
		DefaultLocale:    locales.defaultCode,
		Locales:          locales.ordered,
		Pages:            pageContexts,
		Routes:           newSiteRoutes(s.cfg.BaseURL, locales.defaultCode, locales.ordered),
		Options:          opts,
	}
	return buildCtx, nil
}

type localeSet struct {
	ordered     []LocaleSpec
	defaultCode string
}

// resolveLocales expands the build and config locale lists into ordered
// specs. The default locale always renders first; a build scoped to explicit
// locales skips the default unless it is named.
func (s *service) resolveLocales(opts BuildOptions) localeSet {
	defaultLocale := strings.TrimSpace(s.cfg.DefaultLocale)
	if defaultLocale == "" {
		defaultLocale = "en"
	}

	requestedFromOpts := len(opts.Locales) > 0
	var baseRequested []string
	if requestedFromOpts {
		baseRequested = append([]string{}, opts.Locales...)
	} else if len(s.cfg.Locales) > 0 {
		baseRequested = append([]string{}, s.cfg.Locales...)
	}

	seen := map[string]struct{}{}
	var codes []string

	if !requestedFromOpts {
		seen[strings.ToLower(defaultLocale)] = struct{}{}
		codes = append(codes, defaultLocale)
	}

	for _, candidate := range baseRequested {
		normalized := strings.TrimSpace(candidate)
		if normalized == "" {
			continue
		}
		lower := strings.ToLower(normalized)
		if _, ok := seen[lower]; ok {
			continue
		}
		seen[lower] = struct{}{}
		codes = append(codes, normalized)
	}

	if len(codes) == 0 {
		codes = append(codes, defaultLocale)
	}

	set := localeSet{defaultCode: defaultLocale}
	for _, code := range codes {
		set.ordered = append(set.ordered, LocaleSpec{
			Code:      code,
			IsDefault: strings.EqualFold(code, defaultLocale),
		})
	}

	sort.SliceStable(set.ordered, func(i, j int) bool {
		return set.ordered[i].IsDefault && !set.ordered[j].IsDefault
	})
	return set
}

func (s *service) activeTheme(ctx context.Context, caches *buildCaches) (*themes.Theme, error) {
	if s.deps.Themes == nil {
		return nil, nil
	}
	if caches.themeLoaded {
		return caches.theme, nil
	}
	caches.themeLoaded = true
	record, err := s.deps.Themes.ActiveTheme(ctx)
	if err != nil {
		if errors.Is(err, themes.ErrNoActiveTheme) || errors.Is(err, themes.ErrFeatureDisabled) {
			return nil, nil
		}
		return nil, err
	}
	caches.theme = record
	return record, nil
}

func buildIDFilter(ids []uuid.UUID) map[uuid.UUID]struct{} {
	if len(ids) == 0 {
		return nil
	}
	filter := make(map[uuid.UUID]struct{}, len(ids))
	for _, id := range ids {
		if id == uuid.Nil {
			continue
		}
		filter[id] = struct{}{}
	}
	return filter
}

// classifyPost treats the post carrying the home layout, or the root
// permalink, as the composed home page of its locale.
func classifyPost(post *interfaces.PostRecord) PageKind {
	if post == nil {
		return PageKindPost
	}
	if strings.EqualFold(strings.TrimSpace(post.Layout), string(PageKindHome)) {
		return PageKindHome
	}
	if strings.TrimSpace(post.Permalink) == "/" {
		return PageKindHome
	}
	return PageKindPost
}

func layoutFor(post *interfaces.PostRecord, kind PageKind) string {
	layout := strings.TrimSpace(post.Layout)
	if layout != "" {
		return layout
	}
	return string(kind)
}

// orderPosts sorts by post date, newest first, falling back to the permalink
// so equal dates still produce a stable order.
func orderPosts(records []*interfaces.PostRecord) []*interfaces.PostRecord {
	ordered := make([]*interfaces.PostRecord, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		ordered = append(ordered, record)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		left := postDate(ordered[i])
		right := postDate(ordered[j])
		if left.Equal(right) {
			return ordered[i].Permalink < ordered[j].Permalink
		}
		return left.After(right)
	})
	return ordered
}

func excludeHomePosts(records []*interfaces.PostRecord) []*interfaces.PostRecord {
	listing := make([]*interfaces.PostRecord, 0, len(records))
	for _, record := range records {
		if classifyPost(record) == PageKindHome {
			continue
		}
		listing = append(listing, record)
	}
	return listing
}

func postDate(record *interfaces.PostRecord) time.Time {
	if record == nil {
		return time.Time{}
	}
	if record.PublishedAt != nil && !record.PublishedAt.IsZero() {
		return record.PublishedAt.UTC()
	}
	return record.UpdatedAt.UTC()
}

func postLastModified(record *interfaces.PostRecord) time.Time {
	if record == nil {
		return time.Time{}
	}
	return maxTime(record.UpdatedAt.UTC(), timePtrOrZero(record.PublishedAt))
}

type buildCaches struct {
	theme       *themes.Theme
	themeLoaded bool

	templates       map[string]templateResolution
	recordsBySlug   map[string]*themes.Template
	recordsResolved bool
}

type templateResolution struct {
	name   string
	record *themes.Template
}

func newBuildCaches() *buildCaches {
	return &buildCaches{
		templates: map[string]templateResolution{},
	}
}

func (c *buildCaches) resolveTemplate(
	ctx context.Context,
	service themes.Service,
	theme *themes.Theme,
	layout string,
) (string, *themes.Template, error) {
	key := strings.ToLower(strings.TrimSpace(layout))
	if key == "" {
		key = string(PageKindPost)
	}
	if cached, ok := c.templates[key]; ok {
		return cached.name, cached.record, nil
	}

	resolution := templateResolution{name: key + ".html"}
	if service != nil {
		name, err := service.ResolveTemplate(ctx, key)
		if err != nil {
			if !errors.Is(err, themes.ErrFeatureDisabled) {
				return "", nil, err
			}
		} else if strings.TrimSpace(name) != "" {
			resolution.name = name
		}
		record, err := c.templateRecord(ctx, service, theme, key)
		if err != nil {
			return "", nil, err
		}
		resolution.record = record
	}

	c.templates[key] = resolution
	return resolution.name, resolution.record, nil
}

func (c *buildCaches) templateRecord(
	ctx context.Context,
	service themes.Service,
	theme *themes.Theme,
	slug string,
) (*themes.Template, error) {
	if theme == nil {
		return nil, nil
	}
	if !c.recordsResolved {
		c.recordsResolved = true
		records, err := service.ListTemplates(ctx, theme.ID)
		if err != nil {
			if errors.Is(err, themes.ErrFeatureDisabled) || errors.Is(err, themes.ErrThemeNotFound) {
				return nil, nil
			}
			return nil, err
		}
		c.recordsBySlug = make(map[string]*themes.Template, len(records))
		for _, record := range records {
			if record == nil {
				continue
			}
			c.recordsBySlug[strings.ToLower(strings.TrimSpace(record.Slug))] = record
		}
	}
	return c.recordsBySlug[slug], nil
}

func computeDependencyMetadata(
	post *interfaces.PostRecord,
	kind PageKind,
	templateName string,
	template *themes.Template,
	theme *themes.Theme,
	listing []*interfaces.PostRecord,
) DependencyMetadata {
	sources := map[string]string{
		"post": joinParts(
			post.ID.String(),
			post.Permalink,
			post.Layout,
			hex.EncodeToString(post.Checksum),
			post.UpdatedAt.UTC().Format(time.RFC3339Nano),
			timeValue(post.PublishedAt),
			strconv.FormatBool(post.Draft),
		),
		"template": templateName,
	}

	if template != nil {
		sources["template"] = joinParts(
			template.ID.String(),
			template.Slug,
			templateName,
			template.UpdatedAt.UTC().Format(time.RFC3339Nano),
		)
	}
	if theme != nil {
		sources["theme"] = joinParts(theme.ID.String(), theme.Name, theme.Version)
	}

	// The home page re-renders whenever any listed post changes.
	if kind == PageKindHome && len(listing) > 0 {
		sources["posts"] = hashPostListing(listing)
	}

	return DependencyMetadata{
		Sources:      sources,
		Hash:         hashSources(sources),
		LastModified: postLastModified(post),
	}
}

func hashPostListing(records []*interfaces.PostRecord) string {
	values := make([]string, 0, len(records))
	for _, record := range records {
		if record == nil {
			continue
		}
		values = append(values, joinParts(
			record.ID.String(),
			record.Permalink,
			hex.EncodeToString(record.Checksum),
			record.UpdatedAt.UTC().Format(time.RFC3339Nano),
		))
	}
	sort.Strings(values)
	return hashStrings(values)
}

func joinParts(parts ...string) string {
	return strings.Join(parts, "|")
}

func timeValue(ts *time.Time) string {
	if ts == nil {
		return "nil"
	}
	return ts.UTC().Format(time.RFC3339Nano)
}

func hashStrings(values []string) string {
	if len(values) == 0 {
		return ""
	}
	hasher := sha256.New()
	for _, value := range values {
		hasher.Write([]byte(value))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func hashSources(sources map[string]string) string {
	if len(sources) == 0 {
		return ""
	}
	keys := make([]string, 0, len(sources))
	for key := range sources {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	hasher := sha256.New()
	for _, key := range keys {
		hasher.Write([]byte(key))
		hasher.Write([]byte("="))
		hasher.Write([]byte(sources[key]))
		hasher.Write([]byte{0})
	}
	return hex.EncodeToString(hasher.Sum(nil))
}

func maxTime(times ...time.Time) time.Time {
	var max time.Time
	for _, t := range times {
		if t.After(max) {
			max = t
		}
	}
	return max
}
