package generator

import (
	"strings"
	"time"

	"github.com/goliatone/go-press/internal/themes"
	"github.com/goliatone/go-press/pkg/interfaces"
	gotheme "github.com/goliatone/go-theme"
	"github.com/google/uuid"
)

// TemplateContext captures the data contract passed to TemplateRenderer implementations.
type TemplateContext struct {
	Site    SiteMetadata
	Page    PageRenderingContext
	Posts   []*interfaces.PostRecord
	Build   BuildMetadata
	Theme   ThemeContext
	Helpers TemplateHelpers
}

// SiteMetadata exposes locale-aware site information required by templates.
type SiteMetadata struct {
	BaseURL       string
	Title         string
	Description   string
	Author        string
	DefaultLocale string
	Locales       []LocaleSpec
	Metadata      map[string]any
}

// BuildMetadata surfaces build information to templates. It carries the
// newest content date instead of the build clock so rendering twice from
// identical sources yields identical bytes.
type BuildMetadata struct {
	ContentUpdatedAt time.Time
	Options          BuildOptions
}

// PageRenderingContext contains the resolved dependencies for a single post/locale combination.
type PageRenderingContext struct {
	Post     *interfaces.PostRecord
	Kind     PageKind
	Template *themes.Template
	Theme    *themes.Theme
	Locale   LocaleSpec
	Metadata DependencyMetadata
}

// PageKind distinguishes the home page from regular posts.
type PageKind string

const (
	// PageKindPost marks a regular post page.
	PageKindPost PageKind = "post"
	// PageKindHome marks the composed home page of a locale.
	PageKindHome PageKind = "home"
)

// ThemeContext surfaces go-theme selection data to templates.
type ThemeContext struct {
	Name      string
	Variant   string
	Tokens    map[string]string
	CSSVars   map[string]string
	Partials  map[string]string
	AssetURL  func(string) string
	Template  func(string, string) string
	Selection *gotheme.Selection
}

// TemplateHelpers exposes convenience helpers for template authors.
type TemplateHelpers struct {
	locale        LocaleSpec
	defaultLocale string
	baseURL       string
	routes        *siteRoutes
}

func newTemplateHelpers(defaultLocale string, locale LocaleSpec, baseURL string, routes *siteRoutes) TemplateHelpers {
	return TemplateHelpers{
		locale:        locale,
		defaultLocale: defaultLocale,
		baseURL:       strings.TrimRight(baseURL, "/"),
		routes:        routes,
	}
}

// Locale returns the active locale code.
func (h TemplateHelpers) Locale() string {
	return h.locale.Code
}

// IsLocale reports whether the provided locale code matches the active locale.
func (h TemplateHelpers) IsLocale(code string) bool {
	return strings.EqualFold(strings.TrimSpace(code), h.locale.Code)
}

// IsDefaultLocale reports whether the current locale matches the configured default.
func (h TemplateHelpers) IsDefaultLocale() bool {
	return strings.EqualFold(h.locale.Code, h.defaultLocale)
}

// BaseURL returns the configured site base URL.
func (h TemplateHelpers) BaseURL() string {
	return h.baseURL
}

// WithBaseURL prefixes the provided path with the configured base URL.
func (h TemplateHelpers) WithBaseURL(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return h.baseURL
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	if h.baseURL == "" {
		return path
	}
	return h.baseURL + path
}

// LocalePrefix returns the locale aware prefix for paths.
func (h TemplateHelpers) LocalePrefix() string {
	if h.IsDefaultLocale() {
		return ""
	}
	return "/" + strings.TrimPrefix(strings.TrimSpace(h.locale.Code), "/")
}

// PostPath returns the site relative path for a post permalink in the active locale.
func (h TemplateHelpers) PostPath(permalink string) string {
	normalized := strings.TrimSpace(permalink)
	if normalized == "" {
		normalized = "/"
	}
	if !strings.HasPrefix(normalized, "/") {
		normalized = "/" + normalized
	}
	prefix := h.LocalePrefix()
	if prefix == "" {
		return normalized
	}
	if normalized == "/" {
		return prefix + "/"
	}
	return prefix + normalized
}

// PostURL returns the absolute URL for a post permalink in the active locale.
func (h TemplateHelpers) PostURL(permalink string) string {
	if h.routes != nil {
		if url, err := h.routes.Post(h.locale.Code, permalink); err == nil {
			return url
		}
	}
	return h.WithBaseURL(h.PostPath(permalink))
}

// FeedURL returns the absolute RSS feed URL for the active locale.
func (h TemplateHelpers) FeedURL() string {
	if h.routes != nil {
		if url, err := h.routes.Feed(h.locale.Code); err == nil {
			return url
		}
	}
	return h.WithBaseURL(h.PostPath("/feed.xml"))
}

func buildThemeContext(selection *gotheme.Selection, cfg ThemingConfig) ThemeContext {
	empty := ThemeContext{
		Tokens:   map[string]string{},
		CSSVars:  map[string]string{},
		Partials: map[string]string{},
		AssetURL: func(string) string { return "" },
		Template: func(_ string, fallback string) string { return fallback },
	}
	if selection == nil {
		return empty
	}

	cssPrefix := cfg.CSSVariablePrefix
	tokens := selection.Tokens()
	cssVars := selection.CSSVariables(cssPrefix)
	partials := selection.Partials(cfg.PartialFallbacks)

	return ThemeContext{
		Name:      selection.Theme,
		Variant:   selection.Variant,
		Tokens:    tokens,
		CSSVars:   cssVars,
		Partials:  partials,
		AssetURL:  func(key string) string { url, _ := selection.Asset(key); return url },
		Template:  selection.Template,
		Selection: selection,
	}
}

// RenderedPage captures the rendered HTML output for a post page.
type RenderedPage struct {
	PostID    uuid.UUID
	Locale    string
	Permalink string
	Output    string
	Template  string
	HTML      string
	Metadata  DependencyMetadata
	Duration  time.Duration
	Checksum  string
}

// RenderDiagnostic records rendering timing and errors for individual pages.
type RenderDiagnostic struct {
	PostID    uuid.UUID
	Locale    string
	Permalink string
	Template  string
	Duration  time.Duration
	Skipped   bool
	Err       error
}

type renderOutcome struct {
	page       RenderedPage
	diagnostic RenderDiagnostic
	err        error
	skipped    bool
}
