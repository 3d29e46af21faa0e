// Package generator exposes the static site generation API for go-press hosts.
// Use NewService with Config and Dependencies to render pages, copy assets,
// and emit sitemaps, robots directives, and syndication feeds.
package generator

import internal "github.com/goliatone/go-press/internal/generator"

type (
	Service           = internal.Service
	Config            = internal.Config
	ThemingConfig     = internal.ThemingConfig
	BuildOptions      = internal.BuildOptions
	BuildResult       = internal.BuildResult
	RenderedPage      = internal.RenderedPage
	RenderDiagnostic  = internal.RenderDiagnostic
	Dependencies      = internal.Dependencies
	TemplateContext   = internal.TemplateContext
	TemplateHelpers   = internal.TemplateHelpers
	SiteMetadata      = internal.SiteMetadata
	BuildMetadata     = internal.BuildMetadata
	ThemeContext      = internal.ThemeContext
	PageKind          = internal.PageKind
	LocaleSpec        = internal.LocaleSpec
	PageData          = internal.PageData
	AssetResolver     = internal.AssetResolver
	NoOpAssetResolver = internal.NoOpAssetResolver
)

const (
	PageKindPost = internal.PageKindPost
	PageKindHome = internal.PageKindHome
)

var ErrServiceDisabled = internal.ErrServiceDisabled

// NewService wires a static site generator with the supplied configuration and dependencies.
func NewService(cfg Config, deps Dependencies) Service {
	return internal.NewService(cfg, deps)
}

// NewDisabledService returns a Service that fails all operations with ErrServiceDisabled.
func NewDisabledService() Service {
	return internal.NewDisabledService()
}
