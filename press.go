package press

import (
	"github.com/goliatone/go-press/internal/assets"
	"github.com/goliatone/go-press/internal/destinations"
	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/integrity"
	pressposts "github.com/goliatone/go-press/internal/posts"
	"github.com/goliatone/go-press/internal/themes"
	"github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// PostService exports the posts service contract for consumers of the press package.
type PostService = pressposts.Service

// MarkdownService exports the markdown pipeline contract.
type MarkdownService = interfaces.MarkdownService

// GeneratorService exports the static site generator contract.
type GeneratorService = generator.Service

// IntegrityService exports the content verification contract.
type IntegrityService = integrity.Service

// ThemeService exports the themes service contract.
type ThemeService = themes.Service

// AssetService exports the asset resolution contract.
type AssetService = assets.Service

// DestinationService exports the publish destination registry contract.
type DestinationService = destinations.Service

// ActivityEmitter exports the activity fan-out used for publishing events.
type ActivityEmitter = activity.Emitter

// BuildOptions exports the per-run generator options.
type BuildOptions = generator.BuildOptions

// BuildResult exports the generator build report.
type BuildResult = generator.BuildResult

// VerifyOptions exports the per-run integrity options.
type VerifyOptions = integrity.Options

// VerifyReport exports the integrity report produced by verification runs.
type VerifyReport = integrity.Report

// Module represents the top level press runtime façade.
type Module struct {
	container *di.Container
}

// New constructs a press module using the provided configuration and optional DI overrides.
func New(cfg Config, opts ...di.Option) (*Module, error) {
	container, err := di.NewContainer(cfg, opts...)
	if err != nil {
		return nil, err
	}
	return &Module{container: container}, nil
}

// Container exposes the underlying DI container for advanced integrations.
func (m *Module) Container() *di.Container {
	return m.container
}

// Posts returns the configured posts service.
func (m *Module) Posts() PostService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.PostsService()
}

// Markdown returns the markdown service when the feature is enabled.
func (m *Module) Markdown() MarkdownService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.MarkdownService()
}

// Generator returns the configured generator service.
func (m *Module) Generator() GeneratorService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.GeneratorService()
}

// Integrity returns the verification service when the feature is enabled.
func (m *Module) Integrity() IntegrityService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.IntegrityService()
}

// Themes returns the configured theme service.
func (m *Module) Themes() ThemeService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ThemeService()
}

// Assets returns the asset resolution service.
func (m *Module) Assets() AssetService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.AssetsService()
}

// Destinations returns the publish destination registry.
func (m *Module) Destinations() DestinationService {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.DestinationsService()
}

// Activity returns the activity emitter. The emitter is always non-nil and
// reports whether emission is enabled.
func (m *Module) Activity() *ActivityEmitter {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.ActivityEmitter()
}

// Logger returns the module level logger.
func (m *Module) Logger() interfaces.Logger {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Logger()
}

// DefaultLocale reports the site default locale.
func (m *Module) DefaultLocale() string {
	if m == nil || m.container == nil {
		return ""
	}
	return m.container.Config.Site.DefaultLocale
}

// Locales reports the locales the site publishes.
func (m *Module) Locales() []string {
	if m == nil || m.container == nil {
		return nil
	}
	locales := m.container.Config.Site.Locales
	out := make([]string, len(locales))
	copy(out, locales)
	return out
}

// Close releases resources owned by the module, such as a database opened from
// the storage configuration.
func (m *Module) Close() error {
	if m == nil || m.container == nil {
		return nil
	}
	return m.container.Close()
}
