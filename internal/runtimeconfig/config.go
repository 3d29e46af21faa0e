package runtimeconfig

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/goliatone/go-press/pkg/storage"
)

// ErrThemesFeatureRequired indicates inconsistent theme configuration.
var ErrThemesFeatureRequired = errors.New("press config: themes feature must be enabled to configure themes")

// ErrMarkdownFeatureRequired keeps markdown ingestion behind its feature flag.
var ErrMarkdownFeatureRequired = errors.New("press config: markdown feature must be enabled to configure markdown")
var ErrMarkdownContentDirRequired = errors.New("press config: markdown content directory is required when markdown is enabled")

// ErrGeneratorFeatureRequired keeps site builds behind the generator flag.
var ErrGeneratorFeatureRequired = errors.New("press config: generator feature must be enabled to configure the generator")
var ErrGeneratorOutputDirRequired = errors.New("press config: generator output directory is required when generator is enabled")
var ErrGeneratorWorkersInvalid = errors.New("press config: generator worker count must be zero or positive")

var ErrIntegrityMaxIssuesInvalid = errors.New("press config: integrity max issues must be zero or positive")

// ErrActivityFeatureRequired ensures the activity trail is explicitly opted in.
var ErrActivityFeatureRequired = errors.New("press config: activity feature must be enabled to configure activity")

var ErrStorageDriverUnknown = errors.New("press config: storage driver is invalid")
var ErrStorageDSNRequired = errors.New("press config: storage dsn is required for sqlite and postgres drivers")

var ErrDestinationNameRequired = errors.New("press config: destination profiles require a name")
var ErrDestinationProviderRequired = errors.New("press config: destination profiles require a provider")
var ErrDestinationDSNRequired = errors.New("press config: destination profiles require an output root dsn")
var ErrDestinationFallbackUnknown = errors.New("press config: destination fallback references unknown profile")
var ErrDestinationMultipleDefaults = errors.New("press config: destinations allow a single default profile")

var ErrCommandsCronRequiresSchedule = errors.New("press config: command cron auto-registration requires a sync schedule")

var ErrLoggingProviderUnknown = errors.New("press config: logging provider is invalid")
var ErrLoggingLevelInvalid = errors.New("press config: logging level is invalid")
var ErrLoggingFormatInvalid = errors.New("press config: logging format is invalid")

// Config aggregates feature flags and adapter bindings for the press module.
// Fields intentionally use simple types so host applications can extend them later.
type Config struct {
	Enabled      bool
	Site         SiteConfig
	Markdown     MarkdownConfig
	Generator    GeneratorConfig
	Integrity    IntegrityConfig
	Themes       ThemesConfig
	Storage      StorageConfig
	Cache        CacheConfig
	Destinations DestinationsConfig
	Activity     ActivityConfig
	Logging      LoggingConfig
	Commands     CommandsConfig
	Features     Features
}

// SiteConfig carries the publishing identity rendered into pages and feeds.
type SiteConfig struct {
	Title         string
	Description   string
	BaseURL       string
	Author        string
	DefaultLocale string
	Locales       []string
}

// MarkdownConfig captures filesystem and parser behaviour for Markdown ingestion.
type MarkdownConfig struct {
	Enabled        bool
	ContentDir     string
	Pattern        string
	Recursive      bool
	LocalePatterns map[string]string
	DefaultLocale  string
	Locales        []string
	Parser         MarkdownParserConfig
}

// MarkdownParserConfig mirrors interfaces.ParseOptions for runtime configuration.
type MarkdownParserConfig struct {
	Extensions       []string
	Sanitize         bool
	HardWraps        bool
	SafeMode         bool
	DiagramLanguages []string
}

// GeneratorConfig captures behaviour for the static site generator.
type GeneratorConfig struct {
	Enabled          bool
	OutputDir        string
	BaseURL          string
	CleanBuild       bool
	Incremental      bool
	CopyAssets       bool
	AssetDirs        []string
	GenerateSitemap  bool
	GenerateRobots   bool
	GenerateFeeds    bool
	Workers          int
	RenderTimeout    time.Duration
	AssetCopyTimeout time.Duration
	Destination      string
}

// IntegrityConfig controls content verification runs.
type IntegrityConfig struct {
	Strict    bool
	MaxIssues int
}

// ThemesConfig captures configuration for the themes module.
type ThemesConfig struct {
	Enabled        bool
	Dir            string
	DefaultTheme   string
	DefaultVariant string
}

// StorageConfig selects the persistence backend. The memory driver keeps all
// repositories in process; sqlite and postgres open a bun DB.
type StorageConfig struct {
	Driver string
	DSN    string
}

// CacheConfig captures repository cache behaviour.
type CacheConfig struct {
	Enabled    bool
	DefaultTTL time.Duration
}

// DestinationsConfig seeds publish destination profiles at startup.
type DestinationsConfig struct {
	Profiles []storage.Profile
}

// ActivityConfig controls the editorial activity trail.
type ActivityConfig struct {
	Enabled bool
	Channel string
}

// LoggingConfig captures provider-specific options for runtime logging.
type LoggingConfig struct {
	Provider  string
	Level     string
	Format    string
	AddSource bool
	Focus     []string
}

// CommandsConfig captures optional command-layer behaviour.
type CommandsConfig struct {
	Enabled                bool
	AutoRegisterDispatcher bool
	AutoRegisterCron       bool
	SyncCron               string
}

// Features toggles module functionality.
type Features struct {
	Markdown       bool
	Generator      bool
	Integrity      bool
	Themes         bool
	SchemaRegistry bool
	Activity       bool
	Persistence    bool
	Destinations   bool
}

// DefaultConfig returns opinionated defaults for an embedded press site.
func DefaultConfig() Config {
	return Config{
		Enabled: true,
		Site: SiteConfig{
			DefaultLocale: "en",
			Locales:       []string{"en"},
		},
		Markdown: MarkdownConfig{
			ContentDir:     "content",
			Pattern:        "*.md",
			Recursive:      true,
			LocalePatterns: map[string]string{},
		},
		Generator: GeneratorConfig{
			OutputDir:       "dist",
			CleanBuild:      true,
			Incremental:     false,
			CopyAssets:      true,
			AssetDirs:       []string{"assets"},
			GenerateSitemap: true,
			GenerateRobots:  false,
			GenerateFeeds:   true,
			Workers:         0,
		},
		Integrity: IntegrityConfig{},
		Themes: ThemesConfig{
			Dir: "themes",
		},
		Storage: StorageConfig{
			Driver: "memory",
		},
		Cache: CacheConfig{
			Enabled:    true,
			DefaultTTL: time.Minute,
		},
		Destinations: DestinationsConfig{},
		Activity: ActivityConfig{
			Channel: "press",
		},
		Logging: LoggingConfig{
			Provider: "console",
			Level:    "info",
		},
		Commands: CommandsConfig{},
		Features: Features{},
	}
}

// Validate performs high-level consistency checks.
func (cfg Config) Validate() error {
	if !cfg.Features.Themes {
		if cfg.Themes.Enabled || strings.TrimSpace(cfg.Themes.DefaultTheme) != "" {
			return ErrThemesFeatureRequired
		}
	}
	if cfg.Markdown.Enabled {
		if !cfg.Features.Markdown {
			return ErrMarkdownFeatureRequired
		}
		if strings.TrimSpace(cfg.Markdown.ContentDir) == "" {
			return ErrMarkdownContentDirRequired
		}
	}
	if cfg.Generator.Enabled {
		if !cfg.Features.Generator {
			return ErrGeneratorFeatureRequired
		}
		if strings.TrimSpace(cfg.Generator.OutputDir) == "" {
			return ErrGeneratorOutputDirRequired
		}
	}
	if cfg.Generator.Workers < 0 {
		return ErrGeneratorWorkersInvalid
	}
	if cfg.Integrity.MaxIssues < 0 {
		return ErrIntegrityMaxIssuesInvalid
	}
	if cfg.Activity.Enabled && !cfg.Features.Activity {
		return ErrActivityFeatureRequired
	}
	if err := cfg.validateStorage(); err != nil {
		return err
	}
	if err := cfg.validateDestinations(); err != nil {
		return err
	}
	if cfg.Commands.AutoRegisterCron && strings.TrimSpace(cfg.Commands.SyncCron) == "" {
		return ErrCommandsCronRequiresSchedule
	}
	return cfg.validateLogging()
}

func (cfg Config) validateStorage() error {
	driver := strings.ToLower(strings.TrimSpace(cfg.Storage.Driver))
	switch driver {
	case "", "memory":
		return nil
	case "sqlite", "postgres":
		if strings.TrimSpace(cfg.Storage.DSN) == "" {
			return ErrStorageDSNRequired
		}
		return nil
	default:
		return fmt.Errorf("%w: %s", ErrStorageDriverUnknown, driver)
	}
}

func (cfg Config) validateDestinations() error {
	if len(cfg.Destinations.Profiles) == 0 {
		return nil
	}
	names := make(map[string]struct{}, len(cfg.Destinations.Profiles))
	for _, profile := range cfg.Destinations.Profiles {
		name := strings.TrimSpace(profile.Name)
		if name == "" {
			return ErrDestinationNameRequired
		}
		names[name] = struct{}{}
	}
	defaults := 0
	for _, profile := range cfg.Destinations.Profiles {
		if strings.TrimSpace(profile.Provider) == "" {
			return fmt.Errorf("%w: %s", ErrDestinationProviderRequired, profile.Name)
		}
		if strings.TrimSpace(profile.Config.DSN) == "" {
			return fmt.Errorf("%w: %s", ErrDestinationDSNRequired, profile.Name)
		}
		for _, fallback := range profile.Fallbacks {
			if _, ok := names[strings.TrimSpace(fallback)]; !ok {
				return fmt.Errorf("%w: %s -> %s", ErrDestinationFallbackUnknown, profile.Name, fallback)
			}
		}
		if profile.Default {
			defaults++
		}
	}
	if defaults > 1 {
		return ErrDestinationMultipleDefaults
	}
	return nil
}

func (cfg Config) validateLogging() error {
	provider := normalizeProvider(cfg.Logging.Provider)
	if provider != "" && !isSupportedProvider(provider) {
		return fmt.Errorf("%w: %s", ErrLoggingProviderUnknown, provider)
	}
	if level := strings.TrimSpace(cfg.Logging.Level); level != "" && !isSupportedLevel(level) {
		return fmt.Errorf("%w: %s", ErrLoggingLevelInvalid, level)
	}
	if provider == "gologger" {
		if format := strings.TrimSpace(cfg.Logging.Format); format != "" && !isSupportedFormat(format) {
			return fmt.Errorf("%w: %s", ErrLoggingFormatInvalid, format)
		}
	}
	return nil
}

func normalizeProvider(provider string) string {
	return strings.ToLower(strings.TrimSpace(provider))
}

func isSupportedProvider(provider string) bool {
	switch provider {
	case "console", "gologger":
		return true
	default:
		return false
	}
}

func isSupportedLevel(level string) bool {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal":
		return true
	default:
		return false
	}
}

func isSupportedFormat(format string) bool {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json", "console", "pretty":
		return true
	default:
		return false
	}
}
