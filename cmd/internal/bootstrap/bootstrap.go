package bootstrap

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-press"
	"github.com/goliatone/go-press/internal/adapters/fsstorage"
	sitecmd "github.com/goliatone/go-press/internal/commands/site"
	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/internal/render"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/google/uuid"
)

// Options captures the configuration shared across press CLI bootstraps.
// Markdown ingestion is always enabled; the generator pipeline switches on
// via EnableGenerator so the markdown binaries stay small.
type Options struct {
	ContentDir     string
	Pattern        string
	Recursive      bool
	LocalePatterns map[string]string
	DefaultLocale  string
	Locales        []string

	EnableGenerator bool
	EnableIntegrity bool
	OutputDir       string
	BaseURL         string
	TemplateDir     string
	CleanBuild      bool

	LoggerProvider interfaces.LoggerProvider
}

// Module wraps the press module and the collaborators CLI commands drive.
type Module struct {
	Module  *press.Module
	Service interfaces.MarkdownService
	Target  sitecmd.Target
	Logger  interfaces.Logger
}

// BuildModule constructs a press module configured for CLI operations.
func BuildModule(opts Options) (*Module, error) {
	cfg := press.DefaultConfig()
	cfg.Features.Markdown = true
	cfg.Markdown.Enabled = true
	cfg.Markdown.ContentDir = strings.TrimSpace(opts.ContentDir)
	if cfg.Markdown.ContentDir == "" {
		cfg.Markdown.ContentDir = "content"
	}
	if trimmed := strings.TrimSpace(opts.Pattern); trimmed != "" {
		cfg.Markdown.Pattern = trimmed
	}
	if opts.LocalePatterns != nil {
		cfg.Markdown.LocalePatterns = opts.LocalePatterns
	}
	cfg.Markdown.Recursive = opts.Recursive

	defaultLocale := strings.TrimSpace(opts.DefaultLocale)
	if defaultLocale != "" {
		cfg.Markdown.DefaultLocale = defaultLocale
		cfg.Site.DefaultLocale = defaultLocale
	}

	if len(opts.Locales) > 0 {
		cfg.Markdown.Locales = cloneStrings(opts.Locales)
		cfg.Site.Locales = cloneStrings(opts.Locales)
	} else if len(cfg.Site.Locales) == 0 {
		cfg.Site.Locales = []string{cfg.Site.DefaultLocale}
	}

	diOpts := []di.Option{}
	if opts.LoggerProvider != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.LoggerProvider))
	}

	if opts.EnableGenerator {
		cfg.Features.Generator = true
		cfg.Generator.Enabled = true
		cfg.Generator.CleanBuild = opts.CleanBuild
		if trimmed := strings.TrimSpace(opts.OutputDir); trimmed != "" {
			cfg.Generator.OutputDir = trimmed
		}
		if trimmed := strings.TrimSpace(opts.BaseURL); trimmed != "" {
			cfg.Generator.BaseURL = trimmed
		}

		templateDir := strings.TrimSpace(opts.TemplateDir)
		if templateDir == "" {
			templateDir = "templates"
		}
		renderer, err := render.New(templateDir)
		if err != nil {
			return nil, fmt.Errorf("configure template renderer: %w", err)
		}
		diOpts = append(diOpts,
			di.WithGeneratorStorage(fsstorage.New("")),
			di.WithTemplateRenderer(renderer),
		)
	}
	if opts.EnableIntegrity {
		cfg.Features.Integrity = true
	}

	module, err := press.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise press module: %w", err)
	}

	service := module.Markdown()
	if service == nil {
		return nil, fmt.Errorf("markdown service not configured; ensure markdown feature is enabled")
	}

	container := module.Container()
	logger := logging.ModuleLogger(container.LoggerProvider(), "press.cli")

	return &Module{
		Module:  module,
		Service: service,
		Logger:  logger,
		Target: sitecmd.Target{
			Generator:    container.GeneratorConfig(),
			Dependencies: container.GeneratorDependencies(),
			Integrity:    container.IntegrityService(),
			Activity:     container.ActivityEmitter(),
		},
	}, nil
}

// SplitLocales parses a comma separated locale list into a trimmed slice.
func SplitLocales(value string) []string {
	if strings.TrimSpace(value) == "" {
		return nil
	}
	parts := strings.Split(value, ",")
	locales := make([]string, 0, len(parts))
	for _, part := range parts {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			locales = append(locales, trimmed)
		}
	}
	return locales
}

// ParseUUID converts the supplied string into a UUID, returning uuid.Nil when the input is empty.
func ParseUUID(value string) (uuid.UUID, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return uuid.Nil, nil
	}
	return uuid.Parse(trimmed)
}

// ParseUUIDPointer returns a pointer to the parsed UUID, or nil when the value is empty.
func ParseUUIDPointer(value string) (*uuid.UUID, error) {
	id, err := ParseUUID(value)
	if err != nil {
		return nil, err
	}
	if id == uuid.Nil {
		return nil, nil
	}
	return &id, nil
}

func cloneStrings(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, len(values))
	copy(out, values)
	return out
}
