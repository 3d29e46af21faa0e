package bootstrap

import (
	"fmt"
	"strings"

	"github.com/goliatone/go-press"
	"github.com/goliatone/go-press/commands"
	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// Options captures the tunable configuration for the site CLI module.
type Options struct {
	ContentDir     string
	OutputDir      string
	BaseURL        string
	DefaultLocale  string
	Locales        []string
	CleanBuild     bool
	Logger         interfaces.LoggerProvider
	Storage        interfaces.StorageProvider
	Renderer       interfaces.TemplateRenderer
	EnableCommands bool // collect command handlers for CLI execution when true
}

// Resources groups the module runtime and optional command registry used by CLI commands.
type Resources struct {
	Module    *press.Module
	Collector *CommandCollector
}

// CommandCollector records handlers registered by the DI container so CLI commands can
// invoke them directly when dispatcher integrations are requested.
type CommandCollector struct {
	handlers []any
}

// RegisterCommand satisfies commands.CommandRegistry.
func (c *CommandCollector) RegisterCommand(handler any) error {
	c.handlers = append(c.handlers, handler)
	return nil
}

// Handlers returns the collected handlers.
func (c *CommandCollector) Handlers() []any {
	if len(c.handlers) == 0 {
		return nil
	}
	out := make([]any, len(c.handlers))
	copy(out, c.handlers)
	return out
}

// BuildModule initialises a press.Module configured for generator operations and, when requested,
// collects command handlers for CLI invocation. When ContentDir is supplied the module also
// enables markdown ingestion and integrity verification over the same tree so site builds can
// pull documents straight from disk.
func BuildModule(opts Options) (*Resources, error) {
	cfg := press.DefaultConfig()
	cfg.Features.Generator = true
	cfg.Generator.Enabled = true
	cfg.Generator.CleanBuild = opts.CleanBuild
	if trimmed := strings.TrimSpace(opts.OutputDir); trimmed != "" {
		cfg.Generator.OutputDir = trimmed
	}
	if trimmed := strings.TrimSpace(opts.BaseURL); trimmed != "" {
		cfg.Generator.BaseURL = trimmed
	}

	if trimmed := strings.TrimSpace(opts.ContentDir); trimmed != "" {
		cfg.Features.Markdown = true
		cfg.Features.Integrity = true
		cfg.Markdown.Enabled = true
		cfg.Markdown.ContentDir = trimmed
	}

	if locale := strings.TrimSpace(opts.DefaultLocale); locale != "" {
		cfg.Site.DefaultLocale = locale
		cfg.Markdown.DefaultLocale = locale
	}
	if len(opts.Locales) > 0 {
		cfg.Site.Locales = append([]string(nil), opts.Locales...)
		cfg.Markdown.Locales = append([]string(nil), opts.Locales...)
	}

	var collector *CommandCollector
	diOpts := []di.Option{}

	if opts.Logger != nil {
		diOpts = append(diOpts, di.WithLoggerProvider(opts.Logger))
	}
	if opts.Storage != nil {
		diOpts = append(diOpts, di.WithGeneratorStorage(opts.Storage))
	}
	if opts.Renderer != nil {
		diOpts = append(diOpts, di.WithTemplateRenderer(opts.Renderer))
	}

	module, err := press.New(cfg, diOpts...)
	if err != nil {
		return nil, fmt.Errorf("initialise press module: %w", err)
	}

	if opts.EnableCommands {
		collector = &CommandCollector{
			handlers: make([]any, 0),
		}
		if _, err := commands.RegisterContainerCommands(module.Container(), commands.RegistrationOptions{
			Registry:       collector,
			LoggerProvider: opts.Logger,
		}); err != nil {
			return nil, fmt.Errorf("register site commands: %w", err)
		}
	}

	return &Resources{
		Module:    module,
		Collector: collector,
	}, nil
}
