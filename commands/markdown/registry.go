package markdownadapter

import (
	command "github.com/goliatone/go-command"
	commandcore "github.com/goliatone/go-press/internal/commands"
	markdowncmd "github.com/goliatone/go-press/internal/commands/markdown"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// CommandRegistry is the minimal registration contract expected when wiring command handlers.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CronRegistrar matches the function signature used by go-command registries.
type CronRegistrar func(command.HandlerConfig, any) error

// Aliases let hosts outside the module name the wiring types without importing internal packages.
type (
	Target                 = markdowncmd.Target
	FeatureGates           = markdowncmd.FeatureGates
	HandlerSet             = markdowncmd.HandlerSet
	ImportDirectoryCommand = markdowncmd.ImportDirectoryCommand
	SyncDirectoryCommand   = markdowncmd.SyncDirectoryCommand
	ImportDirectoryHandler = markdowncmd.ImportDirectoryHandler
	SyncDirectoryHandler   = markdowncmd.SyncDirectoryHandler
	ResultEnvelope         = markdowncmd.ResultEnvelope
	ResultCallback         = markdowncmd.ResultCallback
)

// Option customises handler wiring during registration.
type Option func(*options)

type options struct {
	inner []markdowncmd.Option
}

// WithImportHandlerOptions forwards options to the ImportDirectoryHandler constructor.
func WithImportHandlerOptions(opts ...commandcore.HandlerOption[ImportDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.inner = append(cfg.inner, markdowncmd.WithImportHandlerOptions(opts...))
	}
}

// WithSyncHandlerOptions forwards options to the SyncDirectoryHandler constructor.
func WithSyncHandlerOptions(opts ...commandcore.HandlerOption[SyncDirectoryCommand]) Option {
	return func(cfg *options) {
		cfg.inner = append(cfg.inner, markdowncmd.WithSyncHandlerOptions(opts...))
	}
}

// RegisterMarkdownCommands builds Markdown command handlers and registers them with the provided
// registry. A HandlerSet containing the constructed handlers is returned so callers can wire
// additional integrations (dispatcher, cron) as needed.
func RegisterMarkdownCommands(reg CommandRegistry, target Target, provider interfaces.LoggerProvider, gates FeatureGates, opts ...Option) (*HandlerSet, error) {
	cfg := options{}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return markdowncmd.RegisterMarkdownCommands(reg, target, provider, gates, cfg.inner...)
}

// RegisterMarkdownCron wires the provided sync handler into a cron registrar using the supplied
// command configuration and message payload. The handler is executed with a background context.
func RegisterMarkdownCron(reg CronRegistrar, handler *SyncDirectoryHandler, cfg command.HandlerConfig, msg SyncDirectoryCommand) error {
	return markdowncmd.RegisterMarkdownCron(markdowncmd.CronRegistrar(reg), handler, cfg, msg)
}
