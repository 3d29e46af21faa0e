package commands

import (
	"errors"
	"strings"

	command "github.com/goliatone/go-command"
	markdownadapter "github.com/goliatone/go-press/commands/markdown"
	commandcore "github.com/goliatone/go-press/internal/commands"
	markdowncmd "github.com/goliatone/go-press/internal/commands/markdown"
	sitecmd "github.com/goliatone/go-press/internal/commands/site"
	"github.com/goliatone/go-press/internal/di"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// CommandRegistry records command handlers so hosts can expose them via CLI or cron.
type CommandRegistry interface {
	RegisterCommand(handler any) error
}

// CommandDispatcher subscribes command handlers to a dispatcher implementation.
type CommandDispatcher interface {
	RegisterCommand(handler any) (CommandSubscription, error)
}

// CommandSubscription allows hosts to tear down dispatcher subscriptions.
type CommandSubscription interface {
	Unsubscribe()
}

// CronRegistrar registers command handlers with a cron scheduler.
type CronRegistrar func(command.HandlerConfig, any) error

// RegistrationOptions configures how handlers are registered during construction.
type RegistrationOptions struct {
	Registry       CommandRegistry
	Dispatcher     CommandDispatcher
	CronRegistrar  CronRegistrar
	LoggerProvider interfaces.LoggerProvider
	// SyncCron overrides the cron expression applied to the markdown sync handler.
	SyncCron string
}

// RegistrationResult captures the constructed command handlers and any dispatcher subscriptions.
type RegistrationResult struct {
	Handlers      []any
	Subscriptions []CommandSubscription
}

// RegisterContainerCommands builds the command handlers exposed by the provided container and
// optionally registers them with registry/dispatcher/cron integrations.
func RegisterContainerCommands(container *di.Container, opts RegistrationOptions) (*RegistrationResult, error) {
	if container == nil {
		return &RegistrationResult{}, nil
	}

	cfg := container.Config

	provider := opts.LoggerProvider
	if provider == nil {
		provider = container.LoggerProvider()
	}

	if opts.Registry != nil && opts.CronRegistrar != nil {
		if reg, ok := opts.Registry.(interface {
			SetCronRegister(func(command.HandlerConfig, any) error) *command.Registry
		}); ok && reg != nil {
			reg.SetCronRegister(opts.CronRegistrar)
		}
	}

	result := &RegistrationResult{
		Handlers:      make([]any, 0),
		Subscriptions: make([]CommandSubscription, 0),
	}

	var errs error

	register := func(handler any) {
		if handler == nil {
			return
		}
		result.Handlers = append(result.Handlers, handler)

		if opts.Registry != nil {
			if err := opts.Registry.RegisterCommand(handler); err != nil {
				errs = errors.Join(errs, err)
			}
		}

		if opts.Dispatcher != nil {
			subscription, err := opts.Dispatcher.RegisterCommand(handler)
			if err != nil {
				errs = errors.Join(errs, err)
			} else if subscription != nil {
				result.Subscriptions = append(result.Subscriptions, subscription)
			}
		}

		if opts.CronRegistrar != nil {
			if cronCmd, ok := handler.(command.CronCommand); ok {
				if err := opts.CronRegistrar(cronCmd.CronOptions(), cronCmd.CronHandler()); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	loggerFor := func(module string) interfaces.Logger {
		return commandcore.CommandLogger(provider, module)
	}

	// Markdown commands.
	if service := container.MarkdownService(); service != nil && cfg.Features.Markdown {
		gates := markdowncmd.FeatureGates{
			MarkdownEnabled: func() bool { return cfg.Features.Markdown && cfg.Markdown.Enabled },
		}
		target := markdowncmd.Target{
			Service:  service,
			Activity: container.ActivityEmitter(),
		}
		handlerSet, err := markdownadapter.RegisterMarkdownCommands(nil, target, provider, gates)
		if err != nil {
			errs = errors.Join(errs, err)
		} else if handlerSet != nil {
			register(handlerSet.Import)
			register(handlerSet.Sync)

			syncCron := strings.TrimSpace(opts.SyncCron)
			if syncCron == "" && cfg.Commands.AutoRegisterCron {
				syncCron = strings.TrimSpace(cfg.Commands.SyncCron)
			}
			if opts.CronRegistrar != nil && syncCron != "" {
				msg := markdowncmd.SyncDirectoryCommand{
					Directory:      ".",
					UpdateExisting: true,
				}
				cronCfg := command.HandlerConfig{Expression: syncCron}
				if err := markdownadapter.RegisterMarkdownCron(markdownadapter.CronRegistrar(opts.CronRegistrar), handlerSet.Sync, cronCfg, msg); err != nil {
					errs = errors.Join(errs, err)
				}
			}
		}
	}

	// Site commands.
	if cfg.Features.Generator && cfg.Generator.Enabled {
		gates := sitecmd.FeatureGates{
			GeneratorEnabled: func() bool { return cfg.Generator.Enabled },
			IntegrityEnabled: func() bool { return cfg.Features.Integrity },
		}
		target := sitecmd.Target{
			Generator:    container.GeneratorConfig(),
			Dependencies: container.GeneratorDependencies(),
			Integrity:    container.IntegrityService(),
			Activity:     container.ActivityEmitter(),
		}
		siteLogger := loggerFor("site")
		register(sitecmd.NewBuildSiteHandler(target, siteLogger, gates))
		register(sitecmd.NewVerifySiteHandler(target, siteLogger, gates))
		register(sitecmd.NewCleanSiteHandler(target, siteLogger, gates))
	}

	if errs != nil && len(result.Handlers) == 0 {
		return result, errs
	}

	if len(result.Handlers) == 0 {
		return result, errors.New("no command handlers registered; ensure services are configured and required features enabled")
	}

	return result, errs
}
