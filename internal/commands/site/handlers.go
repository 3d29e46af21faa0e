package sitecmd

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-press/internal/commands"
	"github.com/goliatone/go-press/internal/generator"
	"github.com/goliatone/go-press/internal/integrity"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// ErrVerificationDisabled is returned when the integrity feature flag is disabled at runtime.
var ErrVerificationDisabled = errors.New("site command: verification disabled")

var (
	_ command.Commander[BuildMessage]  = (*BuildSiteHandler)(nil)
	_ command.Commander[VerifyMessage] = (*VerifySiteHandler)(nil)
	_ command.Commander[CleanMessage]  = (*CleanSiteHandler)(nil)
)

// Target bundles the collaborators site handlers drive. Build and clean
// assemble a generator per execution so message overrides apply on top of
// Generator; verify runs the integrity service. Activity is optional.
type Target struct {
	Generator    generator.Config
	Dependencies generator.Dependencies
	Integrity    integrity.Service
	Activity     *activity.Emitter
}

// BuildSiteHandler orchestrates generator builds using the shared command handler foundation.
type BuildSiteHandler struct {
	inner *commands.Handler[BuildMessage]
}

// NewBuildSiteHandler constructs a handler wired to the provided target.
func NewBuildSiteHandler(target Target, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[BuildMessage]) *BuildSiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg BuildMessage) error {
		if !gates.generatorEnabled() {
			return generator.ErrServiceDisabled
		}

		cfg := buildConfig(target.Generator, msg)
		svc := generator.NewService(cfg, target.Dependencies)

		options := generator.BuildOptions{
			Drafts:      msg.Drafts,
			DryRun:      msg.DryRun,
			Destination: strings.TrimSpace(msg.Destination),
		}
		if len(msg.PostIDs) > 0 {
			options.PostIDs = append([]uuid.UUID(nil), msg.PostIDs...)
		}
		if len(msg.Locales) > 0 {
			options.Locales = normalizeLocales(msg.Locales)
		}

		result, err := svc.Build(ctx, options)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Result: result,
			Metadata: map[string]any{
				"operation": "build",
			},
		})
		if err != nil {
			return err
		}
		emitBuildActivity(ctx, target.Activity, result)
		return nil
	}

	handlerOpts := []commands.HandlerOption[BuildMessage]{
		commands.WithLogger[BuildMessage](baseLogger),
		commands.WithOperation[BuildMessage]("site.build"),
		commands.WithMessageFields(func(msg BuildMessage) map[string]any {
			fields := map[string]any{}
			if msg.OutputDir != "" {
				fields["output_dir"] = msg.OutputDir
			}
			if msg.Destination != "" {
				fields["destination"] = msg.Destination
			}
			if len(msg.Locales) > 0 {
				fields["locales"] = len(msg.Locales)
			}
			if len(msg.PostIDs) > 0 {
				fields["post_ids"] = len(msg.PostIDs)
			}
			if msg.Clean {
				fields["clean"] = true
			}
			if msg.Drafts {
				fields["drafts"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[BuildMessage](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &BuildSiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[BuildMessage].
func (h *BuildSiteHandler) Execute(ctx context.Context, msg BuildMessage) error {
	return h.inner.Execute(ctx, msg)
}

// VerifySiteHandler runs the content integrity checks through the command foundation.
type VerifySiteHandler struct {
	inner *commands.Handler[VerifyMessage]
}

// NewVerifySiteHandler constructs a handler bound to the target's integrity service.
func NewVerifySiteHandler(target Target, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[VerifyMessage]) *VerifySiteHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg VerifyMessage) error {
		if target.Integrity == nil || !gates.integrityEnabled() {
			return ErrVerificationDisabled
		}

		options := integrity.Options{
			ContentDir: strings.TrimSpace(msg.ContentDir),
			Pattern:    strings.TrimSpace(msg.Pattern),
			Strict:     msg.Strict,
		}
		report, err := target.Integrity.Run(ctx, options)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Report: report,
			Metadata: map[string]any{
				"operation": "verify",
			},
		})
		if report != nil {
			emitVerifyActivity(ctx, target.Activity, options.ContentDir, report)
		}
		if err != nil {
			return err
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[VerifyMessage]{
		commands.WithLogger[VerifyMessage](baseLogger),
		commands.WithOperation[VerifyMessage]("site.verify"),
		commands.WithMessageFields(func(msg VerifyMessage) map[string]any {
			fields := map[string]any{}
			if msg.ContentDir != "" {
				fields["content_dir"] = msg.ContentDir
			}
			if msg.Pattern != "" {
				fields["pattern"] = msg.Pattern
			}
			if msg.Strict != nil {
				fields["strict"] = *msg.Strict
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[VerifyMessage](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &VerifySiteHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[VerifyMessage].
func (h *VerifySiteHandler) Execute(ctx context.Context, msg VerifyMessage) error {
	return h.inner.Execute(ctx, msg)
}

type cleanHandlerConfig struct {
	timeout time.Duration
}

// CleanHandlerOption customises the clean handler.
type CleanHandlerOption func(*cleanHandlerConfig)

// CleanWithTimeout overrides the default execution timeout.
func CleanWithTimeout(timeout time.Duration) CleanHandlerOption {
	return func(cfg *cleanHandlerConfig) {
		cfg.timeout = timeout
	}
}

// CleanSiteHandler clears generated artifacts from the output destination.
type CleanSiteHandler struct {
	target  Target
	gates   FeatureGates
	logger  interfaces.Logger
	timeout time.Duration
}

// NewCleanSiteHandler constructs a handler that cleans generator output.
func NewCleanSiteHandler(target Target, logger interfaces.Logger, gates FeatureGates, opts ...CleanHandlerOption) *CleanSiteHandler {
	cfg := cleanHandlerConfig{
		timeout: commands.DefaultCommandTimeout,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}

	return &CleanSiteHandler{
		target:  target,
		gates:   gates,
		logger:  commands.EnsureLogger(logger),
		timeout: cfg.timeout,
	}
}

// Execute satisfies command.Commander[CleanMessage].
func (h *CleanSiteHandler) Execute(ctx context.Context, msg CleanMessage) error {
	if err := commands.WrapValidationError(command.ValidateMessage(msg)); err != nil {
		return err
	}
	ctx = commands.EnsureContext(ctx)
	ctx, cancel := commands.WithCommandTimeout(ctx, h.timeout)
	defer cancel()

	if err := ctx.Err(); err != nil {
		return commands.WrapContextError(err)
	}

	if !h.gates.generatorEnabled() {
		return commands.WrapExecuteError(generator.ErrServiceDisabled)
	}

	svc := generator.NewService(h.target.Generator, h.target.Dependencies)
	if err := svc.Clean(ctx); err != nil {
		return commands.WrapExecuteError(err)
	}

	logging.WithFields(h.logger, map[string]any{
		"operation":  "site.clean",
		"output_dir": h.target.Generator.OutputDir,
	}).Debug("site.command.clean.removed")
	return nil
}

// CLIHandler exposes the clean handler to CLI integrations.
func (h *CleanSiteHandler) CLIHandler() any {
	return h
}

// CLIOptions describes the CLI metadata for site cleaning.
func (h *CleanSiteHandler) CLIOptions() command.CLIConfig {
	return command.CLIConfig{
		Path:        []string{"site", "clean"},
		Group:       "site",
		Description: "Remove generated site artifacts from the output destination",
	}
}

func buildConfig(base generator.Config, msg BuildMessage) generator.Config {
	cfg := base
	if dir := strings.TrimSpace(msg.OutputDir); dir != "" {
		cfg.OutputDir = dir
	}
	if baseURL := strings.TrimSpace(msg.BaseURL); baseURL != "" {
		cfg.BaseURL = baseURL
	}
	if msg.Clean {
		cfg.CleanBuild = true
	}
	return cfg
}

func normalizeLocales(values []string) []string {
	if len(values) == 0 {
		return nil
	}
	out := make([]string, 0, len(values))
	seen := map[string]struct{}{}
	for _, locale := range values {
		trimmed := strings.TrimSpace(locale)
		if trimmed == "" {
			continue
		}
		key := strings.ToLower(trimmed)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, trimmed)
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}

func emitBuildActivity(ctx context.Context, emitter *activity.Emitter, result *generator.BuildResult) {
	if !emitter.Enabled() || result == nil {
		return
	}
	_ = emitter.Emit(ctx, activity.Event{
		Verb:           "build",
		ObjectType:     "site",
		ObjectID:       result.OutputDir,
		DefinitionCode: "site:build",
		Metadata: map[string]any{
			"pages_built":   result.PagesBuilt,
			"pages_skipped": result.PagesSkipped,
			"feeds_built":   result.FeedsBuilt,
			"dry_run":       result.DryRun,
		},
	})
}

func emitVerifyActivity(ctx context.Context, emitter *activity.Emitter, contentDir string, report *integrity.Report) {
	if !emitter.Enabled() {
		return
	}
	issues := 0
	for _, check := range report.Checks {
		issues += len(check.Issues)
	}
	_ = emitter.Emit(ctx, activity.Event{
		Verb:           "verify",
		ObjectType:     "content",
		ObjectID:       contentDir,
		DefinitionCode: "content:verify",
		Metadata: map[string]any{
			"passed": report.OK(),
			"checks": len(report.Checks),
			"issues": issues,
		},
	})
}
