package markdowncmd

import (
	"context"
	"errors"

	command "github.com/goliatone/go-command"
	"github.com/goliatone/go-press/internal/commands"
	"github.com/goliatone/go-press/internal/logging"
	"github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
	"github.com/google/uuid"
)

const (
	importOperation = "markdown.import_directory"
	syncOperation   = "markdown.sync_directory"
)

var (
	// ErrMarkdownFeatureDisabled is returned when the markdown feature flag is disabled at runtime.
	ErrMarkdownFeatureDisabled = errors.New("markdown command: feature disabled")
)

var (
	_ command.Commander[ImportDirectoryCommand] = (*ImportDirectoryHandler)(nil)
	_ command.Commander[SyncDirectoryCommand]   = (*SyncDirectoryHandler)(nil)
)

// Target bundles the markdown service the handlers drive plus the optional
// activity emitter that records import and sync completions.
type Target struct {
	Service  interfaces.MarkdownService
	Activity *activity.Emitter
}

// ImportDirectoryHandler orchestrates Markdown directory imports via the shared command handler foundation.
type ImportDirectoryHandler struct {
	inner *commands.Handler[ImportDirectoryCommand]
}

// NewImportDirectoryHandler creates a handler bound to the supplied target.
func NewImportDirectoryHandler(target Target, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[ImportDirectoryCommand]) *ImportDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg ImportDirectoryCommand) error {
		if target.Service == nil || !gates.markdownEnabled() {
			return ErrMarkdownFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		importOpts := interfaces.ImportOptions{
			AuthorID:       msg.AuthorID,
			UpdateExisting: msg.UpdateExisting,
			DryRun:         msg.DryRun,
		}

		result, err := target.Service.ImportDirectory(ctx, msg.Directory, importOpts)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Import: result,
			Metadata: map[string]any{
				"operation": "import",
			},
		})
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"created_count": len(result.CreatedPostIDs),
				"updated_count": len(result.UpdatedPostIDs),
				"skipped_count": len(result.SkippedPostIDs),
				"error_count":   len(result.Errors),
				"dry_run":       msg.DryRun,
			}).Info("markdown.command.import_directory.completed")
			emitImportActivity(ctx, target.Activity, msg, result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[ImportDirectoryCommand]{
		commands.WithLogger[ImportDirectoryCommand](baseLogger),
		commands.WithOperation[ImportDirectoryCommand](importOperation),
		commands.WithMessageFields(func(msg ImportDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.AuthorID != uuid.Nil {
				fields["author_id"] = msg.AuthorID
			}
			if msg.UpdateExisting {
				fields["update_existing"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[ImportDirectoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &ImportDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[ImportDirectoryCommand].
func (h *ImportDirectoryHandler) Execute(ctx context.Context, msg ImportDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

// SyncDirectoryHandler orchestrates Markdown sync workflows via the shared command handler foundation.
type SyncDirectoryHandler struct {
	inner *commands.Handler[SyncDirectoryCommand]
}

// NewSyncDirectoryHandler creates a handler bound to the supplied target.
func NewSyncDirectoryHandler(target Target, logger interfaces.Logger, gates FeatureGates, opts ...commands.HandlerOption[SyncDirectoryCommand]) *SyncDirectoryHandler {
	baseLogger := logger
	if baseLogger == nil {
		baseLogger = logging.NoOp()
	}

	exec := func(ctx context.Context, msg SyncDirectoryCommand) error {
		if target.Service == nil || !gates.markdownEnabled() {
			return ErrMarkdownFeatureDisabled
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		syncOpts := interfaces.SyncOptions{
			ImportOptions: interfaces.ImportOptions{
				AuthorID:       msg.AuthorID,
				UpdateExisting: msg.UpdateExisting,
				DryRun:         msg.DryRun,
			},
			DeleteOrphaned: msg.DeleteOrphaned,
		}

		result, err := target.Service.Sync(ctx, msg.Directory, syncOpts)
		invokeCallback(msg.ResultCallback, ResultEnvelope{
			Sync: result,
			Metadata: map[string]any{
				"operation": "sync",
			},
		})
		if err != nil {
			return err
		}
		if result != nil {
			logging.WithFields(baseLogger, map[string]any{
				"created_count":   result.Created,
				"updated_count":   result.Updated,
				"deleted_count":   result.Deleted,
				"skipped_count":   result.Skipped,
				"error_count":     len(result.Errors),
				"dry_run":         msg.DryRun,
				"delete_orphans":  msg.DeleteOrphaned,
				"update_existing": msg.UpdateExisting,
			}).Info("markdown.command.sync_directory.completed")
			emitSyncActivity(ctx, target.Activity, msg, result)
		}
		return nil
	}

	handlerOpts := []commands.HandlerOption[SyncDirectoryCommand]{
		commands.WithLogger[SyncDirectoryCommand](baseLogger),
		commands.WithOperation[SyncDirectoryCommand](syncOperation),
		commands.WithMessageFields(func(msg SyncDirectoryCommand) map[string]any {
			fields := map[string]any{
				"directory": msg.Directory,
			}
			if msg.AuthorID != uuid.Nil {
				fields["author_id"] = msg.AuthorID
			}
			if msg.UpdateExisting {
				fields["update_existing"] = true
			}
			if msg.DryRun {
				fields["dry_run"] = true
			}
			if msg.DeleteOrphaned {
				fields["delete_orphaned"] = true
			}
			return fields
		}),
		commands.WithTelemetry(commands.DefaultTelemetry[SyncDirectoryCommand](baseLogger)),
	}
	handlerOpts = append(handlerOpts, opts...)

	return &SyncDirectoryHandler{
		inner: commands.NewHandler(exec, handlerOpts...),
	}
}

// Execute satisfies command.Commander[SyncDirectoryCommand].
func (h *SyncDirectoryHandler) Execute(ctx context.Context, msg SyncDirectoryCommand) error {
	return h.inner.Execute(ctx, msg)
}

func invokeCallback(cb ResultCallback, envelope ResultEnvelope) {
	if cb == nil {
		return
	}
	cb(envelope)
}

func emitImportActivity(ctx context.Context, emitter *activity.Emitter, msg ImportDirectoryCommand, result *interfaces.ImportResult) {
	if !emitter.Enabled() || result == nil {
		return
	}
	_ = emitter.Emit(ctx, activity.Event{
		Verb:           "import",
		ActorID:        actorID(msg.AuthorID),
		ObjectType:     "content",
		ObjectID:       msg.Directory,
		DefinitionCode: "content:import",
		Metadata: map[string]any{
			"created": len(result.CreatedPostIDs),
			"updated": len(result.UpdatedPostIDs),
			"skipped": len(result.SkippedPostIDs),
			"dry_run": msg.DryRun,
		},
	})
}

func emitSyncActivity(ctx context.Context, emitter *activity.Emitter, msg SyncDirectoryCommand, result *interfaces.SyncResult) {
	if !emitter.Enabled() || result == nil {
		return
	}
	_ = emitter.Emit(ctx, activity.Event{
		Verb:           "sync",
		ActorID:        actorID(msg.AuthorID),
		ObjectType:     "content",
		ObjectID:       msg.Directory,
		DefinitionCode: "content:sync",
		Metadata: map[string]any{
			"created": result.Created,
			"updated": result.Updated,
			"deleted": result.Deleted,
			"skipped": result.Skipped,
			"dry_run": msg.DryRun,
		},
	})
}

func actorID(id uuid.UUID) string {
	if id == uuid.Nil {
		return ""
	}
	return id.String()
}
