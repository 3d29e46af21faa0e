package activity

import (
	"context"
	"time"

	"github.com/goliatone/go-press/internal/logging"
	pressactivity "github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/interfaces"
)

// LoggerNotifier writes activity events to the module logger so deployments
// get a visible trail without a persistence layer.
type LoggerNotifier struct {
	logger interfaces.Logger
}

// NewLoggerNotifier builds a notifier over the supplied logger. A nil logger
// falls back to the no-op logger.
func NewLoggerNotifier(logger interfaces.Logger) *LoggerNotifier {
	if logger == nil {
		logger = logging.NoOp()
	}
	return &LoggerNotifier{logger: logger}
}

// Notify implements activity.Notifier.
func (n *LoggerNotifier) Notify(_ context.Context, event pressactivity.Event) error {
	fields := map[string]any{
		"verb": event.Verb,
	}
	if event.Channel != "" {
		fields["channel"] = event.Channel
	}
	if event.ObjectType != "" {
		fields["object_type"] = event.ObjectType
	}
	if event.ObjectID != "" {
		fields["object_id"] = event.ObjectID
	}
	if event.ActorID != "" {
		fields["actor_id"] = event.ActorID
	}
	if !event.OccurredAt.IsZero() {
		fields["occurred_at"] = event.OccurredAt.UTC().Format(time.RFC3339)
	}
	logging.WithFields(n.logger, fields).Info("activity.event")
	return nil
}
