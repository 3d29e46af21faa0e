// Package activity publishes lightweight audit events for press operations.
// Services construct an Emitter with the hooks they want notified; hooks
// adapt events into whatever backend records them.
package activity

import (
	"context"
	"errors"
	"sync"
	"time"
)

// Event describes a single recorded action such as a site build or a
// content import. String IDs keep the event transport-agnostic; sinks
// that need typed identifiers parse them on their side.
type Event struct {
	Verb           string         `json:"verb"`
	ActorID        string         `json:"actor_id,omitempty"`
	UserID         string         `json:"user_id,omitempty"`
	TenantID       string         `json:"tenant_id,omitempty"`
	ObjectType     string         `json:"object_type,omitempty"`
	ObjectID       string         `json:"object_id,omitempty"`
	Channel        string         `json:"channel,omitempty"`
	DefinitionCode string         `json:"definition_code,omitempty"`
	Recipients     []string       `json:"recipients,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	OccurredAt     time.Time      `json:"occurred_at"`
}

// Notifier receives emitted events.
type Notifier interface {
	Notify(ctx context.Context, event Event) error
}

// Hooks fans an event out to every notifier. Notification errors are
// joined so one failing sink does not hide the others.
type Hooks []Notifier

// Notify implements Notifier over the whole set.
func (h Hooks) Notify(ctx context.Context, event Event) error {
	var errs []error
	for _, hook := range h {
		if hook == nil {
			continue
		}
		if err := hook.Notify(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Config controls whether events are emitted and which channel they
// default to when the caller leaves Event.Channel empty.
type Config struct {
	Enabled bool   `json:"enabled"`
	Channel string `json:"channel"`
}

// Emitter stamps defaults onto events and forwards them to its hooks.
// A nil or disabled emitter drops events silently, so call sites can
// emit unconditionally.
type Emitter struct {
	hooks Hooks
	cfg   Config
	now   func() time.Time
}

// NewEmitter builds an emitter over the given hooks.
func NewEmitter(hooks Hooks, cfg Config) *Emitter {
	return &Emitter{
		hooks: hooks,
		cfg:   cfg,
		now:   time.Now,
	}
}

// Enabled reports whether Emit would deliver anything.
func (e *Emitter) Enabled() bool {
	return e != nil && e.cfg.Enabled && len(e.hooks) > 0
}

// Emit fills in the configured channel and a timestamp when the event
// carries none, then notifies every hook.
func (e *Emitter) Emit(ctx context.Context, event Event) error {
	if !e.Enabled() {
		return nil
	}
	if event.Channel == "" {
		event.Channel = e.cfg.Channel
	}
	if event.OccurredAt.IsZero() {
		clock := e.now
		if clock == nil {
			clock = time.Now
		}
		event.OccurredAt = clock().UTC()
	}
	return e.hooks.Notify(ctx, event)
}

// CaptureHook retains every event it sees. Tests use it to assert on
// emitted activity without standing up a real sink.
type CaptureHook struct {
	mu     sync.Mutex
	Events []Event
}

// Notify implements Notifier.
func (h *CaptureHook) Notify(_ context.Context, event Event) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.Events = append(h.Events, event)
	return nil
}
