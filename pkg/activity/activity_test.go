package activity

import (
	"context"
	"errors"
	"testing"
	"time"
)

type failingHook struct {
	err error
}

func (h *failingHook) Notify(context.Context, Event) error {
	return h.err
}

func TestEmitterDisabledDropsEvents(t *testing.T) {
	hook := &CaptureHook{}
	emitter := NewEmitter(Hooks{hook}, Config{Enabled: false})

	if emitter.Enabled() {
		t.Fatal("expected emitter to be disabled")
	}
	if err := emitter.Emit(context.Background(), Event{Verb: "build"}); err != nil {
		t.Fatalf("emit: %v", err)
	}
	if len(hook.Events) != 0 {
		t.Fatalf("expected no events, got %d", len(hook.Events))
	}
}

func TestEmitterWithoutHooksIsDisabled(t *testing.T) {
	emitter := NewEmitter(nil, Config{Enabled: true})
	if emitter.Enabled() {
		t.Fatal("expected emitter without hooks to be disabled")
	}

	var nilEmitter *Emitter
	if nilEmitter.Enabled() {
		t.Fatal("expected nil emitter to be disabled")
	}
	if err := nilEmitter.Emit(context.Background(), Event{Verb: "build"}); err != nil {
		t.Fatalf("emit on nil emitter: %v", err)
	}
}

func TestEmitterStampsDefaults(t *testing.T) {
	now := time.Date(2025, 2, 10, 8, 30, 0, 0, time.UTC)
	hook := &CaptureHook{}
	emitter := NewEmitter(Hooks{hook}, Config{Enabled: true, Channel: "press"})
	emitter.now = func() time.Time { return now }

	if err := emitter.Emit(context.Background(), Event{
		Verb:       "build",
		ObjectType: "site",
		ObjectID:   "dist",
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	if len(hook.Events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(hook.Events))
	}
	event := hook.Events[0]
	if event.Channel != "press" {
		t.Fatalf("expected default channel press got %q", event.Channel)
	}
	if !event.OccurredAt.Equal(now) {
		t.Fatalf("expected occurred_at %v got %v", now, event.OccurredAt)
	}
}

func TestEmitterKeepsExplicitFields(t *testing.T) {
	occurred := time.Date(2024, 11, 3, 14, 0, 0, 0, time.UTC)
	hook := &CaptureHook{}
	emitter := NewEmitter(Hooks{hook}, Config{Enabled: true, Channel: "press"})

	if err := emitter.Emit(context.Background(), Event{
		Verb:       "import",
		Channel:    "cli",
		OccurredAt: occurred,
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	event := hook.Events[0]
	if event.Channel != "cli" {
		t.Fatalf("expected channel cli got %q", event.Channel)
	}
	if !event.OccurredAt.Equal(occurred) {
		t.Fatalf("expected occurred_at %v got %v", occurred, event.OccurredAt)
	}
}

func TestHooksNotifyJoinsErrors(t *testing.T) {
	sinkErr := errors.New("sink offline")
	capture := &CaptureHook{}
	emitter := NewEmitter(Hooks{&failingHook{err: sinkErr}, capture}, Config{Enabled: true})

	err := emitter.Emit(context.Background(), Event{Verb: "build"})
	if !errors.Is(err, sinkErr) {
		t.Fatalf("expected sink error, got %v", err)
	}
	if len(capture.Events) != 1 {
		t.Fatalf("expected capture hook to still receive event, got %d", len(capture.Events))
	}
}
