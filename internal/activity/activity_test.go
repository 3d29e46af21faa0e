package activity

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	pressactivity "github.com/goliatone/go-press/pkg/activity"
	"github.com/goliatone/go-press/pkg/activity/usersink"
	"github.com/goliatone/go-press/pkg/interfaces"
)

type recordingLogger struct {
	fields   []map[string]any
	messages []string
}

func (r *recordingLogger) Trace(string, ...any) {}
func (r *recordingLogger) Debug(string, ...any) {}
func (r *recordingLogger) Info(msg string, _ ...any) {
	r.messages = append(r.messages, msg)
}
func (r *recordingLogger) Warn(string, ...any)  {}
func (r *recordingLogger) Error(string, ...any) {}
func (r *recordingLogger) Fatal(string, ...any) {}

func (r *recordingLogger) WithFields(fields map[string]any) interfaces.Logger {
	copied := make(map[string]any, len(fields))
	for k, v := range fields {
		copied[k] = v
	}
	r.fields = append(r.fields, copied)
	return r
}

func (r *recordingLogger) WithContext(context.Context) interfaces.Logger { return r }

func TestMemorySinkStoresRecords(t *testing.T) {
	sink := NewMemorySink()

	first := interfaces.ActivityRecord{Verb: "build", ObjectType: "site"}
	second := interfaces.ActivityRecord{Verb: "import", ObjectType: "content"}
	if err := sink.Log(context.Background(), first); err != nil {
		t.Fatalf("log: %v", err)
	}
	if err := sink.Log(context.Background(), second); err != nil {
		t.Fatalf("log: %v", err)
	}

	records := sink.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Verb != "build" || records[1].Verb != "import" {
		t.Fatalf("unexpected record order: %+v", records)
	}

	// Snapshot is detached from the sink's own slice.
	_ = append(records, interfaces.ActivityRecord{Verb: "extra"})
	if len(sink.Records()) != 2 {
		t.Fatalf("expected sink to keep 2 records, got %d", len(sink.Records()))
	}
}

func TestMemorySinkBehindUserSinkHook(t *testing.T) {
	sink := NewMemorySink()
	emitter := pressactivity.NewEmitter(
		pressactivity.Hooks{usersink.Hook{Sink: sink}},
		pressactivity.Config{Enabled: true, Channel: "press"},
	)

	actorID := uuid.New()
	if err := emitter.Emit(context.Background(), pressactivity.Event{
		Verb:       "build",
		ActorID:    actorID.String(),
		ObjectType: "site",
		ObjectID:   "dist",
		Metadata:   map[string]any{"pages": 3},
	}); err != nil {
		t.Fatalf("emit: %v", err)
	}

	records := sink.Records()
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	record := records[0]
	if record.ActorID != actorID {
		t.Fatalf("expected actor %s got %s", actorID, record.ActorID)
	}
	if record.Verb != "build" || record.ObjectType != "site" || record.ObjectID != "dist" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "press" {
		t.Fatalf("expected channel press got %q", record.Channel)
	}
	if record.Data["pages"] != 3 {
		t.Fatalf("expected pages metadata got %v", record.Data["pages"])
	}
}

func TestLoggerNotifierLogsEventFields(t *testing.T) {
	rec := &recordingLogger{}
	notifier := NewLoggerNotifier(rec)

	occurred := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	if err := notifier.Notify(context.Background(), pressactivity.Event{
		Verb:       "verify",
		ObjectType: "content",
		ObjectID:   "content",
		Channel:    "press",
		OccurredAt: occurred,
	}); err != nil {
		t.Fatalf("notify: %v", err)
	}

	if len(rec.messages) != 1 || rec.messages[0] != "activity.event" {
		t.Fatalf("expected activity.event message, got %v", rec.messages)
	}
	if len(rec.fields) != 1 {
		t.Fatalf("expected 1 field set, got %d", len(rec.fields))
	}
	fields := rec.fields[0]
	if fields["verb"] != "verify" || fields["object_type"] != "content" {
		t.Fatalf("unexpected fields: %v", fields)
	}
	if fields["occurred_at"] != occurred.Format(time.RFC3339) {
		t.Fatalf("unexpected occurred_at field: %v", fields["occurred_at"])
	}
	if _, ok := fields["actor_id"]; ok {
		t.Fatalf("expected empty actor to be omitted, got %v", fields["actor_id"])
	}
}

func TestLoggerNotifierNilLogger(t *testing.T) {
	notifier := NewLoggerNotifier(nil)
	if err := notifier.Notify(context.Background(), pressactivity.Event{Verb: "build"}); err != nil {
		t.Fatalf("notify: %v", err)
	}
}
