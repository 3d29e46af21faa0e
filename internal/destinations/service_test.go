package destinations

import (
	"context"
	"errors"
	"testing"

	"github.com/goliatone/go-press/pkg/storage"
)

func fixtureProfile(name string, isDefault bool) storage.Profile {
	return storage.Profile{
		Name:        name,
		Description: "Destination " + name,
		Provider:    "filesystem",
		Config: storage.Config{
			Name:   name,
			Driver: "filesystem",
			DSN:    "./" + name,
		},
		Default: isDefault,
	}
}

func TestServiceUpsertValidatesProfile(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, fixtureProfile("dist", false)); err != nil {
		t.Fatalf("Upsert() valid profile error = %v", err)
	}

	invalid := fixtureProfile("dist", false)
	invalid.Name = "Dist Preview"
	if _, err := svc.Upsert(ctx, invalid); !errors.Is(err, ErrProfileInvalid) {
		t.Fatalf("Upsert() expected ErrProfileInvalid for %q, got %v", invalid.Name, err)
	}

	invalid.Name = "dist/2024"
	if _, err := svc.Upsert(ctx, invalid); !errors.Is(err, ErrProfileInvalid) {
		t.Fatalf("Upsert() expected ErrProfileInvalid for %q, got %v", invalid.Name, err)
	}

	if _, err := svc.Upsert(ctx, storage.Profile{Name: "   "}); !errors.Is(err, ErrProfileNameRequired) {
		t.Fatalf("Upsert() expected ErrProfileNameRequired, got %v", err)
	}
}

func TestServiceDefaultIsExclusive(t *testing.T) {
	repo := NewMemoryRepository()
	svc := NewService(repo)
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, fixtureProfile("dist", true)); err != nil {
		t.Fatalf("Upsert(dist) error = %v", err)
	}

	events, err := svc.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	if _, err := svc.Upsert(ctx, fixtureProfile("preview", true)); err != nil {
		t.Fatalf("Upsert(preview) error = %v", err)
	}

	// The previous default is demoted before the new profile lands, so the
	// first event on the wire is the demotion.
	select {
	case evt := <-events:
		if evt.Type != ChangeUpdated || evt.Profile.Name != "dist" || evt.Profile.Default {
			t.Fatalf("expected demotion event for dist, got %+v", evt)
		}
	default:
		t.Fatalf("expected a demotion event for dist")
	}

	dist, err := svc.Get(ctx, "dist")
	if err != nil {
		t.Fatalf("Get(dist) error = %v", err)
	}
	if dist.Default {
		t.Fatalf("dist should no longer be the default destination")
	}

	active, err := svc.Default(ctx)
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if active.Name != "preview" {
		t.Fatalf("Default() = %s, want preview", active.Name)
	}
}

func TestServiceResolve(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Resolve(ctx, ""); !errors.Is(err, ErrNoDefaultDestination) {
		t.Fatalf("Resolve() on empty repository expected ErrNoDefaultDestination, got %v", err)
	}

	if _, err := svc.Upsert(ctx, fixtureProfile("dist", true)); err != nil {
		t.Fatalf("Upsert(dist) error = %v", err)
	}
	if _, err := svc.Upsert(ctx, fixtureProfile("preview", false)); err != nil {
		t.Fatalf("Upsert(preview) error = %v", err)
	}

	named, err := svc.Resolve(ctx, "preview")
	if err != nil {
		t.Fatalf("Resolve(preview) error = %v", err)
	}
	if named.Name != "preview" || named.Config.DSN != "./preview" {
		t.Fatalf("Resolve(preview) returned %+v", named)
	}

	fallback, err := svc.Resolve(ctx, "")
	if err != nil {
		t.Fatalf("Resolve(\"\") error = %v", err)
	}
	if fallback.Name != "dist" {
		t.Fatalf("Resolve(\"\") = %s, want dist", fallback.Name)
	}

	if _, err := svc.Resolve(ctx, "missing"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("Resolve(missing) expected ErrProfileNotFound, got %v", err)
	}

	if err := svc.Delete(ctx, "dist"); err != nil {
		t.Fatalf("Delete(dist) error = %v", err)
	}
	if _, err := svc.Resolve(ctx, ""); !errors.Is(err, ErrNoDefaultDestination) {
		t.Fatalf("Resolve() after deleting the default expected ErrNoDefaultDestination, got %v", err)
	}
}

func TestServiceInvalidProfileDoesNotDemote(t *testing.T) {
	svc := NewService(NewMemoryRepository())
	ctx := context.Background()

	if _, err := svc.Upsert(ctx, fixtureProfile("dist", true)); err != nil {
		t.Fatalf("Upsert(dist) error = %v", err)
	}

	invalid := fixtureProfile("Bad Name", true)
	if _, err := svc.Upsert(ctx, invalid); !errors.Is(err, ErrProfileInvalid) {
		t.Fatalf("Upsert() expected ErrProfileInvalid, got %v", err)
	}

	active, err := svc.Default(ctx)
	if err != nil {
		t.Fatalf("Default() error = %v", err)
	}
	if active.Name != "dist" {
		t.Fatalf("Default() = %s, want dist", active.Name)
	}
}
