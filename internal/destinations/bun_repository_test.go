package destinations

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/goliatone/go-press/pkg/storage"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

func TestBunRepository_CRUDEvents(t *testing.T) {
	db := newTestDB(t)
	repo := NewBunRepository(db)
	ctx := context.Background()

	if _, err := repo.List(ctx); err != nil {
		t.Fatalf("List() error = %v", err)
	}

	events, err := repo.Subscribe(ctx)
	if err != nil {
		t.Fatalf("Subscribe() error = %v", err)
	}

	profile := storage.Profile{
		Name:        "dist",
		Description: "Production site tree",
		Provider:    "filesystem",
		Config: storage.Config{
			Name:   "dist",
			Driver: "filesystem",
			DSN:    "./dist",
			Options: map[string]any{
				"permissions": "0755",
			},
		},
		Fallbacks: []string{"archive"},
		Labels: map[string]string{
			"tier": "production",
		},
		Default: true,
	}

	stored, err := repo.Upsert(ctx, profile)
	if err != nil {
		t.Fatalf("Upsert() create error = %v", err)
	}
	if stored.Name != "dist" || stored.Config.DSN != "./dist" {
		t.Fatalf("Upsert() returned %+v", stored)
	}
	assertEvent(t, events, ChangeCreated)

	profile.Description = "Production site tree (versioned)"
	profile.Config.Options["permissions"] = "0775"
	if _, err := repo.Upsert(ctx, profile); err != nil {
		t.Fatalf("Upsert() update error = %v", err)
	}
	assertEvent(t, events, ChangeUpdated)

	fetched, err := repo.Get(ctx, "dist")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if fetched.Description != "Production site tree (versioned)" {
		t.Fatalf("Get() returned %+v", fetched)
	}
	if fetched.Config.Options["permissions"] != "0775" {
		t.Fatalf("Get() did not round-trip config options: %+v", fetched.Config.Options)
	}
	if len(fetched.Fallbacks) != 1 || fetched.Fallbacks[0] != "archive" {
		t.Fatalf("Get() did not round-trip fallbacks: %+v", fetched.Fallbacks)
	}

	list, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 1 || list[0].Name != "dist" {
		t.Fatalf("List() returned %+v", list)
	}

	if err := repo.Delete(ctx, "dist"); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	assertEvent(t, events, ChangeDeleted)

	if _, err := repo.Get(ctx, "dist"); !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestBunRepository_DeleteMissing(t *testing.T) {
	db := newTestDB(t)
	repo := NewBunRepository(db)

	err := repo.Delete(context.Background(), "missing")
	if !errors.Is(err, ErrProfileNotFound) {
		t.Fatalf("expected ErrProfileNotFound, got %v", err)
	}
}

func TestBunRepository_RequiresName(t *testing.T) {
	db := newTestDB(t)
	repo := NewBunRepository(db)
	ctx := context.Background()

	if _, err := repo.Upsert(ctx, storage.Profile{}); !errors.Is(err, ErrProfileNameRequired) {
		t.Fatalf("expected ErrProfileNameRequired, got %v", err)
	}
	if _, err := repo.Get(ctx, " "); !errors.Is(err, ErrProfileNameRequired) {
		t.Fatalf("expected ErrProfileNameRequired, got %v", err)
	}
	if err := repo.Delete(ctx, ""); !errors.Is(err, ErrProfileNameRequired) {
		t.Fatalf("expected ErrProfileNameRequired, got %v", err)
	}
}

func newTestDB(t *testing.T) *bun.DB {
	t.Helper()
	sqldb, err := sql.Open("sqlite3", "file:destinations_test?mode=memory&cache=shared&_fk=1")
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	t.Cleanup(func() {
		_ = sqldb.Close()
	})

	db := bun.NewDB(sqldb, sqlitedialect.New())
	t.Cleanup(func() {
		_ = db.Close()
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := db.NewCreateTable().Model((*destinationModel)(nil)).IfNotExists().Exec(ctx); err != nil {
		t.Fatalf("create table: %v", err)
	}
	return db
}
