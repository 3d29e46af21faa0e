// Package storageconfig opens the database selected by the runtime storage
// configuration and prepares the tables the bun repositories persist into.
// The memory driver has no database; callers check HasDatabase before
// opening.
package storageconfig

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/goliatone/go-press/internal/destinations"
	"github.com/goliatone/go-press/internal/posts"
	"github.com/goliatone/go-press/internal/runtimeconfig"
	"github.com/goliatone/go-press/internal/themes"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/dialect/sqlitedialect"
)

var (
	// ErrDSNRequired is returned when a database driver is selected without
	// a connection string.
	ErrDSNRequired = errors.New("storageconfig: dsn is required")
	// ErrNoDatabaseDriver is returned when the configured driver does not
	// map to a database backend.
	ErrNoDatabaseDriver = errors.New("storageconfig: driver does not use a database")
)

// HasDatabase reports whether cfg selects a database-backed driver.
func HasDatabase(cfg runtimeconfig.StorageConfig) bool {
	switch normalizeDriver(cfg.Driver) {
	case "sqlite", "postgres":
		return true
	}
	return false
}

// OpenDB opens the configured database and wraps it with the bun dialect
// matching the driver. The caller owns the returned handle.
func OpenDB(cfg runtimeconfig.StorageConfig) (*bun.DB, error) {
	driver := normalizeDriver(cfg.Driver)
	if driver != "sqlite" && driver != "postgres" {
		return nil, fmt.Errorf("%w: %s", ErrNoDatabaseDriver, driver)
	}
	dsn := strings.TrimSpace(cfg.DSN)
	if dsn == "" {
		return nil, ErrDSNRequired
	}
	switch driver {
	case "sqlite":
		sqldb, err := sql.Open("sqlite3", dsn)
		if err != nil {
			return nil, fmt.Errorf("storageconfig: open sqlite: %w", err)
		}
		return bun.NewDB(sqldb, sqlitedialect.New()), nil
	default:
		sqldb, err := sql.Open("postgres", dsn)
		if err != nil {
			return nil, fmt.Errorf("storageconfig: open postgres: %w", err)
		}
		return bun.NewDB(sqldb, pgdialect.New()), nil
	}
}

// EnsureSchema creates every table the press repositories expect. Safe to
// call on databases that already carry the schema.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if db == nil {
		return errors.New("storageconfig: ensure schema requires a database")
	}
	if err := posts.EnsureSchema(ctx, db); err != nil {
		return err
	}
	if err := themes.EnsureSchema(ctx, db); err != nil {
		return err
	}
	if err := destinations.EnsureSchema(ctx, db); err != nil {
		return err
	}
	return nil
}

func normalizeDriver(driver string) string {
	normalized := strings.ToLower(strings.TrimSpace(driver))
	switch normalized {
	case "sqlite", "sqlite3":
		return "sqlite"
	case "postgres", "postgresql", "pg":
		return "postgres"
	case "":
		return "memory"
	}
	return normalized
}
