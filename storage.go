package press

import (
	"context"

	"github.com/goliatone/go-press/internal/storageconfig"
	"github.com/uptrace/bun"
)

var (
	// ErrStorageDSNMissing indicates OpenStorage was called for a database
	// driver without a DSN.
	ErrStorageDSNMissing = storageconfig.ErrDSNRequired
	// ErrStorageNotDatabase indicates the configured driver does not open a
	// database connection.
	ErrStorageNotDatabase = storageconfig.ErrNoDatabaseDriver
)

// OpenStorage opens the database described by the storage configuration. Hosts
// that manage their own connection pool can skip this and hand the container a
// prepared handle through di.WithBunDB.
func OpenStorage(cfg StorageConfig) (*bun.DB, error) {
	return storageconfig.OpenDB(cfg)
}

// EnsureStorageSchema creates the tables press persists into. It is safe to
// run repeatedly; existing tables are left untouched.
func EnsureStorageSchema(ctx context.Context, db *bun.DB) error {
	return storageconfig.EnsureSchema(ctx, db)
}

// StorageHasDatabase reports whether the configured driver opens a database.
func StorageHasDatabase(cfg StorageConfig) bool {
	return storageconfig.HasDatabase(cfg)
}
