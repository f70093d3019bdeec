package db

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
)

// OpenTestMetastore opens a writable, migrated metastore in t.TempDir() and
// registers cleanup.
func OpenTestMetastore(t *testing.T) *sql.DB {
	t.Helper()

	path := filepath.Join(t.TempDir(), "meta.sqlite")
	db, err := OpenMetastore(context.Background(), path, false)
	if err != nil {
		t.Fatalf("open test metastore: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if err := RunMigrations(db); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return db
}
