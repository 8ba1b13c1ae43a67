// Package storetest provides a migrated SQLite dataset store for tests.
package storetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/Veraticus/saenggibu/internal/storage"
)

// SetupTestStore creates a migrated file-backed store in a temporary
// directory. The store is closed when the test ends.
//
// Example:
//
//	store := storetest.SetupTestStore(t)
//	run, err := store.SaveRun(ctx, result, time.Now())
func SetupTestStore(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	store, err := storage.NewSQLiteStorage(filepath.Join(t.TempDir(), "saenggibu.db"))
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("failed to close test database: %v", err)
		}
	})

	if err := store.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}
	return store
}
