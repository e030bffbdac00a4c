// Package testutil provides test fixtures shared across packages: an
// in-memory database, record builders and a fault-injecting store.
package testutil

import (
	"context"
	"testing"

	"github.com/Veraticus/vatflow/internal/storage"
)

// SetupTestDB creates a new in-memory test database with migrations
// applied. It is closed when the test finishes.
//
// Example:
//
//	db := testutil.SetupTestDB(t)
//	gw := gateway.New(db)
func SetupTestDB(t *testing.T) *storage.SQLiteStorage {
	t.Helper()

	db, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	if err := db.Migrate(context.Background()); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Close()
	})

	return db
}
