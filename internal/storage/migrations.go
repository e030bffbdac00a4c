package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/Veraticus/vatflow/internal/common"
)

// ExpectedSchemaVersion is the schema version this binary writes. A
// database at any other version after migrating is refused.
const ExpectedSchemaVersion = 5

// Migration is one schema step, applied in its own transaction together
// with the user_version bump.
type Migration struct {
	Up          func(ctx context.Context, tx *sql.Tx) error
	Description string
	Version     int
}

// statements returns an Up func running each query in order.
func statements(queries ...string) func(context.Context, *sql.Tx) error {
	return func(ctx context.Context, tx *sql.Tx) error {
		for _, query := range queries {
			if _, err := tx.ExecContext(ctx, query); err != nil {
				return fmt.Errorf("failed to execute query: %w", err)
			}
		}
		return nil
	}
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: statements(
			`CREATE TABLE IF NOT EXISTS data_imports (
				id TEXT PRIMARY KEY,
				user_id TEXT NOT NULL,
				filename TEXT NOT NULL,
				record_count INTEGER NOT NULL DEFAULT 0,
				imported_by TEXT NOT NULL DEFAULT '',
				imported_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_data_imports_user ON data_imports(user_id, imported_at)`,

			// import_id is not a foreign key: deleting a manifest
			// leaves its rows in place.
			`CREATE TABLE IF NOT EXISTS data (
				id TEXT PRIMARY KEY,
				date TEXT NOT NULL DEFAULT '',
				trans_id TEXT NOT NULL DEFAULT '',
				account TEXT NOT NULL DEFAULT '',
				aname TEXT NOT NULL DEFAULT '',
				reference TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				amount TEXT NOT NULL DEFAULT '0',
				vat TEXT NOT NULL DEFAULT '0',
				flag TEXT NOT NULL DEFAULT '',
				verified TEXT NOT NULL DEFAULT '0',
				status TEXT NOT NULL DEFAULT '',
				notes TEXT NOT NULL DEFAULT '',
				import_id TEXT,
				created_by TEXT NOT NULL,
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_data_owner ON data(created_by, created_at)`,
		),
	},
	{
		Version:     2,
		Description: "Index records by import",
		Up: statements(
			`CREATE INDEX idx_data_import ON data(import_id)`,
		),
	},
	{
		Version:     3,
		Description: "Add legacy per-user snapshot table",
		Up: statements(
			`CREATE TABLE IF NOT EXISTS user_data (
				user_id TEXT PRIMARY KEY,
				data TEXT NOT NULL,
				updated_at DATETIME NOT NULL
			)`,
		),
	},
	{
		Version:     4,
		Description: "Track defaulted amount and VAT",
		Up: statements(
			`ALTER TABLE data ADD COLUMN defaulted TEXT NOT NULL DEFAULT ''`,
		),
	},
	{
		Version:     5,
		Description: "Add validation run tables",
		Up: statements(
			`CREATE TABLE IF NOT EXISTS data_validation (
				id TEXT PRIMARY KEY,
				filename TEXT NOT NULL DEFAULT '',
				record_count INTEGER NOT NULL DEFAULT 0,
				created_by TEXT NOT NULL,
				created_at DATETIME NOT NULL
			)`,
			`CREATE INDEX idx_data_validation_owner ON data_validation(created_by, created_at)`,
			`CREATE TABLE IF NOT EXISTS data_validation_records (
				id TEXT PRIMARY KEY,
				validation_id TEXT NOT NULL REFERENCES data_validation(id) ON DELETE CASCADE,
				date TEXT NOT NULL DEFAULT '',
				trans_id TEXT NOT NULL DEFAULT '',
				account TEXT NOT NULL DEFAULT '',
				aname TEXT NOT NULL DEFAULT '',
				reference TEXT NOT NULL DEFAULT '',
				description TEXT NOT NULL DEFAULT '',
				amount TEXT NOT NULL DEFAULT '0',
				vat TEXT NOT NULL DEFAULT '0',
				has_error INTEGER NOT NULL DEFAULT 0,
				error_fields TEXT NOT NULL DEFAULT '[]',
				created_by TEXT NOT NULL
			)`,
			`CREATE INDEX idx_data_validation_records_run ON data_validation_records(validation_id)`,
		),
	},
}

// SchemaVersion returns the database's current schema version.
func (s *SQLiteStorage) SchemaVersion(ctx context.Context) (int, error) {
	var version int
	if err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&version); err != nil {
		return 0, fmt.Errorf("failed to get schema version: %w", err)
	}
	return version, nil
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	current, err := s.SchemaVersion(ctx)
	if err != nil {
		return err
	}

	for _, m := range migrations {
		if m.Version <= current {
			continue
		}
		if err := s.apply(ctx, m); err != nil {
			return err
		}
		slog.Debug("Applied migration", "version", m.Version, "description", m.Description)
	}

	final, err := s.SchemaVersion(ctx)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}
	if final != ExpectedSchemaVersion {
		return fmt.Errorf("%w: schema version mismatch: expected %d, got %d",
			common.ErrDatabaseCorrupted, ExpectedSchemaVersion, final)
	}
	return nil
}

func (s *SQLiteStorage) apply(ctx context.Context, m Migration) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	if err := m.Up(ctx, tx); err != nil {
		return fmt.Errorf("migration %d failed: %w", m.Version, err)
	}
	if _, err := tx.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", m.Version)); err != nil {
		return fmt.Errorf("failed to update schema version: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit migration %d: %w", m.Version, err)
	}
	return nil
}
