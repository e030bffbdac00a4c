package storage

import (
	"context"
	"fmt"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/service"
)

// InsertManifest records a new import.
func (s *SQLiteStorage) InsertManifest(ctx context.Context, m model.ImportManifest) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateManifest(m); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO data_imports (id, user_id, filename, record_count, imported_by, imported_at)
		VALUES (?, ?, ?, ?, ?, ?)`,
		m.ID, m.Owner, m.Filename, m.RecordCount, m.ImportedBy, m.ImportedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert import %s: %w", m.ID, err)
	}
	return nil
}

// SelectManifests lists the owner's imports, newest first.
func (s *SQLiteStorage) SelectManifests(ctx context.Context, q service.ManifestQuery) ([]model.ImportManifest, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(q.Owner, "owner"); err != nil {
		return nil, err
	}

	query := `SELECT id, user_id, filename, record_count, imported_by, imported_at
		FROM data_imports WHERE user_id = ?`
	args := []any{q.Owner}
	if q.ID != "" {
		query += ` AND id = ?`
		args = append(args, q.ID)
	}
	query += ` ORDER BY imported_at DESC, rowid DESC`

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var manifests []model.ImportManifest
	for rows.Next() {
		var m model.ImportManifest
		if err := rows.Scan(&m.ID, &m.Owner, &m.Filename, &m.RecordCount, &m.ImportedBy, &m.ImportedAt); err != nil {
			return nil, fmt.Errorf("failed to scan import: %w", err)
		}
		manifests = append(manifests, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating imports: %w", err)
	}
	return manifests, nil
}

// DeleteManifest removes one import. Its records are not touched.
func (s *SQLiteStorage) DeleteManifest(ctx context.Context, owner, id string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(owner, "owner"); err != nil {
		return err
	}
	if err := validateString(id, "id"); err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `DELETE FROM data_imports WHERE id = ? AND user_id = ?`, id, owner)
	if err != nil {
		return fmt.Errorf("failed to delete import %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted import: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("import %s: %w", id, common.ErrNotFound)
	}
	return nil
}
