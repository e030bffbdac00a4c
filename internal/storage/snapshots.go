package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/vatflow/internal/common"
)

// PutSnapshot stores the owner's snapshot, replacing any earlier one.
func (s *SQLiteStorage) PutSnapshot(ctx context.Context, owner string, data []byte, updatedAt time.Time) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(owner, "owner"); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx,
		`REPLACE INTO user_data (user_id, data, updated_at) VALUES (?, ?, ?)`,
		owner, string(data), updatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the owner's snapshot and when it was written.
func (s *SQLiteStorage) GetSnapshot(ctx context.Context, owner string) ([]byte, time.Time, error) {
	if err := validateContext(ctx); err != nil {
		return nil, time.Time{}, err
	}
	if err := validateString(owner, "owner"); err != nil {
		return nil, time.Time{}, err
	}

	var data string
	var updatedAt time.Time
	err := s.db.QueryRowContext(ctx,
		`SELECT data, updated_at FROM user_data WHERE user_id = ?`, owner).Scan(&data, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, time.Time{}, fmt.Errorf("snapshot for %s: %w", owner, common.ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return []byte(data), updatedAt, nil
}

// DeleteSnapshot removes the owner's snapshot. Deleting a missing snapshot
// is not an error.
func (s *SQLiteStorage) DeleteSnapshot(ctx context.Context, owner string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(owner, "owner"); err != nil {
		return err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM user_data WHERE user_id = ?`, owner); err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}
