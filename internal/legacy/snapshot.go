// Package legacy keeps a whole working set as a single JSON snapshot per
// owner, the storage path used before records had their own table.
package legacy

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/normalize"
	"github.com/Veraticus/vatflow/internal/service"
)

// Snapshot is a loaded working set and when it was written.
type Snapshot struct {
	SavedAt time.Time
	Records []model.Record
}

// Snapshots reads and writes owner snapshots.
type Snapshots struct {
	store service.SnapshotStore
	now   func() time.Time
}

// New creates a snapshot manager over store.
func New(store service.SnapshotStore) *Snapshots {
	return &Snapshots{store: store, now: time.Now}
}

// Save replaces the owner's snapshot with records. Rows use the display
// column names so older snapshots and new ones read the same way.
func (s *Snapshots) Save(ctx context.Context, owner string, records []model.Record) error {
	if owner == "" {
		return common.ErrNoOwner
	}

	rows := make([]model.RawRow, len(records))
	for i, rec := range records {
		row := normalize.ToRow(rec, normalize.ConventionDisplay)
		row["ID"] = rec.ID
		if rec.ImportID != "" {
			row["ImportID"] = rec.ImportID
		}
		rows[i] = row
	}

	data, err := json.Marshal(rows)
	if err != nil {
		return fmt.Errorf("failed to encode snapshot: %w", err)
	}
	if err := s.store.PutSnapshot(ctx, owner, data, s.now()); err != nil {
		return &common.PersistenceError{Op: "save", Err: err}
	}
	return nil
}

// Load returns the owner's snapshot. A missing snapshot, or no owner,
// yields an empty one.
func (s *Snapshots) Load(ctx context.Context, owner string) (Snapshot, error) {
	if owner == "" {
		return Snapshot{Records: []model.Record{}}, nil
	}

	data, savedAt, err := s.store.GetSnapshot(ctx, owner)
	if errors.Is(err, common.ErrNotFound) {
		return Snapshot{Records: []model.Record{}}, nil
	}
	if err != nil {
		return Snapshot{}, &common.PersistenceError{Op: "load", Err: err}
	}

	var rows []model.RawRow
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&rows); err != nil {
		return Snapshot{}, &common.PersistenceError{
			Op:  "load",
			Err: fmt.Errorf("%w: snapshot for %s: %w", common.ErrDatabaseCorrupted, owner, err),
		}
	}

	records := make([]model.Record, len(rows))
	for i, row := range rows {
		records[i] = normalize.Rehydrate(row)
		if records[i].ID == "" {
			records[i].ID = normalize.NewID()
		}
	}
	return Snapshot{SavedAt: savedAt, Records: records}, nil
}

// Delete drops the owner's snapshot.
func (s *Snapshots) Delete(ctx context.Context, owner string) error {
	if owner == "" {
		return common.ErrNoOwner
	}
	if err := s.store.DeleteSnapshot(ctx, owner); err != nil {
		return &common.PersistenceError{Op: "delete", Err: err}
	}
	return nil
}
