// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/Veraticus/vatflow/internal/model"
)

// Order selects how record queries are sorted.
type Order int

const (
	// OrderCreation returns rows oldest first, as they were inserted.
	OrderCreation Order = iota
	// OrderNewest returns rows newest first.
	OrderNewest
)

// RecordQuery filters the "data" table. Owner is required; ImportID
// narrows the query to one import.
type RecordQuery struct {
	Owner    string
	ImportID string
	Order    Order
}

// ManifestQuery filters the "data_imports" table. Results are newest first.
type ManifestQuery struct {
	Owner string
	ID    string
}

// RecordStore defines the contract for persisting records and import
// manifests.
type RecordStore interface {
	InsertManifest(ctx context.Context, manifest model.ImportManifest) error
	InsertRecords(ctx context.Context, records []model.StoredRecord) error
	SelectRecords(ctx context.Context, q RecordQuery) ([]model.StoredRecord, error)
	SelectManifests(ctx context.Context, q ManifestQuery) ([]model.ImportManifest, error)
	DeleteRecords(ctx context.Context, q RecordQuery) (int64, error)
	DeleteManifest(ctx context.Context, owner, id string) error
	CountRecords(ctx context.Context, q RecordQuery) (int, error)
	Close() error

	// Validation runs are write-once audit copies in "data_validation"
	// and "data_validation_records".
	InsertValidationRun(ctx context.Context, run model.ValidationRun) error
	InsertValidationRecords(ctx context.Context, records []model.ValidationRecord) error
	SelectValidationRecords(ctx context.Context, owner, validationID string) ([]model.ValidationRecord, error)
}

// SnapshotStore keeps one opaque blob per owner in the "user_data" table.
// Get returns common.ErrNotFound when the owner has no snapshot.
type SnapshotStore interface {
	PutSnapshot(ctx context.Context, owner string, data []byte, updatedAt time.Time) error
	GetSnapshot(ctx context.Context, owner string) ([]byte, time.Time, error)
	DeleteSnapshot(ctx context.Context, owner string) error
}

// Store is implemented by every backend.
type Store interface {
	RecordStore
	SnapshotStore
}

