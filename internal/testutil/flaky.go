package testutil

import (
	"context"
	"errors"
	"sync"

	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/service"
)

// ErrInjected is returned by FlakyStore when a configured failure fires.
var ErrInjected = errors.New("injected failure")

// FlakyStore wraps a RecordStore and fails chosen calls.
type FlakyStore struct {
	service.RecordStore

	// FailInsertBatch is the 1-based InsertRecords call that fails. Zero
	// disables it.
	FailInsertBatch int
	// FailManifest makes InsertManifest fail.
	FailManifest bool
	// FailSelect makes SelectRecords and SelectManifests fail.
	FailSelect bool
	// FailValidationRun makes InsertValidationRun fail.
	FailValidationRun bool

	mu      sync.Mutex
	batches []int
}

// NewFlakyStore wraps inner.
func NewFlakyStore(inner service.RecordStore) *FlakyStore {
	return &FlakyStore{RecordStore: inner}
}

// InsertManifest forwards unless FailManifest is set.
func (f *FlakyStore) InsertManifest(ctx context.Context, m model.ImportManifest) error {
	if f.FailManifest {
		return ErrInjected
	}
	return f.RecordStore.InsertManifest(ctx, m)
}

// InsertRecords records the batch size and forwards unless this call is
// the one configured to fail.
func (f *FlakyStore) InsertRecords(ctx context.Context, records []model.StoredRecord) error {
	f.mu.Lock()
	f.batches = append(f.batches, len(records))
	call := len(f.batches)
	f.mu.Unlock()

	if call == f.FailInsertBatch {
		return ErrInjected
	}
	return f.RecordStore.InsertRecords(ctx, records)
}

// InsertValidationRun forwards unless FailValidationRun is set.
func (f *FlakyStore) InsertValidationRun(ctx context.Context, run model.ValidationRun) error {
	if f.FailValidationRun {
		return ErrInjected
	}
	return f.RecordStore.InsertValidationRun(ctx, run)
}

// InsertValidationRecords counts as a batch the same way InsertRecords does.
func (f *FlakyStore) InsertValidationRecords(ctx context.Context, records []model.ValidationRecord) error {
	f.mu.Lock()
	f.batches = append(f.batches, len(records))
	call := len(f.batches)
	f.mu.Unlock()

	if call == f.FailInsertBatch {
		return ErrInjected
	}
	return f.RecordStore.InsertValidationRecords(ctx, records)
}

// SelectRecords forwards unless FailSelect is set.
func (f *FlakyStore) SelectRecords(ctx context.Context, q service.RecordQuery) ([]model.StoredRecord, error) {
	if f.FailSelect {
		return nil, ErrInjected
	}
	return f.RecordStore.SelectRecords(ctx, q)
}

// SelectManifests forwards unless FailSelect is set.
func (f *FlakyStore) SelectManifests(ctx context.Context, q service.ManifestQuery) ([]model.ImportManifest, error) {
	if f.FailSelect {
		return nil, ErrInjected
	}
	return f.RecordStore.SelectManifests(ctx, q)
}

// Batches returns the size of every batch insert, in order.
func (f *FlakyStore) Batches() []int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]int(nil), f.batches...)
}
