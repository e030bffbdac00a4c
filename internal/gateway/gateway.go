// Package gateway persists working sets through a service.RecordStore in
// sequential batches and reads them back as canonical records.
package gateway

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/normalize"
	"github.com/Veraticus/vatflow/internal/service"
)

// Default batch sizes.
const (
	DefaultBatchSize        = 100
	DefaultReplaceBatchSize = 1000
	DefaultFilename         = "Untitled Import"
)

// SaveMeta describes an import being saved.
type SaveMeta struct {
	Owner      string
	Filename   string
	ImportedBy string
}

// SaveError reports a save that stopped part way. Batches before the
// failing one stay committed and the manifest keeps its original count.
type SaveError struct {
	Err       error
	Manifest  model.ImportManifest
	Committed int
}

func (e *SaveError) Error() string {
	return fmt.Sprintf("import %s: %d of %d records saved: %v",
		e.Manifest.ID, e.Committed, e.Manifest.RecordCount, e.Err)
}

func (e *SaveError) Unwrap() error {
	return e.Err
}

// Gateway is the batch persistence layer.
type Gateway struct {
	store            service.RecordStore
	now              func() time.Time
	newID            normalize.IDFunc
	batchSize        int
	replaceBatchSize int
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithBatchSizes overrides the save and replace batch sizes. Values of
// zero or less keep the defaults.
func WithBatchSizes(save, replace int) Option {
	return func(g *Gateway) {
		if save > 0 {
			g.batchSize = save
		}
		if replace > 0 {
			g.replaceBatchSize = replace
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(g *Gateway) { g.now = now }
}

// WithIDFunc overrides id generation for manifests and saved rows.
func WithIDFunc(fn normalize.IDFunc) Option {
	return func(g *Gateway) { g.newID = fn }
}

// New creates a gateway over store.
func New(store service.RecordStore, opts ...Option) *Gateway {
	g := &Gateway{
		store:            store,
		now:              time.Now,
		newID:            uuid.NewString,
		batchSize:        DefaultBatchSize,
		replaceBatchSize: DefaultReplaceBatchSize,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

func noOwner(owner string) bool {
	return strings.TrimSpace(owner) == ""
}

// Save creates a manifest for records and stores them under it. Each
// persisted row gets a fresh id. Nothing is rolled back on failure.
func (g *Gateway) Save(ctx context.Context, records []model.Record, meta SaveMeta) (model.ImportManifest, error) {
	if noOwner(meta.Owner) {
		return model.ImportManifest{}, common.ErrNoOwner
	}
	if len(records) == 0 {
		return model.ImportManifest{}, common.ErrNothingToSave
	}

	filename := strings.TrimSpace(meta.Filename)
	if filename == "" {
		filename = DefaultFilename
	}

	now := g.now()
	manifest := model.ImportManifest{
		ID:          g.newID(),
		Owner:       meta.Owner,
		Filename:    filename,
		RecordCount: len(records),
		ImportedBy:  meta.ImportedBy,
		ImportedAt:  now,
	}
	if err := g.store.InsertManifest(ctx, manifest); err != nil {
		return model.ImportManifest{}, &common.PersistenceError{Op: "save", Err: err}
	}

	committed, err := inBatches(ctx, len(records), g.batchSize, func(start, end int) error {
		batch := make([]model.StoredRecord, 0, end-start)
		for _, rec := range records[start:end] {
			rec.ID = g.newID()
			rec.ImportID = manifest.ID
			batch = append(batch, normalize.ToStored(rec, meta.Owner, now))
		}
		if err := g.store.InsertRecords(ctx, batch); err != nil {
			return err
		}
		slog.Debug("Saved batch", "import", manifest.ID, "committed", end, "total", len(records))
		return nil
	})
	if err != nil {
		slog.Warn("Save batch failed",
			"import", manifest.ID,
			"committed", committed,
			"total", len(records),
			"error", err)
		return manifest, saveFailed(manifest, committed, err)
	}

	slog.Info("Saved import",
		"import", manifest.ID,
		"filename", manifest.Filename,
		"records", committed)
	return manifest, nil
}

// inBatches calls insert for each [start, end) window of n items in order,
// stopping at the first error or cancellation. It returns the number of
// items inserted before stopping.
func inBatches(ctx context.Context, n, size int, insert func(start, end int) error) (int, error) {
	done := 0
	for start := 0; start < n; start += size {
		if err := ctx.Err(); err != nil {
			return done, err
		}
		end := min(start+size, n)
		if err := insert(start, end); err != nil {
			return done, err
		}
		done = end
	}
	return done, nil
}

func saveFailed(m model.ImportManifest, committed int, err error) error {
	return &common.PersistenceError{
		Op:  "save",
		Err: &SaveError{Manifest: m, Committed: committed, Err: err},
	}
}

// Resave replaces prev with a fresh import of records. The old manifest and
// its rows are deleted first; a manifest that is already gone is ignored.
func (g *Gateway) Resave(ctx context.Context, prev model.ImportManifest, records []model.Record, meta SaveMeta) (model.ImportManifest, error) {
	if noOwner(meta.Owner) {
		return model.ImportManifest{}, common.ErrNoOwner
	}
	if len(records) == 0 {
		return model.ImportManifest{}, common.ErrNothingToSave
	}

	err := g.DeleteManifest(ctx, meta.Owner, prev.ID, true)
	if err != nil && !errors.Is(err, common.ErrNotFound) {
		return model.ImportManifest{}, err
	}
	slog.Debug("Replacing import", "import", prev.ID, "filename", prev.Filename)
	return g.Save(ctx, records, meta)
}

// Replace swaps the owner's persisted records for records, keeping their
// ids and import ids. Records without an id get one.
func (g *Gateway) Replace(ctx context.Context, owner string, records []model.Record) error {
	if noOwner(owner) {
		return common.ErrNoOwner
	}

	if _, err := g.store.DeleteRecords(ctx, service.RecordQuery{Owner: owner}); err != nil {
		return &common.PersistenceError{Op: "replace", Err: err}
	}

	now := g.now()
	done, err := inBatches(ctx, len(records), g.replaceBatchSize, func(start, end int) error {
		batch := make([]model.StoredRecord, 0, end-start)
		for _, rec := range records[start:end] {
			if rec.ID == "" {
				rec.ID = g.newID()
			}
			batch = append(batch, normalize.ToStored(rec, owner, now))
		}
		return g.store.InsertRecords(ctx, batch)
	})
	if err != nil {
		return &common.PersistenceError{
			Op:  "replace",
			Err: fmt.Errorf("after %d of %d records: %w", done, len(records), err),
		}
	}
	return nil
}

// Load reads persisted records back into canonical form. Without an owner
// it returns nothing.
func (g *Gateway) Load(ctx context.Context, scope model.Scope, order service.Order) ([]model.Record, error) {
	if noOwner(scope.Owner) {
		return []model.Record{}, nil
	}

	rows, err := g.store.SelectRecords(ctx, service.RecordQuery{
		Owner:    scope.Owner,
		ImportID: scope.ImportID,
		Order:    order,
	})
	if err != nil {
		return nil, &common.PersistenceError{Op: "load", Err: err}
	}
	return normalize.FromStoredAll(rows), nil
}

// Manifests lists the owner's imports, newest first.
func (g *Gateway) Manifests(ctx context.Context, owner string) ([]model.ImportManifest, error) {
	if noOwner(owner) {
		return []model.ImportManifest{}, nil
	}

	manifests, err := g.store.SelectManifests(ctx, service.ManifestQuery{Owner: owner})
	if err != nil {
		return nil, &common.PersistenceError{Op: "load", Err: err}
	}
	if manifests == nil {
		manifests = []model.ImportManifest{}
	}
	return manifests, nil
}

// Manifest returns one of the owner's imports.
func (g *Gateway) Manifest(ctx context.Context, owner, id string) (model.ImportManifest, error) {
	if noOwner(owner) {
		return model.ImportManifest{}, common.ErrNoOwner
	}

	manifests, err := g.store.SelectManifests(ctx, service.ManifestQuery{Owner: owner, ID: id})
	if err != nil {
		return model.ImportManifest{}, &common.PersistenceError{Op: "load", Err: err}
	}
	if len(manifests) == 0 {
		return model.ImportManifest{}, fmt.Errorf("import %s: %w", id, common.ErrNotFound)
	}
	return manifests[0], nil
}

// Clear hard-deletes every record the owner has. Manifests are kept.
func (g *Gateway) Clear(ctx context.Context, owner string) (int64, error) {
	if noOwner(owner) {
		return 0, common.ErrNoOwner
	}

	n, err := g.store.DeleteRecords(ctx, service.RecordQuery{Owner: owner})
	if err != nil {
		return 0, &common.PersistenceError{Op: "clear", Err: err}
	}
	slog.Info("Cleared records", "owner", owner, "deleted", n)
	return n, nil
}

// DeleteManifest removes one import. Its records are orphaned unless purge
// is set, in which case they are deleted first.
func (g *Gateway) DeleteManifest(ctx context.Context, owner, id string, purge bool) error {
	if noOwner(owner) {
		return common.ErrNoOwner
	}

	if purge {
		n, err := g.store.DeleteRecords(ctx, service.RecordQuery{Owner: owner, ImportID: id})
		if err != nil {
			return &common.PersistenceError{Op: "delete", Err: err}
		}
		slog.Debug("Purged import records", "import", id, "deleted", n)
	}

	if err := g.store.DeleteManifest(ctx, owner, id); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return err
		}
		return &common.PersistenceError{Op: "delete", Err: err}
	}
	return nil
}
