package storage

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/service"
)

func newTestStorage(t *testing.T) *SQLiteStorage {
	t.Helper()
	s, err := Open(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func stored(owner, importID string, n int, at time.Time) []model.StoredRecord {
	recs := make([]model.StoredRecord, n)
	for i := range recs {
		recs[i] = model.StoredRecord{
			ID:        fmt.Sprintf("%s-%s-%d", owner, importID, i),
			Date:      "2024-01-01",
			TransID:   fmt.Sprintf("T%d", i),
			Account:   "4000",
			Amount:    decimal.RequireFromString("115.25"),
			VAT:       decimal.RequireFromString("15.03"),
			Verified:  "0",
			Status:    "Client to Verify",
			ImportID:  importID,
			CreatedBy: owner,
			CreatedAt: at,
		}
	}
	return recs
}

func TestMigrate_Idempotent(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.Migrate(ctx))
	v, err := s.SchemaVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, ExpectedSchemaVersion, v)
}

func TestMigrate_NewerSchemaIsCorrupted(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	_, err := s.db.ExecContext(ctx, fmt.Sprintf("PRAGMA user_version = %d", ExpectedSchemaVersion+1))
	require.NoError(t, err)

	err = s.Migrate(ctx)
	assert.ErrorIs(t, err, common.ErrDatabaseCorrupted)
}

func TestRecords_InsertSelectOrder(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	t0 := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	require.NoError(t, s.InsertRecords(ctx, stored("alice", "imp1", 3, t0)))
	require.NoError(t, s.InsertRecords(ctx, stored("alice", "imp2", 2, t0.Add(time.Hour))))
	require.NoError(t, s.InsertRecords(ctx, stored("bob", "imp3", 4, t0)))

	asc, err := s.SelectRecords(ctx, service.RecordQuery{Owner: "alice"})
	require.NoError(t, err)
	require.Len(t, asc, 5)
	assert.Equal(t, "alice-imp1-0", asc[0].ID)
	assert.Equal(t, "alice-imp2-1", asc[4].ID)
	assert.True(t, decimal.RequireFromString("115.25").Equal(asc[0].Amount))
	assert.True(t, t0.Equal(asc[0].CreatedAt))

	desc, err := s.SelectRecords(ctx, service.RecordQuery{Owner: "alice", Order: service.OrderNewest})
	require.NoError(t, err)
	assert.Equal(t, "alice-imp2-1", desc[0].ID)

	one, err := s.SelectRecords(ctx, service.RecordQuery{Owner: "alice", ImportID: "imp1"})
	require.NoError(t, err)
	assert.Len(t, one, 3)
	assert.Equal(t, "imp1", one[0].ImportID)
}

func TestRecords_NullImportID(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.InsertRecords(ctx, stored("alice", "", 1, time.Now())))
	got, err := s.SelectRecords(ctx, service.RecordQuery{Owner: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Empty(t, got[0].ImportID)
}

func TestRecords_Defaulted(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	recs := stored("alice", "imp", 2, time.Now())
	recs[0].Amount = decimal.Zero
	recs[0].Defaulted = []string{model.FieldAmount, model.FieldVAT}
	require.NoError(t, s.InsertRecords(ctx, recs))

	got, err := s.SelectRecords(ctx, service.RecordQuery{Owner: "alice"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []string{model.FieldAmount, model.FieldVAT}, got[0].Defaulted)
	assert.Nil(t, got[1].Defaulted)
}

func TestRecords_BatchIsAtomic(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	batch := stored("alice", "imp", 3, time.Now())
	batch[2].ID = batch[0].ID

	require.Error(t, s.InsertRecords(ctx, batch))
	n, err := s.CountRecords(ctx, service.RecordQuery{Owner: "alice"})
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecords_Validation(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	assert.ErrorIs(t, s.InsertRecords(ctx, nil), ErrEmptySlice)

	mixed := append(stored("alice", "i", 1, time.Now()), stored("bob", "i", 1, time.Now())...)
	assert.ErrorIs(t, s.InsertRecords(ctx, mixed), ErrMixedOwnership)

	_, err := s.SelectRecords(ctx, service.RecordQuery{})
	assert.ErrorIs(t, err, ErrEmptyString)

	//nolint:staticcheck // nil context is the case under test
	_, err = s.CountRecords(nil, service.RecordQuery{Owner: "a"})
	assert.ErrorIs(t, err, ErrNilContext)
}

func TestRecords_DeleteAndCount(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	require.NoError(t, s.InsertRecords(ctx, stored("alice", "imp1", 3, time.Now())))
	require.NoError(t, s.InsertRecords(ctx, stored("alice", "imp2", 2, time.Now())))
	require.NoError(t, s.InsertRecords(ctx, stored("bob", "imp1", 1, time.Now())))

	n, err := s.DeleteRecords(ctx, service.RecordQuery{Owner: "alice", ImportID: "imp1"})
	require.NoError(t, err)
	assert.EqualValues(t, 3, n)

	left, err := s.CountRecords(ctx, service.RecordQuery{Owner: "alice"})
	require.NoError(t, err)
	assert.Equal(t, 2, left)

	bob, err := s.CountRecords(ctx, service.RecordQuery{Owner: "bob", ImportID: "imp1"})
	require.NoError(t, err)
	assert.Equal(t, 1, bob, "other owners untouched")
}

func TestManifests(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	t0 := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)

	older := model.ImportManifest{ID: "m1", Owner: "alice", Filename: "jan.xlsx", RecordCount: 10, ImportedBy: "Alice", ImportedAt: t0}
	newer := model.ImportManifest{ID: "m2", Owner: "alice", Filename: "feb.xlsx", RecordCount: 4, ImportedBy: "Alice", ImportedAt: t0.Add(24 * time.Hour)}
	require.NoError(t, s.InsertManifest(ctx, older))
	require.NoError(t, s.InsertManifest(ctx, newer))
	require.NoError(t, s.InsertManifest(ctx, model.ImportManifest{ID: "m3", Owner: "bob", Filename: "x", ImportedAt: t0}))

	list, err := s.SelectManifests(ctx, service.ManifestQuery{Owner: "alice"})
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "m2", list[0].ID)
	assert.Equal(t, 10, list[1].RecordCount)
	assert.True(t, t0.Equal(list[1].ImportedAt))

	one, err := s.SelectManifests(ctx, service.ManifestQuery{Owner: "alice", ID: "m1"})
	require.NoError(t, err)
	require.Len(t, one, 1)
	assert.Equal(t, "jan.xlsx", one[0].Filename)

	require.NoError(t, s.DeleteManifest(ctx, "alice", "m1"))
	assert.ErrorIs(t, s.DeleteManifest(ctx, "alice", "m1"), common.ErrNotFound)
	assert.ErrorIs(t, s.DeleteManifest(ctx, "alice", "m3"), common.ErrNotFound, "cannot delete another owner's import")

	assert.ErrorIs(t, s.InsertManifest(ctx, model.ImportManifest{ID: "m9", Owner: "alice"}), ErrInvalidImport)
}

func TestSnapshots(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	at := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)

	_, _, err := s.GetSnapshot(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)

	require.NoError(t, s.PutSnapshot(ctx, "alice", []byte(`[1]`), at))
	require.NoError(t, s.PutSnapshot(ctx, "alice", []byte(`[1,2]`), at.Add(time.Minute)))

	data, updated, err := s.GetSnapshot(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(data))
	assert.True(t, at.Add(time.Minute).Equal(updated))

	require.NoError(t, s.DeleteSnapshot(ctx, "alice"))
	require.NoError(t, s.DeleteSnapshot(ctx, "alice"))
	_, _, err = s.GetSnapshot(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestValidationRuns(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()
	at := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)

	run := model.ValidationRun{ID: "run1", Owner: "alice", Filename: "march.csv", RecordCount: 2, CreatedAt: at}
	require.NoError(t, s.InsertValidationRun(ctx, run))
	assert.ErrorIs(t, s.InsertValidationRun(ctx, model.ValidationRun{ID: "x", Owner: "alice"}), ErrInvalidRun)

	outcomes := []model.ValidationRecord{
		{ID: "v1", ValidationID: "run1", TransID: "T1", Amount: decimal.RequireFromString("10.5"), CreatedBy: "alice"},
		{ID: "v2", ValidationID: "run1", TransID: "T2", HasError: true,
			ErrorFields: []string{model.FieldDate, "VAT exceeds amount"}, CreatedBy: "alice"},
	}
	require.NoError(t, s.InsertValidationRecords(ctx, outcomes))

	got, err := s.SelectValidationRecords(ctx, "alice", "run1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "T1", got[0].TransID)
	assert.False(t, got[0].HasError)
	assert.Empty(t, got[0].ErrorFields)
	assert.True(t, decimal.RequireFromString("10.5").Equal(got[0].Amount))
	assert.True(t, got[1].HasError)
	assert.Equal(t, []string{model.FieldDate, "VAT exceeds amount"}, got[1].ErrorFields)

	other, err := s.SelectValidationRecords(ctx, "bob", "run1")
	require.NoError(t, err)
	assert.Empty(t, other)

	err = s.InsertValidationRecords(ctx, []model.ValidationRecord{
		{ID: "v3", ValidationID: "run1", CreatedBy: "alice"},
		{ID: "v4", ValidationID: "run1", CreatedBy: "bob"},
	})
	assert.ErrorIs(t, err, ErrMixedOwnership)
	_, err = s.SelectValidationRecords(ctx, "alice", "")
	assert.ErrorIs(t, err, ErrEmptyString)
}
