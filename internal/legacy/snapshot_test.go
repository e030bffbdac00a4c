package legacy

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/testutil"
)

func TestSnapshots_RoundTrip(t *testing.T) {
	db := testutil.SetupTestDB(t)
	s := New(db)
	at := time.Date(2024, 8, 1, 9, 30, 0, 0, time.UTC)
	s.now = func() time.Time { return at }
	ctx := context.Background()

	records := []model.Record{
		testutil.NewRecord("a").Amount("1150.10").VAT("150.01").Notes("n1").Build(),
		testutil.NewRecord("b").Status(model.StatusNotVATRegistered).Build(),
	}
	records[0].ImportID = "imp-1"

	require.NoError(t, s.Save(ctx, "alice", records))

	snap, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, at.Equal(snap.SavedAt))
	require.Len(t, snap.Records, 2)
	assert.Equal(t, records[0].ID, snap.Records[0].ID)
	assert.Equal(t, "imp-1", snap.Records[0].ImportID)
	assert.True(t, records[0].Amount.Equal(snap.Records[0].Amount))
	assert.True(t, records[0].VAT.Equal(snap.Records[0].VAT))
	assert.Equal(t, "Not VAT Registered", snap.Records[1].StatusLabel)
}

func TestSnapshots_ReplaceOnWrite(t *testing.T) {
	s := New(testutil.SetupTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", testutil.Records(3)))
	require.NoError(t, s.Save(ctx, "alice", testutil.Records(1)))

	snap, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Len(t, snap.Records, 1)
}

func TestSnapshots_MissingAndNoOwner(t *testing.T) {
	s := New(testutil.SetupTestDB(t))
	ctx := context.Background()

	snap, err := s.Load(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, snap.Records)

	snap, err = s.Load(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, snap.Records)

	assert.ErrorIs(t, s.Save(ctx, "", nil), common.ErrNoOwner)
	assert.ErrorIs(t, s.Delete(ctx, ""), common.ErrNoOwner)
}

func TestSnapshots_Delete(t *testing.T) {
	s := New(testutil.SetupTestDB(t))
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, "alice", testutil.Records(2)))
	require.NoError(t, s.Delete(ctx, "alice"))

	snap, err := s.Load(ctx, "alice")
	require.NoError(t, err)
	assert.Empty(t, snap.Records)
}

func TestSnapshots_Corrupted(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	require.NoError(t, db.PutSnapshot(ctx, "alice", []byte("{not json"), time.Now()))

	_, err := New(db).Load(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrDatabaseCorrupted)
}

func TestSnapshots_LegacyNumbers(t *testing.T) {
	db := testutil.SetupTestDB(t)
	ctx := context.Background()
	legacy := `[{"Date":"2023-12-01","TransID":"T1","Account":"4000","Amount":115,"VAT":15,"Verified":"1"}]`
	require.NoError(t, db.PutSnapshot(ctx, "alice", []byte(legacy), time.Now()))

	snap, err := New(db).Load(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, snap.Records, 1)
	assert.Equal(t, "115", snap.Records[0].Amount.String())
	assert.NotEmpty(t, snap.Records[0].ID, "rows without ids get one")
	assert.Empty(t, snap.Records[0].Defaulted)
}
