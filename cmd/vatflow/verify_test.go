package main

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/vatflow/internal/gateway"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/service"
	"github.com/Veraticus/vatflow/internal/testutil"
)

func TestFileSaverReplacesOwnImport(t *testing.T) {
	g := gateway.New(testutil.SetupTestDB(t))
	ctx := context.Background()
	save := fileSaver(g, gateway.SaveMeta{Owner: "owner-1", Filename: "ledger.csv"})

	records := testutil.Records(3)
	require.NoError(t, save(ctx, records))
	records[1].Notes = "second pass"
	require.NoError(t, save(ctx, records))
	require.NoError(t, save(ctx, records))

	manifests, err := g.Manifests(ctx, "owner-1")
	require.NoError(t, err)
	require.Len(t, manifests, 1)
	assert.Equal(t, "ledger.csv", manifests[0].Filename)

	loaded, err := g.Load(ctx, model.Scope{Owner: "owner-1"}, service.OrderCreation)
	require.NoError(t, err)
	require.Len(t, loaded, 3)
	assert.Equal(t, "second pass", loaded[1].Notes)
}

func TestFileSaverRetriesPartialSave(t *testing.T) {
	flaky := testutil.NewFlakyStore(testutil.SetupTestDB(t))
	flaky.FailInsertBatch = 1
	g := gateway.New(flaky)
	ctx := context.Background()
	save := fileSaver(g, gateway.SaveMeta{Owner: "owner-1", Filename: "ledger.csv"})

	require.ErrorIs(t, save(ctx, testutil.Records(2)), testutil.ErrInjected)
	require.NoError(t, save(ctx, testutil.Records(2)))

	manifests, err := g.Manifests(ctx, "owner-1")
	require.NoError(t, err)
	assert.Len(t, manifests, 1, "the failed attempt's manifest is replaced")
}
