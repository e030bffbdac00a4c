package report

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/testutil"
)

func ids(recs []model.Record) []string {
	out := make([]string, len(recs))
	for i, r := range recs {
		out[i] = r.ID
	}
	return out
}

func TestLookup(t *testing.T) {
	for _, opt := range Options() {
		got, err := Lookup(string(opt.Kind))
		require.NoError(t, err)
		assert.Equal(t, opt.Title, got.Title)
	}

	got, err := Lookup(" TOP100VAT ")
	require.NoError(t, err)
	assert.Equal(t, KindTop100VAT, got.Kind)

	_, err = Lookup("bogus")
	assert.Error(t, err)
}

func TestTop100ByAmount(t *testing.T) {
	recs := make([]model.Record, 150)
	for i := range recs {
		recs[i] = testutil.NewRecord(fmt.Sprintf("r%d", i)).Amount(fmt.Sprintf("%d", i)).Build()
	}

	opt, err := Lookup(string(KindTop100Amount))
	require.NoError(t, err)
	got := opt.Select(recs)

	require.Len(t, got, 100)
	assert.Equal(t, "r149", got[0].ID)
	assert.Equal(t, "r50", got[99].ID)
	assert.Equal(t, "r0", recs[0].ID, "input must not be reordered")
}

func TestTop100KeepsTieOrder(t *testing.T) {
	recs := []model.Record{
		testutil.NewRecord("a").VAT("5").Build(),
		testutil.NewRecord("b").VAT("9").Build(),
		testutil.NewRecord("c").VAT("5").Build(),
	}
	opt, err := Lookup(string(KindTop100VAT))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a", "c"}, ids(opt.Select(recs)))
}

func TestStatusFilters(t *testing.T) {
	recs := []model.Record{
		testutil.NewRecord("verify").Status(model.StatusClientToVerify).Build(),
		testutil.NewRecord("ok").Status(model.StatusVerified).Build(),
		testutil.NewRecord("novat").Status(model.StatusNotVATRegistered).Build(),
		testutil.NewRecord("odd").Status("9").Build(),
	}

	tests := []struct {
		kind Kind
		want []string
	}{
		{KindFull, []string{"verify", "ok", "novat", "odd"}},
		{KindVerified, []string{"verify", "ok"}},
		{KindFlagged, []string{"verify", "novat"}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			opt, err := Lookup(string(tt.kind))
			require.NoError(t, err)
			assert.Equal(t, tt.want, ids(opt.Select(recs)))
		})
	}
}

func TestFileNames(t *testing.T) {
	at := time.Date(2024, 3, 9, 15, 0, 0, 0, time.UTC)

	tests := []struct {
		title string
		ext   string
		want  string
	}{
		{"Full Report", "pdf", "full-report-2024-03-09.pdf"},
		{"Top 100 by VAT", ".xlsx", "top-100-by-vat-2024-03-09.xlsx"},
		{"Q1  (draft)", "pdf", "q1-draft--2024-03-09.pdf"},
	}
	for _, tt := range tests {
		t.Run(tt.title, func(t *testing.T) {
			assert.Equal(t, tt.want, FileName(tt.title, tt.ext, at))
		})
	}

	assert.Equal(t, "ledger.csv-2024-03-09.xlsx", HistoryFileName("ledger.csv", at))
}
