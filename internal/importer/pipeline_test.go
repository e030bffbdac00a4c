package importer

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/sheet"
	"github.com/Veraticus/vatflow/internal/workset"
)

func csvWithRows(n int) string {
	var b strings.Builder
	b.WriteString("Date,TransID,Account,Amount,VAT\n")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "2024-01-01,T%d,4000,%d.00,1.00\n", i, i+10)
	}
	return b.String()
}

func TestRun_PreservesOrder(t *testing.T) {
	s := workset.NewSession()
	p := New(s)

	res, err := p.Run(context.Background(), "ledger.csv", strings.NewReader(csvWithRows(250)))
	require.NoError(t, err)

	require.Len(t, res.Records, 250)
	for i, rec := range res.Records {
		assert.Equal(t, fmt.Sprintf("T%d", i), rec.TransactionID)
	}
	assert.Equal(t, res.Records, s.Records())
	assert.Equal(t, "ledger.csv", s.Filename())
}

func TestRun_ProgressIsMonotonicAndEndsAt100(t *testing.T) {
	tests := []struct {
		name string
		rows int
		want []int
	}{
		{name: "empty sheet", rows: 0, want: []int{100}},
		{name: "single row", rows: 1, want: []int{100}},
		{name: "250 rows", rows: 250, want: []int{0, 40, 80, 100}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var seen []int
			p := New(workset.NewSession(), WithProgress(func(pct int) { seen = append(seen, pct) }))

			_, err := p.Run(context.Background(), "x.csv", strings.NewReader(csvWithRows(tt.rows)))
			require.NoError(t, err)
			assert.Equal(t, tt.want, seen)
		})
	}
}

func TestRun_ProgressLargeFile(t *testing.T) {
	var seen []int
	p := New(workset.NewSession(), WithProgress(func(pct int) { seen = append(seen, pct) }))

	_, err := p.Run(context.Background(), "big.csv", strings.NewReader(csvWithRows(2345)))
	require.NoError(t, err)

	require.NotEmpty(t, seen)
	assert.IsNonDecreasing(t, seen)
	assert.Equal(t, 100, seen[len(seen)-1])
}

func TestRun_ParseFailureKeepsWorkingSet(t *testing.T) {
	s := workset.NewSession()
	prior := []model.Record{{ID: "keep"}}
	s.Set(prior, "prior.csv")

	_, err := New(s).Run(context.Background(), "broken.xlsx", strings.NewReader("not a zip"))

	var parseErr *common.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "broken.xlsx", parseErr.File)
	assert.Equal(t, prior, s.Records())
	assert.Equal(t, "prior.csv", s.Filename())
}

func TestRun_CancelledKeepsWorkingSet(t *testing.T) {
	s := workset.NewSession()
	s.Set([]model.Record{{ID: "keep"}}, "prior.csv")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(s).Run(ctx, "big.csv", strings.NewReader(csvWithRows(1500)))
	require.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, "prior.csv", s.Filename())
}

func TestRun_UsesIDFunc(t *testing.T) {
	n := 0
	p := New(workset.NewSession(), WithIDFunc(func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}))

	res, err := p.Run(context.Background(), "two.csv", strings.NewReader(csvWithRows(2)))
	require.NoError(t, err)
	assert.Equal(t, "id-1", res.Records[0].ID)
	assert.Equal(t, "id-2", res.Records[1].ID)
}

func TestPercent(t *testing.T) {
	assert.Equal(t, 0, Percent(0, 1000))
	assert.Equal(t, 50, Percent(499, 1000))
	assert.Equal(t, 100, Percent(999, 1000))
	assert.Equal(t, 33, Percent(0, 3))
}

func TestRun_RegistryWithoutFormat(t *testing.T) {
	reg := sheet.NewRegistry()
	reg.Register(&sheet.CSVDecoder{})

	s := workset.NewSession()
	_, err := New(s, WithRegistry(reg)).Run(context.Background(), "statement.ofx", strings.NewReader("OFXHEADER:100"))

	var parseErr *common.ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, 0, s.Len())
}
