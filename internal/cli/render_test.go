package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Veraticus/vatflow/internal/gateway"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/report"
	"github.com/Veraticus/vatflow/internal/testutil"
	"github.com/Veraticus/vatflow/internal/validation"
	"github.com/Veraticus/vatflow/internal/workset"
)

func TestWriteRecordPage(t *testing.T) {
	s := workset.NewSession()
	recs := testutil.Records(3)
	recs[1].Date = ""
	s.Set(recs, "ledger.csv")

	results, err := validation.NewEngine().Validate(context.Background(), s.Records())
	require.NoError(t, err)
	s.SetValidation(results)

	var buf bytes.Buffer
	require.NoError(t, WriteRecordPage(&buf, s.Page(1, 2)))

	out := buf.String()
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 4, "header, two rows, footer")
	assert.Contains(t, lines[0], "DESCRIPTION")
	assert.Contains(t, lines[1], "T-r1")
	assert.True(t, strings.HasPrefix(lines[2], errorMarker))
	assert.Contains(t, lines[2], model.FieldDate)
	assert.Contains(t, out, "Page 1 of 2 (3 records)")
}

func TestWriteManifests(t *testing.T) {
	var empty bytes.Buffer
	require.NoError(t, WriteManifests(&empty, nil))
	assert.Contains(t, empty.String(), "No imports yet")

	var buf bytes.Buffer
	require.NoError(t, WriteManifests(&buf, []model.ImportManifest{
		{ID: "m1", Filename: "jan.xlsx", RecordCount: 12, ImportedAt: time.Now(), ImportedBy: "ada"},
	}))
	assert.Contains(t, buf.String(), "jan.xlsx")
	assert.Contains(t, buf.String(), "12")
}

func TestRenderActivity(t *testing.T) {
	out := RenderActivity([]report.Bucket{
		{Label: "Jan", Records: 100},
		{Label: "Feb", Records: 1},
		{Label: "Mar"},
	})
	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, barWidth, strings.Count(lines[0], "█"))
	assert.Equal(t, 1, strings.Count(lines[1], "█"))
	assert.Zero(t, strings.Count(lines[2], "█"))
}

func TestRenderSummary(t *testing.T) {
	recs := []model.Record{
		testutil.NewRecord("a").Build(),
		testutil.NewRecord("b").Status("7").Build(),
	}
	out := RenderSummary(report.Summarize(recs))
	assert.Contains(t, out, "Client to Verify:")
	assert.Contains(t, out, model.UnknownStatusLabel)
	assert.Contains(t, out, "230.00")
}

func TestWriteReconciliation(t *testing.T) {
	r := gateway.Reconciliation{
		Imports: []gateway.ImportCheck{
			{Manifest: model.ImportManifest{ID: "m1", Filename: "a.csv", RecordCount: 250}, Persisted: 100},
			{Manifest: model.ImportManifest{ID: "m2", Filename: "b.csv", RecordCount: 5}, Persisted: 5},
		},
		Orphaned: 2,
		Total:    107,
	}

	var buf bytes.Buffer
	require.NoError(t, WriteReconciliation(&buf, r))
	out := buf.String()
	assert.Contains(t, out, "150")
	assert.Contains(t, out, "1 import(s) are missing records")
	assert.Contains(t, out, "2 record(s) belong to no import")
}

func TestProgressBarIgnoresRegressions(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgressBar(&buf, "Importing")

	for _, pct := range []int{0, 40, 20, 80, 150} {
		p.Report(pct)
	}
	assert.Equal(t, 100, p.Current())
}

func TestWriteInvalid(t *testing.T) {
	s := workset.NewSession()
	recs := testutil.Records(3)
	recs[2].VAT = recs[2].Amount.Add(recs[2].Amount)
	s.Set(recs, "x.csv")

	results, err := validation.NewEngine().Validate(context.Background(), s.Records())
	require.NoError(t, err)
	s.SetValidation(results)

	var buf bytes.Buffer
	require.NoError(t, WriteInvalid(&buf, s.Rows()))
	out := buf.String()
	assert.Contains(t, out, "T-r3")
	assert.Contains(t, out, validation.MsgVATExceedsAmount)
	assert.NotContains(t, out, "T-r1")

	var none bytes.Buffer
	require.NoError(t, WriteInvalid(&none, s.Rows()[:2]))
	assert.Empty(t, none.String())
}
