package report

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/normalize"
	"github.com/Veraticus/vatflow/internal/sheet"
	"github.com/Veraticus/vatflow/internal/testutil"
)

func TestWriteExcelRoundTrip(t *testing.T) {
	recs := []model.Record{
		testutil.NewRecord("a").Amount("1234.5").VAT("205.75").Notes("checked").Build(),
		testutil.NewRecord("b").Status(model.StatusNotVATRegistered).Build(),
	}

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, HistorySheet, recs))

	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, HistorySheet, f.GetSheetName(0))
	require.NoError(t, f.Close())

	rows, err := sheet.Read("export.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	for i, row := range rows {
		got := normalize.Normalize(row, func() string { return recs[i].ID })
		assert.True(t, recs[i].Amount.Equal(got.Amount), "amount %s != %s", recs[i].Amount, got.Amount)
		assert.True(t, recs[i].VAT.Equal(got.VAT))
		assert.Equal(t, recs[i].Status, got.Status)
		assert.Equal(t, recs[i].Notes, got.Notes)
		assert.Equal(t, recs[i].TransactionID, got.TransactionID)
		assert.Empty(t, got.Defaulted)
	}
}

func TestWriteExcelKeepsMissingAmountBlank(t *testing.T) {
	recs := []model.Record{testutil.NewRecord("a").MissingAmount().Build()}

	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, ReportSheet, recs))

	rows, err := sheet.Read("export.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	require.Len(t, rows, 1)

	got := normalize.Normalize(rows[0], func() string { return "a" })
	assert.Equal(t, []string{model.FieldAmount}, got.Defaulted)
	assert.True(t, got.Amount.IsZero())
	assert.True(t, recs[0].VAT.Equal(got.VAT))
}

func TestWriteExcelEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteExcel(&buf, ReportSheet, nil))

	rows, err := sheet.Read("empty.xlsx", bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestWritePDF(t *testing.T) {
	recs := make([]model.Record, 0, 120)
	for _, r := range testutil.Records(120) {
		recs = append(recs, r.WithStatus(model.Statuses()[len(recs)%3]))
	}
	recs[0].Description = "A description far too long to fit inside its column without being cut short"

	var (
		buf      bytes.Buffer
		progress []int
	)
	err := WritePDF(&buf, "Full Report", recs, PDFOptions{
		GeneratedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC),
		OnPage:      func(p int) { progress = append(progress, p) },
	})
	require.NoError(t, err)

	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	require.NotEmpty(t, progress)
	assert.Greater(t, len(progress), 1, "120 rows span several pages")
	assert.Equal(t, 100, progress[len(progress)-1])
	for i := 1; i < len(progress); i++ {
		assert.GreaterOrEqual(t, progress[i], progress[i-1])
	}
}

func TestWritePDFNoRecords(t *testing.T) {
	var (
		buf      bytes.Buffer
		progress []int
	)
	require.NoError(t, WritePDF(&buf, "Empty", nil, PDFOptions{OnPage: func(p int) { progress = append(progress, p) }}))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF")))
	assert.Equal(t, []int{100}, progress)
}

func TestSummarize(t *testing.T) {
	recs := []model.Record{
		testutil.NewRecord("a").Amount("100").VAT("20").Build(),
		testutil.NewRecord("b").Amount("50.5").VAT("0").Status(model.StatusVerified).Build(),
		testutil.NewRecord("c").Amount("10").VAT("1").Status(model.StatusNotVATRegistered).Build(),
		testutil.NewRecord("d").Amount("1").VAT("0").Status("x").Build(),
	}

	s := Summarize(recs)
	assert.Equal(t, 4, s.Total)
	assert.Equal(t, 1, s.ByStatus[model.StatusClientToVerify])
	assert.Equal(t, 1, s.ByStatus[model.StatusVerified])
	assert.Equal(t, 1, s.ByStatus[model.StatusNotVATRegistered])
	assert.Equal(t, 1, s.Unknown)
	assert.True(t, decimal.RequireFromString("161.5").Equal(s.Amount))
	assert.True(t, decimal.NewFromInt(21).Equal(s.VAT))

	empty := Summarize(nil)
	assert.Zero(t, empty.Total)
	assert.Len(t, empty.ByStatus, 3)
	assert.True(t, empty.Amount.IsZero())
}

func TestActivity(t *testing.T) {
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	manifest := func(ago time.Duration, count int) model.ImportManifest {
		return model.ImportManifest{ImportedAt: now.Add(-ago), RecordCount: count}
	}
	manifests := []model.ImportManifest{
		manifest(30*time.Minute, 10),
		manifest(90*time.Minute, 5),
		manifest(23*time.Hour+30*time.Minute, 7),
		manifest(3*24*time.Hour, 4),
		manifest(20*24*time.Hour, 3),
		manifest(100*24*time.Hour, 2),
		manifest(400*24*time.Hour, 1),
	}

	t.Run("day", func(t *testing.T) {
		b := Activity(manifests, WindowDay, now)
		require.Len(t, b, 24)
		assert.Equal(t, 10, b[23].Records)
		assert.Equal(t, 5, b[22].Records)
		assert.Equal(t, 7, b[0].Records)
		assert.Equal(t, "12:00", b[23].Label)
	})

	t.Run("week", func(t *testing.T) {
		b := Activity(manifests, WindowWeek, now)
		require.Len(t, b, 7)
		assert.Equal(t, 22, b[6].Records)
		assert.Equal(t, 3, b[6].Imports)
		assert.Equal(t, 4, b[3].Records)
		assert.Equal(t, "Sat", b[6].Label)
	})

	t.Run("month", func(t *testing.T) {
		b := Activity(manifests, WindowMonth, now)
		require.Len(t, b, 12)
		assert.Equal(t, 26, b[time.June-1].Records)
		assert.Equal(t, 3, b[time.May-1].Records)
		assert.Equal(t, "Jun", b[time.June-1].Label)
	})

	t.Run("year", func(t *testing.T) {
		b := Activity(manifests, WindowYear, now)
		require.Len(t, b, 12)
		assert.Equal(t, 26, b[time.June-1].Records)
		assert.Equal(t, 3, b[time.May-1].Records)
		assert.Equal(t, 2, b[time.March-1].Records)
		total := 0
		for _, bucket := range b {
			total += bucket.Imports
		}
		assert.Equal(t, 6, total, "the 400 day old import is outside the window")
	})
}

func TestRecent(t *testing.T) {
	ms := make([]model.ImportManifest, 8)
	for i := range ms {
		ms[i].RecordCount = i
	}
	assert.Len(t, Recent(ms, 5), 5)
	assert.Equal(t, 0, Recent(ms, 5)[0].RecordCount)
	assert.Len(t, Recent(ms[:2], 5), 2)
}
