package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/Veraticus/vatflow/internal/gateway"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/report"
	"github.com/Veraticus/vatflow/internal/workset"
)

const (
	timeLayout    = "2006-01-02 15:04"
	barWidth      = 30
	descWidth     = 32
	errorMarker   = "!"
	defaultMarker = " "
)

func newTable(w io.Writer) *tabwriter.Writer {
	return tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

// WriteRecordPage prints one page of the working set. Rows that failed
// validation are marked and list their error fields.
func WriteRecordPage(w io.Writer, page workset.Page) error {
	tw := newTable(w)
	fmt.Fprintln(tw, " \tDATE\tTRANS ID\tACCOUNT\tDESCRIPTION\tAMOUNT\tVAT\tSTATUS\tNOTES\tERRORS")
	for _, row := range page.Rows {
		rec := row.Record
		marker, errs := defaultMarker, ""
		if row.Result != nil && row.Result.HasError {
			marker = errorMarker
			errs = strings.Join(row.Result.ErrorFields, "; ")
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\t%s\n",
			marker,
			rec.Date,
			rec.TransactionID,
			rec.Account,
			truncate(rec.Description, descWidth),
			rec.Amount.StringFixed(2),
			rec.VAT.StringFixed(2),
			rec.StatusLabel,
			truncate(rec.Notes, descWidth),
			errs,
		)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write records: %w", err)
	}

	_, err := fmt.Fprintln(w, SubtleStyle.Render(fmt.Sprintf("Page %d of %d (%d records)", page.Number, page.Pages, page.Total)))
	return err
}

// WriteManifests prints import history, newest first.
func WriteManifests(w io.Writer, manifests []model.ImportManifest) error {
	if len(manifests) == 0 {
		_, err := fmt.Fprintln(w, FormatInfo("No imports yet"))
		return err
	}
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tFILE\tRECORDS\tIMPORTED\tBY")
	for _, m := range manifests {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\t%s\n", m.ID, m.Filename, m.RecordCount, m.ImportedAt.Local().Format(timeLayout), m.ImportedBy)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write imports: %w", err)
	}
	return nil
}

// RenderSummary formats dashboard totals.
func RenderSummary(s report.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Total records: %s\n", BoldStyle.Render(fmt.Sprint(s.Total)))
	for _, st := range model.Statuses() {
		fmt.Fprintf(&b, "  %-20s %d\n", st.Label()+":", s.ByStatus[st])
	}
	if s.Unknown > 0 {
		fmt.Fprintf(&b, "  %-20s %s\n", model.UnknownStatusLabel+":", WarningStyle.Render(fmt.Sprint(s.Unknown)))
	}
	fmt.Fprintf(&b, "Amount: %s\n", s.Amount.StringFixed(2))
	fmt.Fprintf(&b, "VAT:    %s", s.VAT.StringFixed(2))
	return b.String()
}

// RenderActivity draws import volume as horizontal bars scaled to the
// largest bucket.
func RenderActivity(buckets []report.Bucket) string {
	peak := 0
	for _, bk := range buckets {
		peak = max(peak, bk.Records)
	}
	lines := make([]string, 0, len(buckets))
	for _, bk := range buckets {
		n := 0
		if peak > 0 {
			n = bk.Records * barWidth / peak
		}
		if bk.Records > 0 && n == 0 {
			n = 1
		}
		lines = append(lines, fmt.Sprintf("%-5s %s %d", bk.Label, BarStyle.Render(strings.Repeat("█", n)), bk.Records))
	}
	return strings.Join(lines, "\n")
}

// WriteReconciliation prints each import's declared and persisted counts.
func WriteReconciliation(w io.Writer, r gateway.Reconciliation) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "ID\tFILE\tDECLARED\tPERSISTED\tMISSING")
	for _, c := range r.Imports {
		fmt.Fprintf(tw, "%s\t%s\t%d\t%d\t%d\n", c.Manifest.ID, c.Manifest.Filename, c.Manifest.RecordCount, c.Persisted, c.Missing())
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write reconciliation: %w", err)
	}

	incomplete := len(r.Incomplete())
	switch {
	case incomplete > 0:
		fmt.Fprintln(w, FormatWarning(fmt.Sprintf("%d import(s) are missing records", incomplete)))
	default:
		fmt.Fprintln(w, FormatSuccess("Every import is complete"))
	}
	if r.Orphaned > 0 {
		fmt.Fprintln(w, FormatWarning(fmt.Sprintf("%d record(s) belong to no import", r.Orphaned)))
	}
	return nil
}

// WriteInvalid lists only the rows that failed validation.
func WriteInvalid(w io.Writer, rows []workset.Row) error {
	tw := newTable(w)
	fmt.Fprintln(tw, "TRANS ID\tDATE\tACCOUNT\tAMOUNT\tERRORS")
	n := 0
	for _, row := range rows {
		if row.Result == nil || !row.Result.HasError {
			continue
		}
		n++
		rec := row.Record
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", rec.TransactionID, rec.Date, rec.Account, rec.Amount.StringFixed(2), strings.Join(row.Result.ErrorFields, "; "))
	}
	if n == 0 {
		return nil
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write validation errors: %w", err)
	}
	return nil
}
