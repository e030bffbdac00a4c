package report

import (
	"fmt"
	"io"
	"time"

	"github.com/go-pdf/fpdf"

	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/normalize"
)

type rgb struct{ r, g, b int }

var (
	headerFill    = rgb{33, 72, 102}
	toVerifyFill  = rgb{255, 200, 200}
	notVATRegFill = rgb{255, 255, 200}
)

// Column widths in mm, in normalize.Columns order. They fill the
// landscape A4 width inside 10mm margins.
var pdfWidths = []float64{20, 22, 16, 28, 22, 55, 20, 18, 12, 14, 28, 22}

const (
	pdfMargin    = 10.0
	headerHeight = 7.0
	rowHeight    = 6.0
	cellPadding  = 1.0
)

// PDFOptions tunes WritePDF.
type PDFOptions struct {
	// GeneratedAt is printed under the title. Zero means now.
	GeneratedAt time.Time
	// OnPage is called with a percentage as each page is finished. The
	// last call is always 100.
	OnPage func(percent int)
}

// WritePDF renders records as a landscape A4 table. Rows still to verify
// are shaded red and rows from suppliers not VAT registered yellow.
func WritePDF(w io.Writer, title string, records []model.Record, opts PDFOptions) error {
	if opts.GeneratedAt.IsZero() {
		opts.GeneratedAt = time.Now()
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(pdfMargin, pdfMargin, pdfMargin)
	pdf.SetAutoPageBreak(false, pdfMargin)
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	_, pageHeight := pdf.GetPageSize()
	rowsPerPage := max(1, int((pageHeight-2*pdfMargin-headerHeight)/rowHeight))
	totalPages := max(1, (len(records)+rowsPerPage-1)/rowsPerPage)
	page := 0
	finishPage := func() {
		page++
		if opts.OnPage != nil {
			opts.OnPage(min(page*100/totalPages, 100))
		}
	}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 16)
	pdf.CellFormat(0, 10, tr(title), "", 1, "C", false, 0, "")
	pdf.SetFont("Helvetica", "", 10)
	pdf.CellFormat(0, 6, "Generated: "+opts.GeneratedAt.Format("2006-01-02 15:04:05"), "", 1, "L", false, 0, "")
	pdf.Ln(4)

	columns := normalize.Columns(normalize.ConventionDisplay)
	drawHeader := func() {
		pdf.SetFillColor(headerFill.r, headerFill.g, headerFill.b)
		pdf.SetTextColor(255, 255, 255)
		pdf.SetFont("Helvetica", "B", 9)
		for i, c := range columns {
			pdf.CellFormat(pdfWidths[i], headerHeight, c, "1", 0, "C", true, 0, "")
		}
		pdf.Ln(-1)
		pdf.SetTextColor(0, 0, 0)
		pdf.SetFont("Helvetica", "", 8)
	}
	drawHeader()

	for _, rec := range records {
		if pdf.GetY()+rowHeight > pageHeight-pdfMargin {
			finishPage()
			pdf.AddPage()
			drawHeader()
		}

		fill := false
		switch rec.Status {
		case model.StatusClientToVerify:
			pdf.SetFillColor(toVerifyFill.r, toVerifyFill.g, toVerifyFill.b)
			fill = true
		case model.StatusNotVATRegistered:
			pdf.SetFillColor(notVATRegFill.r, notVATRegFill.g, notVATRegFill.b)
			fill = true
		}

		for i, cell := range normalize.Cells(rec) {
			align := "L"
			if i == amountCol || i == vatCol {
				align = "R"
			}
			pdf.CellFormat(pdfWidths[i], rowHeight, fit(pdf, tr(cell), pdfWidths[i]), "1", 0, align, fill, 0, "")
		}
		pdf.Ln(-1)
	}
	if opts.OnPage != nil {
		opts.OnPage(100)
	}

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("writing PDF: %w", err)
	}
	return nil
}

// fit truncates s so it fits a cell of width w.
func fit(pdf *fpdf.Fpdf, s string, w float64) string {
	limit := w - 2*cellPadding
	if pdf.GetStringWidth(s) <= limit {
		return s
	}
	for len(s) > 0 && pdf.GetStringWidth(s+"..") > limit {
		s = s[:len(s)-1]
	}
	return s + ".."
}
