package report

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/normalize"
)

// Sheet names used for exports.
const (
	ReportSheet  = "Report"
	HistorySheet = "Historical Data"
)

const (
	amountCol = 6
	vatCol    = 7
)

// WriteExcel writes records to a single-sheet workbook using the display
// column names. Amount and VAT are numeric cells.
func WriteExcel(w io.Writer, sheet string, records []model.Record) error {
	f := excelize.NewFile()
	defer func() {
		if err := f.Close(); err != nil {
			slog.Warn("Failed to close workbook", "error", err)
		}
	}()

	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Color: "FFFFFF"},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"214866"}, Pattern: 1},
	})
	if err != nil {
		return fmt.Errorf("creating header style: %w", err)
	}
	moneyStyle, err := f.NewStyle(&excelize.Style{NumFmt: 2}) // 0.00
	if err != nil {
		return fmt.Errorf("creating number style: %w", err)
	}

	columns := normalize.Columns(normalize.ConventionDisplay)
	header := make([]any, len(columns))
	for i, c := range columns {
		header[i] = c
	}
	if err := f.SetSheetRow(sheet, "A1", &header); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(columns), 1)
	if err := f.SetCellStyle(sheet, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("styling header: %w", err)
	}

	for i, rec := range records {
		cells := normalize.Cells(rec)
		row := make([]any, len(cells))
		for j, c := range cells {
			row[j] = c
		}
		// Defaulted amounts stay blank so a reimport defaults them again.
		if !rec.WasDefaulted(model.FieldAmount) {
			row[amountCol] = rec.Amount.InexactFloat64()
		}
		if !rec.WasDefaulted(model.FieldVAT) {
			row[vatCol] = rec.VAT.InexactFloat64()
		}

		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("writing row %d: %w", i+2, err)
		}
	}

	if len(records) > 0 {
		top, _ := excelize.CoordinatesToCellName(amountCol+1, 2)
		bottom, _ := excelize.CoordinatesToCellName(vatCol+1, len(records)+1)
		if err := f.SetCellStyle(sheet, top, bottom, moneyStyle); err != nil {
			return fmt.Errorf("styling amounts: %w", err)
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}
