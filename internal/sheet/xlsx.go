package sheet

import (
	"fmt"
	"io"
	"log/slog"

	"github.com/xuri/excelize/v2"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
)

// XLSXDecoder reads the first worksheet of an Excel workbook.
type XLSXDecoder struct{}

// Format returns FormatXLSX.
func (d *XLSXDecoder) Format() Format { return FormatXLSX }

// Decode reads the first sheet; any further sheets are ignored.
func (d *XLSXDecoder) Decode(r io.Reader) ([]model.RawRow, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening workbook: %w", err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil {
			slog.Warn("Failed to close workbook", "error", cerr)
		}
	}()

	name := f.GetSheetName(0)
	if name == "" {
		return nil, common.ErrNoSheetsInFile
	}

	// Raw values: a "#,##0.00" amount must come back as 1234.5, not the
	// display text "1,234.50".
	grid, err := f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("reading sheet %q: %w", name, err)
	}
	return rowsFromGrid(grid), nil
}
