package sheet

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/Veraticus/vatflow/internal/model"
)

// CSVDecoder reads comma-separated files whose first line is the header.
type CSVDecoder struct{}

// Format returns FormatCSV.
func (d *CSVDecoder) Format() Format { return FormatCSV }

// Decode reads every record. Rows may be ragged.
func (d *CSVDecoder) Decode(r io.Reader) ([]model.RawRow, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	grid, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading CSV: %w", err)
	}
	return rowsFromGrid(grid), nil
}
