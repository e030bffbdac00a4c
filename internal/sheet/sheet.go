// Package sheet decodes uploaded spreadsheet files into ordered rows keyed
// by their header cells.
package sheet

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
)

// Format identifies a supported file encoding.
type Format string

// Supported formats.
const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatOFX  Format = "ofx"
)

// Decoder turns one file's bytes into rows.
type Decoder interface {
	Decode(r io.Reader) ([]model.RawRow, error)
	Format() Format
}

// Registry maps formats to decoders.
type Registry struct {
	decoders map[Format]Decoder
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{decoders: make(map[Format]Decoder)}
}

// Register adds a decoder. Panics on duplicate format.
func (r *Registry) Register(d Decoder) {
	if _, ok := r.decoders[d.Format()]; ok {
		panic("duplicate sheet format: " + string(d.Format()))
	}
	r.decoders[d.Format()] = d
}

// Get returns the decoder for format, or nil.
func (r *Registry) Get(format Format) Decoder {
	return r.decoders[format]
}

// DefaultRegistry returns a registry with every built-in decoder.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(&CSVDecoder{})
	r.Register(&XLSXDecoder{})
	r.Register(&OFXDecoder{})
	return r
}

var extensions = map[string]Format{
	".csv":  FormatCSV,
	".txt":  FormatCSV,
	".xlsx": FormatXLSX,
	".xlsm": FormatXLSX,
	".ofx":  FormatOFX,
	".qfx":  FormatOFX,
}

var zipMagic = []byte("PK\x03\x04")

// Detect picks a format from the file extension, falling back to the
// leading bytes of the content.
func Detect(name string, head []byte) Format {
	if f, ok := extensions[strings.ToLower(filepath.Ext(name))]; ok {
		return f
	}
	if bytes.HasPrefix(head, zipMagic) {
		return FormatXLSX
	}
	trimmed := bytes.TrimLeft(head, " \t\r\n\ufeff")
	if bytes.HasPrefix(trimmed, []byte("OFXHEADER")) || bytes.Contains(head, []byte("<OFX>")) {
		return FormatOFX
	}
	return FormatCSV
}

// Read decodes the named file with the default registry.
func Read(name string, r io.Reader) ([]model.RawRow, error) {
	return DefaultRegistry().Read(name, r)
}

// Read decodes the named file, choosing the decoder with Detect.
func (r *Registry) Read(name string, src io.Reader) ([]model.RawRow, error) {
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}

	format := Detect(name, data[:min(len(data), 512)])
	d := r.Get(format)
	if d == nil {
		return nil, fmt.Errorf("%w: %s", common.ErrUnknownFormat, format)
	}
	return d.Decode(bytes.NewReader(data))
}

// rowsFromGrid keys each data row by the header row. Blank header cells
// and fully blank data rows are skipped; short rows leave trailing keys
// absent.
func rowsFromGrid(grid [][]string) []model.RawRow {
	if len(grid) == 0 {
		return nil
	}

	header := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		header[i] = strings.TrimSpace(strings.TrimPrefix(h, "\ufeff"))
	}

	rows := make([]model.RawRow, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		row := make(model.RawRow, len(header))
		blank := true
		for i, cell := range cells {
			if i >= len(header) || header[i] == "" {
				continue
			}
			row[header[i]] = cell
			if strings.TrimSpace(cell) != "" {
				blank = false
			}
		}
		if blank {
			continue
		}
		rows = append(rows, row)
	}
	return rows
}
