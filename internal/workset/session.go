// Package workset holds the in-memory working set of imported records and
// the edit/verification state that applies to it.
package workset

import (
	"errors"
	"fmt"
	"slices"

	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/normalize"
)

// Session errors.
var (
	ErrRecordNotFound = errors.New("record not found")
	ErrNotEditing     = errors.New("edit mode is off")
	ErrInvalidStatus  = errors.New("invalid verification status")
	ErrFieldReadOnly  = errors.New("field cannot be edited")
)

// DefaultPageSize is used when a page is requested without a size.
const DefaultPageSize = 50

// Holder is the narrow view of a session the import pipeline needs.
type Holder interface {
	Records() []model.Record
	Set(records []model.Record, filename string)
	Clear()
}

// Row is a record annotated for display. Result is nil until the working
// set has been validated.
type Row struct {
	Result *model.ValidationResult
	Record model.Record
}

// Session owns one working set. It is not safe for concurrent use.
type Session struct {
	index       map[string]int
	results     map[string]model.ValidationResult
	filename    string
	records     []model.Record
	editing     bool
	flaggedOnly bool
}

var _ Holder = (*Session)(nil)

// NewSession creates an empty session.
func NewSession() *Session {
	return &Session{index: map[string]int{}}
}

// Records returns the working set. Callers must not modify the slice.
func (s *Session) Records() []model.Record {
	return s.records
}

// Filename is the source file of the current working set.
func (s *Session) Filename() string {
	return s.filename
}

// Len returns the number of records.
func (s *Session) Len() int {
	return len(s.records)
}

// Set replaces the working set and drops any validation results.
func (s *Session) Set(records []model.Record, filename string) {
	s.records = records
	s.filename = filename
	s.results = nil
	s.index = make(map[string]int, len(records))
	for i, rec := range records {
		s.index[rec.ID] = i
	}
}

// Clear empties the working set.
func (s *Session) Clear() {
	s.Set(nil, "")
}

// Record returns the record with the given id.
func (s *Session) Record(id string) (model.Record, error) {
	i, ok := s.index[id]
	if !ok {
		return model.Record{}, fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	return s.records[i], nil
}

// update applies fn to one record, copying the slice so earlier snapshots
// returned by Records stay unchanged.
func (s *Session) update(id string, fn func(model.Record) (model.Record, error)) error {
	i, ok := s.index[id]
	if !ok {
		return fmt.Errorf("%w: %s", ErrRecordNotFound, id)
	}
	rec, err := fn(s.records[i])
	if err != nil {
		return err
	}
	next := slices.Clone(s.records)
	next[i] = rec
	s.records = next
	s.results = nil
	return nil
}

// SetStatus moves a record to another verification state.
func (s *Session) SetStatus(id string, status model.VerificationStatus) error {
	if !status.Known() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	return s.update(id, func(rec model.Record) (model.Record, error) {
		return rec.WithStatus(status), nil
	})
}

// SetNotes replaces a record's notes. Allowed outside edit mode.
func (s *Session) SetNotes(id, notes string) error {
	return s.update(id, func(rec model.Record) (model.Record, error) {
		rec.Notes = notes
		return rec, nil
	})
}

// SetField edits one column of a record. Edit mode must be on. Amount and
// VAT are parsed as decimals; Verified and Status go through SetStatus.
func (s *Session) SetField(id, field, value string) error {
	if !s.editing {
		return ErrNotEditing
	}
	return s.update(id, func(rec model.Record) (model.Record, error) {
		return applyField(rec, field, value)
	})
}

func applyField(rec model.Record, field, value string) (model.Record, error) {
	switch field {
	case model.FieldDate:
		rec.Date = value
	case model.FieldTransactionID:
		rec.TransactionID = value
	case model.FieldAccount:
		rec.Account = value
	case model.FieldAccountName:
		rec.AccountName = value
	case model.FieldReference:
		rec.Reference = value
	case model.FieldDescription:
		rec.Description = value
	case model.FieldFlag:
		rec.Flag = value
	case model.FieldNotes:
		rec.Notes = value
	case model.FieldAmount, model.FieldVAT:
		d, ok := normalize.ParseDecimal(value)
		if !ok {
			return rec, fmt.Errorf("%s: %q is not a number", field, value)
		}
		if field == model.FieldAmount {
			rec.Amount = d
		} else {
			rec.VAT = d
		}
		rec.Defaulted = slices.DeleteFunc(slices.Clone(rec.Defaulted), func(f string) bool { return f == field })
		if len(rec.Defaulted) == 0 {
			rec.Defaulted = nil
		}
	default:
		return rec, fmt.Errorf("%w: %s", ErrFieldReadOnly, field)
	}
	return rec, nil
}

// ToggleEditMode flips edit mode and returns the new state.
func (s *Session) ToggleEditMode() bool {
	s.editing = !s.editing
	return s.editing
}

// Editing reports whether edit mode is on.
func (s *Session) Editing() bool {
	return s.editing
}

// ToggleFlagged flips the flagged-only view and returns the new state.
func (s *Session) ToggleFlagged() bool {
	s.flaggedOnly = !s.flaggedOnly
	return s.flaggedOnly
}

// FlaggedOnly reports whether the view is restricted to flagged records.
func (s *Session) FlaggedOnly() bool {
	return s.flaggedOnly
}

// Visible returns the records in the current view, in working-set order.
func (s *Session) Visible() []model.Record {
	if !s.flaggedOnly {
		return s.records
	}
	visible := make([]model.Record, 0, len(s.records))
	for _, rec := range s.records {
		if rec.Status.Flagged() {
			visible = append(visible, rec)
		}
	}
	return visible
}

// SetValidation stores results for the current working set, replacing any
// earlier results in full.
func (s *Session) SetValidation(results []model.ValidationResult) {
	s.results = make(map[string]model.ValidationResult, len(results))
	for _, r := range results {
		s.results[r.RecordID] = r
	}
}

// Validated reports whether results are held for the current working set.
func (s *Session) Validated() bool {
	return s.results != nil
}

// Result returns the validation result for a record, if any.
func (s *Session) Result(id string) (model.ValidationResult, bool) {
	r, ok := s.results[id]
	return r, ok
}

// ErrorCount returns how many validated records have errors.
func (s *Session) ErrorCount() int {
	n := 0
	for _, r := range s.results {
		if r.HasError {
			n++
		}
	}
	return n
}

// Rows returns the visible records annotated with their results.
func (s *Session) Rows() []Row {
	return s.annotate(s.Visible())
}

func (s *Session) annotate(records []model.Record) []Row {
	rows := make([]Row, len(records))
	for i, rec := range records {
		rows[i] = Row{Record: rec}
		if r, ok := s.results[rec.ID]; ok {
			rows[i].Result = &r
		}
	}
	return rows
}

// Page is one slice of the visible rows. Number is 1-based.
type Page struct {
	Rows   []Row
	Number int
	Size   int
	Pages  int
	Total  int
}

// Page returns page n of the visible rows. Out-of-range page numbers are
// clamped and a size of zero or less uses DefaultPageSize.
func (s *Session) Page(n, size int) Page {
	if size <= 0 {
		size = DefaultPageSize
	}
	visible := s.Visible()
	total := len(visible)
	pages := max(1, (total+size-1)/size)
	n = min(max(n, 1), pages)

	start := min((n-1)*size, total)
	end := min(start+size, total)
	return Page{
		Rows:   s.annotate(visible[start:end]),
		Number: n,
		Size:   size,
		Pages:  pages,
		Total:  total,
	}
}
