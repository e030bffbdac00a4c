// Package model defines the core domain models used throughout the application.
package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// Field names as they appear in the human-readable spreadsheet convention.
// Validation messages and export headers use these.
const (
	FieldDate          = "Date"
	FieldTransactionID = "TransID"
	FieldAccount       = "Account"
	FieldAccountName   = "Aname"
	FieldReference     = "Reference"
	FieldDescription   = "Description"
	FieldAmount        = "Amount"
	FieldVAT           = "VAT"
	FieldFlag          = "Flag"
	FieldVerified      = "Verified"
	FieldStatus        = "Status"
	FieldNotes         = "Notes"
)

// RawRow is one spreadsheet row keyed by its header cell. Values are
// primitives: strings from CSV/XLSX cells, numbers from JSON snapshots.
type RawRow map[string]any

// Record is one imported transaction line in canonical form.
type Record struct {
	Amount        decimal.Decimal
	VAT           decimal.Decimal
	ID            string
	Date          string // source format preserved
	TransactionID string
	Account       string
	AccountName   string
	Reference     string
	Description   string
	Flag          string
	Status        VerificationStatus
	StatusLabel   string
	Notes         string
	ImportID      string // empty until persisted under a manifest

	// Defaulted names the numeric fields (FieldAmount, FieldVAT) whose
	// source value was absent or malformed and fell back to zero.
	Defaulted []string
}

// WithStatus returns a copy of r with the status replaced and the label
// re-derived.
func (r Record) WithStatus(status VerificationStatus) Record {
	r.Status = status
	r.StatusLabel = status.Label()
	return r
}

// WasDefaulted reports whether field fell back to its zero default.
func (r Record) WasDefaulted(field string) bool {
	for _, f := range r.Defaulted {
		if f == field {
			return true
		}
	}
	return false
}

// StoredRecord is a record as persisted in the "data" table.
type StoredRecord struct {
	CreatedAt   time.Time
	Amount      decimal.Decimal
	VAT         decimal.Decimal
	ID          string
	Date        string
	TransID     string
	Account     string
	Aname       string
	Reference   string
	Description string
	Flag        string
	Verified    string
	Status      string
	Notes       string
	ImportID    string // empty means no owning manifest
	CreatedBy   string

	// Defaulted mirrors Record.Defaulted; Amount and VAT hold zero for
	// the fields it names.
	Defaulted []string
}

// Row exposes the stored record under its storage-convention keys.
// Defaulted numerics are left nil so they default again on rehydration.
func (s StoredRecord) Row() RawRow {
	row := RawRow{
		"id":          s.ID,
		"date":        s.Date,
		"trans_id":    s.TransID,
		"account":     s.Account,
		"aname":       s.Aname,
		"reference":   s.Reference,
		"description": s.Description,
		"amount":      s.Amount,
		"vat":         s.VAT,
		"flag":        s.Flag,
		"verified":    s.Verified,
		"status":      s.Status,
		"notes":       s.Notes,
		"import_id":   s.ImportID,
	}
	for _, f := range s.Defaulted {
		switch f {
		case FieldAmount:
			row["amount"] = nil
		case FieldVAT:
			row["vat"] = nil
		}
	}
	return row
}

// Scope selects the records owned by a user, optionally narrowed to one
// import.
type Scope struct {
	Owner    string
	ImportID string
}
