package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// ImportManifest describes one saved import. RecordCount is fixed when the
// manifest is created and is not updated as rows are attached.
type ImportManifest struct {
	ImportedAt  time.Time
	ID          string
	Owner       string
	Filename    string
	ImportedBy  string
	RecordCount int
}

// ValidationResult is the outcome of validating one record. It is derived
// data; only an explicit ValidationRun copies it out.
type ValidationResult struct {
	RecordID    string
	ErrorFields []string
	HasError    bool
}

// ValidationRun is one saved validation pass, stored in "data_validation".
type ValidationRun struct {
	CreatedAt   time.Time
	ID          string
	Owner       string
	Filename    string
	RecordCount int
}

// ValidationRecord is one record's outcome within a ValidationRun, stored in
// "data_validation_records".
type ValidationRecord struct {
	Amount       decimal.Decimal
	VAT          decimal.Decimal
	ID           string
	ValidationID string
	Date         string
	TransID      string
	Account      string
	Aname        string
	Reference    string
	Description  string
	ErrorFields  []string
	HasError     bool
	CreatedBy    string
}
