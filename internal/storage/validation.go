// Package storage provides the SQLite persistence layer for records,
// import manifests and legacy snapshots.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/Veraticus/vatflow/internal/model"
)

// Validation errors.
var (
	ErrNilContext     = errors.New("context cannot be nil")
	ErrEmptyString    = errors.New("string parameter cannot be empty")
	ErrEmptySlice     = errors.New("slice cannot be empty")
	ErrInvalidRecord  = errors.New("invalid record")
	ErrInvalidImport  = errors.New("invalid import manifest")
	ErrInvalidRun     = errors.New("invalid validation run")
	ErrMixedOwnership = errors.New("records belong to more than one owner")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateRecords validates a batch of stored records.
func validateRecords(records []model.StoredRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: records", ErrEmptySlice)
	}

	owner := records[0].CreatedBy
	for i, rec := range records {
		if rec.ID == "" {
			return fmt.Errorf("record at index %d: %w: missing ID", i, ErrInvalidRecord)
		}
		if rec.CreatedBy == "" {
			return fmt.Errorf("record at index %d: %w: missing owner", i, ErrInvalidRecord)
		}
		if rec.CreatedBy != owner {
			return fmt.Errorf("record at index %d: %w", i, ErrMixedOwnership)
		}
	}
	return nil
}

// validateManifest validates an import manifest.
func validateManifest(m model.ImportManifest) error {
	if m.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidImport)
	}
	if m.Owner == "" {
		return fmt.Errorf("%w: missing owner", ErrInvalidImport)
	}
	if m.ImportedAt.IsZero() {
		return fmt.Errorf("%w: missing import time", ErrInvalidImport)
	}
	if m.RecordCount < 0 {
		return fmt.Errorf("%w: negative record count", ErrInvalidImport)
	}
	return nil
}

// validateRun validates a validation run header.
func validateRun(run model.ValidationRun) error {
	if run.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidRun)
	}
	if run.Owner == "" {
		return fmt.Errorf("%w: missing owner", ErrInvalidRun)
	}
	if run.CreatedAt.IsZero() {
		return fmt.Errorf("%w: missing creation time", ErrInvalidRun)
	}
	if run.RecordCount < 0 {
		return fmt.Errorf("%w: negative record count", ErrInvalidRun)
	}
	return nil
}

// validateValidationRecords validates a batch of validation outcomes.
func validateValidationRecords(records []model.ValidationRecord) error {
	if len(records) == 0 {
		return fmt.Errorf("%w: validation records", ErrEmptySlice)
	}

	owner := records[0].CreatedBy
	for i, rec := range records {
		if rec.ID == "" || rec.ValidationID == "" {
			return fmt.Errorf("validation record at index %d: %w: missing ID", i, ErrInvalidRecord)
		}
		if rec.CreatedBy == "" {
			return fmt.Errorf("validation record at index %d: %w: missing owner", i, ErrInvalidRecord)
		}
		if rec.CreatedBy != owner {
			return fmt.Errorf("validation record at index %d: %w", i, ErrMixedOwnership)
		}
	}
	return nil
}
