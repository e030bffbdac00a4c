package storage

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/Veraticus/vatflow/internal/model"
)

// InsertValidationRun records a new validation pass.
func (s *SQLiteStorage) InsertValidationRun(ctx context.Context, run model.ValidationRun) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRun(run); err != nil {
		return err
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO data_validation (id, filename, record_count, created_by, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		run.ID, run.Filename, run.RecordCount, run.Owner, run.CreatedAt.UTC())
	if err != nil {
		return fmt.Errorf("failed to insert validation %s: %w", run.ID, err)
	}
	return nil
}

// InsertValidationRecords stores one batch of validation outcomes
// atomically.
func (s *SQLiteStorage) InsertValidationRecords(ctx context.Context, records []model.ValidationRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateValidationRecords(records); err != nil {
		return err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO data_validation_records (
		id, validation_id, date, trans_id, account, aname, reference, description,
		amount, vat, has_error, error_fields, created_by)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		var fields []byte
		fields, err = json.Marshal(errorFields(rec.ErrorFields))
		if err != nil {
			return fmt.Errorf("failed to encode error fields for %s: %w", rec.ID, err)
		}
		_, err = stmt.ExecContext(ctx,
			rec.ID, rec.ValidationID, rec.Date, rec.TransID, rec.Account, rec.Aname,
			rec.Reference, rec.Description, rec.Amount.String(), rec.VAT.String(),
			rec.HasError, string(fields), rec.CreatedBy,
		)
		if err != nil {
			return fmt.Errorf("failed to insert validation record %s: %w", rec.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit validation records: %w", err)
	}
	return nil
}

// SelectValidationRecords returns one run's outcomes in insertion order.
func (s *SQLiteStorage) SelectValidationRecords(ctx context.Context, owner, validationID string) ([]model.ValidationRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(owner, "owner"); err != nil {
		return nil, err
	}
	if err := validateString(validationID, "validation id"); err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, validation_id, date, trans_id, account, aname, reference, description,
			amount, vat, has_error, error_fields, created_by
		FROM data_validation_records
		WHERE created_by = ? AND validation_id = ?
		ORDER BY rowid ASC`, owner, validationID)
	if err != nil {
		return nil, fmt.Errorf("failed to query validation records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.ValidationRecord
	for rows.Next() {
		var rec model.ValidationRecord
		var fields string
		if err := rows.Scan(
			&rec.ID, &rec.ValidationID, &rec.Date, &rec.TransID, &rec.Account, &rec.Aname,
			&rec.Reference, &rec.Description, &rec.Amount, &rec.VAT,
			&rec.HasError, &fields, &rec.CreatedBy,
		); err != nil {
			return nil, fmt.Errorf("failed to scan validation record: %w", err)
		}
		if err := json.Unmarshal([]byte(fields), &rec.ErrorFields); err != nil {
			return nil, fmt.Errorf("failed to decode error fields for %s: %w", rec.ID, err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating validation records: %w", err)
	}
	return records, nil
}

// errorFields keeps an empty list as "[]" rather than "null".
func errorFields(fields []string) []string {
	if fields == nil {
		return []string{}
	}
	return fields
}
