package storage

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/service"
)

const recordColumns = `id, date, trans_id, account, aname, reference, description,
	amount, vat, flag, verified, status, notes, import_id, created_by, created_at, defaulted`

// InsertRecords stores one batch of records atomically.
func (s *SQLiteStorage) InsertRecords(ctx context.Context, records []model.StoredRecord) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateRecords(records); err != nil {
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

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO data (`+recordColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer func() { _ = stmt.Close() }()

	for _, rec := range records {
		_, err = stmt.ExecContext(ctx,
			rec.ID, rec.Date, rec.TransID, rec.Account, rec.Aname, rec.Reference, rec.Description,
			rec.Amount.String(), rec.VAT.String(), rec.Flag, rec.Verified, rec.Status, rec.Notes,
			nullString(rec.ImportID), rec.CreatedBy, rec.CreatedAt.UTC(),
			strings.Join(rec.Defaulted, ","),
		)
		if err != nil {
			return fmt.Errorf("failed to insert record %s: %w", rec.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}
	return nil
}

// SelectRecords returns the owner's records in the requested order. Rows
// inserted in the same batch share a timestamp and keep insertion order.
func (s *SQLiteStorage) SelectRecords(ctx context.Context, q service.RecordQuery) ([]model.StoredRecord, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(q.Owner, "owner"); err != nil {
		return nil, err
	}
	return s.selectRecordsTx(ctx, s.db, q)
}

func (s *SQLiteStorage) selectRecordsTx(ctx context.Context, db queryable, q service.RecordQuery) ([]model.StoredRecord, error) {
	where, args := recordFilter(q)
	order := "created_at ASC, rowid ASC"
	if q.Order == service.OrderNewest {
		order = "created_at DESC, rowid DESC"
	}

	rows, err := db.QueryContext(ctx,
		`SELECT `+recordColumns+` FROM data WHERE `+where+` ORDER BY `+order, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []model.StoredRecord
	for rows.Next() {
		var rec model.StoredRecord
		var importID sql.NullString
		var defaulted string
		if err := rows.Scan(
			&rec.ID, &rec.Date, &rec.TransID, &rec.Account, &rec.Aname, &rec.Reference, &rec.Description,
			&rec.Amount, &rec.VAT, &rec.Flag, &rec.Verified, &rec.Status, &rec.Notes,
			&importID, &rec.CreatedBy, &rec.CreatedAt, &defaulted,
		); err != nil {
			return nil, fmt.Errorf("failed to scan record: %w", err)
		}
		rec.ImportID = importID.String
		rec.Defaulted = splitFields(defaulted)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating records: %w", err)
	}
	return records, nil
}

// DeleteRecords hard-deletes the matching records.
func (s *SQLiteStorage) DeleteRecords(ctx context.Context, q service.RecordQuery) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(q.Owner, "owner"); err != nil {
		return 0, err
	}

	where, args := recordFilter(q)
	res, err := s.db.ExecContext(ctx, `DELETE FROM data WHERE `+where, args...)
	if err != nil {
		return 0, fmt.Errorf("failed to delete records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count deleted records: %w", err)
	}
	return n, nil
}

// CountRecords counts the matching records.
func (s *SQLiteStorage) CountRecords(ctx context.Context, q service.RecordQuery) (int, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	if err := validateString(q.Owner, "owner"); err != nil {
		return 0, err
	}

	where, args := recordFilter(q)
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM data WHERE `+where, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return n, nil
}

func recordFilter(q service.RecordQuery) (string, []any) {
	clauses := []string{"created_by = ?"}
	args := []any{q.Owner}
	if q.ImportID != "" {
		clauses = append(clauses, "import_id = ?")
		args = append(args, q.ImportID)
	}
	return strings.Join(clauses, " AND "), args
}

// splitFields parses a comma-separated field list; empty means none.
func splitFields(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
