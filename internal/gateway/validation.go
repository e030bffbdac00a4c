package gateway

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
)

// SaveValidation stores one validation pass: a run header, then one
// outcome per record in save-sized batches. Records without a result are
// stored as passing. Nothing is rolled back on failure.
func (g *Gateway) SaveValidation(ctx context.Context, owner, filename string, records []model.Record, results []model.ValidationResult) (model.ValidationRun, error) {
	if noOwner(owner) {
		return model.ValidationRun{}, common.ErrNoOwner
	}
	if len(records) == 0 {
		return model.ValidationRun{}, common.ErrNothingToSave
	}

	filename = strings.TrimSpace(filename)
	if filename == "" {
		filename = DefaultFilename
	}

	run := model.ValidationRun{
		ID:          g.newID(),
		Owner:       owner,
		Filename:    filename,
		RecordCount: len(records),
		CreatedAt:   g.now(),
	}
	if err := g.store.InsertValidationRun(ctx, run); err != nil {
		return model.ValidationRun{}, &common.PersistenceError{Op: "save validation", Err: err}
	}

	byID := make(map[string]model.ValidationResult, len(results))
	for _, r := range results {
		byID[r.RecordID] = r
	}

	committed, err := inBatches(ctx, len(records), g.batchSize, func(start, end int) error {
		batch := make([]model.ValidationRecord, 0, end-start)
		for _, rec := range records[start:end] {
			batch = append(batch, validationRecord(g.newID(), run, rec, byID[rec.ID]))
		}
		return g.store.InsertValidationRecords(ctx, batch)
	})
	if err != nil {
		slog.Warn("Validation batch failed",
			"validation", run.ID,
			"committed", committed,
			"total", len(records),
			"error", err)
		return run, &common.PersistenceError{Op: "save validation", Err: err}
	}

	slog.Info("Saved validation",
		"validation", run.ID,
		"filename", run.Filename,
		"records", committed)
	return run, nil
}

func validationRecord(id string, run model.ValidationRun, rec model.Record, result model.ValidationResult) model.ValidationRecord {
	return model.ValidationRecord{
		ID:           id,
		ValidationID: run.ID,
		Date:         rec.Date,
		TransID:      rec.TransactionID,
		Account:      rec.Account,
		Aname:        rec.AccountName,
		Reference:    rec.Reference,
		Description:  rec.Description,
		Amount:       rec.Amount,
		VAT:          rec.VAT,
		HasError:     result.HasError,
		ErrorFields:  result.ErrorFields,
		CreatedBy:    run.Owner,
	}
}
