// Package validation checks working-set records against the ledger rules.
package validation

import (
	"context"
	"fmt"
	"runtime"
	"strings"

	"github.com/Veraticus/vatflow/internal/model"
)

// Rule messages reported in ValidationResult.ErrorFields alongside the
// names of missing fields.
const (
	MsgAmountNotPositive = "Amount must be positive"
	MsgVATNegative       = "VAT cannot be negative"
	MsgVATExceedsAmount  = "VAT cannot exceed Amount"
	MsgUnknownStatus     = "Verification status is not recognised"
)

const yieldEvery = 1000

// Engine validates records. The zero value is ready to use.
type Engine struct{}

// NewEngine creates a validation engine.
func NewEngine() *Engine {
	return &Engine{}
}

// Validate returns one result per record, in input order.
func (e *Engine) Validate(ctx context.Context, records []model.Record) ([]model.ValidationResult, error) {
	results := make([]model.ValidationResult, len(records))
	for i, rec := range records {
		results[i] = Check(rec)

		if (i+1)%yieldEvery == 0 {
			runtime.Gosched()
			if err := ctx.Err(); err != nil {
				return nil, fmt.Errorf("validation interrupted after %d records: %w", i+1, err)
			}
		}
	}
	return results, nil
}

// Check validates a single record.
func Check(rec model.Record) model.ValidationResult {
	var fields []string

	for _, req := range []struct {
		name  string
		value string
	}{
		{model.FieldDate, rec.Date},
		{model.FieldTransactionID, rec.TransactionID},
		{model.FieldAccount, rec.Account},
	} {
		if strings.TrimSpace(req.value) == "" {
			fields = append(fields, req.name)
		}
	}
	for _, name := range []string{model.FieldAmount, model.FieldVAT} {
		if rec.WasDefaulted(name) {
			fields = append(fields, name)
		}
	}

	if !rec.Amount.IsPositive() {
		fields = append(fields, MsgAmountNotPositive)
	}
	if rec.VAT.IsNegative() {
		fields = append(fields, MsgVATNegative)
	}
	if rec.VAT.Abs().GreaterThan(rec.Amount.Abs()) {
		fields = append(fields, MsgVATExceedsAmount)
	}
	if !rec.Status.Known() {
		fields = append(fields, MsgUnknownStatus)
	}

	return model.ValidationResult{
		RecordID:    rec.ID,
		HasError:    len(fields) > 0,
		ErrorFields: fields,
	}
}
