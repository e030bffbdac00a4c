package testutil

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/vatflow/internal/model"
)

// RecordBuilder builds valid records with overridable fields.
type RecordBuilder struct {
	rec model.Record
}

// NewRecord starts a record that passes validation.
func NewRecord(id string) *RecordBuilder {
	return &RecordBuilder{rec: model.Record{
		ID:            id,
		Date:          "2024-01-31",
		TransactionID: "T-" + id,
		Account:       "4000",
		AccountName:   "Sales",
		Reference:     "INV-" + id,
		Description:   "Consulting",
		Amount:        decimal.NewFromInt(115),
		VAT:           decimal.NewFromInt(15),
	}.WithStatus(model.StatusClientToVerify)}
}

// Amount sets the amount.
func (b *RecordBuilder) Amount(s string) *RecordBuilder {
	b.rec.Amount = decimal.RequireFromString(s)
	return b
}

// VAT sets the VAT.
func (b *RecordBuilder) VAT(s string) *RecordBuilder {
	b.rec.VAT = decimal.RequireFromString(s)
	return b
}

// MissingAmount marks the amount as absent from the source row.
func (b *RecordBuilder) MissingAmount() *RecordBuilder {
	b.rec.Amount = decimal.Zero
	b.rec.Defaulted = append(b.rec.Defaulted, model.FieldAmount)
	return b
}

// Status sets the verification status.
func (b *RecordBuilder) Status(s model.VerificationStatus) *RecordBuilder {
	b.rec = b.rec.WithStatus(s)
	return b
}

// Notes sets the notes.
func (b *RecordBuilder) Notes(s string) *RecordBuilder {
	b.rec.Notes = s
	return b
}

// Build returns the record.
func (b *RecordBuilder) Build() model.Record {
	return b.rec
}

// Records returns n valid records with ids r1..rn.
func Records(n int) []model.Record {
	recs := make([]model.Record, n)
	for i := range recs {
		recs[i] = NewRecord(fmt.Sprintf("r%d", i+1)).Build()
	}
	return recs
}
