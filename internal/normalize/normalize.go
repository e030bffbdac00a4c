// Package normalize maps spreadsheet rows in either naming convention onto
// the canonical record shape, and back again.
package normalize

import (
	"fmt"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Veraticus/vatflow/internal/model"
)

// Convention selects the key style used when a record is written back out.
type Convention int

const (
	// ConventionDisplay uses the spreadsheet headers (Amount, TransID, ...).
	ConventionDisplay Convention = iota
	// ConventionStorage uses the snake_case column names (amount, trans_id, ...).
	ConventionStorage
)

type fieldSpec struct {
	display string
	storage string
	aliases []string // extra display-layer headers, tried last
}

// keys returns the lookup order: human-readable, storage, aliases.
func (f fieldSpec) keys() []string {
	keys := make([]string, 0, 2+len(f.aliases))
	keys = append(keys, f.display, f.storage)
	return append(keys, f.aliases...)
}

func (f fieldSpec) key(c Convention) string {
	if c == ConventionStorage {
		return f.storage
	}
	return f.display
}

var (
	fieldDate        = fieldSpec{display: model.FieldDate, storage: "date"}
	fieldTransID     = fieldSpec{display: model.FieldTransactionID, storage: "trans_id", aliases: []string{"Transaction ID", "transactionId"}}
	fieldAccount     = fieldSpec{display: model.FieldAccount, storage: "account"}
	fieldAname       = fieldSpec{display: model.FieldAccountName, storage: "aname", aliases: []string{"Account Name", "accountName"}}
	fieldReference   = fieldSpec{display: model.FieldReference, storage: "reference"}
	fieldDescription = fieldSpec{display: model.FieldDescription, storage: "description"}
	fieldAmount      = fieldSpec{display: model.FieldAmount, storage: "amount"}
	fieldVAT         = fieldSpec{display: model.FieldVAT, storage: "vat"}
	fieldFlag        = fieldSpec{display: model.FieldFlag, storage: "flag"}
	fieldVerified    = fieldSpec{display: model.FieldVerified, storage: "verified", aliases: []string{"verificationStatus"}}
	fieldStatus      = fieldSpec{display: model.FieldStatus, storage: "status"}
	fieldNotes       = fieldSpec{display: model.FieldNotes, storage: "notes"}
	fieldID          = fieldSpec{display: "ID", storage: "id"}
	fieldImportID    = fieldSpec{display: "ImportID", storage: "import_id", aliases: []string{"importId"}}
)

// exportFields is the column order for de-normalized rows.
var exportFields = []fieldSpec{
	fieldDate, fieldTransID, fieldAccount, fieldAname, fieldReference, fieldDescription,
	fieldAmount, fieldVAT, fieldFlag, fieldVerified, fieldStatus, fieldNotes,
}

// Columns returns the header names written by ToRow, in order.
func Columns(c Convention) []string {
	cols := make([]string, len(exportFields))
	for i, f := range exportFields {
		cols[i] = f.key(c)
	}
	return cols
}

// IDFunc produces identifiers for newly imported records.
type IDFunc func() string

// NewID is the default IDFunc.
func NewID() string {
	return uuid.NewString()
}

// Normalize converts a freshly imported row into a record with a new ID.
// A nil newID uses NewID.
func Normalize(row model.RawRow, newID IDFunc) model.Record {
	if newID == nil {
		newID = NewID
	}
	rec := build(row)
	rec.ID = newID()
	return rec
}

// Rehydrate converts a persisted row back into a record, keeping its ID
// and owning import.
func Rehydrate(row model.RawRow) model.Record {
	rec := build(row)
	rec.ID = text(row, fieldID)
	rec.ImportID = text(row, fieldImportID)
	return rec
}

func build(row model.RawRow) model.Record {
	rec := model.Record{
		Date:          text(row, fieldDate),
		TransactionID: text(row, fieldTransID),
		Account:       text(row, fieldAccount),
		AccountName:   text(row, fieldAname),
		Reference:     text(row, fieldReference),
		Description:   text(row, fieldDescription),
		Flag:          text(row, fieldFlag),
		Notes:         text(row, fieldNotes),
	}

	var ok bool
	if rec.Amount, ok = number(row, fieldAmount); !ok {
		rec.Defaulted = append(rec.Defaulted, model.FieldAmount)
	}
	if rec.VAT, ok = number(row, fieldVAT); !ok {
		rec.Defaulted = append(rec.Defaulted, model.FieldVAT)
	}

	status := text(row, fieldVerified)
	if status == "" {
		status = string(model.StatusClientToVerify)
	}
	return rec.WithStatus(model.VerificationStatus(status))
}

// lookup returns the first candidate value that is present and not blank.
func lookup(row model.RawRow, f fieldSpec) (any, bool) {
	for _, k := range f.keys() {
		v, ok := row[k]
		if !ok || v == nil {
			continue
		}
		if strings.TrimSpace(stringify(v)) == "" {
			continue
		}
		return v, true
	}
	return nil, false
}

func text(row model.RawRow, f fieldSpec) string {
	v, ok := lookup(row, f)
	if !ok {
		return ""
	}
	return strings.TrimSpace(stringify(v))
}

func number(row model.RawRow, f fieldSpec) (decimal.Decimal, bool) {
	v, ok := lookup(row, f)
	if !ok {
		return decimal.Zero, false
	}
	switch n := v.(type) {
	case decimal.Decimal:
		return n, true
	case float64:
		return decimal.NewFromFloat(n), true
	case float32:
		return decimal.NewFromFloat32(n), true
	case int:
		return decimal.NewFromInt(int64(n)), true
	case int64:
		return decimal.NewFromInt(n), true
	}
	return ParseDecimal(stringify(v))
}

var numericPrefix = regexp.MustCompile(`^[+-]?(\d+\.?\d*|\.\d+)([eE][+-]?\d+)?`)

// ParseDecimal parses s with "." as the decimal point. Surrounding
// whitespace and a leading currency symbol are ignored, and a leading
// numeric prefix is accepted ("12.5 ZAR" parses as 12.5). It returns false
// when no number can be read.
func ParseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	s = strings.TrimLeftFunc(s, func(r rune) bool {
		return unicode.Is(unicode.Sc, r) || unicode.IsSpace(r)
	})
	if s == "" {
		return decimal.Zero, false
	}
	if d, err := decimal.NewFromString(s); err == nil {
		return d, true
	}
	prefix := numericPrefix.FindString(s)
	if prefix == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(prefix)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

func stringify(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'f', -1, 32)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format("2006-01-02")
	case fmt.Stringer:
		return x.String()
	default:
		return fmt.Sprint(x)
	}
}

// ToRow de-normalizes a record into a row keyed by the given convention.
// Amount and VAT stay decimal values, or nil when defaulted; ID and ImportID
// are not included.
func ToRow(rec model.Record, c Convention) model.RawRow {
	row := model.RawRow{
		fieldDate.key(c):        rec.Date,
		fieldTransID.key(c):     rec.TransactionID,
		fieldAccount.key(c):     rec.Account,
		fieldAname.key(c):       rec.AccountName,
		fieldReference.key(c):   rec.Reference,
		fieldDescription.key(c): rec.Description,
		fieldAmount.key(c):      rec.Amount,
		fieldVAT.key(c):         rec.VAT,
		fieldFlag.key(c):        rec.Flag,
		fieldVerified.key(c):    string(rec.Status),
		fieldStatus.key(c):      rec.StatusLabel,
		fieldNotes.key(c):       rec.Notes,
	}
	if rec.WasDefaulted(model.FieldAmount) {
		row[fieldAmount.key(c)] = nil
	}
	if rec.WasDefaulted(model.FieldVAT) {
		row[fieldVAT.key(c)] = nil
	}
	return row
}

// Cells returns the record's export values in Columns order, formatted as
// strings. Amounts use two decimal places; defaulted ones are left blank.
func Cells(rec model.Record) []string {
	return []string{
		rec.Date,
		rec.TransactionID,
		rec.Account,
		rec.AccountName,
		rec.Reference,
		rec.Description,
		fixed(rec, model.FieldAmount, rec.Amount),
		fixed(rec, model.FieldVAT, rec.VAT),
		rec.Flag,
		string(rec.Status),
		rec.StatusLabel,
		rec.Notes,
	}
}

func fixed(rec model.Record, field string, d decimal.Decimal) string {
	if rec.WasDefaulted(field) {
		return ""
	}
	return d.StringFixed(2)
}

// ToStored maps a record onto its "data" table row.
func ToStored(rec model.Record, owner string, createdAt time.Time) model.StoredRecord {
	return model.StoredRecord{
		ID:          rec.ID,
		Date:        rec.Date,
		TransID:     rec.TransactionID,
		Account:     rec.Account,
		Aname:       rec.AccountName,
		Reference:   rec.Reference,
		Description: rec.Description,
		Amount:      rec.Amount,
		VAT:         rec.VAT,
		Flag:        rec.Flag,
		Verified:    string(rec.Status),
		Status:      rec.StatusLabel,
		Notes:       rec.Notes,
		ImportID:    rec.ImportID,
		CreatedBy:   owner,
		CreatedAt:   createdAt,
		Defaulted:   slices.Clone(rec.Defaulted),
	}
}

// FromStored rehydrates a stored row.
func FromStored(s model.StoredRecord) model.Record {
	return Rehydrate(s.Row())
}

// FromStoredAll rehydrates rows in order.
func FromStoredAll(rows []model.StoredRecord) []model.Record {
	records := make([]model.Record, len(rows))
	for i, s := range rows {
		records[i] = FromStored(s)
	}
	return records
}
