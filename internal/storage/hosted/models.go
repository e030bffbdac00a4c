package hosted

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/Veraticus/vatflow/internal/model"
)

// dataRow is one record in the "data" table.
type dataRow struct {
	CreatedAt   time.Time       `gorm:"column:created_at;not null;index:idx_data_owner,priority:2"`
	Amount      decimal.Decimal `gorm:"column:amount;type:numeric;not null;default:0"`
	VAT         decimal.Decimal `gorm:"column:vat;type:numeric;not null;default:0"`
	ImportID    *string         `gorm:"column:import_id;index"`
	ID          string          `gorm:"column:id;primaryKey"`
	Date        string          `gorm:"column:date"`
	TransID     string          `gorm:"column:trans_id"`
	Account     string          `gorm:"column:account"`
	Aname       string          `gorm:"column:aname"`
	Reference   string          `gorm:"column:reference"`
	Description string          `gorm:"column:description"`
	Flag        string          `gorm:"column:flag"`
	Verified    string          `gorm:"column:verified;not null;default:'0'"`
	Status      string          `gorm:"column:status"`
	Notes       string          `gorm:"column:notes"`
	CreatedBy   string          `gorm:"column:created_by;not null;index:idx_data_owner,priority:1"`
	Defaulted   string          `gorm:"column:defaulted;not null;default:''"`
	// Seq keeps insertion order among rows sharing a timestamp.
	Seq int64 `gorm:"column:seq;autoIncrement"`
}

func (dataRow) TableName() string { return "data" }

// importRow is one manifest in the "data_imports" table.
type importRow struct {
	ImportedAt  time.Time `gorm:"column:imported_at;not null"`
	ID          string    `gorm:"column:id;primaryKey"`
	UserID      string    `gorm:"column:user_id;not null;index"`
	Filename    string    `gorm:"column:filename;not null"`
	ImportedBy  string    `gorm:"column:imported_by"`
	RecordCount int       `gorm:"column:record_count;not null;default:0"`
}

func (importRow) TableName() string { return "data_imports" }

// validationRow is one pass in the "data_validation" table.
type validationRow struct {
	CreatedAt   time.Time `gorm:"column:created_at;not null"`
	ID          string    `gorm:"column:id;primaryKey"`
	Filename    string    `gorm:"column:filename"`
	CreatedBy   string    `gorm:"column:created_by;not null;index"`
	RecordCount int       `gorm:"column:record_count;not null;default:0"`
}

func (validationRow) TableName() string { return "data_validation" }

// validationRecordRow is one outcome in the "data_validation_records" table.
type validationRecordRow struct {
	Amount       decimal.Decimal `gorm:"column:amount;type:numeric;not null;default:0"`
	VAT          decimal.Decimal `gorm:"column:vat;type:numeric;not null;default:0"`
	ID           string          `gorm:"column:id;primaryKey"`
	ValidationID string          `gorm:"column:validation_id;not null;index"`
	Date         string          `gorm:"column:date"`
	TransID      string          `gorm:"column:trans_id"`
	Account      string          `gorm:"column:account"`
	Aname        string          `gorm:"column:aname"`
	Reference    string          `gorm:"column:reference"`
	Description  string          `gorm:"column:description"`
	ErrorFields  []string        `gorm:"column:error_fields;type:jsonb;serializer:json"`
	CreatedBy    string          `gorm:"column:created_by;not null"`
	HasError     bool            `gorm:"column:has_error;not null;default:false"`
	Seq          int64           `gorm:"column:seq;autoIncrement"`
}

func (validationRecordRow) TableName() string { return "data_validation_records" }

// userDataRow is one legacy snapshot in the "user_data" table.
type userDataRow struct {
	WrittenAt time.Time `gorm:"column:updated_at;not null"`
	UserID    string    `gorm:"column:user_id;primaryKey"`
	Data      string    `gorm:"column:data;type:text;not null"`
}

func (userDataRow) TableName() string { return "user_data" }

func toDataRow(rec model.StoredRecord) dataRow {
	row := dataRow{
		ID:          rec.ID,
		Date:        rec.Date,
		TransID:     rec.TransID,
		Account:     rec.Account,
		Aname:       rec.Aname,
		Reference:   rec.Reference,
		Description: rec.Description,
		Amount:      rec.Amount,
		VAT:         rec.VAT,
		Flag:        rec.Flag,
		Verified:    rec.Verified,
		Status:      rec.Status,
		Notes:       rec.Notes,
		CreatedBy:   rec.CreatedBy,
		CreatedAt:   rec.CreatedAt.UTC(),
		Defaulted:   strings.Join(rec.Defaulted, ","),
	}
	if rec.ImportID != "" {
		id := rec.ImportID
		row.ImportID = &id
	}
	return row
}

func (r dataRow) stored() model.StoredRecord {
	rec := model.StoredRecord{
		ID:          r.ID,
		Date:        r.Date,
		TransID:     r.TransID,
		Account:     r.Account,
		Aname:       r.Aname,
		Reference:   r.Reference,
		Description: r.Description,
		Amount:      r.Amount,
		VAT:         r.VAT,
		Flag:        r.Flag,
		Verified:    r.Verified,
		Status:      r.Status,
		Notes:       r.Notes,
		CreatedBy:   r.CreatedBy,
		CreatedAt:   r.CreatedAt,
	}
	if r.ImportID != nil {
		rec.ImportID = *r.ImportID
	}
	if r.Defaulted != "" {
		rec.Defaulted = strings.Split(r.Defaulted, ",")
	}
	return rec
}

func toImportRow(m model.ImportManifest) importRow {
	return importRow{
		ID:          m.ID,
		UserID:      m.Owner,
		Filename:    m.Filename,
		RecordCount: m.RecordCount,
		ImportedBy:  m.ImportedBy,
		ImportedAt:  m.ImportedAt.UTC(),
	}
}

func (r importRow) manifest() model.ImportManifest {
	return model.ImportManifest{
		ID:          r.ID,
		Owner:       r.UserID,
		Filename:    r.Filename,
		RecordCount: r.RecordCount,
		ImportedBy:  r.ImportedBy,
		ImportedAt:  r.ImportedAt,
	}
}

func toValidationRow(run model.ValidationRun) validationRow {
	return validationRow{
		ID:          run.ID,
		Filename:    run.Filename,
		RecordCount: run.RecordCount,
		CreatedBy:   run.Owner,
		CreatedAt:   run.CreatedAt.UTC(),
	}
}

func toValidationRecordRow(rec model.ValidationRecord) validationRecordRow {
	fields := rec.ErrorFields
	if fields == nil {
		fields = []string{}
	}
	return validationRecordRow{
		ID:           rec.ID,
		ValidationID: rec.ValidationID,
		Date:         rec.Date,
		TransID:      rec.TransID,
		Account:      rec.Account,
		Aname:        rec.Aname,
		Reference:    rec.Reference,
		Description:  rec.Description,
		Amount:       rec.Amount,
		VAT:          rec.VAT,
		HasError:     rec.HasError,
		ErrorFields:  fields,
		CreatedBy:    rec.CreatedBy,
	}
}

func (r validationRecordRow) record() model.ValidationRecord {
	return model.ValidationRecord{
		ID:           r.ID,
		ValidationID: r.ValidationID,
		Date:         r.Date,
		TransID:      r.TransID,
		Account:      r.Account,
		Aname:        r.Aname,
		Reference:    r.Reference,
		Description:  r.Description,
		Amount:       r.Amount,
		VAT:          r.VAT,
		HasError:     r.HasError,
		ErrorFields:  r.ErrorFields,
		CreatedBy:    r.CreatedBy,
	}
}
