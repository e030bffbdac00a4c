// Package hosted stores records in a hosted Postgres database through gorm.
package hosted

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/Veraticus/vatflow/internal/common"
	"github.com/Veraticus/vatflow/internal/model"
	"github.com/Veraticus/vatflow/internal/service"
)

// Store implements service.Store on Postgres.
type Store struct {
	db *gorm.DB
}

var _ service.Store = (*Store)(nil)

// WithSSL adds sslmode=require to dsn unless it already names a mode.
// Hosted providers refuse plain connections.
func WithSSL(dsn string) string {
	if strings.Contains(dsn, "sslmode") {
		return dsn
	}
	if strings.Contains(dsn, "://") {
		sep := "?"
		if strings.Contains(dsn, "?") {
			sep = "&"
		}
		return dsn + sep + "sslmode=require"
	}
	return strings.TrimSpace(dsn) + " sslmode=require"
}

// Open connects to dsn and migrates the schema.
func Open(ctx context.Context, dsn string, debug bool) (*Store, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("%w: database.dsn", common.ErrMissingConfig)
	}

	level := logger.Silent
	if debug {
		level = logger.Info
	}

	db, err := gorm.Open(postgres.Open(WithSSL(dsn)), &gorm.Config{
		Logger: logger.Default.LogMode(level),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	s := New(db)
	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	slog.Debug("Connected to hosted database")
	return s, nil
}

// New wraps an open gorm connection.
func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Migrate creates or updates the tables.
func (s *Store) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(
		&importRow{}, &dataRow{}, &userDataRow{}, &validationRow{}, &validationRecordRow{},
	); err != nil {
		return fmt.Errorf("failed to migrate database: %w", err)
	}
	return nil
}

// Close releases the connection pool.
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// InsertManifest records a new import.
func (s *Store) InsertManifest(ctx context.Context, m model.ImportManifest) error {
	row := toImportRow(m)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert import %s: %w", m.ID, err)
	}
	return nil
}

// InsertRecords stores one batch in a single statement.
func (s *Store) InsertRecords(ctx context.Context, records []model.StoredRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]dataRow, len(records))
	for i, rec := range records {
		rows[i] = toDataRow(rec)
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert records: %w", err)
	}
	return nil
}

func (s *Store) recordScope(ctx context.Context, q service.RecordQuery) *gorm.DB {
	tx := s.db.WithContext(ctx).Model(&dataRow{}).Where("created_by = ?", q.Owner)
	if q.ImportID != "" {
		tx = tx.Where("import_id = ?", q.ImportID)
	}
	return tx
}

// SelectRecords returns the owner's records in the requested order.
func (s *Store) SelectRecords(ctx context.Context, q service.RecordQuery) ([]model.StoredRecord, error) {
	order := "created_at ASC, seq ASC"
	if q.Order == service.OrderNewest {
		order = "created_at DESC, seq DESC"
	}

	var rows []dataRow
	if err := s.recordScope(ctx, q).Order(order).Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	records := make([]model.StoredRecord, len(rows))
	for i, r := range rows {
		records[i] = r.stored()
	}
	return records, nil
}

// DeleteRecords hard-deletes the matching records.
func (s *Store) DeleteRecords(ctx context.Context, q service.RecordQuery) (int64, error) {
	res := s.recordScope(ctx, q).Delete(&dataRow{})
	if res.Error != nil {
		return 0, fmt.Errorf("failed to delete records: %w", res.Error)
	}
	return res.RowsAffected, nil
}

// CountRecords counts the matching records.
func (s *Store) CountRecords(ctx context.Context, q service.RecordQuery) (int, error) {
	var n int64
	if err := s.recordScope(ctx, q).Count(&n).Error; err != nil {
		return 0, fmt.Errorf("failed to count records: %w", err)
	}
	return int(n), nil
}

// SelectManifests lists the owner's imports, newest first.
func (s *Store) SelectManifests(ctx context.Context, q service.ManifestQuery) ([]model.ImportManifest, error) {
	tx := s.db.WithContext(ctx).Where("user_id = ?", q.Owner)
	if q.ID != "" {
		tx = tx.Where("id = ?", q.ID)
	}

	var rows []importRow
	if err := tx.Order("imported_at DESC").Find(&rows).Error; err != nil {
		return nil, fmt.Errorf("failed to query imports: %w", err)
	}

	manifests := make([]model.ImportManifest, len(rows))
	for i, r := range rows {
		manifests[i] = r.manifest()
	}
	return manifests, nil
}

// DeleteManifest removes one import; its records are not touched.
func (s *Store) DeleteManifest(ctx context.Context, owner, id string) error {
	res := s.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, owner).Delete(&importRow{})
	if res.Error != nil {
		return fmt.Errorf("failed to delete import %s: %w", id, res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("import %s: %w", id, common.ErrNotFound)
	}
	return nil
}

// PutSnapshot upserts the owner's snapshot.
func (s *Store) PutSnapshot(ctx context.Context, owner string, data []byte, updatedAt time.Time) error {
	row := userDataRow{UserID: owner, Data: string(data), WrittenAt: updatedAt.UTC()}
	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("failed to save snapshot: %w", err)
	}
	return nil
}

// GetSnapshot returns the owner's snapshot.
func (s *Store) GetSnapshot(ctx context.Context, owner string) ([]byte, time.Time, error) {
	var row userDataRow
	err := s.db.WithContext(ctx).Where("user_id = ?", owner).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, time.Time{}, fmt.Errorf("snapshot for %s: %w", owner, common.ErrNotFound)
	}
	if err != nil {
		return nil, time.Time{}, fmt.Errorf("failed to load snapshot: %w", err)
	}
	return []byte(row.Data), row.WrittenAt, nil
}

// DeleteSnapshot removes the owner's snapshot.
func (s *Store) DeleteSnapshot(ctx context.Context, owner string) error {
	if err := s.db.WithContext(ctx).Where("user_id = ?", owner).Delete(&userDataRow{}).Error; err != nil {
		return fmt.Errorf("failed to delete snapshot: %w", err)
	}
	return nil
}

// InsertValidationRun records a new validation pass.
func (s *Store) InsertValidationRun(ctx context.Context, run model.ValidationRun) error {
	row := toValidationRow(run)
	if err := s.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("failed to insert validation %s: %w", run.ID, err)
	}
	return nil
}

// InsertValidationRecords stores one batch of outcomes in a single statement.
func (s *Store) InsertValidationRecords(ctx context.Context, records []model.ValidationRecord) error {
	if len(records) == 0 {
		return nil
	}
	rows := make([]validationRecordRow, len(records))
	for i, rec := range records {
		rows[i] = toValidationRecordRow(rec)
	}
	if err := s.db.WithContext(ctx).Create(&rows).Error; err != nil {
		return fmt.Errorf("failed to insert validation records: %w", err)
	}
	return nil
}

// SelectValidationRecords returns one run's outcomes in insertion order.
func (s *Store) SelectValidationRecords(ctx context.Context, owner, validationID string) ([]model.ValidationRecord, error) {
	var rows []validationRecordRow
	err := s.db.WithContext(ctx).
		Where("created_by = ? AND validation_id = ?", owner, validationID).
		Order("seq ASC").
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to query validation records: %w", err)
	}

	records := make([]model.ValidationRecord, len(rows))
	for i, r := range rows {
		records[i] = r.record()
	}
	return records, nil
}
