package repository

import (
	"context"
	"time"

	"go-inventory-pos/internal/model"

	"gorm.io/gorm"
)

// LogRepository is append-only: there is deliberately no update or delete.
type LogRepository interface {
	Append(ctx context.Context, tx *gorm.DB, entries ...*model.LogEntry) error
	FindRecent(ctx context.Context, limit int) ([]model.LogEntry, error)
	FindBetween(ctx context.Context, start, end time.Time) ([]model.LogEntry, error)
	FindByType(ctx context.Context, logType model.LogType, start, end time.Time) ([]model.LogEntry, error)
}

type logRepo struct {
	db *gorm.DB
}

func NewLogRepo(db *gorm.DB) LogRepository {
	return &logRepo{db}
}

// Append inserts entries together with their items.
func (r *logRepo) Append(ctx context.Context, tx *gorm.DB, entries ...*model.LogEntry) error {
	if len(entries) == 0 {
		return nil
	}
	return conn(ctx, r.db, tx).Create(entries).Error
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Order("log_items.id ASC")
}

// FindRecent returns the newest entries first.
func (r *logRepo) FindRecent(ctx context.Context, limit int) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Order("timestamp DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}

// FindBetween returns entries stamped in [start, end), oldest first.
func (r *logRepo) FindBetween(ctx context.Context, start, end time.Time) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("timestamp >= ? AND timestamp < ?", start.UTC(), end.UTC()).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}

func (r *logRepo) FindByType(ctx context.Context, logType model.LogType, start, end time.Time) ([]model.LogEntry, error) {
	var entries []model.LogEntry
	err := r.db.WithContext(ctx).
		Preload("Items", preloadItems).
		Where("type = ? AND timestamp >= ? AND timestamp < ?", logType, start.UTC(), end.UTC()).
		Order("timestamp ASC").
		Find(&entries).Error
	return entries, err
}
