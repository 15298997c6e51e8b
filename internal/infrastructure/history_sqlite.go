package infrastructure

import (
	"fmt"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

// SQLiteHistoryRepository implements HistoryRepository using SQLite.
type SQLiteHistoryRepository struct {
	db *gorm.DB
}

// NewSQLiteHistoryRepository opens (or creates) the history database.
func NewSQLiteHistoryRepository(dbPath string) (*SQLiteHistoryRepository, error) {
	db, err := gorm.Open(sqlite.Open(dbPath), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.AutoMigrate(&domain.BotUser{}, &domain.DownloadRecord{}); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return &SQLiteHistoryRepository{db: db}, nil
}

// UpsertUser creates the user or refreshes its profile and activity time.
func (r *SQLiteHistoryRepository) UpsertUser(user *domain.BotUser) error {
	user.LastActive = time.Now()
	return r.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{"username", "first_name", "last_active"}),
	}).Create(user).Error
}

// Record appends a download record; successful records also bump the user's
// download counter.
func (r *SQLiteHistoryRepository) Record(rec *domain.DownloadRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(rec).Error; err != nil {
			return err
		}
		if rec.Status == domain.RecordStatusSuccess && rec.UserID != "" {
			if err := tx.Model(&domain.BotUser{}).
				Where("id = ?", rec.UserID).
				UpdateColumn("total_downloads", gorm.Expr("total_downloads + 1")).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// Recent returns the newest records, most recent first.
func (r *SQLiteHistoryRepository) Recent(limit int) ([]*domain.DownloadRecord, error) {
	var records []*domain.DownloadRecord
	err := r.db.Order("created_at DESC").Limit(limit).Find(&records).Error
	return records, err
}

// ByUser returns a user's newest records, most recent first.
func (r *SQLiteHistoryRepository) ByUser(userID string, limit int) ([]*domain.DownloadRecord, error) {
	var records []*domain.DownloadRecord
	err := r.db.Where("user_id = ?", userID).
		Order("created_at DESC").Limit(limit).
		Find(&records).Error
	return records, err
}

// Stats returns global history statistics.
func (r *SQLiteHistoryRepository) Stats() (*domain.HistoryStats, error) {
	stats := &domain.HistoryStats{}

	if err := r.db.Model(&domain.DownloadRecord{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := r.db.Model(&domain.DownloadRecord{}).
		Where("status = ?", domain.RecordStatusSuccess).
		Count(&stats.Succeeded).Error; err != nil {
		return nil, err
	}
	stats.Failed = stats.Total - stats.Succeeded

	if err := r.db.Model(&domain.BotUser{}).Count(&stats.Users).Error; err != nil {
		return nil, err
	}

	var top struct {
		Platform string
		Count    int64
	}
	err := r.db.Model(&domain.DownloadRecord{}).
		Select("platform, count(*) as count").
		Group("platform").
		Order("count DESC").
		Limit(1).
		Scan(&top).Error
	if err != nil {
		return nil, err
	}
	stats.TopPlatform = top.Platform

	return stats, nil
}

// StatsForUser returns one user's statistics.
func (r *SQLiteHistoryRepository) StatsForUser(userID string) (*domain.UserStats, error) {
	stats := &domain.UserStats{UserID: userID}

	base := r.db.Model(&domain.DownloadRecord{}).Where("user_id = ?", userID)
	if err := base.Session(&gorm.Session{}).Count(&stats.Total).Error; err != nil {
		return nil, err
	}
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", domain.RecordStatusSuccess).
		Count(&stats.Succeeded).Error; err != nil {
		return nil, err
	}
	stats.Failed = stats.Total - stats.Succeeded

	var totalSize struct{ Sum int64 }
	if err := base.Session(&gorm.Session{}).
		Where("status = ?", domain.RecordStatusSuccess).
		Select("coalesce(sum(file_size), 0) as sum").
		Scan(&totalSize).Error; err != nil {
		return nil, err
	}
	stats.TotalSize = totalSize.Sum

	return stats, nil
}

// Close closes the database connection
func (r *SQLiteHistoryRepository) Close() error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
