package domain

import "time"

// Record statuses stored in download history.
const (
	RecordStatusSuccess = "success"
	RecordStatusFailed  = "failed"
)

// BotUser tracks a user of the messaging front end.
type BotUser struct {
	ID             string    `json:"id" gorm:"primaryKey"`
	Username       string    `json:"username,omitempty"`
	FirstName      string    `json:"first_name,omitempty"`
	TotalDownloads int       `json:"total_downloads" gorm:"default:0"`
	CreatedAt      time.Time `json:"created_at" gorm:"autoCreateTime"`
	LastActive     time.Time `json:"last_active"`
}

// DownloadRecord is one row of download history.
type DownloadRecord struct {
	ID           uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	RequestID    string    `json:"request_id" gorm:"index"`
	UserID       string    `json:"user_id" gorm:"index"`
	URL          string    `json:"url" gorm:"not null"`
	Platform     string    `json:"platform" gorm:"index"`
	Backend      string    `json:"backend,omitempty"`
	Title        string    `json:"title,omitempty"`
	FileSize     int64     `json:"file_size,omitempty"`
	Duration     float64   `json:"duration,omitempty"` // seconds
	Elapsed      float64   `json:"elapsed,omitempty"`  // seconds
	Status       string    `json:"status" gorm:"not null;index"`
	ErrorMessage string    `json:"error_message,omitempty"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// HistoryStats summarizes download history.
type HistoryStats struct {
	Total       int64  `json:"total"`
	Succeeded   int64  `json:"succeeded"`
	Failed      int64  `json:"failed"`
	Users       int64  `json:"users"`
	TopPlatform string `json:"top_platform,omitempty"`
}

// UserStats summarizes a single user's history.
type UserStats struct {
	UserID    string `json:"user_id"`
	Total     int64  `json:"total"`
	Succeeded int64  `json:"succeeded"`
	Failed    int64  `json:"failed"`
	TotalSize int64  `json:"total_size"`
}

// HistoryRepository persists users and download history.
type HistoryRepository interface {
	// UpsertUser creates the user or refreshes its profile and activity time.
	UpsertUser(user *BotUser) error

	// Record appends a download record and bumps the user's success counter
	// when the record is successful.
	Record(rec *DownloadRecord) error

	// Recent returns the newest records, most recent first.
	Recent(limit int) ([]*DownloadRecord, error)

	// ByUser returns a user's newest records, most recent first.
	ByUser(userID string, limit int) ([]*DownloadRecord, error)

	// Stats returns global history statistics.
	Stats() (*HistoryStats, error)

	// StatsForUser returns one user's statistics.
	StatsForUser(userID string) (*UserStats, error)
}
