package domain

import (
	"time"

	"github.com/google/uuid"
)

// DownloadRequest describes a single download job. It is immutable once
// created; concurrent requests never share one.
type DownloadRequest struct {
	ID          string
	URL         string
	UserID      string
	MaxFileSize int64         // bytes, inclusive limit
	MaxDuration time.Duration // inclusive limit
	CreatedAt   time.Time
}

// NewDownloadRequest creates a download request. Zero limits mean "use the
// configured defaults"; the orchestrator fills them in at submission.
func NewDownloadRequest(url, userID string, maxFileSize int64, maxDuration time.Duration) *DownloadRequest {
	return &DownloadRequest{
		ID:          uuid.New().String(),
		URL:         url,
		UserID:      userID,
		MaxFileSize: maxFileSize,
		MaxDuration: maxDuration,
		CreatedAt:   time.Now(),
	}
}

// DownloadResult is the outcome of one orchestration run. On success the
// caller owns FilePath and is responsible for eventually deleting it; the
// orchestrator keeps no reference after returning.
type DownloadResult struct {
	Success      bool
	FilePath     string
	Title        string
	Duration     time.Duration
	Uploader     string
	FileSize     int64
	Backend      BackendName
	ErrorMessage string
	Attempts     []BackendAttempt
}
