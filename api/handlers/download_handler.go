package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

// DownloadHandler handles download-related HTTP requests. Downloads run
// synchronously within the request; gin dispatches handlers concurrently and
// the orchestrator's semaphore bounds parallel transfers.
type DownloadHandler struct {
	submitter domain.Submitter
	logger    *zap.Logger
}

// NewDownloadHandler creates a new download handler
func NewDownloadHandler(submitter domain.Submitter, logger *zap.Logger) *DownloadHandler {
	return &DownloadHandler{
		submitter: submitter,
		logger:    logger,
	}
}

// AddDownloadRequest represents a request to run a download
type AddDownloadRequest struct {
	URL                string `json:"url" binding:"required"`
	UserID             string `json:"user_id,omitempty"`
	MaxFileSize        int64  `json:"max_file_size,omitempty"`
	MaxDurationSeconds int64  `json:"max_duration_seconds,omitempty"`
}

// DownloadResponse is the JSON view of a finished run. The file path is
// local to the server host; the API consumer owns the file once it has the
// response.
type DownloadResponse struct {
	RequestID    string                  `json:"request_id"`
	Success      bool                    `json:"success"`
	FilePath     string                  `json:"file_path,omitempty"`
	Title        string                  `json:"title,omitempty"`
	Uploader     string                  `json:"uploader,omitempty"`
	DurationSecs float64                 `json:"duration_seconds,omitempty"`
	FileSize     int64                   `json:"file_size,omitempty"`
	Backend      string                  `json:"backend,omitempty"`
	Error        string                  `json:"error,omitempty"`
	Attempts     []domain.BackendAttempt `json:"attempts,omitempty"`
}

// AddDownload handles POST /api/v1/downloads
func (h *DownloadHandler) AddDownload(c *gin.Context) {
	var req AddDownloadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	request := domain.NewDownloadRequest(
		req.URL,
		req.UserID,
		req.MaxFileSize,
		time.Duration(req.MaxDurationSeconds)*time.Second,
	)

	result := h.submitter.Submit(c.Request.Context(), request)

	resp := DownloadResponse{
		RequestID:    request.ID,
		Success:      result.Success,
		FilePath:     result.FilePath,
		Title:        result.Title,
		Uploader:     result.Uploader,
		DurationSecs: result.Duration.Seconds(),
		FileSize:     result.FileSize,
		Backend:      string(result.Backend),
		Error:        result.ErrorMessage,
		Attempts:     result.Attempts,
	}

	if !result.Success {
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}
	c.JSON(http.StatusOK, resp)
}
