package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

// stubSubmitter returns a canned result and captures the request it saw.
type stubSubmitter struct {
	result *domain.DownloadResult
	seen   *domain.DownloadRequest
}

func (s *stubSubmitter) Submit(ctx context.Context, req *domain.DownloadRequest) *domain.DownloadResult {
	s.seen = req
	return s.result
}

func postDownload(t *testing.T, handler *DownloadHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.POST("/api/v1/downloads", handler.AddDownload)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/downloads", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAddDownload_Success(t *testing.T) {
	submitter := &stubSubmitter{result: &domain.DownloadResult{
		Success:  true,
		FilePath: "/tmp/abc-00.mp4",
		Title:    "clip",
		FileSize: 1234,
		Backend:  domain.BackendYtdlp,
		Duration: 90 * time.Second,
	}}
	handler := NewDownloadHandler(submitter, zap.NewNop())

	w := postDownload(t, handler, `{"url": "https://youtu.be/abc", "user_id": "u1"}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp DownloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "/tmp/abc-00.mp4", resp.FilePath)
	assert.Equal(t, "clip", resp.Title)
	assert.Equal(t, "ytdlp", resp.Backend)
	assert.Equal(t, 90.0, resp.DurationSecs)
	assert.NotEmpty(t, resp.RequestID)

	require.NotNil(t, submitter.seen)
	assert.Equal(t, "https://youtu.be/abc", submitter.seen.URL)
	assert.Equal(t, "u1", submitter.seen.UserID)
}

func TestAddDownload_LimitsPassedThrough(t *testing.T) {
	submitter := &stubSubmitter{result: &domain.DownloadResult{Success: true}}
	handler := NewDownloadHandler(submitter, zap.NewNop())

	w := postDownload(t, handler, `{"url": "https://youtu.be/abc", "max_file_size": 1048576, "max_duration_seconds": 300}`)
	require.Equal(t, http.StatusOK, w.Code)

	require.NotNil(t, submitter.seen)
	assert.Equal(t, int64(1048576), submitter.seen.MaxFileSize)
	assert.Equal(t, 5*time.Minute, submitter.seen.MaxDuration)
}

func TestAddDownload_Failure(t *testing.T) {
	submitter := &stubSubmitter{result: &domain.DownloadResult{
		Success:      false,
		ErrorMessage: "This video is larger than the 50.0 MB limit.",
		Attempts: []domain.BackendAttempt{
			{Backend: domain.BackendYtdlp, Seq: 0, Outcome: domain.OutcomeSizeExceeded},
		},
	}}
	handler := NewDownloadHandler(submitter, zap.NewNop())

	w := postDownload(t, handler, `{"url": "https://youtu.be/abc"}`)
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)

	var resp DownloadResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "50.0 MB")
	require.Len(t, resp.Attempts, 1)
	assert.Equal(t, domain.OutcomeSizeExceeded, resp.Attempts[0].Outcome)
}

func TestAddDownload_MissingURL(t *testing.T) {
	submitter := &stubSubmitter{result: &domain.DownloadResult{Success: true}}
	handler := NewDownloadHandler(submitter, zap.NewNop())

	w := postDownload(t, handler, `{"user_id": "u1"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Nil(t, submitter.seen, "invalid requests never reach the orchestrator")
}
