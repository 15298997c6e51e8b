package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yourusername/vidrelay-go/internal/app"
)

// HealthHandler handles health check requests
type HealthHandler struct {
	sweeper *app.Sweeper
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(sweeper *app.Sweeper) *HealthHandler {
	return &HealthHandler{
		sweeper: sweeper,
	}
}

// HealthResponse represents a health check response
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Sweeper struct {
		Running bool `json:"running"`
	} `json:"sweeper"`
}

// Health handles GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response := HealthResponse{
		Status:  "ok",
		Version: "1.0.0",
	}
	response.Sweeper.Running = h.sweeper.IsRunning()

	c.JSON(http.StatusOK, response)
}

// Ready handles GET /ready
func (h *HealthHandler) Ready(c *gin.Context) {
	if !h.sweeper.IsRunning() {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status": "not ready",
			"reason": "temp sweeper not running",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}
