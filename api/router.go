package api

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/api/handlers"
	"github.com/yourusername/vidrelay-go/api/middleware"
	"github.com/yourusername/vidrelay-go/internal/app"
	"github.com/yourusername/vidrelay-go/internal/domain"
)

// SetupRouter sets up the HTTP router. history may be nil, in which case the
// history endpoints are not registered.
func SetupRouter(
	submitter domain.Submitter,
	history domain.HistoryRepository,
	sweeper *app.Sweeper,
	log *zap.Logger,
) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Middleware
	router.Use(middleware.Logger(log))
	router.Use(middleware.Recovery(log))

	// Health endpoints
	healthHandler := handlers.NewHealthHandler(sweeper)
	router.GET("/health", healthHandler.Health)
	router.GET("/ready", healthHandler.Ready)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		downloadHandler := handlers.NewDownloadHandler(submitter, log)
		v1.POST("/downloads", downloadHandler.AddDownload)

		if history != nil {
			historyHandler := handlers.NewHistoryHandler(history, log)
			v1.GET("/history", historyHandler.List)
			v1.GET("/history/stats", historyHandler.Stats)
		}
	}

	return router
}
