package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/api"
	"github.com/yourusername/vidrelay-go/internal/app"
	"github.com/yourusername/vidrelay-go/internal/domain"
	"github.com/yourusername/vidrelay-go/internal/infrastructure"
	"github.com/yourusername/vidrelay-go/pkg/logger"
)

var configPath = flag.String("config", "", "Path to config file")

func main() {
	flag.Parse()

	config, err := app.LoadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:      config.Logging.Level,
		Format:     config.Logging.Format,
		OutputPath: config.Logging.OutputPath,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer log.Sync()

	log.Info("Starting vidrelay server",
		zap.String("version", "1.0.0"),
		zap.String("host", config.Server.Host),
		zap.Int("port", config.Server.Port),
		zap.String("temp_dir", config.Download.TempDir),
		zap.Bool("telegram_enabled", config.Telegram.Token != ""))

	ws, err := infrastructure.NewTempWorkspace(config.Download.TempDir)
	if err != nil {
		log.Fatal("Failed to initialize temp workspace", zap.Error(err))
	}

	var history domain.HistoryRepository
	if config.History.DatabasePath != "" {
		repo, err := infrastructure.NewSQLiteHistoryRepository(config.History.DatabasePath)
		if err != nil {
			log.Fatal("Failed to initialize history repository", zap.Error(err))
		}
		defer repo.Close()
		history = repo
	}

	backends := buildBackends(config, log)
	orchestrator := app.NewOrchestrator(backends, ws, history, &config.Download, log)

	sweeper := app.NewSweeper(ws, config.Download.SweepInterval, config.Download.SweepMaxAge, log)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := sweeper.Start(ctx); err != nil {
		log.Fatal("Failed to start sweeper", zap.Error(err))
	}

	// Telegram front end is optional; the HTTP API works without it.
	if config.Telegram.Token != "" {
		bot, err := infrastructure.NewTelegramBot(
			&config.Telegram, &config.Download, orchestrator, ws, history, log)
		if err != nil {
			log.Fatal("Failed to initialize Telegram bot", zap.Error(err))
		}
		go func() {
			if err := bot.Run(ctx); err != nil && err != context.Canceled {
				log.Error("Telegram bot stopped", zap.Error(err))
			}
		}()
	}

	router := api.SetupRouter(orchestrator, history, sweeper, log)

	addr := fmt.Sprintf("%s:%d", config.Server.Host, config.Server.Port)
	server := &http.Server{
		Addr:    addr,
		Handler: router,
	}

	go func() {
		log.Info("HTTP server listening", zap.String("addr", addr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := sweeper.Stop(); err != nil {
		log.Error("Error stopping sweeper", zap.Error(err))
	}
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited")
}

// buildBackends wires the extraction backends. The Facebook backend is only
// registered when its cookie file is configured; Facebook URLs fail with an
// explicit "unavailable" otherwise.
func buildBackends(config *domain.Config, log *zap.Logger) map[domain.BackendName]domain.Backend {
	backends := map[domain.BackendName]domain.Backend{
		domain.BackendYtdlp:         infrastructure.NewYtdlpBackend(&config.Backends, log),
		domain.BackendYouTubeNative: infrastructure.NewYouTubeBackend(log),
	}

	if config.Backends.FacebookCookieFile != "" {
		backends[domain.BackendFacebook] = infrastructure.NewFacebookBackend(&config.Backends, log)
	} else {
		log.Info("Facebook backend disabled: no cookie file configured")
	}

	return backends
}
