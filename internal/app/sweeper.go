package app

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/yourusername/vidrelay-go/internal/domain"
)

// Sweeper periodically removes aged temp files left behind by
// crash-interrupted runs. It is maintenance only and never touches files on
// the per-request critical path.
type Sweeper struct {
	ws       domain.Workspace
	interval time.Duration
	maxAge   time.Duration
	logger   *zap.Logger
	mu       sync.RWMutex
	running  bool
	stopChan chan struct{}
	wg       sync.WaitGroup
}

// NewSweeper creates a sweeper over the given workspace.
func NewSweeper(ws domain.Workspace, interval, maxAge time.Duration, logger *zap.Logger) *Sweeper {
	return &Sweeper{
		ws:       ws,
		interval: interval,
		maxAge:   maxAge,
		logger:   logger,
		stopChan: make(chan struct{}),
	}
}

// Start starts the background sweep loop.
func (s *Sweeper) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("sweeper already running")
	}
	s.running = true
	s.mu.Unlock()

	s.logger.Info("Temp sweeper started",
		zap.String("dir", s.ws.Root()),
		zap.Duration("interval", s.interval),
		zap.Duration("max_age", s.maxAge))

	s.wg.Add(1)
	go s.loop(ctx)
	return nil
}

// Stop stops the sweep loop and waits for it to exit.
func (s *Sweeper) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return fmt.Errorf("sweeper not running")
	}
	s.running = false
	s.mu.Unlock()

	close(s.stopChan)
	s.wg.Wait()
	return nil
}

// IsRunning returns whether the sweep loop is active.
func (s *Sweeper) IsRunning() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.running
}

// SweepNow runs one sweep pass immediately.
func (s *Sweeper) SweepNow() (int, error) {
	removed, err := s.ws.Sweep(s.maxAge)
	if err != nil {
		return removed, err
	}
	if removed > 0 {
		s.logger.Info("Swept aged temp files", zap.Int("removed", removed))
	}
	return removed, nil
}

func (s *Sweeper) loop(ctx context.Context) {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stopChan:
			return
		case <-ticker.C:
			if _, err := s.SweepNow(); err != nil {
				s.logger.Error("Temp sweep failed", zap.Error(err))
			}
		}
	}
}
