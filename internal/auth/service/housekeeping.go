package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/taskauth/internal/auth/store"
	"github.com/aussiebroadwan/taskauth/pkg/ratelimit"
)

// HousekeepingService periodically evicts elapsed rate limit windows and
// checks that the store is still reachable.
type HousekeepingService struct {
	Store    store.Store
	Limiter  *ratelimit.Limiter
	Logger   *slog.Logger
	Interval time.Duration

	// OnSweep, when set, is told how many windows each pass removed.
	OnSweep func(removed int)

	// Internal channels for lifecycle management
	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service with the given interval.
// If interval is 0 or negative, defaults to 1 minute.
func NewHousekeepingService(st store.Store, limiter *ratelimit.Limiter, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Minute
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Store:    st,
		Limiter:  limiter,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker that periodically runs cleanup.
// This is non-blocking. Call Stop() to gracefully shutdown the worker.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop gracefully shuts down the background worker.
// Blocks until the worker has finished any in-progress cleanup.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

// cleanup runs one pass. A failed store ping is logged and the next tick
// tries again.
func (s *HousekeepingService) cleanup() {
	if s.Limiter != nil {
		removed := s.Limiter.Sweep()
		if s.OnSweep != nil {
			s.OnSweep(removed)
		}
		s.Logger.Debug("swept rate limit windows", "removed", removed, "live", s.Limiter.Len())
	}

	if s.Store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), s.Interval/2)
		defer cancel()
		if err := s.Store.Ping(ctx); err != nil {
			s.Logger.Warn("store ping failed", "error", err)
		}
	}
}
