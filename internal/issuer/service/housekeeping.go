package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/quolldev/grantd/internal/issuer/store"
)

// HousekeepingService periodically removes expired authorization codes
// so the table doesn't grow without bound. Live codes already enforce
// their own expiry at exchange time; this is purely hygiene.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a new housekeeping service. If interval
// is 0 or negative, defaults to 1 hour.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start begins the background worker. Non-blocking; call Stop for a
// graceful shutdown.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop shuts the worker down, blocking until any in-progress cleanup
// finishes.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping service stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on startup
	s.cleanup()

	for {
		select {
		case <-ticker.C:
			s.cleanup()
		case <-s.stopCh:
			return
		}
	}
}

func (s *HousekeepingService) cleanup() {
	ctx := context.Background()

	if err := s.Store.AuthorizationCodes().DeleteExpiredAuthorizationCodes(ctx); err != nil {
		s.Logger.Error("failed to delete expired authorization codes", "error", err)
		return
	}
	s.Logger.Debug("deleted expired authorization codes")
}
