package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/gymauth/internal/gymauth/store"
)

// HousekeepingService periodically deletes expired refresh tokens and clears
// lapsed password-reset tokens so neither table grows without bound.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService creates a housekeeping worker. A non-positive
// interval defaults to 1 hour.
func NewHousekeepingService(store store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = 1 * time.Hour
	}

	return &HousekeepingService{
		Store:    store,
		Logger:   logger,
		Interval: interval,
		Now:      time.Now,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start launches the worker. It is non-blocking; call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping service started", "interval", s.Interval)
}

// Stop blocks until any in-progress cleanup has finished.
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

// CleanupResult reports what one pass removed.
type CleanupResult struct {
	RefreshTokensDeleted int64
	ResetTokensCleared   int64
}

// cleanup runs each step independently; a failure in one does not stop the
// other.
func (s *HousekeepingService) cleanup() CleanupResult {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := s.Now()
	var res CleanupResult

	n, err := s.Store.RefreshTokens().DeleteExpiredRefreshTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired refresh tokens", "error", err)
	} else {
		res.RefreshTokensDeleted = n
	}

	n, err = s.Store.Users().ClearExpiredResetTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to clear expired reset tokens", "error", err)
	} else {
		res.ResetTokensCleared = n
	}

	s.Logger.Info("housekeeping cleanup completed",
		"refresh_tokens_deleted", res.RefreshTokensDeleted,
		"reset_tokens_cleared", res.ResetTokensCleared,
	)
	return res
}
