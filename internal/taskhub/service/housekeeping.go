package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/aussiebroadwan/taskhub/internal/taskhub/store"
)

// HousekeepingService periodically deletes expired verification tokens and
// MFA challenges so neither table grows when links or challenges are
// abandoned.
type HousekeepingService struct {
	Store    store.Store
	Logger   *slog.Logger
	Interval time.Duration
	Now      func() time.Time

	stopCh chan struct{}
	doneCh chan struct{}
}

// NewHousekeepingService defaults interval to one hour when it is not positive.
func NewHousekeepingService(st store.Store, logger *slog.Logger, interval time.Duration) *HousekeepingService {
	if interval <= 0 {
		interval = time.Hour
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &HousekeepingService{
		Store:    st,
		Logger:   logger,
		Interval: interval,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}
}

// Start runs the worker in the background. Call Stop to shut it down.
func (s *HousekeepingService) Start() {
	go s.run()
	s.Logger.Info("housekeeping started", slog.Duration("interval", s.Interval))
}

// Stop blocks until an in-progress sweep has finished.
func (s *HousekeepingService) Stop() {
	close(s.stopCh)
	<-s.doneCh
	s.Logger.Info("housekeeping stopped")
}

func (s *HousekeepingService) run() {
	defer close(s.doneCh)

	ticker := time.NewTicker(s.Interval)
	defer ticker.Stop()

	s.Sweep(context.Background())

	for {
		select {
		case <-ticker.C:
			s.Sweep(context.Background())
		case <-s.stopCh:
			return
		}
	}
}

// Sweep deletes every expired verification token and MFA challenge and
// returns the number of rows removed.
func (s *HousekeepingService) Sweep(ctx context.Context) int64 {
	now := time.Now().UTC()
	if s.Now != nil {
		now = s.Now().UTC()
	}

	tokens, err := s.Store.VerificationTokens().DeleteExpiredVerificationTokens(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired verification tokens", slog.Any("error", err))
	}
	challenges, err := s.Store.MFASessions().DeleteExpiredMFASessions(ctx, now)
	if err != nil {
		s.Logger.Error("failed to delete expired mfa sessions", slog.Any("error", err))
	}

	s.Logger.Debug("housekeeping sweep completed",
		slog.Int64("verification_tokens", tokens),
		slog.Int64("mfa_sessions", challenges),
	)
	return tokens + challenges
}
