package scheduler

import (
	"context"
	"time"

	"github.com/tradezone/marketplace/internal/application/ports"
	"github.com/tradezone/marketplace/internal/application/use_cases"
	"github.com/tradezone/marketplace/internal/infrastructure/monitoring"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

const sweepLockKey = "cart-sweeper"

// CartSweeper periodically reclaims stock held by checkouts that never
// completed. A short-lived distributed lock keeps concurrent instances
// from compensating the same carts twice.
type CartSweeper struct {
	cleanup  *use_cases.CleanupUseCase
	cache    ports.Cache
	interval time.Duration
	grace    time.Duration
	logger   *logger.Logger
	stopChan chan struct{}
}

func NewCartSweeper(
	cleanup *use_cases.CleanupUseCase,
	cache ports.Cache,
	interval time.Duration,
	grace time.Duration,
	log *logger.Logger,
) *CartSweeper {
	return &CartSweeper{
		cleanup:  cleanup,
		cache:    cache,
		interval: interval,
		grace:    grace,
		logger:   log,
		stopChan: make(chan struct{}),
	}
}

func (s *CartSweeper) Start(ctx context.Context) {
	s.logger.Info("Starting cart sweeper", "interval", s.interval.String(), "grace_period", s.grace.String())

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("Cart sweeper stopped")
			return
		case <-s.stopChan:
			s.logger.Info("Cart sweeper stopped")
			return
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *CartSweeper) Stop() {
	close(s.stopChan)
}

func (s *CartSweeper) sweep(ctx context.Context) {
	acquired, err := s.cache.AcquireLock(ctx, sweepLockKey, s.interval)
	if err != nil {
		s.logger.Error("Failed to acquire sweep lock", "error", err)
		monitoring.SweeperTicksTotal.WithLabelValues("lock_error").Inc()
		return
	}
	if !acquired {
		monitoring.SweeperTicksTotal.WithLabelValues("skipped").Inc()
		return
	}
	defer func() {
		if err := s.cache.ReleaseLock(ctx, sweepLockKey); err != nil {
			s.logger.Error("Failed to release sweep lock", "error", err)
		}
	}()

	cleaned, err := s.cleanup.CleanupExpiredCheckouts(ctx, s.grace)
	if err != nil {
		s.logger.Error("Sweep finished with errors", "cleaned", cleaned, "error", err)
		monitoring.SweeperTicksTotal.WithLabelValues("error").Inc()
		return
	}

	if cleaned > 0 {
		s.logger.Info("Reclaimed expired checkouts", "cleaned", cleaned)
	}
	monitoring.SweeperTicksTotal.WithLabelValues("ok").Inc()
}
