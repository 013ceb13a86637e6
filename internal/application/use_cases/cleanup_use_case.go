package use_cases

import (
	"context"
	"errors"
	"time"

	"github.com/tradezone/marketplace/internal/application/ports"
	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/domain/stock"
	"github.com/tradezone/marketplace/internal/infrastructure/monitoring"
	"github.com/tradezone/marketplace/internal/pkg/clock"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

// CleanupUseCase compensates carts stuck in checkout past the grace period:
// stock goes back to the ledger and the cart returns to the editable state.
// The sweep is best-effort; a cart that fails is retried on the next tick.
type CleanupUseCase struct {
	cartRepo ports.CartRepository
	ledger   *stock.Ledger
	clk      clock.Clock
	log      *logger.Logger
}

func NewCleanupUseCase(
	cartRepo ports.CartRepository,
	ledger *stock.Ledger,
	clk clock.Clock,
	log *logger.Logger,
) *CleanupUseCase {
	return &CleanupUseCase{
		cartRepo: cartRepo,
		ledger:   ledger,
		clk:      clk,
		log:      log,
	}
}

// CleanupExpiredCheckouts runs one sweep pass and returns how many carts
// were compensated.
func (uc *CleanupUseCase) CleanupExpiredCheckouts(ctx context.Context, grace time.Duration) (int, error) {
	cutoff := uc.clk.Now().Add(-grace)

	expired, err := uc.cartRepo.FindExpiredCheckouts(ctx, cutoff)
	if err != nil {
		return 0, err
	}
	if len(expired) == 0 {
		uc.log.Debug("No expired checkouts to clean up")
		return 0, nil
	}

	uc.log.Info("Cleaning up expired checkouts", "count", len(expired))

	cleaned := 0
	for _, candidate := range expired {
		compensated, err := uc.compensate(ctx, candidate.ID)
		if err != nil {
			uc.log.Error("Failed to compensate expired checkout",
				"cart_id", candidate.ID,
				"error", err.Error(),
			)
			continue
		}
		if compensated {
			cleaned++
		}
	}

	monitoring.SweeperCompensationsTotal.Add(float64(cleaned))
	uc.log.Info("Cleanup pass finished", "cleaned", cleaned, "candidates", len(expired))
	return cleaned, nil
}

// compensate reloads the cart by id before touching it: it may have been
// purchased or deleted since the candidate query ran, and both cases mean
// "already resolved", not an error. The bool reports whether stock was
// actually restored, so skipped carts do not count as compensations.
func (uc *CleanupUseCase) compensate(ctx context.Context, cartID string) (bool, error) {
	crt, err := uc.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrCartNotFound) {
			return false, nil
		}
		return false, err
	}
	if crt.Purchased || !crt.CheckoutInProgress {
		return false, nil
	}

	for _, line := range crt.Lines {
		if line.Quantity <= 0 {
			continue
		}
		if err := uc.ledger.Release(ctx, line.ProductID, line.Quantity); err != nil {
			return false, err
		}
	}

	crt.ResetCheckout()
	if err := uc.cartRepo.Save(ctx, crt); err != nil {
		return false, err
	}

	uc.log.Info("Expired checkout compensated", "cart_id", cartID)
	return true, nil
}
