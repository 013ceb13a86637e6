package use_cases

import (
	"context"
	"errors"
	"fmt"

	"github.com/tradezone/marketplace/internal/application/ports"
	"github.com/tradezone/marketplace/internal/domain/cart"
	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/domain/stock"
	"github.com/tradezone/marketplace/internal/infrastructure/monitoring"
	"github.com/tradezone/marketplace/internal/pkg/clock"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

const reserveAttempts = 3

type reservation struct {
	productID string
	quantity  int
}

// CheckoutUseCase drives a cart through
// EDITABLE -> CHECKOUT_IN_PROGRESS -> {PURCHASED | EDITABLE}.
//
// Checkout is all-or-nothing across lines: the two stores are independent, so
// instead of a cross-entity transaction the orchestrator reserves stock line
// by line and compensates every committed reservation of the current attempt
// before surfacing any failure.
type CheckoutUseCase struct {
	cartRepo    ports.CartRepository
	productRepo ports.ProductRepository
	users       ports.UserDirectory
	ledger      *stock.Ledger
	payments    ports.PaymentProvider
	notifier    ports.Notifier
	clk         clock.Clock
	log         *logger.Logger
	newCartFn   func(ctx context.Context, userID int64) error
}

func NewCheckoutUseCase(
	cartRepo ports.CartRepository,
	productRepo ports.ProductRepository,
	users ports.UserDirectory,
	ledger *stock.Ledger,
	payments ports.PaymentProvider,
	notifier ports.Notifier,
	clk clock.Clock,
	log *logger.Logger,
	newCartFn func(ctx context.Context, userID int64) error,
) *CheckoutUseCase {
	return &CheckoutUseCase{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		users:       users,
		ledger:      ledger,
		payments:    payments,
		notifier:    notifier,
		clk:         clk,
		log:         log,
		newCartFn:   newCartFn,
	}
}

// Checkout reserves stock for every line, flips the cart into the
// checkout-in-progress state and returns the payment redirect URL.
//
// A payment-session failure after the reservations committed does NOT roll
// them back here; the cart stays in checkout and the expiration sweeper
// reclaims the stock once the grace period passes.
func (uc *CheckoutUseCase) Checkout(ctx context.Context, cartID string) (string, error) {
	monitoring.CheckoutAttemptsTotal.Inc()

	crt, err := uc.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		monitoring.CheckoutFailureTotal.WithLabelValues("cart_not_found").Inc()
		return "", err
	}
	if crt.Purchased {
		monitoring.CheckoutFailureTotal.WithLabelValues("already_purchased").Inc()
		return "", domainErrors.ErrCartPurchased
	}
	if crt.CheckoutInProgress {
		monitoring.CheckoutFailureTotal.WithLabelValues("checkout_active").Inc()
		return "", domainErrors.ErrCheckoutActive
	}

	owner, err := uc.users.FindByID(ctx, crt.UserID)
	if err != nil {
		uc.log.Warn("Cart owner not found", "cart_id", cartID, "user_id", crt.UserID)
		monitoring.CheckoutFailureTotal.WithLabelValues("user_not_found").Inc()
		return "", domainErrors.ErrUserNotFound
	}
	crt.Client = owner.Client

	reserved := make([]reservation, 0, len(crt.Lines))
	for _, line := range crt.Lines {
		if line.Quantity <= 0 {
			continue
		}

		if err := uc.reserveLine(ctx, line.ProductID, line.Quantity); err != nil {
			uc.rollback(ctx, reserved)
			monitoring.CheckoutFailureTotal.WithLabelValues(failureReason(err)).Inc()
			uc.log.Warn("Checkout aborted, reservations rolled back",
				"cart_id", cartID,
				"product_id", line.ProductID,
				"error", err.Error(),
			)
			return "", err
		}
		reserved = append(reserved, reservation{productID: line.ProductID, quantity: line.Quantity})
	}

	if err := crt.BeginCheckout(uc.clk.Now()); err != nil {
		uc.rollback(ctx, reserved)
		return "", err
	}
	if err := uc.cartRepo.Save(ctx, crt); err != nil {
		uc.rollback(ctx, reserved)
		monitoring.CheckoutFailureTotal.WithLabelValues("store_error").Inc()
		return "", fmt.Errorf("persisting checkout state: %w", err)
	}

	redirectURL, err := uc.payments.CreateCheckoutSession(ctx, crt)
	if err != nil {
		// Reservations stay committed; the sweeper reclaims them when the
		// checkout window expires.
		uc.log.Error("Payment session request failed", "cart_id", cartID, "error", err.Error())
		monitoring.CheckoutFailureTotal.WithLabelValues("payment_provider").Inc()
		return "", domainErrors.ErrPaymentProvider
	}

	monitoring.CheckoutSuccessTotal.Inc()
	uc.log.Info("Checkout started",
		"cart_id", cartID,
		"user_id", crt.UserID,
		"lines", len(crt.Lines),
		"total", crt.Total,
	)
	return redirectURL, nil
}

// reserveLine issues the version-guarded reservation, re-reading and
// retrying a bounded number of times when a concurrent writer bumps the
// version first.
func (uc *CheckoutUseCase) reserveLine(ctx context.Context, productID string, quantity int) error {
	var lastErr error
	for attempt := 0; attempt < reserveAttempts; attempt++ {
		p, err := uc.productRepo.FindByID(ctx, productID)
		if err != nil {
			return err
		}

		err = uc.ledger.Reserve(ctx, productID, quantity, p.Version)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domainErrors.ErrVersionConflict) {
			return err
		}

		monitoring.ReservationConflictsTotal.Inc()
		lastErr = err
	}
	return lastErr
}

func (uc *CheckoutUseCase) rollback(ctx context.Context, reserved []reservation) {
	for i := len(reserved) - 1; i >= 0; i-- {
		r := reserved[i]
		if err := uc.ledger.Release(ctx, r.productID, r.quantity); err != nil {
			uc.log.Error("Failed to release reservation during rollback",
				"product_id", r.productID,
				"quantity", r.quantity,
				"error", err.Error(),
			)
		}
	}
}

// CompletePurchase is the payment-success contract: the cart is marked
// purchased, a fresh empty cart is opened for the user, and the confirmation
// notification goes out fire-and-forget. Calling it on an already-purchased
// cart is a no-op.
func (uc *CheckoutUseCase) CompletePurchase(ctx context.Context, cartID string) (*cart.Cart, error) {
	crt, err := uc.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if crt.Purchased {
		return crt, nil
	}

	crt.MarkPurchased()
	if err := uc.cartRepo.Save(ctx, crt); err != nil {
		return nil, err
	}
	monitoring.PurchaseSuccessTotal.Inc()

	if err := uc.newCartFn(ctx, crt.UserID); err != nil {
		uc.log.Error("Failed to create replacement cart", "user_id", crt.UserID, "error", err.Error())
	}

	go func() {
		if err := uc.notifier.SendPurchaseConfirmation(context.Background(), crt); err != nil {
			uc.log.Warn("Purchase confirmation failed", "cart_id", crt.ID, "error", err.Error())
		}
	}()

	uc.log.Info("Purchase completed", "cart_id", crt.ID, "user_id", crt.UserID, "total", crt.Total)
	return crt, nil
}

// RestoreStock compensates an abandoned checkout: stock of every line goes
// back to the ledger and the cart returns to the editable state. Purchased
// carts are never compensated.
func (uc *CheckoutUseCase) RestoreStock(ctx context.Context, cartID string) error {
	crt, err := uc.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return err
	}
	if crt.Purchased {
		return nil
	}

	for _, line := range crt.Lines {
		if line.Quantity <= 0 {
			continue
		}
		if err := uc.ledger.Release(ctx, line.ProductID, line.Quantity); err != nil {
			uc.log.Error("Failed to restore stock",
				"cart_id", cartID,
				"product_id", line.ProductID,
				"error", err.Error(),
			)
		}
	}

	crt.ResetCheckout()
	if err := uc.cartRepo.Save(ctx, crt); err != nil {
		return err
	}

	uc.log.Info("Stock restored", "cart_id", cartID)
	return nil
}

func failureReason(err error) string {
	switch {
	case errors.Is(err, domainErrors.ErrInsufficientStock):
		return "insufficient_stock"
	case errors.Is(err, domainErrors.ErrVersionConflict):
		return "version_conflict"
	case errors.Is(err, domainErrors.ErrProductNotFound):
		return "product_not_found"
	default:
		return "store_error"
	}
}
