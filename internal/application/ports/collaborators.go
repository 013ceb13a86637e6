package ports

import (
	"context"
	"time"

	"github.com/tradezone/marketplace/internal/domain/cart"
	"github.com/tradezone/marketplace/internal/domain/user"
)

type UserDirectory interface {
	FindByID(ctx context.Context, id int64) (*user.User, error)
}

// PaymentProvider creates an external payment session for a cart and returns
// the opaque redirect URL the shopper is sent to.
type PaymentProvider interface {
	CreateCheckoutSession(ctx context.Context, c *cart.Cart) (string, error)
}

// Notifier delivers the purchase confirmation. Callers invoke it
// fire-and-forget; failures are logged, never propagated.
type Notifier interface {
	SendPurchaseConfirmation(ctx context.Context, c *cart.Cart) error
}

type Cache interface {
	GetProductStock(ctx context.Context, productID string) (int, bool, error)
	SetProductStock(ctx context.Context, productID string, stock int, expiration time.Duration) error
	InvalidateProductStock(ctx context.Context, productID string) error

	AcquireLock(ctx context.Context, key string, expiration time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, key string) error
}
