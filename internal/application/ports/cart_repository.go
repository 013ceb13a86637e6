package ports

import (
	"context"
	"time"

	"github.com/tradezone/marketplace/internal/domain/cart"
)

// CartFilter narrows FindAll. Nil fields are ignored.
type CartFilter struct {
	UserID    *int64
	Purchased *bool
}

type CartRepository interface {
	FindByID(ctx context.Context, id string) (*cart.Cart, error)
	// FindActiveByUserID returns the user's current editable (not purchased)
	// cart.
	FindActiveByUserID(ctx context.Context, userID int64) (*cart.Cart, error)
	FindAll(ctx context.Context, filter CartFilter, limit, offset int) ([]*cart.Cart, int64, error)
	FindPurchased(ctx context.Context) ([]*cart.Cart, error)
	// FindExpiredCheckouts returns carts stuck in checkout since before the
	// cutoff and not yet purchased.
	FindExpiredCheckouts(ctx context.Context, cutoff time.Time) ([]*cart.Cart, error)
	Insert(ctx context.Context, c *cart.Cart) error
	Save(ctx context.Context, c *cart.Cart) error
}
