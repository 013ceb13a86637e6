package commands

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/tradezone/marketplace/internal/application/ports"
	"github.com/tradezone/marketplace/internal/domain/cart"
	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

const stockCacheTTL = 30 * time.Second

// CartCommands covers the shopper-facing cart mutations: add/remove lines,
// quantity updates and the administrative line status write. Every mutation
// persists the cart with totals recomputed from its line collection.
type CartCommands struct {
	cartRepo    ports.CartRepository
	productRepo ports.ProductRepository
	users       ports.UserDirectory
	cache       ports.Cache
	log         *logger.Logger
}

func NewCartCommands(
	cartRepo ports.CartRepository,
	productRepo ports.ProductRepository,
	users ports.UserDirectory,
	cache ports.Cache,
	log *logger.Logger,
) *CartCommands {
	return &CartCommands{
		cartRepo:    cartRepo,
		productRepo: productRepo,
		users:       users,
		cache:       cache,
		log:         log,
	}
}

// CreateNewCart opens a fresh empty cart for the user, seeded with their
// contact snapshot.
func (c *CartCommands) CreateNewCart(ctx context.Context, userID int64) (*cart.Cart, error) {
	u, err := c.users.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	newCart, err := cart.NewCart(uuid.NewString(), userID, u.Client)
	if err != nil {
		return nil, err
	}

	if err := c.cartRepo.Insert(ctx, newCart); err != nil {
		return nil, err
	}

	c.log.Info("Created new cart", "cart_id", newCart.ID, "user_id", userID)
	return newCart, nil
}

func (c *CartCommands) GetCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	return c.cartRepo.FindByID(ctx, cartID)
}

func (c *CartCommands) GetCartByUser(ctx context.Context, userID int64) (*cart.Cart, error) {
	return c.cartRepo.FindActiveByUserID(ctx, userID)
}

func (c *CartCommands) FindAll(ctx context.Context, filter ports.CartFilter, limit, offset int) ([]*cart.Cart, int64, error) {
	return c.cartRepo.FindAll(ctx, filter, limit, offset)
}

// AddProduct puts one unit of the product into the cart, snapshotting the
// current price. Adding a product already in the cart bumps its quantity.
func (c *CartCommands) AddProduct(ctx context.Context, cartID, productID string) (*cart.Cart, error) {
	p, err := c.productRepo.FindByID(ctx, productID)
	if err != nil {
		c.log.Warn("Product not found", "product_id", productID)
		return nil, err
	}

	crt, err := c.editableCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	crt.AddLine(productID, p.Price)

	if err := c.cartRepo.Save(ctx, crt); err != nil {
		return nil, err
	}

	c.log.Info("Added product to cart", "cart_id", cartID, "product_id", productID)
	return crt, nil
}

// RemoveProduct deletes the product's line. Removing a product that is not
// in the cart is a no-op.
func (c *CartCommands) RemoveProduct(ctx context.Context, cartID, productID string) (*cart.Cart, error) {
	crt, err := c.editableCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	crt.RemoveLine(productID)

	if err := c.cartRepo.Save(ctx, crt); err != nil {
		return nil, err
	}

	c.log.Info("Removed product from cart", "cart_id", cartID, "product_id", productID)
	return crt, nil
}

// UpdateQuantity writes the line quantity directly, without a stock guard.
// Administrative correction path.
func (c *CartCommands) UpdateQuantity(ctx context.Context, cartID, productID string, quantity int) (*cart.Cart, error) {
	crt, err := c.editableCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	if err := crt.SetLineQuantity(productID, quantity); err != nil {
		return nil, err
	}

	if err := c.cartRepo.Save(ctx, crt); err != nil {
		return nil, err
	}
	return crt, nil
}

// UpdateQuantityValidated is the shopper path: rejects quantities below 1 and
// checks the product's currently advertised stock. This is a UX guard only;
// the authoritative check is the version-guarded reservation at checkout.
func (c *CartCommands) UpdateQuantityValidated(ctx context.Context, cartID, productID string, quantity int) (*cart.Cart, error) {
	if quantity < 1 {
		return nil, domainErrors.ErrInvalidQuantity
	}

	crt, err := c.editableCart(ctx, cartID)
	if err != nil {
		return nil, err
	}

	available, err := c.advertisedStock(ctx, productID)
	if err != nil {
		return nil, err
	}
	if available < quantity {
		c.log.Warn("Advertised stock below requested quantity",
			"product_id", productID,
			"available", available,
			"requested", quantity,
		)
		return nil, domainErrors.ErrInsufficientStock
	}

	if err := crt.SetLineQuantity(productID, quantity); err != nil {
		return nil, err
	}

	if err := c.cartRepo.Save(ctx, crt); err != nil {
		return nil, err
	}
	return crt, nil
}

// UpdateLineStatus performs a direct single-line status write. It never
// cascades stock effects; cancellation with stock restoration goes through
// the sales use case instead. Purchased carts are valid targets, this is how
// sold lines move through fulfillment, but the checkout window is off limits.
func (c *CartCommands) UpdateLineStatus(ctx context.Context, cartID, productID string, status cart.LineStatus) (*cart.Cart, error) {
	crt, err := c.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if crt.CheckoutInProgress {
		return nil, domainErrors.ErrCheckoutActive
	}

	if err := crt.SetLineStatus(productID, status); err != nil {
		return nil, err
	}

	if err := c.cartRepo.Save(ctx, crt); err != nil {
		return nil, err
	}

	c.log.Info("Updated line status", "cart_id", cartID, "product_id", productID, "status", string(status))
	return crt, nil
}

// EmptyCart drops every line but keeps the cart document.
func (c *CartCommands) EmptyCart(ctx context.Context, cartID string) error {
	crt, err := c.editableCart(ctx, cartID)
	if err != nil {
		return err
	}

	crt.Empty()
	return c.cartRepo.Save(ctx, crt)
}

// editableCart loads the cart and rejects mutations while it is purchased or
// holds an active checkout reservation. Any write during the checkout window
// would desync the reserved quantities from the recorded lines.
func (c *CartCommands) editableCart(ctx context.Context, cartID string) (*cart.Cart, error) {
	crt, err := c.cartRepo.FindByID(ctx, cartID)
	if err != nil {
		return nil, err
	}
	if !crt.IsEditable() {
		if crt.Purchased {
			return nil, domainErrors.ErrCartPurchased
		}
		return nil, domainErrors.ErrCheckoutActive
	}
	return crt, nil
}

// advertisedStock reads the product's stock through the short-lived cache,
// falling back to the catalog on a miss or cache error.
func (c *CartCommands) advertisedStock(ctx context.Context, productID string) (int, error) {
	if stock, ok, err := c.cache.GetProductStock(ctx, productID); err == nil && ok {
		return stock, nil
	} else if err != nil {
		c.log.Warn("Stock cache read failed", "product_id", productID, "error", err.Error())
	}

	p, err := c.productRepo.FindByID(ctx, productID)
	if err != nil {
		return 0, err
	}

	if err := c.cache.SetProductStock(ctx, productID, p.Stock, stockCacheTTL); err != nil {
		c.log.Warn("Stock cache write failed", "product_id", productID, "error", err.Error())
	}
	return p.Stock, nil
}
