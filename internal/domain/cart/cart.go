package cart

import (
	"errors"
	"time"

	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
)

// Client is the shipping/contact snapshot frozen onto the cart at checkout.
type Client struct {
	Name    string  `bson:"name" json:"name"`
	Email   string  `bson:"email" json:"email"`
	Phone   string  `bson:"phone" json:"phone"`
	Address Address `bson:"address" json:"address"`
}

type Address struct {
	Street     string `bson:"street" json:"street"`
	City       string `bson:"city" json:"city"`
	PostalCode string `bson:"postal_code" json:"postal_code"`
	Country    string `bson:"country" json:"country"`
}

// Cart is the mutable reservation document. TotalItems and Total are always
// derived from Lines; every mutation goes through a method that recalculates
// them from the line collection alone.
type Cart struct {
	ID                 string     `bson:"_id" json:"id"`
	UserID             int64      `bson:"user_id" json:"user_id"`
	Client             Client     `bson:"client" json:"client"`
	Lines              []Line     `bson:"lines" json:"lines"`
	Purchased          bool       `bson:"purchased" json:"purchased"`
	CheckoutInProgress bool       `bson:"checkout_in_progress" json:"checkout_in_progress"`
	CheckoutStartedAt  *time.Time `bson:"checkout_started_at,omitempty" json:"checkout_started_at,omitempty"`
	TotalItems         int        `bson:"total_items" json:"total_items"`
	Total              float64    `bson:"total" json:"total"`
	CreatedAt          time.Time  `bson:"created_at" json:"created_at"`
	UpdatedAt          time.Time  `bson:"updated_at" json:"updated_at"`
}

func NewCart(id string, userID int64, client Client) (*Cart, error) {
	if id == "" {
		return nil, errors.New("cart id cannot be empty")
	}
	if userID <= 0 {
		return nil, errors.New("user id must be positive")
	}

	now := time.Now().UTC()
	return &Cart{
		ID:        id,
		UserID:    userID,
		Client:    client,
		Lines:     []Line{},
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (c *Cart) recalculate() {
	c.TotalItems = len(c.Lines)
	total := 0.0
	for _, line := range c.Lines {
		total += line.Total
	}
	c.Total = total
	c.UpdatedAt = time.Now().UTC()
}

// FindLine returns a pointer into Lines so callers can mutate in place.
func (c *Cart) FindLine(productID string) *Line {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			return &c.Lines[i]
		}
	}
	return nil
}

// AddLine appends a fresh line for the product, or bumps the quantity of an
// existing one.
func (c *Cart) AddLine(productID string, unitPrice float64) {
	if line := c.FindLine(productID); line != nil {
		line.SetQuantity(line.Quantity + 1)
	} else {
		c.Lines = append(c.Lines, NewLine(productID, 1, unitPrice))
	}
	c.recalculate()
}

// RemoveLine deletes the product's line. Removing an absent line is a no-op.
func (c *Cart) RemoveLine(productID string) {
	for i := range c.Lines {
		if c.Lines[i].ProductID == productID {
			c.Lines = append(c.Lines[:i], c.Lines[i+1:]...)
			break
		}
	}
	c.recalculate()
}

func (c *Cart) SetLineQuantity(productID string, quantity int) error {
	line := c.FindLine(productID)
	if line == nil {
		return domainErrors.ErrLineNotFound
	}
	line.SetQuantity(quantity)
	c.recalculate()
	return nil
}

func (c *Cart) SetLineStatus(productID string, status LineStatus) error {
	line := c.FindLine(productID)
	if line == nil {
		return domainErrors.ErrLineNotFound
	}
	if !line.Status.CanTransitionTo(status) {
		return domainErrors.ErrInvalidTransition
	}
	line.Status = status
	c.UpdatedAt = time.Now().UTC()
	return nil
}

func (c *Cart) Empty() {
	c.Lines = []Line{}
	c.recalculate()
}

// IsEditable reports whether the cart can still be mutated by the shopper.
func (c *Cart) IsEditable() bool {
	return !c.Purchased && !c.CheckoutInProgress
}

// BeginCheckout flips the cart into the checkout-in-progress state. Fails on
// a purchased cart or one already mid-checkout.
func (c *Cart) BeginCheckout(now time.Time) error {
	if c.Purchased {
		return domainErrors.ErrCartPurchased
	}
	if c.CheckoutInProgress {
		return domainErrors.ErrCheckoutActive
	}
	c.CheckoutInProgress = true
	startedAt := now.UTC()
	c.CheckoutStartedAt = &startedAt
	c.UpdatedAt = startedAt
	return nil
}

// MarkPurchased completes the purchase: every non-cancelled line moves to
// Prepared and the checkout window closes.
func (c *Cart) MarkPurchased() {
	for i := range c.Lines {
		if c.Lines[i].Status == StatusInCart {
			c.Lines[i].Status = StatusPrepared
		}
	}
	c.Purchased = true
	c.CheckoutInProgress = false
	c.CheckoutStartedAt = nil
	c.UpdatedAt = time.Now().UTC()
}

// ResetCheckout returns the cart to the editable state after an abandoned or
// failed checkout. Lines are kept.
func (c *Cart) ResetCheckout() {
	c.CheckoutInProgress = false
	c.CheckoutStartedAt = nil
	c.UpdatedAt = time.Now().UTC()
}

// CheckoutExpired reports whether the checkout window has been open longer
// than the grace period.
func (c *Cart) CheckoutExpired(now time.Time, grace time.Duration) bool {
	if !c.CheckoutInProgress || c.CheckoutStartedAt == nil {
		return false
	}
	return now.Sub(*c.CheckoutStartedAt) > grace
}
