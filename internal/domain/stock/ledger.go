package stock

import (
	"context"
	"errors"

	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/domain/product"
)

// Store is the slice of the product catalog the ledger needs. The postgres
// product repository satisfies it.
type Store interface {
	FindByID(ctx context.Context, id string) (*product.Product, error)
	// DecrementStock subtracts quantity and bumps the version, but only if
	// the stored version equals expectedVersion and enough stock remains.
	// Returns false without side effects otherwise.
	DecrementStock(ctx context.Context, id string, quantity int, expectedVersion int64) (bool, error)
	// IncrementStock unconditionally adds quantity back and bumps the
	// version. Additive restoration needs no version check.
	IncrementStock(ctx context.Context, id string, quantity int) error
}

// Ledger serializes stock mutation per product through version-guarded
// compare-and-swap writes. Callers observing ErrVersionConflict must re-read
// the product and retry or abort.
type Ledger struct {
	store Store
}

func NewLedger(store Store) *Ledger {
	return &Ledger{store: store}
}

func (l *Ledger) Reserve(ctx context.Context, productID string, quantity int, expectedVersion int64) error {
	if quantity <= 0 {
		return domainErrors.ErrInvalidQuantity
	}

	ok, err := l.store.DecrementStock(ctx, productID, quantity, expectedVersion)
	if err != nil {
		return err
	}
	if ok {
		return nil
	}

	// The guarded write matched no row. Re-read to tell a stale version
	// apart from an oversell.
	p, err := l.store.FindByID(ctx, productID)
	if err != nil {
		if errors.Is(err, domainErrors.ErrProductNotFound) {
			return domainErrors.ErrProductNotFound
		}
		return err
	}
	if p.Version != expectedVersion {
		return domainErrors.ErrVersionConflict
	}
	return domainErrors.ErrInsufficientStock
}

func (l *Ledger) Release(ctx context.Context, productID string, quantity int) error {
	if quantity <= 0 {
		return domainErrors.ErrInvalidQuantity
	}
	return l.store.IncrementStock(ctx, productID, quantity)
}
