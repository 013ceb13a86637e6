package stock

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/domain/product"
)

type fakeStore struct {
	products map[string]*product.Product
	findErr  error
}

func newFakeStore(products ...*product.Product) *fakeStore {
	s := &fakeStore{products: make(map[string]*product.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *fakeStore) FindByID(_ context.Context, id string) (*product.Product, error) {
	if s.findErr != nil {
		return nil, s.findErr
	}
	p, ok := s.products[id]
	if !ok {
		return nil, domainErrors.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *fakeStore) DecrementStock(_ context.Context, id string, quantity int, expectedVersion int64) (bool, error) {
	p, ok := s.products[id]
	if !ok {
		return false, nil
	}
	if p.Version != expectedVersion || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	p.Version++
	return true, nil
}

func (s *fakeStore) IncrementStock(_ context.Context, id string, quantity int) error {
	p, ok := s.products[id]
	if !ok {
		return domainErrors.ErrProductNotFound
	}
	p.Stock += quantity
	p.Version++
	return nil
}

func testProduct(id string, stock int, version int64) *product.Product {
	return &product.Product{ID: id, Name: id, Price: 9.99, Stock: stock, Version: version, ManagerID: 1}
}

func TestReserveSucceeds(t *testing.T) {
	store := newFakeStore(testProduct("p-1", 10, 3))
	ledger := NewLedger(store)

	require.NoError(t, ledger.Reserve(context.Background(), "p-1", 4, 3))

	assert.Equal(t, 6, store.products["p-1"].Stock)
	assert.Equal(t, int64(4), store.products["p-1"].Version)
}

func TestReserveRejectsNonPositiveQuantity(t *testing.T) {
	ledger := NewLedger(newFakeStore(testProduct("p-1", 10, 0)))

	assert.ErrorIs(t, ledger.Reserve(context.Background(), "p-1", 0, 0), domainErrors.ErrInvalidQuantity)
	assert.ErrorIs(t, ledger.Reserve(context.Background(), "p-1", -2, 0), domainErrors.ErrInvalidQuantity)
}

func TestReserveInsufficientStock(t *testing.T) {
	store := newFakeStore(testProduct("p-1", 3, 5))
	ledger := NewLedger(store)

	err := ledger.Reserve(context.Background(), "p-1", 4, 5)

	assert.ErrorIs(t, err, domainErrors.ErrInsufficientStock)
	assert.Equal(t, 3, store.products["p-1"].Stock)
}

func TestReserveStaleVersion(t *testing.T) {
	store := newFakeStore(testProduct("p-1", 10, 7))
	ledger := NewLedger(store)

	err := ledger.Reserve(context.Background(), "p-1", 2, 6)

	assert.ErrorIs(t, err, domainErrors.ErrVersionConflict)
	assert.Equal(t, 10, store.products["p-1"].Stock)
}

func TestReserveUnknownProduct(t *testing.T) {
	ledger := NewLedger(newFakeStore())

	err := ledger.Reserve(context.Background(), "ghost", 1, 0)

	assert.ErrorIs(t, err, domainErrors.ErrProductNotFound)
}

func TestReserveSurfacesStoreError(t *testing.T) {
	store := newFakeStore(testProduct("p-1", 10, 2))
	store.findErr = errors.New("connection reset")
	ledger := NewLedger(store)

	// Guarded write misses (stale version), re-read fails.
	err := ledger.Reserve(context.Background(), "p-1", 1, 1)
	assert.EqualError(t, err, "connection reset")
}

func TestRelease(t *testing.T) {
	store := newFakeStore(testProduct("p-1", 2, 1))
	ledger := NewLedger(store)

	require.NoError(t, ledger.Release(context.Background(), "p-1", 3))

	assert.Equal(t, 5, store.products["p-1"].Stock)
	assert.Equal(t, int64(2), store.products["p-1"].Version)

	assert.ErrorIs(t, ledger.Release(context.Background(), "p-1", 0), domainErrors.ErrInvalidQuantity)
}
