package use_cases

import (
	"context"
	"sync"
	"time"

	"github.com/tradezone/marketplace/internal/application/ports"
	"github.com/tradezone/marketplace/internal/domain/cart"
	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/domain/product"
	"github.com/tradezone/marketplace/internal/domain/user"
)

type mockCartRepo struct {
	mu        sync.Mutex
	carts     map[string]*cart.Cart
	saveErr   error
	saveCalls int
	// expiredOverride forces FindExpiredCheckouts to return a fixed
	// candidate list, simulating carts resolved between scan and reload.
	expiredOverride []*cart.Cart
}

func newMockCartRepo(carts ...*cart.Cart) *mockCartRepo {
	r := &mockCartRepo{carts: make(map[string]*cart.Cart)}
	for _, c := range carts {
		r.carts[c.ID] = c
	}
	return r
}

func (r *mockCartRepo) FindByID(_ context.Context, id string) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.carts[id]
	if !ok {
		return nil, domainErrors.ErrCartNotFound
	}
	return c, nil
}

func (r *mockCartRepo) FindActiveByUserID(_ context.Context, userID int64) (*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, c := range r.carts {
		if c.UserID == userID && !c.Purchased {
			return c, nil
		}
	}
	return nil, domainErrors.ErrCartNotFound
}

func (r *mockCartRepo) FindAll(_ context.Context, filter ports.CartFilter, limit, offset int) ([]*cart.Cart, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*cart.Cart, 0)
	for _, c := range r.carts {
		if filter.UserID != nil && c.UserID != *filter.UserID {
			continue
		}
		if filter.Purchased != nil && c.Purchased != *filter.Purchased {
			continue
		}
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *mockCartRepo) FindPurchased(_ context.Context) ([]*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*cart.Cart, 0)
	for _, c := range r.carts {
		if c.Purchased {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *mockCartRepo) FindExpiredCheckouts(_ context.Context, cutoff time.Time) ([]*cart.Cart, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.expiredOverride != nil {
		return r.expiredOverride, nil
	}
	out := make([]*cart.Cart, 0)
	for _, c := range r.carts {
		if c.CheckoutInProgress && !c.Purchased && c.CheckoutStartedAt != nil && c.CheckoutStartedAt.Before(cutoff) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (r *mockCartRepo) Insert(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.carts[c.ID] = c
	return nil
}

func (r *mockCartRepo) Save(_ context.Context, c *cart.Cart) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.saveCalls++
	if r.saveErr != nil {
		return r.saveErr
	}
	r.carts[c.ID] = c
	return nil
}

// mockProductStore backs both the product repository port and the stock
// ledger. conflictDecrements simulates a concurrent writer: that many
// leading DecrementStock calls bump the version and refuse the write.
type mockProductStore struct {
	mu                 sync.Mutex
	products           map[string]*product.Product
	conflictDecrements int
	decrementCalls     int
	incrementCalls     int
}

func newMockProductStore(products ...*product.Product) *mockProductStore {
	s := &mockProductStore{products: make(map[string]*product.Product)}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *mockProductStore) FindByID(_ context.Context, id string) (*product.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	p, ok := s.products[id]
	if !ok {
		return nil, domainErrors.ErrProductNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *mockProductStore) FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	out := make([]*product.Product, 0, len(ids))
	for _, id := range ids {
		p, err := s.FindByID(ctx, id)
		if err != nil {
			continue
		}
		out = append(out, p)
	}
	return out, nil
}

func (s *mockProductStore) Create(_ context.Context, p *product.Product) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
	return nil
}

func (s *mockProductStore) DecrementStock(_ context.Context, id string, quantity int, expectedVersion int64) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.decrementCalls++
	p, ok := s.products[id]
	if !ok {
		return false, nil
	}
	if s.conflictDecrements > 0 {
		s.conflictDecrements--
		p.Version++
		return false, nil
	}
	if p.Version != expectedVersion || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	p.Version++
	return true, nil
}

func (s *mockProductStore) IncrementStock(_ context.Context, id string, quantity int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.incrementCalls++
	p, ok := s.products[id]
	if !ok {
		return domainErrors.ErrProductNotFound
	}
	p.Stock += quantity
	p.Version++
	return nil
}

func (s *mockProductStore) stockOf(id string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

type mockUserDirectory struct {
	users map[int64]*user.User
}

func newMockUserDirectory(users ...*user.User) *mockUserDirectory {
	d := &mockUserDirectory{users: make(map[int64]*user.User)}
	for _, u := range users {
		d.users[u.ID] = u
	}
	return d
}

func (d *mockUserDirectory) FindByID(_ context.Context, id int64) (*user.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, domainErrors.ErrUserNotFound
	}
	return u, nil
}

type mockPaymentProvider struct {
	url   string
	err   error
	calls int
}

func (p *mockPaymentProvider) CreateCheckoutSession(_ context.Context, _ *cart.Cart) (string, error) {
	p.calls++
	if p.err != nil {
		return "", p.err
	}
	return p.url, nil
}

type mockNotifier struct {
	mu    sync.Mutex
	calls int
}

func (n *mockNotifier) SendPurchaseConfirmation(_ context.Context, _ *cart.Cart) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.calls++
	return nil
}

func (n *mockNotifier) callCount() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.calls
}
