package handlers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradezone/marketplace/internal/application/commands"
	"github.com/tradezone/marketplace/internal/application/ports"
	"github.com/tradezone/marketplace/internal/domain/cart"
	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/domain/product"
	"github.com/tradezone/marketplace/internal/domain/user"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

type memCartRepo struct {
	carts map[string]*cart.Cart
}

func (r *memCartRepo) FindByID(_ context.Context, id string) (*cart.Cart, error) {
	c, ok := r.carts[id]
	if !ok {
		return nil, domainErrors.ErrCartNotFound
	}
	return c, nil
}

func (r *memCartRepo) FindActiveByUserID(_ context.Context, userID int64) (*cart.Cart, error) {
	for _, c := range r.carts {
		if c.UserID == userID && !c.Purchased {
			return c, nil
		}
	}
	return nil, domainErrors.ErrCartNotFound
}

func (r *memCartRepo) FindAll(_ context.Context, _ ports.CartFilter, _, _ int) ([]*cart.Cart, int64, error) {
	out := make([]*cart.Cart, 0, len(r.carts))
	for _, c := range r.carts {
		out = append(out, c)
	}
	return out, int64(len(out)), nil
}

func (r *memCartRepo) FindPurchased(context.Context) ([]*cart.Cart, error) {
	return nil, nil
}

func (r *memCartRepo) FindExpiredCheckouts(context.Context, time.Time) ([]*cart.Cart, error) {
	return nil, nil
}

func (r *memCartRepo) Insert(_ context.Context, c *cart.Cart) error {
	r.carts[c.ID] = c
	return nil
}

func (r *memCartRepo) Save(_ context.Context, c *cart.Cart) error {
	r.carts[c.ID] = c
	return nil
}

type memProductRepo struct {
	products map[string]*product.Product
}

func (r *memProductRepo) FindByID(_ context.Context, id string) (*product.Product, error) {
	p, ok := r.products[id]
	if !ok {
		return nil, domainErrors.ErrProductNotFound
	}
	return p, nil
}

func (r *memProductRepo) FindByIDs(context.Context, []string) ([]*product.Product, error) {
	return nil, nil
}

func (r *memProductRepo) Create(_ context.Context, p *product.Product) error {
	r.products[p.ID] = p
	return nil
}

func (r *memProductRepo) DecrementStock(context.Context, string, int, int64) (bool, error) {
	return false, nil
}

func (r *memProductRepo) IncrementStock(context.Context, string, int) error {
	return nil
}

type memUsers struct{}

func (memUsers) FindByID(_ context.Context, id int64) (*user.User, error) {
	if id != 42 {
		return nil, domainErrors.ErrUserNotFound
	}
	return &user.User{ID: 42, Username: "ada", Role: user.RoleUser, Client: cart.Client{Name: "Ada"}}, nil
}

type noopCache struct{}

func (noopCache) GetProductStock(context.Context, string) (int, bool, error) {
	return 0, false, nil
}

func (noopCache) SetProductStock(context.Context, string, int, time.Duration) error {
	return nil
}

func (noopCache) InvalidateProductStock(context.Context, string) error {
	return nil
}

func (noopCache) AcquireLock(context.Context, string, time.Duration) (bool, error) {
	return true, nil
}

func (noopCache) ReleaseLock(context.Context, string) error {
	return nil
}

func newCartTestMux(t *testing.T, carts ...*cart.Cart) (*http.ServeMux, *memCartRepo) {
	t.Helper()
	repo := &memCartRepo{carts: make(map[string]*cart.Cart)}
	for _, c := range carts {
		repo.carts[c.ID] = c
	}
	prods := &memProductRepo{products: map[string]*product.Product{
		"p-1": {ID: "p-1", Name: "widget", Price: 19.99, Stock: 5, ManagerID: 1},
	}}
	cmds := commands.NewCartCommands(repo, prods, memUsers{}, noopCache{}, logger.NewWithOutput(io.Discard))
	h := NewCartHandler(cmds, logger.NewWithOutput(io.Discard))

	mux := http.NewServeMux()
	mux.HandleFunc("POST /carts", h.HandleCreateCart)
	mux.HandleFunc("GET /carts/{id}", h.HandleGetCart)
	mux.HandleFunc("POST /carts/{id}/products/{productId}", h.HandleAddProduct)
	mux.HandleFunc("PUT /carts/{id}/products/{productId}/quantity", h.HandleUpdateQuantity)
	mux.HandleFunc("DELETE /carts/{id}/lines", h.HandleEmptyCart)
	return mux, repo
}

func editableCart(t *testing.T, id string) *cart.Cart {
	t.Helper()
	c, err := cart.NewCart(id, 42, cart.Client{Name: "Ada"})
	require.NoError(t, err)
	return c
}

func TestHandleCreateCart(t *testing.T) {
	mux, repo := newCartTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(`{"user_id": 42}`)))

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Len(t, repo.carts, 1)
}

func TestHandleCreateCartValidation(t *testing.T) {
	mux, _ := newCartTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(`{"user_id": 0}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts", strings.NewReader(`not json`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestHandleGetCartNotFound(t *testing.T) {
	mux, _ := newCartTestMux(t)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/carts/ghost", nil))

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHandleAddProduct(t *testing.T) {
	mux, repo := newCartTestMux(t, editableCart(t, "c-1"))

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts/c-1/products/p-1", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	line := repo.carts["c-1"].FindLine("p-1")
	require.NotNil(t, line)
	assert.Equal(t, 19.99, line.UnitPrice)
}

func TestHandleAddProductToPurchasedCart(t *testing.T) {
	done := editableCart(t, "c-1")
	done.MarkPurchased()
	mux, _ := newCartTestMux(t, done)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/carts/c-1/products/p-1", nil))

	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestHandleUpdateQuantityInsufficientStock(t *testing.T) {
	crt := editableCart(t, "c-1")
	crt.AddLine("p-1", 19.99)
	mux, _ := newCartTestMux(t, crt)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodPut, "/carts/c-1/products/p-1/quantity", strings.NewReader(`{"quantity": 99}`)))

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "Insufficient stock")
}

func TestHandleEmptyCart(t *testing.T) {
	crt := editableCart(t, "c-1")
	crt.AddLine("p-1", 19.99)
	mux, repo := newCartTestMux(t, crt)

	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodDelete, "/carts/c-1/lines", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, repo.carts["c-1"].Lines)
}
