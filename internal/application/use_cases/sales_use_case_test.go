package use_cases

import (
	"context"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradezone/marketplace/internal/domain/cart"
	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/domain/product"
	"github.com/tradezone/marketplace/internal/domain/stock"
	"github.com/tradezone/marketplace/internal/domain/user"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

const (
	managerAlice int64 = 100
	managerBob   int64 = 200
)

func salesFixture(t *testing.T, carts *mockCartRepo, store *mockProductStore) *SalesUseCase {
	t.Helper()
	users := newMockUserDirectory(
		&user.User{ID: managerAlice, Username: "alice", Role: user.RoleManager},
		&user.User{ID: managerBob, Username: "bob", Role: user.RoleManager},
	)
	return NewSalesUseCase(carts, store, users, stock.NewLedger(store), testLogger())
}

func testLogger() *logger.Logger {
	return logger.NewWithOutput(io.Discard)
}

func managedProduct(id string, stock int, managerID int64, price float64) *product.Product {
	return &product.Product{ID: id, Name: "product " + id, Price: price, Stock: stock, ManagerID: managerID}
}

func purchasedCart(t *testing.T, id string, userID int64, store *mockProductStore, lines map[string]int) *cart.Cart {
	t.Helper()
	crt := cartWith(t, id, userID, lines, store)
	crt.MarkPurchased()
	return crt
}

func TestCancelSaleRestoresStockOnce(t *testing.T) {
	store := newMockProductStore(managedProduct("p-1", 3, managerAlice, 10.0))
	crt := purchasedCart(t, "c-1", 42, store, map[string]int{"p-1": 2})
	carts := newMockCartRepo(crt)
	uc := salesFixture(t, carts, store)

	require.NoError(t, uc.CancelSale(context.Background(), "c-1", "p-1", managerAlice, false))

	assert.Equal(t, 5, store.stockOf("p-1"))
	saved, err := carts.FindByID(context.Background(), "c-1")
	require.NoError(t, err)
	assert.True(t, saved.FindLine("p-1").IsCancelled())

	// Cancelling again is a no-op; stock is not restored twice.
	require.NoError(t, uc.CancelSale(context.Background(), "c-1", "p-1", managerAlice, false))
	assert.Equal(t, 5, store.stockOf("p-1"))
	assert.Equal(t, 1, store.incrementCalls)
}

func TestCancelSaleZeroQuantityLine(t *testing.T) {
	store := newMockProductStore(managedProduct("p-1", 3, managerAlice, 10.0))
	crt := purchasedCart(t, "c-1", 42, store, map[string]int{"p-1": 1})
	crt.FindLine("p-1").Quantity = 0
	carts := newMockCartRepo(crt)
	uc := salesFixture(t, carts, store)

	// Nothing to release, but the line still cancels cleanly.
	require.NoError(t, uc.CancelSale(context.Background(), "c-1", "p-1", managerAlice, false))

	assert.Equal(t, 0, store.incrementCalls)
	saved, err := carts.FindByID(context.Background(), "c-1")
	require.NoError(t, err)
	assert.True(t, saved.FindLine("p-1").IsCancelled())
}

func TestCancelSaleAuthorization(t *testing.T) {
	store := newMockProductStore(managedProduct("p-1", 3, managerAlice, 10.0))
	crt := purchasedCart(t, "c-1", 42, store, map[string]int{"p-1": 2})
	uc := salesFixture(t, newMockCartRepo(crt), store)

	err := uc.CancelSale(context.Background(), "c-1", "p-1", managerBob, false)
	assert.ErrorIs(t, err, domainErrors.ErrUnauthorized)
	assert.Equal(t, 3, store.stockOf("p-1"))

	// An admin may cancel any line.
	require.NoError(t, uc.CancelSale(context.Background(), "c-1", "p-1", managerBob, true))
	assert.Equal(t, 5, store.stockOf("p-1"))
}

func TestCancelSaleUnknownTargets(t *testing.T) {
	store := newMockProductStore(managedProduct("p-1", 3, managerAlice, 10.0))
	crt := purchasedCart(t, "c-1", 42, store, map[string]int{"p-1": 1})
	uc := salesFixture(t, newMockCartRepo(crt), store)

	assert.ErrorIs(t, uc.CancelSale(context.Background(), "ghost", "p-1", managerAlice, false), domainErrors.ErrSaleNotFound)
	assert.ErrorIs(t, uc.CancelSale(context.Background(), "c-1", "ghost", managerAlice, false), domainErrors.ErrLineNotFound)
}

func TestListSalesScopesToManager(t *testing.T) {
	store := newMockProductStore(
		managedProduct("p-1", 3, managerAlice, 10.0),
		managedProduct("p-2", 3, managerBob, 20.0),
	)
	crt := purchasedCart(t, "c-1", 42, store, map[string]int{"p-1": 1, "p-2": 1})
	uc := salesFixture(t, newMockCartRepo(crt), store)

	scope := managerAlice
	page, err := uc.ListSales(context.Background(), &scope, false, 0, 20)

	require.NoError(t, err)
	require.Len(t, page.Lines, 1)
	assert.Equal(t, "p-1", page.Lines[0].ProductID)
	assert.Equal(t, "alice", page.Lines[0].ManagerName)
	assert.Equal(t, 1, page.TotalCount)
}

func TestListSalesAdminSeesEverything(t *testing.T) {
	store := newMockProductStore(
		managedProduct("p-1", 3, managerAlice, 10.0),
		managedProduct("p-2", 3, managerBob, 20.0),
	)
	crt := purchasedCart(t, "c-1", 42, store, map[string]int{"p-1": 1, "p-2": 1})
	uc := salesFixture(t, newMockCartRepo(crt), store)

	page, err := uc.ListSales(context.Background(), nil, true, 0, 20)

	require.NoError(t, err)
	assert.Len(t, page.Lines, 2)
}

func TestListSalesSkipsUnresolvableProducts(t *testing.T) {
	store := newMockProductStore(managedProduct("p-1", 3, managerAlice, 10.0))
	crt := purchasedCart(t, "c-1", 42, store, map[string]int{"p-1": 1})
	crt.Lines = append(crt.Lines, cart.NewLine("deleted-product", 1, 5.0))
	uc := salesFixture(t, newMockCartRepo(crt), store)

	page, err := uc.ListSales(context.Background(), nil, true, 0, 20)

	require.NoError(t, err)
	assert.Len(t, page.Lines, 1)
}

func TestListSalesIgnoresUnpurchasedCarts(t *testing.T) {
	store := newMockProductStore(managedProduct("p-1", 3, managerAlice, 10.0))
	open := cartWith(t, "c-open", 42, map[string]int{"p-1": 1}, store)
	uc := salesFixture(t, newMockCartRepo(open), store)

	page, err := uc.ListSales(context.Background(), nil, true, 0, 20)

	require.NoError(t, err)
	assert.Empty(t, page.Lines)
}

func TestListSalesPagination(t *testing.T) {
	store := newMockProductStore(managedProduct("p-1", 100, managerAlice, 10.0))
	carts := newMockCartRepo()
	for _, id := range []string{"c-1", "c-2", "c-3"} {
		require.NoError(t, carts.Insert(context.Background(), purchasedCart(t, id, 42, store, map[string]int{"p-1": 1})))
	}
	uc := salesFixture(t, carts, store)

	page, err := uc.ListSales(context.Background(), nil, true, 1, 2)

	require.NoError(t, err)
	assert.Len(t, page.Lines, 1)
	assert.Equal(t, 3, page.TotalCount)
	assert.Equal(t, 1, page.Page)
	assert.Equal(t, 2, page.PageSize)
}

func TestGetSaleLine(t *testing.T) {
	store := newMockProductStore(managedProduct("p-1", 3, managerAlice, 10.0))
	crt := purchasedCart(t, "c-1", 42, store, map[string]int{"p-1": 2})
	uc := salesFixture(t, newMockCartRepo(crt), store)

	line, err := uc.GetSaleLine(context.Background(), "c-1", "p-1", managerAlice, false)

	require.NoError(t, err)
	assert.Equal(t, "c-1", line.CartID)
	assert.Equal(t, 2, line.Quantity)
	assert.Equal(t, 20.0, line.Total)
	assert.Equal(t, "alice", line.ManagerName)

	_, err = uc.GetSaleLine(context.Background(), "c-1", "p-1", managerBob, false)
	assert.ErrorIs(t, err, domainErrors.ErrUnauthorized)
}

func TestTotalEarnings(t *testing.T) {
	store := newMockProductStore(
		managedProduct("p-1", 10, managerAlice, 10.0),
		managedProduct("p-2", 10, managerBob, 20.0),
	)
	crt := purchasedCart(t, "c-1", 42, store, map[string]int{"p-1": 2, "p-2": 1})
	uc := salesFixture(t, newMockCartRepo(crt), store)

	scope := managerAlice
	earned, err := uc.TotalEarnings(context.Background(), &scope, false)
	require.NoError(t, err)
	assert.Equal(t, 20.0, earned)

	all, err := uc.TotalEarnings(context.Background(), nil, true)
	require.NoError(t, err)
	assert.Equal(t, 40.0, all)

	// No manager filter from a non-admin means no visible scope.
	none, err := uc.TotalEarnings(context.Background(), nil, false)
	require.NoError(t, err)
	assert.Zero(t, none)
}
