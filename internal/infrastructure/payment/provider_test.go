package payment

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tradezone/marketplace/internal/config"
	"github.com/tradezone/marketplace/internal/domain/cart"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

func testCart(t *testing.T) *cart.Cart {
	t.Helper()
	c, err := cart.NewCart("c-1", 42, cart.Client{Name: "Ada", Email: "ada@example.com"})
	require.NoError(t, err)
	c.AddLine("p-1", 19.99)
	require.NoError(t, c.SetLineQuantity("p-1", 2))
	return c
}

func newTestProvider(gatewayURL string) *Provider {
	return NewProvider(config.PaymentConfig{
		GatewayURL:      gatewayURL,
		APIKey:          "sk_test",
		CallbackBaseURL: "https://shop.example.com",
		Currency:        "eur",
		TimeoutSeconds:  2,
	}, logger.NewWithOutput(io.Discard))
}

func TestCreateCheckoutSession(t *testing.T) {
	var got sessionRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v1/checkout/sessions", r.URL.Path)
		assert.Equal(t, "Bearer sk_test", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(sessionResponse{URL: "https://pay.example.com/s/abc"})
	}))
	defer srv.Close()

	url, err := newTestProvider(srv.URL).CreateCheckoutSession(context.Background(), testCart(t))

	require.NoError(t, err)
	assert.Equal(t, "https://pay.example.com/s/abc", url)
	assert.Equal(t, "payment", got.Mode)
	assert.Equal(t, "eur", got.Currency)
	assert.Equal(t, "ada@example.com", got.CustomerEmail)
	require.Len(t, got.LineItems, 1)
	assert.Equal(t, int64(1999), got.LineItems[0].UnitAmount)
	assert.Equal(t, 2, got.LineItems[0].Quantity)
	assert.Equal(t, "https://shop.example.com/carts/c-1/checkout/success", got.SuccessURL)
	assert.Equal(t, "https://shop.example.com/carts/c-1/checkout/cancel", got.CancelURL)
}

func TestCreateCheckoutSessionGatewayError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).CreateCheckoutSession(context.Background(), testCart(t))

	assert.ErrorContains(t, err, "status 503")
}

func TestCreateCheckoutSessionEmptyURL(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sessionResponse{})
	}))
	defer srv.Close()

	_, err := newTestProvider(srv.URL).CreateCheckoutSession(context.Background(), testCart(t))

	assert.ErrorContains(t, err, "empty session url")
}
