package notification

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

func purchased(t *testing.T) *cart.Cart {
	t.Helper()
	c, err := cart.NewCart("c-1", 42, cart.Client{Email: "ada@example.com"})
	require.NoError(t, err)
	c.AddLine("p-1", 10.0)
	c.MarkPurchased()
	return c
}

func TestSendPurchaseConfirmation(t *testing.T) {
	var got purchaseConfirmation
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewNotifier(config.NotificationConfig{WebhookURL: srv.URL, TimeoutSeconds: 2}, logger.NewWithOutput(io.Discard))

	require.NoError(t, n.SendPurchaseConfirmation(context.Background(), purchased(t)))
	assert.Equal(t, "c-1", got.CartID)
	assert.Equal(t, int64(42), got.UserID)
	assert.Equal(t, "ada@example.com", got.Email)
	assert.Equal(t, 10.0, got.Total)
}

func TestSendPurchaseConfirmationWebhookFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	n := NewNotifier(config.NotificationConfig{WebhookURL: srv.URL, TimeoutSeconds: 2}, logger.NewWithOutput(io.Discard))

	err := n.SendPurchaseConfirmation(context.Background(), purchased(t))
	assert.ErrorContains(t, err, "status 502")
}

func TestSendPurchaseConfirmationWithoutWebhook(t *testing.T) {
	n := NewNotifier(config.NotificationConfig{}, logger.NewWithOutput(io.Discard))

	assert.NoError(t, n.SendPurchaseConfirmation(context.Background(), purchased(t)))
}
