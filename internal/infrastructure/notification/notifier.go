package notification

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/tradezone/marketplace/internal/config"
	"github.com/tradezone/marketplace/internal/domain/cart"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

// Notifier posts purchase confirmations to the notification webhook. When no
// webhook is configured it only logs, which keeps local setups working.
type Notifier struct {
	webhookURL string
	client     *http.Client
	log        *logger.Logger
}

func NewNotifier(cfg config.NotificationConfig, log *logger.Logger) *Notifier {
	return &Notifier{
		webhookURL: cfg.WebhookURL,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: log,
	}
}

type purchaseConfirmation struct {
	CartID     string  `json:"cart_id"`
	UserID     int64   `json:"user_id"`
	Email      string  `json:"email"`
	TotalItems int     `json:"total_items"`
	Total      float64 `json:"total"`
}

func (n *Notifier) SendPurchaseConfirmation(ctx context.Context, c *cart.Cart) error {
	if n.webhookURL == "" {
		n.log.Info("Purchase confirmation (no webhook configured)",
			"cart_id", c.ID,
			"email", c.Client.Email,
			"total", c.Total,
		)
		return nil
	}

	payload := purchaseConfirmation{
		CartID:     c.ID,
		UserID:     c.UserID,
		Email:      c.Client.Email,
		TotalItems: c.TotalItems,
		Total:      c.Total,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.webhookURL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("notification webhook request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return fmt.Errorf("notification webhook returned status %d", resp.StatusCode)
	}

	n.log.Info("Purchase confirmation sent", "cart_id", c.ID, "email", c.Client.Email)
	return nil
}
