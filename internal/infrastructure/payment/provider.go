package payment

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"time"

	"github.com/tradezone/marketplace/internal/config"
	"github.com/tradezone/marketplace/internal/domain/cart"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

// Provider talks to the external payment-session gateway. The core only
// needs the opaque redirect URL back; everything after the redirect is the
// gateway's problem, reconciled through the success/cancel callbacks.
type Provider struct {
	gatewayURL  string
	apiKey      string
	callbackURL string
	currency    string
	client      *http.Client
	log         *logger.Logger
}

func NewProvider(cfg config.PaymentConfig, log *logger.Logger) *Provider {
	return &Provider{
		gatewayURL:  cfg.GatewayURL,
		apiKey:      cfg.APIKey,
		callbackURL: cfg.CallbackBaseURL,
		currency:    cfg.Currency,
		client: &http.Client{
			Timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
		},
		log: log,
	}
}

type sessionLineItem struct {
	Name string `json:"name"`
	// UnitAmount is in minor currency units.
	UnitAmount int64 `json:"unit_amount"`
	Quantity   int   `json:"quantity"`
}

type sessionRequest struct {
	Mode          string            `json:"mode"`
	Currency      string            `json:"currency"`
	CustomerEmail string            `json:"customer_email"`
	LineItems     []sessionLineItem `json:"line_items"`
	SuccessURL    string            `json:"success_url"`
	CancelURL     string            `json:"cancel_url"`
}

type sessionResponse struct {
	URL string `json:"url"`
}

func (p *Provider) CreateCheckoutSession(ctx context.Context, c *cart.Cart) (string, error) {
	lineItems := make([]sessionLineItem, 0, len(c.Lines))
	for _, line := range c.Lines {
		if line.Quantity <= 0 {
			continue
		}
		lineItems = append(lineItems, sessionLineItem{
			Name:       "Product " + line.ProductID,
			UnitAmount: int64(math.Round(line.UnitPrice * 100)),
			Quantity:   line.Quantity,
		})
	}

	reqBody := sessionRequest{
		Mode:          "payment",
		Currency:      p.currency,
		CustomerEmail: c.Client.Email,
		LineItems:     lineItems,
		SuccessURL:    fmt.Sprintf("%s/carts/%s/checkout/success", p.callbackURL, c.ID),
		CancelURL:     fmt.Sprintf("%s/carts/%s/checkout/cancel", p.callbackURL, c.ID),
	}

	body, err := json.Marshal(reqBody)
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.gatewayURL+"/v1/checkout/sessions", bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("payment gateway request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", fmt.Errorf("payment gateway returned status %d", resp.StatusCode)
	}

	var session sessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&session); err != nil {
		return "", fmt.Errorf("decoding payment gateway response: %w", err)
	}
	if session.URL == "" {
		return "", fmt.Errorf("payment gateway returned empty session url")
	}

	p.log.Info("Payment session created", "cart_id", c.ID, "line_items", len(lineItems))
	return session.URL, nil
}
