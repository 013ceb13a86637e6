package handlers

import (
	"net/http"

	"github.com/tradezone/marketplace/internal/application/use_cases"
	"github.com/tradezone/marketplace/internal/infrastructure/http/response"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

type CheckoutHandler struct {
	checkout *use_cases.CheckoutUseCase
	log      *logger.Logger
}

func NewCheckoutHandler(checkout *use_cases.CheckoutUseCase, log *logger.Logger) *CheckoutHandler {
	return &CheckoutHandler{
		checkout: checkout,
		log:      log,
	}
}

type checkoutResponse struct {
	RedirectURL string `json:"redirect_url"`
}

func (h *CheckoutHandler) HandleCheckout(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")

	redirectURL, err := h.checkout.Checkout(r.Context(), cartID)
	if err != nil {
		h.log.Warn("Checkout failed", "cart_id", cartID, "error", err.Error())
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, checkoutResponse{RedirectURL: redirectURL})
}

// HandleCheckoutSuccess is the payment provider's success callback.
func (h *CheckoutHandler) HandleCheckoutSuccess(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")

	c, err := h.checkout.CompletePurchase(r.Context(), cartID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, c)
}

// HandleCheckoutCancel is the payment provider's cancel callback: the
// reservation is compensated right away instead of waiting for the sweeper.
func (h *CheckoutHandler) HandleCheckoutCancel(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")

	if err := h.checkout.RestoreStock(r.Context(), cartID); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
