package handlers

import (
	"net/http"
	"time"

	"github.com/tradezone/marketplace/internal/application/use_cases"
	"github.com/tradezone/marketplace/internal/infrastructure/http/response"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

// AdminHandler covers the operational endpoints: manual stock restoration
// and an on-demand cleanup pass.
type AdminHandler struct {
	checkout *use_cases.CheckoutUseCase
	cleanup  *use_cases.CleanupUseCase
	grace    time.Duration
	log      *logger.Logger
}

func NewAdminHandler(
	checkout *use_cases.CheckoutUseCase,
	cleanup *use_cases.CleanupUseCase,
	grace time.Duration,
	log *logger.Logger,
) *AdminHandler {
	return &AdminHandler{
		checkout: checkout,
		cleanup:  cleanup,
		grace:    grace,
		log:      log,
	}
}

func (h *AdminHandler) HandleRestoreStock(w http.ResponseWriter, r *http.Request) {
	cartID := r.PathValue("id")

	if err := h.checkout.RestoreStock(r.Context(), cartID); err != nil {
		response.WriteDomainError(w, err)
		return
	}

	h.log.Info("Stock restored by admin", "cart_id", cartID)
	w.WriteHeader(http.StatusNoContent)
}

type cleanupResponse struct {
	Cleaned int `json:"cleaned"`
}

func (h *AdminHandler) HandleCleanup(w http.ResponseWriter, r *http.Request) {
	cleaned, err := h.cleanup.CleanupExpiredCheckouts(r.Context(), h.grace)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, cleanupResponse{Cleaned: cleaned})
}
