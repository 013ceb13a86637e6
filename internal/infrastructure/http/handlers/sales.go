package handlers

import (
	"net/http"
	"strconv"

	"github.com/tradezone/marketplace/internal/application/use_cases"
	"github.com/tradezone/marketplace/internal/infrastructure/http/response"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

// SalesHandler exposes the purchased-cart read models and line cancellation.
// The acting identity arrives from the (out of scope) auth layer via
// headers.
type SalesHandler struct {
	sales *use_cases.SalesUseCase
	log   *logger.Logger
}

func NewSalesHandler(sales *use_cases.SalesUseCase, log *logger.Logger) *SalesHandler {
	return &SalesHandler{
		sales: sales,
		log:   log,
	}
}

func actingIdentity(r *http.Request) (int64, bool) {
	userID, _ := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)
	isAdmin := r.Header.Get("X-User-Role") == "ADMIN"
	return userID, isAdmin
}

func (h *SalesHandler) HandleListSales(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin := actingIdentity(r)
	q := r.URL.Query()

	var managerID *int64
	if v := q.Get("manager_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.WriteValidationError(w, "Validation failed", map[string]string{"manager_id": "must be an integer"})
			return
		}
		managerID = &id
	} else if !isAdmin && userID > 0 {
		managerID = &userID
	}

	page, pageSize := pagination(q.Get("page"), q.Get("page_size"))

	salesPage, err := h.sales.ListSales(r.Context(), managerID, isAdmin, page, pageSize)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, salesPage)
}

func (h *SalesHandler) HandleGetSaleLine(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin := actingIdentity(r)

	line, err := h.sales.GetSaleLine(r.Context(), r.PathValue("cartId"), r.PathValue("productId"), userID, isAdmin)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, line)
}

func (h *SalesHandler) HandleCancelSale(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin := actingIdentity(r)
	cartID := r.PathValue("cartId")
	productID := r.PathValue("productId")

	if err := h.sales.CancelSale(r.Context(), cartID, productID, userID, isAdmin); err != nil {
		h.log.Warn("Sale cancellation rejected",
			"cart_id", cartID,
			"product_id", productID,
			"acting_user", userID,
			"error", err.Error(),
		)
		response.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type earningsResponse struct {
	Total float64 `json:"total"`
}

func (h *SalesHandler) HandleTotalEarnings(w http.ResponseWriter, r *http.Request) {
	userID, isAdmin := actingIdentity(r)

	var managerID *int64
	if v := r.URL.Query().Get("manager_id"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.WriteValidationError(w, "Validation failed", map[string]string{"manager_id": "must be an integer"})
			return
		}
		managerID = &id
	} else if !isAdmin && userID > 0 {
		managerID = &userID
	}

	total, err := h.sales.TotalEarnings(r.Context(), managerID, isAdmin)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, earningsResponse{Total: total})
}
