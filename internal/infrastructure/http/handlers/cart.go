package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/tradezone/marketplace/internal/application/commands"
	"github.com/tradezone/marketplace/internal/application/ports"
	"github.com/tradezone/marketplace/internal/domain/cart"
	"github.com/tradezone/marketplace/internal/infrastructure/http/response"
	"github.com/tradezone/marketplace/internal/pkg/logger"
)

type CartHandler struct {
	carts *commands.CartCommands
	log   *logger.Logger
}

func NewCartHandler(carts *commands.CartCommands, log *logger.Logger) *CartHandler {
	return &CartHandler{
		carts: carts,
		log:   log,
	}
}

type createCartRequest struct {
	UserID int64 `json:"user_id"`
}

func (h *CartHandler) HandleCreateCart(w http.ResponseWriter, r *http.Request) {
	var req createCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}
	if req.UserID <= 0 {
		response.WriteValidationError(w, "Validation failed", map[string]string{"user_id": "user_id is required"})
		return
	}

	c, err := h.carts.CreateNewCart(r.Context(), req.UserID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusCreated, response.DataResponse[*cart.Cart]{Data: c})
}

func (h *CartHandler) HandleGetCart(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.GetCart(r.Context(), r.PathValue("id"))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, c)
}

func (h *CartHandler) HandleGetActiveCart(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseInt(r.URL.Query().Get("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		response.WriteValidationError(w, "Validation failed", map[string]string{"user_id": "user_id is required"})
		return
	}

	c, err := h.carts.GetCartByUser(r.Context(), userID)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, c)
}

func (h *CartHandler) HandleListCarts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	filter := ports.CartFilter{}
	if v := q.Get("user_id"); v != "" {
		userID, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			response.WriteValidationError(w, "Validation failed", map[string]string{"user_id": "must be an integer"})
			return
		}
		filter.UserID = &userID
	}
	if v := q.Get("purchased"); v != "" {
		purchased := v == "true"
		filter.Purchased = &purchased
	}

	page, pageSize := pagination(q.Get("page"), q.Get("page_size"))

	carts, total, err := h.carts.FindAll(r.Context(), filter, pageSize, page*pageSize)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}

	response.WriteSuccess(w, map[string]interface{}{
		"carts":       carts,
		"total_count": total,
		"page":        page,
		"page_size":   pageSize,
	})
}

func (h *CartHandler) HandleAddProduct(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.AddProduct(r.Context(), r.PathValue("id"), r.PathValue("productId"))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, c)
}

func (h *CartHandler) HandleRemoveProduct(w http.ResponseWriter, r *http.Request) {
	c, err := h.carts.RemoveProduct(r.Context(), r.PathValue("id"), r.PathValue("productId"))
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, c)
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// HandleUpdateQuantity is the shopper path with the advertised-stock guard.
func (h *CartHandler) HandleUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	c, err := h.carts.UpdateQuantityValidated(r.Context(), r.PathValue("id"), r.PathValue("productId"), req.Quantity)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, c)
}

// HandleForceUpdateQuantity writes the quantity without the stock guard.
// Administrative correction path.
func (h *CartHandler) HandleForceUpdateQuantity(w http.ResponseWriter, r *http.Request) {
	var req updateQuantityRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	c, err := h.carts.UpdateQuantity(r.Context(), r.PathValue("id"), r.PathValue("productId"), req.Quantity)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, c)
}

type updateStatusRequest struct {
	Status string `json:"status"`
}

func (h *CartHandler) HandleUpdateLineStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.WriteError(w, http.StatusBadRequest, response.StatusValidationError, "Invalid request body")
		return
	}

	status, err := cart.ParseLineStatus(req.Status)
	if err != nil {
		response.WriteValidationError(w, "Validation failed", map[string]string{"status": err.Error()})
		return
	}

	c, err := h.carts.UpdateLineStatus(r.Context(), r.PathValue("id"), r.PathValue("productId"), status)
	if err != nil {
		response.WriteDomainError(w, err)
		return
	}
	response.WriteSuccess(w, c)
}

func (h *CartHandler) HandleEmptyCart(w http.ResponseWriter, r *http.Request) {
	if err := h.carts.EmptyCart(r.Context(), r.PathValue("id")); err != nil {
		response.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func pagination(pageStr, sizeStr string) (int, int) {
	page := 0
	if v, err := strconv.Atoi(pageStr); err == nil && v > 0 {
		page = v
	}
	pageSize := 20
	if v, err := strconv.Atoi(sizeStr); err == nil && v > 0 && v <= 100 {
		pageSize = v
	}
	return page, pageSize
}
