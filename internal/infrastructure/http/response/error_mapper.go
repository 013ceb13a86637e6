package response

import (
	"errors"
	"net/http"

	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
)

type ErrorMapping struct {
	HTTPStatus int
	Status     Status
	Message    string
}

var errorMappings = map[error]ErrorMapping{
	domainErrors.ErrCartNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Cart not found",
	},
	domainErrors.ErrLineNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Cart line not found",
	},
	domainErrors.ErrSaleNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Sale not found",
	},
	domainErrors.ErrProductNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "Product not found",
	},
	domainErrors.ErrUserNotFound: {
		HTTPStatus: http.StatusNotFound,
		Status:     StatusNotFound,
		Message:    "User not found",
	},
	domainErrors.ErrCartPurchased: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Cart already purchased",
	},
	domainErrors.ErrCheckoutActive: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Checkout already in progress",
	},
	domainErrors.ErrVersionConflict: {
		HTTPStatus: http.StatusConflict,
		Status:     StatusConflict,
		Message:    "Stock was modified concurrently, retry the request",
	},
	domainErrors.ErrInsufficientStock: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusError,
		Message:    "Insufficient stock",
	},
	domainErrors.ErrInvalidQuantity: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Quantity must be at least 1",
	},
	domainErrors.ErrInvalidTransition: {
		HTTPStatus: http.StatusBadRequest,
		Status:     StatusValidationError,
		Message:    "Invalid line status transition",
	},
	domainErrors.ErrUnauthorized: {
		HTTPStatus: http.StatusForbidden,
		Status:     StatusForbidden,
		Message:    "Not authorized for this sale",
	},
	domainErrors.ErrPaymentProvider: {
		HTTPStatus: http.StatusBadGateway,
		Status:     StatusError,
		Message:    "Payment provider request failed",
	},
}

func MapDomainError(err error) (int, *ErrorResponse) {
	for domainErr, mapping := range errorMappings {
		if errors.Is(err, domainErr) {
			return mapping.HTTPStatus, Error(mapping.Status, mapping.Message)
		}
	}

	return http.StatusInternalServerError, Error(StatusInternalError, "Internal server error")
}

func WriteDomainError(w http.ResponseWriter, err error) {
	statusCode, errorResponse := MapDomainError(err)
	WriteJSON(w, statusCode, errorResponse)
}
