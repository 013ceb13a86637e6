package errors

import (
	"errors"
)

var (
	ErrCartNotFound      = errors.New("cart not found")
	ErrLineNotFound      = errors.New("cart line not found")
	ErrCartPurchased     = errors.New("cart already purchased")
	ErrCheckoutActive    = errors.New("checkout already in progress")
	ErrInvalidQuantity   = errors.New("quantity must be at least 1")
	ErrInvalidTransition = errors.New("invalid line status transition")

	ErrProductNotFound   = errors.New("product not found")
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrVersionConflict   = errors.New("stock version conflict")

	ErrUserNotFound = errors.New("user not found")
	ErrUnauthorized = errors.New("not authorized for this sale")

	ErrSaleNotFound = errors.New("sale not found")

	ErrPaymentProvider = errors.New("payment provider request failed")
)
