package cart

import (
	"time"
)

// SaleLine is the denormalized reporting projection of one purchased cart
// line: line data joined with product, client and manager identity. Built on
// demand, never persisted.
type SaleLine struct {
	CartID      string     `json:"cart_id"`
	ProductID   string     `json:"product_id"`
	ProductName string     `json:"product_name"`
	Quantity    int        `json:"quantity"`
	UnitPrice   float64    `json:"unit_price"`
	Total       float64    `json:"total"`
	Status      LineStatus `json:"status"`
	ClientName  string     `json:"client_name"`
	ClientEmail string     `json:"client_email"`
	ManagerID   int64      `json:"manager_id"`
	ManagerName string     `json:"manager_name"`
	CreatedAt   time.Time  `json:"created_at"`
}
