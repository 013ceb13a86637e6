package product

import (
	"errors"
	"time"
)

// Product is the catalog record the stock ledger mutates. Version is the
// optimistic concurrency token: every stock mutation bumps it, and a
// conditional write succeeds only against the version the caller last read.
type Product struct {
	ID          string
	Name        string
	Description string
	Price       float64
	Stock       int
	Version     int64
	ManagerID   int64
	Deleted     bool
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

func NewProduct(id, name string, price float64, stock int, managerID int64) (*Product, error) {
	if id == "" {
		return nil, errors.New("product id cannot be empty")
	}
	if name == "" {
		return nil, errors.New("product name cannot be empty")
	}
	if price < 0 {
		return nil, errors.New("price cannot be negative")
	}
	if stock < 0 {
		return nil, errors.New("stock cannot be negative")
	}
	if managerID <= 0 {
		return nil, errors.New("manager id must be positive")
	}

	now := time.Now().UTC()
	return &Product{
		ID:        id,
		Name:      name,
		Price:     price,
		Stock:     stock,
		ManagerID: managerID,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (p *Product) HasStock(quantity int) bool {
	return p.Stock >= quantity
}

func (p *Product) ManagedBy(userID int64) bool {
	return p.ManagerID == userID
}
