package ports

import (
	"context"

	"github.com/tradezone/marketplace/internal/domain/product"
)

type ProductRepository interface {
	FindByID(ctx context.Context, id string) (*product.Product, error)
	FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error)
	Create(ctx context.Context, p *product.Product) error
	DecrementStock(ctx context.Context, id string, quantity int, expectedVersion int64) (bool, error)
	IncrementStock(ctx context.Context, id string, quantity int) error
}
