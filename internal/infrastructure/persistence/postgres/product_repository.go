package postgres

import (
	"context"
	"database/sql"

	"github.com/lib/pq"

	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/domain/product"
	"github.com/tradezone/marketplace/internal/infrastructure/monitoring"
)

// ProductRepository persists catalog records. Stock mutation happens only
// through the two conditional statements below, which carry the version
// discipline the ledger relies on.
type ProductRepository struct {
	db *sql.DB
}

func NewProductRepository(conn *Connection) *ProductRepository {
	return &ProductRepository{db: conn.GetDB()}
}

const productColumns = `id, name, description, price, stock, version, manager_id, deleted, created_at, updated_at`

func (r *ProductRepository) FindByID(ctx context.Context, id string) (*product.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = $1 AND NOT deleted
	`

	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "products", query, id)

	var p product.Product
	err := row.Scan(
		&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Version,
		&p.ManagerID, &p.Deleted, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainErrors.ErrProductNotFound
		}
		return nil, err
	}

	return &p, nil
}

func (r *ProductRepository) FindByIDs(ctx context.Context, ids []string) ([]*product.Product, error) {
	query := `
		SELECT ` + productColumns + `
		FROM products
		WHERE id = ANY($1) AND NOT deleted
	`

	rows, err := monitoring.InstrumentQuery(ctx, r.db, "SELECT", "products", query, pq.Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]*product.Product, 0, len(ids))
	for rows.Next() {
		var p product.Product
		if err := rows.Scan(
			&p.ID, &p.Name, &p.Description, &p.Price, &p.Stock, &p.Version,
			&p.ManagerID, &p.Deleted, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		products = append(products, &p)
	}

	return products, rows.Err()
}

func (r *ProductRepository) Create(ctx context.Context, p *product.Product) error {
	query := `
		INSERT INTO products (id, name, description, price, stock, version, manager_id, deleted, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := monitoring.InstrumentExec(ctx, r.db, "INSERT", "products", query,
		p.ID, p.Name, p.Description, p.Price, p.Stock, p.Version,
		p.ManagerID, p.Deleted, p.CreatedAt, p.UpdatedAt,
	)
	return err
}

// DecrementStock is the ledger's compare-and-swap: the row is touched only
// when the version still matches and enough stock remains. The stock >=
// quantity guard plus the CHECK constraint keep quantity from ever going
// negative.
func (r *ProductRepository) DecrementStock(ctx context.Context, id string, quantity int, expectedVersion int64) (bool, error) {
	query := `
		UPDATE products
		SET stock = stock - $2, version = version + 1, updated_at = NOW()
		WHERE id = $1 AND version = $3 AND stock >= $2
	`

	result, err := monitoring.InstrumentExec(ctx, r.db, "UPDATE", "products", query, id, quantity, expectedVersion)
	if err != nil {
		return false, err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// IncrementStock restores quantity unconditionally; additive writes cannot
// violate non-negativity, so no version check is needed. The version still
// bumps so concurrent reservers see a conflict and re-read.
func (r *ProductRepository) IncrementStock(ctx context.Context, id string, quantity int) error {
	query := `
		UPDATE products
		SET stock = stock + $2, version = version + 1, updated_at = NOW()
		WHERE id = $1
	`

	result, err := monitoring.InstrumentExec(ctx, r.db, "UPDATE", "products", query, id, quantity)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domainErrors.ErrProductNotFound
	}
	return nil
}
