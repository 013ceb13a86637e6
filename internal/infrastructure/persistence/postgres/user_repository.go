package postgres

import (
	"context"
	"database/sql"

	"github.com/tradezone/marketplace/internal/domain/cart"
	domainErrors "github.com/tradezone/marketplace/internal/domain/errors"
	"github.com/tradezone/marketplace/internal/domain/user"
	"github.com/tradezone/marketplace/internal/infrastructure/monitoring"
)

// UserRepository is the user directory adapter. The core only reads users.
type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(conn *Connection) *UserRepository {
	return &UserRepository{db: conn.GetDB()}
}

func (r *UserRepository) FindByID(ctx context.Context, id int64) (*user.User, error) {
	query := `
		SELECT id, username, role, name, email, phone, street, city, postal_code, country, created_at
		FROM users
		WHERE id = $1
	`

	row := monitoring.InstrumentQueryRow(ctx, r.db, "SELECT", "users", query, id)

	var u user.User
	var role string
	var c cart.Client
	err := row.Scan(
		&u.ID, &u.Username, &role,
		&c.Name, &c.Email, &c.Phone,
		&c.Address.Street, &c.Address.City, &c.Address.PostalCode, &c.Address.Country,
		&u.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, domainErrors.ErrUserNotFound
		}
		return nil, err
	}

	u.Role = user.Role(role)
	u.Client = c
	return &u, nil
}
