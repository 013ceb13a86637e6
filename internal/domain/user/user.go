package user

import (
	"time"

	"github.com/tradezone/marketplace/internal/domain/cart"
)

type Role string

const (
	RoleUser    Role = "USER"
	RoleManager Role = "MANAGER"
	RoleAdmin   Role = "ADMIN"
)

// User is the directory record the core resolves cart owners and product
// managers against. Client is the contact snapshot copied onto carts.
type User struct {
	ID        int64
	Username  string
	Role      Role
	Client    cart.Client
	CreatedAt time.Time
}

func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
