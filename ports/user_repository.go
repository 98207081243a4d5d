package ports

import (
	"context"

	"github.com/certik/femhub-notebook/domain/user"
)

// UserRepository defines the interface for account storage
type UserRepository interface {
	// Create stores a new account
	Create(ctx context.Context, u *user.User) error

	// GetByUsername retrieves an account by username
	GetByUsername(ctx context.Context, username string) (*user.User, error)

	// Update persists changes to an existing account
	Update(ctx context.Context, u *user.User) error

	// List returns all accounts ordered by creation time
	List(ctx context.Context) ([]*user.User, error)
}
