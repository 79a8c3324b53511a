package identity

import (
	"context"

	"github.com/charro/storefront/internal/domain/shared"
	"github.com/google/uuid"
)

// UserRepository defines the interface for user persistence
type UserRepository interface {
	// Create creates a new user
	Create(ctx context.Context, user *User) error

	// Update updates an existing user
	Update(ctx context.Context, user *User) error

	// FindByID finds a user by ID
	FindByID(ctx context.Context, id uuid.UUID) (*User, error)

	// FindByEmail finds a user by its normalised email
	FindByEmail(ctx context.Context, email string) (*User, error)

	// FindAll returns users with pagination
	FindAll(ctx context.Context, filter UserFilter) ([]User, int64, error)

	// ExistsByEmail checks if an email already exists
	ExistsByEmail(ctx context.Context, email string) (bool, error)

	// CountByRole counts users holding the role
	CountByRole(ctx context.Context, role Role) (int64, error)
}

// UserFilter contains filter options for querying users
type UserFilter struct {
	shared.Filter
	Role *Role
}
