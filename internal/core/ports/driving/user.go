package driving

import (
	"context"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// UserService manages user accounts
type UserService interface {
	// Create creates a user with a hashed password
	Create(ctx context.Context, email, password string, roles []string) (*domain.User, error)

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*domain.User, error)

	// Delete deletes a user
	Delete(ctx context.Context, id string) error

	// Setup creates the first admin account. Fails with
	// domain.ErrAlreadyExists once any user exists.
	Setup(ctx context.Context, email, password string) (*domain.User, error)
}
