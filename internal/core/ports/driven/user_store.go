package driven

import (
	"context"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// UserStore handles user persistence (PostgreSQL)
type UserStore interface {
	// Save creates or updates a user
	Save(ctx context.Context, user *domain.User) error

	// Get retrieves a user by ID
	Get(ctx context.Context, id string) (*domain.User, error)

	// GetByEmail retrieves a user by email
	GetByEmail(ctx context.Context, email string) (*domain.User, error)

	// List retrieves all users
	List(ctx context.Context) ([]*domain.User, error)

	// Delete deletes a user
	Delete(ctx context.Context, id string) error

	// Count returns total user count
	Count(ctx context.Context) (int, error)
}
