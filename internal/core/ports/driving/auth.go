package driving

import (
	"context"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// AuthService handles authentication flows
type AuthService interface {
	// Login authenticates with email/password and creates a session
	Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error)

	// Refresh exchanges a refresh token for a new token pair
	Refresh(ctx context.Context, refreshToken string) (*domain.LoginResponse, error)

	// Logout terminates the session behind the given token
	Logout(ctx context.Context, token string) error

	// ValidateToken verifies a token and returns the auth context
	ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error)
}
