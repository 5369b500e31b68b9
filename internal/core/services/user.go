package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driving"
)

// Ensure userService implements UserService
var _ driving.UserService = (*userService)(nil)

// userService implements the UserService interface
type userService struct {
	userStore   driven.UserStore
	authAdapter driven.AuthAdapter
}

// NewUserService creates a new UserService
func NewUserService(userStore driven.UserStore, authAdapter driven.AuthAdapter) driving.UserService {
	return &userService{
		userStore:   userStore,
		authAdapter: authAdapter,
	}
}

// Create creates a user with a hashed password
func (s *userService) Create(ctx context.Context, email, password string, roles []string) (*domain.User, error) {
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, domain.ErrInvalidInput
	}
	if len(roles) == 0 {
		roles = []string{domain.RoleViewer}
	}

	if _, err := s.userStore.GetByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("%w: email %s", domain.ErrAlreadyExists, email)
	}

	hash, err := s.authAdapter.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	now := time.Now()
	user := &domain.User{
		ID:           generateID(),
		Email:        email,
		PasswordHash: hash,
		Roles:        roles,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.userStore.Save(ctx, user); err != nil {
		return nil, fmt.Errorf("save user: %w", err)
	}
	return user, nil
}

// Get retrieves a user by ID
func (s *userService) Get(ctx context.Context, id string) (*domain.User, error) {
	return s.userStore.Get(ctx, id)
}

// List retrieves all users
func (s *userService) List(ctx context.Context) ([]*domain.User, error) {
	return s.userStore.List(ctx)
}

// Delete deletes a user
func (s *userService) Delete(ctx context.Context, id string) error {
	return s.userStore.Delete(ctx, id)
}

// Setup creates the first admin account. Once any user exists the
// endpoint is closed.
func (s *userService) Setup(ctx context.Context, email, password string) (*domain.User, error) {
	count, err := s.userStore.Count(ctx)
	if err != nil {
		return nil, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return nil, fmt.Errorf("%w: setup already completed", domain.ErrAlreadyExists)
	}

	return s.Create(ctx, email, password, []string{domain.RoleAdmin})
}
