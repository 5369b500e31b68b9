package services

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driving"
)

// Ensure authService implements AuthService
var _ driving.AuthService = (*authService)(nil)

// authService implements the AuthService interface
type authService struct {
	userStore    driven.UserStore
	sessionStore driven.SessionStore
	authAdapter  driven.AuthAdapter
	tokenTTL     time.Duration
}

// NewAuthService creates a new AuthService
func NewAuthService(
	userStore driven.UserStore,
	sessionStore driven.SessionStore,
	authAdapter driven.AuthAdapter,
) driving.AuthService {
	return &authService{
		userStore:    userStore,
		sessionStore: sessionStore,
		authAdapter:  authAdapter,
		tokenTTL:     24 * time.Hour,
	}
}

// Login validates credentials and creates a session
func (s *authService) Login(ctx context.Context, req *domain.LoginRequest) (*domain.LoginResponse, error) {
	if req.Email == "" || req.Password == "" {
		return nil, domain.ErrInvalidInput
	}

	user, err := s.userStore.GetByEmail(ctx, req.Email)
	if err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	if !s.authAdapter.VerifyPassword(req.Password, user.PasswordHash) {
		return nil, domain.ErrInvalidCredentials
	}

	return s.createSession(ctx, user)
}

// ValidateToken validates a JWT token and returns the auth context
func (s *authService) ValidateToken(ctx context.Context, token string) (*domain.AuthContext, error) {
	if token == "" {
		return nil, domain.ErrTokenInvalid
	}

	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}

	if time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}

	// Verify session still exists (logout invalidates tokens early)
	session, err := s.sessionStore.Get(ctx, claims.SessionID)
	if err != nil {
		return nil, domain.ErrSessionNotFound
	}
	if session.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	return &domain.AuthContext{
		UserID:    claims.UserID,
		Email:     claims.Email,
		Roles:     claims.Roles,
		SessionID: claims.SessionID,
	}, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *authService) Refresh(ctx context.Context, refreshToken string) (*domain.LoginResponse, error) {
	if refreshToken == "" {
		return nil, domain.ErrTokenInvalid
	}

	session, err := s.sessionStore.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, domain.ErrTokenInvalid
	}
	if session.IsExpired() {
		return nil, domain.ErrTokenExpired
	}

	user, err := s.userStore.Get(ctx, session.UserID)
	if err != nil {
		return nil, err
	}

	// Old session is replaced by the new one
	if err := s.sessionStore.Delete(ctx, session.ID); err != nil {
		return nil, err
	}

	return s.createSession(ctx, user)
}

// Logout terminates the session behind the given token
func (s *authService) Logout(ctx context.Context, token string) error {
	claims, err := s.authAdapter.ParseToken(token)
	if err != nil {
		return domain.ErrTokenInvalid
	}
	return s.sessionStore.Delete(ctx, claims.SessionID)
}

// createSession issues a token pair and persists the session
func (s *authService) createSession(ctx context.Context, user *domain.User) (*domain.LoginResponse, error) {
	sessionID := generateID()
	expiresAt := time.Now().Add(s.tokenTTL)

	claims := &domain.TokenClaims{
		UserID:    user.ID,
		Email:     user.Email,
		Roles:     user.Roles,
		SessionID: sessionID,
		IssuedAt:  time.Now().Unix(),
		ExpiresAt: expiresAt.Unix(),
	}

	token, err := s.authAdapter.GenerateToken(claims)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		ID:           sessionID,
		UserID:       user.ID,
		Token:        token,
		RefreshToken: generateRefreshToken(),
		ExpiresAt:    expiresAt,
		CreatedAt:    time.Now(),
	}
	if err := s.sessionStore.Save(ctx, session); err != nil {
		return nil, err
	}

	return &domain.LoginResponse{
		Token:        token,
		RefreshToken: session.RefreshToken,
		ExpiresAt:    expiresAt,
		User:         user.ToSummary(),
	}, nil
}

func generateID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}

func generateRefreshToken() string {
	b := make([]byte, 32)
	_, _ = rand.Read(b)
	return base64.RawURLEncoding.EncodeToString(b)
}
