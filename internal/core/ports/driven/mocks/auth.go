package mocks

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// MockAuthAdapter is a mock implementation of AuthAdapter for testing.
// Passwords are "hashed" reversibly and tokens are JSON blobs, so tests
// can assert on contents without real crypto.
type MockAuthAdapter struct{}

// NewMockAuthAdapter creates a new MockAuthAdapter
func NewMockAuthAdapter() *MockAuthAdapter {
	return &MockAuthAdapter{}
}

func (m *MockAuthAdapter) HashPassword(password string) (string, error) {
	return "hashed:" + password, nil
}

func (m *MockAuthAdapter) VerifyPassword(password, hash string) bool {
	return hash == "hashed:"+password
}

func (m *MockAuthAdapter) GenerateToken(claims *domain.TokenClaims) (string, error) {
	data, err := json.Marshal(claims)
	if err != nil {
		return "", err
	}
	return "token:" + string(data), nil
}

func (m *MockAuthAdapter) ParseToken(token string) (*domain.TokenClaims, error) {
	data, ok := strings.CutPrefix(token, "token:")
	if !ok {
		return nil, domain.ErrTokenInvalid
	}

	var claims domain.TokenClaims
	if err := json.Unmarshal([]byte(data), &claims); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrTokenInvalid, err)
	}

	if claims.ExpiresAt > 0 && time.Now().Unix() > claims.ExpiresAt {
		return nil, domain.ErrTokenExpired
	}
	return &claims, nil
}
