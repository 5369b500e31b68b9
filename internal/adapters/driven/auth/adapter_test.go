package auth

import (
	"reflect"
	"testing"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

func testClaims() *domain.TokenClaims {
	now := time.Now()
	return &domain.TokenClaims{
		UserID:    "user-123",
		Email:     "test@example.com",
		Roles:     []string{domain.RoleEmployee},
		SessionID: "session-789",
		IssuedAt:  now.Unix(),
		ExpiresAt: now.Add(24 * time.Hour).Unix(),
	}
}

func TestHashPassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4) // Low cost for faster tests

	hash, err := adapter.HashPassword("mypassword")
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if hash == "" || hash == "mypassword" {
		t.Errorf("unexpected hash %q", hash)
	}
	if len(hash) < 60 {
		t.Error("expected bcrypt hash to be at least 60 characters")
	}
}

func TestHashPasswordSalted(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4)

	hash1, _ := adapter.HashPassword("password123")
	hash2, _ := adapter.HashPassword("password123")

	if hash1 == hash2 {
		t.Error("expected different hashes for same password")
	}
}

func TestVerifyPassword(t *testing.T) {
	adapter := NewAdapterWithCost("secret", 4)

	hash, _ := adapter.HashPassword("correctpassword")

	if !adapter.VerifyPassword("correctpassword", hash) {
		t.Error("expected verification to succeed")
	}
	if adapter.VerifyPassword("wrongpassword", hash) {
		t.Error("expected verification to fail for wrong password")
	}
	if adapter.VerifyPassword("correctpassword", "not-a-valid-hash") {
		t.Error("expected verification to fail for invalid hash")
	}
}

func TestTokenRoundTrip(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")

	original := testClaims()
	original.Roles = []string{domain.RoleViewer, domain.RoleAdmin}

	token, err := adapter.GenerateToken(original)
	if err != nil {
		t.Fatalf("failed to generate token: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty token")
	}

	parsed, err := adapter.ParseToken(token)
	if err != nil {
		t.Fatalf("failed to parse token: %v", err)
	}

	if parsed.UserID != original.UserID {
		t.Errorf("expected UserID %s, got %s", original.UserID, parsed.UserID)
	}
	if parsed.Email != original.Email {
		t.Errorf("expected Email %s, got %s", original.Email, parsed.Email)
	}
	if !reflect.DeepEqual(parsed.Roles, original.Roles) {
		t.Errorf("expected Roles %v, got %v", original.Roles, parsed.Roles)
	}
	if parsed.SessionID != original.SessionID {
		t.Errorf("expected SessionID %s, got %s", original.SessionID, parsed.SessionID)
	}
}

func TestParseTokenExpired(t *testing.T) {
	adapter := NewAdapter("test-jwt-secret")

	claims := testClaims()
	claims.IssuedAt = time.Now().Add(-26 * time.Hour).Unix()
	claims.ExpiresAt = time.Now().Add(-2 * time.Hour).Unix()

	token, _ := adapter.GenerateToken(claims)

	if _, err := adapter.ParseToken(token); err == nil {
		t.Error("expected error for expired token")
	}
}

func TestParseTokenWrongSecret(t *testing.T) {
	adapter1 := NewAdapter("secret-1")
	adapter2 := NewAdapter("secret-2")

	token, _ := adapter1.GenerateToken(testClaims())

	if _, err := adapter2.ParseToken(token); err == nil {
		t.Error("expected error when parsing token signed with a different secret")
	}
}

func TestParseTokenMalformed(t *testing.T) {
	adapter := NewAdapter("test-secret")

	for _, tc := range []string{
		"",
		"not-a-jwt",
		"only.two.parts.missing",
		"header.payload",
	} {
		if _, err := adapter.ParseToken(tc); err == nil {
			t.Errorf("expected error for malformed token: %q", tc)
		}
	}
}
