package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

func TestExtractBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		header string
		want   string
	}{
		{"valid", "Bearer abc123", "abc123"},
		{"lowercase scheme", "bearer abc123", "abc123"},
		{"missing header", "", ""},
		{"wrong scheme", "Basic abc123", ""},
		{"no token", "Bearer", ""},
		{"extra whitespace", "Bearer   abc123", "abc123"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest("GET", "/", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			if got := extractBearerToken(req); got != tt.want {
				t.Errorf("extractBearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetAuthContext(t *testing.T) {
	if GetAuthContext(context.Background()) != nil {
		t.Error("expected nil for context without auth")
	}

	authCtx := &domain.AuthContext{UserID: "u1", Roles: []string{domain.RoleViewer}}
	ctx := context.WithValue(context.Background(), authContextKey, authCtx)
	if got := GetAuthContext(ctx); got == nil || got.UserID != "u1" {
		t.Errorf("GetAuthContext() = %v", got)
	}
}

func TestRequireAdmin(t *testing.T) {
	m := NewAuthMiddleware(nil)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := m.RequireAdmin(next)

	// No auth context at all
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("missing auth context: got %d, want 401", rec.Code)
	}

	// Non-admin
	rec = httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	ctx := context.WithValue(req.Context(), authContextKey,
		&domain.AuthContext{UserID: "u1", Roles: []string{domain.RoleEmployee}})
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Errorf("non-admin: got %d, want 403", rec.Code)
	}

	// Admin
	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	ctx = context.WithValue(req.Context(), authContextKey,
		&domain.AuthContext{UserID: "u1", Roles: []string{domain.RoleAdmin}})
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Errorf("admin: got %d, want 200", rec.Code)
	}
}

func TestRequireRole(t *testing.T) {
	m := NewAuthMiddleware(nil)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	handler := m.RequireRole(domain.RoleEmployee, domain.RoleAdmin)(next)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("GET", "/", nil)
	ctx := context.WithValue(req.Context(), authContextKey,
		&domain.AuthContext{UserID: "u1", Roles: []string{domain.RoleViewer}})
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusForbidden {
		t.Errorf("viewer: got %d, want 403", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = httptest.NewRequest("GET", "/", nil)
	ctx = context.WithValue(req.Context(), authContextKey,
		&domain.AuthContext{UserID: "u1", Roles: []string{domain.RoleEmployee}})
	handler.ServeHTTP(rec, req.WithContext(ctx))
	if rec.Code != http.StatusOK {
		t.Errorf("employee: got %d, want 200", rec.Code)
	}
}

func TestRecoveryMiddleware(t *testing.T) {
	m := NewRecoveryMiddleware()
	handler := m.Handler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("boom")
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, httptest.NewRequest("GET", "/", nil))
	if rec.Code != http.StatusInternalServerError {
		t.Errorf("got %d, want 500", rec.Code)
	}
}
