package ai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

func okResponse(dims int) string {
	vec := make([]float32, dims)
	for i := range vec {
		vec[i] = 0.1
	}
	data, _ := json.Marshal(map[string]any{
		"data":  []map[string]any{{"index": 0, "embedding": vec}},
		"model": "text-embedding-3-small",
	})
	return string(data)
}

func newTestEmbedding(t *testing.T, url string) *OpenAIEmbedding {
	t.Helper()
	e, err := NewOpenAIEmbedding(Config{
		APIKey:     "test-key",
		Model:      "text-embedding-3-small",
		BaseURL:    url,
		MaxRetries: 3,
		RetryDelay: time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedding: %v", err)
	}
	return e
}

func TestEmbedRetriesOnRateLimit(t *testing.T) {
	attempts := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts++
		if attempts < 3 {
			w.WriteHeader(http.StatusTooManyRequests)
			fmt.Fprint(w, `{"error":{"message":"rate limit exceeded"}}`)
			return
		}
		fmt.Fprint(w, okResponse(4))
	}))
	defer server.Close()

	e := newTestEmbedding(t, server.URL)

	embeddings, err := e.Embed(context.Background(), []string{"hello"})
	if err != nil {
		t.Fatalf("expected success after retries, got %v", err)
	}
	if attempts != 3 {
		t.Errorf("expected 3 attempts, got %d", attempts)
	}
	if len(embeddings) != 1 || len(embeddings[0]) != 4 {
		t.Errorf("unexpected embeddings shape: %v", embeddings)
	}
}

func TestEmbedExhaustedRetries(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		fmt.Fprint(w, `{"error":{"message":"rate limit exceeded"}}`)
	}))
	defer server.Close()

	e := newTestEmbedding(t, server.URL)

	_, err := e.Embed(context.Background(), []string{"hello"})
	if !errors.Is(err, domain.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}
}

func TestEmbedStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, domain.ErrInvalidInput},
		{http.StatusUnauthorized, domain.ErrUnauthorized},
		{http.StatusForbidden, domain.ErrForbidden},
		{http.StatusNotFound, domain.ErrNotFound},
		{http.StatusTooManyRequests, domain.ErrRateLimited},
		{http.StatusInternalServerError, domain.ErrUpstream},
		{http.StatusBadGateway, domain.ErrUpstream},
	}

	for _, tt := range tests {
		t.Run(http.StatusText(tt.status), func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				fmt.Fprint(w, `{"error":{"message":"nope"}}`)
			}))
			defer server.Close()

			e := newTestEmbedding(t, server.URL)

			_, err := e.EmbedQuery(context.Background(), "query")
			if !errors.Is(err, tt.want) {
				t.Errorf("status %d mapped to %v, want %v", tt.status, err, tt.want)
			}
		})
	}
}

func TestEmbedInvalidResponseSchema(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty data", `{"data":[],"model":"m"}`},
		{"empty embedding", `{"data":[{"index":0,"embedding":[]}],"model":"m"}`},
		{"missing model", `{"data":[{"index":0,"embedding":[0.1]}]}`},
		{"not json", `<html>gateway error</html>`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				fmt.Fprint(w, tt.body)
			}))
			defer server.Close()

			e := newTestEmbedding(t, server.URL)

			_, err := e.EmbedQuery(context.Background(), "query")
			if !errors.Is(err, domain.ErrInvalidUpstreamResponse) {
				t.Errorf("expected ErrInvalidUpstreamResponse, got %v", err)
			}
		})
	}
}

func TestEmbedEmptyInputs(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, okResponse(4))
	}))
	defer server.Close()

	e := newTestEmbedding(t, server.URL)
	ctx := context.Background()

	if _, err := e.Embed(ctx, nil); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("empty list: expected ErrInvalidInput, got %v", err)
	}
	if _, err := e.EmbedQuery(ctx, "   "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("whitespace query: expected ErrInvalidInput, got %v", err)
	}
}

func TestEmbedSkipsEmptyTexts(t *testing.T) {
	requests := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests++
		fmt.Fprint(w, okResponse(4))
	}))
	defer server.Close()

	e := newTestEmbedding(t, server.URL)

	embeddings, err := e.Embed(context.Background(), []string{"one", "  ", "two"})
	if err != nil {
		t.Fatalf("Embed: %v", err)
	}
	if len(embeddings) != 2 {
		t.Errorf("expected 2 embeddings (empty text skipped), got %d", len(embeddings))
	}
	if requests != 2 {
		t.Errorf("expected 2 upstream requests, got %d", requests)
	}
}

func TestEmbedSendsAuthAndModel(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if got := r.Header.Get("Authorization"); got != "Bearer test-key" {
			t.Errorf("Authorization = %q", got)
		}
		var req embeddingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Errorf("decode request: %v", err)
		}
		if req.Model != "text-embedding-3-small" {
			t.Errorf("model = %q", req.Model)
		}
		fmt.Fprint(w, okResponse(4))
	}))
	defer server.Close()

	e := newTestEmbedding(t, server.URL)

	if _, err := e.EmbedQuery(context.Background(), "query"); err != nil {
		t.Fatalf("EmbedQuery: %v", err)
	}
}

func TestEmbedContextCancelledDuringBackoff(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	e, err := NewOpenAIEmbedding(Config{
		APIKey:     "test-key",
		BaseURL:    server.URL,
		MaxRetries: 3,
		RetryDelay: time.Minute,
	})
	if err != nil {
		t.Fatalf("NewOpenAIEmbedding: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	_, err = e.EmbedQuery(ctx, "query")
	if err == nil {
		t.Fatal("expected error")
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("backoff ignored context cancellation, took %v", elapsed)
	}
}
