package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
)

// Ensure OpenAIEmbedding implements EmbeddingService
var _ driven.EmbeddingService = (*OpenAIEmbedding)(nil)

// Model dimensions for OpenAI embedding models
var openAIModelDimensions = map[string]int{
	"text-embedding-3-small": 1536,
	"text-embedding-3-large": 3072,
	"text-embedding-ada-002": 1536,
}

// OpenAIEmbedding implements EmbeddingService against an
// OpenAI-compatible /embeddings endpoint. Batching, linear-backoff retry,
// and upstream status mapping live here so callers only see domain errors.
type OpenAIEmbedding struct {
	apiKey     string
	model      string
	baseURL    string
	dimensions int
	batchSize  int
	maxRetries int
	retryDelay time.Duration
	client     *http.Client
	logger     *slog.Logger
}

// Config holds embedding client configuration
type Config struct {
	APIKey  string
	Model   string
	BaseURL string

	// BatchSize caps how many texts are processed per batch
	BatchSize int

	// MaxRetries is the total number of attempts per request
	MaxRetries int

	// RetryDelay is the backoff base: the delay after attempt k is
	// RetryDelay * k
	RetryDelay time.Duration

	Timeout time.Duration
}

// NewOpenAIEmbedding creates a new OpenAI-compatible embedding service
func NewOpenAIEmbedding(cfg Config) (*OpenAIEmbedding, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("embedding API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = 3
	}
	if cfg.RetryDelay <= 0 {
		cfg.RetryDelay = time.Second
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	dimensions, ok := openAIModelDimensions[cfg.Model]
	if !ok {
		// Default to 1536 for unknown models
		dimensions = 1536
	}

	return &OpenAIEmbedding{
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		dimensions: dimensions,
		batchSize:  cfg.BatchSize,
		maxRetries: cfg.MaxRetries,
		retryDelay: cfg.RetryDelay,
		client:     &http.Client{Timeout: cfg.Timeout},
		logger:     slog.Default().With("component", "embedding"),
	}, nil
}

// embeddingRequest is the request body for the embedding API
type embeddingRequest struct {
	Input string `json:"input"`
	Model string `json:"model"`
}

// embeddingResponse is the response from the embedding API
type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
		Code    string `json:"code"`
	} `json:"error,omitempty"`
}

// Embed generates embeddings for multiple texts. Texts are processed in
// batches; within a batch each text is one request with retry. Empty
// texts are skipped, so the result may be shorter than the input.
func (e *OpenAIEmbedding) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, fmt.Errorf("%w: empty text list", domain.ErrInvalidInput)
	}

	embeddings := make([][]float32, 0, len(texts))
	batches := (len(texts) + e.batchSize - 1) / e.batchSize

	for i := 0; i < len(texts); i += e.batchSize {
		end := i + e.batchSize
		if end > len(texts) {
			end = len(texts)
		}

		e.logger.Debug("processing embedding batch", "batch", i/e.batchSize+1, "total", batches)

		for _, text := range texts[i:end] {
			if strings.TrimSpace(text) == "" {
				e.logger.Warn("skipping empty text in embedding input")
				continue
			}

			embedding, err := e.embedWithRetry(ctx, text)
			if err != nil {
				return nil, err
			}
			embeddings = append(embeddings, embedding)
		}
	}

	return embeddings, nil
}

// EmbedQuery generates an embedding for a search query
func (e *OpenAIEmbedding) EmbedQuery(ctx context.Context, query string) ([]float32, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}

	return e.embedWithRetry(ctx, query)
}

// Dimensions returns the embedding dimension size
func (e *OpenAIEmbedding) Dimensions() int {
	return e.dimensions
}

// Model returns the model name being used
func (e *OpenAIEmbedding) Model() string {
	return e.model
}

// HealthCheck verifies the embedding service is available
func (e *OpenAIEmbedding) HealthCheck(ctx context.Context) error {
	_, err := e.EmbedQuery(ctx, "health check")
	return err
}

// Close releases resources held by the embedding service
func (e *OpenAIEmbedding) Close() error {
	e.client.CloseIdleConnections()
	return nil
}

// embedWithRetry issues one embedding request with bounded retry.
// The delay before retrying after attempt k is retryDelay * k.
func (e *OpenAIEmbedding) embedWithRetry(ctx context.Context, text string) ([]float32, error) {
	var lastErr error

	for attempt := 1; attempt <= e.maxRetries; attempt++ {
		embedding, err := e.doRequest(ctx, text)
		if err == nil {
			return embedding, nil
		}
		lastErr = err
		e.logger.Warn("embedding attempt failed",
			"attempt", attempt, "max_retries", e.maxRetries, "error", err)

		if attempt < e.maxRetries {
			if err := sleep(ctx, e.retryDelay*time.Duration(attempt)); err != nil {
				return nil, err
			}
		}
	}

	return nil, fmt.Errorf("embedding failed after %d attempts: %w", e.maxRetries, lastErr)
}

// doRequest makes a single request to the embedding API and validates
// the response shape
func (e *OpenAIEmbedding) doRequest(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embeddingRequest{Input: text, Model: e.model})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, e.baseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+e.apiKey)

	resp, err := e.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrUpstream, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, respBody)
	}

	var embResp embeddingResponse
	if err := json.Unmarshal(respBody, &embResp); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidUpstreamResponse, err)
	}

	if err := validateResponse(&embResp); err != nil {
		return nil, err
	}

	return embResp.Data[0].Embedding, nil
}

// validateResponse rejects 2xx responses that do not carry usable data
func validateResponse(resp *embeddingResponse) error {
	if len(resp.Data) == 0 {
		return fmt.Errorf("%w: no embedding data", domain.ErrInvalidUpstreamResponse)
	}
	if len(resp.Data[0].Embedding) == 0 {
		return fmt.Errorf("%w: empty embedding vector", domain.ErrInvalidUpstreamResponse)
	}
	if resp.Model == "" {
		return fmt.Errorf("%w: missing model", domain.ErrInvalidUpstreamResponse)
	}
	return nil
}

// statusError maps upstream HTTP status codes onto domain errors so
// callers can distinguish rate limiting from outright failure
func statusError(status int, body []byte) error {
	message := upstreamMessage(body)

	switch status {
	case http.StatusBadRequest:
		return fmt.Errorf("%w: %s", domain.ErrInvalidInput, message)
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, message)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrForbidden, message)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, message)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, message)
	default:
		return fmt.Errorf("%w: status %d: %s", domain.ErrUpstream, status, message)
	}
}

// upstreamMessage extracts the error message from an API error body
func upstreamMessage(body []byte) string {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		return errResp.Error.Message
	}
	return strings.TrimSpace(string(body))
}

// sleep waits for the given duration or until the context is cancelled
func sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
