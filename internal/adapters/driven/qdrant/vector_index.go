// Package qdrant implements the VectorIndex port against the Qdrant
// REST API.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.VectorIndex = (*VectorIndex)(nil)

// VectorIndex implements driven.VectorIndex using Qdrant
type VectorIndex struct {
	baseURL    string
	apiKey     string
	collection string
	httpClient *http.Client
}

// Config holds Qdrant connection configuration
type Config struct {
	// BaseURL is the Qdrant endpoint (e.g., http://localhost:6333)
	BaseURL string

	// APIKey is sent in the api-key header when set
	APIKey string

	// Collection is the collection points are written to
	Collection string

	// Timeout for HTTP requests
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults
func DefaultConfig(baseURL string) Config {
	return Config{
		BaseURL:    baseURL,
		Collection: "documents",
		Timeout:    30 * time.Second,
	}
}

// NewVectorIndex creates a new Qdrant-backed VectorIndex
func NewVectorIndex(cfg Config) *VectorIndex {
	if cfg.Collection == "" {
		cfg.Collection = "documents"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Second
	}
	return &VectorIndex{
		baseURL:    strings.TrimSuffix(cfg.BaseURL, "/"),
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

// EnsureCollection creates the collection if it does not exist.
// Idempotent: an existing collection is left untouched.
func (v *VectorIndex) EnsureCollection(ctx context.Context, dimensions int) error {
	status, _, err := v.do(ctx, http.MethodGet, v.collectionURL(), nil)
	if err != nil {
		return err
	}
	if status == http.StatusOK {
		return nil
	}
	if status != http.StatusNotFound {
		return fmt.Errorf("qdrant collection check failed: status %d", status)
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimensions,
			"distance": "Cosine",
		},
	}
	status, respBody, err := v.do(ctx, http.MethodPut, v.collectionURL(), body)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("qdrant create collection failed: status %d: %s", status, respBody)
	}
	return nil
}

// UpsertPoints inserts or replaces points. The call waits for the write
// to be applied so a follow-up search sees the new points.
func (v *VectorIndex) UpsertPoints(ctx context.Context, points []domain.VectorPoint) error {
	if len(points) == 0 {
		return nil
	}

	qdrantPoints := make([]map[string]any, len(points))
	for i, p := range points {
		qdrantPoints[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": p.Payload,
		}
	}

	url := fmt.Sprintf("%s/points?wait=true", v.collectionURL())
	status, respBody, err := v.do(ctx, http.MethodPut, url, map[string]any{"points": qdrantPoints})
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("qdrant upsert failed: status %d: %s", status, respBody)
	}
	return nil
}

// searchResponse is the Qdrant search result envelope
type searchResponse struct {
	Result []struct {
		ID      any            `json:"id"`
		Score   float32        `json:"score"`
		Payload map[string]any `json:"payload"`
	} `json:"result"`
}

// Search performs an unfiltered similarity search
func (v *VectorIndex) Search(ctx context.Context, vector []float32, limit int, scoreThreshold float32) ([]domain.ScoredPoint, error) {
	return v.SearchWithFilter(ctx, vector, nil, limit, scoreThreshold)
}

// SearchWithFilter performs a similarity search constrained by a payload
// filter. Payloads are requested; vectors are not.
func (v *VectorIndex) SearchWithFilter(ctx context.Context, vector []float32, filter *domain.Filter, limit int, scoreThreshold float32) ([]domain.ScoredPoint, error) {
	body := map[string]any{
		"vector":       vector,
		"limit":        limit,
		"with_payload": true,
		"with_vector":  false,
	}
	if scoreThreshold > 0 {
		body["score_threshold"] = scoreThreshold
	}
	if !filter.IsEmpty() {
		body["filter"] = encodeFilter(filter)
	}

	url := fmt.Sprintf("%s/points/search", v.collectionURL())
	status, respBody, err := v.do(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, err
	}
	if status >= 400 {
		return nil, fmt.Errorf("qdrant search failed: status %d: %s", status, respBody)
	}

	var searchResp searchResponse
	if err := json.Unmarshal(respBody, &searchResp); err != nil {
		return nil, fmt.Errorf("failed to parse search response: %w", err)
	}

	points := make([]domain.ScoredPoint, 0, len(searchResp.Result))
	for _, hit := range searchResp.Result {
		points = append(points, domain.ScoredPoint{
			ID:      pointID(hit.ID),
			Score:   hit.Score,
			Payload: hit.Payload,
		})
	}
	return points, nil
}

// DeletePoints deletes points by id. Missing ids are not an error.
func (v *VectorIndex) DeletePoints(ctx context.Context, ids []string) error {
	if len(ids) == 0 {
		return nil
	}

	url := fmt.Sprintf("%s/points/delete?wait=true", v.collectionURL())
	status, respBody, err := v.do(ctx, http.MethodPost, url, map[string]any{"points": ids})
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("qdrant delete failed: status %d: %s", status, respBody)
	}
	return nil
}

// HealthCheck verifies the index is reachable
func (v *VectorIndex) HealthCheck(ctx context.Context) error {
	status, _, err := v.do(ctx, http.MethodGet, v.baseURL+"/collections", nil)
	if err != nil {
		return err
	}
	if status >= 400 {
		return fmt.Errorf("qdrant health check failed: status %d", status)
	}
	return nil
}

func (v *VectorIndex) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", v.baseURL, v.collection)
}

// do issues one request and returns status plus body. Non-2xx statuses
// are returned to the caller, not treated as transport errors.
func (v *VectorIndex) do(ctx context.Context, method, url string, body any) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return 0, nil, fmt.Errorf("failed to marshal request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if v.apiKey != "" {
		req.Header.Set("api-key", v.apiKey)
	}

	resp, err := v.httpClient.Do(req)
	if err != nil {
		return 0, nil, fmt.Errorf("qdrant request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("failed to read response: %w", err)
	}
	return resp.StatusCode, respBody, nil
}

// encodeFilter converts the domain filter into Qdrant's filter JSON
func encodeFilter(filter *domain.Filter) map[string]any {
	encoded := make(map[string]any)
	if len(filter.Must) > 0 {
		encoded["must"] = encodeConditions(filter.Must)
	}
	if len(filter.Should) > 0 {
		encoded["should"] = encodeConditions(filter.Should)
	}
	return encoded
}

func encodeConditions(conds []domain.FieldCondition) []map[string]any {
	encoded := make([]map[string]any, len(conds))
	for i, cond := range conds {
		match := make(map[string]any)
		if len(cond.Any) > 0 {
			match["any"] = cond.Any
		} else {
			match["value"] = cond.Value
		}
		encoded[i] = map[string]any{
			"key":   cond.Key,
			"match": match,
		}
	}
	return encoded
}

// pointID renders a Qdrant point id (string or number) as a string
func pointID(id any) string {
	switch v := id.(type) {
	case string:
		return v
	case float64:
		return fmt.Sprintf("%.0f", v)
	default:
		return fmt.Sprintf("%v", v)
	}
}
