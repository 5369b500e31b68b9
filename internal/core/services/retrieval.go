package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driving"
)

// Ensure retrievalService implements RetrievalService
var _ driving.RetrievalService = (*retrievalService)(nil)

// defaultRetrievalLimit caps how many chunks one retrieval returns
const defaultRetrievalLimit = 10

// retrievalService implements the RetrievalService interface. This is
// the security-critical read path: every search is filtered by the
// user's expanded roles before it reaches the index.
type retrievalService struct {
	embedder  driven.EmbeddingService
	index     driven.VectorIndex
	hierarchy domain.RoleHierarchy
	logger    *slog.Logger
}

// RetrievalConfig holds the retrieval service dependencies
type RetrievalConfig struct {
	Embedder driven.EmbeddingService
	Index    driven.VectorIndex

	// Hierarchy orders roles from least to most privileged
	Hierarchy domain.RoleHierarchy
}

// NewRetrievalService creates a new RetrievalService
func NewRetrievalService(cfg RetrievalConfig) driving.RetrievalService {
	hierarchy := cfg.Hierarchy
	if len(hierarchy) == 0 {
		hierarchy = domain.DefaultRoleHierarchy()
	}
	return &retrievalService{
		embedder:  cfg.Embedder,
		index:     cfg.Index,
		hierarchy: hierarchy,
		logger:    slog.Default().With("component", "retrieval"),
	}
}

// SearchChunks performs a role-filtered similarity search. No roles
// means no access: the empty role set returns an empty result without
// touching the index.
func (s *retrievalService) SearchChunks(ctx context.Context, query string, roles []string) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if len(roles) == 0 {
		s.logger.Warn("search with no roles denied")
		return []domain.ScoredChunk{}, nil
	}

	expanded := s.hierarchy.Expand(roles)
	if len(expanded) == 0 {
		// Only unknown roles: nothing is accessible
		s.logger.Warn("search with unrecognized roles denied", "roles", roles)
		return []domain.ScoredChunk{}, nil
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	points, err := s.index.SearchWithFilter(ctx, vector, domain.MatchAnyRole(expanded), defaultRetrievalLimit, 0)
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	chunks := dedupeByText(scoredChunks(points))
	s.logger.Info("chunks retrieved", "query_len", len(query), "roles", expanded, "count", len(chunks))
	return chunks, nil
}

// SearchDocuments performs a role-filtered document search. The filter
// is a should-composition of the user's roles plus public, so public
// content matches regardless of the role set.
func (s *retrievalService) SearchDocuments(ctx context.Context, query string, roles []string, limit int, scoreThreshold float32) ([]domain.DocumentHit, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = defaultRetrievalLimit
	}

	matchRoles := append(s.hierarchy.Expand(roles), domain.RolePublic)
	filter := &domain.Filter{
		Should: []domain.FieldCondition{{Key: "requiredRole", Any: matchRoles}},
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	points, err := s.index.SearchWithFilter(ctx, vector, filter, limit, scoreThreshold)
	if err != nil {
		return nil, fmt.Errorf("search documents: %w", err)
	}

	hits := make([]domain.DocumentHit, 0, len(points))
	for _, p := range points {
		documentID, _ := p.Payload["documentId"].(string)
		sourceName, _ := p.Payload["sourceName"].(string)
		requiredRole, _ := p.Payload["requiredRole"].(string)
		text, _ := p.Payload["text"].(string)
		hits = append(hits, domain.DocumentHit{
			DocumentID:   documentID,
			SourceName:   sourceName,
			RequiredRole: requiredRole,
			Text:         text,
			Score:        p.Score,
		})
	}
	return hits, nil
}

// dedupeByText drops chunks whose text was already seen, preserving the
// first occurrence. Re-indexing races can leave near-duplicate points in
// the index; duplicated context is useless to the caller.
func dedupeByText(chunks []domain.ScoredChunk) []domain.ScoredChunk {
	seen := make(map[string]bool, len(chunks))
	deduped := make([]domain.ScoredChunk, 0, len(chunks))
	for _, chunk := range chunks {
		if seen[chunk.Text] {
			continue
		}
		seen[chunk.Text] = true
		deduped = append(deduped, chunk)
	}
	return deduped
}
