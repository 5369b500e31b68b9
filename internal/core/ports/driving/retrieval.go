package driving

import (
	"context"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// RetrievalService is the access-controlled read path: it guarantees a
// user only retrieves chunks their roles entitle them to see
type RetrievalService interface {
	// SearchChunks embeds the query and performs a similarity search
	// filtered by the user's expanded roles. An empty role set returns an
	// empty result immediately (fail closed). Results are deduplicated by
	// text, preserving the first occurrence.
	SearchChunks(ctx context.Context, query string, roles []string) ([]domain.ScoredChunk, error)

	// SearchDocuments performs a role-filtered document search. Content
	// marked public matches regardless of the user's roles.
	SearchDocuments(ctx context.Context, query string, roles []string, limit int, scoreThreshold float32) ([]domain.DocumentHit, error)
}
