package driving

import (
	"context"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// IndexerService orchestrates ingestion of document content into the
// vector index: chunk, embed in batches, upsert with metadata
type IndexerService interface {
	// ChunkAndIndex splits content into chunks, embeds them in batches,
	// and upserts the resulting points. A failed batch counts toward
	// FailedChunks and does not abort the remaining batches.
	// Fails with domain.ErrInvalidInput when content or documentID is
	// empty after trim.
	ChunkAndIndex(ctx context.Context, content, documentID string, chunkOpts domain.ChunkingOptions, idxOpts domain.IndexingOptions) (*domain.IndexingResult, error)

	// RemoveDocumentChunks deletes every indexed chunk of a document and
	// returns how many were removed. Zero removed is a normal outcome,
	// not an error.
	RemoveDocumentChunks(ctx context.Context, documentID string) (int, error)

	// SearchSimilarChunks embeds the query and searches the index,
	// optionally constrained by a payload filter
	SearchSimilarChunks(ctx context.Context, query string, limit int, scoreThreshold float32, filter *domain.Filter) ([]domain.ScoredChunk, error)
}
