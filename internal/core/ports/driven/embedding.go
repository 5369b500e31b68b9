package driven

import (
	"context"
)

// EmbeddingService generates text embeddings. Implementations hide
// batching, retry, and upstream error mapping behind this interface.
type EmbeddingService interface {
	// Embed generates embeddings for multiple texts. Empty strings inside
	// the list are skipped, so the result may be shorter than the input.
	// An empty list fails with domain.ErrInvalidInput.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// EmbedQuery generates an embedding for a search query.
	// Fails with domain.ErrInvalidInput on empty/whitespace text.
	EmbedQuery(ctx context.Context, query string) ([]float32, error)

	// Dimensions returns the embedding dimension size
	Dimensions() int

	// Model returns the model name being used
	Model() string

	// HealthCheck verifies the embedding service is available
	HealthCheck(ctx context.Context) error

	// Close releases resources held by the embedding service
	Close() error
}
