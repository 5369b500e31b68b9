package driving

import (
	"context"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// DocumentService manages document lifecycle: metadata persistence plus
// the derived chunks in the vector index
type DocumentService interface {
	// Create persists a new document and indexes its chunks.
	// Returns the stored document and the indexing outcome.
	Create(ctx context.Context, doc *domain.Document) (*domain.Document, *domain.IndexingResult, error)

	// Update replaces a document's content and re-indexes it: existing
	// chunks are removed before the new ones are inserted.
	// Fails with domain.ErrIndexingInProgress if another indexing run
	// holds the document lock.
	Update(ctx context.Context, doc *domain.Document) (*domain.Document, *domain.IndexingResult, error)

	// Delete removes the document and all of its indexed chunks
	Delete(ctx context.Context, id string) error

	// Get retrieves a document by ID
	Get(ctx context.Context, id string) (*domain.Document, error)

	// List retrieves documents with pagination
	List(ctx context.Context, limit, offset int) ([]*domain.Document, error)
}
