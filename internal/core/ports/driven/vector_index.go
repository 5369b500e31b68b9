package driven

import (
	"context"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// VectorIndex stores vectors with payloads and supports similarity
// search, plain and filtered, plus deletion by id (Qdrant)
type VectorIndex interface {
	// EnsureCollection creates the collection with the given vector
	// dimensions if it does not exist. Idempotent.
	EnsureCollection(ctx context.Context, dimensions int) error

	// UpsertPoints inserts or replaces points
	UpsertPoints(ctx context.Context, points []domain.VectorPoint) error

	// Search performs an unfiltered similarity search
	Search(ctx context.Context, vector []float32, limit int, scoreThreshold float32) ([]domain.ScoredPoint, error)

	// SearchWithFilter performs a similarity search constrained by a
	// payload filter. Payloads are returned; vectors are not.
	SearchWithFilter(ctx context.Context, vector []float32, filter *domain.Filter, limit int, scoreThreshold float32) ([]domain.ScoredPoint, error)

	// DeletePoints deletes points by id. Missing ids are not an error.
	DeletePoints(ctx context.Context, ids []string) error

	// HealthCheck verifies the index is reachable
	HealthCheck(ctx context.Context) error
}
