package driving

import (
	"context"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// AskService answers questions grounded on role-filtered retrieval
type AskService interface {
	// Ask retrieves chunks the user's roles allow, assembles them into a
	// context block, and generates an answer. An empty retrieval result
	// short-circuits with a fixed "no relevant content" answer.
	Ask(ctx context.Context, question string, roles []string) (*domain.AskResult, error)
}
