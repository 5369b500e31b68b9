package driven

import "github.com/corpora-labs/corpora-core/internal/core/domain"

// TextChunker deterministically splits text into overlapping,
// size-bounded chunks along natural boundaries
type TextChunker interface {
	// Split splits text into chunks. Identical input always produces
	// identical chunk boundaries. Empty or whitespace-only input is the
	// caller's responsibility to reject.
	Split(text string, opts domain.ChunkingOptions) []domain.DocumentChunk
}
