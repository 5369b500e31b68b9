package domain

import "time"

// DocumentChunk is a contiguous span of a document's text, the unit of
// embedding and retrieval. Chunks are produced in-memory during ingestion
// and persisted only as vector points.
type DocumentChunk struct {
	ID         string         `json:"id"`
	Text       string         `json:"text"`
	StartIndex int            `json:"start_index"`
	EndIndex   int            `json:"end_index"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}

// ChunkingOptions controls how a document is split into chunks
type ChunkingOptions struct {
	// ChunkSize is the target maximum chunk length in characters
	ChunkSize int

	// ChunkOverlap is how many characters consecutive chunks share
	ChunkOverlap int

	// MinChunkSize is the minimum length for a chunk to be emitted
	MinChunkSize int

	// Separators is the break-point preference list, highest priority first
	Separators []string

	// PreserveFormatting keeps the original whitespace. When false,
	// whitespace runs are collapsed to single spaces and the text is trimmed.
	PreserveFormatting bool
}

// DefaultChunkingOptions returns the standard chunking configuration
func DefaultChunkingOptions() ChunkingOptions {
	return ChunkingOptions{
		ChunkSize:    400,
		ChunkOverlap: 50,
		MinChunkSize: 80,
		Separators:   []string{"\n\n", "\n", ".", "!", "?", ";", " "},
	}
}

// VectorPoint is the unit persisted in the vector index: an id, a
// fixed-dimension vector, and the payload stored alongside it.
// Points are never mutated in place - updates are delete then reinsert.
type VectorPoint struct {
	ID      string         `json:"id"`
	Vector  []float32      `json:"vector"`
	Payload map[string]any `json:"payload"`
}

// ScoredPoint is a vector index search hit
type ScoredPoint struct {
	ID      string         `json:"id"`
	Score   float32        `json:"score"`
	Payload map[string]any `json:"payload"`
}

// ScoredChunk is a retrieval result mapped back to chunk terms
type ScoredChunk struct {
	ID       string         `json:"id"`
	Text     string         `json:"text"`
	Score    float32        `json:"score"`
	Metadata map[string]any `json:"metadata,omitempty"`
}

// IndexingOptions controls how chunks are embedded and upserted
type IndexingOptions struct {
	// BatchSize is how many chunks are embedded and upserted per batch
	BatchSize int

	// BaseMetadata is merged into every point's payload. Computed fields
	// (text, documentId, chunkIndex, offsets) override base keys, and
	// per-chunk metadata overrides both.
	BaseMetadata map[string]any
}

// DefaultIndexingOptions returns the standard indexing configuration
func DefaultIndexingOptions() IndexingOptions {
	return IndexingOptions{BatchSize: 50}
}

// IndexingResult reports the outcome of indexing one document.
// Partial success is a first-class outcome: IndexedChunks + FailedChunks
// always equals TotalChunks.
type IndexingResult struct {
	TotalChunks    int           `json:"total_chunks"`
	IndexedChunks  int           `json:"indexed_chunks"`
	FailedChunks   int           `json:"failed_chunks"`
	ProcessingTime time.Duration `json:"processing_time"`
}
