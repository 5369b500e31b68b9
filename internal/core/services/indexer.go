package services

import (
	"context"
	"crypto/rand"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driving"
)

// Ensure indexerService implements IndexerService
var _ driving.IndexerService = (*indexerService)(nil)

// removeScanLimit bounds the metadata scan used by RemoveDocumentChunks
const removeScanLimit = 1000

// indexerService implements the IndexerService interface: it orchestrates
// chunking, batched embedding, and vector upserts for one document.
type indexerService struct {
	chunker  driven.TextChunker
	embedder driven.EmbeddingService
	index    driven.VectorIndex
	logger   *slog.Logger
}

// IndexerConfig holds the indexer service dependencies
type IndexerConfig struct {
	Chunker  driven.TextChunker
	Embedder driven.EmbeddingService
	Index    driven.VectorIndex
}

// NewIndexerService creates a new IndexerService
func NewIndexerService(cfg IndexerConfig) driving.IndexerService {
	return &indexerService{
		chunker:  cfg.Chunker,
		embedder: cfg.Embedder,
		index:    cfg.Index,
		logger:   slog.Default().With("component", "indexer"),
	}
}

// ChunkAndIndex splits content into chunks and indexes them in batches.
// Batches are processed sequentially; a failed batch counts toward
// FailedChunks and processing continues with the next batch.
func (s *indexerService) ChunkAndIndex(ctx context.Context, content, documentID string, chunkOpts domain.ChunkingOptions, idxOpts domain.IndexingOptions) (*domain.IndexingResult, error) {
	if strings.TrimSpace(content) == "" {
		return nil, fmt.Errorf("%w: empty content", domain.ErrInvalidInput)
	}
	if strings.TrimSpace(documentID) == "" {
		return nil, fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}
	if idxOpts.BatchSize <= 0 {
		idxOpts.BatchSize = domain.DefaultIndexingOptions().BatchSize
	}

	start := time.Now()
	chunks := s.chunker.Split(content, chunkOpts)

	result := &domain.IndexingResult{TotalChunks: len(chunks)}
	for i := 0; i < len(chunks); i += idxOpts.BatchSize {
		end := i + idxOpts.BatchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		batch := chunks[i:end]

		if err := s.indexBatch(ctx, batch, documentID, idxOpts.BaseMetadata, i); err != nil {
			s.logger.Warn("batch failed",
				"document_id", documentID,
				"batch_start", i,
				"batch_size", len(batch),
				"error", err)
			result.FailedChunks += len(batch)
			continue
		}
		result.IndexedChunks += len(batch)
	}

	result.ProcessingTime = time.Since(start)
	s.logger.Info("document indexed",
		"document_id", documentID,
		"total", result.TotalChunks,
		"indexed", result.IndexedChunks,
		"failed", result.FailedChunks,
		"took", result.ProcessingTime)
	return result, nil
}

// indexBatch embeds one batch of chunks and upserts the points.
// firstIndex is the position of the batch's first chunk in the document.
func (s *indexerService) indexBatch(ctx context.Context, batch []domain.DocumentChunk, documentID string, baseMetadata map[string]any, firstIndex int) error {
	texts := make([]string, len(batch))
	for i, chunk := range batch {
		texts[i] = chunk.Text
	}

	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("embed batch: %w", err)
	}
	if len(vectors) != len(batch) {
		return fmt.Errorf("%w: got %d vectors for %d chunks", domain.ErrInvalidUpstreamResponse, len(vectors), len(batch))
	}

	points := make([]domain.VectorPoint, len(batch))
	for i, chunk := range batch {
		points[i] = domain.VectorPoint{
			ID:      newPointID(),
			Vector:  vectors[i],
			Payload: chunkPayload(chunk, documentID, baseMetadata, firstIndex+i),
		}
	}

	if err := s.index.UpsertPoints(ctx, points); err != nil {
		return fmt.Errorf("upsert batch: %w", err)
	}
	return nil
}

// chunkPayload builds a point payload with explicit merge precedence:
// base metadata first, then computed fields, then per-chunk metadata.
// Later writes win.
func chunkPayload(chunk domain.DocumentChunk, documentID string, baseMetadata map[string]any, chunkIndex int) map[string]any {
	payload := make(map[string]any, len(baseMetadata)+len(chunk.Metadata)+5)
	for k, v := range baseMetadata {
		payload[k] = v
	}

	payload["text"] = chunk.Text
	payload["documentId"] = documentID
	payload["chunkIndex"] = chunkIndex
	payload["startIndex"] = chunk.StartIndex
	payload["endIndex"] = chunk.EndIndex

	for k, v := range chunk.Metadata {
		payload[k] = v
	}
	return payload
}

// RemoveDocumentChunks deletes every indexed chunk of a document.
// The index has no metadata-only listing, so this scans with a zero
// query vector and a document filter, then deletes the matched ids.
func (s *indexerService) RemoveDocumentChunks(ctx context.Context, documentID string) (int, error) {
	if strings.TrimSpace(documentID) == "" {
		return 0, fmt.Errorf("%w: empty document id", domain.ErrInvalidInput)
	}

	zeroVector := make([]float32, s.embedder.Dimensions())
	points, err := s.index.SearchWithFilter(ctx, zeroVector, domain.MatchDocument(documentID), removeScanLimit, 0)
	if err != nil {
		return 0, fmt.Errorf("scan document chunks: %w", err)
	}
	if len(points) == 0 {
		return 0, nil
	}

	ids := make([]string, len(points))
	for i, p := range points {
		ids[i] = p.ID
	}
	if err := s.index.DeletePoints(ctx, ids); err != nil {
		return 0, fmt.Errorf("delete document chunks: %w", err)
	}

	s.logger.Info("document chunks removed", "document_id", documentID, "count", len(ids))
	return len(ids), nil
}

// SearchSimilarChunks embeds the query and searches the index
func (s *indexerService) SearchSimilarChunks(ctx context.Context, query string, limit int, scoreThreshold float32, filter *domain.Filter) ([]domain.ScoredChunk, error) {
	if strings.TrimSpace(query) == "" {
		return nil, fmt.Errorf("%w: empty query", domain.ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 10
	}

	vector, err := s.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}

	var points []domain.ScoredPoint
	if filter.IsEmpty() {
		points, err = s.index.Search(ctx, vector, limit, scoreThreshold)
	} else {
		points, err = s.index.SearchWithFilter(ctx, vector, filter, limit, scoreThreshold)
	}
	if err != nil {
		return nil, fmt.Errorf("search chunks: %w", err)
	}

	return scoredChunks(points), nil
}

// scoredChunks maps index hits back to chunk terms
func scoredChunks(points []domain.ScoredPoint) []domain.ScoredChunk {
	chunks := make([]domain.ScoredChunk, 0, len(points))
	for _, p := range points {
		text, _ := p.Payload["text"].(string)
		chunks = append(chunks, domain.ScoredChunk{
			ID:       p.ID,
			Text:     text,
			Score:    p.Score,
			Metadata: p.Payload,
		})
	}
	return chunks
}

// newPointID generates a random UUIDv4 string. Qdrant only accepts
// UUIDs or unsigned integers as point ids.
func newPointID() string {
	b := make([]byte, 16)
	_, _ = rand.Read(b)
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80
	return fmt.Sprintf("%x-%x-%x-%x-%x", b[0:4], b[4:6], b[6:8], b[8:10], b[10:16])
}
