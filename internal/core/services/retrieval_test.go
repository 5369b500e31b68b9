package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven/mocks"
)

// seedCorpus indexes one chunk per role level
func seedCorpus(t *testing.T, index *mocks.MockVectorIndex) {
	t.Helper()
	err := index.UpsertPoints(context.Background(), []domain.VectorPoint{
		{ID: "p-viewer", Vector: []float32{0.1}, Payload: map[string]any{
			"text": "viewer content", "requiredRole": "viewer", "documentId": "d1", "sourceName": "Public FAQ",
		}},
		{ID: "p-employee", Vector: []float32{0.2}, Payload: map[string]any{
			"text": "employee content", "requiredRole": "employee", "documentId": "d2", "sourceName": "Handbook",
		}},
		{ID: "p-admin", Vector: []float32{0.3}, Payload: map[string]any{
			"text": "admin content", "requiredRole": "admin", "documentId": "d3", "sourceName": "Board Minutes",
		}},
	})
	require.NoError(t, err)
}

func newTestRetrieval(index *mocks.MockVectorIndex) *retrievalService {
	return NewRetrievalService(RetrievalConfig{
		Embedder:  mocks.NewMockEmbeddingService(),
		Index:     index,
		Hierarchy: domain.RoleHierarchy{"viewer", "employee", "admin"},
	}).(*retrievalService)
}

func resultTexts(chunks []domain.ScoredChunk) []string {
	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Text
	}
	return texts
}

func TestSearchChunksRoleFiltering(t *testing.T) {
	index := mocks.NewMockVectorIndex()
	seedCorpus(t, index)
	svc := newTestRetrieval(index)
	ctx := context.Background()

	// Employee sees viewer + employee content, never admin content
	chunks, err := svc.SearchChunks(ctx, "content", []string{"employee"})
	require.NoError(t, err)

	texts := resultTexts(chunks)
	assert.Contains(t, texts, "viewer content")
	assert.Contains(t, texts, "employee content")
	assert.NotContains(t, texts, "admin content")

	// Admin sees everything
	chunks, err = svc.SearchChunks(ctx, "content", []string{"admin"})
	require.NoError(t, err)
	assert.Len(t, chunks, 3)
}

func TestSearchChunksFailClosed(t *testing.T) {
	index := mocks.NewMockVectorIndex()
	seedCorpus(t, index)
	svc := newTestRetrieval(index)
	ctx := context.Background()

	// No roles means no access, not unrestricted access
	chunks, err := svc.SearchChunks(ctx, "content", nil)
	require.NoError(t, err)
	assert.Empty(t, chunks)

	// Unknown roles expand to nothing and are equally denied
	chunks, err = svc.SearchChunks(ctx, "content", []string{"contractor"})
	require.NoError(t, err)
	assert.Empty(t, chunks)

	// Neither case may touch the index
	assert.Empty(t, index.SearchFilters)
}

func TestSearchChunksMonotonicity(t *testing.T) {
	index := mocks.NewMockVectorIndex()
	seedCorpus(t, index)
	svc := newTestRetrieval(index)
	ctx := context.Background()

	lower, err := svc.SearchChunks(ctx, "content", []string{"viewer"})
	require.NoError(t, err)
	higher, err := svc.SearchChunks(ctx, "content", []string{"employee"})
	require.NoError(t, err)

	// A higher role receives at least everything the lower role does
	higherTexts := resultTexts(higher)
	for _, text := range resultTexts(lower) {
		assert.Contains(t, higherTexts, text)
	}
}

func TestSearchChunksDedup(t *testing.T) {
	index := mocks.NewMockVectorIndex()
	// Two points with identical text, as left behind by a re-indexing race
	err := index.UpsertPoints(context.Background(), []domain.VectorPoint{
		{ID: "a", Vector: []float32{0.1}, Payload: map[string]any{"text": "duplicate", "requiredRole": "viewer"}},
		{ID: "b", Vector: []float32{0.1}, Payload: map[string]any{"text": "duplicate", "requiredRole": "viewer"}},
		{ID: "c", Vector: []float32{0.2}, Payload: map[string]any{"text": "unique", "requiredRole": "viewer"}},
	})
	require.NoError(t, err)

	svc := newTestRetrieval(index)

	chunks, err := svc.SearchChunks(context.Background(), "anything", []string{"viewer"})
	require.NoError(t, err)

	assert.Len(t, chunks, 2)
	assert.ElementsMatch(t, []string{"duplicate", "unique"}, resultTexts(chunks))
	// First occurrence wins
	assert.Equal(t, "a", chunks[0].ID)
}

func TestSearchChunksEmptyQuery(t *testing.T) {
	svc := newTestRetrieval(mocks.NewMockVectorIndex())

	_, err := svc.SearchChunks(context.Background(), "  ", []string{"viewer"})
	assert.ErrorIs(t, err, domain.ErrInvalidInput)
}

func TestSearchChunksFilterShape(t *testing.T) {
	index := mocks.NewMockVectorIndex()
	seedCorpus(t, index)
	svc := newTestRetrieval(index)

	_, err := svc.SearchChunks(context.Background(), "content", []string{"employee"})
	require.NoError(t, err)

	require.Len(t, index.SearchFilters, 1)
	filter := index.SearchFilters[0]
	require.Len(t, filter.Must, 1)
	assert.Equal(t, "requiredRole", filter.Must[0].Key)
	assert.Equal(t, []string{"viewer", "employee"}, filter.Must[0].Any)
}

func TestSearchDocumentsIncludesPublic(t *testing.T) {
	index := mocks.NewMockVectorIndex()
	err := index.UpsertPoints(context.Background(), []domain.VectorPoint{
		{ID: "pub", Vector: []float32{0.1}, Payload: map[string]any{
			"text": "public notice", "requiredRole": "public", "documentId": "d-pub", "sourceName": "Notice Board",
		}},
		{ID: "emp", Vector: []float32{0.2}, Payload: map[string]any{
			"text": "internal memo", "requiredRole": "employee", "documentId": "d-emp", "sourceName": "Memos",
		}},
	})
	require.NoError(t, err)

	svc := newTestRetrieval(index)

	hits, err := svc.SearchDocuments(context.Background(), "notice", []string{"viewer"}, 10, 0)
	require.NoError(t, err)

	var texts []string
	for _, h := range hits {
		texts = append(texts, h.Text)
	}
	assert.Contains(t, texts, "public notice")
	assert.NotContains(t, texts, "internal memo")

	for _, h := range hits {
		if h.Text == "public notice" {
			assert.Equal(t, "d-pub", h.DocumentID)
			assert.Equal(t, "Notice Board", h.SourceName)
		}
	}
}
