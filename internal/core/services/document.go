package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driving"
)

// Ensure documentService implements DocumentService
var _ driving.DocumentService = (*documentService)(nil)

// indexLockTTL bounds how long one document's indexing can hold the lock
const indexLockTTL = 5 * time.Minute

// documentService implements the DocumentService interface. It owns the
// remove-then-reindex sequence and serializes it per document with a
// distributed lock so concurrent re-indexes cannot interleave deletes
// and inserts.
type documentService struct {
	store   driven.DocumentStore
	indexer driving.IndexerService
	lock    driven.DistributedLock
	logger  *slog.Logger
}

// DocumentConfig holds the document service dependencies
type DocumentConfig struct {
	Store   driven.DocumentStore
	Indexer driving.IndexerService
	Lock    driven.DistributedLock
}

// NewDocumentService creates a new DocumentService
func NewDocumentService(cfg DocumentConfig) driving.DocumentService {
	return &documentService{
		store:   cfg.Store,
		indexer: cfg.Indexer,
		lock:    cfg.Lock,
		logger:  slog.Default().With("component", "documents"),
	}
}

// Create persists a new document and indexes its chunks
func (s *documentService) Create(ctx context.Context, doc *domain.Document) (*domain.Document, *domain.IndexingResult, error) {
	if err := doc.Validate(); err != nil {
		return nil, nil, err
	}
	if doc.ID == "" {
		doc.ID = generateID()
	}
	now := time.Now()
	doc.CreatedAt = now
	doc.UpdatedAt = now

	release, err := s.acquireIndexLock(ctx, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	if err := s.store.Save(ctx, doc); err != nil {
		return nil, nil, fmt.Errorf("save document: %w", err)
	}

	result, err := s.indexDocument(ctx, doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, result, nil
}

// Update replaces a document's content and re-indexes it. Existing
// chunks are removed before the new ones are inserted, all under the
// per-document lock.
func (s *documentService) Update(ctx context.Context, doc *domain.Document) (*domain.Document, *domain.IndexingResult, error) {
	if doc.ID == "" {
		return nil, nil, fmt.Errorf("%w: missing document id", domain.ErrInvalidInput)
	}
	if err := doc.Validate(); err != nil {
		return nil, nil, err
	}

	existing, err := s.store.Get(ctx, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	doc.CreatedAt = existing.CreatedAt
	doc.UpdatedAt = time.Now()

	release, err := s.acquireIndexLock(ctx, doc.ID)
	if err != nil {
		return nil, nil, err
	}
	defer release()

	if _, err := s.indexer.RemoveDocumentChunks(ctx, doc.ID); err != nil {
		return nil, nil, fmt.Errorf("remove old chunks: %w", err)
	}
	if err := s.store.Save(ctx, doc); err != nil {
		return nil, nil, fmt.Errorf("save document: %w", err)
	}

	result, err := s.indexDocument(ctx, doc)
	if err != nil {
		return nil, nil, err
	}
	return doc, result, nil
}

// Delete removes the document and all of its indexed chunks
func (s *documentService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return fmt.Errorf("%w: missing document id", domain.ErrInvalidInput)
	}

	release, err := s.acquireIndexLock(ctx, id)
	if err != nil {
		return err
	}
	defer release()

	removed, err := s.indexer.RemoveDocumentChunks(ctx, id)
	if err != nil {
		return fmt.Errorf("remove chunks: %w", err)
	}
	if err := s.store.Delete(ctx, id); err != nil {
		return err
	}

	s.logger.Info("document deleted", "document_id", id, "chunks_removed", removed)
	return nil
}

// Get retrieves a document by ID
func (s *documentService) Get(ctx context.Context, id string) (*domain.Document, error) {
	return s.store.Get(ctx, id)
}

// List retrieves documents with pagination
func (s *documentService) List(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}
	return s.store.List(ctx, limit, offset)
}

// indexDocument runs chunk-and-index with the document's fields as base
// payload metadata
func (s *documentService) indexDocument(ctx context.Context, doc *domain.Document) (*domain.IndexingResult, error) {
	opts := domain.DefaultIndexingOptions()
	opts.BaseMetadata = map[string]any{
		"sourceName":   doc.SourceName,
		"requiredRole": doc.RequiredRole,
	}

	result, err := s.indexer.ChunkAndIndex(ctx, doc.Content, doc.ID, domain.DefaultChunkingOptions(), opts)
	if err != nil {
		return nil, fmt.Errorf("index document: %w", err)
	}
	return result, nil
}

// acquireIndexLock takes the per-document lock or reports that another
// indexing run holds it
func (s *documentService) acquireIndexLock(ctx context.Context, documentID string) (func(), error) {
	name := "index:" + documentID
	acquired, err := s.lock.Acquire(ctx, name, indexLockTTL)
	if err != nil {
		return nil, fmt.Errorf("acquire index lock: %w", err)
	}
	if !acquired {
		return nil, fmt.Errorf("%w: document %s", domain.ErrIndexingInProgress, documentID)
	}

	return func() {
		if err := s.lock.Release(ctx, name); err != nil {
			s.logger.Warn("failed to release index lock", "document_id", documentID, "error", err)
		}
	}, nil
}
