package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// MockDocumentStore is an in-memory mock implementation of DocumentStore for testing
type MockDocumentStore struct {
	mu   sync.RWMutex
	docs map[string]*domain.Document

	// SaveErr makes Save fail when set
	SaveErr error
}

// NewMockDocumentStore creates a new MockDocumentStore
func NewMockDocumentStore() *MockDocumentStore {
	return &MockDocumentStore{
		docs: make(map[string]*domain.Document),
	}
}

func (m *MockDocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *doc
	m.docs[doc.ID] = &copied
	return nil
}

func (m *MockDocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	doc, ok := m.docs[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *doc
	return &copied, nil
}

func (m *MockDocumentStore) List(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	ids := make([]string, 0, len(m.docs))
	for id := range m.docs {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var docs []*domain.Document
	for i, id := range ids {
		if i < offset {
			continue
		}
		if limit > 0 && len(docs) >= limit {
			break
		}
		copied := *m.docs[id]
		docs = append(docs, &copied)
	}
	return docs, nil
}

func (m *MockDocumentStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.docs, id)
	return nil
}

func (m *MockDocumentStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.docs), nil
}
