package mocks

import (
	"context"
	"sync"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// MockSessionStore is an in-memory mock implementation of SessionStore for testing
type MockSessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*domain.Session
}

// NewMockSessionStore creates a new MockSessionStore
func NewMockSessionStore() *MockSessionStore {
	return &MockSessionStore{
		sessions: make(map[string]*domain.Session),
	}
}

func (m *MockSessionStore) Save(ctx context.Context, session *domain.Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *session
	m.sessions[session.ID] = &copied
	return nil
}

func (m *MockSessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	session, ok := m.sessions[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *session
	return &copied, nil
}

func (m *MockSessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, session := range m.sessions {
		if session.Token == token {
			copied := *session
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, session := range m.sessions {
		if session.RefreshToken == refreshToken {
			copied := *session
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockSessionStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, id)
	return nil
}

func (m *MockSessionStore) DeleteByUser(ctx context.Context, userID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, session := range m.sessions {
		if session.UserID == userID {
			delete(m.sessions, id)
		}
	}
	return nil
}

// Count returns the number of stored sessions (for test assertions)
func (m *MockSessionStore) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.sessions)
}
