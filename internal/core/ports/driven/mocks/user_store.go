package mocks

import (
	"context"
	"sync"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// MockUserStore is an in-memory mock implementation of UserStore for testing
type MockUserStore struct {
	mu    sync.RWMutex
	users map[string]*domain.User
}

// NewMockUserStore creates a new MockUserStore
func NewMockUserStore() *MockUserStore {
	return &MockUserStore{
		users: make(map[string]*domain.User),
	}
}

func (m *MockUserStore) Save(ctx context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *MockUserStore) Get(ctx context.Context, id string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	user, ok := m.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	copied := *user
	return &copied, nil
}

func (m *MockUserStore) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, user := range m.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (m *MockUserStore) List(ctx context.Context) ([]*domain.User, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	users := make([]*domain.User, 0, len(m.users))
	for _, user := range m.users {
		copied := *user
		users = append(users, &copied)
	}
	return users, nil
}

func (m *MockUserStore) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return domain.ErrNotFound
	}
	delete(m.users, id)
	return nil
}

func (m *MockUserStore) Count(ctx context.Context) (int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.users), nil
}
