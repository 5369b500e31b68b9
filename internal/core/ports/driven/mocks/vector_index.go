package mocks

import (
	"context"
	"sort"
	"sync"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
)

// MockVectorIndex is an in-memory mock implementation of VectorIndex for testing
type MockVectorIndex struct {
	mu         sync.RWMutex
	points     map[string]domain.VectorPoint
	dimensions int

	// UpsertErr makes the next UpsertPoints call fail once when set
	UpsertErr error

	// SearchErr makes search calls fail when set
	SearchErr error

	// SearchFilters records the filters passed to SearchWithFilter
	SearchFilters []*domain.Filter
}

// NewMockVectorIndex creates a new MockVectorIndex
func NewMockVectorIndex() *MockVectorIndex {
	return &MockVectorIndex{
		points: make(map[string]domain.VectorPoint),
	}
}

func (m *MockVectorIndex) EnsureCollection(ctx context.Context, dimensions int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.dimensions = dimensions
	return nil
}

func (m *MockVectorIndex) UpsertPoints(ctx context.Context, points []domain.VectorPoint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.UpsertErr != nil {
		err := m.UpsertErr
		m.UpsertErr = nil
		return err
	}

	for _, p := range points {
		m.points[p.ID] = p
	}
	return nil
}

func (m *MockVectorIndex) Search(ctx context.Context, vector []float32, limit int, scoreThreshold float32) ([]domain.ScoredPoint, error) {
	return m.SearchWithFilter(ctx, vector, nil, limit, scoreThreshold)
}

func (m *MockVectorIndex) SearchWithFilter(ctx context.Context, vector []float32, filter *domain.Filter, limit int, scoreThreshold float32) ([]domain.ScoredPoint, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.SearchErr != nil {
		return nil, m.SearchErr
	}

	if filter != nil {
		m.SearchFilters = append(m.SearchFilters, filter)
	}

	var results []domain.ScoredPoint
	for _, p := range m.points {
		if !matchesFilter(p.Payload, filter) {
			continue
		}
		results = append(results, domain.ScoredPoint{
			ID:      p.ID,
			Score:   1.0,
			Payload: p.Payload,
		})
	}

	// Deterministic order for assertions
	sort.Slice(results, func(i, j int) bool { return results[i].ID < results[j].ID })

	if limit > 0 && len(results) > limit {
		results = results[:limit]
	}
	return results, nil
}

func (m *MockVectorIndex) DeletePoints(ctx context.Context, ids []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range ids {
		delete(m.points, id)
	}
	return nil
}

func (m *MockVectorIndex) HealthCheck(ctx context.Context) error {
	return nil
}

func matchesFilter(payload map[string]any, filter *domain.Filter) bool {
	if filter.IsEmpty() {
		return true
	}
	for _, cond := range filter.Must {
		if !matchesCondition(payload, cond) {
			return false
		}
	}
	if len(filter.Should) > 0 {
		any := false
		for _, cond := range filter.Should {
			if matchesCondition(payload, cond) {
				any = true
				break
			}
		}
		if !any {
			return false
		}
	}
	return true
}

func matchesCondition(payload map[string]any, cond domain.FieldCondition) bool {
	value, ok := payload[cond.Key].(string)
	if !ok {
		return false
	}
	if len(cond.Any) > 0 {
		for _, v := range cond.Any {
			if value == v {
				return true
			}
		}
		return false
	}
	return value == cond.Value
}

// Helper methods for testing

func (m *MockVectorIndex) Count() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.points)
}

func (m *MockVectorIndex) Get(id string) (domain.VectorPoint, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	p, ok := m.points[id]
	return p, ok
}

func (m *MockVectorIndex) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.points = make(map[string]domain.VectorPoint)
}
