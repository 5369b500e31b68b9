package mocks

import (
	"context"
)

// MockLLMService is a mock implementation of LLMService for testing
type MockLLMService struct {
	// Answer is returned by Complete when CompleteFn is not set
	Answer string

	// CompleteFn allows custom behavior injection
	CompleteFn func(systemPrompt, userPrompt string) (string, error)

	// LastSystemPrompt and LastUserPrompt record the most recent call
	LastSystemPrompt string
	LastUserPrompt   string
}

// NewMockLLMService creates a new MockLLMService
func NewMockLLMService() *MockLLMService {
	return &MockLLMService{Answer: "mock answer"}
}

func (m *MockLLMService) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	m.LastSystemPrompt = systemPrompt
	m.LastUserPrompt = userPrompt
	if m.CompleteFn != nil {
		return m.CompleteFn(systemPrompt, userPrompt)
	}
	return m.Answer, nil
}

func (m *MockLLMService) Model() string {
	return "mock-llm-model"
}

func (m *MockLLMService) Close() error {
	return nil
}
