package driven

import "context"

// LLMService generates grounded answers from retrieved context
type LLMService interface {
	// Complete sends a system prompt plus user prompt and returns the
	// generated answer text
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// Model returns the model name being used
	Model() string

	// Close releases resources held by the LLM service
	Close() error
}
