package services

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven/mocks"
)

func newTestAsk(index *mocks.MockVectorIndex, llm *mocks.MockLLMService) *askService {
	retrieval := NewRetrievalService(RetrievalConfig{
		Embedder: mocks.NewMockEmbeddingService(),
		Index:    index,
	})
	return NewAskService(AskConfig{Retrieval: retrieval, LLM: llm}).(*askService)
}

func TestAsk(t *testing.T) {
	index := mocks.NewMockVectorIndex()
	_ = index.UpsertPoints(context.Background(), []domain.VectorPoint{
		{ID: "p1", Vector: []float32{0.1}, Payload: map[string]any{
			"text": "Employees get thirty days of vacation.", "requiredRole": "employee", "sourceName": "Vacation Policy",
		}},
	})
	llm := mocks.NewMockLLMService()
	llm.Answer = "Thirty days per year."

	svc := newTestAsk(index, llm)

	result, err := svc.Ask(context.Background(), "How many vacation days do I get?", []string{"employee"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.Answer != "Thirty days per year." {
		t.Errorf("answer = %q", result.Answer)
	}
	if len(result.Chunks) != 1 {
		t.Errorf("expected 1 supporting chunk, got %d", len(result.Chunks))
	}

	// The context block carries the source header and the chunk text
	if !strings.Contains(llm.LastUserPrompt, "### Source: Vacation Policy") {
		t.Errorf("prompt missing source header: %q", llm.LastUserPrompt)
	}
	if !strings.Contains(llm.LastUserPrompt, "thirty days of vacation") {
		t.Errorf("prompt missing chunk text: %q", llm.LastUserPrompt)
	}
}

func TestAskNoRelevantContent(t *testing.T) {
	llm := mocks.NewMockLLMService()
	llm.CompleteFn = func(systemPrompt, userPrompt string) (string, error) {
		t.Error("LLM must not be called when retrieval is empty")
		return "", nil
	}

	svc := newTestAsk(mocks.NewMockVectorIndex(), llm)

	result, err := svc.Ask(context.Background(), "anything?", []string{"employee"})
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if result.Answer != noContentAnswer {
		t.Errorf("answer = %q, want %q", result.Answer, noContentAnswer)
	}
	if len(result.Chunks) != 0 {
		t.Errorf("expected no chunks, got %d", len(result.Chunks))
	}
}

func TestAskEmptyQuestion(t *testing.T) {
	svc := newTestAsk(mocks.NewMockVectorIndex(), mocks.NewMockLLMService())

	_, err := svc.Ask(context.Background(), "   ", []string{"employee"})
	if !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("got %v, want ErrInvalidInput", err)
	}
}

func TestAskContextCap(t *testing.T) {
	long := strings.Repeat("x", 9000)
	chunks := []domain.ScoredChunk{
		{Text: long, Metadata: map[string]any{"sourceName": "A"}},
		{Text: long, Metadata: map[string]any{"sourceName": "B"}},
	}

	context := buildContext(chunks)
	if len(context) > maxContextLength {
		t.Errorf("context length %d exceeds cap %d", len(context), maxContextLength)
	}
}
