package services

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driving"
)

// Ensure askService implements AskService
var _ driving.AskService = (*askService)(nil)

const (
	// maxContextLength caps the assembled context passed to the LLM
	maxContextLength = 12000

	// noContentAnswer is returned when retrieval finds nothing
	noContentAnswer = "No relevant content found."
)

const askSystemPrompt = `You are an internal corporate assistant.

Instructions:
- Answer only from the documents listed below.
- These documents are only the subset the user is allowed to access.
- Never claim the user has access to all documents unless all are listed.
- Keep the answer objective, professional, and to the point.
- Never invent or assume information that is not explicitly in the available documents.
- If the answer cannot be given from the available content, say there is not enough information to answer safely.
- Keep a neutral, institutional tone.`

// askService implements the AskService interface: role-filtered
// retrieval followed by grounded answer generation
type askService struct {
	retrieval driving.RetrievalService
	llm       driven.LLMService
	logger    *slog.Logger
}

// AskConfig holds the ask service dependencies
type AskConfig struct {
	Retrieval driving.RetrievalService
	LLM       driven.LLMService
}

// NewAskService creates a new AskService
func NewAskService(cfg AskConfig) driving.AskService {
	return &askService{
		retrieval: cfg.Retrieval,
		llm:       cfg.LLM,
		logger:    slog.Default().With("component", "ask"),
	}
}

// Ask retrieves chunks the user's roles allow and generates an answer
// grounded on them
func (s *askService) Ask(ctx context.Context, question string, roles []string) (*domain.AskResult, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return nil, fmt.Errorf("%w: empty question", domain.ErrInvalidInput)
	}

	chunks, err := s.retrieval.SearchChunks(ctx, question, roles)
	if err != nil {
		return nil, err
	}
	if len(chunks) == 0 {
		s.logger.Warn("no chunks retrieved for question", "roles", roles)
		return &domain.AskResult{Answer: noContentAnswer, Chunks: []domain.ScoredChunk{}}, nil
	}

	userPrompt := fmt.Sprintf("Question: %s\n\nContext:\n%s", question, buildContext(chunks))
	answer, err := s.llm.Complete(ctx, askSystemPrompt, userPrompt)
	if err != nil {
		return nil, fmt.Errorf("generate answer: %w", err)
	}

	s.logger.Info("answer generated", "chunks", len(chunks), "answer_len", len(answer))
	return &domain.AskResult{Answer: answer, Chunks: chunks}, nil
}

// buildContext renders the retrieved chunks as a context block with a
// source header per chunk, capped at maxContextLength
func buildContext(chunks []domain.ScoredChunk) string {
	sections := make([]string, 0, len(chunks))
	for _, chunk := range chunks {
		source, _ := chunk.Metadata["sourceName"].(string)
		if source == "" {
			source = "Unknown source"
		}
		sections = append(sections, fmt.Sprintf("### Source: %s\n%s", source, strings.TrimSpace(chunk.Text)))
	}

	context := strings.Join(sections, "\n---\n")
	if len(context) > maxContextLength {
		context = context[:maxContextLength]
	}
	return context
}
