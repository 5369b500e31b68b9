package domain

import (
	"strings"
	"time"
)

// Document is the source of truth for one piece of ingested content.
// The relational store owns the metadata and raw content; the vector
// index holds the derived chunks.
type Document struct {
	ID           string    `json:"id"`
	SourceName   string    `json:"source_name"`
	Content      string    `json:"content"`
	RequiredRole string    `json:"required_role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Validate checks the document has the fields ingestion requires
func (d *Document) Validate() error {
	if strings.TrimSpace(d.SourceName) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(d.Content) == "" {
		return ErrInvalidInput
	}
	if strings.TrimSpace(d.RequiredRole) == "" {
		return ErrInvalidInput
	}
	return nil
}

// DocumentHit is a role-filtered document search result
type DocumentHit struct {
	DocumentID   string  `json:"document_id"`
	SourceName   string  `json:"source_name"`
	RequiredRole string  `json:"required_role"`
	Text         string  `json:"text"`
	Score        float32 `json:"score"`
}

// AskResult is the outcome of a grounded question: the generated answer
// plus the chunks it was grounded on
type AskResult struct {
	Answer string        `json:"answer"`
	Chunks []ScoredChunk `json:"chunks"`
}
