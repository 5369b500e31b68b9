package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.DocumentStore = (*DocumentStore)(nil)

// DocumentStore implements driven.DocumentStore using PostgreSQL
type DocumentStore struct {
	db *DB
}

// NewDocumentStore creates a new DocumentStore
func NewDocumentStore(db *DB) *DocumentStore {
	return &DocumentStore{db: db}
}

// Save creates or updates a document
func (s *DocumentStore) Save(ctx context.Context, doc *domain.Document) error {
	query := `
		INSERT INTO documents (id, source_name, content, required_role, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			source_name = EXCLUDED.source_name,
			content = EXCLUDED.content,
			required_role = EXCLUDED.required_role,
			updated_at = EXCLUDED.updated_at
	`

	_, err := s.db.ExecContext(ctx, query,
		doc.ID,
		doc.SourceName,
		doc.Content,
		doc.RequiredRole,
		doc.CreatedAt,
		doc.UpdatedAt,
	)
	return err
}

// Get retrieves a document by ID
func (s *DocumentStore) Get(ctx context.Context, id string) (*domain.Document, error) {
	query := `
		SELECT id, source_name, content, required_role, created_at, updated_at
		FROM documents
		WHERE id = $1
	`

	var doc domain.Document
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&doc.ID,
		&doc.SourceName,
		&doc.Content,
		&doc.RequiredRole,
		&doc.CreatedAt,
		&doc.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

// List retrieves documents ordered by creation time, newest first
func (s *DocumentStore) List(ctx context.Context, limit, offset int) ([]*domain.Document, error) {
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, source_name, content, required_role, created_at, updated_at
		FROM documents
		ORDER BY created_at DESC
		LIMIT $1 OFFSET $2
	`

	rows, err := s.db.QueryContext(ctx, query, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []*domain.Document
	for rows.Next() {
		var doc domain.Document
		if err := rows.Scan(
			&doc.ID,
			&doc.SourceName,
			&doc.Content,
			&doc.RequiredRole,
			&doc.CreatedAt,
			&doc.UpdatedAt,
		); err != nil {
			return nil, err
		}
		docs = append(docs, &doc)
	}
	return docs, rows.Err()
}

// Delete deletes a document
func (s *DocumentStore) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

// Count returns total document count
func (s *DocumentStore) Count(ctx context.Context) (int, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM documents`).Scan(&count)
	return count, err
}
