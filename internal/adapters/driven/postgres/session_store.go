package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

// SessionStore implements driven.SessionStore using PostgreSQL.
// Used as a fallback when Redis is not configured. Expired rows are
// filtered on read rather than evicted by TTL.
type SessionStore struct {
	db *DB
}

// NewSessionStore creates a new PostgreSQL-backed SessionStore
func NewSessionStore(db *DB) *SessionStore {
	return &SessionStore{db: db}
}

// Save creates or updates a session
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, token, refresh_token, expires_at, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (id) DO UPDATE SET
			token = EXCLUDED.token,
			refresh_token = EXCLUDED.refresh_token,
			expires_at = EXCLUDED.expires_at
	`

	_, err := s.db.ExecContext(ctx, query,
		session.ID,
		session.UserID,
		session.Token,
		session.RefreshToken,
		session.ExpiresAt,
		session.CreatedAt,
	)
	return err
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	return s.scanSession(s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, refresh_token, expires_at, created_at
		FROM sessions
		WHERE id = $1 AND expires_at > now()
	`, id))
}

// GetByToken retrieves a session by its access token
func (s *SessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	return s.scanSession(s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, refresh_token, expires_at, created_at
		FROM sessions
		WHERE token = $1 AND expires_at > now()
	`, token))
}

// GetByRefreshToken retrieves a session by its refresh token
func (s *SessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	return s.scanSession(s.db.QueryRowContext(ctx, `
		SELECT id, user_id, token, refresh_token, expires_at, created_at
		FROM sessions
		WHERE refresh_token = $1 AND expires_at > now()
	`, refreshToken))
}

// Delete deletes a session. Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = $1`, id)
	return err
}

// DeleteByUser deletes all sessions for a user
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	_, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE user_id = $1`, userID)
	return err
}

func (s *SessionStore) scanSession(row *sql.Row) (*domain.Session, error) {
	var session domain.Session
	err := row.Scan(
		&session.ID,
		&session.UserID,
		&session.Token,
		&session.RefreshToken,
		&session.ExpiresAt,
		&session.CreatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &session, nil
}
