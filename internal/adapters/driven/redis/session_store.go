package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/corpora-labs/corpora-core/internal/core/domain"
	"github.com/corpora-labs/corpora-core/internal/core/ports/driven"
	"github.com/redis/go-redis/v9"
)

// Verify interface compliance
var _ driven.SessionStore = (*SessionStore)(nil)

const (
	sessionPrefix        = "corpora:session:"
	sessionTokenPrefix   = "corpora:session:token:"
	sessionRefreshPrefix = "corpora:session:refresh:"
	sessionUserPrefix    = "corpora:session:user:"
)

// SessionStore implements driven.SessionStore using Redis.
// Sessions rely on Redis TTL for expiration, so expired sessions
// disappear without a cleanup job.
type SessionStore struct {
	client *redis.Client
}

// NewSessionStore creates a new Redis-backed SessionStore
func NewSessionStore(client *redis.Client) *SessionStore {
	return &SessionStore{client: client}
}

// Save stores a session with a TTL derived from ExpiresAt.
// Token and refresh token indexes are written in the same pipeline.
func (s *SessionStore) Save(ctx context.Context, session *domain.Session) error {
	ttl := time.Until(session.ExpiresAt)
	if ttl <= 0 {
		// Already expired, nothing to persist
		return nil
	}

	data, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}

	pipe := s.client.Pipeline()
	pipe.Set(ctx, sessionPrefix+session.ID, data, ttl)
	pipe.Set(ctx, sessionTokenPrefix+session.Token, session.ID, ttl)
	pipe.Set(ctx, sessionRefreshPrefix+session.RefreshToken, session.ID, ttl)
	pipe.SAdd(ctx, sessionUserPrefix+session.UserID, session.ID)
	pipe.Expire(ctx, sessionUserPrefix+session.UserID, 30*24*time.Hour)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Get retrieves a session by ID
func (s *SessionStore) Get(ctx context.Context, id string) (*domain.Session, error) {
	data, err := s.client.Get(ctx, sessionPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(data, &session); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &session, nil
}

// GetByToken retrieves a session by its access token
func (s *SessionStore) GetByToken(ctx context.Context, token string) (*domain.Session, error) {
	sessionID, err := s.client.Get(ctx, sessionTokenPrefix+token).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session by token: %w", err)
	}
	return s.Get(ctx, sessionID)
}

// GetByRefreshToken retrieves a session by its refresh token
func (s *SessionStore) GetByRefreshToken(ctx context.Context, refreshToken string) (*domain.Session, error) {
	sessionID, err := s.client.Get(ctx, sessionRefreshPrefix+refreshToken).Result()
	if errors.Is(err, redis.Nil) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get session by refresh token: %w", err)
	}
	return s.Get(ctx, sessionID)
}

// Delete deletes a session and its token indexes.
// Deleting a missing session is not an error.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	session, err := s.Get(ctx, id)
	if errors.Is(err, domain.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	return s.deleteSession(ctx, session)
}

// DeleteByUser deletes all sessions for a user (logout everywhere)
func (s *SessionStore) DeleteByUser(ctx context.Context, userID string) error {
	sessionIDs, err := s.client.SMembers(ctx, sessionUserPrefix+userID).Result()
	if err != nil {
		return fmt.Errorf("list user sessions: %w", err)
	}

	for _, sessionID := range sessionIDs {
		// Some sessions may already have expired, keep going
		_ = s.Delete(ctx, sessionID)
	}

	s.client.Del(ctx, sessionUserPrefix+userID)
	return nil
}

// deleteSession removes a session and all of its indexes
func (s *SessionStore) deleteSession(ctx context.Context, session *domain.Session) error {
	pipe := s.client.Pipeline()
	pipe.Del(ctx, sessionPrefix+session.ID)
	pipe.Del(ctx, sessionTokenPrefix+session.Token)
	pipe.Del(ctx, sessionRefreshPrefix+session.RefreshToken)
	pipe.SRem(ctx, sessionUserPrefix+session.UserID, session.ID)

	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}
