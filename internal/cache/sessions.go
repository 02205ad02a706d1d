package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/innofeed/innofeed/internal/model"
	"github.com/innofeed/innofeed/internal/session"
)

const sessionKeyspace = "session"

// SessionStore keeps web sessions in Redis so they survive restarts of the
// web client.
type SessionStore struct {
	cache *Cache
}

// NewSessionStore creates a session.Store backed by c.
func NewSessionStore(c *Cache) *SessionStore {
	return &SessionStore{cache: c}
}

var _ session.Store = (*SessionStore)(nil)

// Save stores s. A non-positive ttl keeps it until deleted.
func (s *SessionStore) Save(ctx context.Context, sess model.Session, ttl time.Duration) error {
	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if ttl < 0 {
		ttl = 0
	}
	return s.cache.client.Set(ctx, s.cache.key(sessionKeyspace, sess.ID), data, ttl).Err()
}

// Get returns the session with id, or session.ErrNotFound.
func (s *SessionStore) Get(ctx context.Context, id string) (model.Session, error) {
	data, err := s.cache.client.Get(ctx, s.cache.key(sessionKeyspace, id)).Bytes()
	if errors.Is(err, redis.Nil) {
		return model.Session{}, session.ErrNotFound
	}
	if err != nil {
		return model.Session{}, fmt.Errorf("get session: %w", err)
	}

	var sess model.Session
	if err := json.Unmarshal(data, &sess); err != nil {
		// Corrupted entry - treat as missing
		return model.Session{}, session.ErrNotFound
	}
	return sess, nil
}

// Delete removes the session with id.
func (s *SessionStore) Delete(ctx context.Context, id string) error {
	return s.cache.client.Del(ctx, s.cache.key(sessionKeyspace, id)).Err()
}
