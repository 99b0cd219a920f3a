package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/neexbeast/tripweaver/internal/auth"
)

const defaultTTL = time.Hour

// SessionCache wraps a Redis client and stores auth sessions by session ID.
type SessionCache struct {
	client *redis.Client
	ttl    time.Duration
	now    func() time.Time
}

// NewSessionCache constructs a SessionCache. Entries expire after ttl, or
// earlier when the session itself expires. A zero ttl means one hour.
func NewSessionCache(client *redis.Client, ttl time.Duration) *SessionCache {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &SessionCache{client: client, ttl: ttl, now: time.Now}
}

// key returns the Redis key for the given session ID.
func key(id string) string {
	return "session:" + id
}

// Get retrieves a session. Returns nil, nil on a miss (not an error).
func (c *SessionCache) Get(ctx context.Context, id string) (*auth.Session, error) {
	val, err := c.client.Get(ctx, key(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get for session %s: %w", id, err)
	}

	var s auth.Session
	if err := json.Unmarshal([]byte(val), &s); err != nil {
		return nil, fmt.Errorf("unmarshaling cached session %s: %w", id, err)
	}

	return &s, nil
}

// Set stores a session until the earlier of its expiry and the cache TTL.
func (c *SessionCache) Set(ctx context.Context, s *auth.Session) error {
	if s == nil {
		return nil
	}

	ttl := c.ttl
	if !s.ExpiresAt.IsZero() {
		if left := s.ExpiresAt.Sub(c.now()); left < ttl {
			ttl = left
		}
	}
	if ttl <= 0 {
		return nil
	}

	b, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshaling session %s: %w", s.ID, err)
	}

	if err := c.client.Set(ctx, key(s.ID), b, ttl).Err(); err != nil {
		return fmt.Errorf("cache set for session %s: %w", s.ID, err)
	}

	return nil
}

// Delete removes the session with the given ID.
func (c *SessionCache) Delete(ctx context.Context, id string) error {
	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		return fmt.Errorf("cache delete for session %s: %w", id, err)
	}
	return nil
}
