package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/neexbeast/tripweaver/internal/auth"
	"github.com/neexbeast/tripweaver/internal/cache"
)

func newTestCache(t *testing.T, ttl time.Duration) (*cache.SessionCache, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return cache.NewSessionCache(client, ttl), mr
}

func sampleSession() *auth.Session {
	return &auth.Session{
		ID:          "sess-1",
		AccessToken: "token",
		UserID:      "user-1",
		Email:       "traveller@example.com",
		ExpiresAt:   time.Now().Add(24 * time.Hour).UTC().Truncate(time.Second),
	}
}

func TestSessionCache_SetAndGet(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	s := sampleSession()
	require.NoError(t, c.Set(ctx, s))

	got, err := c.Get(ctx, "sess-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, s.UserID, got.UserID)
	assert.Equal(t, s.Email, got.Email)
	assert.True(t, s.ExpiresAt.Equal(got.ExpiresAt))
}

func TestSessionCache_Get_Miss(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)

	got, err := c.Get(context.Background(), "nonexistent")
	require.NoError(t, err)
	assert.Nil(t, got, "cache miss should return nil, nil")
}

func TestSessionCache_Delete(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleSession()))
	require.NoError(t, c.Delete(ctx, "sess-1"))

	got, err := c.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got, "entry should be gone after delete")
}

func TestSessionCache_Delete_NonExistent(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	// Deleting a key that doesn't exist should not error.
	require.NoError(t, c.Delete(context.Background(), "ghost"))
}

func TestSessionCache_Set_Nil(t *testing.T) {
	c, _ := newTestCache(t, time.Hour)
	require.NoError(t, c.Set(context.Background(), nil))
}

func TestSessionCache_TTL(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()

	require.NoError(t, c.Set(ctx, sampleSession()))

	mr.FastForward(2 * time.Hour)

	got, err := c.Get(ctx, "sess-1")
	require.NoError(t, err)
	assert.Nil(t, got, "entry should be expired after TTL")
}

func TestSessionCache_TTLCappedBySessionExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)
	ctx := context.Background()

	s := sampleSession()
	s.ExpiresAt = time.Now().Add(10 * time.Minute)
	require.NoError(t, c.Set(ctx, s))

	ttl := mr.TTL("session:sess-1")
	assert.LessOrEqual(t, ttl, 10*time.Minute)
	assert.Greater(t, ttl, 9*time.Minute)
}

func TestSessionCache_ExpiredSessionNotStored(t *testing.T) {
	c, mr := newTestCache(t, time.Hour)

	s := sampleSession()
	s.ExpiresAt = time.Now().Add(-time.Minute)
	require.NoError(t, c.Set(context.Background(), s))
	assert.False(t, mr.Exists("session:sess-1"))
}

func TestConnect_InvalidURL(t *testing.T) {
	_, err := cache.Connect(context.Background(), "not-a-url")
	require.Error(t, err)
}

func TestConnect_UnreachableServer(t *testing.T) {
	_, err := cache.Connect(context.Background(), "redis://localhost:19999")
	require.Error(t, err)
}
