package cache_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"technotes/internal/notes/adapters/cache"
	"technotes/pkg/resilience"
)

func mockRedisServer(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	s := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: s.Addr()})
	t.Cleanup(func() {
		_ = client.Close()
	})

	return s, client
}

func TestRedisUsernameCache_SetAndGet(t *testing.T) {
	s, client := mockRedisServer(t)
	ctx := context.Background()
	c := cache.NewRedisUsernameCache(client, time.Minute)

	require.NoError(t, c.SetMany(ctx, map[string]string{"u1": "alice", "u2": "bob"}))

	got, err := c.GetMany(ctx, []string{"u1", "u2", "u3"})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "alice", "u2": "bob"}, got)

	value, err := s.Get("username:u1")
	require.NoError(t, err)
	assert.Equal(t, "alice", value)
	assert.Equal(t, time.Minute, s.TTL("username:u1"))
}

func TestRedisUsernameCache_SetManyKeepsExistingValue(t *testing.T) {
	s, client := mockRedisServer(t)
	ctx := context.Background()
	c := cache.NewRedisUsernameCache(client, time.Minute)

	require.NoError(t, c.Set(ctx, "u1", "bob"))
	require.NoError(t, c.SetMany(ctx, map[string]string{"u1": "alice", "u2": "carol"}))

	got, err := c.GetMany(ctx, []string{"u1", "u2"})

	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "bob", "u2": "carol"}, got)
	assert.Equal(t, time.Minute, s.TTL("username:u2"))
}

func TestRedisUsernameCache_SetOverwrites(t *testing.T) {
	s, client := mockRedisServer(t)
	ctx := context.Background()
	c := cache.NewRedisUsernameCache(client, time.Minute)

	require.NoError(t, c.SetMany(ctx, map[string]string{"u1": "alice"}))
	require.NoError(t, c.Set(ctx, "u1", "bob"))

	value, err := s.Get("username:u1")
	require.NoError(t, err)
	assert.Equal(t, "bob", value)
	assert.Equal(t, time.Minute, s.TTL("username:u1"))
}

func TestRedisUsernameCache_Expiry(t *testing.T) {
	s, client := mockRedisServer(t)
	ctx := context.Background()
	c := cache.NewRedisUsernameCache(client, time.Minute)

	require.NoError(t, c.SetMany(ctx, map[string]string{"u1": "alice"}))
	s.FastForward(2 * time.Minute)

	got, err := c.GetMany(ctx, []string{"u1"})

	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestRedisUsernameCache_Invalidate(t *testing.T) {
	s, client := mockRedisServer(t)
	ctx := context.Background()
	c := cache.NewRedisUsernameCache(client, 0)

	require.NoError(t, c.SetMany(ctx, map[string]string{"u1": "alice"}))
	assert.Equal(t, cache.DefaultTTL, s.TTL("username:u1"))

	require.NoError(t, c.Invalidate(ctx, "u1"))

	assert.False(t, s.Exists("username:u1"))
}

func TestRedisUsernameCache_EmptyInput(t *testing.T) {
	_, client := mockRedisServer(t)
	ctx := context.Background()
	c := cache.NewRedisUsernameCache(client, time.Minute)

	got, err := c.GetMany(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, got)

	assert.NoError(t, c.SetMany(ctx, nil))
}

func TestRedisUsernameCache_ServerDown(t *testing.T) {
	s, client := mockRedisServer(t)
	ctx := context.Background()
	c := cache.NewRedisUsernameCache(client, time.Minute)
	s.Close()

	_, err := c.GetMany(ctx, []string{"u1"})
	assert.Error(t, err)

	assert.Error(t, c.SetMany(ctx, map[string]string{"u1": "alice"}))
	assert.Error(t, c.Set(ctx, "u1", "alice"))
	assert.Error(t, c.Invalidate(ctx, "u1"))
}

func TestNopUsernameCache(t *testing.T) {
	ctx := context.Background()
	c := cache.NewNopUsernameCache()

	got, err := c.GetMany(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.NoError(t, c.SetMany(ctx, map[string]string{"u1": "alice"}))
	assert.NoError(t, c.Set(ctx, "u1", "alice"))
	assert.NoError(t, c.Invalidate(ctx, "u1"))
}

func TestGuardedUsernameCache_OpensWhenRedisDown(t *testing.T) {
	s, client := mockRedisServer(t)
	ctx := context.Background()

	breaker := resilience.NewCircuitBreaker("username-cache", resilience.CircuitBreakerConfig{
		ErrorThreshold:   1,
		Timeout:          time.Hour,
		SuccessThreshold: 1,
	})
	c := cache.NewGuardedUsernameCache(cache.NewRedisUsernameCache(client, time.Minute), breaker)

	require.NoError(t, c.SetMany(ctx, map[string]string{"u1": "alice"}))
	got, err := c.GetMany(ctx, []string{"u1"})
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"u1": "alice"}, got)

	s.Close()

	_, err = c.GetMany(ctx, []string{"u1"})
	require.Error(t, err)
	assert.Equal(t, resilience.StateOpen, breaker.State())

	err = c.Invalidate(ctx, "u1")
	require.ErrorIs(t, err, resilience.ErrCircuitOpen)
	require.ErrorIs(t, c.Set(ctx, "u1", "bob"), resilience.ErrCircuitOpen)
}
