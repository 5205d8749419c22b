package redis_test

import (
	"context"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"technotes/pkg/db/redis"
)

func TestNewClient(t *testing.T) {
	ctx := context.Background()

	t.Run("connects to running server", func(t *testing.T) {
		s := miniredis.RunT(t)

		host, portStr, _ := strings.Cut(s.Addr(), ":")
		port, err := strconv.Atoi(portStr)
		require.NoError(t, err)

		client, err := redis.NewClient(ctx, &redis.Config{Host: host, Port: port, PoolSize: 2, Timeout: time.Second})
		require.NoError(t, err)
		t.Cleanup(func() { _ = client.Close() })

		require.NoError(t, client.Set(ctx, "k", "v", 0).Err())
		got, err := s.Get("k")
		require.NoError(t, err)
		assert.Equal(t, "v", got)
	})

	t.Run("fails when server is down", func(t *testing.T) {
		client, err := redis.NewClient(ctx, &redis.Config{Host: "127.0.0.1", Port: 1, Timeout: 100 * time.Millisecond})
		require.Error(t, err)
		assert.Nil(t, client)
		assert.Contains(t, err.Error(), "failed to connect to redis")
	})

	t.Run("default config", func(t *testing.T) {
		cfg := redis.DefaultConfig()
		assert.Equal(t, "localhost:6379", cfg.Addr())
	})
}
