// Package cache содержит реализации кэша имен пользователей.
package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"technotes/internal/notes/ports/services"
	"technotes/pkg/logger"
)

// Константы для логирования.
const (
	LogMethodGetMany    = "getMany"
	LogMethodSetMany    = "setMany"
	LogMethodSet        = "set"
	LogMethodInvalidate = "invalidate"

	ErrorFailedToGet    = "failed to get usernames from redis"
	ErrorFailedToSet    = "failed to set usernames in redis"
	ErrorFailedToDelete = "failed to delete username from redis"
)

// DefaultTTL применяется, если время жизни не задано.
const DefaultTTL = 10 * time.Minute

const keyPrefix = "username:"

// RedisUsernameCache реализует services.UsernameCache поверх Redis.
type RedisUsernameCache struct {
	client redis.Cmdable
	ttl    time.Duration
}

// NewRedisUsernameCache создает кэш имен пользователей.
func NewRedisUsernameCache(client redis.Cmdable, ttl time.Duration) services.UsernameCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisUsernameCache{client: client, ttl: ttl}
}

func key(id string) string {
	return keyPrefix + id
}

// GetMany читает имена одним MGET. Промахи в результат не попадают.
func (c *RedisUsernameCache) GetMany(ctx context.Context, ids []string) (map[string]string, error) {
	result := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	log := logger.Log(ctx).With(zap.String("method", LogMethodGetMany), zap.Int("keys", len(ids)))

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = key(id)
	}

	values, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		log.Error(ctx, ErrorFailedToGet, zap.Error(err))
		return nil, fmt.Errorf("%s: %w", ErrorFailedToGet, err)
	}

	for i, value := range values {
		if username, ok := value.(string); ok {
			result[ids[i]] = username
		}
	}

	return result, nil
}

// SetMany записывает имена в одном пайплайне через SETNX: значение,
// записанное Set после переименования, не затирается устаревшим.
func (c *RedisUsernameCache) SetMany(ctx context.Context, usernames map[string]string) error {
	if len(usernames) == 0 {
		return nil
	}

	log := logger.Log(ctx).With(zap.String("method", LogMethodSetMany), zap.Int("keys", len(usernames)))

	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, username := range usernames {
			pipe.SetNX(ctx, key(id), username, c.ttl)
		}
		return nil
	})
	if err != nil {
		log.Error(ctx, ErrorFailedToSet, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}

	return nil
}

// Set перезаписывает имя пользователя.
func (c *RedisUsernameCache) Set(ctx context.Context, id, username string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodSet), zap.String("userID", id))

	if err := c.client.Set(ctx, key(id), username, c.ttl).Err(); err != nil {
		log.Error(ctx, ErrorFailedToSet, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToSet, err)
	}

	return nil
}

// Invalidate удаляет имя пользователя из кэша.
func (c *RedisUsernameCache) Invalidate(ctx context.Context, id string) error {
	log := logger.Log(ctx).With(zap.String("method", LogMethodInvalidate), zap.String("userID", id))

	if err := c.client.Del(ctx, key(id)).Err(); err != nil {
		log.Error(ctx, ErrorFailedToDelete, zap.Error(err))
		return fmt.Errorf("%s: %w", ErrorFailedToDelete, err)
	}

	return nil
}
