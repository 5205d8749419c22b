package cache

import (
	"context"

	"technotes/internal/notes/ports/services"
	"technotes/pkg/resilience"
)

// GuardedUsernameCache пропускает обращения к кэшу через Circuit Breaker,
// чтобы недоступный Redis не добавлял задержку каждому запросу.
type GuardedUsernameCache struct {
	inner   services.UsernameCache
	breaker *resilience.CircuitBreaker
}

// NewGuardedUsernameCache оборачивает кэш.
func NewGuardedUsernameCache(inner services.UsernameCache, breaker *resilience.CircuitBreaker) services.UsernameCache {
	return &GuardedUsernameCache{inner: inner, breaker: breaker}
}

func (c *GuardedUsernameCache) GetMany(ctx context.Context, ids []string) (map[string]string, error) {
	var result map[string]string
	err := c.breaker.Execute(ctx, func() error {
		var err error
		result, err = c.inner.GetMany(ctx, ids)
		return err
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (c *GuardedUsernameCache) SetMany(ctx context.Context, usernames map[string]string) error {
	return c.breaker.Execute(ctx, func() error {
		return c.inner.SetMany(ctx, usernames)
	})
}

func (c *GuardedUsernameCache) Set(ctx context.Context, id, username string) error {
	return c.breaker.Execute(ctx, func() error {
		return c.inner.Set(ctx, id, username)
	})
}

func (c *GuardedUsernameCache) Invalidate(ctx context.Context, id string) error {
	return c.breaker.Execute(ctx, func() error {
		return c.inner.Invalidate(ctx, id)
	})
}
