package cache

import (
	"context"

	"technotes/internal/notes/ports/services"
)

// NopUsernameCache используется, когда Redis отключен: каждый запрос - промах.
type NopUsernameCache struct{}

// NewNopUsernameCache создает пустой кэш.
func NewNopUsernameCache() services.UsernameCache {
	return NopUsernameCache{}
}

func (NopUsernameCache) GetMany(context.Context, []string) (map[string]string, error) {
	return map[string]string{}, nil
}

func (NopUsernameCache) SetMany(context.Context, map[string]string) error {
	return nil
}

func (NopUsernameCache) Set(context.Context, string, string) error {
	return nil
}

func (NopUsernameCache) Invalidate(context.Context, string) error {
	return nil
}
