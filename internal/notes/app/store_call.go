// Package app реализует бизнес-логику сервиса заметок.
package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"technotes/internal/notes/domain/entities"
)

// DefaultStoreTimeout применяется, если таймаут не задан.
const DefaultStoreTimeout = 5 * time.Second

// callStore выполняет обращение к хранилищу с таймаутом.
// Истечение таймаута превращается в entities.ErrUnavailable.
func callStore[T any](ctx context.Context, timeout time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if timeout <= 0 {
		timeout = DefaultStoreTimeout
	}

	storeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	result, err := fn(storeCtx)
	if err != nil && errors.Is(err, context.DeadlineExceeded) && !errors.Is(err, entities.ErrUnavailable) {
		return result, fmt.Errorf("%w: %w", entities.ErrUnavailable, err)
	}
	return result, err
}

// callStoreErr - вариант callStore для операций без результата.
func callStoreErr(ctx context.Context, timeout time.Duration, fn func(context.Context) error) error {
	_, err := callStore(ctx, timeout, func(ctx context.Context) (struct{}, error) {
		return struct{}{}, fn(ctx)
	})
	return err
}
