// Package resilience содержит повтор операций с backoff и Circuit Breaker.
package resilience

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"technotes/pkg/logger"
)

// RetryConfig содержит настройки повторов.
type RetryConfig struct {
	// MaxAttempts - количество попыток, включая первую.
	MaxAttempts    int
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	BackoffFactor  float64
	// ShouldRetry решает, стоит ли повторять операцию после ошибки.
	ShouldRetry func(error) bool
}

// DefaultRetryConfig подходит для подключения к зависимостям при старте.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:    5,
		InitialBackoff: 500 * time.Millisecond,
		MaxBackoff:     5 * time.Second,
		BackoffFactor:  2.0,
		ShouldRetry:    defaultShouldRetry,
	}
}

// ErrRetryCanceled возвращается, если контекст отменен во время ожидания.
var ErrRetryCanceled = errors.New("context was canceled during retry")

func defaultShouldRetry(err error) bool {
	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}

// Константы для логирования.
const (
	LogRetryAttempt     = "retry attempt"
	LogRetrySuccess     = "retry succeeded"
	LogRetryMaxAttempts = "retry max attempts reached"
)

// Retry повторяет операцию с экспоненциальной задержкой.
type Retry struct {
	name   string
	config RetryConfig
}

// NewRetry создает механизм повторов. Нулевые поля заменяются значениями по умолчанию.
func NewRetry(name string, config RetryConfig) *Retry {
	def := DefaultRetryConfig()
	if config.MaxAttempts <= 0 {
		config.MaxAttempts = def.MaxAttempts
	}
	if config.InitialBackoff <= 0 {
		config.InitialBackoff = def.InitialBackoff
	}
	if config.MaxBackoff < config.InitialBackoff {
		config.MaxBackoff = config.InitialBackoff
	}
	if config.BackoffFactor < 1 {
		config.BackoffFactor = def.BackoffFactor
	}
	if config.ShouldRetry == nil {
		config.ShouldRetry = def.ShouldRetry
	}
	return &Retry{name: name, config: config}
}

// Execute вызывает operation, пока она не завершится успешно,
// не вернет неповторяемую ошибку или не кончатся попытки.
func (r *Retry) Execute(ctx context.Context, operation func(context.Context) error) error {
	log := logger.Log(ctx).With(zap.String("retry", r.name))

	backoff := r.config.InitialBackoff
	for attempt := 1; ; attempt++ {
		err := operation(ctx)
		if err == nil {
			if attempt > 1 {
				log.Info(ctx, LogRetrySuccess, zap.Int("attempts", attempt))
			}
			return nil
		}
		if !r.config.ShouldRetry(err) {
			return err
		}
		if attempt >= r.config.MaxAttempts {
			log.Warn(ctx, LogRetryMaxAttempts, zap.Int("attempts", attempt), zap.Error(err))
			return err
		}

		log.Info(ctx, LogRetryAttempt,
			zap.Int("attempt", attempt),
			zap.Duration("backoff", backoff),
			zap.Error(err))

		timer := time.NewTimer(backoff)
		select {
		case <-timer.C:
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w: %w", ErrRetryCanceled, ctx.Err())
		}

		backoff = time.Duration(float64(backoff) * r.config.BackoffFactor)
		if backoff > r.config.MaxBackoff {
			backoff = r.config.MaxBackoff
		}
	}
}
