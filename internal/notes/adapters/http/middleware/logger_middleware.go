package middleware

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"technotes/pkg/logger"
)

// NewLoggerMiddleware создает промежуточное ПО для логирования HTTP запросов.
func NewLoggerMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestCtx := RequestContext(ctx)
		start := time.Now()

		log := logger.Log(requestCtx).With(
			zap.String("path", ctx.Path()),
			zap.String("method", ctx.Method()),
			zap.String("ip", ctx.IP()),
			zap.String("origin", ctx.Get(fiber.HeaderOrigin)),
		)

		log.Debug(requestCtx, "Request started")

		err := ctx.Next()

		logFields := []zap.Field{
			zap.Int("status", ctx.Response().StatusCode()),
			zap.Duration("latency", time.Since(start)),
		}

		if err != nil {
			log.Error(requestCtx, "Request failed", append(logFields, zap.Error(err))...)
			return fmt.Errorf("request processing error: %w", err)
		}

		log.Info(requestCtx, "Request completed", logFields...)
		return nil
	}
}
