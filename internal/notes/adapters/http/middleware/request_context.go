// Package middleware содержит промежуточное ПО для HTTP обработчиков.
package middleware

import (
	"context"

	"github.com/gofiber/fiber/v3"

	"technotes/pkg/logger"
)

// RequestContextKey - ключ Locals, под которым хранится контекст запроса.
const RequestContextKey = "requestContext"

// HeaderRequestID - заголовок с идентификатором запроса.
const HeaderRequestID = "X-Request-ID"

// NewRequestContextMiddleware привязывает к запросу контекст с логгером и request_id.
// Идентификатор берется из заголовка X-Request-ID или генерируется.
func NewRequestContextMiddleware(base *logger.Logger) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		requestID := ctx.Get(HeaderRequestID)
		if requestID == "" {
			requestID = logger.GenerateRequestID()
		}
		ctx.Set(HeaderRequestID, requestID)

		requestCtx := logger.NewRequestIDContext(context.Background(), requestID)
		if base != nil {
			requestCtx = logger.NewContext(requestCtx, base)
		}
		ctx.Locals(RequestContextKey, requestCtx)

		return ctx.Next()
	}
}

// RequestContext возвращает контекст запроса, сохраненный middleware.
func RequestContext(ctx fiber.Ctx) context.Context {
	if requestCtx, ok := ctx.Locals(RequestContextKey).(context.Context); ok {
		return requestCtx
	}
	return ctx.Context() // Запасной вариант
}
