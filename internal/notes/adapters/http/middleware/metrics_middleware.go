package middleware

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v3"

	"technotes/pkg/metrics"
)

const routeUnmatched = "unmatched"

// NewMetricsMiddleware учитывает запросы по методу, маршруту и статусу.
// Запросы, не дошедшие до конкретного маршрута, получают метку "unmatched".
func NewMetricsMiddleware(m *metrics.Metrics) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		start := time.Now()
		err := ctx.Next()

		status := ctx.Response().StatusCode()
		if err != nil {
			status = fiber.StatusInternalServerError
			var fiberErr *fiber.Error
			if errors.As(err, &fiberErr) {
				status = fiberErr.Code
			}
		}

		m.ObserveRequest(ctx.Method(), routeLabel(ctx), status, time.Since(start))
		return err
	}
}

// routeLabel возвращает шаблон сработавшего маршрута, чтобы не плодить метки по id.
func routeLabel(ctx fiber.Ctx) string {
	r := ctx.Route()
	if r == nil || r.Path == "" {
		return routeUnmatched
	}
	if r.Path == "/" && ctx.Path() != "/" {
		return routeUnmatched
	}
	return r.Path
}
