package http

import (
	"errors"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"technotes/internal/notes/adapters/http/middleware"
	"technotes/internal/notes/adapters/http/response"
	"technotes/internal/notes/adapters/http/views"
	"technotes/pkg/logger"
)

const (
	msgNotFound = "404 Not Found!!!"

	statusOK          = "ok"
	statusUnavailable = "unavailable"
)

// Index отдает стартовую страницу.
func Index(ctx fiber.Ctx) error {
	ctx.Type("html")
	return ctx.Status(fiber.StatusOK).Send(views.Index)
}

// NotFound отвечает 404 в формате, который принимает клиент: HTML, JSON или текст.
func NotFound(ctx fiber.Ctx) error {
	ctx.Status(fiber.StatusNotFound)

	switch {
	case ctx.Accepts(fiber.MIMETextHTML) != "":
		ctx.Type("html")
		return ctx.Send(views.NotFound)
	case ctx.Accepts(fiber.MIMEApplicationJSON) != "":
		return ctx.JSON(fiber.Map{"message": msgNotFound})
	default:
		ctx.Type("txt")
		return ctx.SendString(msgNotFound)
	}
}

// Health сообщает, доступно ли хранилище.
func Health(checker HealthChecker) fiber.Handler {
	return func(ctx fiber.Ctx) error {
		if checker != nil {
			requestCtx := middleware.RequestContext(ctx)
			if err := checker.Ping(requestCtx); err != nil {
				logger.Log(requestCtx).Warn(requestCtx, "health check failed", zap.Error(err))
				return ctx.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": statusUnavailable})
			}
		}
		return ctx.Status(fiber.StatusOK).JSON(fiber.Map{"status": statusOK})
	}
}

// ErrorHandler - общий обработчик необработанных ошибок.
// Ошибки fiber сохраняют свой статус, остальные становятся 500.
func ErrorHandler(ctx fiber.Ctx, err error) error {
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return ctx.Status(fiberErr.Code).JSON(fiber.Map{"message": fiberErr.Message})
	}

	requestCtx := middleware.RequestContext(ctx)
	logger.Log(requestCtx).Error(requestCtx, "unhandled error",
		zap.String("path", ctx.Path()),
		zap.String("method", ctx.Method()),
		zap.Error(err),
	)

	return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": response.MsgInternalServerError})
}
