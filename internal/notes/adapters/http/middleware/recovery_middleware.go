package middleware

import (
	"fmt"
	"runtime/debug"

	"github.com/gofiber/fiber/v3"
	"go.uber.org/zap"

	"technotes/pkg/logger"
)

// NewRecoveryMiddleware создает промежуточное ПО для восстановления после паники.
func NewRecoveryMiddleware() fiber.Handler {
	return func(ctx fiber.Ctx) (err error) {
		requestCtx := RequestContext(ctx)
		log := logger.Log(requestCtx)

		defer func() {
			if r := recover(); r != nil {
				log.Error(requestCtx, "Server panic",
					zap.String("error", fmt.Sprintf("%v", r)),
					zap.String("stack", string(debug.Stack())),
				)

				err = ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"message": "Internal Server Error",
				})
			}
		}()

		return ctx.Next()
	}
}
