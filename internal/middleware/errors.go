package middleware

import (
	"errors"

	"github.com/azattello/cargo3589-server/internal/apperror"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler writes {"message": ...} for every failed request.
// Validation errors also carry the failing checks; internal errors are
// logged and the caller only sees a generic message.
func ErrorHandler(log *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		if e, ok := apperror.As(err); ok {
			if e.Kind == apperror.KindInternal {
				log.Error("request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}
			body := fiber.Map{"message": e.Message}
			if len(e.Fields) > 0 {
				body["errors"] = e.Fields
			}
			return c.Status(e.Status()).JSON(body)
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(fiber.Map{"message": fe.Message})
		}

		log.Error("unexpected error",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "server error"})
	}
}
