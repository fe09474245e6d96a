package middleware

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/example/vibrantflight/internal/apperrors"
)

// StatusOf maps an error returned by a handler to its HTTP status.
func StatusOf(err error) int {
	var appErr *apperrors.Error
	if errors.As(err, &appErr) {
		return appErr.Status()
	}
	var fiberErr *fiber.Error
	if errors.As(err, &fiberErr) {
		return fiberErr.Code
	}
	return fiber.StatusInternalServerError
}

// ErrorHandler renders every failure as {"success": false, "message": ...}.
// Internal causes are logged, never returned.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		status := StatusOf(err)
		message := "Server error"

		var appErr *apperrors.Error
		var fiberErr *fiber.Error
		switch {
		case errors.As(err, &appErr):
			message = appErr.Message
		case errors.As(err, &fiberErr):
			message = fiberErr.Message
		}

		if status >= fiber.StatusInternalServerError {
			logger.Error("request failed",
				zap.String("method", c.Method()),
				zap.String("path", c.Path()),
				zap.Error(err),
			)
		}

		return c.Status(status).JSON(fiber.Map{
			"success": false,
			"message": message,
		})
	}
}
