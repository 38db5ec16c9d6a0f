package controllers

import (
	"errors"
	"net/http"

	"ActivityStudio/registry"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ErrorHandler maps the registry error taxonomy onto status codes. Upstream
// causes are logged server-side and never echoed to the client.
func ErrorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		code := http.StatusInternalServerError
		message := "Internal Error"

		var (
			validationErr *registry.ValidationError
			authErr       *registry.AuthError
			notFoundErr   *registry.NotFoundError
			upstreamErr   *registry.UpstreamError
			fiberErr      *fiber.Error
		)
		switch {
		case errors.As(err, &validationErr):
			code, message = http.StatusBadRequest, validationErr.Message
		case errors.As(err, &authErr):
			code, message = http.StatusUnauthorized, authErr.Message
		case errors.As(err, &notFoundErr):
			code, message = http.StatusNotFound, notFoundErr.Message
		case errors.As(err, &upstreamErr):
			message = upstreamErr.Message
			logger.Error("upstream failure",
				zap.String("path", c.Path()),
				zap.Error(upstreamErr.Unwrap()))
		case errors.As(err, &fiberErr):
			code, message = fiberErr.Code, fiberErr.Message
		default:
			logger.Error("unhandled error",
				zap.String("path", c.Path()),
				zap.Error(err))
		}

		return c.Status(code).JSON(fiber.Map{"error": message})
	}
}
