package middleware

import (
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/freshcart/storefront/internal/apperror"
)

type errorBody struct {
	Message string            `json:"message"`
	Error   string            `json:"error,omitempty"`
	Fields  map[string]string `json:"fields,omitempty"`
}

// ErrorHandler renders handler errors as {"message": ...}. Application errors
// map their kind to a status; internal causes are logged and never sent.
func ErrorHandler(logger *slog.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var fe *fiber.Error
		if errors.As(err, &fe) {
			return c.Status(fe.Code).JSON(errorBody{Message: fe.Message})
		}

		var appErr *apperror.Error
		if !errors.As(err, &appErr) {
			appErr = apperror.Internal("Internal server error", err)
		}

		status := appErr.Kind.HTTPStatus()
		body := errorBody{Message: appErr.Message, Fields: appErr.Fields}
		if appErr.Kind == apperror.KindInternal {
			body.Error = "internal error"
			if logger != nil {
				logger.Error("request failed",
					slog.String("method", c.Method()),
					slog.String("path", c.Path()),
					slog.Any("error", err),
				)
			}
		}
		return c.Status(status).JSON(body)
	}
}
