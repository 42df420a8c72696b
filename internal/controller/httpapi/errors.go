package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/Freeeeeet/membership_core/internal/apperr"
)

// statusOf maps an error kind to its HTTP status.
func statusOf(kind apperr.Kind) int {
	switch kind {
	case apperr.KindValidation:
		return fiber.StatusBadRequest
	case apperr.KindUnauthorized:
		return fiber.StatusUnauthorized
	case apperr.KindForbidden:
		return fiber.StatusForbidden
	case apperr.KindNotFound:
		return fiber.StatusNotFound
	case apperr.KindConflict:
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}

func success(c *fiber.Ctx, status int, data any) error {
	return c.Status(status).JSON(fiber.Map{
		"status": "success",
		"data":   data,
	})
}

func failure(c *fiber.Ctx, status int, code apperr.Code, message string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":  "error",
		"code":    code,
		"message": message,
	})
}

// errorHandler is the fiber ErrorHandler. Typed errors keep their code and
// message; anything else is logged and reported as a bare 500.
func errorHandler(logger *zap.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		var appErr *apperr.Error
		if errors.As(err, &appErr) && appErr.Kind != apperr.KindInternal {
			return failure(c, statusOf(appErr.Kind), appErr.Code, appErr.Message)
		}

		var ve validator.ValidationErrors
		if errors.As(err, &ve) {
			return failure(c, fiber.StatusBadRequest, apperr.CodeValidationFailed, validationMessage(ve))
		}

		var fe *fiber.Error
		if errors.As(err, &fe) {
			return failure(c, fe.Code, codeForStatus(fe.Code), fe.Message)
		}

		logger.Error("Request failed",
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Error(err),
		)
		return failure(c, fiber.StatusInternalServerError, "INTERNAL", "internal server error")
	}
}

func codeForStatus(status int) apperr.Code {
	switch status {
	case fiber.StatusNotFound:
		return apperr.CodeNotFound
	case fiber.StatusUnauthorized:
		return apperr.CodeUnauthorized
	case fiber.StatusBadRequest, fiber.StatusUnprocessableEntity:
		return apperr.CodeValidationFailed
	default:
		return "HTTP_ERROR"
	}
}

func validationMessage(ve validator.ValidationErrors) string {
	if len(ve) == 0 {
		return "invalid input"
	}
	fe := ve[0]
	return "field " + fe.Field() + " failed " + fe.Tag() + " check"
}
