package auth

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

// HTTPStatusFromError maps the domain error taxonomy to HTTP status codes.
// Anything without a recognized category is an internal error.
func HTTPStatusFromError(err error) int {
	var rich *errors.Error
	if !errors.As(err, &rich) {
		return fiber.StatusInternalServerError
	}

	switch rich.Category {
	case errors.CategoryAuth:
		return fiber.StatusUnauthorized
	case errors.CategoryAuthz:
		return fiber.StatusForbidden
	case errors.CategoryConflict:
		return fiber.StatusConflict
	case errors.CategoryNotFound:
		return fiber.StatusNotFound
	case errors.CategoryBadInput, errors.CategoryValidation:
		return fiber.StatusBadRequest
	default:
		return fiber.StatusInternalServerError
	}
}

// RenderError is the single boundary translator: every failure leaves the
// service as {status, message} JSON and nothing else. Internal failures keep
// a generic message so no collaborator detail leaks to callers.
func RenderError(c *fiber.Ctx, err error) error {
	status := HTTPStatusFromError(err)

	message := "Internal Server Error"
	if status != fiber.StatusInternalServerError {
		var rich *errors.Error
		if errors.As(err, &rich) && rich.Message != "" {
			message = rich.Message
		}
	}

	return c.Status(status).JSON(fiber.Map{
		"status":  status,
		"message": message,
	})
}

// RenderValidationError reports payload validation failures as 400s carrying
// the validator's field messages.
func RenderValidationError(c *fiber.Ctx, err error) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"status":  fiber.StatusBadRequest,
		"message": err.Error(),
	})
}
