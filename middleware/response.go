package middleware

import (
	"errors"

	"stockpredictor/services"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

func JsonResponse(c *fiber.Ctx, statusCode int, status bool, message string, data interface{}) error {
	return c.Status(statusCode).JSON(fiber.Map{
		"status":  status,
		"message": message,
		"data":    data,
	})
}

// ValidationErrorResponse reports field errors collected by a validator.
func ValidationErrorResponse(c *fiber.Ctx, errors map[string]string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
		"error":  "Validation failed!",
		"fields": errors,
	})
}

// ErrorMessage writes a {error} body.
func ErrorMessage(c *fiber.Ctx, statusCode int, message string) error {
	return c.Status(statusCode).JSON(fiber.Map{"error": message})
}

// ErrorResponse maps a workflow error onto its status and {error} body.
// A non-zero status overrides the kind's default.
func ErrorResponse(c *fiber.Ctx, err error, status int) error {
	var e *services.Error
	if !errors.As(err, &e) {
		log.Error().Err(err).Str("path", c.Path()).Msg("Request failed")
		if status == 0 {
			status = fiber.StatusInternalServerError
		}
		return ErrorMessage(c, status, err.Error())
	}

	if status == 0 {
		status = e.Kind.Status()
	}
	body := fiber.Map{"error": e.Error()}
	if e.Detail != nil {
		body["model_response"] = e.Detail
	}
	log.Warn().Str("kind", e.Kind.String()).Str("path", c.Path()).Msg(e.Error())
	return c.Status(status).JSON(body)
}
