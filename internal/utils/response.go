package utils

import (
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/calcforge/calcdb/internal/schemas"
)

// SuccessResponse sends a standard success response
func SuccessResponse(c *fiber.Ctx, data interface{}, status int) error {
	return c.Status(status).JSON(data)
}

// ErrorResponse sends a standard error response
func ErrorResponse(c *fiber.Ctx, message string, status int, errorType string) error {
	return c.Status(status).JSON(fiber.Map{
		"status":    status,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
		"type":      errorType,
	})
}

// ValidationErrorResponse sends a 422 carrying every violated rule so a
// client can fix all of them in one round trip
func ValidationErrorResponse(c *fiber.Ctx, verr *schemas.ValidationError) error {
	return c.Status(fiber.StatusUnprocessableEntity).JSON(fiber.Map{
		"status":     fiber.StatusUnprocessableEntity,
		"message":    "Validation failed",
		"ok":         false,
		"violations": verr.Violations,
		"timestamp":  time.Now().UTC().Format(time.RFC3339),
		"url":        c.OriginalURL(),
		"type":       "validation",
	})
}

// NotFoundResponse sends a 404 not found response
func NotFoundResponse(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"status":    fiber.StatusNotFound,
		"message":   message,
		"ok":        false,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"url":       c.OriginalURL(),
	})
}

// NoContentResponse sends an empty 204 response for mutations with nothing
// to return
func NoContentResponse(c *fiber.Ctx) error {
	return c.SendStatus(fiber.StatusNoContent)
}

// ErrorResponseStruct defines the schema for error responses
type ErrorResponseStruct struct {
	Status     int                 `json:"status"`
	Message    string              `json:"message"`
	Ok         bool                `json:"ok"`
	Timestamp  string              `json:"timestamp"`
	URL        string              `json:"url"`
	Type       string              `json:"type,omitempty"`
	Violations []schemas.Violation `json:"violations,omitempty"`
}
