package response

import (
	"github.com/gofiber/fiber/v2"
)

// Payload holds the response fields merged next to success/message
type Payload = fiber.Map

// FieldError describes a single invalid request field
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// JSON writes {success, message?, ...payload}
func JSON(c *fiber.Ctx, status int, success bool, message string, payload Payload) error {
	body := make(fiber.Map, len(payload)+2)
	for k, v := range payload {
		body[k] = v
	}
	body["success"] = success
	if message != "" {
		body["message"] = message
	}
	return c.Status(status).JSON(body)
}

// Success returns a successful response
func Success(c *fiber.Ctx, message string, payload Payload) error {
	return JSON(c, fiber.StatusOK, true, message, payload)
}

// Created returns a 201 Created response
func Created(c *fiber.Ctx, message string, payload Payload) error {
	return JSON(c, fiber.StatusCreated, true, message, payload)
}

// Error returns an error response carrying a machine readable code
func Error(c *fiber.Ctx, statusCode int, message string, code string) error {
	return JSON(c, statusCode, false, message, Payload{"code": code})
}

// BadRequest returns a 400 Bad Request response
func BadRequest(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadRequest, message, "BAD_REQUEST")
}

// ValidationError returns a 400 response listing every invalid field.
// The message is the first field error so simple clients can show it directly.
func ValidationError(c *fiber.Ctx, errs []FieldError) error {
	message := "Validation failed"
	if len(errs) > 0 {
		message = errs[0].Message
	}
	return JSON(c, fiber.StatusBadRequest, false, message, Payload{
		"code":   "VALIDATION_ERROR",
		"errors": errs,
	})
}

// Unauthorized returns a 401 Unauthorized response
func Unauthorized(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Unauthorized access"
	}
	return Error(c, fiber.StatusUnauthorized, message, "UNAUTHORIZED")
}

// Forbidden returns a 403 Forbidden response
func Forbidden(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Access forbidden"
	}
	return Error(c, fiber.StatusForbidden, message, "FORBIDDEN")
}

// NotFound returns a 404 Not Found response
func NotFound(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Resource not found"
	}
	return Error(c, fiber.StatusNotFound, message, "NOT_FOUND")
}

// TooManyRequests returns a 429 Too Many Requests response
func TooManyRequests(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Too many requests"
	}
	return Error(c, fiber.StatusTooManyRequests, message, "TOO_MANY_REQUESTS")
}

// InternalServerError returns a 500 Internal Server Error response
func InternalServerError(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Internal server error"
	}
	return Error(c, fiber.StatusInternalServerError, message, "INTERNAL_ERROR")
}

// ServiceUnavailable returns a 503 Service Unavailable response
func ServiceUnavailable(c *fiber.Ctx, message string) error {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	return Error(c, fiber.StatusServiceUnavailable, message, "SERVICE_UNAVAILABLE")
}
