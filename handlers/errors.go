package handlers

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/utils/middleware"
	"github.com/sahilchouksey/skill-training-api/utils/response"
	"go.uber.org/zap"
)

// RespondError maps a service error onto the response envelope.
// Anything unclassified is logged and answered with a generic 500.
func RespondError(c *fiber.Ctx, logger *zap.Logger, err error, fallback string) error {
	var verr *services.ValidationError
	if errors.As(err, &verr) {
		if len(verr.Fields) > 0 {
			return response.ValidationError(c, verr.Fields)
		}
		return response.BadRequest(c, verr.Message)
	}

	switch {
	case errors.Is(err, services.ErrEmailTaken):
		return response.BadRequest(c, "User already exists with this email")
	case errors.Is(err, services.ErrInvalidCredentials):
		return response.Unauthorized(c, "Invalid email or password")
	case errors.Is(err, services.ErrNotEnrolled):
		return response.Forbidden(c, "Not enrolled in this course")
	case errors.Is(err, services.ErrCourseNotFound):
		return response.NotFound(c, "Course not found")
	case errors.Is(err, services.ErrUserNotFound):
		return response.NotFound(c, "User not found")
	case errors.Is(err, services.ErrAlreadyEnrolled):
		return response.BadRequest(c, "Already enrolled in this course")
	case errors.Is(err, services.ErrPaymentUnavailable):
		return response.ServiceUnavailable(c, "Payment service not configured. Please contact administrator.")
	case errors.Is(err, services.ErrInvalidSignature):
		return response.BadRequest(c, "Payment verification failed")
	case errors.Is(err, services.ErrOrderMismatch):
		return response.BadRequest(c, "Payment order does not match this course")
	}

	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", c.Method()),
		zap.String("path", c.Path()),
		zap.Any("request_id", c.Locals("requestid")),
	}
	if userID, ok := middleware.GetUserID(c); ok {
		fields = append(fields, zap.String("user_id", userID))
	}
	logger.Error(fallback, fields...)
	return response.InternalServerError(c, fallback)
}
