package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/utils/response"
	"go.uber.org/zap"
)

// PaymentStatus reports whether a payment provider is wired in
type PaymentStatus interface {
	Configured() bool
}

// HandleCheckHealth reports liveness, pings the store and tells clients
// whether checkout is available
func HandleCheckHealth(store database.Storage, payments PaymentStatus, logger *zap.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.HealthCheck(); err != nil {
			logger.Warn("health check failed", zap.Error(err))
			return response.ServiceUnavailable(c, "Database unavailable")
		}

		paymentState := "unavailable"
		if payments != nil && payments.Configured() {
			paymentState = "configured"
		}
		return c.JSON(fiber.Map{
			"message":  "Skill Training API is running!",
			"payments": paymentState,
		})
	}
}
