package payment

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/handlers"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/utils/middleware"
	"github.com/sahilchouksey/skill-training-api/utils/response"
	"go.uber.org/zap"
)

// PaymentHandler bridges checkout requests to the payment service
type PaymentHandler struct {
	paymentService *services.PaymentService
	presenter      *handlers.UserPresenter
	logger         *zap.Logger
}

// NewPaymentHandler creates a new payment handler
func NewPaymentHandler(paymentService *services.PaymentService, presenter *handlers.UserPresenter, logger *zap.Logger) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService, presenter: presenter, logger: logger}
}

// CreateOrder opens a provider order for a course
func (h *PaymentHandler) CreateOrder(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Access token required")
	}

	var req services.CreateOrderRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	order, err := h.paymentService.CreateOrder(c.UserContext(), user, req)
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Failed to create payment order")
	}

	return response.Success(c, "", response.Payload{"order": order})
}

// VerifyPayment confirms a checkout and enrolls the caller
func (h *PaymentHandler) VerifyPayment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Access token required")
	}

	var req services.VerifyPaymentRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updated, err := h.paymentService.VerifyPayment(c.UserContext(), user, req)
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Payment verification failed")
	}

	return response.Success(c, "Payment verified and course enrolled successfully", response.Payload{
		"user": h.presenter.User(updated),
	})
}
