package auth

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/handlers"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/utils/middleware"
	"github.com/sahilchouksey/skill-training-api/utils/response"
	"go.uber.org/zap"
)

// AuthHandler handles signup, login and the current-user lookup
type AuthHandler struct {
	authService          *services.AuthService
	bruteForceProtection *middleware.BruteForceProtection
	presenter            *handlers.UserPresenter
	logger               *zap.Logger
}

// NewAuthHandler creates a new auth handler. bruteForce may be nil.
func NewAuthHandler(authService *services.AuthService, bruteForce *middleware.BruteForceProtection, presenter *handlers.UserPresenter, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService:          authService,
		bruteForceProtection: bruteForce,
		presenter:            presenter,
		logger:               logger,
	}
}

// Signup handles student registration
func (h *AuthHandler) Signup(c *fiber.Ctx) error {
	var req services.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Signup(c.UserContext(), req)
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Server error during signup")
	}

	return response.Created(c, "Account created successfully", h.tokenPayload(result))
}

// Login handles user login
func (h *AuthHandler) Login(c *fiber.Ctx) error {
	var req services.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	result, err := h.authService.Login(c.UserContext(), req)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) && h.bruteForceProtection != nil {
			h.recordFailedLogin(c)
		}
		return handlers.RespondError(c, h.logger, err, "Server error during login")
	}

	// Clear failed attempts on successful login
	if h.bruteForceProtection != nil {
		h.bruteForceProtection.RecordSuccess(c.UserContext(), c.IP())
	}

	return response.Success(c, "Login successful", h.tokenPayload(result))
}

func (h *AuthHandler) recordFailedLogin(c *fiber.Ctx) {
	ctx, ip := c.UserContext(), c.IP()
	h.bruteForceProtection.RecordFailure(ctx, ip)

	attempts, err := h.bruteForceProtection.AttemptCount(ctx, ip)
	if err != nil {
		return
	}
	h.logger.Info("failed login", zap.String("ip", ip), zap.Int64("attempts", attempts))
}

// tokenPayload carries the token lifetime in seconds next to the token
func (h *AuthHandler) tokenPayload(result *services.AuthResult) response.Payload {
	return response.Payload{
		"token":     result.Token,
		"expiresIn": int64(result.ExpiresIn / time.Second),
		"user":      h.presenter.User(result.User),
	}
}

// Me returns the authenticated user
func (h *AuthHandler) Me(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Access token required")
	}

	return response.Success(c, "", response.Payload{"user": h.presenter.User(user)})
}
