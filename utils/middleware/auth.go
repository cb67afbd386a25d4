package middleware

import (
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/utils/auth"
	"github.com/sahilchouksey/skill-training-api/utils/response"
)

const (
	localUserID = "user_id"
	localUser   = "user"
)

// AuthMiddleware handles JWT authentication
type AuthMiddleware struct {
	jwtManager *auth.JWTManager
	users      database.UserRepository
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(jwtManager *auth.JWTManager, users database.UserRepository) *AuthMiddleware {
	return &AuthMiddleware{
		jwtManager: jwtManager,
		users:      users,
	}
}

// Required is middleware that requires a valid JWT token for a live user
func (m *AuthMiddleware) Required() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get(fiber.HeaderAuthorization)
		if authHeader == "" {
			return response.Unauthorized(c, "Access token required")
		}

		// Extract token from "Bearer <token>"
		parts := strings.Fields(authHeader)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return response.Unauthorized(c, "Invalid authorization format")
		}

		claims, err := m.jwtManager.ValidateToken(parts[1])
		if err != nil {
			if errors.Is(err, auth.ErrExpiredToken) {
				return response.Unauthorized(c, "Token has expired")
			}
			return response.Unauthorized(c, "Invalid token")
		}

		user, err := m.users.FindByID(c.UserContext(), claims.UserID)
		if err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return response.Unauthorized(c, "User not found")
			}
			return response.InternalServerError(c, "Failed to load user")
		}

		c.Locals(localUserID, user.ID)
		c.Locals(localUser, user)

		return c.Next()
	}
}

// RequireRole rejects callers whose resolved role is not one of roles.
// Must run after Required.
func (m *AuthMiddleware) RequireRole(message string, roles ...model.Role) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := GetUser(c)
		if !ok {
			return response.Unauthorized(c, "Access token required")
		}

		for _, r := range roles {
			if user.Role == r {
				return c.Next()
			}
		}

		return response.Forbidden(c, message)
	}
}

// RequireAdmin is middleware that requires admin role
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return m.RequireRole("Admin access required", model.RoleAdmin)
}

// RequireStudent is middleware that requires student role
func (m *AuthMiddleware) RequireStudent() fiber.Handler {
	return m.RequireRole("Student access required", model.RoleStudent)
}

// GetUserID extracts user ID from context
func GetUserID(c *fiber.Ctx) (string, bool) {
	id, ok := c.Locals(localUserID).(string)
	return id, ok && id != ""
}

// GetUser extracts full user object from context
func GetUser(c *fiber.Ctx) (*model.User, bool) {
	u, ok := c.Locals(localUser).(*model.User)
	return u, ok && u != nil
}
