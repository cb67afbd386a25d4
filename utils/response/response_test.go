package response

import (
	"encoding/json"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func call(t *testing.T, h fiber.Handler) (int, map[string]interface{}) {
	t.Helper()
	app := fiber.New()
	app.Get("/", h)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	return resp.StatusCode, body
}

func TestSuccessMergesPayload(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return Success(c, "Login successful", Payload{"token": "abc"})
	})

	assert.Equal(t, 200, status)
	assert.Equal(t, true, body["success"])
	assert.Equal(t, "Login successful", body["message"])
	assert.Equal(t, "abc", body["token"])
}

func TestSuccessOmitsEmptyMessage(t *testing.T) {
	_, body := call(t, func(c *fiber.Ctx) error {
		return Success(c, "", Payload{"courses": []string{}})
	})

	_, hasMessage := body["message"]
	assert.False(t, hasMessage)
}

func TestPayloadCannotOverrideSuccess(t *testing.T) {
	_, body := call(t, func(c *fiber.Ctx) error {
		return Success(c, "", Payload{"success": false})
	})
	assert.Equal(t, true, body["success"])
}

func TestErrorHelpers(t *testing.T) {
	tests := []struct {
		name   string
		h      fiber.Handler
		status int
		code   string
	}{
		{"bad request", func(c *fiber.Ctx) error { return BadRequest(c, "nope") }, 400, "BAD_REQUEST"},
		{"unauthorized", func(c *fiber.Ctx) error { return Unauthorized(c, "") }, 401, "UNAUTHORIZED"},
		{"forbidden", func(c *fiber.Ctx) error { return Forbidden(c, "") }, 403, "FORBIDDEN"},
		{"not found", func(c *fiber.Ctx) error { return NotFound(c, "") }, 404, "NOT_FOUND"},
		{"unavailable", func(c *fiber.Ctx) error { return ServiceUnavailable(c, "") }, 503, "SERVICE_UNAVAILABLE"},
		{"internal", func(c *fiber.Ctx) error { return InternalServerError(c, "") }, 500, "INTERNAL_ERROR"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := call(t, tt.h)
			assert.Equal(t, tt.status, status)
			assert.Equal(t, false, body["success"])
			assert.Equal(t, tt.code, body["code"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestValidationErrorUsesFirstMessage(t *testing.T) {
	status, body := call(t, func(c *fiber.Ctx) error {
		return ValidationError(c, []FieldError{
			{Field: "email", Message: "Please enter a valid email"},
			{Field: "password", Message: "Password is required"},
		})
	})

	assert.Equal(t, 400, status)
	assert.Equal(t, "Please enter a valid email", body["message"])
	assert.Len(t, body["errors"], 2)
}
