package user

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/handlers"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/utils/middleware"
	"github.com/sahilchouksey/skill-training-api/utils/response"
	"go.uber.org/zap"
)

const assignmentField = "assignment"

// ProgressHandler serves the student training endpoints
type ProgressHandler struct {
	progressService *services.ProgressService
	presenter       *handlers.UserPresenter
	logger          *zap.Logger
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *services.ProgressService, presenter *handlers.UserPresenter, logger *zap.Logger) *ProgressHandler {
	return &ProgressHandler{progressService: progressService, presenter: presenter, logger: logger}
}

// UpdateProgress toggles one training day
func (h *ProgressHandler) UpdateProgress(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Access token required")
	}

	var req services.UpdateProgressRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	updated, err := h.progressService.UpdateProgress(c.UserContext(), user, req)
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Server error")
	}

	return response.Success(c, "Progress updated successfully", response.Payload{
		"user": h.presenter.User(updated),
	})
}

// SubmitAssignment stores an uploaded assignment file
func (h *ProgressHandler) SubmitAssignment(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Access token required")
	}

	// A missing file is reported together with a missing course id
	file, _ := c.FormFile(assignmentField)

	updated, err := h.progressService.SubmitAssignment(c.UserContext(), user, c.FormValue("courseId"), file)
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Failed to submit assignment")
	}

	return response.Success(c, "Assignment submitted successfully", response.Payload{
		"user": h.presenter.User(updated),
	})
}
