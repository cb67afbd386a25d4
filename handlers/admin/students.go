package admin

import (
	"bytes"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/handlers"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/utils/response"
	"go.uber.org/zap"
)

// StudentsHandler serves administrative student review
type StudentsHandler struct {
	adminService *services.AdminService
	presenter    *handlers.UserPresenter
	logger       *zap.Logger
}

// NewStudentsHandler creates a new admin students handler
func NewStudentsHandler(adminService *services.AdminService, presenter *handlers.UserPresenter, logger *zap.Logger) *StudentsHandler {
	return &StudentsHandler{adminService: adminService, presenter: presenter, logger: logger}
}

// ShortlistRequest is the shortlist body. The value is checked by hand so a
// non-boolean can be reported instead of failing the decode.
type ShortlistRequest struct {
	Shortlisted interface{} `json:"shortlisted"`
}

// ListStudents returns students with their completion summary
// GET /api/users/students?search=&status=
func (h *StudentsHandler) ListStudents(c *fiber.Ctx) error {
	filter := services.StudentFilter{
		Search: strings.TrimSpace(c.Query("search")),
		Status: strings.ToLower(strings.TrimSpace(c.Query("status"))),
	}
	if !services.ValidStatusFilter(filter.Status) {
		return response.BadRequest(c, "Status must be one of completed, pending, shortlisted")
	}

	students, err := h.adminService.ListStudents(c.UserContext(), filter)
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Server error")
	}

	return response.Success(c, "", response.Payload{"students": h.presenter.Students(students)})
}

// Stats returns the dashboard counters
func (h *StudentsHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.adminService.Stats(c.UserContext())
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Server error")
	}

	return response.Success(c, "", response.Payload{"stats": stats})
}

// ExportShortlisted downloads shortlisted students as CSV
func (h *StudentsHandler) ExportShortlisted(c *fiber.Ctx) error {
	var buf bytes.Buffer
	if err := h.adminService.ExportShortlistedCSV(c.UserContext(), &buf); err != nil {
		return handlers.RespondError(c, h.logger, err, "Failed to export students")
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Attachment("shortlisted-students.csv")
	return c.Send(buf.Bytes())
}

// SetShortlist adds or removes a student from the shortlist
// PUT /api/users/:userId/shortlist
func (h *StudentsHandler) SetShortlist(c *fiber.Ctx) error {
	var req ShortlistRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}

	var value *bool
	if b, ok := req.Shortlisted.(bool); ok {
		value = &b
	}

	updated, err := h.adminService.SetShortlist(c.UserContext(), c.Params("userId"), value)
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Server error")
	}

	message := "User removed from shortlist successfully"
	if updated.Shortlisted {
		message = "User shortlisted successfully"
	}
	return response.Success(c, message, response.Payload{"user": h.presenter.User(updated)})
}
