package course

import (
	"github.com/gofiber/fiber/v2"
	"github.com/sahilchouksey/skill-training-api/handlers"
	"github.com/sahilchouksey/skill-training-api/services"
	"github.com/sahilchouksey/skill-training-api/utils/middleware"
	"github.com/sahilchouksey/skill-training-api/utils/response"
	"go.uber.org/zap"
)

// CourseHandler serves the course catalog
type CourseHandler struct {
	courseService *services.CourseService
	logger        *zap.Logger
}

// NewCourseHandler creates a new course handler
func NewCourseHandler(courseService *services.CourseService, logger *zap.Logger) *CourseHandler {
	return &CourseHandler{courseService: courseService, logger: logger}
}

// ListCourses returns every active course
func (h *CourseHandler) ListCourses(c *fiber.Ctx) error {
	courses, err := h.courseService.List(c.UserContext())
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Server error")
	}

	return response.Success(c, "", response.Payload{"courses": courses})
}

// GetCourse returns a single active course
func (h *CourseHandler) GetCourse(c *fiber.Ctx) error {
	course, err := h.courseService.Get(c.UserContext(), c.Params("courseId"))
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Server error")
	}

	return response.Success(c, "", response.Payload{"course": course})
}

// ListEnrolled returns the active courses the caller is enrolled in
func (h *CourseHandler) ListEnrolled(c *fiber.Ctx) error {
	user, ok := middleware.GetUser(c)
	if !ok {
		return response.Unauthorized(c, "Access token required")
	}

	courses, err := h.courseService.Enrolled(c.UserContext(), user)
	if err != nil {
		return handlers.RespondError(c, h.logger, err, "Server error")
	}

	return response.Success(c, "", response.Payload{"courses": courses})
}
