package services

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/services/enrollment"
	"go.uber.org/zap"
)

// Student list filters
const (
	StatusAll         = ""
	StatusCompleted   = "completed"
	StatusPending     = "pending"
	StatusShortlisted = "shortlisted"
)

// StudentView is a student with the derived completion summary
type StudentView struct {
	model.UserResponse
	CompletionStatus string `json:"completionStatus"`
}

// StudentFilter narrows the student list
type StudentFilter struct {
	Search string
	Status string
}

// Stats backs the admin dashboard counters
type Stats struct {
	TotalStudents       int `json:"totalStudents"`
	ShortlistedStudents int `json:"shortlistedStudents"`
	CompletedStudents   int `json:"completedStudents"`
	TotalEnrollments    int `json:"totalEnrollments"`
}

// AdminService implements administrative review of students
type AdminService struct {
	users   database.UserRepository
	courses *CourseService
	logger  *zap.Logger
}

func NewAdminService(users database.UserRepository, courses *CourseService, logger *zap.Logger) *AdminService {
	return &AdminService{users: users, courses: courses, logger: logger}
}

func (s *AdminService) load(ctx context.Context) ([]model.User, enrollment.Catalog, error) {
	students, err := s.users.ListByRole(ctx, model.RoleStudent)
	if err != nil {
		return nil, nil, fmt.Errorf("list students: %w", err)
	}
	catalog, err := s.courses.Catalog(ctx)
	if err != nil {
		return nil, nil, err
	}
	return students, catalog, nil
}

func matchesFilter(u *model.User, catalog enrollment.Catalog, f StudentFilter) bool {
	if q := strings.ToLower(strings.TrimSpace(f.Search)); q != "" {
		if !strings.Contains(strings.ToLower(u.Name), q) && !strings.Contains(strings.ToLower(u.Email), q) {
			return false
		}
	}

	switch f.Status {
	case StatusCompleted:
		return enrollment.CompletedCourses(u, catalog) > 0
	case StatusPending:
		return enrollment.CompletedCourses(u, catalog) < len(u.EnrolledCourses)
	case StatusShortlisted:
		return u.Shortlisted
	}
	return true
}

// ValidStatusFilter reports whether status is a known filter value
func ValidStatusFilter(status string) bool {
	switch status {
	case StatusAll, StatusCompleted, StatusPending, StatusShortlisted:
		return true
	}
	return false
}

// ListStudents returns students newest first with their completion summary
func (s *AdminService) ListStudents(ctx context.Context, filter StudentFilter) ([]StudentView, error) {
	students, catalog, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	views := make([]StudentView, 0, len(students))
	for i := range students {
		u := &students[i]
		if !matchesFilter(u, catalog, filter) {
			continue
		}
		views = append(views, StudentView{
			UserResponse:     u.Public(),
			CompletionStatus: enrollment.CompletionSummary(u, catalog),
		})
	}
	return views, nil
}

// SetShortlist sets the shortlist flag. A nil value means the client sent
// something other than a boolean.
func (s *AdminService) SetShortlist(ctx context.Context, userID string, value *bool) (*model.User, error) {
	if value == nil {
		return nil, newValidationError("Shortlisted status must be a boolean")
	}

	updated, err := s.users.SetShortlisted(ctx, userID, *value)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("set shortlisted: %w", err)
	}

	s.logger.Info("shortlist updated", zap.String("user_id", userID), zap.Bool("shortlisted", *value))
	return updated, nil
}

// Stats computes the dashboard counters
func (s *AdminService) Stats(ctx context.Context) (*Stats, error) {
	students, catalog, err := s.load(ctx)
	if err != nil {
		return nil, err
	}

	stats := &Stats{TotalStudents: len(students)}
	for i := range students {
		u := &students[i]
		if u.Shortlisted {
			stats.ShortlistedStudents++
		}
		if enrollment.CompletedCourses(u, catalog) > 0 {
			stats.CompletedStudents++
		}
		stats.TotalEnrollments += len(u.EnrolledCourses)
	}
	return stats, nil
}

// ExportShortlistedCSV writes shortlisted students as CSV
func (s *AdminService) ExportShortlistedCSV(ctx context.Context, w io.Writer) error {
	students, catalog, err := s.load(ctx)
	if err != nil {
		return err
	}

	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"Name", "Email", "Enrolled Courses", "Completion Status", "Shortlisted"}); err != nil {
		return err
	}

	for i := range students {
		u := &students[i]
		if !u.Shortlisted {
			continue
		}

		courses := make([]string, len(u.EnrolledCourses))
		for j, id := range u.EnrolledCourses {
			courses[j] = id.String()
		}

		if err := cw.Write([]string{
			u.Name,
			u.Email,
			strings.Join(courses, ", "),
			enrollment.CompletionSummary(u, catalog),
			"Yes",
		}); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
