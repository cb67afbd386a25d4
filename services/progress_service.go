package services

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"mime/multipart"
	"strconv"
	"time"

	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/services/enrollment"
	"github.com/sahilchouksey/skill-training-api/services/storage"
	"github.com/sahilchouksey/skill-training-api/utils/filevalidation"
	"go.uber.org/zap"
)

// UpdateProgressRequest toggles one training day. Day accepts "day2" or 2.
type UpdateProgressRequest struct {
	CourseID  string          `json:"courseId"`
	Day       json.RawMessage `json:"day"`
	Completed *bool           `json:"completed"`
}

// ProgressService drives a student's per-course training state
type ProgressService struct {
	users  database.UserRepository
	files  storage.FileStore
	limits filevalidation.Limits
	now    func() time.Time
	logger *zap.Logger
}

func NewProgressService(users database.UserRepository, files storage.FileStore, logger *zap.Logger) *ProgressService {
	return &ProgressService{
		users:  users,
		files:  files,
		limits: filevalidation.AssignmentLimits,
		now:    time.Now,
		logger: logger,
	}
}

func parseDayValue(raw json.RawMessage) (model.Day, error) {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return model.ParseDay(s)
	}
	var n int
	if err := json.Unmarshal(raw, &n); err == nil {
		return model.ParseDay(strconv.Itoa(n))
	}
	return 0, model.ErrInvalidDay
}

func isMissing(raw json.RawMessage) bool {
	v := bytes.TrimSpace(raw)
	return len(v) == 0 || bytes.Equal(v, []byte("null")) || bytes.Equal(v, []byte(`""`))
}

// UpdateProgress sets one day flag on a course the user is enrolled in
func (s *ProgressService) UpdateProgress(ctx context.Context, user *model.User, req UpdateProgressRequest) (*model.User, error) {
	if req.CourseID == "" || isMissing(req.Day) || req.Completed == nil {
		return nil, newValidationError("Course ID, day, and completion status are required")
	}

	day, err := parseDayValue(req.Day)
	if err != nil {
		return nil, newValidationError("Day must be one of day1, day2, day3")
	}

	courseID, err := model.ParseCourseID(req.CourseID)
	if err != nil || !enrollment.CanToggleProgress(user, courseID) {
		return nil, ErrNotEnrolled
	}

	updated, err := s.users.SetDayProgress(ctx, user.ID, courseID, day, *req.Completed)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("set day progress: %w", err)
	}
	return updated, nil
}

// SubmitAssignment validates and stores the file, then records it for the
// course, replacing any earlier submission
func (s *ProgressService) SubmitAssignment(ctx context.Context, user *model.User, rawCourseID string, file *multipart.FileHeader) (*model.User, error) {
	if rawCourseID == "" || file == nil {
		return nil, newValidationError("Course ID and assignment file are required")
	}

	result, err := filevalidation.ValidateFileHeader(file, s.limits)
	if err != nil {
		return nil, fmt.Errorf("read assignment: %w", err)
	}
	if !result.Valid {
		return nil, newValidationError(result.Error)
	}

	courseID, err := model.ParseCourseID(rawCourseID)
	if err != nil || !enrollment.CanSubmitAssignment(user, courseID) {
		return nil, ErrNotEnrolled
	}

	name := filevalidation.GenerateFilename(file.Filename, s.now())
	ref, err := s.files.Save(ctx, name, bytes.NewReader(result.Content), result.FileSize, result.ContentType)
	if err != nil {
		return nil, fmt.Errorf("store assignment: %w", err)
	}

	updated, err := s.users.SetAssignment(ctx, user.ID, courseID, ref)
	if err != nil {
		if delErr := s.files.Delete(ctx, ref); delErr != nil {
			s.logger.Warn("failed to clean up assignment after update error",
				zap.String("file", ref), zap.Error(delErr))
		}
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrNotEnrolled
		}
		return nil, fmt.Errorf("set assignment: %w", err)
	}

	s.logger.Info("assignment submitted",
		zap.String("user_id", user.ID),
		zap.String("course_id", courseID.String()),
		zap.String("file", ref))
	return updated, nil
}
