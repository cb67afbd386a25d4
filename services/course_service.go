package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/services/enrollment"
	"github.com/sahilchouksey/skill-training-api/utils/cache"
	"go.uber.org/zap"
)

const activeCoursesKey = "courses:active"

// CourseService reads the catalog, caching the active list when a cache is set
type CourseService struct {
	courses  database.CourseRepository
	cache    cache.Cache
	cacheTTL time.Duration
	logger   *zap.Logger
}

// NewCourseService creates a course service. c may be nil.
func NewCourseService(courses database.CourseRepository, c cache.Cache, cacheTTL time.Duration, logger *zap.Logger) *CourseService {
	return &CourseService{courses: courses, cache: c, cacheTTL: cacheTTL, logger: logger}
}

// List returns active courses, oldest first
func (s *CourseService) List(ctx context.Context) ([]model.Course, error) {
	if s.cache != nil && s.cacheTTL > 0 {
		var cached []model.Course
		err := cache.GetJSON(ctx, s.cache, activeCoursesKey, &cached)
		if err == nil {
			return cached, nil
		}
		if !errors.Is(err, cache.ErrNotFound) {
			s.logger.Warn("course cache read failed", zap.Error(err))
		}
	}

	courses, err := s.courses.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}

	if s.cache != nil && s.cacheTTL > 0 {
		if err := cache.SetJSON(ctx, s.cache, activeCoursesKey, courses, s.cacheTTL); err != nil {
			s.logger.Warn("course cache write failed", zap.Error(err))
		}
	}
	return courses, nil
}

// Get returns one active course
func (s *CourseService) Get(ctx context.Context, rawID string) (*model.Course, error) {
	id, err := model.ParseCourseID(rawID)
	if err != nil {
		return nil, ErrCourseNotFound
	}

	course, err := s.courses.FindActive(ctx, id)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrCourseNotFound
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return course, nil
}

// Enrolled returns the active courses the user is enrolled in
func (s *CourseService) Enrolled(ctx context.Context, user *model.User) ([]model.Course, error) {
	if len(user.EnrolledCourses) == 0 {
		return []model.Course{}, nil
	}

	courses, err := s.courses.ListActiveByIDs(ctx, user.EnrolledCourses)
	if err != nil {
		return nil, fmt.Errorf("list enrolled courses: %w", err)
	}
	return courses, nil
}

// Catalog returns assignment requirements for every course, active or not
func (s *CourseService) Catalog(ctx context.Context) (enrollment.Catalog, error) {
	courses, err := s.courses.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list all courses: %w", err)
	}
	return enrollment.NewCatalog(courses), nil
}
