package services

import (
	"context"
	"testing"
	"time"

	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/utils/cache"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestCourseServiceList(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t)
	svc := NewCourseService(store.Courses(), nil, 0, zap.NewNop())

	courses, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, courses, 2)
	assert.Equal(t, model.CourseID("digital-marketing"), courses[0].CourseID)
	assert.Equal(t, model.CourseID("web-development"), courses[1].CourseID)
	assert.Equal(t, 75.0, courses[1].Price)
	assert.Len(t, courses[1].TrainingDays, 3)
}

func TestCourseServiceGet(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t)
	require.NoError(t, store.Courses().InsertMany(ctx, []model.Course{{
		CourseID: "retired", Title: "Retired", IsActive: false,
	}}))
	svc := NewCourseService(store.Courses(), nil, 0, zap.NewNop())

	course, err := svc.Get(ctx, "web-development")
	require.NoError(t, err)
	assert.Equal(t, "Web Developer Training", course.Title)

	for _, id := range []string{"retired", "unknown", "Not A Slug"} {
		_, err := svc.Get(ctx, id)
		assert.ErrorIs(t, err, ErrCourseNotFound, id)
	}
}

func TestCourseServiceUsesCache(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t)
	svc := NewCourseService(store.Courses(), cache.NewMemoryCache(), time.Minute, zap.NewNop())

	first, err := svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, first, 2)

	require.NoError(t, store.Courses().InsertMany(ctx, []model.Course{{CourseID: "new-course", IsActive: true}}))

	cached, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cached, 2)
	assert.Equal(t, first[0].CourseID, cached[0].CourseID)
	assert.Equal(t, first[0].TrainingDays, cached[0].TrainingDays)
}

func TestCourseServiceEnrolled(t *testing.T) {
	ctx := context.Background()
	store := newSeededStore(t)
	svc := NewCourseService(store.Courses(), nil, 0, zap.NewNop())

	u := createStudent(t, store, "asha")
	courses, err := svc.Enrolled(ctx, u)
	require.NoError(t, err)
	assert.Empty(t, courses)
	assert.NotNil(t, courses)

	u = enroll(t, store, u, "web-development")
	courses, err = svc.Enrolled(ctx, u)
	require.NoError(t, err)
	require.Len(t, courses, 1)
	assert.Equal(t, model.CourseID("web-development"), courses[0].CourseID)
}
