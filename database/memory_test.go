package database

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// steppedClock returns a clock that advances one second per call
func steppedClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func newTestStore(t *testing.T) *MemoryStore {
	t.Helper()
	s := NewMemoryStore()
	s.now = steppedClock()
	return s
}

func TestMemoryUsersCreateRejectsDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Users().Create(ctx, &model.User{Email: "a@example.com", Role: model.RoleStudent}))
	err := s.Users().Create(ctx, &model.User{Email: "A@example.com", Role: model.RoleStudent})
	assert.ErrorIs(t, err, ErrDuplicateEmail)
}

func TestMemoryUsersListByRoleNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	for _, email := range []string{"first@example.com", "second@example.com"} {
		require.NoError(t, s.Users().Create(ctx, &model.User{Email: email, Role: model.RoleStudent}))
	}
	require.NoError(t, s.Users().Create(ctx, &model.User{Email: "admin@example.com", Role: model.RoleAdmin}))

	students, err := s.Users().ListByRole(ctx, model.RoleStudent)
	require.NoError(t, err)
	require.Len(t, students, 2)
	assert.Equal(t, "second@example.com", students[0].Email)
	assert.Equal(t, "first@example.com", students[1].Email)
}

func TestMemoryUsersProgressRequiresEnrollment(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := &model.User{Email: "s@example.com", Role: model.RoleStudent}
	require.NoError(t, s.Users().Create(ctx, u))

	_, err := s.Users().SetDayProgress(ctx, u.ID, "web-development", 2, true)
	assert.ErrorIs(t, err, ErrNotFound)

	stored, err := s.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Empty(t, stored.TrainingProgress)

	_, err = s.Users().Enroll(ctx, u.ID, "web-development", model.PaymentInfo{Paid: true})
	require.NoError(t, err)

	updated, err := s.Users().SetDayProgress(ctx, u.ID, "web-development", 2, true)
	require.NoError(t, err)
	assert.True(t, updated.TrainingProgress["web-development"].Day2)
}

func TestMemoryUsersReturnedCopiesAreIsolated(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)
	u := &model.User{Email: "s@example.com", Role: model.RoleStudent}
	require.NoError(t, s.Users().Create(ctx, u))

	found, err := s.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	found.Shortlisted = true
	found.Enroll("seo", model.PaymentInfo{})

	again, err := s.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.False(t, again.Shortlisted)
	assert.Empty(t, again.EnrolledCourses)
}

func TestMemoryUsersConcurrentToggles(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	u := &model.User{Email: "s@example.com", Role: model.RoleStudent}
	require.NoError(t, s.Users().Create(ctx, u))
	_, err := s.Users().Enroll(ctx, u.ID, "seo", model.PaymentInfo{Paid: true})
	require.NoError(t, err)

	var wg sync.WaitGroup
	for d := model.Day(1); d <= model.TrainingDayCount; d++ {
		wg.Add(1)
		go func(day model.Day) {
			defer wg.Done()
			_, err := s.Users().SetDayProgress(ctx, u.ID, "seo", day, true)
			assert.NoError(t, err)
		}(d)
	}
	wg.Wait()

	final, err := s.Users().FindByID(ctx, u.ID)
	require.NoError(t, err)
	assert.True(t, final.TrainingProgress["seo"].AllComplete())
}

func TestMemoryCoursesActiveFiltering(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	courses := DefaultCourses()
	courses = append(courses, model.Course{CourseID: "retired", Title: "Retired", IsActive: false})
	require.NoError(t, s.Courses().InsertMany(ctx, courses))

	active, err := s.Courses().ListActive(ctx)
	require.NoError(t, err)
	require.Len(t, active, 2)
	assert.Equal(t, model.CourseID("digital-marketing"), active[0].CourseID)
	assert.Equal(t, model.CourseID("web-development"), active[1].CourseID)

	_, err = s.Courses().FindActive(ctx, "retired")
	assert.ErrorIs(t, err, ErrNotFound)

	all, err := s.Courses().ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	byID, err := s.Courses().ListActiveByIDs(ctx, []model.CourseID{"web-development", "retired"})
	require.NoError(t, err)
	require.Len(t, byID, 1)
	assert.Equal(t, model.CourseID("web-development"), byID[0].CourseID)
}

func TestMemoryPaymentsLifecycle(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	p := &model.CoursePayment{UserID: "u1", CourseID: "seo", RazorpayOrderID: "order_1", Amount: 75}
	require.NoError(t, s.Payments().Create(ctx, p))
	assert.Equal(t, model.PaymentPending, p.Status)

	require.NoError(t, s.Payments().MarkCompleted(ctx, "order_1", "pay_1", time.Now()))
	found, err := s.Payments().FindByOrderID(ctx, "order_1")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCompleted, found.Status)
	assert.Equal(t, "pay_1", found.RazorpayPaymentID)

	assert.ErrorIs(t, s.Payments().MarkCompleted(ctx, "missing", "pay_2", time.Now()), ErrNotFound)
}

func TestMemoryPaymentsExpirePending(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	require.NoError(t, s.Payments().Create(ctx, &model.CoursePayment{RazorpayOrderID: "old"}))
	require.NoError(t, s.Payments().Create(ctx, &model.CoursePayment{RazorpayOrderID: "paid"}))
	require.NoError(t, s.Payments().MarkCompleted(ctx, "paid", "pay", time.Now()))

	n, err := s.Payments().ExpirePendingBefore(ctx, time.Date(2030, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	old, err := s.Payments().FindByOrderID(ctx, "old")
	require.NoError(t, err)
	assert.Equal(t, model.PaymentExpired, old.Status)
}
