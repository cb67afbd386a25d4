package database

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sahilchouksey/skill-training-api/model"
)

// MemoryStore keeps everything in process memory. Used for tests and local
// development without a database.
type MemoryStore struct {
	mutex    sync.RWMutex
	users    map[string]*model.User
	courses  map[model.CourseID]*model.Course
	payments map[string]*model.CoursePayment // keyed by order id
	now      func() time.Time
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:    map[string]*model.User{},
		courses:  map[model.CourseID]*model.Course{},
		payments: map[string]*model.CoursePayment{},
		now:      time.Now,
	}
}

// SetClock replaces the time source used for timestamps
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.now = now
}

func (s *MemoryStore) Init() error        { return nil }
func (s *MemoryStore) Close() error       { return nil }
func (s *MemoryStore) HealthCheck() error { return nil }

func (s *MemoryStore) Users() UserRepository       { return memoryUsers{s} }
func (s *MemoryStore) Courses() CourseRepository   { return memoryCourses{s} }
func (s *MemoryStore) Payments() PaymentRepository { return memoryPayments{s} }

type memoryUsers struct{ s *MemoryStore }

func (r memoryUsers) Create(_ context.Context, u *model.User) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	for _, existing := range r.s.users {
		if strings.EqualFold(existing.Email, u.Email) {
			return ErrDuplicateEmail
		}
	}

	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	now := r.s.now()
	u.CreatedAt, u.UpdatedAt = now, now
	r.s.users[u.ID] = u.Clone()
	return nil
}

func (r memoryUsers) FindByID(_ context.Context, id string) (*model.User, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	if u, ok := r.s.users[id]; ok {
		return u.Clone(), nil
	}
	return nil, ErrNotFound
}

func (r memoryUsers) FindByEmail(_ context.Context, email string) (*model.User, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	for _, u := range r.s.users {
		if strings.EqualFold(u.Email, email) {
			return u.Clone(), nil
		}
	}
	return nil, ErrNotFound
}

func (r memoryUsers) ListByRole(_ context.Context, role model.Role) ([]model.User, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	users := make([]model.User, 0, len(r.s.users))
	for _, u := range r.s.users {
		if u.Role == role {
			users = append(users, *u.Clone())
		}
	}
	sort.SliceStable(users, func(i, j int) bool { return users[i].CreatedAt.After(users[j].CreatedAt) })
	return users, nil
}

func (r memoryUsers) CountByRole(ctx context.Context, role model.Role) (int64, error) {
	users, err := r.ListByRole(ctx, role)
	return int64(len(users)), err
}

// mutate applies fn to the stored user under the write lock
func (r memoryUsers) mutate(id string, fn func(u *model.User) error) (*model.User, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, ErrNotFound
	}
	working := u.Clone()
	if err := fn(working); err != nil {
		return nil, err
	}
	working.UpdatedAt = r.s.now()
	r.s.users[id] = working
	return working.Clone(), nil
}

func (r memoryUsers) Enroll(_ context.Context, userID string, courseID model.CourseID, payment model.PaymentInfo) (*model.User, error) {
	return r.mutate(userID, func(u *model.User) error {
		u.Enroll(courseID, payment)
		return nil
	})
}

func (r memoryUsers) SetDayProgress(_ context.Context, userID string, courseID model.CourseID, day model.Day, completed bool) (*model.User, error) {
	return r.mutate(userID, func(u *model.User) error {
		if !u.IsEnrolled(courseID) {
			return ErrNotFound
		}
		u.SetDayProgress(courseID, day, completed)
		return nil
	})
}

func (r memoryUsers) SetAssignment(_ context.Context, userID string, courseID model.CourseID, fileRef string) (*model.User, error) {
	return r.mutate(userID, func(u *model.User) error {
		if !u.IsEnrolled(courseID) {
			return ErrNotFound
		}
		u.SetAssignment(courseID, fileRef)
		return nil
	})
}

func (r memoryUsers) SetShortlisted(_ context.Context, userID string, shortlisted bool) (*model.User, error) {
	return r.mutate(userID, func(u *model.User) error {
		u.Shortlisted = shortlisted
		return nil
	})
}

type memoryCourses struct{ s *MemoryStore }

func (r memoryCourses) Count(_ context.Context) (int64, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()
	return int64(len(r.s.courses)), nil
}

func (r memoryCourses) InsertMany(_ context.Context, courses []model.Course) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	now := r.s.now()
	for i := range courses {
		c := courses[i]
		if c.CreatedAt.IsZero() {
			// keep insertion order observable through CreatedAt
			c.CreatedAt = now.Add(time.Duration(i) * time.Millisecond)
		}
		c.UpdatedAt = c.CreatedAt
		c.TrainingDays = slices.Clone(c.TrainingDays)
		r.s.courses[c.CourseID] = &c
	}
	return nil
}

func (r memoryCourses) list(keep func(*model.Course) bool) []model.Course {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	out := make([]model.Course, 0, len(r.s.courses))
	for _, c := range r.s.courses {
		if keep(c) {
			out = append(out, *c)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}

func (r memoryCourses) ListActive(_ context.Context) ([]model.Course, error) {
	return r.list(func(c *model.Course) bool { return c.IsActive }), nil
}

func (r memoryCourses) ListAll(_ context.Context) ([]model.Course, error) {
	return r.list(func(*model.Course) bool { return true }), nil
}

func (r memoryCourses) FindActive(_ context.Context, id model.CourseID) (*model.Course, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	c, ok := r.s.courses[id]
	if !ok || !c.IsActive {
		return nil, ErrNotFound
	}
	found := *c
	return &found, nil
}

func (r memoryCourses) ListActiveByIDs(_ context.Context, ids []model.CourseID) ([]model.Course, error) {
	return r.list(func(c *model.Course) bool { return c.IsActive && slices.Contains(ids, c.CourseID) }), nil
}

type memoryPayments struct{ s *MemoryStore }

func (r memoryPayments) Create(_ context.Context, p *model.CoursePayment) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	if p.Status == "" {
		p.Status = model.PaymentPending
	}
	now := r.s.now()
	p.CreatedAt, p.UpdatedAt = now, now
	stored := *p
	r.s.payments[p.RazorpayOrderID] = &stored
	return nil
}

func (r memoryPayments) FindByOrderID(_ context.Context, orderID string) (*model.CoursePayment, error) {
	r.s.mutex.RLock()
	defer r.s.mutex.RUnlock()

	p, ok := r.s.payments[orderID]
	if !ok {
		return nil, ErrNotFound
	}
	found := *p
	return &found, nil
}

func (r memoryPayments) MarkCompleted(_ context.Context, orderID, paymentID string, paidAt time.Time) error {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	p, ok := r.s.payments[orderID]
	if !ok {
		return ErrNotFound
	}
	p.Status = model.PaymentCompleted
	p.RazorpayPaymentID = paymentID
	p.PaidAt = &paidAt
	p.UpdatedAt = r.s.now()
	return nil
}

func (r memoryPayments) ExpirePendingBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mutex.Lock()
	defer r.s.mutex.Unlock()

	var n int64
	for _, p := range r.s.payments {
		if p.Status == model.PaymentPending && p.CreatedAt.Before(cutoff) {
			p.Status = model.PaymentExpired
			p.UpdatedAt = r.s.now()
			n++
		}
	}
	return n, nil
}
