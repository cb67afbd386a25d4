package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/skill-training-api/config"
	"github.com/sahilchouksey/skill-training-api/model"
)

var (
	ErrNotFound       = errors.New("record not found")
	ErrDuplicateEmail = errors.New("a user with this email already exists")
)

// Storage defines the interface that all database implementations must satisfy
type Storage interface {
	// Lifecycle methods
	Init() error
	Close() error
	HealthCheck() error

	Users() UserRepository
	Courses() CourseRepository
	Payments() PaymentRepository
}

// UserRepository persists accounts and their per-course state.
// Every mutation is atomic for a single user and returns the updated record.
type UserRepository interface {
	Create(ctx context.Context, u *model.User) error
	FindByID(ctx context.Context, id string) (*model.User, error)
	FindByEmail(ctx context.Context, email string) (*model.User, error)
	// ListByRole returns users of the role, newest first
	ListByRole(ctx context.Context, role model.Role) ([]model.User, error)
	CountByRole(ctx context.Context, role model.Role) (int64, error)

	Enroll(ctx context.Context, userID string, courseID model.CourseID, payment model.PaymentInfo) (*model.User, error)
	// SetDayProgress and SetAssignment return ErrNotFound when the user does
	// not exist or is not enrolled in the course
	SetDayProgress(ctx context.Context, userID string, courseID model.CourseID, day model.Day, completed bool) (*model.User, error)
	SetAssignment(ctx context.Context, userID string, courseID model.CourseID, fileRef string) (*model.User, error)
	SetShortlisted(ctx context.Context, userID string, shortlisted bool) (*model.User, error)
}

// CourseRepository reads the course catalog
type CourseRepository interface {
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, courses []model.Course) error
	// ListActive returns active courses, oldest first
	ListActive(ctx context.Context) ([]model.Course, error)
	ListAll(ctx context.Context) ([]model.Course, error)
	FindActive(ctx context.Context, id model.CourseID) (*model.Course, error)
	ListActiveByIDs(ctx context.Context, ids []model.CourseID) ([]model.Course, error)
}

// PaymentRepository keeps the ledger of gateway orders
type PaymentRepository interface {
	Create(ctx context.Context, p *model.CoursePayment) error
	FindByOrderID(ctx context.Context, orderID string) (*model.CoursePayment, error)
	MarkCompleted(ctx context.Context, orderID, paymentID string, paidAt time.Time) error
	// ExpirePendingBefore marks pending orders created before cutoff as expired
	ExpirePendingBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// Open connects the backend selected by DB_DRIVER
func Open(env *config.EnviornmentVariable) (Storage, error) {
	switch env.DB_DRIVER {
	case "postgres":
		return StartGORM(env)
	case "mongo", "mongodb":
		return StartMongo(env)
	case "memory":
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported DB_DRIVER %q", env.DB_DRIVER)
	}
}
