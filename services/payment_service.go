package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/services/payment"
	"go.uber.org/zap"
)

// CreateOrderRequest is the create-order body
type CreateOrderRequest struct {
	CourseID string `json:"courseId"`
}

// VerifyPaymentRequest carries the provider checkout confirmation
type VerifyPaymentRequest struct {
	OrderID   string `json:"razorpay_order_id"`
	PaymentID string `json:"razorpay_payment_id"`
	Signature string `json:"razorpay_signature"`
	CourseID  string `json:"courseId"`
}

// OrderResult is returned to the client to open checkout
type OrderResult struct {
	ID         string         `json:"id"`
	Amount     int64          `json:"amount"`
	Currency   string         `json:"currency"`
	CourseID   model.CourseID `json:"courseId"`
	CourseName string         `json:"courseName"`
}

// PaymentConfig configures the payment bridge
type PaymentConfig struct {
	Currency        string
	VerifySignature bool
}

// PaymentService bridges the payment provider and enrollment
type PaymentService struct {
	users    database.UserRepository
	courses  database.CourseRepository
	payments database.PaymentRepository
	gateway  payment.Gateway
	config   PaymentConfig
	now      func() time.Time
	logger   *zap.Logger
}

// NewPaymentService creates a payment service. A nil gateway means the
// provider is not configured and every payment call fails with ErrPaymentUnavailable.
func NewPaymentService(store database.Storage, gateway payment.Gateway, config PaymentConfig, logger *zap.Logger) *PaymentService {
	if config.Currency == "" {
		config.Currency = "INR"
	}
	return &PaymentService{
		users:    store.Users(),
		courses:  store.Courses(),
		payments: store.Payments(),
		gateway:  gateway,
		config:   config,
		now:      time.Now,
		logger:   logger,
	}
}

// Configured reports whether a provider is available
func (s *PaymentService) Configured() bool {
	return s.gateway != nil
}

func (s *PaymentService) findCourse(ctx context.Context, rawID string) (*model.Course, error) {
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

// receipt is unique per course, user and millisecond and fits the provider's 40 char limit
func receipt(courseID model.CourseID, userID string, now time.Time) string {
	return fmt.Sprintf("c_%.10s_u_%.8s_%d", courseID, userID, now.UnixMilli())
}

// CreateOrder opens a payment intent for the course price
func (s *PaymentService) CreateOrder(ctx context.Context, user *model.User, req CreateOrderRequest) (*OrderResult, error) {
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}
	if req.CourseID == "" {
		return nil, newValidationError("Course ID is required")
	}

	course, err := s.findCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}
	if user.IsEnrolled(course.CourseID) {
		return nil, ErrAlreadyEnrolled
	}

	now := s.now()
	order, err := s.gateway.CreateOrder(ctx, payment.OrderRequest{
		Amount:   course.AmountInSubunits(),
		Currency: s.config.Currency,
		Receipt:  receipt(course.CourseID, user.ID, now),
		Notes: map[string]string{
			"courseId":   course.CourseID.String(),
			"userId":     user.ID,
			"courseName": course.Title,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("create order: %w", err)
	}

	if err := s.payments.Create(ctx, &model.CoursePayment{
		UserID:          user.ID,
		CourseID:        course.CourseID,
		RazorpayOrderID: order.ID,
		Receipt:         order.Receipt,
		Amount:          course.Price,
		Currency:        order.Currency,
		Status:          model.PaymentPending,
	}); err != nil {
		return nil, fmt.Errorf("record order: %w", err)
	}

	s.logger.Info("payment order created",
		zap.String("user_id", user.ID),
		zap.String("course_id", course.CourseID.String()),
		zap.String("order_id", order.ID))

	return &OrderResult{
		ID:         order.ID,
		Amount:     order.Amount,
		Currency:   order.Currency,
		CourseID:   course.CourseID,
		CourseName: course.Title,
	}, nil
}

// VerifyPayment checks the confirmation and enrolls the user. Enrolling is
// idempotent and keeps existing day progress.
func (s *PaymentService) VerifyPayment(ctx context.Context, user *model.User, req VerifyPaymentRequest) (*model.User, error) {
	if s.gateway == nil {
		return nil, ErrPaymentUnavailable
	}
	if req.CourseID == "" || req.OrderID == "" || req.PaymentID == "" {
		return nil, newValidationError("Course ID, order ID and payment ID are required")
	}

	course, err := s.findCourse(ctx, req.CourseID)
	if err != nil {
		return nil, err
	}

	if s.config.VerifySignature && !s.gateway.VerifySignature(req.OrderID, req.PaymentID, req.Signature) {
		s.logger.Warn("payment signature mismatch",
			zap.String("user_id", user.ID), zap.String("order_id", req.OrderID))
		return nil, ErrInvalidSignature
	}

	// Orders created by this service must match the caller and course
	ledger, err := s.payments.FindByOrderID(ctx, req.OrderID)
	switch {
	case err == nil:
		if ledger.UserID != user.ID || ledger.CourseID != course.CourseID {
			return nil, ErrOrderMismatch
		}
	case errors.Is(err, database.ErrNotFound):
		ledger = nil
	default:
		return nil, fmt.Errorf("find order: %w", err)
	}

	paidAt := s.now()
	updated, err := s.users.Enroll(ctx, user.ID, course.CourseID, model.PaymentInfo{
		Paid:      true,
		PaymentID: req.PaymentID,
		OrderID:   req.OrderID,
		Amount:    course.Price,
		PaidAt:    &paidAt,
	})
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("enroll: %w", err)
	}

	if ledger != nil {
		if err := s.payments.MarkCompleted(ctx, req.OrderID, req.PaymentID, paidAt); err != nil {
			s.logger.Error("failed to mark order completed",
				zap.String("order_id", req.OrderID), zap.Error(err))
		}
	}

	s.logger.Info("payment verified",
		zap.String("user_id", user.ID),
		zap.String("course_id", course.CourseID.String()),
		zap.String("payment_id", req.PaymentID))
	return updated, nil
}

// ExpireStaleOrders marks pending orders older than maxAge as expired
func (s *PaymentService) ExpireStaleOrders(ctx context.Context, maxAge time.Duration) (int64, error) {
	return s.payments.ExpirePendingBefore(ctx, s.now().Add(-maxAge))
}
