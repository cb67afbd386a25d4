package services

import (
	"errors"

	"github.com/sahilchouksey/skill-training-api/utils/response"
)

var (
	ErrEmailTaken         = errors.New("user already exists with this email")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUserNotFound       = errors.New("user not found")
	ErrCourseNotFound     = errors.New("course not found")
	ErrNotEnrolled        = errors.New("not enrolled in this course")
	ErrAlreadyEnrolled    = errors.New("already enrolled in this course")
	ErrPaymentUnavailable = errors.New("payment service not configured")
	ErrInvalidSignature   = errors.New("payment signature verification failed")
	ErrOrderMismatch      = errors.New("payment order does not belong to this user and course")
)

// ValidationError is a client input problem answered with 400
type ValidationError struct {
	Message string
	Fields  []response.FieldError
}

func (e *ValidationError) Error() string {
	return e.Message
}

func newValidationError(message string) *ValidationError {
	return &ValidationError{Message: message}
}

// fieldValidationError wraps validator output, using the first field message
func fieldValidationError(fields []response.FieldError) *ValidationError {
	msg := "Validation failed"
	if len(fields) > 0 {
		msg = fields[0].Message
	}
	return &ValidationError{Message: msg, Fields: fields}
}
