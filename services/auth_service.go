package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sahilchouksey/skill-training-api/database"
	"github.com/sahilchouksey/skill-training-api/model"
	"github.com/sahilchouksey/skill-training-api/utils/auth"
	"github.com/sahilchouksey/skill-training-api/utils/validation"
	"go.uber.org/zap"
)

// SignupRequest is the signup body
type SignupRequest struct {
	Name     string `json:"name" validate:"required,min=2,max=50"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6,maxbytes=72"`
}

// LoginRequest is the login body
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

var signupMessages = validation.Messages{
	"name":              "Name must be between 2 and 50 characters",
	"email":             "Please enter a valid email",
	"password":          "Password must be at least 6 characters long",
	"password.maxbytes": "Password must be at most 72 bytes long",
}

var loginMessages = validation.Messages{
	"email":    "Please enter a valid email",
	"password": "Password is required",
}

// AuthResult is returned by signup and login
type AuthResult struct {
	User      *model.User
	Token     string
	ExpiresIn time.Duration
}

// AuthService registers and authenticates accounts
type AuthService struct {
	users     database.UserRepository
	jwt       *auth.JWTManager
	validator *validation.Validator
	logger    *zap.Logger
}

func NewAuthService(users database.UserRepository, jwt *auth.JWTManager, v *validation.Validator, logger *zap.Logger) *AuthService {
	return &AuthService{users: users, jwt: jwt, validator: v, logger: logger}
}

// Signup creates a student account and issues a token
func (s *AuthService) Signup(ctx context.Context, req SignupRequest) (*AuthResult, error) {
	req.Name = s.validator.SanitizeText(req.Name)
	req.Email = validation.NormalizeEmail(req.Email)

	if errs := s.validator.Validate(req, signupMessages); errs != nil {
		return nil, fieldValidationError(errs)
	}

	if _, err := s.users.FindByEmail(ctx, req.Email); err == nil {
		return nil, ErrEmailTaken
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &model.User{
		Name:         req.Name,
		Email:        req.Email,
		PasswordHash: hash,
		Role:         model.RoleStudent,
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, database.ErrDuplicateEmail) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return &AuthResult{User: user, Token: token, ExpiresIn: s.jwt.Expiry()}, nil
}

// Login checks credentials. Unknown email and wrong password give the same error.
func (s *AuthService) Login(ctx context.Context, req LoginRequest) (*AuthResult, error) {
	req.Email = validation.NormalizeEmail(req.Email)

	if errs := s.validator.Validate(req, loginMessages); errs != nil {
		return nil, fieldValidationError(errs)
	}

	user, err := s.users.FindByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("lookup email: %w", err)
	}

	if err := auth.VerifyPassword(user.PasswordHash, req.Password); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.jwt.GenerateToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	return &AuthResult{User: user, Token: token, ExpiresIn: s.jwt.Expiry()}, nil
}
