package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	apperrors "storefront-service/errors"
	"storefront-service/logger"
	"storefront-service/models"
	awspkg "storefront-service/pkg/aws"
	"storefront-service/repository"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 6
	// bcrypt rejects longer inputs.
	maxPasswordBytes = 72
)

type ITokenService interface {
	GenerateAccessToken(userID, email string) (string, error)
	ValidateToken(tokenStr string) (string, error)
}

// AuthService registers users and exchanges credentials for access tokens.
type AuthService interface {
	SignUp(ctx context.Context, name, email, password string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.UserSummary, string, error)
}

type authServiceImpl struct {
	users   repository.UserRepo
	tokens  ITokenService
	metrics awspkg.MetricsRecorder
}

func NewAuthService(users repository.UserRepo, tokens ITokenService, metrics awspkg.MetricsRecorder) AuthService {
	return &authServiceImpl{users: users, tokens: tokens, metrics: metrics}
}

func (s *authServiceImpl) SignUp(ctx context.Context, name, email, password string) (*models.User, error) {
	name, email = strings.TrimSpace(name), strings.ToLower(strings.TrimSpace(email))
	if name == "" || email == "" || password == "" {
		return nil, apperrors.InvalidInput("Name, email and password are required")
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, apperrors.InvalidInput("Invalid email address")
	}
	if len(password) < minPasswordLength {
		return nil, apperrors.InvalidInput("Password must be at least 6 characters")
	}
	if len(password) > maxPasswordBytes {
		return nil, apperrors.InvalidInput("Password must be at most 72 bytes")
	}

	if _, err := s.users.FindByEmail(ctx, email); err == nil {
		return nil, apperrors.Conflict("Email already exists")
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, storeError(ctx, err, nil, "find user by email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperrors.Internal("Failed to hash password", err)
	}

	user := &models.User{Name: name, Email: email, Password: string(hash)}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.Conflict("Email already exists")
		}
		return nil, storeError(ctx, err, nil, "create user")
	}

	if s.metrics != nil {
		go s.metrics.RecordCount(context.Background(), awspkg.MetricSignups, nil)
	}
	logger.Info(ctx, "User registered", zap.String("user_id", user.ID.Hex()))
	return user, nil
}

func (s *authServiceImpl) Login(ctx context.Context, email, password string) (*models.UserSummary, string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || password == "" {
		return nil, "", apperrors.InvalidInput("Email and password are required")
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		return nil, "", storeError(ctx, err, apperrors.NotFound("No user found. Please create an account."), "find user by email")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, "", apperrors.Unauthorized("Invalid credentials")
	}

	token, err := s.tokens.GenerateAccessToken(user.ID.Hex(), user.Email)
	if err != nil {
		return nil, "", apperrors.Internal("Failed to generate token", err)
	}

	return &models.UserSummary{ID: user.ID.Hex(), Name: user.Name, Email: user.Email}, token, nil
}
