package services

import (
	"context"

	apperrors "storefront-service/errors"
	"storefront-service/models"
	"storefront-service/repository"
)

type UserService interface {
	ListUsers(ctx context.Context) ([]models.User, error)
	GetUser(ctx context.Context, id string) (*models.User, error)
}

type userServiceImpl struct {
	users repository.UserRepo
}

func NewUserService(users repository.UserRepo) UserService {
	return &userServiceImpl{users: users}
}

func (s *userServiceImpl) ListUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.users.FindAll(ctx)
	if err != nil {
		return nil, storeError(ctx, err, nil, "list users")
	}
	return users, nil
}

func (s *userServiceImpl) GetUser(ctx context.Context, id string) (*models.User, error) {
	oid, err := parseObjectID(id, apperrors.InvalidInput("Invalid user ID"))
	if err != nil {
		return nil, err
	}
	user, err := s.users.FindByID(ctx, oid)
	if err != nil {
		return nil, storeError(ctx, err, apperrors.NotFound("No user found"), "find user")
	}
	return user, nil
}
