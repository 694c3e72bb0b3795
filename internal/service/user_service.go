package service

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	apperrors "fintrack/internal/errors"
	"fintrack/internal/model"
	"fintrack/internal/repository"
)

// UserService exposes the administrative user operations.
type UserService interface {
	GetUser(ctx context.Context, id uint) (*model.User, error)
	ListUsers(ctx context.Context) ([]model.User, error)
	// DeleteUser removes a user together with their profile and ledger.
	// Admin-only; enforced at the route.
	DeleteUser(ctx context.Context, id uint) error
}

type userService struct {
	repo repository.UserRepository
}

// NewUserService builds a UserService.
func NewUserService(repo repository.UserRepository) UserService {
	return &userService{repo: repo}
}

func (s *userService) GetUser(ctx context.Context, id uint) (*model.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	return user, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]model.User, error) {
	return s.repo.List(ctx)
}

func (s *userService) DeleteUser(ctx context.Context, id uint) error {
	if _, err := s.GetUser(ctx, id); err != nil {
		return err
	}
	if err := s.repo.DeleteCascade(ctx, id); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	return nil
}
