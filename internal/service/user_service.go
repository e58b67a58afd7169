package service

import (
	"context"
	"fmt"

	"github.com/maheshrc27/blog-cms/internal/models"
	"github.com/maheshrc27/blog-cms/internal/repository"
)

type UserService interface {
	GetUserInfo(ctx context.Context, id int64) (*models.User, error)
}

type userService struct {
	u repository.UserRepository
}

func NewUserService(u repository.UserRepository) UserService {
	return &userService{u: u}
}

func (s *userService) GetUserInfo(ctx context.Context, id int64) (*models.User, error) {
	user, err := s.u.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("error getting user info: %w", err)
	}
	if user == nil {
		return nil, ErrNotFound
	}
	return user, nil
}
