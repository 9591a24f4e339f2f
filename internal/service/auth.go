package service

import (
	"context"
	"errors"

	"github.com/mmeshcher/trackshop-system/internal/model"
	"github.com/mmeshcher/trackshop-system/internal/repository"
	"github.com/mmeshcher/trackshop-system/internal/validation"
)

// RegisterUser регистрирует нового покупателя.
func (s *Service) RegisterUser(ctx context.Context, email, name, password string) (int64, error) {
	if !validation.IsValidEmail(email) {
		return 0, ErrInvalidEmail
	}

	hashed := hashPassword(email, password)
	id, err := s.repo.CreateUser(ctx, email, name, hashed, model.RoleUser)
	if err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return 0, repository.ErrUserExists
		}
		return 0, err
	}
	return id, nil
}

// GetUser возвращает пользователя по идентификатору.
func (s *Service) GetUser(ctx context.Context, id int64) (*model.User, error) {
	return s.repo.GetUserByID(ctx, id)
}

// AuthenticateUser проверяет почту и пароль и возвращает пользователя.
func (s *Service) AuthenticateUser(ctx context.Context, email, password string) (*model.User, error) {
	u, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, err
	}

	hashed := hashPassword(email, password)
	if !passwordsEqual(hashed, u.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return u, nil
}
