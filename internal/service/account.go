package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/innofeed/innofeed/internal/auth"
	"github.com/innofeed/innofeed/internal/model"
	"github.com/innofeed/innofeed/internal/repository"
)

// AccountService registers and authenticates users.
type AccountService struct {
	users UserStore
}

// NewAccountService creates a new AccountService.
func NewAccountService(users UserStore) *AccountService {
	return &AccountService{users: users}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

// Register creates an account and returns the new user id.
func (s *AccountService) Register(ctx context.Context, input RegisterInput) (int64, error) {
	_, err := s.users.GetUserByEmail(ctx, input.Email)
	if err == nil {
		return 0, ErrEmailRegistered
	}
	if !errors.Is(err, repository.ErrUserNotFound) {
		return 0, err
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return 0, err
	}

	user := &model.User{Email: input.Email, PasswordHash: hash}
	if input.Name != "" {
		user.Name = &input.Name
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		// Lost a race with a concurrent registration
		if errors.Is(err, repository.ErrEmailExists) {
			return 0, ErrEmailRegistered
		}
		return 0, fmt.Errorf("failed to register user: %w", err)
	}
	return user.ID, nil
}

// Login checks credentials and returns the user.
func (s *AccountService) Login(ctx context.Context, email, password string) (*model.User, error) {
	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if !auth.VerifyPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
