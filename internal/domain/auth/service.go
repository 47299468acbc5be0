package auth

import (
	"context"
	"errors"
	"fmt"

	authn "hrforms/internal/auth"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type Service struct {
	Store UserStore
}

func NewService(store UserStore) *Service {
	return &Service{Store: store}
}

// Authenticate checks username and password. Unknown users and wrong
// passwords report the same error.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	user, err := s.Store.FindUserByUsername(ctx, username)
	if errors.Is(err, ErrUserNotFound) {
		return User{}, ErrInvalidCredentials
	}
	if err != nil {
		return User{}, fmt.Errorf("find user: %w", err)
	}
	if err := authn.CheckPassword(user.PasswordHash, password); err != nil {
		return User{}, ErrInvalidCredentials
	}
	return user, nil
}

// EnsureUser creates or updates a user with a freshly hashed password.
func (s *Service) EnsureUser(ctx context.Context, username, password, role string) (User, error) {
	if !ValidRole(role) {
		return User{}, fmt.Errorf("unknown role %q", role)
	}
	hash, err := authn.HashPassword(password)
	if err != nil {
		return User{}, err
	}
	return s.Store.UpsertUser(ctx, User{Username: username, PasswordHash: hash, Role: role})
}
