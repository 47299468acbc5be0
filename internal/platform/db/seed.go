package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"hrforms/internal/domain/auth"
	"hrforms/internal/domain/profile"
)

// Seed ensures the configured admin account exists with an employee profile.
// It does nothing when no admin username is configured.
func Seed(ctx context.Context, users *auth.Service, profiles profile.Writer, username, password string) error {
	username = strings.TrimSpace(username)
	if username == "" || strings.TrimSpace(password) == "" {
		return nil
	}

	admin, err := users.EnsureUser(ctx, username, password, auth.RoleAdmin)
	if err != nil {
		return fmt.Errorf("seed admin user: %w", err)
	}

	_, err = profiles.Get(ctx, admin.ID)
	if err == nil {
		return nil
	}
	if !errors.Is(err, profile.ErrNotFound) {
		return fmt.Errorf("seed admin profile: %w", err)
	}
	return profiles.Upsert(ctx, profile.Profile{
		UserID:         admin.ID,
		EmployeeID:     "ADMIN-001",
		Name:           username,
		EmploymentType: profile.EmploymentRegular,
		Department:     "HR",
		Position:       "HR Manager",
		Role:           auth.RoleAdmin,
	})
}
