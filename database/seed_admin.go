package database

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/princinho/eshopbackend/models"
	"github.com/princinho/eshopbackend/utils"
)

// SeedAdminUser inserts an admin account unless one with the same email
// already exists. It reports whether a user was inserted.
func SeedAdminUser(ctx context.Context, users UserRepository, email, pass string) (bool, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || pass == "" {
		return false, fmt.Errorf("missing admin email or password")
	}

	hash, err := utils.HashPassword(pass)
	if err != nil {
		return false, fmt.Errorf("hash admin password: %w", err)
	}

	created, err := users.EnsureAdmin(ctx, &models.User{
		Name:         "Administrator",
		Email:        email,
		PasswordHash: hash,
		IsAdmin:      true,
	})
	if errors.Is(err, ErrDuplicate) {
		// lost a race with another instance seeding the same email
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("seed admin: %w", err)
	}
	return created, nil
}
