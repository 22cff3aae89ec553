package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/auth"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

// BootstrapSuperAdmin creates a management super admin with the given
// credentials unless an account with that email already exists. It reports
// whether an account was created.
func BootstrapSuperAdmin(ctx context.Context, admins repository.ManagementUserRepository, email, password string) (bool, error) {
	email = normalizeEmail(email)
	if email == "" {
		return false, nil
	}

	_, err := admins.FindByEmail(ctx, email)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return false, fmt.Errorf("look up bootstrap admin: %w", err)
	}

	if err := auth.ValidatePasswordStrength(password); err != nil {
		return false, err
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return false, fmt.Errorf("hash password: %w", err)
	}

	u, err := admins.Create(ctx, &model.ManagementUser{
		Email:        email,
		FullName:     "Administrator",
		PasswordHash: hash,
		IsSuperAdmin: true,
		IsActive:     true,
	})
	if err != nil {
		return false, fmt.Errorf("create bootstrap admin: %w", err)
	}

	zerolog.Ctx(ctx).Info().Str("management_user_id", u.ID).Str("email", email).Msg("bootstrap super admin created")
	return true, nil
}
