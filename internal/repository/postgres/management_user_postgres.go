package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

const managementUserColumns = `id, email, full_name, password_hash, is_super_admin, is_active, totp_secret, totp_enabled,
	last_login_at, created_at, created_by, updated_at, updated_by`

// ManagementUserPostgres is a PostgreSQL implementation of repository.ManagementUserRepository.
type ManagementUserPostgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewManagementUserPostgres creates a new ManagementUserPostgres repository.
func NewManagementUserPostgres(db *sql.DB) *ManagementUserPostgres {
	return &ManagementUserPostgres{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ repository.ManagementUserRepository = (*ManagementUserPostgres)(nil)

func scanManagementUser(s scanner) (*model.ManagementUser, error) {
	var u model.ManagementUser
	if err := s.Scan(
		&u.ID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.IsSuperAdmin,
		&u.IsActive,
		&u.TOTPSecret,
		&u.TOTPEnabled,
		&u.LastLoginAt,
		&u.CreatedAt,
		&u.CreatedBy,
		&u.UpdatedAt,
		&u.UpdatedBy,
	); err != nil {
		return nil, err
	}
	return &u, nil
}

func (r *ManagementUserPostgres) Create(ctx context.Context, u *model.ManagementUser) (*model.ManagementUser, error) {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.Stamp(tenant.ActorID(ctx), r.now())
	const q = `
		INSERT INTO management_users (` + managementUserColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		RETURNING ` + managementUserColumns
	return scanManagementUser(r.db.QueryRowContext(ctx, q,
		u.ID, u.Email, u.FullName, u.PasswordHash, u.IsSuperAdmin, u.IsActive, u.TOTPSecret, u.TOTPEnabled,
		u.LastLoginAt, u.CreatedAt, u.CreatedBy, u.UpdatedAt, u.UpdatedBy,
	))
}

func (r *ManagementUserPostgres) FindByID(ctx context.Context, id string) (*model.ManagementUser, error) {
	const q = `SELECT ` + managementUserColumns + ` FROM management_users WHERE id = $1`
	return scanManagementUser(r.db.QueryRowContext(ctx, q, id))
}

func (r *ManagementUserPostgres) FindByEmail(ctx context.Context, email string) (*model.ManagementUser, error) {
	const q = `SELECT ` + managementUserColumns + ` FROM management_users WHERE lower(email) = lower($1)`
	return scanManagementUser(r.db.QueryRowContext(ctx, q, email))
}

func (r *ManagementUserPostgres) UpdatePassword(ctx context.Context, id, hash string) error {
	const q = `UPDATE management_users SET password_hash = $2, updated_at = $3, updated_by = $4 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, q, id, hash, r.now(), tenant.ActorID(ctx))
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *ManagementUserPostgres) UpdateTOTP(ctx context.Context, id, secret string, enabled bool) error {
	const q = `
		UPDATE management_users SET totp_secret = $2, totp_enabled = $3, updated_at = $4, updated_by = $5
		WHERE id = $1
	`
	res, err := r.db.ExecContext(ctx, q, id, secret, enabled, r.now(), tenant.ActorID(ctx))
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *ManagementUserPostgres) TouchLogin(ctx context.Context, id string, at time.Time) error {
	_, err := r.db.ExecContext(ctx, `UPDATE management_users SET last_login_at = $2 WHERE id = $1`, id, at)
	return err
}
