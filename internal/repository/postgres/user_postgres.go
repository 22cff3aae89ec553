package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/database"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

const userColumns = `id, tenant_id, email, full_name, password_hash, role_id, is_active, totp_secret, totp_enabled,
	last_login_at, created_at, created_by, updated_at, updated_by`

// UserPostgres is a PostgreSQL implementation of repository.UserRepository.
type UserPostgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewUserPostgres creates a new UserPostgres repository.
func NewUserPostgres(db *sql.DB) *UserPostgres {
	return &UserPostgres{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ repository.UserRepository = (*UserPostgres)(nil)

func scanUser(s scanner) (*model.User, error) {
	var u model.User
	if err := s.Scan(
		&u.ID,
		&u.TenantID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&u.RoleID,
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

// Create inserts a user into the tenant carried by ctx.
func (r *UserPostgres) Create(ctx context.Context, u *model.User) (*model.User, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	u.TenantID = tid
	u.Stamp(tenant.ActorID(ctx), r.now())

	const q = `
		INSERT INTO users (` + userColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING ` + userColumns
	return scanUser(database.Conn(ctx, r.db).QueryRowContext(ctx, q,
		u.ID, u.TenantID, u.Email, u.FullName, u.PasswordHash, u.RoleID, u.IsActive,
		u.TOTPSecret, u.TOTPEnabled, u.LastLoginAt,
		u.CreatedAt, u.CreatedBy, u.UpdatedAt, u.UpdatedBy,
	))
}

// FindByID fetches a user of the tenant carried by ctx.
func (r *UserPostgres) FindByID(ctx context.Context, id string) (*model.User, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	return r.FindByIDUnscoped(ctx, tid, id)
}

// FindByIDUnscoped fetches a user of an explicit tenant.
func (r *UserPostgres) FindByIDUnscoped(ctx context.Context, tenantID, id string) (*model.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users WHERE tenant_id = $1 AND id = $2`
	return scanUser(database.Conn(ctx, r.db).QueryRowContext(ctx, q, tenantID, id))
}

// FindForLogin resolves a user by tenant slug and e-mail. Inactive tenants never match.
func (r *UserPostgres) FindForLogin(ctx context.Context, tenantSlug, email string) (*model.User, error) {
	const q = `
		SELECT u.id, u.tenant_id, u.email, u.full_name, u.password_hash, u.role_id, u.is_active, u.totp_secret,
			u.totp_enabled, u.last_login_at, u.created_at, u.created_by, u.updated_at, u.updated_by
		FROM users u
		JOIN tenants t ON t.id = u.tenant_id
		WHERE t.slug = $1 AND t.is_active AND lower(u.email) = lower($2)
	`
	return scanUser(database.Conn(ctx, r.db).QueryRowContext(ctx, q, tenantSlug, email))
}

// List returns users of the tenant ordered by e-mail.
func (r *UserPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	search := "%" + escapeLike(pq.Search) + "%"

	const qCount = `SELECT COUNT(*) FROM users WHERE tenant_id = $1 AND (email ILIKE $2 OR full_name ILIKE $2)`
	var total int
	if err := database.Conn(ctx, r.db).QueryRowContext(ctx, qCount, tid, search).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + userColumns + `
		FROM users
		WHERE tenant_id = $1 AND (email ILIKE $2 OR full_name ILIKE $2)
		ORDER BY email, id
		LIMIT $3 OFFSET $4
	`
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, qList, tid, search, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.User, 0)
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.User]{Items: items, Total: total}, nil
}

// Update overwrites profile, role and activation. Credentials have their own setters.
func (r *UserPostgres) Update(ctx context.Context, u *model.User) (*model.User, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	u.TenantID = tid
	u.Stamp(tenant.ActorID(ctx), r.now())
	const q = `
		UPDATE users
		SET email = $3, full_name = $4, role_id = $5, is_active = $6, updated_at = $7, updated_by = $8
		WHERE tenant_id = $1 AND id = $2
		RETURNING ` + userColumns
	return scanUser(database.Conn(ctx, r.db).QueryRowContext(ctx, q,
		u.TenantID, u.ID, u.Email, u.FullName, u.RoleID, u.IsActive, u.UpdatedAt, u.UpdatedBy,
	))
}

// Delete removes a user of the tenant.
func (r *UserPostgres) Delete(ctx context.Context, id string) error {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM users WHERE tenant_id = $1 AND id = $2`, tid, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *UserPostgres) UpdatePassword(ctx context.Context, tenantID, id, hash string) error {
	const q = `UPDATE users SET password_hash = $3, updated_at = $4, updated_by = $5 WHERE tenant_id = $1 AND id = $2`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, q, tenantID, id, hash, r.now(), tenant.ActorID(ctx))
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *UserPostgres) UpdateTOTP(ctx context.Context, tenantID, id, secret string, enabled bool) error {
	const q = `
		UPDATE users SET totp_secret = $3, totp_enabled = $4, updated_at = $5, updated_by = $6
		WHERE tenant_id = $1 AND id = $2
	`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, q, tenantID, id, secret, enabled, r.now(), tenant.ActorID(ctx))
	if err != nil {
		return err
	}
	return expectAffected(res)
}

func (r *UserPostgres) TouchLogin(ctx context.Context, tenantID, id string, at time.Time) error {
	_, err := database.Conn(ctx, r.db).ExecContext(ctx, `UPDATE users SET last_login_at = $3 WHERE tenant_id = $1 AND id = $2`, tenantID, id, at)
	return err
}
