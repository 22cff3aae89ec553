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

const tenantColumns = `id, name, slug, contact_email, is_active, created_at, created_by, updated_at, updated_by`

// TenantPostgres is a PostgreSQL implementation of repository.TenantRepository.
type TenantPostgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewTenantPostgres creates a new TenantPostgres repository.
func NewTenantPostgres(db *sql.DB) *TenantPostgres {
	return &TenantPostgres{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ repository.TenantRepository = (*TenantPostgres)(nil)

func scanTenant(s scanner) (*model.Tenant, error) {
	var t model.Tenant
	if err := s.Scan(
		&t.ID,
		&t.Name,
		&t.Slug,
		&t.ContactEmail,
		&t.IsActive,
		&t.CreatedAt,
		&t.CreatedBy,
		&t.UpdatedAt,
		&t.UpdatedBy,
	); err != nil {
		return nil, err
	}
	return &t, nil
}

// Create inserts a tenant and returns the stored row.
func (r *TenantPostgres) Create(ctx context.Context, t *model.Tenant) (*model.Tenant, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	t.Stamp(tenant.ActorID(ctx), r.now())
	const q = `
		INSERT INTO tenants (` + tenantColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING ` + tenantColumns
	return scanTenant(database.Conn(ctx, r.db).QueryRowContext(ctx, q,
		t.ID, t.Name, t.Slug, t.ContactEmail, t.IsActive,
		t.CreatedAt, t.CreatedBy, t.UpdatedAt, t.UpdatedBy,
	))
}

// FindByID fetches a tenant by its ID.
func (r *TenantPostgres) FindByID(ctx context.Context, id string) (*model.Tenant, error) {
	const q = `SELECT ` + tenantColumns + ` FROM tenants WHERE id = $1`
	return scanTenant(database.Conn(ctx, r.db).QueryRowContext(ctx, q, id))
}

// FindBySlug fetches a tenant by its slug.
func (r *TenantPostgres) FindBySlug(ctx context.Context, slug string) (*model.Tenant, error) {
	const q = `SELECT ` + tenantColumns + ` FROM tenants WHERE slug = $1`
	return scanTenant(database.Conn(ctx, r.db).QueryRowContext(ctx, q, slug))
}

// List returns tenants ordered by name.
func (r *TenantPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Tenant], error) {
	search := "%" + escapeLike(pq.Search) + "%"

	const qCount = `SELECT COUNT(*) FROM tenants WHERE name ILIKE $1 OR slug ILIKE $1`
	var total int
	if err := database.Conn(ctx, r.db).QueryRowContext(ctx, qCount, search).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + tenantColumns + `
		FROM tenants
		WHERE name ILIKE $1 OR slug ILIKE $1
		ORDER BY name, id
		LIMIT $2 OFFSET $3
	`
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, qList, search, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Tenant, 0)
	for rows.Next() {
		t, err := scanTenant(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Tenant]{Items: items, Total: total}, nil
}

// Update overwrites the mutable tenant columns.
func (r *TenantPostgres) Update(ctx context.Context, t *model.Tenant) (*model.Tenant, error) {
	t.Stamp(tenant.ActorID(ctx), r.now())
	const q = `
		UPDATE tenants
		SET name = $2, slug = $3, contact_email = $4, is_active = $5, updated_at = $6, updated_by = $7
		WHERE id = $1
		RETURNING ` + tenantColumns
	return scanTenant(database.Conn(ctx, r.db).QueryRowContext(ctx, q,
		t.ID, t.Name, t.Slug, t.ContactEmail, t.IsActive, t.UpdatedAt, t.UpdatedBy,
	))
}
