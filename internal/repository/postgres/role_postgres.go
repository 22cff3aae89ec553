package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/database"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

const roleColumns = `r.id, r.tenant_id, r.name, r.description,
	COALESCE((SELECT string_agg(rp.permission_code, ',' ORDER BY rp.permission_code)
		FROM role_permissions rp WHERE rp.role_id = r.id), ''),
	r.created_at, r.created_by, r.updated_at, r.updated_by`

// RolePostgres is a PostgreSQL implementation of repository.RoleRepository.
type RolePostgres struct {
	db  *sql.DB
	now func() time.Time
}

// NewRolePostgres creates a new RolePostgres repository.
func NewRolePostgres(db *sql.DB) *RolePostgres {
	return &RolePostgres{db: db, now: func() time.Time { return time.Now().UTC() }}
}

var _ repository.RoleRepository = (*RolePostgres)(nil)

func scanRole(s scanner) (*model.Role, error) {
	var (
		r     model.Role
		perms string
	)
	if err := s.Scan(
		&r.ID,
		&r.TenantID,
		&r.Name,
		&r.Description,
		&perms,
		&r.CreatedAt,
		&r.CreatedBy,
		&r.UpdatedAt,
		&r.UpdatedBy,
	); err != nil {
		return nil, err
	}
	r.Permissions = splitCodes(perms)
	return &r, nil
}

func splitCodes(s string) []string {
	if s == "" {
		return []string{}
	}
	return strings.Split(s, ",")
}

// Create inserts a role without permissions; use SetPermissions afterwards.
func (r *RolePostgres) Create(ctx context.Context, role *model.Role) (*model.Role, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	if role.ID == "" {
		role.ID = uuid.NewString()
	}
	role.TenantID = tid
	role.Stamp(tenant.ActorID(ctx), r.now())

	const q = `
		INSERT INTO roles (id, tenant_id, name, description, created_at, created_by, updated_at, updated_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := database.Conn(ctx, r.db).ExecContext(ctx, q,
		role.ID, role.TenantID, role.Name, role.Description,
		role.CreatedAt, role.CreatedBy, role.UpdatedAt, role.UpdatedBy,
	); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, role.ID)
}

func (r *RolePostgres) FindByID(ctx context.Context, id string) (*model.Role, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	const q = `SELECT ` + roleColumns + ` FROM roles r WHERE r.tenant_id = $1 AND r.id = $2`
	return scanRole(database.Conn(ctx, r.db).QueryRowContext(ctx, q, tid, id))
}

func (r *RolePostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Role], error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	search := "%" + escapeLike(pq.Search) + "%"

	const qCount = `SELECT COUNT(*) FROM roles WHERE tenant_id = $1 AND name ILIKE $2`
	var total int
	if err := database.Conn(ctx, r.db).QueryRowContext(ctx, qCount, tid, search).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT ` + roleColumns + `
		FROM roles r
		WHERE r.tenant_id = $1 AND r.name ILIKE $2
		ORDER BY r.name, r.id
		LIMIT $3 OFFSET $4
	`
	rows, err := database.Conn(ctx, r.db).QueryContext(ctx, qList, tid, search, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Role, 0)
	for rows.Next() {
		role, err := scanRole(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *role)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &repository.PageResult[model.Role]{Items: items, Total: total}, nil
}

func (r *RolePostgres) Update(ctx context.Context, role *model.Role) (*model.Role, error) {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return nil, err
	}
	role.Stamp(tenant.ActorID(ctx), r.now())
	const q = `
		UPDATE roles SET name = $3, description = $4, updated_at = $5, updated_by = $6
		WHERE tenant_id = $1 AND id = $2
	`
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, q, tid, role.ID, role.Name, role.Description, role.UpdatedAt, role.UpdatedBy)
	if err != nil {
		return nil, err
	}
	if err := expectAffected(res); err != nil {
		return nil, err
	}
	return r.FindByID(ctx, role.ID)
}

func (r *RolePostgres) Delete(ctx context.Context, id string) error {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	res, err := database.Conn(ctx, r.db).ExecContext(ctx, `DELETE FROM roles WHERE tenant_id = $1 AND id = $2`, tid, id)
	if err != nil {
		return err
	}
	return expectAffected(res)
}

// SetPermissions replaces the permission set of roleID in one transaction.
// It returns sql.ErrNoRows when the role is not in the tenant.
func (r *RolePostgres) SetPermissions(ctx context.Context, roleID string, codes []string) error {
	tid, err := tenant.Require(ctx)
	if err != nil {
		return err
	}
	return database.InTx(ctx, r.db, func(tx *sql.Tx) error {
		var one int
		err := tx.QueryRowContext(ctx, `SELECT 1 FROM roles WHERE tenant_id = $1 AND id = $2 FOR UPDATE`, tid, roleID).Scan(&one)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM role_permissions WHERE role_id = $1`, roleID); err != nil {
			return err
		}
		for _, code := range codes {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO role_permissions (role_id, permission_code) VALUES ($1, $2)`, roleID, code,
			); err != nil {
				return err
			}
		}
		_, err = tx.ExecContext(ctx, `UPDATE roles SET updated_at = $2, updated_by = $3 WHERE id = $1`,
			roleID, r.now(), tenant.ActorID(ctx))
		return err
	})
}

// PermissionsFor loads the role name and permission codes used to mint tokens.
func (r *RolePostgres) PermissionsFor(ctx context.Context, tenantID, roleID string) (string, []string, error) {
	const q = `SELECT ` + roleColumns + ` FROM roles r WHERE r.tenant_id = $1 AND r.id = $2`
	role, err := scanRole(database.Conn(ctx, r.db).QueryRowContext(ctx, q, tenantID, roleID))
	if err != nil {
		return "", nil, err
	}
	return role.Name, role.Permissions, nil
}
