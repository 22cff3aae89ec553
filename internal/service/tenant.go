package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/auth"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

// AdminRoleName is the role created together with a tenant's first user.
const AdminRoleName = "admin"

// CreateTenantInput describes a new tenant and, optionally, its first administrator.
type CreateTenantInput struct {
	Name         string           `json:"name" validate:"required,max=200"`
	Slug         string           `json:"slug" validate:"required,max=63,hostname_rfc1123"`
	ContactEmail string           `json:"contact_email" validate:"omitempty,email"`
	Admin        *CreateUserInput `json:"admin" validate:"omitempty"`
}

// UpdateTenantInput carries the mutable tenant fields.
type UpdateTenantInput struct {
	Name         string `json:"name" validate:"required,max=200"`
	ContactEmail string `json:"contact_email" validate:"omitempty,email"`
	IsActive     *bool  `json:"is_active"`
}

// TenantProvisioning is returned by Create.
type TenantProvisioning struct {
	Tenant *model.Tenant `json:"tenant"`
	Admin  *model.User   `json:"admin,omitempty"`
	Role   *model.Role   `json:"role,omitempty"`
}

// TenantService is used by management users only.
type TenantService interface {
	List(ctx context.Context, limit, offset int, search string) (*ListResult[model.Tenant], error)
	Get(ctx context.Context, id string) (*model.Tenant, error)
	Create(ctx context.Context, in CreateTenantInput) (*TenantProvisioning, error)
	Update(ctx context.Context, id string, in UpdateTenantInput) (*model.Tenant, error)
	// Deactivate blocks every login of the tenant; existing data is kept.
	Deactivate(ctx context.Context, id string) (*model.Tenant, error)
}

type tenantService struct {
	tenants repository.TenantRepository
	users   repository.UserRepository
	roles   repository.RoleRepository
	tx      repository.Transactor
}

// NewTenantService constructs a new TenantService. Create provisions the
// tenant, its admin role and its admin user in one transaction through tx.
func NewTenantService(tenants repository.TenantRepository, users repository.UserRepository, roles repository.RoleRepository, tx repository.Transactor) TenantService {
	return &tenantService{tenants: tenants, users: users, roles: roles, tx: tx}
}

func (s *tenantService) List(ctx context.Context, limit, offset int, search string) (*ListResult[model.Tenant], error) {
	res, err := s.tenants.List(ctx, pageQuery(limit, offset, search))
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func (s *tenantService) Get(ctx context.Context, id string) (*model.Tenant, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	t, err := s.tenants.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return t, nil
}

func (s *tenantService) Create(ctx context.Context, in CreateTenantInput) (*TenantProvisioning, error) {
	var hash string
	if in.Admin != nil {
		if err := auth.ValidatePasswordStrength(in.Admin.Password); err != nil {
			return nil, err
		}
		h, err := auth.HashPassword(in.Admin.Password)
		if err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
		hash = h
	}

	var out *TenantProvisioning
	err := s.tx.WithinTx(ctx, func(ctx context.Context) error {
		p, err := s.provision(ctx, in, hash)
		out = p
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *tenantService) provision(ctx context.Context, in CreateTenantInput, hash string) (*TenantProvisioning, error) {
	t, err := s.tenants.Create(ctx, &model.Tenant{
		Name:         strings.TrimSpace(in.Name),
		Slug:         strings.ToLower(strings.TrimSpace(in.Slug)),
		ContactEmail: in.ContactEmail,
		IsActive:     true,
	})
	if err != nil {
		return nil, err
	}
	out := &TenantProvisioning{Tenant: t}
	if in.Admin == nil {
		return out, nil
	}

	// The rest runs as the new tenant.
	tctx := tenant.WithTenant(ctx, t.ID)
	role, err := s.roles.Create(tctx, &model.Role{Name: AdminRoleName, Description: "Full access to the tenant"})
	if err != nil {
		return nil, fmt.Errorf("create admin role: %w", err)
	}
	codes := model.PermissionCodes()
	if err := s.roles.SetPermissions(tctx, role.ID, codes); err != nil {
		return nil, fmt.Errorf("grant admin permissions: %w", err)
	}
	role.Permissions = codes
	out.Role = role

	admin, err := s.users.Create(tctx, &model.User{
		Email:        strings.ToLower(strings.TrimSpace(in.Admin.Email)),
		FullName:     in.Admin.FullName,
		PasswordHash: hash,
		RoleID:       &role.ID,
		IsActive:     true,
	})
	if err != nil {
		return nil, fmt.Errorf("create admin user: %w", err)
	}
	out.Admin = admin
	return out, nil
}

func (s *tenantService) Update(ctx context.Context, id string, in UpdateTenantInput) (*model.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.Name = strings.TrimSpace(in.Name)
	t.ContactEmail = in.ContactEmail
	if in.IsActive != nil {
		t.IsActive = *in.IsActive
	}
	updated, err := s.tenants.Update(ctx, t)
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

func (s *tenantService) Deactivate(ctx context.Context, id string) (*model.Tenant, error) {
	t, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	t.IsActive = false
	updated, err := s.tenants.Update(ctx, t)
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}
