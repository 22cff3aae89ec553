package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

// RoleInput is used for both create and update.
type RoleInput struct {
	Name        string   `json:"name" validate:"required,max=100"`
	Description string   `json:"description" validate:"max=500"`
	Permissions []string `json:"permissions"`
}

// RoleService manages roles of the caller's tenant.
type RoleService interface {
	List(ctx context.Context, limit, offset int, search string) (*ListResult[model.Role], error)
	Get(ctx context.Context, id string) (*model.Role, error)
	Create(ctx context.Context, in RoleInput) (*model.Role, error)
	// Update changes name and description; permissions are replaced only when in.Permissions is non-nil.
	Update(ctx context.Context, id string, in RoleInput) (*model.Role, error)
	Delete(ctx context.Context, id string) error
	SetPermissions(ctx context.Context, id string, codes []string) (*model.Role, error)
	Catalogue() []model.Permission
}

type roleService struct {
	roles repository.RoleRepository
	tx    repository.Transactor
}

// NewRoleService constructs a new RoleService. Role rows and their
// permission sets are written in one transaction through tx.
func NewRoleService(roles repository.RoleRepository, tx repository.Transactor) RoleService {
	return &roleService{roles: roles, tx: tx}
}

func (s *roleService) List(ctx context.Context, limit, offset int, search string) (*ListResult[model.Role], error) {
	res, err := s.roles.List(ctx, pageQuery(limit, offset, search))
	if err != nil {
		return nil, err
	}
	return listResult(res), nil
}

func (s *roleService) Get(ctx context.Context, id string) (*model.Role, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	r, err := s.roles.FindByID(ctx, id)
	if err != nil {
		return nil, notFound(err)
	}
	return r, nil
}

func (s *roleService) Create(ctx context.Context, in RoleInput) (*model.Role, error) {
	codes, err := normalizePermissions(in.Permissions)
	if err != nil {
		return nil, err
	}
	var r *model.Role
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		created, err := s.roles.Create(ctx, &model.Role{
			Name:        strings.TrimSpace(in.Name),
			Description: in.Description,
		})
		if err != nil {
			return err
		}
		if err := s.roles.SetPermissions(ctx, created.ID, codes); err != nil {
			return err
		}
		r = created
		return nil
	})
	if err != nil {
		return nil, err
	}
	r.Permissions = codes
	return r, nil
}

func (s *roleService) Update(ctx context.Context, id string, in RoleInput) (*model.Role, error) {
	var codes []string
	if in.Permissions != nil {
		c, err := normalizePermissions(in.Permissions)
		if err != nil {
			return nil, err
		}
		codes = c
	}
	r, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	r.Name = strings.TrimSpace(in.Name)
	r.Description = in.Description
	var updated *model.Role
	err = s.tx.WithinTx(ctx, func(ctx context.Context) error {
		u, err := s.roles.Update(ctx, r)
		if err != nil {
			return err
		}
		if codes != nil {
			if err := s.roles.SetPermissions(ctx, id, codes); err != nil {
				return err
			}
			u.Permissions = codes
		}
		updated = u
		return nil
	})
	if err != nil {
		return nil, notFound(err)
	}
	return updated, nil
}

func (s *roleService) Delete(ctx context.Context, id string) error {
	if id == "" {
		return ErrIDRequired
	}
	return notFound(s.roles.Delete(ctx, id))
}

func (s *roleService) SetPermissions(ctx context.Context, id string, codes []string) (*model.Role, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	normalized, err := normalizePermissions(codes)
	if err != nil {
		return nil, err
	}
	if err := s.roles.SetPermissions(ctx, id, normalized); err != nil {
		return nil, notFound(err)
	}
	return s.Get(ctx, id)
}

func (s *roleService) Catalogue() []model.Permission {
	out := make([]model.Permission, len(model.PermissionCatalogue))
	copy(out, model.PermissionCatalogue)
	return out
}

// normalizePermissions rejects unknown codes and returns a sorted set.
func normalizePermissions(codes []string) ([]string, error) {
	seen := make(map[string]struct{}, len(codes))
	out := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if !model.IsKnownPermission(c) {
			return nil, fmt.Errorf("%w: %q", ErrUnknownPermission, c)
		}
		if _, ok := seen[c]; ok {
			continue
		}
		seen[c] = struct{}{}
		out = append(out, c)
	}
	sort.Strings(out)
	return out, nil
}
