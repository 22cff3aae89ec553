package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

type MockRoleRepository struct {
	mock.Mock
}

var _ repository.RoleRepository = (*MockRoleRepository)(nil)

func (m *MockRoleRepository) role(args mock.Arguments) (*model.Role, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleRepository) Create(ctx context.Context, r *model.Role) (*model.Role, error) {
	return m.role(m.Called(ctx, r))
}

func (m *MockRoleRepository) FindByID(ctx context.Context, id string) (*model.Role, error) {
	return m.role(m.Called(ctx, id))
}

func (m *MockRoleRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Role], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.Role]), args.Error(1)
}

func (m *MockRoleRepository) Update(ctx context.Context, r *model.Role) (*model.Role, error) {
	return m.role(m.Called(ctx, r))
}

func (m *MockRoleRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoleRepository) SetPermissions(ctx context.Context, roleID string, codes []string) error {
	return m.Called(ctx, roleID, codes).Error(0)
}

func (m *MockRoleRepository) PermissionsFor(ctx context.Context, tenantID, roleID string) (string, []string, error) {
	args := m.Called(ctx, tenantID, roleID)
	var perms []string
	if v := args.Get(1); v != nil {
		perms = v.([]string)
	}
	return args.String(0), perms, args.Error(2)
}
