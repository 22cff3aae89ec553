package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
)

type MockUserService struct {
	mock.Mock
}

var _ service.UserService = (*MockUserService)(nil)

func (m *MockUserService) user(args mock.Arguments) (*model.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserService) List(ctx context.Context, limit, offset int, search string) (*service.ListResult[model.User], error) {
	args := m.Called(ctx, limit, offset, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.User]), args.Error(1)
}

func (m *MockUserService) Get(ctx context.Context, id string) (*model.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserService) Create(ctx context.Context, in service.CreateUserInput) (*model.User, error) {
	return m.user(m.Called(ctx, in))
}

func (m *MockUserService) Update(ctx context.Context, id string, in service.UpdateUserInput) (*model.User, error) {
	return m.user(m.Called(ctx, id, in))
}

func (m *MockUserService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type MockRoleService struct {
	mock.Mock
}

var _ service.RoleService = (*MockRoleService)(nil)

func (m *MockRoleService) role(args mock.Arguments) (*model.Role, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Role), args.Error(1)
}

func (m *MockRoleService) List(ctx context.Context, limit, offset int, search string) (*service.ListResult[model.Role], error) {
	args := m.Called(ctx, limit, offset, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Role]), args.Error(1)
}

func (m *MockRoleService) Get(ctx context.Context, id string) (*model.Role, error) {
	return m.role(m.Called(ctx, id))
}

func (m *MockRoleService) Create(ctx context.Context, in service.RoleInput) (*model.Role, error) {
	return m.role(m.Called(ctx, in))
}

func (m *MockRoleService) Update(ctx context.Context, id string, in service.RoleInput) (*model.Role, error) {
	return m.role(m.Called(ctx, id, in))
}

func (m *MockRoleService) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockRoleService) SetPermissions(ctx context.Context, id string, codes []string) (*model.Role, error) {
	return m.role(m.Called(ctx, id, codes))
}

func (m *MockRoleService) Catalogue() []model.Permission {
	return m.Called().Get(0).([]model.Permission)
}
