package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
)

type MockTenantService struct {
	mock.Mock
}

var _ service.TenantService = (*MockTenantService)(nil)

func (m *MockTenantService) tenant(args mock.Arguments) (*model.Tenant, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tenant), args.Error(1)
}

func (m *MockTenantService) List(ctx context.Context, limit, offset int, search string) (*service.ListResult[model.Tenant], error) {
	args := m.Called(ctx, limit, offset, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.Tenant]), args.Error(1)
}

func (m *MockTenantService) Get(ctx context.Context, id string) (*model.Tenant, error) {
	return m.tenant(m.Called(ctx, id))
}

func (m *MockTenantService) Create(ctx context.Context, in service.CreateTenantInput) (*service.TenantProvisioning, error) {
	args := m.Called(ctx, in)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.TenantProvisioning), args.Error(1)
}

func (m *MockTenantService) Update(ctx context.Context, id string, in service.UpdateTenantInput) (*model.Tenant, error) {
	return m.tenant(m.Called(ctx, id, in))
}

func (m *MockTenantService) Deactivate(ctx context.Context, id string) (*model.Tenant, error) {
	return m.tenant(m.Called(ctx, id))
}
