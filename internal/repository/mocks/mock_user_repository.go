package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

type MockUserRepository struct {
	mock.Mock
}

var _ repository.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) user(args mock.Arguments) (*model.User, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, u *model.User) (*model.User, error) {
	return m.user(m.Called(ctx, u))
}

func (m *MockUserRepository) FindByID(ctx context.Context, id string) (*model.User, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockUserRepository) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.User], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.User]), args.Error(1)
}

func (m *MockUserRepository) Update(ctx context.Context, u *model.User) (*model.User, error) {
	return m.user(m.Called(ctx, u))
}

func (m *MockUserRepository) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockUserRepository) FindForLogin(ctx context.Context, tenantSlug, email string) (*model.User, error) {
	return m.user(m.Called(ctx, tenantSlug, email))
}

func (m *MockUserRepository) FindByIDUnscoped(ctx context.Context, tenantID, id string) (*model.User, error) {
	return m.user(m.Called(ctx, tenantID, id))
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, tenantID, id, hash string) error {
	return m.Called(ctx, tenantID, id, hash).Error(0)
}

func (m *MockUserRepository) UpdateTOTP(ctx context.Context, tenantID, id, secret string, enabled bool) error {
	return m.Called(ctx, tenantID, id, secret, enabled).Error(0)
}

func (m *MockUserRepository) TouchLogin(ctx context.Context, tenantID, id string, at time.Time) error {
	return m.Called(ctx, tenantID, id, at).Error(0)
}

type MockManagementUserRepository struct {
	mock.Mock
}

var _ repository.ManagementUserRepository = (*MockManagementUserRepository)(nil)

func (m *MockManagementUserRepository) user(args mock.Arguments) (*model.ManagementUser, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.ManagementUser), args.Error(1)
}

func (m *MockManagementUserRepository) Create(ctx context.Context, u *model.ManagementUser) (*model.ManagementUser, error) {
	return m.user(m.Called(ctx, u))
}

func (m *MockManagementUserRepository) FindByID(ctx context.Context, id string) (*model.ManagementUser, error) {
	return m.user(m.Called(ctx, id))
}

func (m *MockManagementUserRepository) FindByEmail(ctx context.Context, email string) (*model.ManagementUser, error) {
	return m.user(m.Called(ctx, email))
}

func (m *MockManagementUserRepository) UpdatePassword(ctx context.Context, id, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockManagementUserRepository) UpdateTOTP(ctx context.Context, id, secret string, enabled bool) error {
	return m.Called(ctx, id, secret, enabled).Error(0)
}

func (m *MockManagementUserRepository) TouchLogin(ctx context.Context, id string, at time.Time) error {
	return m.Called(ctx, id, at).Error(0)
}
