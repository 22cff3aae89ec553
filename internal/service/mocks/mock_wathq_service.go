package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
)

type MockWathqService struct {
	mock.Mock
}

var _ service.WathqService = (*MockWathqService)(nil)

func (m *MockWathqService) Lookup(ctx context.Context, svc string, params map[string]string) (*service.LookupResult, error) {
	args := m.Called(ctx, svc, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.LookupResult), args.Error(1)
}

func (m *MockWathqService) Invalidate(ctx context.Context, svc string, params map[string]string) error {
	return m.Called(ctx, svc, params).Error(0)
}

func (m *MockWathqService) PurgeExpired(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

type MockCallLogService struct {
	mock.Mock
}

var _ service.CallLogService = (*MockCallLogService)(nil)

func (m *MockCallLogService) List(ctx context.Context, q service.CallLogQuery) (*service.ListResult[model.CallLog], error) {
	args := m.Called(ctx, q)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[model.CallLog]), args.Error(1)
}

func (m *MockCallLogService) Get(ctx context.Context, id string) (*model.CallLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallLog), args.Error(1)
}

func (m *MockCallLogService) Purge(ctx context.Context, retention time.Duration) (int64, error) {
	args := m.Called(ctx, retention)
	return args.Get(0).(int64), args.Error(1)
}
