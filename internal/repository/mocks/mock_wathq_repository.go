package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

type MockCacheRepository struct {
	mock.Mock
}

var _ repository.CacheRepository = (*MockCacheRepository)(nil)

func (m *MockCacheRepository) Get(ctx context.Context, key string, now time.Time) (*model.CacheEntry, error) {
	args := m.Called(ctx, key, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CacheEntry), args.Error(1)
}

func (m *MockCacheRepository) Put(ctx context.Context, e *model.CacheEntry) error {
	return m.Called(ctx, e).Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	args := m.Called(ctx, now)
	return args.Get(0).(int64), args.Error(1)
}

type MockCallLogRepository struct {
	mock.Mock
}

var _ repository.CallLogRepository = (*MockCallLogRepository)(nil)

func (m *MockCallLogRepository) Create(ctx context.Context, l *model.CallLog) (*model.CallLog, error) {
	args := m.Called(ctx, l)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallLog), args.Error(1)
}

func (m *MockCallLogRepository) FindByID(ctx context.Context, id string) (*model.CallLog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.CallLog), args.Error(1)
}

func (m *MockCallLogRepository) List(ctx context.Context, f repository.CallLogFilter, pq repository.PageQuery) (*repository.PageResult[model.CallLog], error) {
	args := m.Called(ctx, f, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[model.CallLog]), args.Error(1)
}

func (m *MockCallLogRepository) PurgeBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).(int64), args.Error(1)
}
