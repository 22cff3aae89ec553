package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
)

type MockRecordService[T any] struct {
	mock.Mock
}

var _ service.RecordService[struct{}] = (*MockRecordService[struct{}])(nil)

func (m *MockRecordService[T]) one(args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRecordService[T]) List(ctx context.Context, limit, offset int, search string) (*service.ListResult[T], error) {
	args := m.Called(ctx, limit, offset, search)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.ListResult[T]), args.Error(1)
}

func (m *MockRecordService[T]) Get(ctx context.Context, id string) (*T, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockRecordService[T]) Create(ctx context.Context, rec *T) (*T, error) {
	return m.one(m.Called(ctx, rec))
}

func (m *MockRecordService[T]) Update(ctx context.Context, id string, rec *T) (*T, error) {
	return m.one(m.Called(ctx, id, rec))
}

func (m *MockRecordService[T]) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}
