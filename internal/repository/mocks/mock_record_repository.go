package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

type MockRecordRepository[T any] struct {
	mock.Mock
}

var _ repository.RecordRepository[struct{}] = (*MockRecordRepository[struct{}])(nil)

func (m *MockRecordRepository[T]) one(args mock.Arguments) (*T, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*T), args.Error(1)
}

func (m *MockRecordRepository[T]) Create(ctx context.Context, rec *T) (*T, error) {
	return m.one(m.Called(ctx, rec))
}

func (m *MockRecordRepository[T]) FindByID(ctx context.Context, id string) (*T, error) {
	return m.one(m.Called(ctx, id))
}

func (m *MockRecordRepository[T]) FindByKey(ctx context.Context, key string) (*T, error) {
	return m.one(m.Called(ctx, key))
}

func (m *MockRecordRepository[T]) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[T], error) {
	args := m.Called(ctx, pq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*repository.PageResult[T]), args.Error(1)
}

func (m *MockRecordRepository[T]) Update(ctx context.Context, rec *T) (*T, error) {
	return m.one(m.Called(ctx, rec))
}

func (m *MockRecordRepository[T]) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockRecordRepository[T]) Upsert(ctx context.Context, rec *T) (*T, error) {
	return m.one(m.Called(ctx, rec))
}
