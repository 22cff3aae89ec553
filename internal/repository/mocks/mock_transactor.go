package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository"
)

// MockTransactor records WithinTx calls and runs fn unless an error is
// configured. An error returned by fn is passed through as a real
// transaction would after rolling back.
type MockTransactor struct {
	mock.Mock
}

var _ repository.Transactor = (*MockTransactor)(nil)

func (m *MockTransactor) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := m.Called(ctx).Error(0); err != nil {
		return err
	}
	return fn(ctx)
}
