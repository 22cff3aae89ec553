package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/wathq"
)

type MockFetcher struct {
	mock.Mock
}

var _ wathq.Fetcher = (*MockFetcher)(nil)

func (m *MockFetcher) Fetch(ctx context.Context, req wathq.Request) (*wathq.Response, error) {
	args := m.Called(ctx, req)
	var resp *wathq.Response
	if v := args.Get(0); v != nil {
		resp = v.(*wathq.Response)
	}
	return resp, args.Error(1)
}
