package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	repoMocks "github.com/atqan-dev/atqan-wathq-services-sub001/internal/repository/mocks"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/wathq"
	wathqMocks "github.com/atqan-dev/atqan-wathq-services-sub001/internal/wathq/mocks"
)

type fakeNotifier struct {
	got []NotifyInput
}

func (f *fakeNotifier) Notify(_ context.Context, in NotifyInput) (*model.Notification, error) {
	f.got = append(f.got, in)
	return &model.Notification{ID: "n-1", UserID: in.UserID}, nil
}

type wathqFixture struct {
	svc       *wathqService
	fetcher   *wathqMocks.MockFetcher
	cache     *repoMocks.MockCacheRepository
	logs      *repoMocks.MockCallLogRepository
	employees *repoMocks.MockRecordRepository[model.Employee]
	notifier  *fakeNotifier
	now       time.Time
}

func newWathqFixture(t *testing.T) *wathqFixture {
	t.Helper()
	f := &wathqFixture{
		fetcher:   new(wathqMocks.MockFetcher),
		cache:     new(repoMocks.MockCacheRepository),
		logs:      new(repoMocks.MockCallLogRepository),
		employees: new(repoMocks.MockRecordRepository[model.Employee]),
		notifier:  &fakeNotifier{},
		now:       time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC),
	}
	cfg := config.WathqConfig{
		CacheTTL:   time.Hour,
		ServiceTTL: map[string]time.Duration{wathq.ServiceEmployee: 6 * time.Hour},
	}
	f.svc = NewWathqService(f.fetcher, f.cache, f.logs, Records{Employees: f.employees}, f.notifier, nil, cfg).(*wathqService)
	f.svc.now = func() time.Time { return f.now }
	return f
}

func (f *wathqFixture) assertExpectations(t *testing.T) {
	f.fetcher.AssertExpectations(t)
	f.cache.AssertExpectations(t)
	f.logs.AssertExpectations(t)
	f.employees.AssertExpectations(t)
}

func lookupCtx() context.Context {
	ctx := tenant.WithTenant(context.Background(), "tenant-1")
	return tenant.WithActor(ctx, tenant.Actor{UserID: "user-1", TenantID: "tenant-1", Kind: tenant.KindUser})
}

var employeeParams = map[string]string{"national_id": " 1000000001 ", "ignored": "x"}

func employeeKey() string {
	return CacheKey(wathq.ServiceEmployee, map[string]string{"national_id": "1000000001"})
}

func TestCacheKey(t *testing.T) {
	a := CacheKey("real_estate_deed", map[string]string{"deed_number": "1", "owner_id": "2", "owner_id_type": "cr"})
	b := CacheKey("real_estate_deed", map[string]string{"owner_id_type": "cr", "owner_id": "2", "deed_number": "1"})
	assert.Equal(t, a, b)
	assert.Len(t, a, 64)

	assert.NotEqual(t, CacheKey("employee", map[string]string{"national_id": "1"}),
		CacheKey("national_address", map[string]string{"national_id": "1"}))
	assert.NotEqual(t, CacheKey("employee", map[string]string{"national_id": "1"}),
		CacheKey("employee", map[string]string{"national_id": "2"}))
}

func TestWathqService_LookupCacheHit(t *testing.T) {
	ctx := lookupCtx()
	f := newWathqFixture(t)

	body := json.RawMessage(`{"nationalId":"1000000001"}`)
	f.cache.On("Get", ctx, employeeKey(), f.now).Return(&model.CacheEntry{
		StatusCode: 200, Body: body, ExpiresAt: f.now.Add(time.Hour), CreatedAt: f.now.Add(-time.Hour),
	}, nil)
	f.logs.On("Create", ctx, mock.MatchedBy(func(l *model.CallLog) bool {
		return l.CacheHit && l.Source == model.SourceCache && l.UserID == "user-1" &&
			l.CacheKey == employeeKey() && string(l.RequestParams) == `{"national_id":"1000000001"}`
	})).Return(&model.CallLog{ID: "log-1"}, nil)

	res, err := f.svc.Lookup(ctx, wathq.ServiceEmployee, employeeParams)
	require.NoError(t, err)
	assert.Equal(t, model.SourceCache, res.Source)
	assert.True(t, res.CacheHit)
	assert.JSONEq(t, string(body), string(res.Data))
	assert.Equal(t, "log-1", res.CallLogID)
	f.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestWathqService_LookupLive(t *testing.T) {
	ctx := lookupCtx()
	f := newWathqFixture(t)
	body := json.RawMessage(`{"nationalId":"1000000001","fullName":"Sara","basicWage":"8500.50"}`)

	f.cache.On("Get", ctx, employeeKey(), f.now).Return(nil, sql.ErrNoRows)
	f.fetcher.On("Fetch", ctx, wathq.Request{Service: wathq.ServiceEmployee, Params: map[string]string{"national_id": "1000000001"}}).
		Return(&wathq.Response{Method: "GET", Endpoint: "/masdr/employee/info/1000000001", StatusCode: 200, Body: body, Duration: 120 * time.Millisecond}, nil)
	f.cache.On("Put", ctx, mock.MatchedBy(func(e *model.CacheEntry) bool {
		return e.CacheKey == employeeKey() && e.ExpiresAt.Equal(f.now.Add(6*time.Hour)) && e.StatusCode == 200
	})).Return(nil)
	f.employees.On("Upsert", ctx, mock.MatchedBy(func(e *model.Employee) bool {
		return e.NationalID == "1000000001" && e.FullName == "Sara" && e.FetchedAt != nil && e.FetchedAt.Equal(f.now)
	})).Return(&model.Employee{}, nil)
	f.logs.On("Create", ctx, mock.MatchedBy(func(l *model.CallLog) bool {
		return !l.CacheHit && l.Source == model.SourceLive && l.StatusCode == 200 &&
			l.DurationMS == 120 && l.Endpoint == "/masdr/employee/info/1000000001" && l.ErrorMessage == ""
	})).Return(&model.CallLog{ID: "log-2"}, nil)

	res, err := f.svc.Lookup(ctx, wathq.ServiceEmployee, employeeParams)
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, res.Source)
	assert.False(t, res.CacheHit)
	require.NotNil(t, res.ExpiresAt)
	assert.Equal(t, f.now.Add(6*time.Hour), *res.ExpiresAt)
	f.assertExpectations(t)
}

func TestWathqService_LookupLiveKeepsServingWhenOfflineSaveFails(t *testing.T) {
	ctx := lookupCtx()
	f := newWathqFixture(t)

	f.cache.On("Get", ctx, employeeKey(), f.now).Return(nil, sql.ErrNoRows)
	f.fetcher.On("Fetch", ctx, mock.Anything).Return(&wathq.Response{StatusCode: 200, Body: json.RawMessage(`{}`)}, nil)
	f.cache.On("Put", ctx, mock.Anything).Return(nil)
	f.employees.On("Upsert", ctx, mock.Anything).Return(nil, errors.New("check constraint"))
	f.logs.On("Create", ctx, mock.Anything).Return(nil, errors.New("log table gone"))

	res, err := f.svc.Lookup(ctx, wathq.ServiceEmployee, employeeParams)
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, res.Source)
	assert.Empty(t, res.CallLogID)
}

func TestWathqService_LookupLiveServedWhenCacheWriteFails(t *testing.T) {
	ctx := lookupCtx()
	f := newWathqFixture(t)
	body := json.RawMessage(`{"nationalId":"1000000001","fullName":"Sara"}`)

	f.cache.On("Get", ctx, employeeKey(), f.now).Return(nil, sql.ErrNoRows)
	f.fetcher.On("Fetch", ctx, mock.Anything).Return(&wathq.Response{StatusCode: 200, Body: body}, nil)
	f.cache.On("Put", ctx, mock.Anything).Return(errors.New("connection reset"))
	f.employees.On("Upsert", ctx, mock.Anything).Return(&model.Employee{}, nil)
	f.logs.On("Create", ctx, mock.MatchedBy(func(l *model.CallLog) bool {
		return l.Source == model.SourceLive && l.StatusCode == 200
	})).Return(&model.CallLog{ID: "log-3"}, nil)

	res, err := f.svc.Lookup(ctx, wathq.ServiceEmployee, employeeParams)
	require.NoError(t, err)
	assert.Equal(t, model.SourceLive, res.Source)
	assert.JSONEq(t, string(body), string(res.Data))
	assert.Nil(t, res.ExpiresAt)
	assert.Equal(t, "log-3", res.CallLogID)
	f.assertExpectations(t)
}

func TestWathqService_LookupNotFound(t *testing.T) {
	ctx := lookupCtx()
	f := newWathqFixture(t)

	f.cache.On("Get", ctx, employeeKey(), f.now).Return(nil, sql.ErrNoRows)
	f.fetcher.On("Fetch", ctx, mock.Anything).Return(&wathq.Response{StatusCode: 404}, wathq.ErrNotFound)
	f.logs.On("Create", ctx, mock.MatchedBy(func(l *model.CallLog) bool {
		return l.StatusCode == 404 && l.ErrorMessage != ""
	})).Return(&model.CallLog{ID: "log-3"}, nil)

	_, err := f.svc.Lookup(ctx, wathq.ServiceEmployee, employeeParams)
	assert.ErrorIs(t, err, ErrNotFound)
	f.cache.AssertNotCalled(t, "Put", mock.Anything, mock.Anything)
	f.assertExpectations(t)
}

func TestWathqService_LookupUpstreamFailure(t *testing.T) {
	ctx := lookupCtx()
	upstream := &wathq.UpstreamError{StatusCode: 503}

	t.Run("falls back to the stored record", func(t *testing.T) {
		f := newWathqFixture(t)
		fetched := f.now.Add(-48 * time.Hour)
		f.cache.On("Get", ctx, employeeKey(), f.now).Return(nil, sql.ErrNoRows)
		f.fetcher.On("Fetch", ctx, mock.Anything).Return(&wathq.Response{StatusCode: 503}, upstream)
		f.employees.On("FindByKey", ctx, "1000000001").Return(&model.Employee{
			NationalID: "1000000001", Payload: json.RawMessage(`{"fullName":"Sara"}`), FetchedAt: &fetched,
		}, nil)
		f.logs.On("Create", ctx, mock.MatchedBy(func(l *model.CallLog) bool {
			return l.Source == model.SourceOffline && l.StatusCode == 503
		})).Return(&model.CallLog{ID: "log-4"}, nil)

		res, err := f.svc.Lookup(ctx, wathq.ServiceEmployee, employeeParams)
		require.NoError(t, err)
		assert.Equal(t, model.SourceOffline, res.Source)
		assert.JSONEq(t, `{"fullName":"Sara"}`, string(res.Data))
		assert.Equal(t, &fetched, res.FetchedAt)

		require.Len(t, f.notifier.got, 1)
		assert.Equal(t, "user-1", f.notifier.got[0].UserID)
		assert.Equal(t, NotificationOfflineData, f.notifier.got[0].Type)
		f.assertExpectations(t)
	})

	t.Run("manually entered record", func(t *testing.T) {
		f := newWathqFixture(t)
		f.cache.On("Get", ctx, employeeKey(), f.now).Return(nil, sql.ErrNoRows)
		f.fetcher.On("Fetch", ctx, mock.Anything).Return(&wathq.Response{}, upstream)
		f.employees.On("FindByKey", ctx, "1000000001").Return(&model.Employee{NationalID: "1000000001", FullName: "Sara"}, nil)
		f.logs.On("Create", ctx, mock.Anything).Return(&model.CallLog{ID: "log-5"}, nil)

		res, err := f.svc.Lookup(ctx, wathq.ServiceEmployee, employeeParams)
		require.NoError(t, err)
		assert.Contains(t, string(res.Data), `"full_name":"Sara"`)
	})

	t.Run("nothing stored", func(t *testing.T) {
		f := newWathqFixture(t)
		f.cache.On("Get", ctx, employeeKey(), f.now).Return(nil, sql.ErrNoRows)
		f.fetcher.On("Fetch", ctx, mock.Anything).Return(&wathq.Response{}, upstream)
		f.employees.On("FindByKey", ctx, "1000000001").Return(nil, sql.ErrNoRows)
		f.logs.On("Create", ctx, mock.MatchedBy(func(l *model.CallLog) bool {
			return l.Source == model.SourceLive
		})).Return(&model.CallLog{ID: "log-6"}, nil)

		_, err := f.svc.Lookup(ctx, wathq.ServiceEmployee, employeeParams)
		assert.ErrorIs(t, err, ErrUpstream)
		assert.Empty(t, f.notifier.got)
		f.assertExpectations(t)
	})
}

func TestWathqService_LookupRejectsBadInput(t *testing.T) {
	ctx := lookupCtx()
	f := newWathqFixture(t)

	_, err := f.svc.Lookup(ctx, "weather", nil)
	assert.ErrorIs(t, err, ErrUnknownService)

	_, err = f.svc.Lookup(ctx, wathq.ServiceRealEstateDeed, map[string]string{"deed_number": "1", "owner_id_type": "passport"})
	var perr *wathq.ParamError
	require.ErrorAs(t, err, &perr)
	assert.Equal(t, []string{"owner_id"}, perr.Missing)
	assert.Equal(t, []string{"owner_id_type"}, perr.Invalid)
	f.assertExpectations(t)
}

func TestWathqService_LookupCacheError(t *testing.T) {
	ctx := lookupCtx()
	f := newWathqFixture(t)
	f.cache.On("Get", ctx, employeeKey(), f.now).Return(nil, errors.New("conn reset"))

	_, err := f.svc.Lookup(ctx, wathq.ServiceEmployee, employeeParams)
	assert.EqualError(t, err, "read wathq cache: conn reset")
	f.fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything)
}

func TestWathqService_InvalidateAndPurge(t *testing.T) {
	ctx := lookupCtx()
	f := newWathqFixture(t)
	f.cache.On("Delete", ctx, employeeKey()).Return(nil)
	f.cache.On("PurgeExpired", ctx, f.now).Return(int64(7), nil)

	require.NoError(t, f.svc.Invalidate(ctx, wathq.ServiceEmployee, employeeParams))
	n, err := f.svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(7), n)
	f.assertExpectations(t)
}
