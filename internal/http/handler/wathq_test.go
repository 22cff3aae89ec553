package handler

import (
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/model"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/service"
	serviceMocks "github.com/atqan-dev/atqan-wathq-services-sub001/internal/service/mocks"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/wathq"
)

func TestWathqLookup(t *testing.T) {
	tests := []struct {
		name       string
		url        string
		setupMocks func(*serviceMocks.MockWathqService)
		wantStatus int
		wantSource string
		wantCode   string
	}{
		{
			name: "cache hit",
			url:  "/wathq/employee?national_id=1012345678",
			setupMocks: func(m *serviceMocks.MockWathqService) {
				m.On("Lookup", mock.Anything, "employee", map[string]string{"national_id": "1012345678"}).
					Return(&service.LookupResult{Service: "employee", Source: "cache", CacheHit: true, Data: json.RawMessage(`{"name":"x"}`)}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantSource: "cache",
		},
		{
			name: "offline fallback",
			url:  "/wathq/commercial_registration?cr_national_number=7001234567",
			setupMocks: func(m *serviceMocks.MockWathqService) {
				m.On("Lookup", mock.Anything, "commercial_registration", map[string]string{"cr_national_number": "7001234567"}).
					Return(&service.LookupResult{Service: "commercial_registration", Source: "offline", Data: json.RawMessage(`{}`)}, nil).Once()
			},
			wantStatus: http.StatusOK,
			wantSource: "offline",
		},
		{
			name: "missing parameter",
			url:  "/wathq/employee",
			setupMocks: func(m *serviceMocks.MockWathqService) {
				m.On("Lookup", mock.Anything, "employee", map[string]string{}).
					Return(nil, &wathq.ParamError{Service: "employee", Missing: []string{"national_id"}}).Once()
			},
			wantStatus: http.StatusBadRequest,
			wantCode:   "VALIDATION_FAILED",
		},
		{
			name: "unknown service",
			url:  "/wathq/horoscope?sign=leo",
			setupMocks: func(m *serviceMocks.MockWathqService) {
				m.On("Lookup", mock.Anything, "horoscope", map[string]string{"sign": "leo"}).Return(nil, service.ErrUnknownService).Once()
			},
			wantStatus: http.StatusNotFound,
		},
		{
			name: "upstream down without offline copy",
			url:  "/wathq/power_of_attorney?code=ABC123",
			setupMocks: func(m *serviceMocks.MockWathqService) {
				m.On("Lookup", mock.Anything, "power_of_attorney", map[string]string{"code": "ABC123"}).Return(nil, service.ErrUpstream).Once()
			},
			wantStatus: http.StatusBadGateway,
			wantCode:   "WATHQ_UNAVAILABLE",
		},
		{
			name: "upstream not found",
			url:  "/wathq/employee?national_id=1000000000",
			setupMocks: func(m *serviceMocks.MockWathqService) {
				m.On("Lookup", mock.Anything, "employee", map[string]string{"national_id": "1000000000"}).Return(nil, service.ErrNotFound).Once()
			},
			wantStatus: http.StatusNotFound,
			wantCode:   "NOT_FOUND",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(serviceMocks.MockWathqService)
			tt.setupMocks(svc)
			app := newTestApp()
			app.Get("/wathq/:service", WathqLookup(svc))

			resp := doJSON(t, app, http.MethodGet, tt.url, nil)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			if tt.wantSource != "" {
				var res service.LookupResult
				json.NewDecoder(resp.Body).Decode(&res)
				assert.Equal(t, tt.wantSource, res.Source)
			}
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, decodeError(t, resp).Error.Code)
			}
			svc.AssertExpectations(t)
		})
	}
}

func TestInvalidateWathqCache(t *testing.T) {
	svc := new(serviceMocks.MockWathqService)
	app := newTestApp()
	app.Delete("/wathq/cache", InvalidateWathqCache(svc))

	params := map[string]string{"national_id": "1012345678"}
	svc.On("Invalidate", mock.Anything, "national_address", params).Return(nil).Once()

	resp := doJSON(t, app, http.MethodDelete, "/wathq/cache", invalidateRequest{Service: "national_address", Params: params})
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doJSON(t, app, http.MethodDelete, "/wathq/cache", invalidateRequest{Params: params})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	svc.AssertExpectations(t)
}

func TestListCallLogs(t *testing.T) {
	svc := new(serviceMocks.MockCallLogService)
	app := newTestApp()
	app.Get("/call-logs", ListCallLogs(svc))
	app.Get("/call-logs/:id", GetCallLog(svc))

	t.Run("filters", func(t *testing.T) {
		hit := false
		from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
		to := time.Date(2026, 1, 31, 12, 0, 0, 0, time.UTC)
		svc.On("List", mock.Anything, service.CallLogQuery{
			Service:  "employee",
			CacheHit: &hit,
			From:     &from,
			To:       &to,
			Limit:    10,
			Offset:   0,
		}).Return(&service.ListResult[model.CallLog]{}, nil).Once()

		resp := doJSON(t, app, http.MethodGet, "/call-logs?service=employee&cache_hit=false&from=2026-01-01&to=2026-01-31T12:00:00Z", nil)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid cache_hit", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/call-logs?cache_hit=maybe", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_CACHE_HIT", decodeError(t, resp).Error.Code)
	})

	t.Run("invalid from", func(t *testing.T) {
		resp := doJSON(t, app, http.MethodGet, "/call-logs?from=yesterday", nil)
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, "INVALID_FROM", decodeError(t, resp).Error.Code)
	})

	t.Run("get", func(t *testing.T) {
		id := uuid.NewString()
		svc.On("Get", mock.Anything, id).Return(&model.CallLog{ID: id, Service: "employee"}, nil).Once()

		resp := doJSON(t, app, http.MethodGet, "/call-logs/"+id, nil)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	})
	svc.AssertExpectations(t)
}
