package wathq

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/config"
)

func newTestClient(t *testing.T, h http.HandlerFunc) (*Client, *Metrics) {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	return NewClient(config.WathqConfig{BaseURL: srv.URL + "/", APIKey: "secret-key", Timeout: 2 * time.Second}, m), m
}

func TestClient_Fetch_Success(t *testing.T) {
	var gotPath, gotKey string
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		gotKey = r.Header.Get(APIKeyHeader)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"nationalId":"1012345678","fullName":"Ahmed Ali"}`))
	})

	resp, err := c.Fetch(context.Background(), Request{
		Service: ServiceEmployee,
		Params:  map[string]string{"national_id": " 1012345678 "},
	})

	require.NoError(t, err)
	assert.Equal(t, "/masdr/employee/info/1012345678", gotPath)
	assert.Equal(t, "secret-key", gotKey)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "/masdr/employee/info/1012345678", resp.Endpoint)
	assert.JSONEq(t, `{"nationalId":"1012345678","fullName":"Ahmed Ali"}`, string(resp.Body))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(ServiceEmployee, "success")))
}

func TestClient_Fetch_EscapesPath(t *testing.T) {
	var gotPath string
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{}`))
	})

	_, err := c.Fetch(context.Background(), Request{
		Service: ServicePowerOfAttorney,
		Params:  map[string]string{"code": "a/b c"},
	})
	require.NoError(t, err)
	assert.Equal(t, "/moj/poa/info/a%2Fb%20c", gotPath)
}

func TestClient_Fetch_NotFound(t *testing.T) {
	c, m := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"code":"404","message":"not found"}`))
	})

	resp, err := c.Fetch(context.Background(), Request{
		Service: ServiceCommercialRegistration,
		Params:  map[string]string{"cr_national_number": "7001234567"},
	})

	assert.ErrorIs(t, err, ErrNotFound)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(ServiceCommercialRegistration, "not_found")))
}

func TestClient_Fetch_UpstreamError(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`maintenance`))
	})

	resp, err := c.Fetch(context.Background(), Request{
		Service: ServiceEmployee,
		Params:  map[string]string{"national_id": "1012345678"},
	})

	var uerr *UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, http.StatusServiceUnavailable, uerr.StatusCode)
	assert.Equal(t, "maintenance", string(uerr.Body))
	assert.Nil(t, resp.Body)
}

func TestClient_Fetch_NonJSONSuccess(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>gateway</html>`))
	})

	_, err := c.Fetch(context.Background(), Request{
		Service: ServiceEmployee,
		Params:  map[string]string{"national_id": "1012345678"},
	})
	var uerr *UpstreamError
	assert.ErrorAs(t, err, &uerr)
}

func TestClient_Fetch_TransportError(t *testing.T) {
	m, err := NewMetrics(prometheus.NewRegistry())
	require.NoError(t, err)
	c := NewClient(config.WathqConfig{BaseURL: "http://127.0.0.1:1", APIKey: "k", Timeout: time.Second}, m)

	resp, err := c.Fetch(context.Background(), Request{
		Service: ServiceEmployee,
		Params:  map[string]string{"national_id": "1012345678"},
	})

	var uerr *UpstreamError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, 0, uerr.StatusCode)
	assert.NotNil(t, uerr.Unwrap())
	assert.Equal(t, 0, resp.StatusCode)
	assert.Equal(t, 1.0, testutil.ToFloat64(m.requests.WithLabelValues(ServiceEmployee, "transport_error")))
}

func TestClient_Fetch_Validation(t *testing.T) {
	c, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Fatal("upstream must not be called")
	})

	_, err := c.Fetch(context.Background(), Request{Service: "nope"})
	assert.ErrorIs(t, err, ErrUnknownService)

	_, err = c.Fetch(context.Background(), Request{
		Service: ServiceRealEstateDeed,
		Params:  map[string]string{"deed_number": "310105045645", "owner_id_type": "passport"},
	})
	var perr *ParamError
	require.True(t, errors.As(err, &perr))
	assert.Equal(t, []string{"owner_id"}, perr.Missing)
	assert.Equal(t, []string{"owner_id_type"}, perr.Invalid)
}

func TestServices(t *testing.T) {
	assert.Equal(t, []string{
		ServiceCommercialRegistration,
		ServiceEmployee,
		ServiceNationalAddress,
		ServicePowerOfAttorney,
		ServiceRealEstateDeed,
	}, Services())
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.CacheLookup(ServiceEmployee, true)
		m.observe(ServiceEmployee, "success", 1)
	})
}
