package middleware

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/auth"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

func TestRequestID(t *testing.T) {
	app := fiber.New()
	app.Use(RequestID())

	app.Get("/test", func(c *fiber.Ctx) error {
		return c.SendString(RequestIDFromCtx(c))
	})

	t.Run("should generate new request id if not present", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/test", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)

		ridHeader := resp.Header.Get(RequestIDHeader)
		assert.NotEmpty(t, ridHeader)

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, ridHeader, buf.String())
	})

	t.Run("should preserve existing request id", func(t *testing.T) {
		existingID := "test-id-123"
		req := httptest.NewRequest("GET", "/test", nil)
		req.Header.Set(RequestIDHeader, existingID)

		resp, _ := app.Test(req)

		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
		assert.Equal(t, existingID, resp.Header.Get(RequestIDHeader))

		buf := new(bytes.Buffer)
		buf.ReadFrom(resp.Body)
		assert.Equal(t, existingID, buf.String())
	})
}

func decodeLogLine(t *testing.T, buf *bytes.Buffer) map[string]any {
	t.Helper()
	var logData map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &logData))
	return logData
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	log := zerolog.New(&buf).Level(zerolog.InfoLevel)

	app := fiber.New()
	app.Use(RequestID())
	app.Use(Logger(log))

	app.Get("/test", func(c *fiber.Ctx) error {
		zerolog.Ctx(c.UserContext()).Debug().Msg("inside handler")
		return c.SendStatus(fiber.StatusAccepted)
	})
	app.Get("/scoped", func(c *fiber.Ctx) error {
		ctx := tenant.WithActor(c.UserContext(), tenant.Actor{UserID: "u-1", Kind: tenant.KindUser})
		c.SetUserContext(tenant.WithTenant(ctx, "t-1"))
		return c.SendStatus(fiber.StatusOK)
	})
	app.Get("/boom", func(c *fiber.Ctx) error {
		return errors.New("boom")
	})

	t.Run("fields", func(t *testing.T) {
		buf.Reset()
		resp, _ := app.Test(httptest.NewRequest("GET", "/test", nil))
		assert.Equal(t, fiber.StatusAccepted, resp.StatusCode)

		logData := decodeLogLine(t, &buf)
		assert.NotEmpty(t, logData["request_id"])
		assert.Equal(t, "GET", logData["method"])
		assert.Equal(t, "/test", logData["path"])
		assert.Equal(t, float64(fiber.StatusAccepted), logData["status"])
		assert.NotNil(t, logData["latency_ms"])
		assert.Equal(t, "info", logData["level"])
	})

	t.Run("actor and tenant", func(t *testing.T) {
		buf.Reset()
		app.Test(httptest.NewRequest("GET", "/scoped", nil))

		logData := decodeLogLine(t, &buf)
		assert.Equal(t, "u-1", logData["user_id"])
		assert.Equal(t, "t-1", logData["tenant_id"])
	})

	t.Run("chain error is resolved before logging", func(t *testing.T) {
		buf.Reset()
		resp, _ := app.Test(httptest.NewRequest("GET", "/boom", nil))
		assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)

		logData := decodeLogLine(t, &buf)
		assert.Equal(t, "error", logData["level"])
		assert.Equal(t, "boom", logData["error"])
	})
}

type stubAuthenticator struct {
	claims *auth.Claims
	err    error
	got    string
}

func (s *stubAuthenticator) Authenticate(_ context.Context, token string) (*auth.Claims, error) {
	s.got = token
	return s.claims, s.err
}

func TestAuth(t *testing.T) {
	userClaims := &auth.Claims{UserID: "u-1", TenantID: "t-1", Kind: tenant.KindUser, Permissions: []string{"employees:read"}}

	newApp := func(authn Authenticator, allowQuery bool) *fiber.App {
		app := fiber.New()
		app.Get("/me", Auth(authn, allowQuery), func(c *fiber.Ctx) error {
			tid, _ := tenant.FromContext(c.UserContext())
			actor, _ := tenant.ActorFromContext(c.UserContext())
			return c.JSON(fiber.Map{"tenant": tid, "user": actor.UserID, "claims": ClaimsFromCtx(c) != nil})
		})
		return app
	}

	tests := []struct {
		name       string
		authn      *stubAuthenticator
		allowQuery bool
		header     string
		url        string
		wantStatus int
		wantToken  string
	}{
		{"bearer header", &stubAuthenticator{claims: userClaims}, false, "Bearer tok-1", "/me", fiber.StatusOK, "tok-1"},
		{"lowercase scheme", &stubAuthenticator{claims: userClaims}, false, "bearer tok-1", "/me", fiber.StatusOK, "tok-1"},
		{"missing header", &stubAuthenticator{claims: userClaims}, false, "", "/me", fiber.StatusUnauthorized, ""},
		{"basic scheme", &stubAuthenticator{claims: userClaims}, false, "Basic abc", "/me", fiber.StatusUnauthorized, ""},
		{"query ignored when not allowed", &stubAuthenticator{claims: userClaims}, false, "", "/me?token=tok-2", fiber.StatusUnauthorized, ""},
		{"query allowed", &stubAuthenticator{claims: userClaims}, true, "", "/me?token=tok-2", fiber.StatusOK, "tok-2"},
		{"rejected token", &stubAuthenticator{err: auth.ErrInvalidToken}, false, "Bearer bad", "/me", fiber.StatusUnauthorized, "bad"},
		{"store failure", &stubAuthenticator{err: errors.New("redis down")}, false, "Bearer tok", "/me", fiber.StatusInternalServerError, "tok"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := newApp(tt.authn, tt.allowQuery)
			req := httptest.NewRequest("GET", tt.url, nil)
			if tt.header != "" {
				req.Header.Set(fiber.HeaderAuthorization, tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantToken, tt.authn.got)

			if tt.wantStatus == fiber.StatusOK {
				body, _ := io.ReadAll(resp.Body)
				assert.JSONEq(t, `{"tenant":"t-1","user":"u-1","claims":true}`, string(body))
			}
		})
	}
}

func TestGuards(t *testing.T) {
	withActor := func(a *tenant.Actor) fiber.Handler {
		return func(c *fiber.Ctx) error {
			if a != nil {
				ctx := tenant.WithActor(c.UserContext(), *a)
				if a.TenantID != "" {
					ctx = tenant.WithTenant(ctx, a.TenantID)
				}
				c.SetUserContext(ctx)
			}
			return c.Next()
		}
	}
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusNoContent) }

	user := &tenant.Actor{UserID: "u-1", TenantID: "t-1", Kind: tenant.KindUser, Permissions: []string{"wathq:query"}}
	orphan := &tenant.Actor{UserID: "u-2", Kind: tenant.KindUser}
	admin := &tenant.Actor{UserID: "m-1", Kind: tenant.KindManagement, SuperAdmin: true}
	operator := &tenant.Actor{UserID: "m-2", Kind: tenant.KindManagement}

	tests := []struct {
		name  string
		actor *tenant.Actor
		guard fiber.Handler
		want  int
	}{
		{"tenant user passes tenant guard", user, RequireTenantUser(), fiber.StatusNoContent},
		{"user without tenant is rejected", orphan, RequireTenantUser(), fiber.StatusForbidden},
		{"management rejected by tenant guard", admin, RequireTenantUser(), fiber.StatusForbidden},
		{"anonymous rejected by tenant guard", nil, RequireTenantUser(), fiber.StatusForbidden},
		{"management guard", admin, RequireManagement(), fiber.StatusNoContent},
		{"tenant user rejected by management guard", user, RequireManagement(), fiber.StatusForbidden},
		{"permission held", user, RequirePermission("wathq:query"), fiber.StatusNoContent},
		{"permission missing", user, RequirePermission("wathq:query", "users:manage"), fiber.StatusForbidden},
		{"super admin holds every permission", admin, RequirePermission("users:manage"), fiber.StatusNoContent},
		{"management operator without permission", operator, RequirePermission("users:manage"), fiber.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app := fiber.New()
			app.Get("/x", withActor(tt.actor), tt.guard, ok)
			resp, err := app.Test(httptest.NewRequest("GET", "/x", nil))
			require.NoError(t, err)
			assert.Equal(t, tt.want, resp.StatusCode)
		})
	}
}

func TestLoginRateLimit(t *testing.T) {
	app := fiber.New()
	app.Post("/login", LoginRateLimit(2, time.Minute), func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	})

	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
		require.NoError(t, err)
		assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	}
	resp, err := app.Test(httptest.NewRequest("POST", "/login", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusTooManyRequests, resp.StatusCode)
}
