package middleware

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/auth"
	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

// ClaimsLocalKey stores the parsed access token claims in locals.
const ClaimsLocalKey = "claims"

// Authenticator validates access tokens. service.AuthService satisfies it.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (*auth.Claims, error)
}

var (
	errMissingToken = fiber.NewError(fiber.StatusUnauthorized, "missing bearer token")
	errBadToken     = fiber.NewError(fiber.StatusUnauthorized, "invalid or expired token")
	errForbidden    = fiber.NewError(fiber.StatusForbidden, "forbidden")
)

// Auth requires a valid access token. The token is read from the
// Authorization header, or from the token query parameter when
// allowQuery is set (browsers cannot set headers on WebSocket upgrades).
// On success the actor and its tenant are stored in the user context.
func Auth(authn Authenticator, allowQuery bool) fiber.Handler {
	return func(c *fiber.Ctx) error {
		token := bearerToken(c.Get(fiber.HeaderAuthorization))
		if token == "" && allowQuery {
			token = c.Query("token")
		}
		if token == "" {
			return errMissingToken
		}

		claims, err := authn.Authenticate(c.UserContext(), token)
		if err != nil {
			if errors.Is(err, auth.ErrInvalidToken) {
				return errBadToken
			}
			return err
		}

		actor := claims.Actor()
		ctx := tenant.WithActor(c.UserContext(), actor)
		if actor.TenantID != "" {
			ctx = tenant.WithTenant(ctx, actor.TenantID)
		}
		zerolog.Ctx(ctx).UpdateContext(func(zc zerolog.Context) zerolog.Context {
			return zc.Str("user_id", actor.UserID)
		})
		c.SetUserContext(ctx)
		c.Locals(ClaimsLocalKey, claims)

		return c.Next()
	}
}

func bearerToken(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// ClaimsFromCtx returns the claims stored by Auth.
func ClaimsFromCtx(c *fiber.Ctx) *auth.Claims {
	claims, _ := c.Locals(ClaimsLocalKey).(*auth.Claims)
	return claims
}

// RequireTenantUser admits tenant users with a resolved tenant.
func RequireTenantUser() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := tenant.ActorFromContext(c.UserContext())
		if !ok || actor.Kind != tenant.KindUser {
			return errForbidden
		}
		if _, err := tenant.Require(c.UserContext()); err != nil {
			return errForbidden
		}
		return c.Next()
	}
}

// RequireManagement admits management users only.
func RequireManagement() fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := tenant.ActorFromContext(c.UserContext())
		if !ok || !actor.IsManagement() {
			return errForbidden
		}
		return c.Next()
	}
}

// RequirePermission admits actors holding every listed permission.
func RequirePermission(codes ...string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		actor, ok := tenant.ActorFromContext(c.UserContext())
		if !ok {
			return errForbidden
		}
		for _, code := range codes {
			if !actor.Can(code) {
				zerolog.Ctx(c.UserContext()).Warn().
					Str("permission", code).
					Str("path", c.Path()).
					Msg("permission denied")
				return errForbidden
			}
		}
		return c.Next()
	}
}
