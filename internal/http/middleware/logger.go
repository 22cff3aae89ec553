package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/atqan-dev/atqan-wathq-services-sub001/internal/tenant"
)

// Logger writes one access log line per request and attaches a request
// scoped logger to the user context, so services can use zerolog.Ctx.
//
// Errors returned by the chain are passed to the app's error handler here,
// so the logged status is the one the client receives.
func Logger(log zerolog.Logger) fiber.Handler {
	return func(c *fiber.Ctx) error {
		start := time.Now()
		rid := RequestIDFromCtx(c)

		l := log.With().Str("request_id", rid).Logger()
		c.SetUserContext(l.WithContext(c.UserContext()))

		chainErr := c.Next()
		if chainErr != nil {
			if err := c.App().ErrorHandler(c, chainErr); err != nil {
				_ = c.SendStatus(fiber.StatusInternalServerError)
			}
		}

		status := c.Response().StatusCode()
		var ev *zerolog.Event
		switch {
		case status >= fiber.StatusInternalServerError:
			ev = l.Error().Err(chainErr)
		case status >= fiber.StatusBadRequest:
			ev = l.Warn()
		default:
			ev = l.Info()
		}

		if actor, ok := tenant.ActorFromContext(c.UserContext()); ok {
			ev = ev.Str("user_id", actor.UserID).Str("actor_kind", string(actor.Kind))
		}
		if tid, ok := tenant.FromContext(c.UserContext()); ok {
			ev = ev.Str("tenant_id", tid)
		}

		ev.Str("method", c.Method()).
			Str("path", c.Path()).
			Int("status", status).
			Float64("latency_ms", float64(time.Since(start).Microseconds())/1000).
			Str("ip", c.IP()).
			Msg("request")

		return nil
	}
}
