package middleware

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// LoginRateLimit caps login attempts per client IP. The counters live in
// process memory, so the limit applies per API replica.
func LoginRateLimit(attempts int, window time.Duration) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        attempts,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "login:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return fiber.NewError(fiber.StatusTooManyRequests, "too many login attempts")
		},
	})
}
