package middleware

import (
	"log/slog"
	"strconv"
	"strings"

	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/observability"
	"github.com/ahmetcoskunkizilkaya/bairro-backend/internal/throttle"
	"github.com/gofiber/fiber/v2"
)

// Throttle caps anonymous submissions per fingerprint, falling back to the
// client IP when no fingerprint header is sent.
func Throttle(limiter *throttle.Limiter, scope string, metrics observability.MetricsRegistry) fiber.Handler {
	return func(c *fiber.Ctx) error {
		key := strings.TrimSpace(c.Get("X-Fingerprint"))
		if key == "" {
			key = "ip:" + c.IP()
		}

		ok, err := limiter.Allow(c.UserContext(), key)
		if err != nil {
			slog.Warn("throttle unavailable, allowing request", "component", "throttle", "scope", scope, "error", err)
		}
		if !ok {
			metrics.IncrementThrottleHits(scope)
			return c.Status(fiber.StatusTooManyRequests).JSON(dto.ErrorResponse{
				Error: true, Message: "Too many submissions, try again later",
			})
		}
		if err == nil && limiter != nil {
			if left, rerr := limiter.Remaining(c.UserContext(), key); rerr == nil {
				c.Set("X-RateLimit-Remaining", strconv.FormatInt(left, 10))
			}
		}
		return c.Next()
	}
}
