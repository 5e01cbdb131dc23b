package middleware

import (
	"strings"
	"time"

	"sfms-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"
)

// scanAttemptsPerMinute bounds PIN guessing on the scan endpoints.
const scanAttemptsPerMinute = 10

// RateLimit caps requests per client IP per minute. Health probes are exempt.
func RateLimit(max int) fiber.Handler {
	if max <= 0 {
		max = 100
	}
	return limiter.New(limiter.Config{
		Max:        max,
		Expiration: time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return strings.HasPrefix(c.Path(), "/health")
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, "Too many requests", fiber.StatusTooManyRequests, nil)
		},
	})
}

// ScanRateLimit is the stricter limit for email + PIN endpoints.
func ScanRateLimit() fiber.Handler {
	return limiter.New(limiter.Config{
		Max:        scanAttemptsPerMinute,
		Expiration: time.Minute,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "scan:" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return response.Error(c, "Too many scan attempts", fiber.StatusTooManyRequests, nil)
		},
	})
}
