package middleware

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/rs/zerolog/log"
)

// Recovery turns handler panics into a 500 through ErrorHandler and logs them.
func Recovery() fiber.Handler {
	return recover.New(recover.Config{
		EnableStackTrace: true,
		StackTraceHandler: func(c *fiber.Ctx, e interface{}) {
			log.Error().Interface("panic", e).Str("trace_id", GetTraceID(c)).Str("path", c.Path()).Msg("recovered from panic")
		},
	})
}
