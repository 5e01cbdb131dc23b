package middleware

import (
	"context"
	"encoding/json"
	"strings"
	"time"

	"sfms-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// Redis keys for request counters, read back by the health handlers.
const (
	KeyReqTotal      = "health:sfms:req_total"
	KeyReqErrors     = "health:sfms:req_errors"
	KeyStockRefusals = "health:sfms:stock_refusals"
	KeyResTime       = "health:sfms:res_time_total"
	KeyResCount      = "health:sfms:res_count"
	KeyStartTime     = "health:sfms:start_time"
	KeyLastReq       = "health:sfms:last_request"
)

// HealthMarker records request stats in Redis (skip /, /health*, favicon).
// Insufficient stock refusals are counted separately.
func HealthMarker(rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		path := c.Path()
		if path == "/" || strings.HasPrefix(path, "/health") || strings.HasPrefix(path, "/favicon") {
			return c.Next()
		}

		start := time.Now()
		b, _ := json.Marshal(map[string]interface{}{
			"time":   start.UTC(),
			"ip":     c.IP(),
			"path":   c.OriginalURL(),
			"method": c.Method(),
		})
		ctx := context.Background()
		pipe := rdb.Pipeline()
		pipe.Set(ctx, KeyLastReq, b, 0)
		pipe.Incr(ctx, KeyReqTotal)
		_, _ = pipe.Exec(ctx)

		err := c.Next()

		pipe = rdb.Pipeline()
		pipe.Incr(ctx, KeyResCount)
		pipe.IncrByFloat(ctx, KeyResTime, float64(time.Since(start).Milliseconds()))
		if c.Response().StatusCode() >= fiber.StatusInternalServerError {
			pipe.Incr(ctx, KeyReqErrors)
		}
		if response.StockRefused(c) {
			pipe.Incr(ctx, KeyStockRefusals)
		}
		_, _ = pipe.Exec(ctx)
		return err
	}
}
