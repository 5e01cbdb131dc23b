package response

import (
	"errors"

	"sfms-backend/internal/domain"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

var badRequestErrs = []error{
	domain.ErrInvalidQuantity,
	domain.ErrInvalidAction,
	domain.ErrInvalidFacility,
	domain.ErrEquipmentNameRequired,
}

const stockRefusedLocal = "stock_refused"

// StockRefused reports whether FromError answered this request with an
// insufficient stock refusal.
func StockRefused(c *fiber.Ctx) bool {
	v, _ := c.Locals(stockRefusedLocal).(bool)
	return v
}

// FromError maps service errors to the standard error envelope. Unknown
// errors are logged and reported as 500.
func FromError(c *fiber.Ctx, err error) error {
	var ise *domain.InsufficientStockError
	switch {
	case errors.As(err, &ise):
		c.Locals(stockRefusedLocal, true)
		return Error(c, "Insufficient stock", fiber.StatusConflict, map[string]interface{}{
			"equipment": ise.Equipment,
			"available": ise.Available,
			"requested": ise.Requested,
		})
	case errors.Is(err, domain.ErrNotFound), errors.Is(err, domain.ErrRecordNotFound):
		return NotFound(c, err.Error())
	case errors.Is(err, domain.ErrDuplicateEquipment):
		return Error(c, err.Error(), fiber.StatusConflict, nil)
	case errors.Is(err, domain.ErrPoolLocked):
		return Forbidden(c, "pool_locked", map[string]interface{}{
			"reason": "กรุณาเช็คเอาท์สระว่ายน้ำก่อน",
		})
	case errors.Is(err, domain.ErrInvalidScanCode):
		return Unauthorized(c, err.Error())
	}
	for _, target := range badRequestErrs {
		if errors.Is(err, target) {
			return BadRequest(c, err.Error())
		}
	}

	log.Error().Err(err).Str("method", c.Method()).Str("path", c.Path()).Msg("request failed")
	return Error(c, "Internal Server Error", fiber.StatusInternalServerError, nil)
}
