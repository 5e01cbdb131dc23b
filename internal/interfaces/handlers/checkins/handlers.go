package checkins

import (
	"errors"
	"time"

	"sfms-backend/internal/application/checkins"
	"sfms-backend/internal/clock"
	"sfms-backend/internal/domain"
	"sfms-backend/internal/middleware"
	"sfms-backend/internal/pkg/response"
	"sfms-backend/internal/pkg/validation"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
)

const lastPoolCheckoutKey = "pool_last_checkout_at"

type Handlers struct {
	Guard    *checkins.Guard
	Ledger   *checkins.Ledger
	Clock    clock.Clock
	Location *time.Location
}

// CheckEventRequest is the body of POST /check-event.
type CheckEventRequest struct {
	Facility string `json:"facility" validate:"required"`
	Action   string `json:"action" validate:"required,oneof=in out"`
}

func (h *Handlers) clk() clock.Clock {
	if h.Clock == nil {
		return clock.NewSystem()
	}
	return h.Clock
}

// CheckEvent POST /api/v1/check-event: record a check-in or check-out for the session.
func (h *Handlers) CheckEvent(c *fiber.Ctx) error {
	var req CheckEventRequest
	if err := c.BodyParser(&req); err != nil {
		return response.BadRequest(c, "Invalid request body")
	}
	if err := validation.Struct(req); err != nil {
		return response.BadRequest(c, err.Error())
	}
	facility, err := domain.ParseFacility(req.Facility)
	if err != nil {
		return response.FromError(c, err)
	}
	action, err := domain.ParseCheckAction(req.Action)
	if err != nil {
		return response.FromError(c, err)
	}
	return h.Record(c, middleware.GetSessionID(c), principalID(c), facility, action)
}

// Record applies the pool gate for sessionID and records one event.
func (h *Handlers) Record(c *fiber.Ctx, sessionID string, userID *string, facility domain.Facility, action domain.CheckAction) error {
	ctx := c.Context()
	locked, err := h.Guard.IsLocked(ctx, sessionID)
	if err != nil {
		return response.FromError(c, err)
	}
	if locked && facility != domain.FacilityPool {
		return response.FromError(c, domain.ErrPoolLocked)
	}

	var evt *domain.CheckinEvent
	if action == domain.CheckIn {
		if locked && facility == domain.FacilityPool {
			log.Warn().Str("session_id", sessionID).Msg("pool check-in while already checked in")
		}
		evt, err = h.Guard.CheckIn(ctx, sessionID, userID, facility)
	} else {
		evt, err = h.Guard.CheckOut(ctx, sessionID, userID, facility)
	}
	if errors.Is(err, domain.ErrNotCheckedIn) {
		return response.Success(c, "Not checked in", fiber.Map{
			"ok":          false,
			"error":       "not_checked_in",
			"pool_locked": false,
		}, nil)
	}
	if err != nil {
		return response.FromError(c, err)
	}

	nowLocked, err := h.Guard.IsLocked(ctx, sessionID)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Event recorded", fiber.Map{
		"ok":          true,
		"event":       evt,
		"pool_locked": nowLocked,
	}, nil)
}

// PoolCheckout POST /api/v1/pool/checkout: "noop" when no pool check-in is open.
func (h *Handlers) PoolCheckout(c *fiber.Ctx) error {
	sid := middleware.GetSessionID(c)
	_, err := h.Guard.CheckOut(c.Context(), sid, principalID(c), domain.FacilityPool)
	if errors.Is(err, domain.ErrNotCheckedIn) {
		return response.Success(c, "No open pool check-in", fiber.Map{"status": "noop"}, nil)
	}
	if err != nil {
		return response.FromError(c, err)
	}
	now := h.clk().Now().UTC()
	middleware.SetSessionValue(c, lastPoolCheckoutKey, now.Format(time.RFC3339))
	return response.Success(c, "Checked out of pool", fiber.Map{"status": "ok", "checked_out_at": now}, nil)
}

// PoolLock GET /api/v1/session/pool-lock
func (h *Handlers) PoolLock(c *fiber.Ctx) error {
	locked, err := h.Guard.IsLocked(c.Context(), middleware.GetSessionID(c))
	if err != nil {
		return response.FromError(c, err)
	}
	data := fiber.Map{"pool_locked": locked}
	if last, ok := middleware.GetSessionValue(c, lastPoolCheckoutKey).(string); ok {
		data["last_checkout_at"] = last
	}
	return response.Success(c, "Pool lock status", data, nil)
}

// List GET /api/v1/checkins?from=&to=&facility=
func (h *Handlers) List(c *fiber.Ctx) error {
	from, to := h.dateRange(c)
	facility, err := optionalFacility(c.Query("facility"))
	if err != nil {
		return response.FromError(c, err)
	}
	events, err := h.Ledger.Query(c.Context(), from, to, facility)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Check-ins fetched", events, h.rangeMeta(from, to, len(events)))
}

// Summary GET /api/v1/checkins/summary?from=&to=
func (h *Handlers) Summary(c *fiber.Ctx) error {
	from, to := h.dateRange(c)
	counts, err := h.Ledger.CountByFacility(c.Context(), from, to)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Check-in summary", counts, h.rangeMeta(from, to, len(counts)))
}

// Presence GET /api/v1/presence?date=&facility=
func (h *Handlers) Presence(c *fiber.Ctx) error {
	day := clock.ParseDateOr(c.Query("date"), h.Location, clock.Today(h.clk(), h.Location))
	facility, err := optionalFacility(c.Query("facility"))
	if err != nil {
		return response.FromError(c, err)
	}
	rows, err := h.Ledger.CurrentPresence(c.Context(), day, facility)
	if err != nil {
		return response.FromError(c, err)
	}
	return response.Success(c, "Current presence", rows, fiber.Map{
		"date":  clock.LocalDate(day, h.Location),
		"count": len(rows),
	})
}

func (h *Handlers) dateRange(c *fiber.Ctx) (time.Time, time.Time) {
	today := clock.Today(h.clk(), h.Location)
	return clock.ParseDateOr(c.Query("from"), h.Location, today),
		clock.ParseDateOr(c.Query("to"), h.Location, today)
}

func (h *Handlers) rangeMeta(from, to time.Time, count int) fiber.Map {
	return fiber.Map{
		"from":  clock.LocalDate(from, h.Location),
		"to":    clock.LocalDate(to, h.Location),
		"count": count,
	}
}

func optionalFacility(s string) (domain.Facility, error) {
	if s == "" {
		return "", nil
	}
	return domain.ParseFacility(s)
}

func principalID(c *fiber.Ctx) *string {
	if uid := middleware.GetUserID(c); uid != "" {
		return &uid
	}
	return nil
}
