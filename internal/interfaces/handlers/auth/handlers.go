package auth

import (
	"context"
	"errors"

	authsvc "sfms-backend/internal/auth"
	"sfms-backend/internal/application/checkins"
	"sfms-backend/internal/middleware"
	"sfms-backend/internal/pkg/response"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

// Handlers holds dependencies for session endpoints.
type Handlers struct {
	Rdb      *redis.Client
	Guard    *checkins.Guard
	StaffKey string
}

// Start POST /api/v1/session: take the principal hand-off, rotate the session id and reset the pool lock.
func (h *Handlers) Start(c *fiber.Ctx) error {
	var req authsvc.StartInput
	if len(c.Body()) > 0 {
		if err := c.BodyParser(&req); err != nil {
			return response.BadRequest(c, "Invalid request body")
		}
	}
	principal, err := authsvc.ResolveStart(req, h.StaffKey)
	if err != nil {
		switch {
		case errors.Is(err, authsvc.ErrInvalidRole):
			return response.BadRequest(c, err.Error())
		case errors.Is(err, authsvc.ErrStaffKeyRequired):
			return response.Forbidden(c, err.Error(), nil)
		default:
			return response.FromError(c, err)
		}
	}

	ctx := context.Background()
	h.untrack(ctx, c)
	if prev := middleware.GetSessionID(c); prev != "" {
		if err := h.Guard.Reset(ctx, prev); err != nil {
			return response.FromError(c, err)
		}
	}

	sessionID := middleware.RegenerateSessionID(c)
	middleware.SetSessionPrincipal(c, middleware.SessionPrincipal{
		UserID: principal.UserID,
		Role:   principal.Role,
	})
	if err := h.Guard.Reset(ctx, sessionID); err != nil {
		return response.FromError(c, err)
	}
	if principal.UserID != "" {
		if err := h.Rdb.SAdd(ctx, middleware.UserSessionsPrefix+principal.UserID, sessionID).Err(); err != nil {
			log.Warn().Err(err).Str("user_id", principal.UserID).Msg("session: track user session failed")
		}
	}
	return response.Success(c, "Session started", fiber.Map{"user": principal}, nil)
}

// Me GET /api/v1/session: return the current principal.
func (h *Handlers) Me(c *fiber.Ctx) error {
	principal, err := authsvc.VerifyPrincipal(middleware.GetUser(c))
	if err != nil {
		return response.Unauthorized(c, err.Error())
	}
	return response.Success(c, "Authenticated", fiber.Map{"user": principal}, nil)
}

// End DELETE /api/v1/session: drop the principal, lock bit and session data.
// With ?all=true every session the principal started is destroyed.
func (h *Handlers) End(c *fiber.Ctx) error {
	ctx := context.Background()
	if c.QueryBool("all") {
		n, err := middleware.DestroyUserSessions(ctx, h.Rdb, middleware.GetUserID(c))
		if err != nil {
			return response.FromError(c, err)
		}
		log.Info().Str("user_id", middleware.GetUserID(c)).Int("sessions", n).Msg("session: ended all sessions")
	} else {
		h.untrack(ctx, c)
	}
	if sid := middleware.GetSessionID(c); sid != "" {
		if err := h.Guard.Reset(ctx, sid); err != nil {
			log.Warn().Err(err).Msg("session: reset pool lock on end failed")
		}
	}
	middleware.DestroySession(c)
	return response.Success(c, "Session ended", nil, nil)
}

func (h *Handlers) untrack(ctx context.Context, c *fiber.Ctx) {
	userID := middleware.GetUserID(c)
	sid := middleware.GetSessionID(c)
	if userID == "" || sid == "" {
		return
	}
	_ = h.Rdb.SRem(ctx, middleware.UserSessionsPrefix+userID, sid).Err()
}
