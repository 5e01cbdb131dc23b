package checkins

import (
	"context"
	"fmt"

	"sfms-backend/internal/clock"
	"sfms-backend/internal/domain"

	"github.com/rs/zerolog/log"
)

// Guard enforces pool exclusivity per session: after a pool check-in the
// session is locked until the matching pool checkout.
type Guard struct {
	Flags  FlagStore
	Ledger *Ledger
	Clock  clock.Clock
}

func (g *Guard) clk() clock.Clock {
	if g.Clock == nil {
		return clock.NewSystem()
	}
	return g.Clock
}

func (g *Guard) IsLocked(ctx context.Context, sessionID string) (bool, error) {
	locked, err := g.Flags.Get(ctx, sessionID, PoolLockKey)
	if err != nil {
		return false, fmt.Errorf("read pool lock: %w", err)
	}
	return locked, nil
}

// CheckIn always records the event. A pool check-in sets the lock before
// the row is written and rolls it back if the write fails. A repeated pool
// check-in while locked is still recorded.
func (g *Guard) CheckIn(ctx context.Context, sessionID string, userID *string, facility domain.Facility) (*domain.CheckinEvent, error) {
	if facility != domain.FacilityPool {
		return g.Ledger.Record(ctx, userID, facility, domain.CheckIn, g.clk().Now())
	}
	wasLocked, err := g.IsLocked(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := g.Flags.Set(ctx, sessionID, PoolLockKey, true); err != nil {
		return nil, fmt.Errorf("set pool lock: %w", err)
	}
	evt, err := g.Ledger.Record(ctx, userID, facility, domain.CheckIn, g.clk().Now())
	if err != nil {
		if !wasLocked {
			g.restore(ctx, sessionID, false)
		}
		return nil, err
	}
	return evt, nil
}

// CheckOut records a checkout. A pool checkout must win the lock clear
// first, so a pool checkout without an open pool check-in (or one that lost
// a double submit) returns ErrNotCheckedIn and records nothing.
func (g *Guard) CheckOut(ctx context.Context, sessionID string, userID *string, facility domain.Facility) (*domain.CheckinEvent, error) {
	if facility != domain.FacilityPool {
		return g.Ledger.Record(ctx, userID, facility, domain.CheckOut, g.clk().Now())
	}
	cleared, err := g.Flags.Clear(ctx, sessionID, PoolLockKey)
	if err != nil {
		return nil, fmt.Errorf("clear pool lock: %w", err)
	}
	if !cleared {
		return nil, domain.ErrNotCheckedIn
	}
	evt, err := g.Ledger.Record(ctx, userID, facility, domain.CheckOut, g.clk().Now())
	if err != nil {
		g.restore(ctx, sessionID, true)
		return nil, err
	}
	return evt, nil
}

// restore puts the lock back after a failed ledger write. The write error
// is what the caller sees, so a restore failure is only logged.
func (g *Guard) restore(ctx context.Context, sessionID string, locked bool) {
	if err := g.Flags.Set(ctx, sessionID, PoolLockKey, locked); err != nil {
		log.Error().Err(err).Str("session", sessionID).Bool("locked", locked).Msg("restore pool lock")
	}
}

// Reset clears the lock, used when a new session starts.
func (g *Guard) Reset(ctx context.Context, sessionID string) error {
	if err := g.Flags.Set(ctx, sessionID, PoolLockKey, false); err != nil {
		return fmt.Errorf("reset pool lock: %w", err)
	}
	return nil
}
