package checkins

import (
	"context"
	"fmt"
	"time"

	"sfms-backend/internal/clock"
	"sfms-backend/internal/domain"

	"gorm.io/gorm"
)

// Ledger appends and queries facility check events.
type Ledger struct {
	DB       *gorm.DB
	Location *time.Location
}

func (l *Ledger) Record(ctx context.Context, userID *string, facility domain.Facility, action domain.CheckAction, ts time.Time) (*domain.CheckinEvent, error) {
	evt := domain.CheckinEvent{
		UserID:     userID,
		Facility:   facility,
		Action:     action,
		OccurredAt: ts.UTC(),
	}
	evt.DeriveSessionDate(l.Location)
	if err := l.DB.WithContext(ctx).Create(&evt).Error; err != nil {
		return nil, fmt.Errorf("insert checkin event: %w", err)
	}
	return &evt, nil
}

// Query returns events whose local session date is in [from, to], oldest first.
// An empty facility matches all facilities.
func (l *Ledger) Query(ctx context.Context, from, to time.Time, facility domain.Facility) ([]domain.CheckinEvent, error) {
	q := l.DB.WithContext(ctx).
		Where("session_date >= ? AND session_date <= ?", clock.LocalDate(from, l.Location), clock.LocalDate(to, l.Location))
	if facility != "" {
		q = q.Where("facility = ?", facility)
	}
	var events []domain.CheckinEvent
	if err := q.Order("occurred_at ASC").Order("id ASC").Find(&events).Error; err != nil {
		return nil, err
	}
	return events, nil
}

// FacilityCount is the number of check-ins per facility.
type FacilityCount struct {
	Facility domain.Facility `json:"facility"`
	Count    int64           `json:"count"`
}

// CountByFacility counts "in" events per facility over [from, to], every
// facility present even when zero.
func (l *Ledger) CountByFacility(ctx context.Context, from, to time.Time) ([]FacilityCount, error) {
	var rows []FacilityCount
	err := l.DB.WithContext(ctx).Model(&domain.CheckinEvent{}).
		Select("facility, COUNT(*) AS count").
		Where("session_date >= ? AND session_date <= ?", clock.LocalDate(from, l.Location), clock.LocalDate(to, l.Location)).
		Where("action = ?", domain.CheckIn).
		Group("facility").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	byFacility := make(map[domain.Facility]int64, len(rows))
	for _, r := range rows {
		byFacility[r.Facility] = r.Count
	}
	out := make([]FacilityCount, 0, len(domain.Facilities))
	for _, f := range domain.Facilities {
		out = append(out, FacilityCount{Facility: f, Count: byFacility[f]})
	}
	return out, nil
}

// Presence is a user whose latest event today at a facility is a check-in.
type Presence struct {
	UserID    string          `json:"user_id"`
	Facility  domain.Facility `json:"facility"`
	CheckedIn time.Time       `json:"checked_in_at"`
}

// CurrentPresence lists who is still checked in on the local date of day.
// Anonymous events are ignored.
func (l *Ledger) CurrentPresence(ctx context.Context, day time.Time, facility domain.Facility) ([]Presence, error) {
	events, err := l.Query(ctx, day, day, facility)
	if err != nil {
		return nil, err
	}
	type key struct {
		user     string
		facility domain.Facility
	}
	latest := make(map[key]domain.CheckinEvent)
	var order []key
	for _, e := range events {
		if e.UserID == nil {
			continue
		}
		k := key{user: *e.UserID, facility: e.Facility}
		if _, seen := latest[k]; !seen {
			order = append(order, k)
		}
		latest[k] = e
	}
	out := make([]Presence, 0, len(order))
	for _, k := range order {
		e := latest[k]
		if e.Action != domain.CheckIn {
			continue
		}
		out = append(out, Presence{UserID: k.user, Facility: k.facility, CheckedIn: e.OccurredAt})
	}
	return out, nil
}
