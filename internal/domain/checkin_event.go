package domain

import (
	"time"

	"sfms-backend/internal/clock"
)

// Facility is one of the bookable recreation areas.
type Facility string

const (
	FacilityOutdoor   Facility = "outdoor"
	FacilityBadminton Facility = "badminton"
	FacilityPool      Facility = "pool"
	FacilityTrack     Facility = "track"
)

// Facilities lists every valid facility in display order.
var Facilities = []Facility{FacilityOutdoor, FacilityBadminton, FacilityPool, FacilityTrack}

func ParseFacility(s string) (Facility, error) {
	for _, f := range Facilities {
		if string(f) == s {
			return f, nil
		}
	}
	return "", ErrInvalidFacility
}

// CheckAction is the direction of a facility check event.
type CheckAction string

const (
	CheckIn  CheckAction = "in"
	CheckOut CheckAction = "out"
)

func ParseCheckAction(s string) (CheckAction, error) {
	switch CheckAction(s) {
	case CheckIn, CheckOut:
		return CheckAction(s), nil
	}
	return "", ErrInvalidAction
}

// CheckinEvent is an immutable facility check-in/check-out row.
// SessionDate is always derived from OccurredAt, see DeriveSessionDate.
type CheckinEvent struct {
	ID          uint        `gorm:"column:id;primaryKey" json:"id"`
	UserID      *string     `gorm:"column:user_id;size:64;index" json:"user_id"`
	Facility    Facility    `gorm:"column:facility;size:20;not null;index" json:"facility"`
	Action      CheckAction `gorm:"column:action;size:5;not null" json:"action"`
	OccurredAt  time.Time   `gorm:"column:occurred_at;not null;index" json:"ts"`
	SessionDate string      `gorm:"column:session_date;size:10;not null;index" json:"session_date"`
	CreatedAt   time.Time   `gorm:"column:created_at" json:"-"`
}

func (CheckinEvent) TableName() string {
	return "checkin_events"
}

// DeriveSessionDate sets SessionDate to the calendar date of OccurredAt in loc.
func (e *CheckinEvent) DeriveSessionDate(loc *time.Location) {
	e.SessionDate = clock.LocalDate(e.OccurredAt, loc)
}
