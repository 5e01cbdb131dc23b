package clock

import (
	"time"
	_ "time/tzdata"
)

// DateLayout is the calendar-date format used for session dates and report ranges.
const DateLayout = "2006-01-02"

// Clock allows injecting time in services.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

// NewSystem returns a clock backed by time.Now. Instants are UTC; callers
// convert to the configured zone when they need a local calendar date.
func NewSystem() Clock {
	return systemClock{}
}

func (systemClock) Now() time.Time {
	return time.Now().UTC()
}

type fixedClock struct {
	now time.Time
}

// NewFixed returns a clock that always returns the same instant (useful for tests).
func NewFixed(t time.Time) Clock {
	return fixedClock{now: t.UTC()}
}

func (f fixedClock) Now() time.Time {
	return f.now
}

// LocalDate formats the calendar date of t in loc.
func LocalDate(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}

// StartOfDay returns the UTC instant of midnight in loc for d's calendar
// date, with d's date read in d's own location.
func StartOfDay(d time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, day := d.Date()
	return time.Date(y, m, day, 0, 0, 0, 0, loc).UTC()
}

// Today returns the current calendar day in loc, at midnight local time.
func Today(c Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := c.Now().In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

// ParseDate parses a YYYY-MM-DD string as midnight in loc.
func ParseDate(s string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	return time.ParseInLocation(DateLayout, s, loc)
}

// ParseDateOr is ParseDate that falls back to def on empty or malformed input.
func ParseDateOr(s string, loc *time.Location, def time.Time) time.Time {
	if s == "" {
		return def
	}
	t, err := ParseDate(s, loc)
	if err != nil {
		return def
	}
	return t
}
