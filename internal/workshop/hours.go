package workshop

import (
	"fmt"
	"time"
)

// TimeOfDay is a wall-clock time expressed as minutes since midnight.
type TimeOfDay int

// ParseTimeOfDay parses an "HH:MM" value such as "09:00".
func ParseTimeOfDay(value string) (TimeOfDay, error) {
	parsed, err := time.Parse("15:04", value)
	if err != nil {
		return 0, fmt.Errorf("workshop: invalid time of day %q: %w", value, err)
	}
	return TimeOfDay(parsed.Hour()*60 + parsed.Minute()), nil
}

// String renders the time of day back into "HH:MM" form.
func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", int(t)/60, int(t)%60)
}

// instant anchors the time of day on the calendar day of the reference
// instant, in the reference's location.
func (t TimeOfDay) instant(reference time.Time) time.Time {
	year, month, day := reference.Date()
	return time.Date(year, month, day, int(t)/60, int(t)%60, 0, 0, reference.Location())
}

// BusinessHours captures the shop's daily opening and closing times.
type BusinessHours struct {
	Opening TimeOfDay
	Closing TimeOfDay
}

// NewBusinessHours validates that the opening time precedes the closing time.
func NewBusinessHours(opening, closing TimeOfDay) (BusinessHours, error) {
	if opening >= closing {
		return BusinessHours{}, fmt.Errorf("workshop: opening time %s must be before closing time %s", opening, closing)
	}
	return BusinessHours{Opening: opening, Closing: closing}, nil
}

// IsSchedulable reports whether the interval can be booked under the shop's
// business hours. The interval must be well formed (start before end), stay
// within a single calendar day, and keep both endpoints inside
// [opening, closing]. Both bounds are inclusive: a booking may start exactly
// at opening and end exactly at closing. Endpoints are compared at full clock
// precision, so an interval running even a second past closing is rejected.
func (h BusinessHours) IsSchedulable(start, end time.Time) bool {
	if !start.Before(end) {
		return false
	}
	if !sameCalendarDay(start, end) {
		return false
	}

	opening := h.Opening.instant(start)
	closing := h.Closing.instant(start)
	if start.Before(opening) || start.After(closing) {
		return false
	}
	if end.Before(opening) || end.After(closing) {
		return false
	}
	return true
}

func sameCalendarDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
