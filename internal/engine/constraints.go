package engine

import (
	"time"
)

// Constraints restrict which days may be picked. Every field is optional:
// a zero date, a zero span or a nil predicate leaves that axis unconstrained.
// Contradictory values (MinDate after MaxDate) simply make every day unselectable.
type Constraints struct {
	MinDate      CalendarDate              // earliest selectable day, inclusive
	MaxDate      CalendarDate              // latest selectable day, inclusive
	MaxSpan      time.Duration             // largest distance between the two endpoints
	IsDayEnabled func(d CalendarDate) bool // caller veto for individual days
}

// Selectable reports whether d may be picked. anchor is the endpoint already
// chosen when d would complete a range; pass the zero date when d would start one.
// Click validation and cell rendering must both go through this method.
func (c Constraints) Selectable(d CalendarDate, anchor CalendarDate) bool {
	if !c.MinDate.IsZero() && d.Before(c.MinDate) {
		return false
	}
	if !c.MaxDate.IsZero() && d.After(c.MaxDate) {
		return false
	}
	if c.MaxSpan > 0 && !anchor.IsZero() && c.exceedsSpan(d, anchor) {
		return false
	}
	if c.IsDayEnabled != nil && !c.IsDayEnabled(d) {
		return false
	}
	return true
}

func (c Constraints) exceedsSpan(d, anchor CalendarDate) bool {
	days := anchor.DaysUntil(d)
	if days < 0 {
		days = -days
	}
	return daysToDuration(days) > c.MaxSpan
}

// Empty reports whether no axis is constrained.
func (c Constraints) Empty() bool {
	return c.MinDate.IsZero() && c.MaxDate.IsZero() && c.MaxSpan <= 0 && c.IsDayEnabled == nil
}

// MaxSpanDays converts a whole number of days into a MaxSpan value.
// Zero or negative values mean unlimited.
func MaxSpanDays(days int) time.Duration {
	if days <= 0 {
		return 0
	}
	return daysToDuration(days)
}
