package engine

import "time"

// Clock abstracts time.Now() to allow deterministic testing.
// The Picker uses it to resolve "today" for default selections, default
// calendar positions and the Today marker on calendar cells.
type Clock interface {
	Now() time.Time
}

// RealClock implements Clock using the standard time package.
type RealClock struct{}

// Now returns the current local time.
func (RealClock) Now() time.Time {
	return time.Now()
}

// Today returns the calendar day of c.Now().
func Today(c Clock) CalendarDate {
	if c == nil {
		c = RealClock{}
	}
	return DateOf(c.Now())
}
