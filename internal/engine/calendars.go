package engine

import (
	"time"

	"github.com/tartampluch/go-rangepicker/internal/config"
)

// Side identifies one of the two displayed calendars.
type Side int

const (
	SideLeft Side = iota
	SideRight
)

func (s Side) String() string {
	if s == SideRight {
		return "right"
	}
	return "left"
}

// AdjustCalendars positions the calendar pair on a selection. The left month
// shows start (today when unset), the right month shows end (a month after
// today when unset). The two months are never the same.
func AdjustCalendars(start, end, today CalendarDate, firstDayOfWeek time.Weekday) (CalendarMonth, CalendarMonth) {
	if start.IsZero() {
		start = today
	}
	if end.IsZero() {
		end = today.AddMonths(config.DefaultEndShift)
	}
	return separate(MonthOf(start, firstDayOfWeek), MonthOf(end, firstDayOfWeek))
}

// NavigateCalendars moves one calendar by delta months. Linked calendars move
// together; independent ones move alone. Either way the collision rule is
// applied afterwards.
func NavigateCalendars(left, right CalendarMonth, side Side, delta int, linked bool) (CalendarMonth, CalendarMonth) {
	switch {
	case linked:
		left, right = left.AddMonths(delta), right.AddMonths(delta)
	case side == SideRight:
		right = right.AddMonths(delta)
	default:
		left = left.AddMonths(delta)
	}
	return separate(left, right)
}

// separate pushes the right month forward when both show the same month.
func separate(left, right CalendarMonth) (CalendarMonth, CalendarMonth) {
	if left.SameMonth(right) {
		right = right.AddMonths(1)
	}
	return left, right
}
