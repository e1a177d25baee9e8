package engine

import (
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/tartampluch/go-rangepicker/internal/config"
)

// CalendarDate is a calendar day without any time-of-day component.
// The zero value means "unset".
type CalendarDate struct {
	Year  int
	Month time.Month
	Day   int
}

// NewCalendarDate returns the normalized calendar date for the given parts.
// Out-of-range values are folded the same way time.Date does (Jan 32 is Feb 1),
// so two dates naming the same day always compare equal.
func NewCalendarDate(year int, month time.Month, day int) CalendarDate {
	return DateOf(time.Date(year, month, day, 0, 0, 0, 0, time.UTC))
}

// DateOf returns the calendar day of t in t's own location.
func DateOf(t time.Time) CalendarDate {
	y, m, d := t.Date()
	return CalendarDate{Year: y, Month: m, Day: d}
}

// ParseCalendarDate parses a "2006-01-02" day.
func ParseCalendarDate(value string) (CalendarDate, error) {
	t, err := time.Parse(config.DateFormatISO, strings.TrimSpace(value))
	if err != nil {
		return CalendarDate{}, fmt.Errorf("%s: %w", config.ErrDateParse, err)
	}
	return DateOf(t), nil
}

// IsZero reports whether the date is unset.
func (d CalendarDate) IsZero() bool {
	return d == CalendarDate{}
}

// StartOfDay returns the first instant of the day in loc.
func (d CalendarDate) StartOfDay(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, loc)
}

// EndOfDay returns the last representable instant of the day in loc.
func (d CalendarDate) EndOfDay(loc *time.Location) time.Time {
	return d.AddDays(1).StartOfDay(loc).Add(-time.Nanosecond)
}

// Compare returns -1, 0 or +1 depending on whether d is before, equal to or after o.
// Values built as struct literals are folded first, so {2024, February, 30}
// equals March 1st.
func (d CalendarDate) Compare(o CalendarDate) int {
	return cmpInt(d.dayNumber(), o.dayNumber())
}

// dayNumber counts days since 1970-01-01. UTC midnights are whole multiples of
// a day in Unix seconds, so the division is exact.
func (d CalendarDate) dayNumber() int64 {
	return d.StartOfDay(time.UTC).Unix() / config.SecondsPerDay
}

func cmpInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

// Before reports whether d is an earlier day than o.
func (d CalendarDate) Before(o CalendarDate) bool { return d.Compare(o) < 0 }

// After reports whether d is a later day than o.
func (d CalendarDate) After(o CalendarDate) bool { return d.Compare(o) > 0 }

// Equal reports whether d and o name the same day.
func (d CalendarDate) Equal(o CalendarDate) bool { return d.Compare(o) == 0 }

// AddDays returns the date n days later (earlier when n is negative).
func (d CalendarDate) AddDays(n int) CalendarDate {
	return NewCalendarDate(d.Year, d.Month, d.Day+n)
}

// AddMonths moves by whole months, clamping the day to the target month length
// so Jan 31 + 1 month is the last day of February.
func (d CalendarDate) AddMonths(n int) CalendarDate {
	first := NewCalendarDate(d.Year, d.Month+time.Month(n), 1)
	return NewCalendarDate(first.Year, first.Month, min(d.Day, daysInMonth(first.Year, first.Month)))
}

// DaysUntil returns the signed number of calendar days from d to o.
func (d CalendarDate) DaysUntil(o CalendarDate) int {
	return int(o.dayNumber() - d.dayNumber())
}

// daysToDuration converts whole days to a Duration, saturating instead of
// overflowing past roughly 292 years.
func daysToDuration(days int) time.Duration {
	const perDay = config.HoursPerDay * time.Hour
	switch {
	case days > int(math.MaxInt64/int64(perDay)):
		return math.MaxInt64
	case days < int(math.MinInt64/int64(perDay)):
		return math.MinInt64
	}
	return time.Duration(days) * perDay
}

func (d CalendarDate) String() string {
	if d.IsZero() {
		return ""
	}
	return d.StartOfDay(time.UTC).Format(config.DateFormatISO)
}

func daysInMonth(year int, month time.Month) int {
	// Day 0 of next month is the last day of this month.
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// DateRange is an inclusive range of calendar days with Start <= End.
type DateRange struct {
	Start CalendarDate
	End   CalendarDate
}

// NewDateRange returns a range over the two days, swapping them if needed.
func NewDateRange(a, b CalendarDate) DateRange {
	if b.Before(a) {
		a, b = b, a
	}
	return DateRange{Start: a, End: b}
}

// SingleDay returns the one-day range [d, d].
func SingleDay(d CalendarDate) DateRange {
	return DateRange{Start: d, End: d}
}

// Equal compares at calendar-day granularity.
func (r DateRange) Equal(o DateRange) bool {
	return r.Start.Equal(o.Start) && r.End.Equal(o.End)
}

// Contains reports whether d falls inside the range, bounds included.
func (r DateRange) Contains(d CalendarDate) bool {
	return !d.Before(r.Start) && !d.After(r.End)
}

// Bounds returns the instants covered by the range: the start of the first day
// and the last instant of the final day.
func (r DateRange) Bounds(loc *time.Location) (time.Time, time.Time) {
	return r.Start.StartOfDay(loc), r.End.EndOfDay(loc)
}

// Span is the whole-day distance between the two endpoints. It saturates at
// the largest Duration for ranges longer than about 292 years.
func (r DateRange) Span() time.Duration {
	return daysToDuration(r.Start.DaysUntil(r.End))
}

// Days returns the inclusive number of days in the range.
func (r DateRange) Days() int {
	return r.Start.DaysUntil(r.End) + 1
}

// Validate reports an error for a range without a start date.
func (r DateRange) Validate() error {
	if r.Start.IsZero() {
		return errors.New(config.ErrRangeIncomplete)
	}
	return nil
}

func (r DateRange) String() string {
	return r.Start.String() + config.RangeSeparator + r.End.String()
}
