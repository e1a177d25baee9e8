package engine

import (
	"fmt"
	"time"

	"github.com/tartampluch/go-rangepicker/internal/config"
)

// CalendarMonth is one displayed month grid. It carries no selection state;
// selection is rendered by asking the Picker about each cell.
type CalendarMonth struct {
	Year           int
	Month          time.Month
	FirstDayOfWeek time.Weekday
}

// MonthOf returns the month containing d.
func MonthOf(d CalendarDate, firstDayOfWeek time.Weekday) CalendarMonth {
	return CalendarMonth{Year: d.Year, Month: d.Month, FirstDayOfWeek: firstDayOfWeek}
}

// FirstDay returns the first day of the month.
func (m CalendarMonth) FirstDay() CalendarDate {
	return NewCalendarDate(m.Year, m.Month, 1)
}

// LastDay returns the last day of the month.
func (m CalendarMonth) LastDay() CalendarDate {
	return NewCalendarDate(m.Year, m.Month, daysInMonth(m.Year, m.Month))
}

// AddMonths returns the month n months away, keeping the first day of week.
func (m CalendarMonth) AddMonths(n int) CalendarMonth {
	return MonthOf(m.FirstDay().AddMonths(n), m.FirstDayOfWeek)
}

// SameMonth reports whether both values name the same year and month.
func (m CalendarMonth) SameMonth(o CalendarMonth) bool {
	return m.Year == o.Year && m.Month == o.Month
}

// Before reports whether m is an earlier year+month than o.
func (m CalendarMonth) Before(o CalendarMonth) bool {
	return m.FirstDay().Before(o.FirstDay())
}

// Contains reports whether d belongs to this month (padding cells do not).
func (m CalendarMonth) Contains(d CalendarDate) bool {
	return d.Year == m.Year && d.Month == m.Month
}

// GridStart returns the first cell of the grid: the latest FirstDayOfWeek on or
// before the first of the month.
func (m CalendarMonth) GridStart() CalendarDate {
	first := m.FirstDay()
	weekday := first.StartOfDay(time.UTC).Weekday()
	offset := (int(weekday) - int(m.FirstDayOfWeek) + config.DaysPerWeek) % config.DaysPerWeek
	return first.AddDays(-offset)
}

// Grid returns the 6 weeks of days displayed for the month, padded with days of
// the adjacent months.
func (m CalendarMonth) Grid() [config.CalendarCells]CalendarDate {
	var cells [config.CalendarCells]CalendarDate
	start := m.GridStart()
	for i := range cells {
		cells[i] = start.AddDays(i)
	}
	return cells
}

// Weekdays returns the column headers in display order.
func (m CalendarMonth) Weekdays() [config.DaysPerWeek]time.Weekday {
	var days [config.DaysPerWeek]time.Weekday
	for i := range days {
		days[i] = time.Weekday((int(m.FirstDayOfWeek) + i) % config.DaysPerWeek)
	}
	return days
}

// ISOWeekNumbers returns the ISO 8601 week number of each grid row, read from
// the fourth day of the row.
func (m CalendarMonth) ISOWeekNumbers() [config.CalendarWeeks]int {
	var weeks [config.CalendarWeeks]int
	start := m.GridStart()
	for row := range weeks {
		_, weeks[row] = start.AddDays(row*config.DaysPerWeek + 3).StartOfDay(time.UTC).ISOWeek()
	}
	return weeks
}

// LocaleWeekNumbers numbers the grid rows with weeks starting on
// FirstDayOfWeek, week 1 being the one that holds January 1st. A row spanning
// New Year is week 1 of the new year.
func (m CalendarMonth) LocaleWeekNumbers() [config.CalendarWeeks]int {
	var weeks [config.CalendarWeeks]int
	start := m.GridStart()
	for row := range weeks {
		first := start.AddDays(row * config.DaysPerWeek)
		last := first.AddDays(config.DaysPerWeek - 1)
		yearStart := MonthOf(NewCalendarDate(last.Year, time.January, 1), m.FirstDayOfWeek).GridStart()
		weeks[row] = yearStart.DaysUntil(first)/config.DaysPerWeek + 1
	}
	return weeks
}

// WeekNumbers returns the row numbers for the given numbering, and false for
// WeekNumbersNone.
func (m CalendarMonth) WeekNumbers(n WeekNumbering) ([config.CalendarWeeks]int, bool) {
	switch n {
	case WeekNumbersISO:
		return m.ISOWeekNumbers(), true
	case WeekNumbersLocale:
		return m.LocaleWeekNumbers(), true
	}
	return [config.CalendarWeeks]int{}, false
}

// WeekNumbering selects the week numbers shown next to each grid row.
type WeekNumbering int

const (
	WeekNumbersNone WeekNumbering = iota
	WeekNumbersLocale
	WeekNumbersISO
)

func (n WeekNumbering) String() string {
	switch n {
	case WeekNumbersNone:
		return "none"
	case WeekNumbersLocale:
		return "locale"
	case WeekNumbersISO:
		return "iso"
	}
	return "unknown"
}

func (m CalendarMonth) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}
