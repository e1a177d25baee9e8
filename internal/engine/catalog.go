package engine

import (
	"github.com/tartampluch/go-rangepicker/internal/config"
)

// NamedRange is a predefined range offered to the user by label.
type NamedRange struct {
	Label string
	Range DateRange
}

// Catalog is an ordered, immutable list of predefined ranges. Labels need not be
// unique; lookups return the first match in insertion order.
// The zero value and a nil *Catalog are both empty catalogs.
type Catalog struct {
	entries []NamedRange
}

// NewCatalog copies entries so later changes to the slice do not leak in.
func NewCatalog(entries ...NamedRange) *Catalog {
	c := &Catalog{entries: make([]NamedRange, len(entries))}
	copy(c.entries, entries)
	return c
}

// Len returns the number of entries.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.entries)
}

// Entries returns a copy of the entries in insertion order.
func (c *Catalog) Entries() []NamedRange {
	if c == nil {
		return nil
	}
	out := make([]NamedRange, len(c.entries))
	copy(out, c.entries)
	return out
}

// Labels returns the entry labels in insertion order.
func (c *Catalog) Labels() []string {
	if c == nil {
		return nil
	}
	labels := make([]string, 0, len(c.entries))
	for _, e := range c.entries {
		labels = append(labels, e.Label)
	}
	return labels
}

// FindMatch returns the label of the first entry whose bounds equal sel at
// calendar-day granularity.
func (c *Catalog) FindMatch(sel DateRange) (string, bool) {
	if c == nil {
		return "", false
	}
	for _, e := range c.entries {
		if e.Range.Equal(sel) {
			return e.Label, true
		}
	}
	return "", false
}

// Lookup returns the first entry carrying label.
func (c *Catalog) Lookup(label string) (NamedRange, bool) {
	if c == nil {
		return NamedRange{}, false
	}
	for _, e := range c.entries {
		if e.Label == label {
			return e, true
		}
	}
	return NamedRange{}, false
}

// StandardRanges builds the usual preset list relative to today. translate maps
// a translation key to a display label; nil keeps the keys.
func StandardRanges(today CalendarDate, translate func(key string) string) *Catalog {
	if translate == nil {
		translate = func(key string) string { return key }
	}
	thisMonth := MonthOf(today, config.DefaultFirstDayOfWeek)
	lastMonth := thisMonth.AddMonths(-1)

	return NewCatalog(
		NamedRange{translate(config.TKeyRangeToday), SingleDay(today)},
		NamedRange{translate(config.TKeyRangeYesterday), SingleDay(today.AddDays(-1))},
		NamedRange{translate(config.TKeyRangeLast7), NewDateRange(today.AddDays(-6), today)},
		NamedRange{translate(config.TKeyRangeLast30), NewDateRange(today.AddDays(-29), today)},
		NamedRange{translate(config.TKeyRangeThisMonth), NewDateRange(thisMonth.FirstDay(), thisMonth.LastDay())},
		NamedRange{translate(config.TKeyRangeLastMonth), NewDateRange(lastMonth.FirstDay(), lastMonth.LastDay())},
	)
}
