package engine

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-rangepicker/internal/config"
)

// DecodeCatalog reads every VEVENT of an iCalendar stream into a Catalog, in
// stream order. SUMMARY becomes the label; DTSTART and the exclusive DTEND (or
// DURATION) become the inclusive day range. Events without a start or a
// summary are skipped. loc resolves floating date-times.
func DecodeCatalog(r io.Reader, loc *time.Location) (*Catalog, error) {
	if loc == nil {
		loc = time.UTC
	}
	log := slog.With(config.LogKeyComponent, config.CompCatalog)

	var entries []NamedRange
	dec := ical.NewDecoder(r)
	for {
		cal, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%s: %w", config.ErrICalDecode, err)
		}

		for _, event := range cal.Events() {
			nr, err := namedRangeFromEvent(event, loc)
			if err != nil {
				// Keep going: one broken event must not hide the others.
				log.Warn(config.MsgSkippedEvent, config.LogKeyError, err)
				continue
			}
			entries = append(entries, nr)
		}
	}

	log.Debug(config.MsgCatalogLoaded, config.LogKeyCount, len(entries))
	return NewCatalog(entries...), nil
}

func namedRangeFromEvent(event ical.Event, loc *time.Location) (NamedRange, error) {
	summary, err := event.Props.Text(config.PropSummary)
	if err != nil {
		return NamedRange{}, fmt.Errorf("%s: %w", config.ErrEventNoSummary, err)
	}
	if summary == "" {
		return NamedRange{}, errors.New(config.ErrEventNoSummary)
	}

	startProp := event.Props.Get(config.PropDTStart)
	if startProp == nil {
		return NamedRange{}, errors.New(config.ErrEventNoStart)
	}
	startTime, err := startProp.DateTime(loc)
	if err != nil {
		return NamedRange{}, fmt.Errorf("%s: %w", config.ErrEventNoStart, err)
	}
	start := DateOf(startTime.In(loc))

	// The iCalendar end is exclusive; the last covered day is the one holding
	// the instant just before it.
	end := start
	if endProp := event.Props.Get(config.PropDTEnd); endProp != nil {
		endTime, err := endProp.DateTime(loc)
		if err == nil && endTime.After(startTime) {
			end = DateOf(endTime.In(loc).Add(-time.Nanosecond))
		}
	} else if durProp := event.Props.Get(ical.PropDuration); durProp != nil {
		if dur, err := durProp.Duration(); err == nil && dur > 0 {
			end = DateOf(startTime.Add(dur).In(loc).Add(-time.Nanosecond))
		}
	}

	return NamedRange{Label: summary, Range: NewDateRange(start, end)}, nil
}

// EncodeRange renders r as a one-event iCalendar feed: an all-day VEVENT whose
// DTEND is the day after r.End, as the standard requires for DATE values.
func EncodeRange(r DateRange, label string, stamp time.Time) ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}
	if r.End.IsZero() {
		r.End = r.Start
	}

	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	event := ical.NewEvent()
	event.Props.SetText(config.PropUID, fmt.Sprintf(config.FormatUID, r.Start.String(), r.End.String(), config.ICalDomain))
	event.Props.SetText(config.PropSummary, label)

	dtStamp := ical.NewProp(config.PropDTStamp)
	dtStamp.SetDateTime(stamp.UTC())
	event.Props.Set(dtStamp)

	dtStart := ical.NewProp(config.PropDTStart)
	dtStart.SetDate(r.Start.StartOfDay(time.UTC))
	event.Props.Set(dtStart)

	dtEnd := ical.NewProp(config.PropDTEnd)
	dtEnd.SetDate(r.End.AddDays(1).StartOfDay(time.UTC))
	event.Props.Set(dtEnd)

	cal.Children = append(cal.Children, event.Component)

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}
	return buf.Bytes(), nil
}
