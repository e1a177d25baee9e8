package engine_test

import (
	"context"
	"io"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/tartampluch/go-rangepicker/internal/engine"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the network layer.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if r := args.Get(0); r != nil {
		return r.(io.ReadCloser), args.Error(1)
	}
	return nil, args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// clockAt returns a clock frozen at noon on the given day.
func clockAt(year int, month time.Month, day int) MockClock {
	return MockClock{CurrentTime: time.Date(year, month, day, 12, 0, 0, 0, time.UTC)}
}

// day is a short constructor for table entries.
func day(year int, month time.Month, d int) engine.CalendarDate {
	return engine.NewCalendarDate(year, month, d)
}

// recorder collects Picker notifications.
type recorder struct {
	events []engine.Event
}

func (r *recorder) listen(ev engine.Event) {
	r.events = append(r.events, ev)
}

func (r *recorder) kinds() []engine.EventKind {
	kinds := make([]engine.EventKind, 0, len(r.events))
	for _, ev := range r.events {
		kinds = append(kinds, ev.Kind)
	}
	return kinds
}

func (r *recorder) count(kind engine.EventKind) int {
	n := 0
	for _, ev := range r.events {
		if ev.Kind == kind {
			n++
		}
	}
	return n
}

func (r *recorder) last(kind engine.EventKind) (engine.Event, bool) {
	for i := len(r.events) - 1; i >= 0; i-- {
		if r.events[i].Kind == kind {
			return r.events[i], true
		}
	}
	return engine.Event{}, false
}

func (r *recorder) reset() {
	r.events = nil
}
