package engine

// EventKind names a notification emitted by the Picker.
type EventKind int

const (
	EventOpened EventKind = iota
	EventClosed
	EventRangeSelected
	EventCancelled
	EventMonthChanged
)

func (k EventKind) String() string {
	switch k {
	case EventOpened:
		return "opened"
	case EventClosed:
		return "closed"
	case EventRangeSelected:
		return "range-selected"
	case EventCancelled:
		return "cancelled"
	case EventMonthChanged:
		return "month-changed"
	}
	return "unknown"
}

// Event is delivered to subscribers after the state change it reports.
type Event struct {
	Kind EventKind

	// Range is set for EventRangeSelected.
	Range DateRange

	// Label is the chosen label at the time of EventRangeSelected.
	Label string

	// Explicit is set for EventCancelled: true for the cancel action, false for
	// an outside-click dismissal.
	Explicit bool
}

// Listener receives Picker notifications synchronously.
type Listener func(Event)

type subscription struct {
	id int
	fn Listener
}
