package engine

import (
	"log/slog"
	"time"

	"github.com/tartampluch/go-rangepicker/internal/config"
)

// Options is the constructor-time configuration of a Picker.
type Options struct {
	// Start and End seed the selection. A zero Start means today and a zero End
	// means one month after Start.
	Start CalendarDate
	End   CalendarDate

	SingleDate          bool // pick one day; implies AutoApply
	AutoApply           bool // apply as soon as a pick completes
	Linked              bool // both calendars navigate together
	CloseOnOutsideClick bool
	AutoAdjustCalendars bool // re-center the calendars on the selection at every Open
	AlwaysShowCalendars bool // keep the calendars visible when a predefined range is chosen

	// ShowOnlyOneCalendar displays the left month only. Navigation then moves
	// both months so the hidden one never collides.
	ShowOnlyOneCalendar bool

	// HideCustomRangeLabel drops the custom entry from RangeLabels. The chosen
	// label still falls back to CustomRangeLabel when nothing matches.
	HideCustomRangeLabel bool

	WeekNumbers WeekNumbering

	Constraints      Constraints
	Catalog          *Catalog
	CustomRangeLabel string
	FirstDayOfWeek   time.Weekday

	// DayLabel optionally tags individual cells (holidays, paydays...). The host
	// decides how a label is rendered.
	DayLabel func(d CalendarDate) string

	Clock  Clock
	Logger *slog.Logger
}

// State is the observable phase of the Picker.
type State int

const (
	StateClosed State = iota
	StateRangesList
	StatePickingStart
	StatePickingEnd
)

func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateRangesList:
		return "ranges-list"
	case StatePickingStart:
		return "picking-start"
	case StatePickingEnd:
		return "picking-end"
	}
	return "unknown"
}

// SelectionState is a point-in-time copy of the Picker state.
type SelectionState struct {
	Start            CalendarDate
	End              CalendarDate
	PreviousStart    CalendarDate
	PreviousEnd      CalendarDate
	ChosenLabel      string
	SingleDate       bool
	AutoApply        bool
	Open             bool
	CalendarsVisible bool
	Left             CalendarMonth
	Right            CalendarMonth
}

// DayCell is the render model of one calendar cell.
type DayCell struct {
	Date     CalendarDate
	InMonth  bool
	Today    bool
	Disabled bool
	Start    bool
	End      bool
	InRange  bool
	Label    string
}

// Picker is the range-selection state machine. It is not safe for concurrent
// use: the host must deliver one event at a time, which every UI toolkit
// already does on its event goroutine.
type Picker struct {
	opts    Options
	catalog *Catalog
	log     *slog.Logger

	start, end         CalendarDate
	prevStart, prevEnd CalendarDate
	chosenLabel        string
	open               bool
	calendarsVisible   bool
	left, right        CalendarMonth

	subs   []subscription
	nextID int
}

// NewPicker builds a closed Picker seeded from opts.
func NewPicker(opts Options) *Picker {
	if opts.SingleDate {
		opts.AutoApply = true
	}
	if opts.CustomRangeLabel == "" {
		opts.CustomRangeLabel = config.DefaultCustomRangeLabel
	}
	if opts.Clock == nil {
		opts.Clock = RealClock{}
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	p := &Picker{
		opts:    opts,
		catalog: opts.Catalog,
		log:     log.With(config.LogKeyComponent, config.CompPicker),
	}

	p.start = opts.Start
	if p.start.IsZero() {
		p.start = Today(opts.Clock)
	}
	p.end = opts.End
	if p.end.IsZero() {
		p.end = p.start.AddMonths(config.DefaultEndShift)
	}
	if opts.SingleDate {
		p.end = p.start
	}
	if p.end.Before(p.start) {
		p.start, p.end = p.end, p.start
	}

	p.calendarsVisible = opts.AlwaysShowCalendars || p.catalog.Len() == 0
	p.chosenLabel = p.matchLabel()
	p.left, p.right = AdjustCalendars(p.start, p.end, p.today(), opts.FirstDayOfWeek)

	p.log.Debug(config.MsgPickerCreated,
		config.LogKeyStart, p.start.String(),
		config.LogKeyEnd, p.end.String(),
		config.LogKeyLabel, p.chosenLabel,
	)
	return p
}

// Subscribe registers fn for every notification. The returned function removes it.
func (p *Picker) Subscribe(fn Listener) func() {
	p.nextID++
	id := p.nextID
	p.subs = append(p.subs, subscription{id: id, fn: fn})
	return func() {
		for i, s := range p.subs {
			if s.id == id {
				p.subs = append(p.subs[:i:i], p.subs[i+1:]...)
				return
			}
		}
	}
}

func (p *Picker) emit(ev Event) {
	// Listeners may (un)subscribe while being notified.
	subs := append([]subscription(nil), p.subs...)
	for _, s := range subs {
		s.fn(ev)
	}
}

// Open shows the picker. It snapshots the selection for Cancel, optionally
// re-centers the calendars and resolves the chosen label.
func (p *Picker) Open() {
	if p.open {
		return
	}
	p.prevStart, p.prevEnd = p.start, p.end

	if p.opts.AutoAdjustCalendars {
		p.adjustCalendars()
	}

	p.chosenLabel = p.matchLabel()
	if p.chosenLabel == p.opts.CustomRangeLabel {
		p.calendarsVisible = true
	}

	p.open = true
	p.log.Debug(config.MsgPickerOpened,
		config.LogKeyLabel, p.chosenLabel,
		config.LogKeyState, p.State().String(),
	)
	p.emit(Event{Kind: EventOpened})
}

// Close hides the picker without touching the selection. Closing a closed
// picker does nothing.
func (p *Picker) Close() {
	if !p.open {
		return
	}
	p.open = false
	p.prevStart, p.prevEnd = CalendarDate{}, CalendarDate{}
	p.log.Debug(config.MsgPickerClosed)
	p.emit(Event{Kind: EventClosed})
}

// Toggle closes an open picker and opens a closed one.
func (p *Picker) Toggle() {
	if p.open {
		p.Close()
		return
	}
	p.Open()
}

// Cancel restores the selection held when the picker was opened, then closes.
func (p *Picker) Cancel() {
	p.rollback(true)
}

// OutsideClick dismisses the picker like Cancel when CloseOnOutsideClick is set.
func (p *Picker) OutsideClick() {
	if !p.opts.CloseOnOutsideClick {
		return
	}
	p.rollback(false)
}

func (p *Picker) rollback(explicit bool) {
	if !p.open {
		return
	}
	p.start, p.end = p.prevStart, p.prevEnd
	p.chosenLabel = p.matchLabel()
	p.log.Debug(config.MsgPickerCancelled,
		config.LogKeyExplicit, explicit,
		config.LogKeyStart, p.start.String(),
		config.LogKeyEnd, p.end.String(),
	)
	p.Close()
	p.emit(Event{Kind: EventCancelled, Explicit: explicit})
}

// SelectDay resolves a click on a calendar day. Clicks on unselectable days
// are ignored without any state change or notification.
func (p *Picker) SelectDay(d CalendarDate) {
	if d.IsZero() {
		return
	}

	if p.opts.SingleDate {
		if !p.opts.Constraints.Selectable(d, CalendarDate{}) {
			p.ignored(d)
			return
		}
		p.start, p.end = d, d
		p.completePick()
		return
	}

	// No pick in progress: this click starts one.
	if p.start.IsZero() || !p.end.IsZero() {
		if !p.opts.Constraints.Selectable(d, CalendarDate{}) {
			p.ignored(d)
			return
		}
		p.start, p.end = d, CalendarDate{}
		p.log.Debug(config.MsgPickStarted, config.LogKeyDate, d.String())
		return
	}

	if !p.opts.Constraints.Selectable(d, p.start) {
		p.ignored(d)
		return
	}
	if d.Before(p.start) {
		p.start, p.end = d, p.start
	} else {
		p.end = d
	}
	p.completePick()
}

func (p *Picker) ignored(d CalendarDate) {
	p.log.Debug(config.MsgClickIgnored,
		config.LogKeyDate, d.String(),
		config.LogKeyState, p.State().String(),
	)
}

func (p *Picker) completePick() {
	p.chosenLabel = p.matchLabel()
	p.log.Debug(config.MsgPickCompleted,
		config.LogKeyStart, p.start.String(),
		config.LogKeyEnd, p.end.String(),
		config.LogKeyLabel, p.chosenLabel,
	)
	if p.opts.AutoApply {
		p.apply()
	}
}

// ApplySelection confirms a complete selection and closes the picker.
// An incomplete selection is rejected silently.
func (p *Picker) ApplySelection() {
	if p.start.IsZero() || p.end.IsZero() {
		p.log.Debug(config.MsgApplyRejected, config.LogKeyState, p.State().String())
		return
	}
	p.chosenLabel = p.matchLabel()
	p.apply()
}

func (p *Picker) apply() {
	sel := DateRange{Start: p.start, End: p.end}
	p.log.Debug(config.MsgApplied,
		config.LogKeyStart, sel.Start.String(),
		config.LogKeyEnd, sel.End.String(),
		config.LogKeyLabel, p.chosenLabel,
	)
	p.emit(Event{Kind: EventRangeSelected, Range: sel, Label: p.chosenLabel})
	p.Close()
}

// SelectPredefinedRange selects a catalog entry by label. Choosing the custom
// range label reveals the calendars instead. Unknown labels are ignored.
func (p *Picker) SelectPredefinedRange(label string) {
	nr, ok := p.catalog.Lookup(label)
	if !ok {
		if label == p.opts.CustomRangeLabel {
			p.chosenLabel = label
			p.calendarsVisible = true
			return
		}
		p.log.Debug(config.MsgUnknownLabel, config.LogKeyLabel, label)
		return
	}

	p.start, p.end = nr.Range.Start, nr.Range.End
	p.chosenLabel = nr.Label
	if p.opts.SingleDate {
		p.end = p.start
		p.chosenLabel = p.matchLabel()
	}
	if !p.opts.AlwaysShowCalendars {
		p.calendarsVisible = false
	}
	p.adjustCalendars()

	if p.opts.AutoApply {
		p.apply()
	}
}

// Navigate moves a calendar by delta months.
func (p *Picker) Navigate(side Side, delta int) {
	if delta == 0 {
		return
	}
	linked := p.opts.Linked || p.opts.ShowOnlyOneCalendar
	left, right := NavigateCalendars(p.left, p.right, side, delta, linked)
	p.setMonths(left, right)
}

// JumpTo shows year/month on side, going through Navigate so the linked and
// never-same-month rules still hold.
func (p *Picker) JumpTo(side Side, year int, month time.Month) {
	current := p.left
	if side == SideRight {
		current = p.right
	}
	delta := (year-current.Year)*12 + int(month-current.Month)
	p.Navigate(side, delta)
}

// YearBounds returns the years offered for direct month jumps: the constraint
// bounds when set, otherwise config.DropdownYears around today.
func (p *Picker) YearBounds() (int, int) {
	today := p.today()
	from, to := today.Year-config.DropdownYears, today.Year+config.DropdownYears
	if c := p.opts.Constraints; !c.MinDate.IsZero() {
		from = NewCalendarDate(c.MinDate.Year, c.MinDate.Month, c.MinDate.Day).Year
	}
	if c := p.opts.Constraints; !c.MaxDate.IsZero() {
		to = NewCalendarDate(c.MaxDate.Year, c.MaxDate.Month, c.MaxDate.Day).Year
	}
	from = min(from, p.left.Year)
	to = max(to, p.right.Year)
	return from, to
}

// RangeLabels returns the entries of the predefined range list in display
// order: the catalog labels, then the custom label unless hidden. It is empty
// without a catalog.
func (p *Picker) RangeLabels() []string {
	if p.catalog.Len() == 0 {
		return nil
	}
	labels := p.catalog.Labels()
	if !p.opts.HideCustomRangeLabel {
		labels = append(labels, p.opts.CustomRangeLabel)
	}
	return labels
}

// WeekNumbers returns the row numbers of side's grid, and false when week
// numbers are off.
func (p *Picker) WeekNumbers(side Side) ([config.CalendarWeeks]int, bool) {
	month := p.left
	if side == SideRight {
		month = p.right
	}
	return month.WeekNumbers(p.opts.WeekNumbers)
}

// SetRange replaces the selection from the host side (two-way binding).
// A zero End selects the single day Start; a zero Start is ignored.
func (p *Picker) SetRange(r DateRange) {
	if r.Start.IsZero() {
		return
	}
	if r.End.IsZero() || p.opts.SingleDate {
		r.End = r.Start
	}
	r = NewDateRange(r.Start, r.End)
	p.start, p.end = r.Start, r.End
	p.chosenLabel = p.matchLabel()
	p.adjustCalendars()
}

// SetCatalog swaps the predefined ranges and re-evaluates the chosen label.
func (p *Picker) SetCatalog(c *Catalog) {
	p.catalog = c
	p.chosenLabel = p.matchLabel()
	if p.catalog.Len() == 0 || (p.open && p.chosenLabel == p.opts.CustomRangeLabel) {
		p.calendarsVisible = true
	}
	p.log.Debug(config.MsgCatalogSwapped,
		config.LogKeyCount, p.catalog.Len(),
		config.LogKeyLabel, p.chosenLabel,
	)
}

// SetConstraints replaces the constraints used for later clicks and cells.
// The current selection is kept as is.
func (p *Picker) SetConstraints(c Constraints) {
	p.opts.Constraints = c
}

func (p *Picker) matchLabel() string {
	if p.start.IsZero() || p.end.IsZero() {
		return p.opts.CustomRangeLabel
	}
	if label, ok := p.catalog.FindMatch(DateRange{Start: p.start, End: p.end}); ok {
		return label
	}
	return p.opts.CustomRangeLabel
}

func (p *Picker) adjustCalendars() {
	left, right := AdjustCalendars(p.start, p.end, p.today(), p.opts.FirstDayOfWeek)
	p.setMonths(left, right)
}

func (p *Picker) setMonths(left, right CalendarMonth) {
	if left == p.left && right == p.right {
		return
	}
	p.left, p.right = left, right
	p.log.Debug(config.MsgMonthChanged,
		config.LogKeyLeft, left.String(),
		config.LogKeyRight, right.String(),
	)
	p.emit(Event{Kind: EventMonthChanged})
}

func (p *Picker) today() CalendarDate {
	return Today(p.opts.Clock)
}

// State derives the current phase from the selection and visibility flags.
func (p *Picker) State() State {
	switch {
	case !p.open:
		return StateClosed
	case !p.calendarsVisible:
		return StateRangesList
	case !p.start.IsZero() && p.end.IsZero():
		return StatePickingEnd
	default:
		return StatePickingStart
	}
}

// Cells returns the render model of one calendar. Disabled uses the same
// evaluation as SelectDay, anchored on the pending start while a pick is open.
func (p *Picker) Cells(side Side) []DayCell {
	month := p.left
	if side == SideRight {
		month = p.right
	}

	var anchor CalendarDate
	pending := !p.opts.SingleDate && !p.start.IsZero() && p.end.IsZero()
	if pending {
		anchor = p.start
	}
	today := p.today()
	sel := DateRange{Start: p.start, End: p.end}

	grid := month.Grid()
	cells := make([]DayCell, 0, len(grid))
	for _, d := range grid {
		cell := DayCell{
			Date:     d,
			InMonth:  month.Contains(d),
			Today:    d.Equal(today),
			Disabled: !p.opts.Constraints.Selectable(d, anchor),
			Start:    !p.start.IsZero() && d.Equal(p.start),
			End:      !p.end.IsZero() && d.Equal(p.end),
			InRange:  !pending && !p.start.IsZero() && !p.end.IsZero() && sel.Contains(d),
		}
		if p.opts.DayLabel != nil {
			cell.Label = p.opts.DayLabel(d)
		}
		cells = append(cells, cell)
	}
	return cells
}

// Snapshot returns a copy of the current state.
func (p *Picker) Snapshot() SelectionState {
	return SelectionState{
		Start:            p.start,
		End:              p.end,
		PreviousStart:    p.prevStart,
		PreviousEnd:      p.prevEnd,
		ChosenLabel:      p.chosenLabel,
		SingleDate:       p.opts.SingleDate,
		AutoApply:        p.opts.AutoApply,
		Open:             p.open,
		CalendarsVisible: p.calendarsVisible,
		Left:             p.left,
		Right:            p.right,
	}
}

// Selection returns the current range and whether both endpoints are set.
func (p *Picker) Selection() (DateRange, bool) {
	r := DateRange{Start: p.start, End: p.end}
	return r, !p.start.IsZero() && !p.end.IsZero()
}

// StartDate is the current start, possibly a pending pick.
func (p *Picker) StartDate() CalendarDate { return p.start }

// EndDate is the current end; zero while the end is being picked.
func (p *Picker) EndDate() CalendarDate { return p.end }

// ChosenLabel is the matching catalog label, or the custom label.
func (p *Picker) ChosenLabel() string { return p.chosenLabel }

// IsOpen reports whether the picker is shown.
func (p *Picker) IsOpen() bool { return p.open }

// CalendarsVisible reports whether the month grids are shown.
func (p *Picker) CalendarsVisible() bool { return p.calendarsVisible }

// LeftMonth is the month displayed by the left calendar.
func (p *Picker) LeftMonth() CalendarMonth { return p.left }

// RightMonth is the month displayed by the right calendar.
func (p *Picker) RightMonth() CalendarMonth { return p.right }

// Catalog returns the predefined ranges; it may be nil.
func (p *Picker) Catalog() *Catalog { return p.catalog }

func (p *Picker) CustomRangeLabel() string { return p.opts.CustomRangeLabel }
func (p *Picker) Linked() bool { return p.opts.Linked }
func (p *Picker) SingleDate() bool { return p.opts.SingleDate }
func (p *Picker) AutoApply() bool { return p.opts.AutoApply }
func (p *Picker) OneCalendar() bool { return p.opts.ShowOnlyOneCalendar }
func (p *Picker) Constraints() Constraints { return p.opts.Constraints }
func (p *Picker) FirstDayOfWeek() time.Weekday { return p.opts.FirstDayOfWeek }
