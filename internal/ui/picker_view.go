package ui

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/layout"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-rangepicker/internal/config"
	"github.com/tartampluch/go-rangepicker/internal/engine"
)

// pickerView renders one engine.Picker. Every user action goes through do, so
// the widgets are redrawn from the engine state after each transition.
type pickerView struct {
	app    *RangePickerApp
	picker *engine.Picker

	toggleBtn  *widget.Button
	startEntry *FilteredEntry
	endEntry   *FilteredEntry
	setBtn     *widget.Button

	rangesBox    *fyne.Container
	rangeButtons map[string]*widget.Button
	calendars    [2]*calendarView
	calendarsBox *fyne.Container
	applyBtn     *widget.Button
	cancelBtn    *widget.Button
	controls     *fyne.Container

	panel    *tapArea
	backdrop *tapArea
	content  fyne.CanvasObject
}

func newPickerView(app *RangePickerApp) *pickerView {
	v := &pickerView{
		app:          app,
		picker:       app.Picker,
		rangeButtons: make(map[string]*widget.Button),
	}

	v.toggleBtn = widget.NewButtonWithIcon("", theme.CalendarIcon(), func() { v.do(v.picker.Toggle) })
	v.toggleBtn.Alignment = widget.ButtonAlignLeading

	v.startEntry = NewDateEntry()
	v.startEntry.PlaceHolder = config.PlaceholderDate
	v.endEntry = NewDateEntry()
	v.endEntry.PlaceHolder = config.PlaceholderDate
	v.setBtn = widget.NewButton(app.GetMsg(config.TKeyBtnSet), v.submitDates)

	dates := container.NewBorder(nil, nil, nil, v.setBtn, container.NewGridWithColumns(config.LayoutColumnsDouble,
		container.NewBorder(nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblStart)), nil, v.startEntry),
		container.NewBorder(nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblEnd)), nil, v.endEntry),
	))

	v.rangesBox = container.NewVBox()
	for i := range v.calendars {
		v.calendars[i] = newCalendarView(v, engine.Side(i))
	}
	v.calendarsBox = container.NewGridWithColumns(config.LayoutColumnsDouble, v.calendars[0].object, v.calendars[1].object)

	v.applyBtn = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnApply), theme.ConfirmIcon(), func() { v.do(v.picker.ApplySelection) })
	v.applyBtn.Importance = widget.HighImportance
	v.cancelBtn = widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { v.do(v.picker.Cancel) })
	v.controls = container.NewHBox(layout.NewSpacer(), v.cancelBtn, v.applyBtn)

	v.panel = newTapArea(container.NewBorder(nil, v.controls, v.rangesBox, nil, v.calendarsBox), nil)
	v.backdrop = newTapArea(nil, func() { v.do(v.picker.OutsideClick) })

	v.content = container.NewBorder(
		container.NewVBox(v.toggleBtn, dates),
		nil, nil, nil,
		container.NewStack(v.backdrop, container.NewVBox(container.NewHBox(v.panel))),
	)

	v.refresh()
	return v
}

// do runs one engine action and redraws.
func (v *pickerView) do(action func()) {
	action()
	v.refresh()
}

func (v *pickerView) refresh() {
	p := v.picker

	v.toggleBtn.SetText(v.summary())
	v.startEntry.SetText(dateText(p.StartDate()))
	v.endEntry.SetText(dateText(p.EndDate()))
	if p.SingleDate() {
		v.endEntry.Disable()
	} else {
		v.endEntry.Enable()
	}

	if !p.IsOpen() {
		v.panel.Hide()
		v.backdrop.Hide()
		return
	}

	v.refreshRanges()
	if p.CalendarsVisible() {
		for _, c := range v.calendars {
			c.refresh()
		}
		if p.OneCalendar() {
			v.calendars[engine.SideRight].object.Hide()
		} else {
			v.calendars[engine.SideRight].object.Show()
		}
		v.calendarsBox.Show()
	} else {
		v.calendarsBox.Hide()
	}

	if !p.AutoApply() {
		v.controls.Show()
	} else {
		v.controls.Hide()
	}
	if p.State() == engine.StatePickingEnd {
		v.applyBtn.Disable()
	} else {
		v.applyBtn.Enable()
	}

	v.backdrop.Show()
	v.panel.Show()
	v.panel.Refresh()
}

// refreshRanges rebuilds the predefined range list from Picker.RangeLabels.
func (v *pickerView) refreshRanges() {
	p := v.picker
	v.rangesBox.RemoveAll()
	clear(v.rangeButtons)

	labels := p.RangeLabels()
	if len(labels) == 0 {
		v.rangesBox.Hide()
		return
	}

	for _, label := range labels {
		btn := widget.NewButton(label, func() { v.do(func() { p.SelectPredefinedRange(label) }) })
		btn.Alignment = widget.ButtonAlignLeading
		if label == p.ChosenLabel() {
			btn.Importance = widget.HighImportance
		} else {
			btn.Importance = widget.LowImportance
		}
		v.rangeButtons[label] = btn
		v.rangesBox.Add(btn)
	}
	v.rangesBox.Show()
}

func (v *pickerView) summary() string {
	p := v.picker
	if p.StartDate().IsZero() {
		return v.app.GetMsg(config.TKeyNoSelection)
	}

	text := v.app.formatRange(engine.DateRange{Start: p.StartDate(), End: p.EndDate()})
	if label := p.ChosenLabel(); label != "" && label != p.CustomRangeLabel() {
		text = fmt.Sprintf(config.FormatLabelled, label, text)
	}
	return text
}

// submitDates pushes the typed dates into the engine.
func (v *pickerView) submitDates() {
	start, err := engine.ParseCalendarDate(v.startEntry.Text)
	if err != nil {
		v.rejectDate(v.startEntry.Text, err)
		return
	}

	var end engine.CalendarDate
	if v.endEntry.Text != "" && !v.picker.SingleDate() {
		if end, err = engine.ParseCalendarDate(v.endEntry.Text); err != nil {
			v.rejectDate(v.endEntry.Text, err)
			return
		}
	}

	v.do(func() { v.picker.SetRange(engine.DateRange{Start: start, End: end}) })
}

func (v *pickerView) rejectDate(text string, err error) {
	slog.Debug(config.MsgDateRejected,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyDate, text,
		config.LogKeyError, err,
	)
	if v.app.Window != nil {
		dialog.ShowError(errors.New(v.app.GetMsg(config.TKeyErrDateInvalid)), v.app.Window)
	}
}

func dateText(d engine.CalendarDate) string {
	if d.IsZero() {
		return ""
	}
	return d.String()
}

// calendarView is one month grid with its navigation row.
type calendarView struct {
	view *pickerView
	side engine.Side

	title    *widget.Label
	prevBtn  *widget.Button
	nextBtn  *widget.Button
	weekNums [config.CalendarWeeks]*widget.Label

	// Month and year jump selectors. syncing mutes their callbacks while
	// refresh writes the current month into them.
	monthSelect *widget.Select
	yearSelect  *widget.Select
	dropdowns   *fyne.Container
	syncing     bool

	weekCol  *fyne.Container
	headers  [config.DaysPerWeek]*widget.Label
	days     [config.CalendarCells]*widget.Button
	cells    []engine.DayCell

	object fyne.CanvasObject
}

func newCalendarView(v *pickerView, side engine.Side) *calendarView {
	c := &calendarView{view: v, side: side}

	c.title = widget.NewLabel("")
	c.title.Alignment = fyne.TextAlignCenter
	c.title.TextStyle = fyne.TextStyle{Bold: true}
	c.prevBtn = widget.NewButton(config.NavPrev, func() { v.do(func() { v.picker.Navigate(side, -1) }) })
	c.nextBtn = widget.NewButton(config.NavNext, func() { v.do(func() { v.picker.Navigate(side, 1) }) })
	c.prevBtn.Importance = widget.LowImportance
	c.nextBtn.Importance = widget.LowImportance

	grid := container.NewGridWithColumns(config.DaysPerWeek)
	for i := range c.headers {
		c.headers[i] = widget.NewLabel("")
		c.headers[i].Alignment = fyne.TextAlignCenter
		grid.Add(c.headers[i])
	}
	for i := range c.days {
		c.days[i] = widget.NewButton("", func() {
			if i < len(c.cells) {
				v.do(func() { v.picker.SelectDay(c.cells[i].Date) })
			}
		})
		grid.Add(c.days[i])
	}

	c.weekCol = container.NewGridWithColumns(1, widget.NewLabel(v.app.GetMsg(config.TKeyColWeek)))
	for i := range c.weekNums {
		c.weekNums[i] = widget.NewLabel("")
		c.weekCol.Add(c.weekNums[i])
	}

	c.monthSelect = widget.NewSelect(nil, func(string) { c.jump() })
	c.yearSelect = widget.NewSelect(nil, func(string) { c.jump() })
	c.dropdowns = container.NewGridWithColumns(config.LayoutColumnsDouble, c.monthSelect, c.yearSelect)

	nav := container.NewBorder(nil, nil, c.prevBtn, c.nextBtn, c.title)
	c.object = container.NewBorder(container.NewVBox(nav, c.dropdowns), nil, c.weekCol, nil, grid)
	return c
}

// jump moves this calendar to the month and year picked in the selectors.
func (c *calendarView) jump() {
	if c.syncing {
		return
	}
	month := c.monthSelect.SelectedIndex()
	year, err := strconv.Atoi(c.yearSelect.Selected)
	if month < 0 || err != nil {
		return
	}
	v := c.view
	v.do(func() { v.picker.JumpTo(c.side, year, time.Month(month+1)) })
}

// refreshDropdowns fills the selectors for month without triggering jump.
func (c *calendarView) refreshDropdowns(month engine.CalendarMonth) {
	app := c.view.app
	if !app.Preferences.BoolWithFallback(config.PrefShowDropdowns, config.DefaultDropdowns) {
		c.dropdowns.Hide()
		return
	}

	c.syncing = true
	defer func() { c.syncing = false }()

	months := make([]string, 0, 12)
	for m := time.January; m <= time.December; m++ {
		months = append(months, app.monthName(m))
	}
	c.monthSelect.SetOptions(months)
	c.monthSelect.SetSelectedIndex(int(month.Month) - 1)

	from, to := c.view.picker.YearBounds()
	years := make([]string, 0, to-from+1)
	for y := from; y <= to; y++ {
		years = append(years, strconv.Itoa(y))
	}
	c.yearSelect.SetOptions(years)
	c.yearSelect.SetSelected(strconv.Itoa(month.Year))
	c.dropdowns.Show()
}

func (c *calendarView) refresh() {
	p := c.view.picker
	app := c.view.app

	month := p.LeftMonth()
	if c.side == engine.SideRight {
		month = p.RightMonth()
	}
	c.title.SetText(app.monthTitle(month))

	for i, wd := range month.Weekdays() {
		c.headers[i].SetText(app.weekdayName(wd))
	}

	c.refreshDropdowns(month)

	if weeks, ok := p.WeekNumbers(c.side); ok {
		for i, n := range weeks {
			c.weekNums[i].SetText(fmt.Sprintf(config.FormatWeekNumber, n))
		}
		c.weekCol.Show()
	} else {
		c.weekCol.Hide()
	}

	c.cells = p.Cells(c.side)
	for i, cell := range c.cells {
		btn := c.days[i]
		text := strconv.Itoa(cell.Date.Day)
		if cell.Label != "" {
			text += config.DayMarker
		}
		btn.SetText(text)
		btn.Importance = cellImportance(cell)
		if cell.Disabled {
			btn.Disable()
		} else {
			btn.Enable()
		}
		btn.Refresh()
	}
}

func cellImportance(cell engine.DayCell) widget.Importance {
	switch {
	case cell.Start || cell.End:
		return widget.HighImportance
	case cell.InRange:
		return widget.MediumImportance
	case cell.Today:
		return widget.SuccessImportance
	}
	return widget.LowImportance
}
