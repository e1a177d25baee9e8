package ui

import (
	"log/slog"
	"sort"
	"strings"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-rangepicker/internal/config"
	"github.com/tartampluch/go-rangepicker/internal/engine"
)

// catalogView is the sortable table behind the catalog window.
type catalogView struct {
	app     *RangePickerApp
	entries []engine.NamedRange
	sortCol int
	sortAsc bool
	table   *widget.Table
}

// ShowCatalogWindow lists the predefined ranges. Selecting a row opens the
// picker on that range. A second call focuses the open window.
func (app *RangePickerApp) ShowCatalogWindow() {
	if app.catalogWindow != nil {
		slog.Debug(config.MsgWinFocus,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyWindow, config.TKeyWinCatalog)
		app.catalogWindow.RequestFocus()
		return
	}

	w := app.App.NewWindow(app.GetMsg(config.TKeyWinCatalog))
	w.Resize(fyne.NewSize(config.CatalogWinWidth, config.CatalogWinHeight))
	app.catalogWindow = w

	cv := &catalogView{app: app, sortCol: config.ColIDStart, sortAsc: true}
	cv.table = cv.buildTable()
	cv.setEntries(app.Picker.Catalog().Entries())
	app.catalog = cv

	slog.Info(config.MsgOpenWin,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyWindow, config.TKeyWinCatalog,
		config.LogKeyCount, len(cv.entries))

	w.SetContent(container.NewBorder(nil, nil, nil, nil, cv.table))
	w.SetOnClosed(func() {
		app.catalogWindow = nil
		app.catalog = nil
	})
	w.Show()
}

// setEntries replaces the rows, keeping the current sort order.
func (cv *catalogView) setEntries(entries []engine.NamedRange) {
	cv.entries = entries
	cv.resort()
}

func (cv *catalogView) resort() {
	sortEntries(cv.entries, cv.sortCol, cv.sortAsc)
	slog.Debug(config.MsgSorted,
		config.LogKeyComponent, config.CompUI,
		config.LogKeySortCol, cv.sortCol,
		config.LogKeySortAsc, cv.sortAsc)
	cv.table.UnselectAll()
	cv.table.Refresh()
}

// sortBy toggles the direction when col is already the sort column.
func (cv *catalogView) sortBy(col int) {
	if cv.sortCol == col {
		cv.sortAsc = !cv.sortAsc
	} else {
		cv.sortCol = col
		cv.sortAsc = true
	}
	cv.resort()
}

func (cv *catalogView) buildTable() *widget.Table {
	app := cv.app
	table := widget.NewTable(
		func() (int, int) {
			return len(cv.entries), config.ColCount
		},
		func() fyne.CanvasObject {
			return widget.NewLabel(config.TablePlaceholder)
		},
		func(id widget.TableCellID, o fyne.CanvasObject) {
			label := o.(*widget.Label)
			if id.Row >= len(cv.entries) {
				return
			}
			nr := cv.entries[id.Row]

			switch id.Col {
			case config.ColIDLabel:
				label.SetText(nr.Label)
			case config.ColIDStart:
				label.SetText(app.formatDate(nr.Range.Start))
			case config.ColIDEnd:
				label.SetText(app.formatDate(nr.Range.End))
			}
		},
	)

	table.ShowHeaderRow = true
	table.CreateHeader = func() fyne.CanvasObject {
		return widget.NewButton(config.TablePlaceholder, func() {})
	}
	table.UpdateHeader = func(id widget.TableCellID, o fyne.CanvasObject) {
		btn := o.(*widget.Button)

		var titleKey string
		switch id.Col {
		case config.ColIDLabel:
			titleKey = config.TKeyColLabel
		case config.ColIDStart:
			titleKey = config.TKeyColStart
		case config.ColIDEnd:
			titleKey = config.TKeyColEnd
		}

		text := app.GetMsg(titleKey)
		if id.Col == cv.sortCol {
			if cv.sortAsc {
				text += config.SortIconAsc
			} else {
				text += config.SortIconDesc
			}
		}
		btn.SetText(text)
		btn.OnTapped = func() { cv.sortBy(id.Col) }
	}

	table.OnSelected = func(id widget.TableCellID) {
		if id.Row < 0 || id.Row >= len(cv.entries) {
			return
		}
		label := cv.entries[id.Row].Label
		app.Window.Show()
		app.view.do(func() {
			app.Picker.Open()
			app.Picker.SelectPredefinedRange(label)
		})
	}

	table.SetColumnWidth(config.ColIDLabel, config.ColWidthLabel)
	table.SetColumnWidth(config.ColIDStart, config.ColWidthDate)
	table.SetColumnWidth(config.ColIDEnd, config.ColWidthDate)
	return table
}

// sortEntries orders entries in place by one column. Ties fall back to the
// start date, then the label.
func sortEntries(entries []engine.NamedRange, col int, asc bool) {
	sort.SliceStable(entries, func(i, j int) bool {
		a, b := entries[i], entries[j]

		var c int
		switch col {
		case config.ColIDLabel:
			c = strings.Compare(strings.ToLower(a.Label), strings.ToLower(b.Label))
		case config.ColIDEnd:
			c = a.Range.End.Compare(b.Range.End)
		default:
			c = a.Range.Start.Compare(b.Range.Start)
		}
		if c == 0 {
			c = a.Range.Start.Compare(b.Range.Start)
		}
		if c == 0 {
			c = strings.Compare(a.Label, b.Label)
		}

		if !asc {
			return c > 0
		}
		return c < 0
	})
}
