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
	"fyne.io/fyne/v2/storage"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/tartampluch/go-rangepicker/internal/config"
	"github.com/zalando/go-keyring"
)

// settingsWidgets holds references to UI elements to simplify data retrieval during save.
type settingsWidgets struct {
	// Picker behaviour.
	firstDaySelect *widget.Select
	checkLinked    *widget.Check
	checkAutoApply *widget.Check
	checkSingle    *widget.Check
	checkOutside   *widget.Check
	checkAdjust    *widget.Check
	checkAlwaysCal *widget.Check
	checkOneCal    *widget.Check
	checkCustom    *widget.Check
	checkDropdowns *widget.Check
	weekNumSelect  *widget.Select
	entryMaxSpan   *FilteredEntry

	// Catalog source. The password lives in the keyring, never in preferences.
	modeSelect *widget.Select
	urlEntry   *widget.Entry
	userEntry  *widget.Entry
	passEntry  *widget.Entry
	pathEntry  *widget.Entry

	// General.
	langSelect    *widget.Select
	entryInterval *FilteredEntry
	entryPort     *FilteredEntry
}

// ShowSettingsWindow displays the configuration dialog.
// Only one instance exists; a second call focuses it.
func (app *RangePickerApp) ShowSettingsWindow() {
	if app.settingsWindow != nil {
		slog.Debug(config.MsgWinFocus,
			config.LogKeyComponent, config.CompUISet,
			config.LogKeyWindow, config.TKeyWinSettings)
		app.settingsWindow.RequestFocus()
		return
	}

	slog.Info(config.MsgOpenWin,
		config.LogKeyComponent, config.CompUISet,
		config.LogKeyWindow, config.TKeyWinSettings)
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinSettings))
	app.settingsWindow = w

	sw := app.newSettingsWidgets()

	// The source card changes height when the mode switches between web and
	// local; the fixed-size window is resized to follow it.
	var refreshLayout func()
	onLayoutChange := func() {
		if refreshLayout != nil {
			refreshLayout()
		}
	}

	behaviourCard := app.buildBehaviourCard(sw)
	sourceCard := app.buildSourceCard(w, sw, onLayoutChange)
	generalCard := app.buildGeneralCard(sw)

	// Port validation is the only blocking check; everything else has a
	// fallback at save time.
	saveAction := func() {
		if err := sw.entryPort.Validate(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		app.saveSettings(sw, w)
	}

	btnSave := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnSave), theme.DocumentSaveIcon(), saveAction)
	btnSave.Importance = widget.HighImportance
	btnCancel := widget.NewButtonWithIcon(app.GetMsg(config.TKeyBtnCancel), theme.CancelIcon(), func() { w.Close() })

	footerLabel := widget.NewLabel(fmt.Sprintf(app.GetMsg(config.TKeyLblFooter), config.Version))
	footerLabel.Alignment = fyne.TextAlignCenter
	footerLabel.TextStyle = fyne.TextStyle{Italic: true}

	paddedContent := container.NewPadded(container.NewVBox(
		behaviourCard,
		sourceCard,
		generalCard,
		container.NewGridWithColumns(config.LayoutColumnsDouble, btnCancel, btnSave),
		footerLabel,
	))

	refreshLayout = func() {
		paddedContent.Refresh()
		w.Resize(fyne.NewSize(config.SettingsWindowWidth, paddedContent.MinSize().Height))
	}

	w.SetContent(paddedContent)
	w.SetFixedSize(true)
	// Releases the singleton.
	w.SetOnClosed(func() { app.settingsWindow = nil })

	refreshLayout()
	w.Show()
}

// newSettingsWidgets creates the form widgets pre-filled from the preferences.
func (app *RangePickerApp) newSettingsWidgets() *settingsWidgets {
	prefs := app.Preferences
	sw := &settingsWidgets{}

	// FirstDayAuto (-1) maps to index 0.
	sw.firstDaySelect = widget.NewSelect(app.firstDayOptions(), nil)
	sw.firstDaySelect.SetSelectedIndex(prefs.IntWithFallback(config.PrefFirstDayOfWeek, config.FirstDayAuto) + 1)

	newCheck := func(key string, checked bool) *widget.Check {
		c := widget.NewCheck(app.GetMsg(key), nil)
		c.SetChecked(checked)
		return c
	}
	sw.checkLinked = newCheck(config.TKeyLblLinked, prefs.BoolWithFallback(config.PrefLinked, config.DefaultLinked))
	sw.checkAutoApply = newCheck(config.TKeyLblAutoApply, prefs.Bool(config.PrefAutoApply))
	sw.checkSingle = newCheck(config.TKeyLblSingle, prefs.Bool(config.PrefSingleDate))
	sw.checkOutside = newCheck(config.TKeyLblCloseOut, prefs.BoolWithFallback(config.PrefCloseOnOutside, config.DefaultCloseOutside))
	sw.checkAdjust = newCheck(config.TKeyLblAutoAdjust, prefs.BoolWithFallback(config.PrefAutoAdjust, config.DefaultAutoAdjust))
	sw.checkAlwaysCal = newCheck(config.TKeyLblAlwaysCals, prefs.Bool(config.PrefAlwaysShowCals))
	sw.checkOneCal = newCheck(config.TKeyLblOneCalendar, prefs.Bool(config.PrefOneCalendar))
	sw.checkCustom = newCheck(config.TKeyLblShowCustom, prefs.BoolWithFallback(config.PrefShowCustom, config.DefaultShowCustom))
	sw.checkDropdowns = newCheck(config.TKeyLblDropdowns, prefs.BoolWithFallback(config.PrefShowDropdowns, config.DefaultDropdowns))

	// Option index is the engine.WeekNumbering value.
	sw.weekNumSelect = widget.NewSelect([]string{
		app.GetMsg(config.TKeyWeekNumNone),
		app.GetMsg(config.TKeyWeekNumLocale),
		app.GetMsg(config.TKeyWeekNumISO),
	}, nil)
	sw.weekNumSelect.SetSelectedIndex(prefs.Int(config.PrefWeekNumbers))

	// Empty or zero means unlimited.
	sw.entryMaxSpan = NewNumericalEntry()
	if days := prefs.IntWithFallback(config.PrefMaxSpanDays, config.DefaultMaxSpanDays); days > 0 {
		sw.entryMaxSpan.SetText(strconv.Itoa(days))
	}

	sw.modeSelect = widget.NewSelect([]string{
		app.GetMsg(config.TKeyModePresets),
		app.GetMsg(config.TKeyModeLocal),
		app.GetMsg(config.TKeyModeWeb),
	}, nil)

	sw.urlEntry = widget.NewEntry()
	sw.urlEntry.SetText(prefs.String(config.PrefCatalogURL))
	sw.urlEntry.PlaceHolder = config.PlaceholderURL

	sw.userEntry = widget.NewEntry()
	sw.userEntry.SetText(prefs.String(config.PrefCatalogUser))

	// A missing keyring entry just leaves the field empty.
	sw.passEntry = widget.NewPasswordEntry()
	if user := sw.userEntry.Text; user != "" {
		if pwd, err := keyring.Get(config.KeyringService, user); err == nil {
			sw.passEntry.SetText(pwd)
		}
	}

	sw.pathEntry = widget.NewEntry()
	sw.pathEntry.SetText(prefs.String(config.PrefCatalogPath))

	sw.langSelect = widget.NewSelect(app.SupportedLanguages, nil)
	sw.langSelect.SetSelected(prefs.StringWithFallback(config.PrefLanguage, config.DefaultLanguage))

	sw.entryInterval = NewNumericalEntry()
	sw.entryInterval.SetText(strconv.Itoa(prefs.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)))

	sw.entryPort = NewNumericalEntry()
	sw.entryPort.SetText(prefs.StringWithFallback(config.PrefServerPort, config.DefaultPort))
	sw.entryPort.Validator = app.validatePort

	return sw
}

// firstDayOptions lists Auto followed by the weekdays from Sunday, so the
// option index is the preference value plus one.
func (app *RangePickerApp) firstDayOptions() []string {
	opts := []string{app.GetMsg(config.TKeyFirstDayAuto)}
	for d := time.Sunday; d <= time.Saturday; d++ {
		opts = append(opts, app.weekdayName(d))
	}
	return opts
}

// validatePort checks the server port entry and returns a localized error.
func (app *RangePickerApp) validatePort(s string) error {
	if s == "" {
		return errors.New(app.GetMsg(config.TKeyErrPortReq))
	}
	port, err := strconv.Atoi(s)
	if err != nil {
		return errors.New(app.GetMsg(config.TKeyErrPortNum))
	}
	if port < config.MinPort || port > config.MaxPort {
		return errors.New(app.GetMsg(config.TKeyErrPortRange))
	}
	return nil
}

// buildBehaviourCard lays out the picker options: selects in a form, the
// boolean options as a two-column grid of checks.
func (app *RangePickerApp) buildBehaviourCard(sw *settingsWidgets) *widget.Card {
	maxSpan := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblDays)), sw.entryMaxSpan)

	form := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblFirstDay), sw.firstDaySelect),
		widget.NewFormItem(app.GetMsg(config.TKeyLblMaxSpan), maxSpan),
		widget.NewFormItem(app.GetMsg(config.TKeyLblWeekNumbers), sw.weekNumSelect),
	)
	checks := container.NewGridWithColumns(config.LayoutColumnsDouble,
		sw.checkLinked, sw.checkAutoApply,
		sw.checkSingle, sw.checkOutside,
		sw.checkAdjust, sw.checkAlwaysCal,
		sw.checkOneCal, sw.checkCustom,
		sw.checkDropdowns,
	)
	return widget.NewCard(app.GetMsg(config.TKeyLblBehaviour), "", container.NewVBox(form, checks))
}

// buildSourceCard constructs the catalog source selection UI.
func (app *RangePickerApp) buildSourceCard(w fyne.Window, sw *settingsWidgets, onLayoutChange func()) *widget.Card {
	browseBtn := widget.NewButton(app.GetMsg(config.TKeyBtnBrowse), func() {
		d := dialog.NewFileOpen(func(r fyne.URIReadCloser, err error) {
			if err == nil && r != nil {
				sw.pathEntry.SetText(r.URI().Path())
				_ = r.Close()
			}
		}, w)
		d.SetFilter(storage.NewExtensionFileFilter([]string{config.ExtICS, config.ExtICal}))
		d.Show()
	})

	webForm := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblURL), sw.urlEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblUser), sw.userEntry),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPass), sw.passEntry),
	)
	localForm := container.NewBorder(nil, nil, nil, browseBtn, sw.pathEntry)

	// Only the fields of the selected mode are shown.
	updateVis := func(label string) {
		webForm.Hide()
		localForm.Hide()
		switch app.modeFromLabel(label) {
		case config.CatalogModeWeb:
			webForm.Show()
		case config.CatalogModeLocal:
			localForm.Show()
		}
		if onLayoutChange != nil {
			onLayoutChange()
		}
	}
	sw.modeSelect.OnChanged = updateVis

	mode := app.Preferences.StringWithFallback(config.PrefCatalogMode, config.DefaultCatalogMode)
	sw.modeSelect.SetSelected(app.modeLabel(mode))
	updateVis(sw.modeSelect.Selected)

	return widget.NewCard(app.GetMsg(config.TKeyLblSource), "", container.NewVBox(sw.modeSelect, webForm, localForm))
}

// buildGeneralCard holds the application-wide settings.
func (app *RangePickerApp) buildGeneralCard(sw *settingsWidgets) *widget.Card {
	interval := container.NewBorder(nil, nil, nil, widget.NewLabel(app.GetMsg(config.TKeyLblMinutes)), sw.entryInterval)

	form := widget.NewForm(
		widget.NewFormItem(app.GetMsg(config.TKeyLblLanguage), sw.langSelect),
		widget.NewFormItem(app.GetMsg(config.TKeyLblRefresh), interval),
		widget.NewFormItem(app.GetMsg(config.TKeyLblPort), sw.entryPort),
	)
	return widget.NewCard(app.GetMsg(config.TKeyLblGeneral), "", form)
}

// modeLabel and modeFromLabel translate between catalog modes and the
// localized select options. Unknown values fall back to presets.
func (app *RangePickerApp) modeLabel(mode string) string {
	switch mode {
	case config.CatalogModeLocal:
		return app.GetMsg(config.TKeyModeLocal)
	case config.CatalogModeWeb:
		return app.GetMsg(config.TKeyModeWeb)
	}
	return app.GetMsg(config.TKeyModePresets)
}

func (app *RangePickerApp) modeFromLabel(label string) string {
	switch label {
	case app.GetMsg(config.TKeyModeLocal):
		return config.CatalogModeLocal
	case app.GetMsg(config.TKeyModeWeb):
		return config.CatalogModeWeb
	}
	return config.CatalogModePresets
}

// saveSettings persists the form, rebuilds the picker and reloads the catalog.
func (app *RangePickerApp) saveSettings(sw *settingsWidgets, w fyne.Window) {
	slog.Info(config.MsgSettingsSaved, config.LogKeyComponent, config.CompUISet)
	prefs := app.Preferences

	prefs.SetInt(config.PrefFirstDayOfWeek, sw.firstDaySelect.SelectedIndex()-1)
	prefs.SetBool(config.PrefLinked, sw.checkLinked.Checked)
	prefs.SetBool(config.PrefAutoApply, sw.checkAutoApply.Checked)
	prefs.SetBool(config.PrefSingleDate, sw.checkSingle.Checked)
	prefs.SetBool(config.PrefCloseOnOutside, sw.checkOutside.Checked)
	prefs.SetBool(config.PrefAutoAdjust, sw.checkAdjust.Checked)
	prefs.SetBool(config.PrefAlwaysShowCals, sw.checkAlwaysCal.Checked)
	prefs.SetBool(config.PrefOneCalendar, sw.checkOneCal.Checked)
	prefs.SetBool(config.PrefShowCustom, sw.checkCustom.Checked)
	prefs.SetBool(config.PrefShowDropdowns, sw.checkDropdowns.Checked)
	if i := sw.weekNumSelect.SelectedIndex(); i >= 0 {
		prefs.SetInt(config.PrefWeekNumbers, i)
	}

	// Anything but a positive number means unlimited.
	maxSpan := config.DefaultMaxSpanDays
	if v, err := strconv.Atoi(sw.entryMaxSpan.Text); err == nil && v > 0 {
		maxSpan = v
	}
	prefs.SetInt(config.PrefMaxSpanDays, maxSpan)

	prefs.SetString(config.PrefCatalogMode, app.modeFromLabel(sw.modeSelect.Selected))
	prefs.SetString(config.PrefCatalogURL, sw.urlEntry.Text)
	prefs.SetString(config.PrefCatalogUser, sw.userEntry.Text)
	prefs.SetString(config.PrefCatalogPath, sw.pathEntry.Text)

	// A keyring failure is logged but does not block the save.
	if sw.userEntry.Text != "" && sw.passEntry.Text != "" {
		if err := keyring.Set(config.KeyringService, sw.userEntry.Text, sw.passEntry.Text); err != nil {
			slog.Error(config.ErrKeyringSave, config.LogKeyError, err, config.LogKeyComponent, config.CompUISet)
		}
	}

	if sw.langSelect.Selected != "" {
		prefs.SetString(config.PrefLanguage, sw.langSelect.Selected)
	}

	// Empty or 0 disables the schedule.
	intervalText := sw.entryInterval.Text
	if intervalText == "" || intervalText == "0" {
		prefs.SetInt(config.PrefInterval, config.DisabledInterval)
		slog.Info(config.MsgRefreshOff, config.LogKeyComponent, config.CompUISet)
	} else if i, err := strconv.Atoi(intervalText); err == nil {
		prefs.SetInt(config.PrefInterval, i)
	}

	if sw.entryPort.Text != "" {
		prefs.SetString(config.PrefServerPort, sw.entryPort.Text)
	}

	// Apply in dependency order: labels first, then the picker built with
	// them, then a catalog fetch off the UI goroutine.
	app.UpdateLocalizer()
	app.RefreshTrayMenu()
	app.BuildPicker()
	go app.performReload(true)

	w.Close()
}
