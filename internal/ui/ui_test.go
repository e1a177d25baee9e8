package ui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/test"
	"fyne.io/fyne/v2/widget"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/tartampluch/go-rangepicker/internal/config"
	"github.com/tartampluch/go-rangepicker/internal/engine"
	"github.com/tartampluch/go-rangepicker/internal/server"
	"github.com/zalando/go-keyring"
)

// -----------------------------------------------------------------------------
// Mocks
// -----------------------------------------------------------------------------

// MockFetcher simulates the engine.CatalogFetcher interface using testify/mock.
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) Fetch(ctx context.Context, url, user, pass string) (io.ReadCloser, error) {
	args := m.Called(ctx, url, user, pass)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(io.ReadCloser), args.Error(1)
}

// MockClock controls time for deterministic testing.
type MockClock struct {
	CurrentTime time.Time
}

func (m MockClock) Now() time.Time {
	return m.CurrentTime
}

// MockTray implements minimal system tray functionality for headless testing.
type MockTray struct {
	Menu *fyne.Menu
}

func (m *MockTray) SetSystemTrayMenu(menu *fyne.Menu) {
	m.Menu = menu
}

func (m *MockTray) SetSystemTrayIcon(icon fyne.Resource) {}
func (m *MockTray) SetSystemTrayWindow(w fyne.Window)    {}
func (m *MockTray) Run()                                 {}
func (m *MockTray) Quit()                                {}

const teamFeed = "BEGIN:VCALENDAR\r\n" +
	"VERSION:2.0\r\n" +
	"PRODID:-//Test//Ranges//EN\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:sprint-5@test\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"SUMMARY:Sprint 5\r\n" +
	"DTSTART;VALUE=DATE:20240304\r\n" +
	"DTEND;VALUE=DATE:20240316\r\n" +
	"END:VEVENT\r\n" +
	"BEGIN:VEVENT\r\n" +
	"UID:q1@test\r\n" +
	"DTSTAMP:20240101T000000Z\r\n" +
	"SUMMARY:Q1\r\n" +
	"DTSTART;VALUE=DATE:20240101\r\n" +
	"DTEND;VALUE=DATE:20240401\r\n" +
	"END:VEVENT\r\n" +
	"END:VCALENDAR\r\n"

// -----------------------------------------------------------------------------
// Test Setup Helper
// -----------------------------------------------------------------------------

// setupTestApp initializes a headless Fyne app frozen on Friday 2024-03-15,
// with weeks starting on Monday and the English locale.
func setupTestApp(t *testing.T) (*RangePickerApp, *MockFetcher, *MockTray) {
	keyring.MockInit()
	a := test.NewApp()
	t.Cleanup(a.Quit)

	srv := server.NewRangeServer("0")
	fetcher := new(MockFetcher)
	mockTray := &MockTray{}

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	app := NewRangePickerApp(a, ctx, srv, fetcher, Overrides{})
	app.Tray = mockTray
	app.Clock = MockClock{CurrentTime: time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)}
	app.Preferences.SetString(config.PrefLanguage, "en")
	app.Preferences.SetInt(config.PrefFirstDayOfWeek, int(time.Monday))

	// Run() is skipped: wire the pieces it would.
	app.SetupI18n()
	app.initWindow()
	app.BuildPicker()

	return app, fetcher, mockTray
}

func day(y int, m time.Month, d int) engine.CalendarDate {
	return engine.NewCalendarDate(y, m, d)
}

// dayButton finds the button rendering d in one calendar of the open picker.
func dayButton(t *testing.T, app *RangePickerApp, side engine.Side, d engine.CalendarDate) *widget.Button {
	t.Helper()
	c := app.view.calendars[side]
	for i, cell := range c.cells {
		if cell.Date.Equal(d) && cell.InMonth {
			return c.days[i]
		}
	}
	require.FailNowf(t, "day not displayed", "%s is not shown on the %s calendar", d, side)
	return nil
}

// -----------------------------------------------------------------------------
// Localization Tests
// -----------------------------------------------------------------------------

func TestLocalization_Switching(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, "Settings...", app.GetMsg(config.TKeyMenuSettings))

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	assert.Equal(t, "Paramètres...", app.GetMsg(config.TKeyMenuSettings))

	// The command line override wins over the preference.
	app.Overrides.Language = "en"
	app.UpdateLocalizer()
	assert.Equal(t, "Settings...", app.GetMsg(config.TKeyMenuSettings))
}

func TestLocalization_MissingKey(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, "no_such_key", app.GetMsg("no_such_key"))
}

func TestLocalization_Dates(t *testing.T) {
	app, _, _ := setupTestApp(t)
	r := engine.NewDateRange(day(2024, 3, 9), day(2024, 3, 15))

	assert.Equal(t, "03/15/2024", app.formatDate(day(2024, 3, 15)))
	assert.Equal(t, "03/09/2024 - 03/15/2024", app.formatRange(r))
	assert.Equal(t, "03/15/2024", app.formatRange(engine.SingleDay(day(2024, 3, 15))))
	assert.Equal(t, config.FallbackNoSelected, app.formatDate(engine.CalendarDate{}))
	assert.Equal(t, "March 2024", app.monthTitle(engine.MonthOf(day(2024, 3, 1), time.Monday)))
	assert.Equal(t, "Sun", app.weekdayName(time.Sunday))

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()

	assert.Equal(t, "15/03/2024", app.formatDate(day(2024, 3, 15)))
	assert.Equal(t, "mars 2024", app.monthTitle(engine.MonthOf(day(2024, 3, 1), time.Monday)))
	assert.Equal(t, "lun.", app.weekdayName(time.Monday))
}

func TestFirstDayForLanguage(t *testing.T) {
	tests := []struct {
		lang string
		want time.Weekday
	}{
		{"en", time.Sunday},
		{"en-US", time.Sunday},
		{"en-GB", time.Monday},
		{"fr", time.Monday},
		{"fr-CA", time.Sunday},
		{"de", time.Monday},
		{"ja", time.Sunday},
		{"pt-BR", time.Sunday},
	}

	for _, tt := range tests {
		t.Run(tt.lang, func(t *testing.T) {
			assert.Equal(t, tt.want, firstDayForLanguage(tt.lang))
		})
	}
}

func TestFirstDayOfWeek_Preference(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.Preferences.SetInt(config.PrefFirstDayOfWeek, int(time.Wednesday))
	assert.Equal(t, time.Wednesday, app.firstDayOfWeek())

	app.Preferences.SetInt(config.PrefFirstDayOfWeek, config.FirstDayAuto)
	assert.Equal(t, time.Sunday, app.firstDayOfWeek(), "en resolves to the US convention")

	app.Preferences.SetString(config.PrefLanguage, "fr")
	assert.Equal(t, time.Monday, app.firstDayOfWeek())
}

// -----------------------------------------------------------------------------
// Configuration & Preferences Tests
// -----------------------------------------------------------------------------

func TestNewRangePickerApp_Defaults(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.NotNil(t, app.App.Icon())
	assert.Equal(t, []string{"en", "fr"}, app.SupportedLanguages)
	assert.NotNil(t, app.Window)
	assert.NotNil(t, app.unsubscribe)
}

func TestPickerOptions_FromPreferences(t *testing.T) {
	app, _, _ := setupTestApp(t)

	opts := app.pickerOptions()
	assert.False(t, opts.SingleDate)
	assert.False(t, opts.AutoApply)
	assert.True(t, opts.Linked, "linked calendars are the default")
	assert.True(t, opts.CloseOnOutsideClick)
	assert.True(t, opts.AutoAdjustCalendars)
	assert.Zero(t, opts.Constraints.MaxSpan)
	assert.Equal(t, "Custom Range", opts.CustomRangeLabel)
	assert.Equal(t, time.Monday, opts.FirstDayOfWeek)

	app.Preferences.SetBool(config.PrefLinked, false)
	app.Preferences.SetInt(config.PrefMaxSpanDays, 10)
	app.Overrides.SingleDate = true

	opts = app.pickerOptions()
	assert.True(t, opts.SingleDate)
	assert.False(t, opts.Linked)
	assert.Equal(t, engine.MaxSpanDays(10), opts.Constraints.MaxSpan)
}

func TestLoadCatalogConfig(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, engine.LoadConfig{Mode: config.CatalogModePresets}, app.loadCatalogConfig())

	app.Preferences.SetString(config.PrefCatalogMode, config.CatalogModeWeb)
	app.Preferences.SetString(config.PrefCatalogURL, "https://secure.example.com/ranges.ics")
	app.Preferences.SetString(config.PrefCatalogUser, "admin")
	require.NoError(t, keyring.Set(config.KeyringService, "admin", "hunter2"))

	cfg := app.loadCatalogConfig()
	assert.Equal(t, config.CatalogModeWeb, cfg.Mode)
	assert.Equal(t, "https://secure.example.com/ranges.ics", cfg.WebURL)
	assert.Equal(t, "admin", cfg.WebUser)
	assert.Equal(t, "hunter2", cfg.WebPass)
}

func TestLoadCatalogConfig_Override(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefCatalogMode, config.CatalogModeWeb)
	app.Preferences.SetString(config.PrefCatalogURL, "https://ignored.example.com")

	tests := []struct {
		source string
		want   engine.LoadConfig
	}{
		{"http://intranet/ranges.ics", engine.LoadConfig{Mode: config.CatalogModeWeb, WebURL: "http://intranet/ranges.ics"}},
		{"https://example.com/r.ics", engine.LoadConfig{Mode: config.CatalogModeWeb, WebURL: "https://example.com/r.ics"}},
		{"/home/me/ranges.ics", engine.LoadConfig{Mode: config.CatalogModeLocal, LocalPath: "/home/me/ranges.ics"}},
		{"httpfiles/ranges.ics", engine.LoadConfig{Mode: config.CatalogModeLocal, LocalPath: "httpfiles/ranges.ics"}},
	}

	for _, tt := range tests {
		t.Run(tt.source, func(t *testing.T) {
			app.Overrides.CatalogSource = tt.source
			assert.Equal(t, tt.want, app.loadCatalogConfig())
		})
	}
}

func TestConfiguration_WorkerSignal(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.watchPreferences()

	signalReceived := make(chan bool)
	go func() {
		select {
		case key := <-app.configChan:
			signalReceived <- key == config.PrefInterval
		case <-time.After(500 * time.Millisecond):
			signalReceived <- false
		}
	}()

	app.Preferences.SetInt(config.PrefInterval, 120)

	assert.True(t, <-signalReceived, "Changing interval should notify background worker")
}

func TestRefreshInterval(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, time.Duration(config.DefaultRefreshMin)*time.Minute, app.refreshInterval())

	app.Preferences.SetInt(config.PrefInterval, 15)
	assert.Equal(t, 15*time.Minute, app.refreshInterval())

	app.Preferences.SetInt(config.PrefInterval, config.DisabledInterval)
	assert.Zero(t, app.refreshInterval())
}

func TestBackgroundWorker_StopsOnCancel(t *testing.T) {
	app, _, _ := setupTestApp(t)
	ctx, cancel := context.WithCancel(context.Background())
	app.Ctx = ctx
	app.Preferences.SetInt(config.PrefInterval, config.DisabledInterval)

	done := make(chan struct{})
	go func() {
		app.backgroundWorker()
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("worker did not stop after cancellation")
	}
}

// -----------------------------------------------------------------------------
// Catalog Reload Tests
// -----------------------------------------------------------------------------

func TestPerformReload_Presets(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)

	app.performReload(false)

	fetcher.AssertNotCalled(t, "Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	labels := app.Picker.Catalog().Labels()
	require.Len(t, labels, 6)
	assert.Equal(t, "Today", labels[0])
	assert.Equal(t, "Last Month", labels[5])
}

func TestPerformReload_Web(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefCatalogMode, config.CatalogModeWeb)
	app.Preferences.SetString(config.PrefCatalogURL, "http://test.local/ranges.ics")

	fetcher.On("Fetch", mock.Anything, "http://test.local/ranges.ics", "", "").
		Return(io.NopCloser(strings.NewReader(teamFeed)), nil)

	app.performReload(true)

	fetcher.AssertExpectations(t)
	assert.Equal(t, []string{"Sprint 5", "Q1"}, app.Picker.Catalog().Labels())
}

func TestPerformReload_FailureKeepsCatalog(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	app.Preferences.SetString(config.PrefCatalogMode, config.CatalogModeWeb)
	app.Preferences.SetString(config.PrefCatalogURL, "http://test.local/ranges.ics")

	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(nil, errors.New("connection refused"))

	before := app.Picker.Catalog()
	app.performReload(true)

	fetcher.AssertExpectations(t)
	assert.Same(t, before, app.Picker.Catalog())
}

func TestReloadErrorKey(t *testing.T) {
	denied := fmt.Errorf("%s: %w", config.ErrCatalogLoad, &engine.FetchError{Status: http.StatusUnauthorized, Err: errors.New("401")})
	missing := &engine.FetchError{Status: http.StatusNotFound, Err: errors.New("404")}

	assert.Equal(t, config.TKeyNotifAuth, reloadErrorKey(denied))
	assert.Equal(t, config.TKeyNotifError, reloadErrorKey(missing))
	assert.Equal(t, config.TKeyNotifError, reloadErrorKey(errors.New("connection refused")))
}

func TestPerformReload_RelabelsSelection(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	app.Picker.SetRange(engine.NewDateRange(day(2024, 3, 4), day(2024, 3, 15)))
	assert.Equal(t, "Custom Range", app.Picker.ChosenLabel())

	app.Preferences.SetString(config.PrefCatalogMode, config.CatalogModeWeb)
	app.Preferences.SetString(config.PrefCatalogURL, "http://test.local/ranges.ics")
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(teamFeed)), nil)

	app.performReload(false)

	assert.Equal(t, "Sprint 5", app.Picker.ChosenLabel())
	assert.Equal(t, "Sprint 5 (03/04/2024 - 03/15/2024)", app.view.toggleBtn.Text)
}

// -----------------------------------------------------------------------------
// Tray & Publishing Tests
// -----------------------------------------------------------------------------

func TestTrayMenu_Localized(t *testing.T) {
	app, _, mockTray := setupTestApp(t)
	app.setupTrayMenu()

	require.NotNil(t, mockTray.Menu)
	assert.Equal(t, config.FallbackTrayLabel, app.TrayStatusItem.Label)
	assert.Equal(t, "Reload Ranges", app.TrayReloadItem.Label)

	app.Preferences.SetString(config.PrefLanguage, "fr")
	app.UpdateLocalizer()
	app.RefreshTrayMenu()

	assert.Equal(t, "Recharger les périodes", app.TrayReloadItem.Label)
	assert.Equal(t, "Paramètres...", app.TraySettingsItem.Label)
}

func TestPublish_UpdatesServerAndTray(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.setupTrayMenu()

	app.publish(engine.NewDateRange(day(2024, 3, 9), day(2024, 3, 15)), "Last 7 Days")

	r, label, ok := app.Server.Current()
	require.True(t, ok)
	assert.Equal(t, engine.NewDateRange(day(2024, 3, 9), day(2024, 3, 15)), r)
	assert.Equal(t, "Last 7 Days", label)
	assert.Equal(t, "Last 7 Days (03/09/2024 - 03/15/2024)", app.TrayStatusItem.Label)
}

func TestPublish_IncompleteRangeIgnored(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.setupTrayMenu()

	app.publish(engine.DateRange{}, "nothing")

	_, _, ok := app.Server.Current()
	assert.False(t, ok)
	assert.Equal(t, config.FallbackTrayLabel, app.TrayStatusItem.Label)
}

func TestDayLabel_MarksCatalogStarts(t *testing.T) {
	app, _, _ := setupTestApp(t)

	assert.Equal(t, "Today", app.dayLabel(day(2024, 3, 15)))
	assert.Equal(t, "This Month", app.dayLabel(day(2024, 3, 1)))
	assert.Empty(t, app.dayLabel(day(2024, 3, 20)))
}

// -----------------------------------------------------------------------------
// Picker View Tests
// -----------------------------------------------------------------------------

func TestPickerView_InitialState(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view

	assert.Equal(t, "03/15/2024 - 04/15/2024", v.toggleBtn.Text)
	assert.Equal(t, "2024-03-15", v.startEntry.Text)
	assert.Equal(t, "2024-04-15", v.endEntry.Text)
	assert.False(t, v.panel.Visible())
	assert.False(t, v.backdrop.Visible())
}

func TestPickerView_ToggleOpensPanel(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view

	test.Tap(v.toggleBtn)

	require.True(t, app.Picker.IsOpen())
	assert.True(t, v.panel.Visible())
	assert.True(t, v.backdrop.Visible())
	assert.True(t, v.calendarsBox.Visible(), "a custom selection shows the calendars")
	assert.True(t, v.controls.Visible())

	assert.Len(t, v.rangeButtons, 7, "six presets plus the custom range")
	assert.Equal(t, widget.HighImportance, v.rangeButtons["Custom Range"].Importance)
	assert.Equal(t, widget.LowImportance, v.rangeButtons["Today"].Importance)

	assert.Equal(t, "March 2024", v.calendars[engine.SideLeft].title.Text)
	assert.Equal(t, "April 2024", v.calendars[engine.SideRight].title.Text)
	assert.Equal(t, "Mon", v.calendars[engine.SideLeft].headers[0].Text)
	assert.False(t, v.calendars[engine.SideLeft].weekCol.Visible())

	test.Tap(v.toggleBtn)
	assert.False(t, app.Picker.IsOpen())
	assert.False(t, v.panel.Visible())
}

func TestPickerView_DayPickAndApply(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.setupTrayMenu()
	v := app.view
	test.Tap(v.toggleBtn)

	test.Tap(dayButton(t, app, engine.SideLeft, day(2024, 3, 18)))

	assert.Equal(t, engine.StatePickingEnd, app.Picker.State())
	assert.True(t, v.applyBtn.Disabled(), "apply waits for the second click")
	assert.Equal(t, widget.HighImportance, dayButton(t, app, engine.SideLeft, day(2024, 3, 18)).Importance)

	test.Tap(dayButton(t, app, engine.SideLeft, day(2024, 3, 22)))

	assert.Equal(t, engine.StatePickingStart, app.Picker.State())
	assert.False(t, v.applyBtn.Disabled())
	assert.Equal(t, widget.MediumImportance, dayButton(t, app, engine.SideLeft, day(2024, 3, 20)).Importance)
	_, _, published := app.Server.Current()
	assert.False(t, published, "nothing is published before apply")

	test.Tap(v.applyBtn)

	assert.False(t, app.Picker.IsOpen())
	r, label, ok := app.Server.Current()
	require.True(t, ok)
	assert.Equal(t, engine.NewDateRange(day(2024, 3, 18), day(2024, 3, 22)), r)
	assert.Equal(t, "Custom Range", label)
	assert.Equal(t, "Custom Range (03/18/2024 - 03/22/2024)", app.TrayStatusItem.Label)
	assert.Equal(t, "03/18/2024 - 03/22/2024", v.toggleBtn.Text)
}

func TestPickerView_PredefinedRange(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view
	test.Tap(v.toggleBtn)

	test.Tap(v.rangeButtons["Last 7 Days"])

	assert.True(t, app.Picker.IsOpen(), "without auto-apply the choice waits for confirmation")
	assert.False(t, v.calendarsBox.Visible())
	assert.True(t, v.controls.Visible())
	assert.Equal(t, widget.HighImportance, v.rangeButtons["Last 7 Days"].Importance)

	test.Tap(v.applyBtn)

	r, label, ok := app.Server.Current()
	require.True(t, ok)
	assert.Equal(t, engine.NewDateRange(day(2024, 3, 9), day(2024, 3, 15)), r)
	assert.Equal(t, "Last 7 Days", label)
	assert.Equal(t, "Last 7 Days (03/09/2024 - 03/15/2024)", v.toggleBtn.Text)
}

func TestPickerView_CustomRangeButtonShowsCalendars(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view
	test.Tap(v.toggleBtn)
	test.Tap(v.rangeButtons["Today"])
	require.False(t, v.calendarsBox.Visible())

	test.Tap(v.rangeButtons["Custom Range"])

	assert.True(t, v.calendarsBox.Visible())
}

func TestPickerView_AutoApplyHidesControls(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetBool(config.PrefAutoApply, true)
	app.BuildPicker()
	v := app.view
	test.Tap(v.toggleBtn)

	assert.False(t, v.controls.Visible())

	test.Tap(v.rangeButtons["Yesterday"])

	assert.False(t, app.Picker.IsOpen())
	r, label, ok := app.Server.Current()
	require.True(t, ok)
	assert.Equal(t, engine.SingleDay(day(2024, 3, 14)), r)
	assert.Equal(t, "Yesterday", label)
}

func TestPickerView_SingleDate(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Overrides.SingleDate = true
	app.BuildPicker()
	v := app.view

	assert.True(t, v.endEntry.Disabled())
	test.Tap(v.toggleBtn)
	require.Equal(t, "Today", app.Picker.ChosenLabel(), "the kept start collapses onto today")
	test.Tap(v.rangeButtons["Custom Range"])
	test.Tap(dayButton(t, app, engine.SideLeft, day(2024, 3, 20)))

	assert.False(t, app.Picker.IsOpen(), "a single click applies and closes")
	r, _, ok := app.Server.Current()
	require.True(t, ok)
	assert.Equal(t, engine.SingleDay(day(2024, 3, 20)), r)
	assert.Equal(t, "03/20/2024", v.toggleBtn.Text)
}

func TestPickerView_OutsideClickRollsBack(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view
	test.Tap(v.toggleBtn)
	test.Tap(dayButton(t, app, engine.SideLeft, day(2024, 3, 18)))
	require.Equal(t, engine.StatePickingEnd, app.Picker.State())

	test.Tap(v.backdrop)

	assert.False(t, app.Picker.IsOpen())
	assert.Equal(t, day(2024, 3, 15), app.Picker.StartDate())
	assert.Equal(t, day(2024, 4, 15), app.Picker.EndDate())
	_, _, ok := app.Server.Current()
	assert.False(t, ok)
}

func TestPickerView_OutsideClickIgnoredWhenDisabled(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetBool(config.PrefCloseOnOutside, false)
	app.BuildPicker()
	v := app.view
	test.Tap(v.toggleBtn)

	test.Tap(v.backdrop)

	assert.True(t, app.Picker.IsOpen())
}

func TestPickerView_PanelSwallowsTaps(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view
	test.Tap(v.toggleBtn)

	test.Tap(v.panel)

	assert.True(t, app.Picker.IsOpen())
}

func TestPickerView_CancelButton(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view
	test.Tap(v.toggleBtn)
	test.Tap(dayButton(t, app, engine.SideLeft, day(2024, 3, 18)))
	test.Tap(dayButton(t, app, engine.SideLeft, day(2024, 3, 19)))

	test.Tap(v.cancelBtn)

	assert.False(t, app.Picker.IsOpen())
	assert.Equal(t, day(2024, 3, 15), app.Picker.StartDate())
	assert.Equal(t, "03/15/2024 - 04/15/2024", v.toggleBtn.Text)
}

func TestPickerView_LinkedNavigation(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view
	test.Tap(v.toggleBtn)

	test.Tap(v.calendars[engine.SideRight].nextBtn)

	assert.Equal(t, "April 2024", v.calendars[engine.SideLeft].title.Text)
	assert.Equal(t, "May 2024", v.calendars[engine.SideRight].title.Text)

	test.Tap(v.calendars[engine.SideLeft].prevBtn)

	assert.Equal(t, "March 2024", v.calendars[engine.SideLeft].title.Text)
	assert.Equal(t, "April 2024", v.calendars[engine.SideRight].title.Text)
}

func TestPickerView_MaxSpanDisablesCells(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetInt(config.PrefMaxSpanDays, 3)
	app.BuildPicker()
	test.Tap(app.view.toggleBtn)

	test.Tap(dayButton(t, app, engine.SideLeft, day(2024, 3, 18)))

	assert.False(t, dayButton(t, app, engine.SideLeft, day(2024, 3, 21)).Disabled(), "exactly the max span is allowed")
	assert.True(t, dayButton(t, app, engine.SideLeft, day(2024, 3, 22)).Disabled())
	assert.True(t, dayButton(t, app, engine.SideLeft, day(2024, 3, 14)).Disabled())
	assert.False(t, dayButton(t, app, engine.SideLeft, day(2024, 3, 15)).Disabled())
}

func TestPickerView_WeekNumbers(t *testing.T) {
	tests := []struct {
		name      string
		numbering engine.WeekNumbering
		firstRow  string
	}{
		// January 2021 opens in ISO week 53 of 2020, but in local week 1.
		{"ISO", engine.WeekNumbersISO, "53"},
		{"Locale", engine.WeekNumbersLocale, "1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			app, _, _ := setupTestApp(t)
			app.Preferences.SetInt(config.PrefWeekNumbers, int(tt.numbering))
			app.BuildPicker()
			app.Picker.SetRange(engine.NewDateRange(day(2021, 1, 4), day(2021, 2, 4)))
			test.Tap(app.view.toggleBtn)

			c := app.view.calendars[engine.SideLeft]
			assert.True(t, c.weekCol.Visible())
			assert.Equal(t, tt.firstRow, c.weekNums[0].Text)
		})
	}
}

func TestPickerView_OneCalendar(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetBool(config.PrefOneCalendar, true)
	app.BuildPicker()
	v := app.view

	test.Tap(v.toggleBtn)
	require.True(t, v.calendarsBox.Visible())
	assert.True(t, v.calendars[engine.SideLeft].object.Visible())
	assert.False(t, v.calendars[engine.SideRight].object.Visible())

	test.Tap(v.calendars[engine.SideLeft].nextBtn)
	assert.Equal(t, "April 2024", v.calendars[engine.SideLeft].title.Text)
	assert.NotEqual(t, app.Picker.LeftMonth(), app.Picker.RightMonth())
}

func TestPickerView_HideCustomRange(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetBool(config.PrefShowCustom, false)
	app.BuildPicker()
	v := app.view

	test.Tap(v.toggleBtn)

	assert.Len(t, v.rangeButtons, 6, "presets only")
	assert.NotContains(t, v.rangeButtons, "Custom Range")
	assert.True(t, v.calendarsBox.Visible(), "an unmatched selection still shows the calendars")
}

func TestPickerView_Dropdowns(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view
	test.Tap(v.toggleBtn)

	c := v.calendars[engine.SideLeft]
	require.True(t, c.dropdowns.Visible())
	assert.Equal(t, "March", c.monthSelect.Selected)
	assert.Equal(t, "2024", c.yearSelect.Selected)
	assert.Len(t, c.monthSelect.Options, 12)

	c.yearSelect.SetSelected("2026")
	assert.Equal(t, "2026-03", app.Picker.LeftMonth().String())
	assert.Equal(t, "2026-04", app.Picker.RightMonth().String(), "linked calendars keep their gap")
	assert.Equal(t, "March 2026", c.title.Text)

	c.monthSelect.SetSelected("December")
	assert.Equal(t, "2026-12", app.Picker.LeftMonth().String())
	assert.Equal(t, "2026", c.yearSelect.Selected)

	app.Preferences.SetBool(config.PrefShowDropdowns, false)
	app.BuildPicker()
	test.Tap(app.view.toggleBtn)
	assert.False(t, app.view.calendars[engine.SideLeft].dropdowns.Visible())
}

func TestPickerView_SubmitDates(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view

	v.startEntry.SetText("2024-05-10")
	v.endEntry.SetText("2024-05-01")
	test.Tap(v.setBtn)

	assert.Equal(t, day(2024, 5, 1), app.Picker.StartDate(), "typed dates are reordered")
	assert.Equal(t, day(2024, 5, 10), app.Picker.EndDate())
	assert.Equal(t, "2024-05-01", v.startEntry.Text)

	v.startEntry.SetText("2024-13-40")
	test.Tap(v.setBtn)

	assert.Equal(t, day(2024, 5, 1), app.Picker.StartDate(), "an invalid date changes nothing")
}

func TestPickerView_SubmitStartOnly(t *testing.T) {
	app, _, _ := setupTestApp(t)
	v := app.view

	v.startEntry.SetText("2024-06-01")
	v.endEntry.SetText("")
	test.Tap(v.setBtn)

	assert.Equal(t, engine.SingleDay(day(2024, 6, 1)), engine.DateRange{Start: app.Picker.StartDate(), End: app.Picker.EndDate()})
}

func TestBuildPicker_KeepsSelectionAndCatalog(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Picker.SetRange(engine.NewDateRange(day(2024, 2, 1), day(2024, 2, 29)))
	catalog := app.Picker.Catalog()
	old := app.Picker

	app.Preferences.SetInt(config.PrefFirstDayOfWeek, int(time.Sunday))
	app.BuildPicker()

	assert.NotSame(t, old, app.Picker)
	assert.Same(t, catalog, app.Picker.Catalog())
	assert.Equal(t, day(2024, 2, 1), app.Picker.StartDate())
	assert.Equal(t, day(2024, 2, 29), app.Picker.EndDate())
	assert.Equal(t, time.Sunday, app.Picker.FirstDayOfWeek())
	assert.Equal(t, "Last Month", app.Picker.ChosenLabel())
}

// -----------------------------------------------------------------------------
// Settings Tests
// -----------------------------------------------------------------------------

func TestValidatePort(t *testing.T) {
	app, _, _ := setupTestApp(t)

	tests := []struct {
		input string
		key   string
	}{
		{"", config.TKeyErrPortReq},
		{"80a", config.TKeyErrPortNum},
		{"0", config.TKeyErrPortRange},
		{"70000", config.TKeyErrPortRange},
		{"8080", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			err := app.validatePort(tt.input)
			if tt.key == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, app.GetMsg(tt.key), err.Error())
		})
	}
}

func TestSettings_ModeLabels(t *testing.T) {
	app, _, _ := setupTestApp(t)

	for _, mode := range []string{config.CatalogModePresets, config.CatalogModeLocal, config.CatalogModeWeb} {
		assert.Equal(t, mode, app.modeFromLabel(app.modeLabel(mode)))
	}
	assert.Equal(t, config.CatalogModePresets, app.modeFromLabel("unknown"))
}

func TestSettings_PrefilledFromPreferences(t *testing.T) {
	app, _, _ := setupTestApp(t)
	app.Preferences.SetInt(config.PrefMaxSpanDays, 14)
	app.Preferences.SetString(config.PrefCatalogUser, "admin")
	require.NoError(t, keyring.Set(config.KeyringService, "admin", "hunter2"))

	sw := app.newSettingsWidgets()

	assert.Equal(t, "Mon", sw.firstDaySelect.Selected)
	assert.True(t, sw.checkLinked.Checked)
	assert.False(t, sw.checkAutoApply.Checked)
	assert.Equal(t, "14", sw.entryMaxSpan.Text)
	assert.Equal(t, "hunter2", sw.passEntry.Text)
	assert.Equal(t, config.DefaultPort, sw.entryPort.Text)
	assert.Equal(t, "en", sw.langSelect.Selected)
}

func TestSettings_Save(t *testing.T) {
	app, fetcher, _ := setupTestApp(t)
	app.setupTrayMenu()
	fetcher.On("Fetch", mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(io.NopCloser(strings.NewReader(teamFeed)), nil).Maybe()

	w := app.App.NewWindow("settings")
	sw := app.newSettingsWidgets()
	app.buildSourceCard(w, sw, nil)

	sw.firstDaySelect.SetSelected(app.GetMsg(config.TKeyFirstDayAuto))
	sw.checkSingle.SetChecked(true)
	sw.weekNumSelect.SetSelectedIndex(int(engine.WeekNumbersLocale))
	sw.checkOneCal.SetChecked(true)
	sw.checkCustom.SetChecked(false)
	sw.checkDropdowns.SetChecked(false)
	sw.entryMaxSpan.SetText("7")
	sw.modeSelect.SetSelected(app.GetMsg(config.TKeyModeWeb))
	sw.urlEntry.SetText("https://example.com/ranges.ics")
	sw.userEntry.SetText("alice")
	sw.passEntry.SetText("s3cret")
	sw.langSelect.SetSelected("fr")
	sw.entryInterval.SetText("")

	app.saveSettings(sw, w)

	prefs := app.Preferences
	assert.Equal(t, config.FirstDayAuto, prefs.Int(config.PrefFirstDayOfWeek))
	assert.True(t, prefs.Bool(config.PrefSingleDate))
	assert.Equal(t, int(engine.WeekNumbersLocale), prefs.Int(config.PrefWeekNumbers))
	assert.True(t, prefs.Bool(config.PrefOneCalendar))
	assert.False(t, prefs.BoolWithFallback(config.PrefShowCustom, true))
	assert.False(t, prefs.BoolWithFallback(config.PrefShowDropdowns, true))
	assert.Equal(t, 7, prefs.Int(config.PrefMaxSpanDays))
	assert.Equal(t, config.CatalogModeWeb, prefs.String(config.PrefCatalogMode))
	assert.Equal(t, "https://example.com/ranges.ics", prefs.String(config.PrefCatalogURL))
	assert.Equal(t, "alice", prefs.String(config.PrefCatalogUser))
	assert.Equal(t, config.DisabledInterval, prefs.Int(config.PrefInterval))
	assert.Equal(t, "fr", prefs.String(config.PrefLanguage))

	pass, err := keyring.Get(config.KeyringService, "alice")
	require.NoError(t, err)
	assert.Equal(t, "s3cret", pass)

	// The picker is rebuilt with the new behaviour and language.
	assert.True(t, app.Picker.SingleDate())
	assert.Equal(t, time.Monday, app.Picker.FirstDayOfWeek(), "Auto resolves from fr")
	assert.Equal(t, engine.MaxSpanDays(7), app.Picker.Constraints().MaxSpan)
	assert.True(t, app.Picker.OneCalendar())
	_, ok := app.Picker.WeekNumbers(engine.SideLeft)
	assert.True(t, ok, "local week numbers are on")
	assert.Equal(t, "Période personnalisée", app.Picker.CustomRangeLabel())
	assert.Equal(t, "Paramètres...", app.TraySettingsItem.Label)
}

func TestSettingsWindow_Singleton(t *testing.T) {
	app, _, _ := setupTestApp(t)

	app.ShowSettingsWindow()
	first := app.settingsWindow
	require.NotNil(t, first)

	app.ShowSettingsWindow()
	assert.Same(t, first, app.settingsWindow)

	first.Close()
	assert.Nil(t, app.settingsWindow)
}
