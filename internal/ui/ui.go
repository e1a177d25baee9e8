package ui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-rangepicker/internal/config"
	"github.com/tartampluch/go-rangepicker/internal/engine"
	"github.com/tartampluch/go-rangepicker/internal/server"
	"github.com/zalando/go-keyring"
)

// Overrides carries command line settings. Non-zero values win over the saved
// preferences for the lifetime of the process.
type Overrides struct {
	Language      string
	SingleDate    bool
	CatalogSource string // file path or http(s) URL
}

// RangePickerApp hosts the picker engine in a Fyne window with a tray menu,
// and publishes every applied selection through the local server.
type RangePickerApp struct {
	App         fyne.App
	Window      fyne.Window
	Preferences fyne.Preferences
	I18nBundle  *i18n.Bundle
	Localizer   *i18n.Localizer
	i18nMu      sync.RWMutex
	Ctx         context.Context

	Server    *server.RangeServer
	Fetcher   engine.CatalogFetcher
	Clock     engine.Clock
	Overrides Overrides

	// Picker and view are only touched from the Fyne event goroutine.
	Picker      *engine.Picker
	view        *pickerView
	unsubscribe func()

	Tray desktop.App
	Menu *fyne.Menu

	TrayStatusItem   *fyne.MenuItem
	TrayOpenItem     *fyne.MenuItem
	TrayReloadItem   *fyne.MenuItem
	TrayCatalogItem  *fyne.MenuItem
	TraySettingsItem *fyne.MenuItem

	SupportedLanguages []string
	configChan         chan string

	settingsWindow fyne.Window
	catalogWindow  fyne.Window
	catalog        *catalogView
}

// NewRangePickerApp constructs the application and wires dependencies.
func NewRangePickerApp(a fyne.App, ctx context.Context, srv *server.RangeServer, fetcher engine.CatalogFetcher, overrides Overrides) *RangePickerApp {
	a.SetIcon(theme.CalendarIcon())

	return &RangePickerApp{
		App:                a,
		Preferences:        a.Preferences(),
		Ctx:                ctx,
		Server:             srv,
		Fetcher:            fetcher,
		Clock:              engine.RealClock{},
		Overrides:          overrides,
		SupportedLanguages: config.SupportedLanguages,
		configChan:         make(chan string, config.ChannelBufferSize),
	}
}

// Run launches the application services and the main UI loop.
func (app *RangePickerApp) Run() {
	app.SetupI18n()
	app.watchPreferences()
	app.initWindow()
	app.BuildPicker()

	go func() {
		if err := app.Server.Start(app.Ctx); err != nil {
			slog.Error(config.ErrServerStartup,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)

			app.App.SendNotification(fyne.NewNotification(
				config.TitleStartupError,
				fmt.Sprintf(config.MsgPortBusy, app.Server.Port)))
		}
	}()

	if desk, ok := app.App.(desktop.App); ok {
		app.Tray = desk
		app.Tray.SetSystemTrayIcon(app.App.Icon())
		app.setupTrayMenu()
		// Closing the window keeps the tray alive.
		app.Window.SetCloseIntercept(app.Window.Hide)
	} else {
		slog.Warn(config.ErrTrayNotSupported,
			config.LogKeyComponent, config.CompUI)
	}

	go app.backgroundWorker()
	app.Window.Show()
	app.App.Run()
}

func (app *RangePickerApp) initWindow() {
	w := app.App.NewWindow(app.GetMsg(config.TKeyWinTitle))
	w.Resize(fyne.NewSize(config.MainWindowWidth, config.MainWindowHeight))
	app.Window = w
}

// watchPreferences wakes the worker when settings change.
func (app *RangePickerApp) watchPreferences() {
	app.Preferences.AddChangeListener(func() {
		select {
		case app.configChan <- config.PrefInterval:
		default:
		}
	})
}

// BuildPicker (re)creates the engine from the current preferences. The
// selection and the catalog survive a rebuild.
func (app *RangePickerApp) BuildPicker() {
	opts := app.pickerOptions()

	if app.Picker != nil {
		opts.Start = app.Picker.StartDate()
		opts.End = app.Picker.EndDate()
		opts.Catalog = app.Picker.Catalog()
	} else {
		opts.Catalog = engine.StandardRanges(engine.Today(app.Clock), app.GetMsg)
	}
	if app.unsubscribe != nil {
		app.unsubscribe()
	}

	app.Picker = engine.NewPicker(opts)
	app.unsubscribe = app.Picker.Subscribe(app.onPickerEvent)
	app.view = newPickerView(app)

	if app.Window != nil {
		app.Window.SetTitle(app.GetMsg(config.TKeyWinTitle))
		app.Window.SetContent(app.view.content)
	}
}

// pickerOptions maps the saved preferences onto engine options.
func (app *RangePickerApp) pickerOptions() engine.Options {
	prefs := app.Preferences

	return engine.Options{
		SingleDate:          app.Overrides.SingleDate || prefs.Bool(config.PrefSingleDate),
		AutoApply:           prefs.Bool(config.PrefAutoApply),
		Linked:              prefs.BoolWithFallback(config.PrefLinked, config.DefaultLinked),
		CloseOnOutsideClick: prefs.BoolWithFallback(config.PrefCloseOnOutside, config.DefaultCloseOutside),
		AutoAdjustCalendars: prefs.BoolWithFallback(config.PrefAutoAdjust, config.DefaultAutoAdjust),
		AlwaysShowCalendars: prefs.Bool(config.PrefAlwaysShowCals),

		ShowOnlyOneCalendar:  prefs.Bool(config.PrefOneCalendar),
		HideCustomRangeLabel: !prefs.BoolWithFallback(config.PrefShowCustom, config.DefaultShowCustom),
		WeekNumbers:          engine.WeekNumbering(prefs.Int(config.PrefWeekNumbers)),

		Constraints: engine.Constraints{
			MaxSpan: engine.MaxSpanDays(prefs.IntWithFallback(config.PrefMaxSpanDays, config.DefaultMaxSpanDays)),
		},
		CustomRangeLabel: app.GetMsg(config.TKeyCustomRange),
		FirstDayOfWeek:   app.firstDayOfWeek(),
		DayLabel:         app.dayLabel,
		Clock:            app.Clock,
	}
}

// dayLabel tags the first day of every catalog entry.
func (app *RangePickerApp) dayLabel(d engine.CalendarDate) string {
	if app.Picker == nil {
		return ""
	}
	for _, nr := range app.Picker.Catalog().Entries() {
		if nr.Range.Start.Equal(d) {
			return nr.Label
		}
	}
	return ""
}

// onPickerEvent is the engine listener. It runs synchronously inside the
// action that triggered it.
func (app *RangePickerApp) onPickerEvent(ev engine.Event) {
	slog.Debug(config.MsgPickerEvent,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyEvent, ev.Kind.String(),
	)
	if ev.Kind == engine.EventRangeSelected {
		app.publish(ev.Range, ev.Label)
	}
}

// publish hands the applied range to the HTTP server and the tray.
func (app *RangePickerApp) publish(r engine.DateRange, label string) {
	if err := app.Server.Update(r, label); err != nil {
		slog.Error(config.ErrPublish,
			config.LogKeyComponent, config.CompUI,
			config.LogKeyError, err,
		)
		return
	}
	app.updateTrayStatus()
}

// ShowPicker brings the window up with the picker open.
func (app *RangePickerApp) ShowPicker() {
	app.Window.Show()
	app.Window.RequestFocus()
	app.view.do(app.Picker.Open)
}

// setupTrayMenu constructs the system tray menu.
func (app *RangePickerApp) setupTrayMenu() {
	app.TrayStatusItem = fyne.NewMenuItem(config.FallbackTrayLabel, app.ShowPicker)
	app.TrayOpenItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuOpen), app.ShowPicker)
	app.TrayReloadItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuReload), func() {
		go app.performReload(true)
	})
	app.TrayCatalogItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuCatalog), app.ShowCatalogWindow)
	app.TraySettingsItem = fyne.NewMenuItem(app.GetMsg(config.TKeyMenuSettings), app.ShowSettingsWindow)

	app.Menu = fyne.NewMenu(config.AppName,
		app.TrayStatusItem,
		fyne.NewMenuItemSeparator(),
		app.TrayOpenItem,
		app.TrayReloadItem,
		app.TrayCatalogItem,
		app.TraySettingsItem,
	)

	if app.Tray != nil {
		app.Tray.SetSystemTrayMenu(app.Menu)
	}
	app.updateTrayStatus()
}

// RefreshTrayMenu updates localized labels in the tray menu.
func (app *RangePickerApp) RefreshTrayMenu() {
	if app.Menu == nil {
		return
	}
	app.TrayOpenItem.Label = app.GetMsg(config.TKeyMenuOpen)
	app.TrayReloadItem.Label = app.GetMsg(config.TKeyMenuReload)
	app.TrayCatalogItem.Label = app.GetMsg(config.TKeyMenuCatalog)
	app.TraySettingsItem.Label = app.GetMsg(config.TKeyMenuSettings)
	app.updateTrayStatus()
}

// updateTrayStatus shows the published range as the top menu item.
func (app *RangePickerApp) updateTrayStatus() {
	if app.Menu == nil || app.TrayStatusItem == nil {
		return
	}

	label := config.FallbackTrayLabel
	if r, name, ok := app.Server.Current(); ok {
		label = fmt.Sprintf(config.FormatLabelled, name, app.formatRange(r))
	}

	app.TrayStatusItem.Label = label
	app.Menu.Refresh()
}

// backgroundWorker reloads the range catalog on a schedule. A zero interval
// disables the schedule until the preference changes again.
func (app *RangePickerApp) backgroundWorker() {
	log := slog.With(config.LogKeyComponent, config.CompWorker)

	app.performReload(false)

	current := app.refreshInterval()
	ticker := time.NewTicker(time.Duration(config.DefaultRefreshMin) * time.Minute)
	defer ticker.Stop()
	if current > 0 {
		ticker.Reset(current)
	} else {
		ticker.Stop()
	}

	log.Info(config.MsgWorkerStart, config.LogKeyInterval, current)

	for {
		select {
		case <-app.Ctx.Done():
			log.Info(config.MsgWorkerStop)
			return

		case <-app.configChan:
			next := app.refreshInterval()
			if next == current {
				continue
			}
			log.Info(config.MsgUpdateInterval, config.LogKeyOld, current, config.LogKeyNew, next)
			current = next
			if current > 0 {
				ticker.Reset(current)
			} else {
				ticker.Stop()
				log.Info(config.MsgRefreshOff)
			}

		case <-ticker.C:
			app.performReload(false)
		}
	}
}

func (app *RangePickerApp) refreshInterval() time.Duration {
	val := app.Preferences.IntWithFallback(config.PrefInterval, config.DefaultRefreshMin)
	if val <= config.DisabledInterval {
		return 0
	}
	return time.Duration(val) * time.Minute
}

// reloadErrorKey picks the notification for a failed reload.
func reloadErrorKey(err error) string {
	if engine.IsUnauthorized(err) {
		return config.TKeyNotifAuth
	}
	return config.TKeyNotifError
}

// performReload rebuilds the range catalog off the UI goroutine, then swaps it
// into the picker on the UI goroutine.
func (app *RangePickerApp) performReload(manual bool) {
	slog.Info(config.MsgReloadReq,
		config.LogKeyComponent, config.CompUI,
		config.LogKeyManual, manual)

	loader := &engine.CatalogLoader{
		Clock:     app.Clock,
		Fetcher:   app.Fetcher,
		Translate: app.GetMsg,
	}

	catalog, err := loader.Load(app.Ctx, app.loadCatalogConfig())
	if err != nil {
		slog.Error(config.ErrCatalogLoad, config.LogKeyError, err, config.LogKeyComponent, config.CompUI)
		if manual {
			app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(reloadErrorKey(err))))
		}
		return
	}

	fyne.Do(func() {
		app.applyCatalog(catalog)
	})

	if manual {
		app.App.SendNotification(fyne.NewNotification(config.AppName, app.GetMsg(config.TKeyNotifReloaded)))
	}
}

func (app *RangePickerApp) applyCatalog(c *engine.Catalog) {
	if app.Picker == nil {
		return
	}
	app.Picker.SetCatalog(c)
	app.view.refresh()
	if app.catalog != nil {
		app.catalog.setEntries(c.Entries())
	}
}

// loadCatalogConfig assembles the catalog source from the command line, the
// preferences and the keyring.
func (app *RangePickerApp) loadCatalogConfig() engine.LoadConfig {
	if src := app.Overrides.CatalogSource; src != "" {
		if strings.HasPrefix(src, config.SchemeHTTP+config.SchemeSeparator) ||
			strings.HasPrefix(src, config.SchemeHTTPS+config.SchemeSeparator) {
			return engine.LoadConfig{Mode: config.CatalogModeWeb, WebURL: src}
		}
		return engine.LoadConfig{Mode: config.CatalogModeLocal, LocalPath: src}
	}

	cfg := engine.LoadConfig{
		Mode:      app.Preferences.StringWithFallback(config.PrefCatalogMode, config.DefaultCatalogMode),
		LocalPath: app.Preferences.String(config.PrefCatalogPath),
		WebURL:    app.Preferences.String(config.PrefCatalogURL),
		WebUser:   app.Preferences.String(config.PrefCatalogUser),
	}

	if cfg.WebUser != "" {
		if p, err := keyring.Get(config.KeyringService, cfg.WebUser); err == nil {
			cfg.WebPass = p
		} else {
			slog.Debug(config.MsgPassFail,
				config.LogKeyUser, cfg.WebUser,
				config.LogKeyError, err,
				config.LogKeyComponent, config.CompUI)
		}
	}
	return cfg
}
