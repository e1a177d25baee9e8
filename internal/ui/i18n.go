package ui

import (
	"embed"
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/tartampluch/go-rangepicker/internal/config"
	"github.com/tartampluch/go-rangepicker/internal/engine"
	"golang.org/x/text/language"
)

//go:embed locales/*.json
var localeFS embed.FS

// SetupI18n initializes the translation bundle and detects available languages.
func (app *RangePickerApp) SetupI18n() {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)

	entries, err := localeFS.ReadDir("locales")
	if err != nil {
		slog.Error(config.ErrLocalesAccess,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyError, err,
		)
		return
	}

	var detectedLangs []string

	for _, entry := range entries {
		name := entry.Name()
		if !strings.HasPrefix(name, "active.") || !strings.HasSuffix(name, ".json") {
			slog.Debug(config.MsgLocaleSkip,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		langCode := strings.TrimSuffix(strings.TrimPrefix(name, "active."), ".json")
		if langCode == "" {
			slog.Warn(config.MsgLocaleBadName,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
			)
			continue
		}

		if _, err := bundle.LoadMessageFileFS(localeFS, "locales/"+name); err != nil {
			slog.Error(config.ErrLocaleLoad,
				config.LogKeyComponent, config.CompI18n,
				config.LogKeyFile, name,
				config.LogKeyError, err,
			)
			continue
		}
		detectedLangs = append(detectedLangs, langCode)
		slog.Debug(config.MsgLocaleLoaded,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyLang, langCode,
		)
	}

	app.SupportedLanguages = detectedLangs
	app.I18nBundle = bundle
	app.UpdateLocalizer()
}

// Language returns the active UI language. The -lang override wins over the
// saved preference.
func (app *RangePickerApp) Language() string {
	if app.Overrides.Language != "" {
		return app.Overrides.Language
	}
	return app.Preferences.StringWithFallback(config.PrefLanguage, config.DefaultLanguage)
}

// UpdateLocalizer refreshes the translator based on the active language.
func (app *RangePickerApp) UpdateLocalizer() {
	if app.I18nBundle == nil {
		return
	}
	loc := i18n.NewLocalizer(app.I18nBundle, app.Language(), config.DefaultLanguage)

	app.i18nMu.Lock()
	app.Localizer = loc
	app.i18nMu.Unlock()
}

// GetMsg translates key, returning the key itself when no translation exists.
// The background worker calls it too, hence the lock.
func (app *RangePickerApp) GetMsg(key string) string {
	app.i18nMu.RLock()
	loc := app.Localizer
	app.i18nMu.RUnlock()

	if loc == nil {
		return key
	}
	msg, err := loc.Localize(&i18n.LocalizeConfig{MessageID: key})
	if err != nil {
		slog.Debug(config.MsgTransMissing,
			config.LogKeyComponent, config.CompI18n,
			config.LogKeyKey, key,
			config.LogKeyError, err,
		)
		return key
	}
	return msg
}

func (app *RangePickerApp) weekdayName(d time.Weekday) string {
	return app.GetMsg(config.TKeyWeekdayPrefix + strconv.Itoa(int(d)))
}

func (app *RangePickerApp) monthTitle(m engine.CalendarMonth) string {
	return fmt.Sprintf(config.FormatMonthTitle, app.monthName(m.Month), m.Year)
}

func (app *RangePickerApp) monthName(m time.Month) string {
	return app.GetMsg(config.TKeyMonthPrefix + strconv.Itoa(int(m)))
}

// formatDate renders d with the localized short layout, e.g. "02/01/2006" in French.
func (app *RangePickerApp) formatDate(d engine.CalendarDate) string {
	if d.IsZero() {
		return config.FallbackNoSelected
	}
	layout := app.GetMsg(config.TKeyFormatDate)
	if layout == config.TKeyFormatDate {
		layout = config.DateFormatISO
	}
	return d.StartOfDay(time.UTC).Format(layout)
}

func (app *RangePickerApp) formatRange(r engine.DateRange) string {
	if r.Start.Equal(r.End) || r.End.IsZero() {
		return app.formatDate(r.Start)
	}
	return app.formatDate(r.Start) + config.RangeSeparator + app.formatDate(r.End)
}

// firstDayOfWeek returns the saved weekday, or derives it from the language
// region when the preference is Auto.
func (app *RangePickerApp) firstDayOfWeek() time.Weekday {
	v := app.Preferences.IntWithFallback(config.PrefFirstDayOfWeek, config.FirstDayAuto)
	if v >= int(time.Sunday) && v <= int(time.Saturday) {
		return time.Weekday(v)
	}
	return firstDayForLanguage(app.Language())
}

// firstDayForLanguage maps a BCP 47 tag to the weekday its region starts weeks on.
func firstDayForLanguage(lang string) time.Weekday {
	region, _ := language.Make(lang).Region()
	if slices.Contains(config.SundayFirstRegions, region.String()) {
		return time.Sunday
	}
	return config.DefaultFirstDayOfWeek
}
