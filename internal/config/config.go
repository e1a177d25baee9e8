package config

import (
	"io/fs"
	"time"
)

// -----------------------------------------------------------------------------
// Build Information
// -----------------------------------------------------------------------------

// Build variables are injected via -ldflags.
var (
	Version = "dev"
	Commit  = "none"
	Date    = "unknown"
)

// UserAgent identifies the HTTP client used to fetch range catalogs.
var UserAgent = "Go-RangePicker/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Range Picker"
	AppID             = "com.github.tartampluch.go-rangepicker"
	KeyringService    = "com.github.tartampluch.go-rangepicker"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
)

// -----------------------------------------------------------------------------
// System & File Permissions
// -----------------------------------------------------------------------------

const (
	// FilePermUserRW represents -rw------- (Read/Write for owner only).
	FilePermUserRW fs.FileMode = 0600

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion      = "version"
	FlagDebug        = "debug"
	FlagLang         = "lang"
	FlagSingle       = "single"
	FlagCatalog      = "catalog"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescLang     = "Override the UI language (en, fr)"
	FlagDescSingle   = "Pick a single date instead of a range"
	FlagDescCatalog  = "Path or URL of an iCalendar file providing predefined ranges"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Picker Defaults
// -----------------------------------------------------------------------------

const (
	// DefaultCustomRangeLabel is used when the localizer has no translation.
	DefaultCustomRangeLabel = "Custom Range"

	// CalendarWeeks and CalendarCells describe the fixed 6x7 month grid.
	CalendarWeeks   = 6
	DaysPerWeek     = 7
	CalendarCells   = CalendarWeeks * DaysPerWeek
	HoursPerDay     = 24
	SecondsPerDay   = HoursPerDay * 60 * 60
	DefaultEndShift = 1 // months between the default start and end dates
	DropdownYears   = 50

	// DateFormatISO is the canonical calendar day layout.
	DateFormatISO = "2006-01-02"

	// MonthFormatISO is used when a month must be rendered without localization.
	MonthFormatISO = "2006-01"

	DefaultLanguage       = "en"
	DefaultFirstDayOfWeek = time.Monday
	DefaultPort           = "18181"
	DefaultRefreshMin     = 60
	DisabledInterval      = 0
)

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// SundayFirstRegions lists ISO 3166 regions whose calendars start on Sunday.
// Every other region starts on Monday.
var SundayFirstRegions = []string{
	"US", "CA", "MX", "BR", "JP", "KR", "TW", "HK", "IL", "PH", "ZA", "AU", "IN", "SA",
}

// -----------------------------------------------------------------------------
// Preference Keys
// -----------------------------------------------------------------------------

const (
	PrefLanguage        = "language"
	PrefFirstDayOfWeek  = "first_day_of_week"
	PrefLinked          = "linked_calendars"
	PrefAutoApply       = "auto_apply"
	PrefSingleDate      = "single_date"
	PrefCloseOnOutside  = "close_on_outside_click"
	PrefAutoAdjust      = "auto_adjust_calendars"
	PrefAlwaysShowCals  = "always_show_calendars"
	PrefMaxSpanDays     = "max_span_days"
	PrefWeekNumbers     = "week_numbers"
	PrefOneCalendar     = "show_only_one_calendar"
	PrefShowCustom      = "show_custom_range_label"
	PrefShowDropdowns   = "show_dropdowns"
	PrefCatalogMode     = "catalog_mode"
	PrefCatalogURL      = "catalog_url"
	PrefCatalogUser     = "catalog_user"
	PrefCatalogPath     = "catalog_path"
	PrefInterval        = "refresh_interval_min"
	PrefServerPort      = "server_port"
	PrefLastRun         = "last_run_version"
	CatalogModePresets  = "presets"
	CatalogModeLocal    = "local"
	CatalogModeWeb      = "web"
	DefaultCatalogMode  = CatalogModePresets
	DefaultMaxSpanDays  = 0
	DefaultLinked       = true
	DefaultAutoAdjust   = true
	DefaultCloseOutside = true
	DefaultShowCustom   = true
	DefaultDropdowns    = true

	// FirstDayAuto derives the first day of week from the UI language region.
	FirstDayAuto = -1
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	MainWindowWidth     = 760
	MainWindowHeight    = 520
	SettingsWindowWidth = 600
	CatalogWinWidth     = 520
	CatalogWinHeight    = 400

	// Catalog table column IDs and widths.
	ColIDLabel    = 0
	ColIDStart    = 1
	ColIDEnd      = 2
	ColWidthLabel = 240
	ColWidthDate  = 120
	ColCount      = 3

	TablePlaceholder    = "Cell Content"
	LayoutColumnsDouble = 2
	RangeSeparator      = " - "
	NavPrev             = "<"
	NavNext             = ">"
	DayMarker           = "•"
	SortIconAsc         = " ▲"
	SortIconDesc        = " ▼"
	PlaceholderURL      = "https://..."
	PlaceholderDate     = "YYYY-MM-DD"
	FormatMonthTitle    = "%s %d"
	FormatLabelled      = "%s (%s)"
	FormatWeekNumber    = "%d"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle       = "win_title"
	TKeyWinSettings    = "win_settings_title"
	TKeyWinCatalog     = "win_catalog_title"
	TKeyMenuOpen       = "menu_open_picker"
	TKeyMenuReload     = "menu_reload_ranges"
	TKeyMenuSettings   = "menu_settings"
	TKeyMenuCatalog    = "menu_catalog"
	TKeyBtnApply       = "btn_apply"
	TKeyBtnCancel      = "btn_cancel"
	TKeyBtnSave        = "btn_save"
	TKeyBtnBrowse      = "btn_browse"
	TKeyBtnSet         = "btn_set"
	TKeyCustomRange    = "custom_range"
	TKeyNoSelection    = "no_selection"
	TKeyLblStart       = "lbl_start"
	TKeyLblEnd         = "lbl_end"
	TKeyLblLanguage    = "lbl_language"
	TKeyLblFirstDay    = "lbl_first_day"
	TKeyLblLinked      = "lbl_linked"
	TKeyLblAutoApply   = "lbl_auto_apply"
	TKeyLblSingle      = "lbl_single_date"
	TKeyLblCloseOut    = "lbl_close_outside"
	TKeyLblAutoAdjust  = "lbl_auto_adjust"
	TKeyLblAlwaysCals  = "lbl_always_calendars"
	TKeyLblMaxSpan     = "lbl_max_span"
	TKeyLblWeekNumbers = "lbl_week_numbers"
	TKeyLblOneCalendar = "lbl_one_calendar"
	TKeyLblShowCustom  = "lbl_show_custom"
	TKeyLblDropdowns   = "lbl_dropdowns"
	TKeyWeekNumNone    = "week_numbers_none"
	TKeyWeekNumLocale  = "week_numbers_locale"
	TKeyWeekNumISO     = "week_numbers_iso"
	TKeyFirstDayAuto   = "first_day_auto"
	TKeyColWeek        = "col_week"
	TKeyLblDays        = "lbl_days_suffix"
	TKeyLblBehaviour   = "lbl_behaviour"
	TKeyLblSource      = "lbl_source"
	TKeyLblURL         = "lbl_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyLblRefresh     = "lbl_refresh_interval"
	TKeyLblMinutes     = "lbl_minutes_suffix"
	TKeyLblPort        = "lbl_server_port"
	TKeyLblGeneral     = "lbl_general"
	TKeyLblFooter      = "lbl_footer"
	TKeyModePresets    = "mode_presets"
	TKeyModeLocal      = "mode_local"
	TKeyModeWeb        = "mode_web"
	TKeyColLabel       = "col_label"
	TKeyColStart       = "col_start"
	TKeyColEnd         = "col_end"
	TKeyNotifReloaded  = "notif_ranges_reloaded"
	TKeyNotifError     = "notif_err_reload"
	TKeyNotifAuth      = "notif_err_auth"
	TKeyErrPortReq     = "err_port_required"
	TKeyErrPortNum     = "err_port_number"
	TKeyErrPortRange   = "err_port_range"
	TKeyErrDateInvalid = "err_date_invalid"
	TKeyFormatDate     = "format_date_short"

	// Predefined range labels.
	TKeyRangeToday     = "range_today"
	TKeyRangeYesterday = "range_yesterday"
	TKeyRangeLast7     = "range_last_7_days"
	TKeyRangeLast30    = "range_last_30_days"
	TKeyRangeThisMonth = "range_this_month"
	TKeyRangeLastMonth = "range_last_month"

	// Prefixes for calendar names: weekday_0..weekday_6 (Sunday first), month_1..month_12.
	TKeyWeekdayPrefix = "weekday_"
	TKeyMonthPrefix   = "month_"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	MinPort             = 1
	MaxPort             = 65535
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 16 * 1024 * 1024 // 16MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	SchemeSeparator     = "://"
	RouteRoot           = "/"
	RouteRangeJSON      = "/range.json"
	AddrSeparator       = ":"
	ExtICS              = ".ics"
	ExtICal             = ".ical"
)

// -----------------------------------------------------------------------------
// HTTP Headers & MIME Types
// -----------------------------------------------------------------------------

const (
	HeaderContentType     = "Content-Type"
	HeaderCacheControl    = "Cache-Control"
	HeaderETag            = "ETag"
	HeaderLastModified    = "Last-Modified"
	HeaderRetryAfter      = "Retry-After"
	HeaderAllow           = "Allow"
	HeaderXContentType    = "X-Content-Type-Options"
	HeaderUserAgent       = "User-Agent"
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeJSON            = "application/json"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`

	// Media types accepted from catalog feeds.
	MediaTypeCalendar    = "text/calendar"
	MediaTypePlain       = "text/plain"
	MediaTypeOctetStream = "application/octet-stream"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Range Picker//Engine//EN"
	ICalCalName = "Selected Range"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gorangepicker"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTEnd      = "DTEND"
	PropDTStamp    = "DTSTAMP"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	FormatUID = "%s_%s@%s"
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported catalog mode"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrICalDecode       = "failed to decode iCalendar data"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrEventNoStart     = "event has no usable start date"
	ErrEventNoSummary   = "event has no summary"
	ErrDateParse        = "unable to parse date"
	ErrRangeIncomplete  = "range has no start date"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrWriteResp        = "failed to write response body"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
	ErrCatalogLoad      = "failed to load range catalog"
	ErrPublish          = "failed to publish selected range"
	ErrRequestCreate    = "failed to create request"
	ErrNetwork          = "network error during fetch"
	ErrBadStatus        = "server returned unexpected status"
	ErrNotCalendar      = "server did not return an iCalendar feed"
	ErrKeyringSave      = "failed to save credentials to keyring"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "No range selected yet, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Log Messages
// -----------------------------------------------------------------------------

const (
	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down UI"
	MsgLogWarning      = "Warning: %s at %s: %v\n"
	MsgPickerCreated   = "Picker created"
	MsgPickerOpened    = "Picker opened"
	MsgPickerClosed    = "Picker closed"
	MsgPickerCancelled = "Selection rolled back"
	MsgClickIgnored    = "Day click ignored"
	MsgPickStarted     = "Range pick started"
	MsgPickCompleted   = "Range pick completed"
	MsgApplyRejected   = "Apply ignored, selection incomplete"
	MsgApplied         = "Range applied"
	MsgUnknownLabel    = "Unknown predefined range"
	MsgCatalogSwapped  = "Range catalog replaced"
	MsgMonthChanged    = "Calendar months changed"
	MsgCatalogLoaded   = "Range catalog loaded"
	MsgSkippedEvent    = "Skipping unusable calendar event"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Published range updated"
	MsgWorkerStart     = "Background worker started"
	MsgWorkerStop      = "Worker stopping due to context cancellation"
	MsgUpdateInterval  = "Updating refresh interval"
	MsgReloadReq       = "Catalog reload requested"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleBadName   = "Skipping malformed locale filename"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation key"
	MsgPassFail        = "Password retrieval failed (might be empty)"
	MsgSettingsSaved   = "Saving preferences"
	MsgOpenWin         = "Opening window"
	MsgSorted          = "Catalog sorted"
	MsgFetchStart      = "Initiating catalog download"
	MsgFetchBadStatus  = "Server returned error status"
	MsgFetchNotICal    = "Server returned a non-calendar media type"
	MsgFetchDownload   = "Catalog downloading"
	TitleStartupError  = "Startup Error"
	MsgPortBusy        = "Port %s is busy or unavailable."
	MsgPickerEvent     = "Picker notification"
	MsgWinFocus        = "Window already open, requesting focus"
	MsgRefreshOff      = "Auto-refresh disabled via settings"
	MsgDateRejected    = "Date input rejected"
	FallbackTrayLabel  = "Go Range Picker"
	FallbackNoSelected = "-"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyMediaType = "media_type"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyOld       = "old"
	LogKeyNew       = "new"
	LogKeyUser      = "user"
	LogKeyDate      = "date"
	LogKeyStart     = "start"
	LogKeyEnd       = "end"
	LogKeyLabel     = "label"
	LogKeyState     = "state"
	LogKeyLeft      = "left"
	LogKeyRight     = "right"
	LogKeyExplicit  = "explicit"
	LogKeyCount     = "count"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyManual    = "manual"
	LogKeyWindow    = "window"
	LogKeySortCol   = "sort_column"
	LogKeySortAsc   = "sort_asc"
	LogKeyLength    = "content_length"
	LogKeyDuration  = "duration_ms"
	LogKeyEvent     = "event"
	LogKeyFirstDay  = "first_day"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// -----------------------------------------------------------------------------
// Log Components
// -----------------------------------------------------------------------------

const (
	CompUI      = "ui"
	CompUISet   = "ui_settings"
	CompPicker  = "picker"
	CompCatalog = "catalog"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
)
