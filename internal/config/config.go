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

// UserAgent identifies the HTTP client used for contact imports.
var UserAgent = "Go-LifeClock/" + Version

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go LifeClock"
	AppID             = "com.github.tartampluch.go-lifeclock"
	KeyringService    = "com.github.tartampluch.go-lifeclock"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "app.log"
)

// -----------------------------------------------------------------------------
// Exit Codes
// -----------------------------------------------------------------------------

const (
	ExitCodeSuccess = 0
	ExitCodeError   = 1
	ExitCodeUsage   = 2
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
	FlagPrint        = "print"
	FlagConfig       = "config"
	FlagBirthday     = "birthday"
	FlagLifetime     = "lifetime"
	FlagDescVersion  = "Show application version and exit"
	FlagDescDebug    = "Enable debug logging to stdout"
	FlagDescPrint    = "Compute one snapshot, print it as JSON and exit (no window)"
	FlagDescConfig   = "Settings file (.toml, or a legacy config.json) for -print, imported once on first launch"
	FlagDescBirthday = "Birth date for -print, YYYY-MM-DD (overrides -config)"
	FlagDescLifetime = "Assumed lifespan in years for -print (overrides -config)"
	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Preferences
// -----------------------------------------------------------------------------

const (
	PrefBirthday    = "birthday"
	PrefLifetime    = "lifetime"
	PrefOpacity     = "opacity"
	PrefLanguage    = "language"
	PrefFeedEnabled = "feed_enabled"
	PrefServerPort  = "server_port"
	PrefImportMode  = "import_mode"
	PrefImportPath  = "import_path"
	PrefImportURL   = "import_url"
	PrefImportUser  = "import_user"
	PrefLastRun     = "last_run_version"
	PrefLegacyDone  = "legacy_settings_imported"
)

// LegacySettingsFile is the settings file earlier releases kept in the working directory.
const LegacySettingsFile = "config.json"

// SupportedLanguages defines the list of available UI languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr", "zh"}

// -----------------------------------------------------------------------------
// Settings Defaults & Ranges
// -----------------------------------------------------------------------------

const (
	DefaultLifetime = 80
	MinLifetime     = 1
	MaxLifetime     = 150

	DefaultOpacity = 85
	MinOpacity     = 30
	MaxOpacity     = 100

	DefaultLanguage = "en"
	DefaultPort     = "18081"

	// RefreshInterval is the overlay refresh cadence.
	RefreshInterval = 1 * time.Second
)

// -----------------------------------------------------------------------------
// Calendar Arithmetic
// -----------------------------------------------------------------------------

const (
	SecondsPerMinute = 60
	SecondsPerHour   = 60 * SecondsPerMinute
	SecondsPerDay    = 24 * SecondsPerHour
	DaysPerWeek      = 7
	MonthsPerYear    = 12

	// DaysPerApproxYear splits the remaining lifespan into years.
	// It is a fixed 365, not a calendar year.
	DaysPerApproxYear = 365
)

// -----------------------------------------------------------------------------
// UI Layout Constants
// -----------------------------------------------------------------------------

const (
	OverlayWidth        = 360
	OverlayHeight       = 350
	OverlayCornerRadius = 16
	SettingsWindowWidth = 460
	TitleTextSize       = 20
	BodyTextSize        = 15
	OpacityScale        = 100
	LayoutColumnsDouble = 2
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyWinTitle     = "win_title"
	TKeyWinSettings  = "win_settings_title"
	TKeyMenuToggle   = "menu_toggle"
	TKeyMenuSettings = "menu_settings"
	TKeyNotifHidden  = "notif_hidden"
	TKeyNotifImport  = "notif_import_success"
	TKeyNotifImpErr  = "notif_import_error"

	// Overlay lines. Each one receives a single {{.Value}}.
	TKeyPromptBirthday = "prompt_birthday"
	TKeyErrBirthday    = "err_birthday_format"
	TKeyLineAge        = "line_age"
	TKeyLineWeeks      = "line_weeks"
	TKeyLineMonths     = "line_months"
	TKeyLineDays       = "line_days"
	TKeyLineHours      = "line_hours"
	TKeyLineMinutes    = "line_minutes"
	TKeyLineSeconds    = "line_seconds"
	TKeyCountdown      = "line_countdown"      // Days, Hours, Minutes, Seconds
	TKeyRemaining      = "line_remaining"      // Years, Days, Hours
	TKeyRemainingDays  = "line_remaining_days" // Value

	// Settings window
	TKeyLblProfile     = "lbl_profile"
	TKeyLblBirthday    = "lbl_birthday"
	TKeyHelpBirthday   = "help_birthday"
	TKeyLblLifetime    = "lbl_lifetime"
	TKeyHelpLifetime   = "help_lifetime"
	TKeyLblYears       = "lbl_years_suffix"
	TKeyLblOpacity     = "lbl_opacity"
	TKeyLblLanguage    = "lbl_language"
	TKeyHelpLanguage   = "help_language"
	TKeyLblImport      = "lbl_import"
	TKeyModeCardDAV    = "mode_carddav"
	TKeyModeLocal      = "mode_local"
	TKeyLblURL         = "lbl_url"
	TKeyHelpURL        = "help_carddav_url"
	TKeyLblUser        = "lbl_user"
	TKeyLblPass        = "lbl_pass"
	TKeyBtnBrowse      = "btn_browse"
	TKeyBtnImport      = "btn_import"
	TKeyLblFeed        = "lbl_feed"
	TKeyLblFeedEnable  = "lbl_feed_enable"
	TKeyLblPort        = "lbl_server_port"
	TKeyHelpPort       = "help_port"
	TKeyBtnSave        = "btn_save"
	TKeyBtnCancel      = "btn_cancel"
	TKeyLblFooter      = "lbl_footer"
	TKeyEvtBirthday    = "event_birthday"     // Requires Age
	TKeyEvtBirth       = "event_birth"        // Age 0
	TKeyEvtEndOfLife   = "event_end_of_life"  // Requires Lifetime
	TKeyErrLifetime    = "err_lifetime_range" // Requires Min, Max
	TKeyErrPortReq     = "err_port_required"
	TKeyErrPortNum     = "err_port_number"
	TKeyErrPortRange   = "err_port_range"
)

// -----------------------------------------------------------------------------
// Import Sources
// -----------------------------------------------------------------------------

const (
	ImportModeWeb   = "web"
	ImportModeLocal = "local"

	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"
	ExtTOML  = ".toml"
	ExtJSON  = ".json"
)

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	ICalVersion = "2.0"
	ICalProdid  = "-//Go LifeClock//Milestones//EN"
	ICalCalName = "Life Milestones"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "golifeclock"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropRefresh    = "REFRESH-INTERVAL"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	VCardBDAY = "BDAY"
	VCardFN   = "FN"
	VCardN    = "N"

	DefaultICalRefresh = 12 * time.Hour

	// Event kinds, used to derive stable UIDs.
	EventKindBirthday  = "birthday"
	EventKindEndOfLife = "end-of-life"
	FormatUIDName      = "%s|%s|%s"
	FormatUID          = "%s@%s"
)

// -----------------------------------------------------------------------------
// Data Formats & Limits
// -----------------------------------------------------------------------------

const (
	// DateFormatBirthday is the persisted birthday layout.
	DateFormatBirthday  = "2006-01-02"
	DateFormatFullBasic = "20060102"
	DateFormatRFC3339   = time.RFC3339
	DateFormatFullT     = "2006-01-02T15:04:05Z"
	DateFormatNoYearD   = "--01-02"
	DateFormatNoYearB   = "--0102"

	MinPort = 1
	MaxPort = 65535

	// MaxCardFailures stops a contact import after this many consecutive undecodable cards.
	MaxCardFailures = 8
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	HTTPTimeout         = 30 * time.Second
	ShutdownTimeout     = 5 * time.Second
	ServerReadTimeout   = 10 * time.Second
	ServerWriteTimeout  = 30 * time.Second
	ServerIdleTimeout   = 60 * time.Second
	RetryAfterSeconds   = "10"
	AllowedMethods      = "GET, HEAD"
	MaxHTTPResponseSize = 256 * 1024 * 1024 // 256MB
	SchemeHTTP          = "http"
	SchemeHTTPS         = "https"
	RouteRoot           = "/"
	FeedFileName        = "milestones.ics"
	AddrSeparator       = ":"
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
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrLocalPathEmpty   = "configuration error: local path is empty"
	ErrWebURLEmpty      = "configuration error: web URL is empty"
	ErrFetcherMissing   = "internal error: network fetcher is not initialized"
	ErrModeUnsupport    = "configuration error: unsupported import mode"
	ErrLifetimeRange    = "lifetime must be between 1 and 150 years"
	ErrOpacityRange     = "opacity must be between 30 and 100"
	ErrLanguage         = "unsupported language"
	ErrSettingsRead     = "failed to read settings file"
	ErrSettingsDecode   = "failed to decode settings"
	ErrSettingsFormat   = "unsupported settings file extension"
	ErrServerStartup    = "server startup failed"
	ErrServerShutdown   = "server shutdown failed"
	ErrPortRequired     = "server port is required"
	ErrInvalidURL       = "invalid URL structure"
	ErrProtocol         = "unsupported protocol scheme (http/https only)"
	ErrVCardParse       = "failed to read contact card stream"
	ErrNoBirthday       = "no contact card with a full birth date"
	ErrICalEncode       = "failed to encode iCalendar data"
	ErrDateParse        = "unable to parse birth date"
	ErrNoBirthdaySet    = "no birthday configured"
	ErrLogFile          = "failed to open log file"
	ErrCacheDir         = "could not determine user cache dir"
	ErrCreateDir        = "could not create app cache dir"
	ErrAppFailed        = "application failed unexpectedly"
	ErrEncodeSnapshot   = "failed to encode snapshot"
	ErrLocalesAccess    = "failed to access embedded locales"
	ErrLocaleLoad       = "failed to load locale file"
	ErrTrayNotSupported = "system tray not supported on this platform/driver"
	ErrFeedBuild        = "failed to build milestone feed"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Calendar initializing, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Log Messages
// -----------------------------------------------------------------------------

const (
	FallbackBirthday  = "Birthday (%d)"
	FallbackBirth     = "Birth"
	FallbackEndOfLife = "Estimated end of a %d-year life"

	TitleStartupError = "Startup Error"

	MsgPortBusy       = "Port %s is busy or unavailable."
	MsgWorkerStart    = "Refresh worker started"
	MsgWorkerStop     = "Worker stopping due to context cancellation"
	MsgDayChanged     = "Calendar day changed, rebuilding feed"
	MsgAppStop        = "Application stopped gracefully"
	MsgCtxCancel      = "Context cancelled, shutting down UI"
	MsgSkippedCard    = "Skipping malformed contact card"
	MsgSkippedDate    = "Skipping birth date without a usable year"
	MsgImportStarted  = "Contact import started"
	MsgImportDone     = "Birthday imported from contact card"
	MsgImportFailed   = "Contact import failed"
	MsgFeedBuilt      = "Milestone feed generated"
	MsgFeedDisabled   = "Milestone feed disabled"
	MsgAppStarting    = "Starting application"
	MsgServerListen   = "HTTP server listening"
	MsgServerStop     = "Shutting down HTTP server..."
	MsgCacheUpdated   = "Feed cache updated"
	MsgLocaleSkip     = "Skipping non-locale file"
	MsgLocaleBadName  = "Skipping malformed locale filename"
	MsgLocaleLoaded   = "Locale loaded successfully"
	MsgTransMissing   = "Missing translation key"
	MsgPassFail       = "Password retrieval failed (might be empty)"
	MsgLogWarning     = "Warning: %s at %s: %v\n"
	MsgSettingsSaved  = "Settings saved"
	MsgSettingsLoaded = "Settings loaded"
	MsgWindowHidden   = "Overlay hidden to tray"
	MsgBadBirthday    = "Configured birthday does not parse"
	MsgFeedDropped    = "Feed server failed, waiting for a settings change to retry"
	MsgLegacyImported = "Legacy settings imported"
	MsgLegacySkipped  = "No legacy settings to import"

	PlaceholderURL      = "https://..."
	PlaceholderBirthday = "YYYY-MM-DD"
)

// -----------------------------------------------------------------------------
// Structured Logging Keys (slog)
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyURL       = "url"
	LogKeyStatus    = "status_code"
	LogKeyFile      = "file"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyPort      = "port"
	LogKeyAddr      = "addr"
	LogKeyMode      = "mode"
	LogKeyInterval  = "interval"
	LogKeyUser      = "user"
	LogKeyValue     = "value"
	LogKeyName      = "name"
	LogKeyDOB       = "date_of_birth"
	LogKeyLifetime  = "lifetime"
	LogKeyOpacity   = "opacity"
	LogKeyEvents    = "events"
	LogKeyCards     = "cards"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyDay       = "day"
	LogKeyDuration  = "duration_ms"

	// Startup Info Keys
	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyCommit  = "commit"
	LogKeyDate    = "date"
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
	CompImport  = "import"
	CompFeed    = "feed"
	CompServer  = "server"
	CompFetcher = "fetcher"
	CompWorker  = "worker"
	CompMain    = "main"
	CompI18n    = "i18n"
	CompConfig  = "config"
)
