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

// -----------------------------------------------------------------------------
// Application Constants
// -----------------------------------------------------------------------------

const (
	AppName           = "Go Greetings"
	AppID             = "com.github.tartampluch.go-greetings"
	LocalhostBindAddr = "127.0.0.1"
	LogFileName       = "run.log"
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
	// Used for sensitive files like logs.
	FilePermUserRW fs.FileMode = 0600

	// FilePermDefault represents -rw-r--r--, used for rendered artifacts.
	FilePermDefault fs.FileMode = 0644

	// DirPermDefault represents drwxr-xr-x, used for the output directory.
	DirPermDefault fs.FileMode = 0755

	// DirPermUserRWX represents drwx------ (Read/Write/Exec for owner only).
	DirPermUserRWX fs.FileMode = 0700

	// ChannelBufferSize defines the standard buffer size for internal signaling channels.
	ChannelBufferSize = 1
)

// -----------------------------------------------------------------------------
// CLI Flags & Descriptions
// -----------------------------------------------------------------------------

const (
	FlagVersion         = "version"
	FlagDebug           = "debug"
	FlagRoster          = "roster"
	FlagBirthdayCard    = "birthday-card"
	FlagAnniversaryCard = "anniversary-card"
	FlagOutput          = "output"
	FlagDate            = "date"
	FlagLang            = "lang"
	FlagFont            = "font"
	FlagFontSize        = "font-size"
	FlagFontColor       = "font-color"
	FlagSend            = "send"
	FlagServe           = "serve"
	FlagPort            = "port"

	FlagDescVersion         = "Show application version and exit"
	FlagDescDebug           = "Enable debug logging to stdout"
	FlagDescRoster          = "Path to the employee roster (.csv, .vcf or .vcard)"
	FlagDescBirthdayCard    = "Path to the birthday card template image"
	FlagDescAnniversaryCard = "Path to the anniversary card template image"
	FlagDescOutput          = "Directory for rendered images and reports"
	FlagDescDate            = "Override the run date (YYYY-MM-DD), defaults to today"
	FlagDescLang            = "Greeting language (en, fr)"
	FlagDescFont            = "Path to a custom TTF font file"
	FlagDescFontSize        = "Font size in points for the greeting text"
	FlagDescFontColor       = "Hex color for the greeting text (e.g. #FFFFFF)"
	FlagDescSend            = "Send rendered greetings by email (requires SMTP_* env vars)"
	FlagDescServe           = "Serve the last report and calendar feed over HTTP after the run"
	FlagDescPort            = "HTTP port for the report server"

	MsgVersionOutput = "%s version %s (%s/%s)\n"
)

// -----------------------------------------------------------------------------
// Environment Variables (SMTP)
// -----------------------------------------------------------------------------

const (
	EnvSMTPHost = "SMTP_HOST"
	EnvSMTPPort = "SMTP_PORT"
	EnvSMTPUser = "SMTP_USER"
	EnvSMTPPass = "SMTP_PASS"
	EnvSMTPFrom = "SMTP_FROM"
)

// -----------------------------------------------------------------------------
// Roster Schema
// -----------------------------------------------------------------------------

const (
	ColFirstName   = "first_name"
	ColLastName    = "last_name"
	ColEmail       = "email"
	ColBirthday    = "birthday"
	ColAnniversary = "anniversary"
)

// RequiredColumns lists the CSV header fields a roster file must contain.
// The anniversary column is optional.
var RequiredColumns = []string{ColFirstName, ColLastName, ColEmail, ColBirthday}

// -----------------------------------------------------------------------------
// Data Formats, Limits & File Extensions
// -----------------------------------------------------------------------------

const (
	// DateFormatISO is the canonical date layout for roster fields.
	DateFormatISO = "2006-01-02"

	// DateFormatBasic covers vCard BDAY values without separators.
	DateFormatBasic = "20060102"

	// DateFormatStamp is used in output filenames and report names.
	DateFormatStamp = "20060102"

	// DateFormatReport is the human-readable date in report headers.
	DateFormatReport = "January 02, 2006"

	// TimeFormatReport is used for start/end times inside the report.
	TimeFormatReport = "15:04:05"

	// File Extensions
	ExtVCF   = ".vcf"
	ExtVCard = ".vcard"

	// FormatImageFile expects category, first name, last name, date stamp.
	FormatImageFile = "%s_%s_%s_%s.jpg"

	// FormatReportFile expects a date stamp.
	FormatReportFile = "daily_report_%s.txt"

	// FormatReportTitle heads the report text and subjects the report email.
	// It expects the run date in DateFormatReport layout.
	FormatReportTitle = "Daily Greetings Report - %s"
)

// -----------------------------------------------------------------------------
// Event Categories
// -----------------------------------------------------------------------------

const (
	CategoryBirthday    = "birthday"
	CategoryAnniversary = "anniversary"
)

// -----------------------------------------------------------------------------
// Rendering Defaults
// -----------------------------------------------------------------------------

const (
	DefaultFontSize  = 40
	DefaultFontColor = "#000000"
	DefaultTextX     = 50
	DefaultTextY     = 50

	// LineGutter is the extra vertical spacing added to the font size
	// when stacking lines of multi-line text.
	LineGutter = 10

	// JPEGQuality keeps attachments small enough for email.
	JPEGQuality = 95

	// HexColorShort and HexColorLong are the accepted hex digit counts.
	HexColorShort = 3
	HexColorLong  = 6

	// LineBreak is the marker splitting multi-line greeting text.
	LineBreak = "\n"
)

// FontCandidates is the ordered, platform-spanning list of font files tried
// when no custom font is given. First readable entry wins.
var FontCandidates = []string{
	// Windows
	"arial.ttf",
	"calibri.ttf",
	"C:/Windows/Fonts/arial.ttf",
	"C:/Windows/Fonts/calibri.ttf",
	// macOS
	"/System/Library/Fonts/Supplemental/Arial.ttf",
	"/Library/Fonts/Arial.ttf",
	// Linux
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/truetype/liberation/LiberationSans-Regular.ttf",
	"/usr/share/fonts/TTF/arial.ttf",
}

// Font resolution tiers, logged so "wrong typeface" reports can be diagnosed.
const (
	FontTierCustom   = "custom"
	FontTierSystem   = "system"
	FontTierEmbedded = "embedded"
	FontTierBitmap   = "bitmap"
)

// -----------------------------------------------------------------------------
// Defaults & Business Logic
// -----------------------------------------------------------------------------

const (
	DefaultPort      = "18080"
	DefaultLanguage  = "en"
	DefaultOutputDir = "output"

	// UIDSalt makes calendar event UIDs deterministic yet namespaced.
	UIDSalt = "go-greetings-v1-"

	UIDHashLength   = 16
	FormatHashInput = "%s|%s|%s|%s"
	FormatUID       = "%s-%d@%s"
)

// -----------------------------------------------------------------------------
// Translation Keys (I18n)
// -----------------------------------------------------------------------------

const (
	TKeyBirthdayGreeting    = "birthday_greeting"
	TKeyAnniversaryGreeting = "anniversary_greeting"
	TKeyBirthdaySubject     = "birthday_subject"
	TKeyAnniversarySubject  = "anniversary_subject"
)

// SupportedLanguages defines the list of available greeting languages (ISO 639-1).
var SupportedLanguages = []string{"en", "fr"}

// -----------------------------------------------------------------------------
// Standards: iCalendar & vCard
// -----------------------------------------------------------------------------

const (
	// iCal Properties
	ICalVersion = "2.0"
	ICalProdid  = "-//Go Greetings//Engine//EN"
	ICalCalName = "Greetings"
	ICalMethod  = "PUBLISH"
	ICalScale   = "GREGORIAN"
	ICalDomain  = "gogreetings"

	PropUID        = "UID"
	PropSummary    = "SUMMARY"
	PropDTStart    = "DTSTART"
	PropDTStamp    = "DTSTAMP"
	PropVersion    = "VERSION"
	PropProdid     = "PRODID"
	PropXWRCalName = "X-WR-CALNAME"
	PropCalScale   = "CALSCALE"
	PropMethod     = "METHOD"

	// vCard Fields
	VCardBDAY         = "BDAY"
	VCardFN           = "FN"
	VCardEmail        = "EMAIL"
	VCardAnniversary  = "ANNIVERSARY"
	VCardXAnniversary = "X-ANNIVERSARY"

	// StubVCalendar is the minimal valid iCalendar object used when no events
	// match today. Keeps the feed valid for clients even on quiet days.
	StubVCalendar = "BEGIN:VCALENDAR\r\nVERSION:2.0\r\nPRODID:" + ICalProdid + "\r\nEND:VCALENDAR\r\n"
)

// -----------------------------------------------------------------------------
// Network & Timeouts
// -----------------------------------------------------------------------------

const (
	ShutdownTimeout    = 5 * time.Second
	ServerReadTimeout  = 10 * time.Second
	ServerWriteTimeout = 30 * time.Second
	ServerIdleTimeout  = 60 * time.Second
	RetryAfterSeconds  = "10"
	AllowedMethods     = "GET, HEAD"
	RouteReport        = "/"
	RouteCalendar      = "/calendar"
	AddrSeparator      = ":"

	DefaultSMTPPort = 587
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
	HeaderIfNoneMatch     = "If-None-Match"
	HeaderIfModifiedSince = "If-Modified-Since"

	MimeTextCalendar    = "text/calendar; charset=utf-8"
	MimeTextPlain       = "text/plain; charset=utf-8"
	MimeImageJPEG       = "image/jpeg"
	MimeNoSniff         = "nosniff"
	CacheControlPrivate = "private, no-cache"

	// FormatETag expects a string argument.
	FormatETag = `"%s"`
)

// -----------------------------------------------------------------------------
// Error Messages (Technical/Logs)
// -----------------------------------------------------------------------------

const (
	ErrRosterOpen      = "failed to open roster file"
	ErrRosterRead      = "failed to read roster file"
	ErrMissingColumns  = "roster is missing required columns"
	ErrEmptyRoster     = "roster file has no header row"
	ErrTemplateOpen    = "failed to open template image"
	ErrImageEncode     = "failed to encode rendered image"
	ErrImageSave       = "failed to save rendered image"
	ErrOutputDir       = "could not create output directory"
	ErrReportWrite     = "failed to write report file"
	ErrICalEncode      = "failed to encode iCalendar data"
	ErrFontParse       = "failed to parse font data"
	ErrRenderFailed    = "failed to render greeting image"
	ErrSendFailed      = "failed to send greeting email"
	ErrReportSend      = "failed to email run report"
	ErrSMTPConfig      = "incomplete SMTP configuration"
	ErrDateFlag        = "invalid -date value, expected YYYY-MM-DD"
	ErrServerStartup   = "server startup failed"
	ErrServerShutdown  = "server shutdown failed"
	ErrPortRequired    = "server port is required"
	ErrWriteResp       = "failed to write response body"
	ErrLogFile         = "failed to open log file"
	ErrCacheDir        = "could not determine user cache dir"
	ErrCreateDir       = "could not create app cache dir"
	ErrAppFailed       = "application failed unexpectedly"
	ErrLocalesAccess   = "failed to access embedded locales"
	ErrLocaleLoad      = "failed to load locale file"
	ErrRosterFlagEmpty = "configuration error: roster path is empty"
	ErrBirthdayCardReq = "configuration error: birthday card template path is empty"
	ErrAnnivCardReq    = "configuration error: anniversary card template path is empty"
	ErrRunFailed       = "daily run failed"
)

// -----------------------------------------------------------------------------
// HTTP Server Responses
// -----------------------------------------------------------------------------

const (
	HTTPMsgInitializing = "Report not generated yet, please try again shortly."
	HTTPMsgMethodNotAll = "Method Not Allowed"
)

// -----------------------------------------------------------------------------
// Fallbacks & Defaults (Greeting Text)
// -----------------------------------------------------------------------------

const (
	FallbackBirthdayGreeting    = "Happy Birthday %s"
	FallbackAnniversaryGreeting = "Happy Anniversary" + LineBreak + "%s"
	FallbackBirthdaySubject     = "Happy Birthday, %s!"
	FallbackAnniversarySubject  = "Happy Anniversary, %s!"

	// FallbackSummary formats a calendar event title: category, name.
	FallbackSummary = "%s: %s"
	// FallbackSummaryYears adds the age / years count.
	FallbackSummaryYears = "%s: %s (%d)"
)

// -----------------------------------------------------------------------------
// Info & Warning Messages (Logs)
// -----------------------------------------------------------------------------

const (
	MsgAppStarting     = "Starting application"
	MsgAppStop         = "Application stopped gracefully"
	MsgCtxCancel       = "Context cancelled, shutting down"
	MsgLogWarning      = "%s (%s): %v\n"
	MsgRunStarted      = "Daily run started"
	MsgRunFinished     = "Daily run finished"
	MsgRosterLoaded    = "Roster loaded"
	MsgSkippedRow      = "Skipping malformed roster row"
	MsgSkippedCard     = "Skipping malformed vCard"
	MsgSkippedDate     = "Date field unparseable, treating as absent"
	MsgEventToday      = "Event matched"
	MsgMatchesFound    = "Matched events for today"
	MsgImageRendered   = "Greeting image rendered"
	MsgImageSaved      = "Personalized image saved"
	MsgEmailSent       = "Greeting email sent"
	MsgEmailSkipped    = "Email sending disabled, render only"
	MsgReportWritten   = "Daily report written"
	MsgReportEmailed   = "Run report emailed"
	MsgCalendarBuilt   = "Calendar feed generated"
	MsgFontResolved    = "Font resolved"
	MsgFontFallback    = "All font candidates failed, using bitmap fallback"
	MsgInvalidHexColor = "Invalid hex color, defaulting to black"
	MsgTemplateMissing = "Template image missing, skipping event"
	MsgServerListen    = "HTTP server listening"
	MsgServerStop      = "Shutting down HTTP server..."
	MsgCacheUpdated    = "Server cache updated"
	MsgLocaleSkip      = "Skipping non-locale file"
	MsgLocaleLoaded    = "Locale loaded successfully"
	MsgTransMissing    = "Missing translation, using fallback"
)

// -----------------------------------------------------------------------------
// Log Keys
// -----------------------------------------------------------------------------

const (
	LogKeyComponent = "component"
	LogKeyError     = "error"
	LogKeyFile      = "file"
	LogKeyPath      = "path"
	LogKeyPort      = "port"
	LogKeyLang      = "lang"
	LogKeyKey       = "key"
	LogKeyValue     = "value"
	LogKeyField     = "field"
	LogKeyRow       = "row"
	LogKeyCount     = "count"
	LogKeyName      = "name"
	LogKeyEmail     = "email"
	LogKeyCategory  = "category"
	LogKeyYears     = "years"
	LogKeyTier      = "tier"
	LogKeyText      = "text"
	LogKeyToday     = "today"
	LogKeyTotal     = "total_records"
	LogKeyBirthdays = "birthdays_today"
	LogKeyAnnivs    = "anniversaries_today"
	LogKeyStats     = "stats"
	LogKeyDuration  = "duration_ms"
	LogKeySizeBytes = "size_bytes"
	LogKeyETag      = "etag"
	LogKeyRoute     = "route"

	LogKeyBuild   = "build"
	LogKeyApp     = "app"
	LogKeyVersion = "version"
	LogKeyGoVer   = "go_version"
	LogKeyEnv     = "env"
	LogKeyOS      = "os"
	LogKeyArch    = "arch"
	LogKeyPID     = "pid"
)

// Log Components
const (
	CompMain     = "main"
	CompRoster   = "roster"
	CompEngine   = "engine"
	CompRender   = "render"
	CompReport   = "report"
	CompMailer   = "mailer"
	CompPipeline = "pipeline"
	CompServer   = "server"
	CompI18n     = "i18n"
)
