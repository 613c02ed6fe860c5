// Package pipeline wires the daily run: load roster, match today's events,
// composite one greeting image per match, optionally send it, and produce
// the run report. Recoverable errors stop at the per-event boundary; a
// fatal error aborts the run but still emits a best-effort report.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"image"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"
	"time"

	"github.com/tartampluch/go-greetings/internal/config"
	"github.com/tartampluch/go-greetings/internal/engine"
	"github.com/tartampluch/go-greetings/internal/greetings"
	"github.com/tartampluch/go-greetings/internal/mailer"
	"github.com/tartampluch/go-greetings/internal/render"
	"github.com/tartampluch/go-greetings/internal/report"
	"github.com/tartampluch/go-greetings/internal/roster"
)

// Options carries the per-run parameters resolved by the caller.
type Options struct {
	RosterPath      string
	BirthdayCard    string
	AnniversaryCard string
	OutputDir       string

	FontPath  string
	FontSize  float64
	FontColor string

	// BirthdayPos positions the single-line birthday text; with
	// CenterBirthday set only its Y component is used.
	BirthdayPos    image.Point
	CenterBirthday bool

	// AnniversaryPos.Y starts the multi-line block; non-positive centers it
	// vertically.
	AnniversaryPos image.Point

	// ReportRecipient, when set together with a Sender, receives the finished
	// run report by email.
	ReportRecipient string
}

// Result is what one run produces beyond its side effects on disk.
type Result struct {
	Report     string
	ReportPath string
	Calendar   []byte
	Stats      *report.Stats
}

// Pipeline executes daily runs. All dependencies are injected; the pipeline
// owns no global state and can be constructed fresh per invocation.
type Pipeline struct {
	Clock      engine.Clock
	Translator *greetings.Translator

	// Sender may be nil, which makes the run render-only: a rendered image
	// counts as the success outcome.
	Sender mailer.Sender

	log *slog.Logger
}

// New assembles a pipeline around the given collaborators.
func New(clock engine.Clock, translator *greetings.Translator, sender mailer.Sender, log *slog.Logger) *Pipeline {
	return &Pipeline{
		Clock:      clock,
		Translator: translator,
		Sender:     sender,
		log:        log.With(config.LogKeyComponent, config.CompPipeline),
	}
}

// Run performs one complete match → render → (send) → report cycle.
// The returned Result is valid even when err is non-nil: fatal errors still
// produce a best-effort report from whatever was accumulated.
func (p *Pipeline) Run(ctx context.Context, opts Options) (*Result, error) {
	started := p.Clock.Now()
	stats := report.NewStats(p.Clock, p.log)
	p.log.Info(config.MsgRunStarted,
		config.LogKeyToday, started.Format(config.DateFormatISO),
	)

	if err := validate(opts); err != nil {
		stats.RecordError(config.ErrRunFailed, err)
		return p.finish(stats, opts, nil), err
	}

	records, err := p.load(opts.RosterPath)
	if err != nil {
		stats.RecordError(config.ErrRunFailed, err)
		return p.finish(stats, opts, nil), err
	}

	today := p.Clock.Now()
	matcher := engine.NewMatcher(p.log)
	birthdays, anniversaries := matcher.Match(records, today)

	for _, m := range append(append([]engine.Match{}, birthdays...), anniversaries...) {
		stats.RecordMatch(report.MatchedEvent{
			Category: m.Category,
			Name:     m.Employee.FullName(),
			Email:    m.Employee.Email,
			Years:    m.Years,
		})
	}

	compositor := render.NewCompositor(opts.OutputDir, p.log)
	for _, m := range append(append([]engine.Match{}, birthdays...), anniversaries...) {
		if ctx.Err() != nil {
			p.log.Warn(config.MsgCtxCancel)
			stats.RecordError(config.ErrRunFailed, ctx.Err())
			return p.finish(stats, opts, matcher), ctx.Err()
		}
		p.processMatch(compositor, opts, m, stats, today)
	}

	result := p.finish(stats, opts, matcher, append(birthdays, anniversaries...)...)
	p.emailReport(opts, result)

	p.log.Info(config.MsgRunFinished,
		config.LogKeyDuration, time.Since(started).Milliseconds(),
		slog.Group(config.LogKeyStats,
			slog.Int(config.LogKeyBirthdays, len(birthdays)),
			slog.Int(config.LogKeyAnnivs, len(anniversaries)),
			slog.Int(config.LogKeyCount, len(stats.Errors())),
		),
	)
	return result, nil
}

// processMatch renders and optionally sends one greeting. Every failure is
// recorded and swallowed here so the batch always continues.
func (p *Pipeline) processMatch(compositor *render.Compositor, opts Options, m engine.Match, stats *report.Stats, today time.Time) {
	var (
		text     string
		subject  string
		template string
		spec     render.Spec
	)

	switch m.Category {
	case config.CategoryAnniversary:
		text = p.Translator.AnniversaryGreeting(m.Employee.FirstName)
		subject = p.Translator.AnniversarySubject(m.Employee.FirstName)
		template = opts.AnniversaryCard
		spec = render.Spec{
			Text:      text,
			Position:  opts.AnniversaryPos,
			Multiline: true,
		}
	default:
		text = p.Translator.BirthdayGreeting(m.Employee.FirstName)
		subject = p.Translator.BirthdaySubject(m.Employee.FirstName)
		template = opts.BirthdayCard
		spec = render.Spec{
			Text:        text,
			Position:    opts.BirthdayPos,
			CenterAlign: opts.CenterBirthday,
		}
	}

	spec.FontSize = opts.FontSize
	spec.FontColor = opts.FontColor
	spec.FontPath = opts.FontPath
	spec.OutputName = fmt.Sprintf(config.FormatImageFile,
		m.Category,
		m.Employee.FirstName,
		m.Employee.LastName,
		today.Format(config.DateFormatStamp),
	)

	imageBytes, _, err := compositor.Render(template, spec)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			p.log.Warn(config.MsgTemplateMissing, config.LogKeyPath, template)
		}
		stats.RecordFailure(m.Category,
			fmt.Sprintf("%s (%s): %v", m.Employee.FullName(), config.ErrRenderFailed, err))
		return
	}

	if p.Sender == nil {
		p.log.Debug(config.MsgEmailSkipped,
			config.LogKeyName, m.Employee.FullName(),
			config.LogKeyCategory, m.Category,
		)
		stats.RecordSuccess(m.Category)
		return
	}

	if err := p.Sender.Send(m.Employee.Email, subject, "", spec.OutputName, imageBytes); err != nil {
		stats.RecordFailure(m.Category,
			fmt.Sprintf("%s (%s): %v", m.Employee.FullName(), config.ErrSendFailed, err))
		return
	}
	stats.RecordSuccess(m.Category)
}

// finish renders the report and, best-effort, the calendar feed and report
// file. It is called on both success and fatal-abort paths.
func (p *Pipeline) finish(stats *report.Stats, opts Options, matcher *engine.Matcher, matches ...engine.Match) *Result {
	result := &Result{Stats: stats}

	if matcher != nil {
		if cal, err := matcher.ExportCalendar(matches, p.Clock.Now()); err == nil {
			result.Calendar = cal
		} else {
			stats.RecordError(config.ErrICalEncode, err)
		}
	}

	result.Report = stats.Finalize()
	if opts.OutputDir != "" {
		path, err := stats.WriteReport(opts.OutputDir, result.Report)
		if err != nil {
			// Stats are already finalized; the log is the only remaining
			// sink for this failure. The report text itself is still
			// returned to the caller.
			p.log.Error(config.ErrReportWrite, config.LogKeyError, err)
		} else {
			result.ReportPath = path
		}
	}
	return result
}

// emailReport sends the finished report text to the configured recipient.
// The report is already on disk and in the result by now; a delivery failure
// only logs.
func (p *Pipeline) emailReport(opts Options, result *Result) {
	if p.Sender == nil || opts.ReportRecipient == "" {
		return
	}
	subject := fmt.Sprintf(config.FormatReportTitle,
		p.Clock.Now().Format(config.DateFormatReport))
	if err := p.Sender.Send(opts.ReportRecipient, subject, result.Report, "", nil); err != nil {
		p.log.Error(config.ErrReportSend, config.LogKeyError, err)
		return
	}
	p.log.Info(config.MsgReportEmailed, config.LogKeyEmail, opts.ReportRecipient)
}

// load picks the roster source by file extension.
func (p *Pipeline) load(path string) ([]roster.Employee, error) {
	store := roster.NewStore(p.log)
	switch strings.ToLower(filepath.Ext(path)) {
	case config.ExtVCF, config.ExtVCard:
		return store.LoadVCard(path)
	default:
		return store.Load(path)
	}
}

// validate enforces the fatal configuration preconditions before any record
// is processed.
func validate(opts Options) error {
	if opts.RosterPath == "" {
		return errors.New(config.ErrRosterFlagEmpty)
	}
	if opts.BirthdayCard == "" {
		return errors.New(config.ErrBirthdayCardReq)
	}
	if opts.AnniversaryCard == "" {
		return errors.New(config.ErrAnnivCardReq)
	}
	return nil
}
