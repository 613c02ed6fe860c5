package pipeline

import (
	"context"
	"image/color"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/disintegration/imaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tartampluch/go-greetings/internal/config"
	"github.com/tartampluch/go-greetings/internal/engine"
	"github.com/tartampluch/go-greetings/internal/greetings"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type sentMail struct {
	To        string
	Subject   string
	Body      string
	ImageName string
	Image     []byte
}

type logBuffer struct {
	data []byte
}

func (b *logBuffer) Write(p []byte) (int, error) {
	b.data = append(b.data, p...)
	return len(p), nil
}

func (b *logBuffer) String() string { return string(b.data) }

// stubSender records deliveries and can fail for one recipient.
type stubSender struct {
	calls   []sentMail
	failFor string
	failErr error
}

func (s *stubSender) Send(to, subject, body, imageName string, image []byte) error {
	if s.failFor != "" && to == s.failFor {
		return s.failErr
	}
	s.calls = append(s.calls, sentMail{To: to, Subject: subject, Body: body, ImageName: imageName, Image: image})
	return nil
}

func writeRoster(t *testing.T, dir string, rows ...string) string {
	t.Helper()
	content := "first_name,last_name,email,birthday,anniversary\n"
	for _, row := range rows {
		content += row + "\n"
	}
	path := filepath.Join(dir, "roster.csv")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func writeCard(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	img := imaging.New(300, 150, color.NRGBA{R: 0xFF, G: 0xFF, B: 0xFF, A: 0xFF})
	require.NoError(t, imaging.Save(img, path))
	return path
}

// testOptions builds a runnable Options over a fresh fixture directory with
// one birthday and one anniversary falling on the fixed run date.
func testOptions(t *testing.T) Options {
	t.Helper()
	dir := t.TempDir()
	return Options{
		RosterPath: writeRoster(t, dir,
			"John,Doe,John.Doe@example.com,1990-03-15,",
			"Jane,Smith,jane.smith@example.com,1985-07-01,2020-03-15",
			"Bob,Stone,bob.stone@example.com,1970-11-02,",
		),
		BirthdayCard:    writeCard(t, dir, "birthday.png"),
		AnniversaryCard: writeCard(t, dir, "anniversary.png"),
		OutputDir:       filepath.Join(dir, "out"),
		FontSize:        config.DefaultFontSize,
		FontColor:       config.DefaultFontColor,
		CenterBirthday:  true,
	}
}

func testPipeline(sender *stubSender) *Pipeline {
	return testPipelineLogged(sender, discardLogger())
}

func testPipelineLogged(sender *stubSender, log *slog.Logger) *Pipeline {
	clock := engine.FixedClock{T: time.Date(2024, time.March, 15, 9, 0, 0, 0, time.UTC)}
	translator := greetings.New(config.DefaultLanguage, discardLogger())
	if sender == nil {
		return New(clock, translator, nil, log)
	}
	return New(clock, translator, sender, log)
}

func TestRun_RenderOnly(t *testing.T) {
	opts := testOptions(t)
	p := testPipeline(nil)

	result, err := p.Run(context.Background(), opts)

	require.NoError(t, err, "a healthy render-only run must succeed")
	assert.Equal(t, 1, result.Stats.Sent(config.CategoryBirthday), "rendering counts as success without a sender")
	assert.Equal(t, 1, result.Stats.Sent(config.CategoryAnniversary))
	assert.Empty(t, result.Stats.Errors(), "no errors expected")

	assert.FileExists(t, filepath.Join(opts.OutputDir, "birthday_John_Doe_20240315.jpg"))
	assert.FileExists(t, filepath.Join(opts.OutputDir, "anniversary_Jane_Smith_20240315.jpg"))
	assert.FileExists(t, filepath.Join(opts.OutputDir, "daily_report_20240315.txt"))
	assert.Equal(t, filepath.Join(opts.OutputDir, "daily_report_20240315.txt"), result.ReportPath)

	assert.Contains(t, result.Report, "TOTAL SENT: 2")
	assert.Contains(t, result.Report, "- Jane Smith (jane.smith@example.com) - 4 years")
	assert.Contains(t, string(result.Calendar), "BEGIN:VEVENT", "calendar feed covers the matches")
}

func TestRun_SendsThroughSender(t *testing.T) {
	opts := testOptions(t)
	sender := &stubSender{}
	p := testPipeline(sender)

	result, err := p.Run(context.Background(), opts)

	require.NoError(t, err)
	require.Len(t, sender.calls, 2, "one delivery per match")

	assert.Equal(t, "john.doe@example.com", sender.calls[0].To, "roster emails are lowercased")
	assert.Equal(t, "Happy Birthday, John!", sender.calls[0].Subject)
	assert.Equal(t, "birthday_John_Doe_20240315.jpg", sender.calls[0].ImageName)
	assert.NotEmpty(t, sender.calls[0].Image, "the rendered image travels with the mail")

	assert.Equal(t, "jane.smith@example.com", sender.calls[1].To)
	assert.Equal(t, "Happy Anniversary, Jane!", sender.calls[1].Subject)

	assert.Equal(t, 1, result.Stats.Sent(config.CategoryBirthday))
	assert.Equal(t, 1, result.Stats.Sent(config.CategoryAnniversary))
}

func TestRun_SenderFailureDoesNotAbortBatch(t *testing.T) {
	opts := testOptions(t)
	sender := &stubSender{
		failFor: "john.doe@example.com",
		failErr: assert.AnError,
	}
	p := testPipeline(sender)

	result, err := p.Run(context.Background(), opts)

	require.NoError(t, err, "per-recipient failures are recoverable")
	assert.Equal(t, 0, result.Stats.Sent(config.CategoryBirthday))
	assert.Equal(t, 1, result.Stats.Failed(config.CategoryBirthday))
	assert.Equal(t, 1, result.Stats.Sent(config.CategoryAnniversary), "later matches still processed")

	require.NotEmpty(t, result.Stats.Errors())
	assert.Contains(t, result.Stats.Errors()[0].Message, "John Doe", "the failure names the employee")
	assert.Contains(t, result.Report, "TOTAL ERRORS: 1")
}

func TestRun_MissingTemplateIsRecoverable(t *testing.T) {
	opts := testOptions(t)
	opts.BirthdayCard = filepath.Join(t.TempDir(), "missing.png")
	var buf logBuffer
	p := testPipelineLogged(nil, slog.New(slog.NewTextHandler(&buf, nil)))

	result, err := p.Run(context.Background(), opts)

	require.NoError(t, err, "a broken template only fails its own events")
	assert.Equal(t, 1, result.Stats.Failed(config.CategoryBirthday))
	assert.Equal(t, 1, result.Stats.Sent(config.CategoryAnniversary), "the other category is unaffected")
	assert.FileExists(t, filepath.Join(opts.OutputDir, "daily_report_20240315.txt"), "the report is still written")
	assert.Contains(t, buf.String(), config.MsgTemplateMissing, "the missing template is called out in the log")
}

// A report that cannot be written must still surface somewhere: the text
// stays in the result and the write failure lands in the log.
func TestRun_ReportWriteFailureIsLogged(t *testing.T) {
	opts := testOptions(t)
	blocked := filepath.Join(t.TempDir(), "blocked")
	require.NoError(t, os.WriteFile(blocked, []byte("x"), 0o644))
	opts.OutputDir = blocked

	var buf logBuffer
	p := testPipelineLogged(nil, slog.New(slog.NewTextHandler(&buf, nil)))

	result, err := p.Run(context.Background(), opts)

	require.NoError(t, err, "a failed report write is not fatal")
	assert.Empty(t, result.ReportPath, "no path when nothing was written")
	assert.Contains(t, result.Report, "Daily Greetings Report", "the report text is still returned")
	assert.Contains(t, buf.String(), config.ErrReportWrite, "the write failure must reach the log")
}

func TestRun_EmailsReportToRecipient(t *testing.T) {
	opts := testOptions(t)
	opts.ReportRecipient = "hr@example.com"
	sender := &stubSender{}
	p := testPipeline(sender)

	result, err := p.Run(context.Background(), opts)

	require.NoError(t, err)
	require.Len(t, sender.calls, 3, "two greetings plus the report mail")

	last := sender.calls[2]
	assert.Equal(t, "hr@example.com", last.To)
	assert.Equal(t, "Daily Greetings Report - March 15, 2024", last.Subject)
	assert.Equal(t, result.Report, last.Body, "the mail body is the full report text")
	assert.Empty(t, last.ImageName, "the report mail carries no image")
}

// A failing report mail must not fail the run; the greetings already went out.
func TestRun_ReportMailFailureIsNotFatal(t *testing.T) {
	opts := testOptions(t)
	opts.ReportRecipient = "hr@example.com"
	sender := &stubSender{failFor: "hr@example.com", failErr: assert.AnError}
	p := testPipeline(sender)

	result, err := p.Run(context.Background(), opts)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Sent(config.CategoryBirthday))
	assert.Equal(t, 1, result.Stats.Sent(config.CategoryAnniversary))
	require.Len(t, sender.calls, 2, "only the greetings were delivered")
}

func TestRun_FatalValidation(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Options)
	}{
		{name: "empty roster path", mutate: func(o *Options) { o.RosterPath = "" }},
		{name: "empty birthday card", mutate: func(o *Options) { o.BirthdayCard = "" }},
		{name: "empty anniversary card", mutate: func(o *Options) { o.AnniversaryCard = "" }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			opts := testOptions(t)
			tc.mutate(&opts)
			p := testPipeline(nil)

			result, err := p.Run(context.Background(), opts)

			require.Error(t, err, "missing configuration is fatal")
			require.NotNil(t, result, "a best-effort report is produced even on fatal errors")
			assert.Contains(t, result.Report, "TOTAL ERRORS: 1")
			assert.NotEmpty(t, result.Stats.Errors())
		})
	}
}

func TestRun_UnreadableRosterIsFatal(t *testing.T) {
	opts := testOptions(t)
	opts.RosterPath = filepath.Join(t.TempDir(), "absent.csv")
	p := testPipeline(nil)

	result, err := p.Run(context.Background(), opts)

	require.Error(t, err)
	require.NotNil(t, result)
	assert.Contains(t, result.Report, "TOTAL ERRORS: 1", "the fatal error still lands in the report")
	assert.FileExists(t, filepath.Join(opts.OutputDir, "daily_report_20240315.txt"))
}

func TestRun_CancelledContext(t *testing.T) {
	opts := testOptions(t)
	var buf logBuffer
	p := testPipelineLogged(nil, slog.New(slog.NewTextHandler(&buf, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := p.Run(ctx, opts)

	require.ErrorIs(t, err, context.Canceled)
	require.NotNil(t, result)
	assert.Equal(t, 0, result.Stats.Sent(config.CategoryBirthday), "no greetings processed after cancellation")
	assert.Contains(t, buf.String(), config.MsgCtxCancel)
}

func TestRun_NoMatchesToday(t *testing.T) {
	opts := testOptions(t)
	dir := t.TempDir()
	opts.RosterPath = writeRoster(t, dir, "Bob,Stone,bob.stone@example.com,1970-11-02,")
	p := testPipeline(nil)

	result, err := p.Run(context.Background(), opts)

	require.NoError(t, err)
	assert.Contains(t, result.Report, "TOTAL SENT: 0")
	assert.Contains(t, string(result.Calendar), "BEGIN:VCALENDAR", "an empty feed is still valid")
	assert.NotContains(t, string(result.Calendar), "BEGIN:VEVENT")
}

func TestRun_LoadsVCardRoster(t *testing.T) {
	opts := testOptions(t)
	dir := t.TempDir()

	card := "BEGIN:VCARD\r\nVERSION:4.0\r\nFN:John Doe\r\nN:Doe;John;;;\r\nEMAIL:john.doe@example.com\r\nBDAY:1990-03-15\r\nEND:VCARD\r\n"
	path := filepath.Join(dir, "roster.vcf")
	require.NoError(t, os.WriteFile(path, []byte(card), 0o644))
	opts.RosterPath = path

	p := testPipeline(nil)
	result, err := p.Run(context.Background(), opts)

	require.NoError(t, err)
	assert.Equal(t, 1, result.Stats.Sent(config.CategoryBirthday), "vcf extension routes through the vCard loader")
}
