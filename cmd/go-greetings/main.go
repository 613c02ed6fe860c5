package main

import (
	"context"
	"flag"
	"fmt"
	"image"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"syscall"
	"time"

	"github.com/tartampluch/go-greetings/internal/config"
	"github.com/tartampluch/go-greetings/internal/engine"
	"github.com/tartampluch/go-greetings/internal/greetings"
	"github.com/tartampluch/go-greetings/internal/mailer"
	"github.com/tartampluch/go-greetings/internal/pipeline"
	"github.com/tartampluch/go-greetings/internal/server"
)

// main delegates to runMain so deferred calls (like closing the log file)
// execute before the process terminates; os.Exit does not run defers.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
func runMain() int {
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	rosterPath := flag.String(config.FlagRoster, "", config.FlagDescRoster)
	birthdayCard := flag.String(config.FlagBirthdayCard, "", config.FlagDescBirthdayCard)
	anniversaryCard := flag.String(config.FlagAnniversaryCard, "", config.FlagDescAnniversaryCard)
	outputDir := flag.String(config.FlagOutput, config.DefaultOutputDir, config.FlagDescOutput)
	dateOverride := flag.String(config.FlagDate, "", config.FlagDescDate)
	lang := flag.String(config.FlagLang, config.DefaultLanguage, config.FlagDescLang)
	fontPath := flag.String(config.FlagFont, "", config.FlagDescFont)
	fontSize := flag.Float64(config.FlagFontSize, config.DefaultFontSize, config.FlagDescFontSize)
	fontColor := flag.String(config.FlagFontColor, config.DefaultFontColor, config.FlagDescFontColor)
	sendMail := flag.Bool(config.FlagSend, false, config.FlagDescSend)
	serveHTTP := flag.Bool(config.FlagServe, false, config.FlagDescServe)
	port := flag.String(config.FlagPort, config.DefaultPort, config.FlagDescPort)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	if err := run(ctx, runOptions{
		roster:          *rosterPath,
		birthdayCard:    *birthdayCard,
		anniversaryCard: *anniversaryCard,
		outputDir:       *outputDir,
		dateOverride:    *dateOverride,
		lang:            *lang,
		fontPath:        *fontPath,
		fontSize:        *fontSize,
		fontColor:       *fontColor,
		sendMail:        *sendMail,
		serveHTTP:       *serveHTTP,
		port:            *port,
	}); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

type runOptions struct {
	roster          string
	birthdayCard    string
	anniversaryCard string
	outputDir       string
	dateOverride    string
	lang            string
	fontPath        string
	fontSize        float64
	fontColor       string
	sendMail        bool
	serveHTTP       bool
	port            string
}

// run wires the dependencies and executes one daily batch, optionally
// followed by the report server.
func run(ctx context.Context, opts runOptions) error {
	log := slog.Default()

	clock, err := resolveClock(opts.dateOverride)
	if err != nil {
		return err
	}

	var sender mailer.Sender
	var reportTo string
	if opts.sendMail {
		settings := smtpFromEnv()
		// Fatal before any record is processed: a run told to send must not
		// silently degrade to render-only.
		if err := settings.Validate(); err != nil {
			return err
		}
		sender = mailer.NewSMTPSender(settings, log)
		// The run report goes back to the sending address.
		reportTo = settings.From
	}

	translator := greetings.New(opts.lang, log)
	p := pipeline.New(clock, translator, sender, log)

	result, err := p.Run(ctx, pipeline.Options{
		RosterPath:      opts.roster,
		BirthdayCard:    opts.birthdayCard,
		AnniversaryCard: opts.anniversaryCard,
		OutputDir:       opts.outputDir,
		FontPath:        opts.fontPath,
		FontSize:        opts.fontSize,
		FontColor:       opts.fontColor,
		BirthdayPos:     image.Pt(config.DefaultTextX, config.DefaultTextY),
		CenterBirthday:  true,
		AnniversaryPos:  image.Pt(config.DefaultTextX, config.DefaultTextY),
		ReportRecipient: reportTo,
	})
	if err != nil {
		return err
	}

	if !opts.serveHTTP {
		return nil
	}

	srv := server.NewReportServer(opts.port, log)
	srv.UpdateReport([]byte(result.Report))
	if result.Calendar != nil {
		srv.UpdateCalendar(result.Calendar)
	}
	return srv.Start(ctx)
}

// resolveClock returns a fixed clock when -date is given, the real clock
// otherwise.
func resolveClock(dateOverride string) (engine.Clock, error) {
	if dateOverride == "" {
		return engine.RealClock{}, nil
	}
	t, err := time.ParseInLocation(config.DateFormatISO, dateOverride, time.Local)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrDateFlag, err)
	}
	return engine.FixedClock{T: t}, nil
}

// smtpFromEnv reads SMTP settings from the environment. Credentials are
// deliberately not persisted anywhere by this program.
func smtpFromEnv() mailer.SMTPSettings {
	port := 0
	if v := os.Getenv(config.EnvSMTPPort); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			port = n
		}
	}
	return mailer.SMTPSettings{
		Host:     os.Getenv(config.EnvSMTPHost),
		Port:     port,
		Username: os.Getenv(config.EnvSMTPUser),
		Password: os.Getenv(config.EnvSMTPPass),
		From:     os.Getenv(config.EnvSMTPFrom),
	}
}

// printVersion outputs the build information to stdout.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger: JSON to stdout, plus a
// log file in the user cache directory when available.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	writers = append(writers, os.Stdout)

	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
