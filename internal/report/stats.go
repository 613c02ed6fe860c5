// Package report accumulates per-run statistics and renders the daily
// plain-text summary.
package report

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/tartampluch/go-greetings/internal/config"
	"github.com/tartampluch/go-greetings/internal/engine"
)

// MatchedEvent is a matched birthday or anniversary recorded for the report.
type MatchedEvent struct {
	Category string
	Name     string
	Email    string
	Years    int
}

// ErrorEntry is a timestamped error captured during the run.
type ErrorEntry struct {
	Timestamp time.Time
	Message   string
	Cause     string
}

// Stats accumulates outcomes across a single run. It is purely additive:
// counters only increment and lists only append. A Stats value is owned by
// exactly one run and consumed once by Finalize.
type Stats struct {
	clock engine.Clock
	log   *slog.Logger

	sent    map[string]int
	failed  map[string]int
	matches []MatchedEvent
	errors  []ErrorEntry

	start time.Time
	end   time.Time
}

// NewStats starts a fresh accumulator stamped with the clock's current time.
// The logger is injected by the caller; Stats never touches global logging
// configuration.
func NewStats(clock engine.Clock, log *slog.Logger) *Stats {
	return &Stats{
		clock:  clock,
		log:    log.With(config.LogKeyComponent, config.CompReport),
		sent:   make(map[string]int),
		failed: make(map[string]int),
		start:  clock.Now(),
	}
}

// RecordMatch appends a matched event to the report's event list.
func (s *Stats) RecordMatch(ev MatchedEvent) {
	s.matches = append(s.matches, ev)
}

// RecordSuccess increments the sent counter for a category.
func (s *Stats) RecordSuccess(category string) {
	s.sent[category]++
}

// RecordFailure increments the failed counter for a category and records the
// reason as a timestamped error entry.
func (s *Stats) RecordFailure(category, reason string) {
	s.failed[category]++
	s.appendError(fmt.Sprintf("%s: %s", category, reason), "")
}

// RecordError appends a timestamped error entry. err may be nil.
func (s *Stats) RecordError(message string, err error) {
	cause := ""
	if err != nil {
		cause = err.Error()
	}
	s.appendError(message, cause)
}

func (s *Stats) appendError(message, cause string) {
	entry := ErrorEntry{
		Timestamp: s.clock.Now(),
		Message:   message,
		Cause:     cause,
	}
	s.errors = append(s.errors, entry)
	s.log.Error(entry.Message, config.LogKeyError, entry.Cause)
}

// Sent returns the sent counter for a category.
func (s *Stats) Sent(category string) int { return s.sent[category] }

// Failed returns the failed counter for a category.
func (s *Stats) Failed(category string) int { return s.failed[category] }

// Matches returns the recorded events in insertion order.
func (s *Stats) Matches() []MatchedEvent { return s.matches }

// Errors returns the recorded errors in insertion order.
func (s *Stats) Errors() []ErrorEntry { return s.errors }

// Finalize stamps the end time and renders the human-readable run summary.
// The output is deterministic for a given accumulator state and clock.
func (s *Stats) Finalize() string {
	s.end = s.clock.Now()
	duration := s.end.Sub(s.start)

	var b strings.Builder
	fmt.Fprintf(&b, config.FormatReportTitle+"\n", s.start.Format(config.DateFormatReport))
	b.WriteString("================================================================\n\n")

	b.WriteString("EXECUTION SUMMARY:\n")
	fmt.Fprintf(&b, "- Start Time: %s\n", s.start.Format(config.TimeFormatReport))
	fmt.Fprintf(&b, "- End Time: %s\n", s.end.Format(config.TimeFormatReport))
	fmt.Fprintf(&b, "- Duration: %s\n\n", duration)

	birthdays, anniversaries := s.splitMatches()

	b.WriteString("BIRTHDAY GREETINGS:\n")
	fmt.Fprintf(&b, "- Sent Successfully: %d\n", s.sent[config.CategoryBirthday])
	fmt.Fprintf(&b, "- Failed: %d\n", s.failed[config.CategoryBirthday])
	fmt.Fprintf(&b, "- Birthdays Today: %d\n\n", len(birthdays))

	b.WriteString("ANNIVERSARY GREETINGS:\n")
	fmt.Fprintf(&b, "- Sent Successfully: %d\n", s.sent[config.CategoryAnniversary])
	fmt.Fprintf(&b, "- Failed: %d\n", s.failed[config.CategoryAnniversary])
	fmt.Fprintf(&b, "- Anniversaries Today: %d\n\n", len(anniversaries))

	fmt.Fprintf(&b, "TOTAL SENT: %d\n", s.sent[config.CategoryBirthday]+s.sent[config.CategoryAnniversary])
	fmt.Fprintf(&b, "TOTAL ERRORS: %d\n", len(s.errors))

	if len(birthdays) > 0 {
		b.WriteString("\nBIRTHDAYS TODAY:\n")
		for _, ev := range birthdays {
			fmt.Fprintf(&b, "- %s (%s)\n", ev.Name, ev.Email)
		}
	}

	if len(anniversaries) > 0 {
		b.WriteString("\nANNIVERSARIES TODAY:\n")
		for _, ev := range anniversaries {
			fmt.Fprintf(&b, "- %s (%s) - %d years\n", ev.Name, ev.Email, ev.Years)
		}
	}

	if len(s.errors) > 0 {
		fmt.Fprintf(&b, "\nERRORS ENCOUNTERED (%d):\n", len(s.errors))
		for i, e := range s.errors {
			fmt.Fprintf(&b, "%d. %s - %s\n", i+1, e.Timestamp.Format(time.RFC3339), e.Message)
			if e.Cause != "" {
				fmt.Fprintf(&b, "   Cause: %s\n", e.Cause)
			}
		}
	}

	return b.String()
}

func (s *Stats) splitMatches() (birthdays, anniversaries []MatchedEvent) {
	for _, ev := range s.matches {
		switch ev.Category {
		case config.CategoryBirthday:
			birthdays = append(birthdays, ev)
		case config.CategoryAnniversary:
			anniversaries = append(anniversaries, ev)
		}
	}
	return birthdays, anniversaries
}

// WriteReport persists the report text under dir as
// daily_report_{YYYYMMDD}.txt, using the run's start date for the stamp.
func (s *Stats) WriteReport(dir, text string) (string, error) {
	if err := os.MkdirAll(dir, config.DirPermDefault); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrOutputDir, err)
	}
	name := fmt.Sprintf(config.FormatReportFile, s.start.Format(config.DateFormatStamp))
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(text), config.FilePermDefault); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrReportWrite, err)
	}
	s.log.Info(config.MsgReportWritten, config.LogKeyPath, path)
	return path, nil
}
