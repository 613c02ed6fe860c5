// Package engine matches roster records against the current calendar day
// and derives the age or tenure attached to each match.
package engine

import (
	"log/slog"
	"time"

	"github.com/tartampluch/go-greetings/internal/config"
	"github.com/tartampluch/go-greetings/internal/roster"
)

// Match pairs a roster record with the derived year count for its event.
// Years is the age for a birthday and the tenure for an anniversary.
//
// Years is a naive year subtraction. That is only correct because matching
// happens exactly on the event's month and day; do not generalize this into
// a date-difference calculation.
type Match struct {
	Category string
	Employee roster.Employee
	Years    int
}

// Matcher scans a roster for events falling on a given day.
type Matcher struct {
	log *slog.Logger
}

// NewMatcher creates a matcher logging through the given logger.
func NewMatcher(log *slog.Logger) *Matcher {
	return &Matcher{
		log: log.With(config.LogKeyComponent, config.CompEngine),
	}
}

// Match returns the records whose birthday respectively anniversary falls on
// today's month and day. The year is ignored for matching. Input order is
// preserved in both result slices.
//
// A Feb-29 event only matches when today is literally Feb-29: in a non-leap
// year neither Feb-28 nor Mar-1 substitutes for it.
func (m *Matcher) Match(records []roster.Employee, today time.Time) (birthdays, anniversaries []Match) {
	for _, emp := range records {
		if onDay(emp.Birthday, today) {
			bm := Match{
				Category: config.CategoryBirthday,
				Employee: emp,
				Years:    today.Year() - emp.Birthday.Year(),
			}
			birthdays = append(birthdays, bm)
			m.logMatch(bm, today)
		}
		if onDay(emp.Anniversary, today) {
			am := Match{
				Category: config.CategoryAnniversary,
				Employee: emp,
				Years:    today.Year() - emp.Anniversary.Year(),
			}
			anniversaries = append(anniversaries, am)
			m.logMatch(am, today)
		}
	}

	m.log.Info(config.MsgMatchesFound,
		config.LogKeyToday, today.Format(config.DateFormatISO),
		config.LogKeyTotal, len(records),
		config.LogKeyBirthdays, len(birthdays),
		config.LogKeyAnnivs, len(anniversaries),
	)
	return birthdays, anniversaries
}

func (m *Matcher) logMatch(match Match, today time.Time) {
	m.log.Info(config.MsgEventToday,
		config.LogKeyCategory, match.Category,
		config.LogKeyName, match.Employee.FullName(),
		config.LogKeyYears, match.Years,
		config.LogKeyToday, today.Format(config.DateFormatISO),
	)
}

// onDay reports whether the date field exists and shares today's month and day.
func onDay(field *time.Time, today time.Time) bool {
	if field == nil {
		return false
	}
	return field.Month() == today.Month() && field.Day() == today.Day()
}
