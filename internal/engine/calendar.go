package engine

import (
	"bytes"
	"crypto/sha256"
	"fmt"
	"time"

	"github.com/emersion/go-ical"
	"github.com/tartampluch/go-greetings/internal/config"
)

// ExportCalendar renders today's matched events as an iCalendar feed.
// UIDs are deterministic so clients see stable events across re-runs of the
// same day. With no matches a minimal valid VCALENDAR stub is returned,
// which prevents clients from flagging the feed as invalid.
func (m *Matcher) ExportCalendar(matches []Match, now time.Time) ([]byte, error) {
	cal := ical.NewCalendar()
	cal.Props.SetText(config.PropVersion, config.ICalVersion)
	cal.Props.SetText(config.PropProdid, config.ICalProdid)
	cal.Props.SetText(config.PropXWRCalName, config.ICalCalName)
	cal.Props.SetText(config.PropCalScale, config.ICalScale)
	cal.Props.SetText(config.PropMethod, config.ICalMethod)

	dtStampProp := ical.NewProp(config.PropDTStamp)
	dtStampProp.SetDateTime(now.UTC())

	for _, match := range matches {
		event := ical.NewEvent()

		input := fmt.Sprintf(config.FormatHashInput,
			match.Category,
			match.Employee.FullName(),
			match.Employee.Email,
			config.UIDSalt,
		)
		hash := sha256.Sum256([]byte(input))
		uidBase := fmt.Sprintf("%x", hash[:config.UIDHashLength])
		event.Props.SetText(config.PropUID,
			fmt.Sprintf(config.FormatUID, uidBase, now.Year(), config.ICalDomain))

		summary := fmt.Sprintf(config.FallbackSummary, match.Category, match.Employee.FullName())
		if match.Years > 0 {
			summary = fmt.Sprintf(config.FallbackSummaryYears,
				match.Category, match.Employee.FullName(), match.Years)
		}
		event.Props.SetText(config.PropSummary, summary)

		dtStartProp := ical.NewProp(config.PropDTStart)
		dtStartProp.SetDate(now)
		event.Props.Set(dtStartProp)
		event.Props.Set(dtStampProp)

		cal.Children = append(cal.Children, event.Component)
	}

	if len(cal.Children) == 0 {
		m.log.Debug(config.MsgCalendarBuilt, config.LogKeyCount, 0)
		return []byte(config.StubVCalendar), nil
	}

	var buf bytes.Buffer
	if err := ical.NewEncoder(&buf).Encode(cal); err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrICalEncode, err)
	}

	m.log.Debug(config.MsgCalendarBuilt, config.LogKeyCount, len(cal.Children))
	return buf.Bytes(), nil
}
