package roster

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/emersion/go-vcard"
	"github.com/tartampluch/go-greetings/internal/config"
)

// vcardDateFormats lists the BDAY/ANNIVERSARY layouts accepted from vCards.
// Address-book exports disagree on separators, so both forms are tried.
var vcardDateFormats = []string{config.DateFormatISO, config.DateFormatBasic}

// LoadVCard reads employee records from a vCard (.vcf) file.
// Name strategy follows N (structured) first, then FN split on the last
// space. A card without an email address is kept; it simply cannot be
// greeted by the transport step.
func (s *Store) LoadVCard(path string) ([]Employee, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRosterOpen, err)
	}
	defer func() { _ = f.Close() }()

	dec := vcard.NewDecoder(f)
	var employees []Employee

	for {
		card, err := dec.Decode()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			// Log and continue to the next card to maximize data recovery.
			s.log.Warn(config.MsgSkippedCard, config.LogKeyError, err)
			continue
		}

		emp := Employee{
			Email: strings.ToLower(strings.TrimSpace(card.Value(config.VCardEmail))),
		}
		emp.FirstName, emp.LastName = cardName(card)

		if bday := card.Value(config.VCardBDAY); bday != "" {
			emp.Birthday = s.parseVCardDate(config.VCardBDAY, bday, emp.Email)
		}
		if anniv := cardAnniversary(card); anniv != "" {
			emp.Anniversary = s.parseVCardDate(config.VCardAnniversary, anniv, emp.Email)
		}

		employees = append(employees, emp)
	}

	s.log.Info(config.MsgRosterLoaded,
		config.LogKeyPath, path,
		config.LogKeyCount, len(employees),
	)
	return employees, nil
}

// parseVCardDate tries the known vCard date layouts, returning nil on failure.
func (s *Store) parseVCardDate(field, value, email string) *time.Time {
	value = strings.TrimSpace(value)
	for _, layout := range vcardDateFormats {
		if t, err := time.Parse(layout, value); err == nil {
			return &t
		}
	}
	s.log.Warn(config.MsgSkippedDate,
		config.LogKeyField, field,
		config.LogKeyValue, value,
		config.LogKeyEmail, email,
	)
	return nil
}

// cardName extracts first/last name, preferring the structured N field.
func cardName(card vcard.Card) (first, last string) {
	if n := card.Name(); n != nil {
		first = strings.TrimSpace(n.GivenName)
		last = strings.TrimSpace(n.FamilyName)
		if first != "" || last != "" {
			return first, last
		}
	}
	fn := strings.TrimSpace(card.Value(config.VCardFN))
	if fn == "" {
		return "", ""
	}
	if i := strings.LastIndex(fn, " "); i >= 0 {
		return fn[:i], fn[i+1:]
	}
	return fn, ""
}

// cardAnniversary reads the vCard 4.0 ANNIVERSARY field, falling back to the
// X-ANNIVERSARY extension used by older exporters.
func cardAnniversary(card vcard.Card) string {
	if v := card.Value(config.VCardAnniversary); v != "" {
		return v
	}
	return card.Value(config.VCardXAnniversary)
}
