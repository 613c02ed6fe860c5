// Package roster loads and validates employee records from local files.
//
// Two source formats are supported: delimited CSV (the canonical format)
// and vCard. Both produce the same Employee records and share the same
// recovery policy: an unparseable date never fails the load, it only makes
// that field absent on the record.
package roster

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/tartampluch/go-greetings/internal/config"
)

// ErrMissingColumns is returned when the CSV header lacks a required column.
var ErrMissingColumns = errors.New(config.ErrMissingColumns)

// Employee is a single roster record. Date fields are nil when the source
// value was missing or unparseable; such records stay in the roster but are
// excluded from matching on the absent field.
type Employee struct {
	FirstName   string
	LastName    string
	Email       string
	Birthday    *time.Time
	Anniversary *time.Time
}

// FullName returns "First Last" for reports and filenames.
func (e Employee) FullName() string {
	return strings.TrimSpace(e.FirstName + " " + e.LastName)
}

// Store reads employee rosters. The logger is injected by the caller; the
// store never mutates global logging state.
type Store struct {
	log *slog.Logger
}

// NewStore creates a roster store logging through the given logger.
func NewStore(log *slog.Logger) *Store {
	return &Store{
		log: log.With(config.LogKeyComponent, config.CompRoster),
	}
}

// Load reads a CSV roster with a header row. Required columns are
// first_name, last_name, email and birthday; anniversary is optional.
// Dates use the canonical ISO-8601 layout (2006-01-02).
func (s *Store) Load(path string) ([]Employee, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", config.ErrRosterOpen, err)
	}
	defer func() { _ = f.Close() }()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true

	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, fmt.Errorf("%s: %w", config.ErrEmptyRoster, ErrMissingColumns)
		}
		return nil, fmt.Errorf("%s: %w", config.ErrRosterRead, err)
	}

	cols := make(map[string]int, len(header))
	for i, name := range header {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	var missing []string
	for _, required := range config.RequiredColumns {
		if _, ok := cols[required]; !ok {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: %s", ErrMissingColumns, strings.Join(missing, ", "))
	}

	// Rows may legitimately omit the trailing anniversary cell.
	r.FieldsPerRecord = -1

	var employees []Employee
	row := 1
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		row++
		if err != nil {
			s.log.Warn(config.MsgSkippedRow,
				config.LogKeyRow, row,
				config.LogKeyError, err,
			)
			continue
		}

		emp := Employee{
			FirstName: cell(record, cols[config.ColFirstName]),
			LastName:  cell(record, cols[config.ColLastName]),
			Email:     strings.ToLower(cell(record, cols[config.ColEmail])),
		}
		emp.Birthday = s.parseDateField(config.ColBirthday, cell(record, cols[config.ColBirthday]), emp.Email)
		if idx, ok := cols[config.ColAnniversary]; ok {
			emp.Anniversary = s.parseDateField(config.ColAnniversary, cell(record, idx), emp.Email)
		}

		employees = append(employees, emp)
	}

	s.log.Info(config.MsgRosterLoaded,
		config.LogKeyPath, path,
		config.LogKeyCount, len(employees),
	)
	return employees, nil
}

// parseDateField converts a roster cell into a date, or nil when the value
// is empty or unparseable. Unparseable values are logged, never fatal.
func (s *Store) parseDateField(field, value, email string) *time.Time {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil
	}
	t, err := time.Parse(config.DateFormatISO, value)
	if err != nil {
		s.log.Warn(config.MsgSkippedDate,
			config.LogKeyField, field,
			config.LogKeyValue, value,
			config.LogKeyEmail, email,
		)
		return nil
	}
	return &t
}

// cell returns the trimmed value at index i, or "" when the row is short.
func cell(record []string, i int) string {
	if i < 0 || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}
