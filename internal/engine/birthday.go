package engine

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tartampluch/go-lifeclock/internal/config"
)

var (
	// ErrBirthdayMissing is returned when no birthday has been configured yet.
	ErrBirthdayMissing = errors.New(config.ErrNoBirthdaySet)

	// ErrInvalidBirthday is returned when a birthday string does not parse
	// into a date with a known year.
	ErrInvalidBirthday = errors.New(config.ErrDateParse)
)

// NewBirthRecord builds a BirthRecord from persisted settings values.
func NewBirthRecord(birthday string, lifetime int) (BirthRecord, error) {
	date, err := ParseBirthday(birthday)
	if err != nil {
		return BirthRecord{}, err
	}
	return BirthRecord{BirthDate: date, LifeExpectancyYears: lifetime}, nil
}

// ParseBirthday parses a configured birthday. YYYY-MM-DD is the canonical
// layout; the other full-date layouts found in contact cards are accepted too.
// The result is midnight UTC of that date.
func ParseBirthday(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return time.Time{}, ErrBirthdayMissing
	}

	t, yearKnown, err := parseDate(value)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidBirthday, value)
	}
	if !yearKnown {
		return time.Time{}, fmt.Errorf("%w: %q has no year", ErrInvalidBirthday, value)
	}
	return t, nil
}

// FormatBirthday renders a birth date in the persisted layout.
func FormatBirthday(t time.Time) string {
	return t.Format(config.DateFormatBirthday)
}

// parseDate handles the vCard BDAY layouts, including the yearless --MM-DD forms.
func parseDate(value string) (time.Time, bool, error) {
	formatsWithYear := []string{
		config.DateFormatBirthday,
		config.DateFormatFullBasic,
		config.DateFormatRFC3339,
		config.DateFormatFullT,
	}

	for _, f := range formatsWithYear {
		if t, err := time.Parse(f, value); err == nil {
			y, m, d := t.Date()
			return time.Date(y, m, d, 0, 0, 0, 0, time.UTC), true, nil
		}
	}

	for _, f := range []string{config.DateFormatNoYearD, config.DateFormatNoYearB} {
		if t, err := time.Parse(f, value); err == nil {
			return time.Date(0, t.Month(), t.Day(), 0, 0, 0, 0, time.UTC), false, nil
		}
	}

	return time.Time{}, false, ErrInvalidBirthday
}
