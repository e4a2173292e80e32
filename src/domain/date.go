package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DateLayout ISO-8601 の日付書式
const DateLayout = "2006-01-02"

// ErrDateMissing is returned when no date was supplied; it wraps ErrInvalidDate
var ErrDateMissing = fmt.Errorf("%w: date is required", ErrInvalidDate)

// ParseEntryDate parses YYYY-MM-DD into a UTC midnight time.
// An empty string yields ErrDateMissing, a malformed one ErrInvalidDate.
func ParseEntryDate(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, ErrDateMissing
	}
	d, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return d, nil
}

// IsDateMissing reports whether err came from an absent date
func IsDateMissing(err error) bool {
	return errors.Is(err, ErrDateMissing)
}

// FormatDate formats a date as YYYY-MM-DD
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}

// DateOf truncates t to its calendar day in UTC
func DateOf(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
