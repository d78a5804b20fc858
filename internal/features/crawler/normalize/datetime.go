package normalize

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// ErrEmptyDate is returned when there is no date text to parse
var ErrEmptyDate = errors.New("empty date")

// Now is the clock used for fallback timestamps. Tests replace it.
var Now = func() time.Time { return time.Now().UTC() }

// ParseDateTime parses RFC 822, RFC 3339 and the other loose formats feeds use.
// Values without a zone are taken as UTC and the result is always in UTC.
func ParseDateTime(raw string) (time.Time, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return time.Time{}, ErrEmptyDate
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return time.Time{}, fmt.Errorf("parse date %q: %w", raw, err)
	}
	return t.UTC(), nil
}

// FirstDateTime returns the first candidate that parses, or Now() when none do
func FirstDateTime(candidates ...string) time.Time {
	for _, c := range candidates {
		if t, err := ParseDateTime(c); err == nil {
			return t
		}
	}
	return Now()
}

// FromUnix converts epoch seconds, possibly fractional, to a UTC time
func FromUnix(seconds float64) time.Time {
	sec := int64(seconds)
	nsec := int64((seconds - float64(sec)) * float64(time.Second))
	return time.Unix(sec, nsec).UTC()
}
