package schema

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/araddon/dateparse"
)

// DateLayout is the canonical stored form of an event date.
const DateLayout = "2006-01-02"

var (
	clock24 = regexp.MustCompile(`^([01]?[0-9]|2[0-3]):([0-5][0-9])$`)
	clock12 = regexp.MustCompile(`^(\d{1,2}):(\d{2})\s*(AM|PM)$`)
)

// NormalizeDate parses a free-form date and returns the UTC calendar date
// as YYYY-MM-DD. Inputs without an offset are read as UTC.
func NormalizeDate(input string) (string, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return "", fmt.Errorf("%w: empty date", ErrInvalidDateFormat)
	}

	t, err := dateparse.ParseIn(raw, time.UTC)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDateFormat, input)
	}

	return t.UTC().Format(DateLayout), nil
}

// NormalizeTime returns a 24-hour HH:MM clock time.
//
// Values already in 24-hour form are returned unchanged, so "9:00" stays
// "9:00". Only the 12-hour branch zero-pads the hour.
func NormalizeTime(input string) (string, error) {
	raw := strings.ToUpper(strings.TrimSpace(input))

	if clock24.MatchString(raw) {
		return raw, nil
	}

	m := clock12.FindStringSubmatch(raw)
	if m == nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, input)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])

	if hour < 1 || hour > 12 || minute > 59 {
		return "", fmt.Errorf("%w: %q", ErrInvalidTimeFormat, input)
	}

	switch {
	case m[3] == "PM" && hour != 12:
		hour += 12
	case m[3] == "AM" && hour == 12:
		hour = 0
	}

	return fmt.Sprintf("%02d:%02d", hour, minute), nil
}
