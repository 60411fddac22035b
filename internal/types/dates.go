package types

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// DateLayout is the only date format accepted on the wire.
const DateLayout = "2006-01-02"

// ParseDate parses a strict YYYY-MM-DD calendar date. Surrounding whitespace
// is ignored; anything else that is not a real date fails.
func ParseDate(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	if len(value) != len(DateLayout) {
		return time.Time{}, fmt.Errorf("date %q is not YYYY-MM-DD", value)
	}
	parsed, err := time.ParseInLocation(DateLayout, value, time.Local)
	if err != nil {
		return time.Time{}, fmt.Errorf("date %q is not a calendar date", value)
	}
	return parsed, nil
}

// IsISODate reports whether value is a valid YYYY-MM-DD date.
func IsISODate(value string) bool {
	_, err := ParseDate(value)
	return err == nil
}

// ParseClockSeconds converts HH:MM or HH:MM:SS into seconds after midnight.
// Every part must be exactly two digits. 24:00 is rejected.
func ParseClockSeconds(value string) (int, error) {
	value = strings.TrimSpace(value)
	parts := strings.Split(value, ":")
	if len(parts) != 2 && len(parts) != 3 {
		return 0, fmt.Errorf("time %q is not HH:MM", value)
	}
	limits := []int{23, 59, 59}
	numbers := make([]int, 3)
	for i, part := range parts {
		if len(part) != 2 || !isDigits(part) {
			return 0, fmt.Errorf("time %q is not HH:MM", value)
		}
		n, err := strconv.Atoi(part)
		if err != nil || n > limits[i] {
			return 0, fmt.Errorf("time %q is out of range", value)
		}
		numbers[i] = n
	}
	return numbers[0]*3600 + numbers[1]*60 + numbers[2], nil
}

// ParseClock converts HH:MM or HH:MM:SS into minutes after midnight.
// Seconds are truncated; use ParseClockSeconds where they matter.
func ParseClock(value string) (int, error) {
	seconds, err := ParseClockSeconds(value)
	if err != nil {
		return 0, err
	}
	return seconds / 60, nil
}

func isDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// FormatClock renders minutes after midnight as HH:MM.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// NormalizeClock renders a HH:MM or HH:MM:SS value as HH:MM. Values that do
// not parse are returned trimmed but otherwise untouched.
func NormalizeClock(value string) string {
	minutes, err := ParseClock(value)
	if err != nil {
		return strings.TrimSpace(value)
	}
	return FormatClock(minutes)
}
