package timetable

import (
	"fmt"
	"strconv"
	"strings"
)

// TimeLabel is a wall-clock time stored as minutes since midnight.
type TimeLabel int

// MinutesPerDay bounds every TimeLabel.
const MinutesPerDay = 24 * 60

// ParseTimeLabel accepts "HH:MM" or "HH:MM:SS" in 24-hour form. Seconds are
// validated then dropped.
func ParseTimeLabel(raw string) (TimeLabel, error) {
	raw = strings.TrimSpace(raw)
	parts := strings.Split(raw, ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0, fmt.Errorf("malformed time label %q", raw)
	}
	hour, err := parseClockPart(parts[0], 23)
	if err != nil {
		return 0, fmt.Errorf("malformed hour in %q: %w", raw, err)
	}
	minute, err := parseClockPart(parts[1], 59)
	if err != nil {
		return 0, fmt.Errorf("malformed minute in %q: %w", raw, err)
	}
	if len(parts) == 3 {
		if _, err := parseClockPart(parts[2], 59); err != nil {
			return 0, fmt.Errorf("malformed second in %q: %w", raw, err)
		}
	}
	return TimeLabel(hour*60 + minute), nil
}

// MustParseTimeLabel panics on malformed input. Intended for constants and tests.
func MustParseTimeLabel(raw string) TimeLabel {
	t, err := ParseTimeLabel(raw)
	if err != nil {
		panic(err)
	}
	return t
}

func parseClockPart(part string, max int) (int, error) {
	if len(part) != 2 {
		return 0, fmt.Errorf("expected two digits, got %q", part)
	}
	value, err := strconv.Atoi(part)
	if err != nil {
		return 0, err
	}
	if value < 0 || value > max {
		return 0, fmt.Errorf("%d out of range 0..%d", value, max)
	}
	return value, nil
}

// Minutes returns minutes since midnight.
func (t TimeLabel) Minutes() int {
	return int(t)
}

// Hour returns the hour component.
func (t TimeLabel) Hour() int {
	return int(t) / 60
}

// Minute returns the minute-of-hour component.
func (t TimeLabel) Minute() int {
	return int(t) % 60
}

// String renders HH:MM.
func (t TimeLabel) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour(), t.Minute())
}

// MarshalText renders HH:MM.
func (t TimeLabel) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText parses HH:MM[:SS].
func (t *TimeLabel) UnmarshalText(text []byte) error {
	parsed, err := ParseTimeLabel(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}
