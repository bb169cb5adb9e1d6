package timetable

import (
	"fmt"
	"sort"
	"strings"
)

// Weekday is a teaching day. The zero value is not a valid day.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
)

// Weekdays lists the teaching days in canonical order. Every sort and every
// label rendering goes through this slice.
var Weekdays = []Weekday{Monday, Tuesday, Wednesday, Thursday, Friday}

var weekdayShort = map[Weekday]string{
	Monday:    "Mon",
	Tuesday:   "Tue",
	Wednesday: "Wed",
	Thursday:  "Thu",
	Friday:    "Fri",
}

var weekdayLong = map[Weekday]string{
	Monday:    "Monday",
	Tuesday:   "Tuesday",
	Wednesday: "Wednesday",
	Thursday:  "Thursday",
	Friday:    "Friday",
}

// tokens recognised in stored day labels, lower-cased.
var weekdayTokens = map[string]Weekday{
	"m":         Monday,
	"mo":        Monday,
	"mon":       Monday,
	"monday":    Monday,
	"tu":        Tuesday,
	"tue":       Tuesday,
	"tues":      Tuesday,
	"tuesday":   Tuesday,
	"w":         Wednesday,
	"we":        Wednesday,
	"wed":       Wednesday,
	"weds":      Wednesday,
	"wednesday": Wednesday,
	"r":         Thursday,
	"th":        Thursday,
	"thu":       Thursday,
	"thur":      Thursday,
	"thurs":     Thursday,
	"thus":      Thursday,
	"thursday":  Thursday,
	"f":         Friday,
	"fr":        Friday,
	"fri":       Friday,
	"friday":    Friday,
}

// String returns the canonical short form.
func (d Weekday) String() string {
	if s, ok := weekdayShort[d]; ok {
		return s
	}
	return ""
}

// LongName returns the full English day name.
func (d Weekday) LongName() string {
	return weekdayLong[d]
}

// Valid reports whether d is one of the five teaching days.
func (d Weekday) Valid() bool {
	return d >= Monday && d <= Friday
}

// MarshalText renders the short form so weekday-keyed maps encode as {"Mon": ...}.
func (d Weekday) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// UnmarshalText accepts any recognised token.
func (d *Weekday) UnmarshalText(text []byte) error {
	day, ok := ParseWeekday(string(text))
	if !ok {
		return &UnknownDayError{Token: string(text)}
	}
	*d = day
	return nil
}

// ParseWeekday resolves a single day token in long, short, or legacy form.
func ParseWeekday(token string) (Weekday, bool) {
	key := strings.ToLower(strings.TrimSuffix(strings.TrimSpace(token), "."))
	day, ok := weekdayTokens[key]
	return day, ok
}

// UnknownDayError reports a day label token that matches no weekday.
type UnknownDayError struct {
	Token string
}

func (e *UnknownDayError) Error() string {
	return fmt.Sprintf("unknown day token %q", e.Token)
}

// SplitDayLabel breaks a delimiter-joined label into raw tokens.
func SplitDayLabel(label string) []string {
	return strings.FieldsFunc(label, func(r rune) bool {
		switch r {
		case '_', ',', '/', ';', '|', '-', ' ', '\t':
			return true
		}
		return false
	})
}

// ParseDayLabel expands a label such as "Mon_Wed_Fri" or "Monday, Thursday"
// into a deduplicated day set in canonical order. Unrecognised tokens are
// returned separately and are never coerced into a weekday.
func ParseDayLabel(label string) (days []Weekday, unknown []string) {
	seen := make(map[Weekday]struct{})
	for _, token := range SplitDayLabel(label) {
		day, ok := ParseWeekday(token)
		if !ok {
			unknown = append(unknown, token)
			continue
		}
		if _, dup := seen[day]; dup {
			continue
		}
		seen[day] = struct{}{}
		days = append(days, day)
	}
	SortWeekdays(days)
	return days, unknown
}

// CanonicalDayLabel renders a day set as "Mon_Wed_Fri".
func CanonicalDayLabel(days []Weekday) string {
	ordered := make([]Weekday, 0, len(days))
	seen := make(map[Weekday]struct{}, len(days))
	for _, d := range days {
		if !d.Valid() {
			continue
		}
		if _, dup := seen[d]; dup {
			continue
		}
		seen[d] = struct{}{}
		ordered = append(ordered, d)
	}
	SortWeekdays(ordered)
	parts := make([]string, len(ordered))
	for i, d := range ordered {
		parts[i] = d.String()
	}
	return strings.Join(parts, "_")
}

// SortWeekdays orders days Monday first.
func SortWeekdays(days []Weekday) {
	sort.Slice(days, func(i, j int) bool { return days[i] < days[j] })
}
