package timetable

import (
	"sort"
	"strconv"
	"strings"
)

// Distinct projects records matching key onto a sorted, deduplicated option
// list. An empty key yields an empty list. Nil or blank projections are skipped.
func Distinct[T any](records []T, key string, match func(T, string) bool, project func(T) *string) []string {
	key = strings.TrimSpace(key)
	if key == "" {
		return []string{}
	}
	seen := make(map[string]struct{})
	out := []string{}
	for _, rec := range records {
		if !match(rec, key) {
			continue
		}
		value := project(rec)
		if value == nil || *value == "" {
			continue
		}
		if _, dup := seen[*value]; dup {
			continue
		}
		seen[*value] = struct{}{}
		out = append(out, *value)
	}
	SortOptions(out)
	return out
}

// SortOptions orders values numerically when both sides are integers and
// lexicographically otherwise, so "9" sorts before "10".
func SortOptions(values []string) {
	sort.SliceStable(values, func(i, j int) bool {
		return optionLess(values[i], values[j])
	})
}

func optionLess(a, b string) bool {
	ai, aErr := strconv.Atoi(a)
	bi, bErr := strconv.Atoi(b)
	if aErr == nil && bErr == nil {
		if ai != bi {
			return ai < bi
		}
		return a < b
	}
	return a < b
}

func eq(field *string, key string) bool {
	return field != nil && *field == key
}

// TermsForYear lists terms offered in an academic year.
func TermsForYear(records []RawCourse, year string) []string {
	return Distinct(records, year,
		func(r RawCourse, k string) bool { return eq(r.AcademicYear, k) },
		func(r RawCourse) *string { return r.Term })
}

// NumbersForCode lists course numbers offered under a code.
func NumbersForCode(records []RawCourse, code string) []string {
	return Distinct(records, code,
		func(r RawCourse, k string) bool { return eq(r.Code, k) },
		func(r RawCourse) *string { return r.Number })
}

// distinctAll projects every record; the key only needs to be non-empty.
func distinctAll[T any](records []T, project func(T) *string) []string {
	return Distinct(records, "*", func(T, string) bool { return true }, project)
}

// Years lists every academic year present.
func Years(records []RawCourse) []string {
	return distinctAll(records, func(r RawCourse) *string { return r.AcademicYear })
}

// Codes lists every course code present.
func Codes(records []RawCourse) []string {
	return distinctAll(records, func(r RawCourse) *string { return r.Code })
}

// NumbersByCode maps every code to its sorted distinct numbers.
func NumbersByCode(records []RawCourse) map[string][]string {
	out := make(map[string][]string)
	for _, code := range Codes(records) {
		out[code] = NumbersForCode(records, code)
	}
	return out
}

// ProgramLevel pairs a program name with one of its year levels.
type ProgramLevel struct {
	Program *string `json:"program"`
	Level   *string `json:"level"`
}

// LevelsForProgram lists the year levels defined under a program.
func LevelsForProgram(programs []ProgramLevel, program string) []string {
	return Distinct(programs, program,
		func(p ProgramLevel, k string) bool { return eq(p.Program, k) },
		func(p ProgramLevel) *string { return p.Level })
}

// ProgramNames lists every program name present.
func ProgramNames(programs []ProgramLevel) []string {
	return distinctAll(programs, func(p ProgramLevel) *string { return p.Program })
}
