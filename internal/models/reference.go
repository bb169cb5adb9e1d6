package models

import "time"

// ReferenceKind names one of the lookup tables courses and programs point at.
type ReferenceKind string

const (
	ReferenceTerm         ReferenceKind = "terms"
	ReferenceCode         ReferenceKind = "codes"
	ReferenceNumber       ReferenceKind = "numbers"
	ReferenceSection      ReferenceKind = "sections"
	ReferenceTime         ReferenceKind = "times"
	ReferenceDay          ReferenceKind = "days"
	ReferenceYear         ReferenceKind = "years"
	ReferenceProgramName  ReferenceKind = "program-names"
	ReferenceProgramLevel ReferenceKind = "program-levels"
)

// ReferenceKinds lists every kind in display order.
var ReferenceKinds = []ReferenceKind{
	ReferenceTerm,
	ReferenceCode,
	ReferenceNumber,
	ReferenceSection,
	ReferenceTime,
	ReferenceDay,
	ReferenceYear,
	ReferenceProgramName,
	ReferenceProgramLevel,
}

// Valid reports whether k is a known kind.
func (k ReferenceKind) Valid() bool {
	for _, known := range ReferenceKinds {
		if k == known {
			return true
		}
	}
	return false
}

// ProgramScoped reports whether items of this kind are referenced by programs instead of courses.
func (k ReferenceKind) ProgramScoped() bool {
	return k == ReferenceProgramName || k == ReferenceProgramLevel
}

// ReferenceItem is a named lookup row.
type ReferenceItem struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// ReferenceFilter scopes reference list queries.
type ReferenceFilter struct {
	Search    string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// AffectedCourse identifies a course touched by a reference edit or delete.
type AffectedCourse struct {
	Code    string `db:"code" json:"code"`
	Number  string `db:"number" json:"number"`
	Section string `db:"section" json:"section"`
	Year    string `db:"year" json:"year"`
	Term    string `db:"term" json:"term"`
}

// AffectedProgram identifies a program touched by a reference edit or delete.
type AffectedProgram struct {
	Program string `db:"program" json:"program"`
	Level   string `db:"level" json:"level"`
}

// AffectedReport previews the blast radius of changing one reference item.
type AffectedReport struct {
	Count    int               `json:"count"`
	Courses  []AffectedCourse  `json:"courses,omitempty"`
	Programs []AffectedProgram `json:"programs,omitempty"`
}
