package models

import (
	"time"

	"github.com/noah-isme/course-timetable-api/internal/timetable"
)

// Course is a course offering joined with its reference names. Every name is
// nullable because reference rows may be deleted out from under a course.
type Course struct {
	ID           int64     `db:"id" json:"id"`
	Code         *string   `db:"code" json:"code"`
	Number       *string   `db:"number" json:"number"`
	Section      *string   `db:"section" json:"section"`
	Term         *string   `db:"term" json:"term"`
	AcademicYear *string   `db:"academic_year" json:"academic_year"`
	Day          *string   `db:"day" json:"day"`
	StartTime    *string   `db:"start_time" json:"start_time"`
	EndTime      *string   `db:"end_time" json:"end_time"`
	Slug         string    `db:"slug" json:"slug"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// Raw converts the row into layout engine input.
func (c Course) Raw() timetable.RawCourse {
	return timetable.RawCourse{
		ID:           timetable.OccurrenceID(c.ID),
		Code:         c.Code,
		Number:       c.Number,
		Section:      c.Section,
		Term:         c.Term,
		AcademicYear: c.AcademicYear,
		DayLabel:     c.Day,
		StartLabel:   c.StartTime,
		EndLabel:     c.EndTime,
	}
}

// CourseRecord is the write model stored in the courses table.
type CourseRecord struct {
	ID          int64     `db:"id"`
	CodeID      int64     `db:"code_id"`
	NumberID    int64     `db:"number_id"`
	SectionID   int64     `db:"section_id"`
	TermID      int64     `db:"term_id"`
	YearID      int64     `db:"academic_year_id"`
	DayID       *int64    `db:"day_id"`
	StartTimeID *int64    `db:"start_time_id"`
	EndTimeID   *int64    `db:"end_time_id"`
	Slug        string    `db:"slug"`
	CreatedAt   time.Time `db:"created_at"`
	UpdatedAt   time.Time `db:"updated_at"`
}

// CourseFilter scopes the paginated course listing.
type CourseFilter struct {
	Years     []string
	Code      string
	Number    string
	Section   string
	Terms     []string
	Days      []string
	Page      int
	PageSize  int
	SortBy    string
	SortOrder string
}

// CourseGroupFilter selects a code, optionally narrowed to some of its numbers.
type CourseGroupFilter struct {
	Code    string   `json:"code"`
	Numbers []string `json:"numbers"`
}

// TimetableQuery selects the courses fed to the layout engine.
type TimetableQuery struct {
	Year    string              `validate:"required"`
	Terms   []string            `validate:"required,min=1,dive,required"`
	Courses []CourseGroupFilter `validate:"omitempty"`
	Program string
	Level   string
}
