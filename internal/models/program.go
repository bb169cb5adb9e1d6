package models

import "time"

// Program is a curriculum identified by a program name and a year level.
type Program struct {
	ID          int64     `db:"id" json:"id"`
	NameID      int64     `db:"name_id" json:"name_id"`
	Name        string    `db:"name" json:"name"`
	YearLevelID int64     `db:"year_level_id" json:"year_level_id"`
	YearLevel   string    `db:"year_level" json:"year_level"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// RequirementCourse is one (code, number) pair attached to a program,
// represented by its oldest matching course.
type RequirementCourse struct {
	CourseID int64  `db:"course_id" json:"course_id"`
	Code     string `db:"code" json:"code"`
	Number   string `db:"number" json:"number"`
}

// Requirements lists a program's distinct required courses.
type Requirements struct {
	Program Program             `json:"program"`
	Courses []RequirementCourse `json:"courses"`
}

// RequirementChange attaches or detaches every course sharing a code and number.
type RequirementChange struct {
	Program string `json:"program" validate:"required"`
	Level   string `json:"level" validate:"required"`
	Code    string `json:"code" validate:"required"`
	Number  string `json:"number" validate:"required"`
}
