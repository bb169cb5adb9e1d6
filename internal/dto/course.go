package dto

// CourseRequest is the create/update payload for a course offering. Day, start
// and end may be left empty for courses that are not yet scheduled.
type CourseRequest struct {
	Code         string `json:"code" validate:"required,max=16"`
	Number       string `json:"number" validate:"required,max=16"`
	Section      string `json:"section" validate:"required,max=16"`
	Term         string `json:"term" validate:"required,max=16"`
	AcademicYear string `json:"academicYear" validate:"required,max=16"`
	Day          string `json:"day" validate:"omitempty,max=64"`
	Start        string `json:"start"`
	End          string `json:"end"`
}

// ReferenceRequest creates or renames a reference item.
type ReferenceRequest struct {
	Name string `json:"name" validate:"required,max=64"`
}

// ProgramRequest creates a program from a name and year level.
type ProgramRequest struct {
	Program string `json:"program" validate:"required,max=128"`
	Level   string `json:"level" validate:"required,max=16"`
}

// RequirementChangeResponse reports how many course rows an attach or detach touched.
type RequirementChangeResponse struct {
	Program  string `json:"program"`
	Level    string `json:"level"`
	Code     string `json:"code"`
	Number   string `json:"number"`
	Affected int64  `json:"affected"`
}
