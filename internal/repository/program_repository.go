package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-timetable-api/internal/models"
)

const programColumns = `p.id, p.name_id, pn.name AS name, p.year_level_id, pl.name AS year_level, p.created_at`

const programJoins = `FROM programs p
JOIN program_names pn ON pn.id = p.name_id
JOIN program_year_levels pl ON pl.id = p.year_level_id`

// ProgramRepository handles programs and their required courses.
type ProgramRepository struct {
	db *sqlx.DB
}

// NewProgramRepository instantiates a program repository.
func NewProgramRepository(db *sqlx.DB) *ProgramRepository {
	return &ProgramRepository{db: db}
}

// List returns every program ordered by name then level.
func (r *ProgramRepository) List(ctx context.Context) ([]models.Program, error) {
	query := fmt.Sprintf("SELECT %s %s ORDER BY pn.name, pl.name", programColumns, programJoins)
	var programs []models.Program
	if err := r.db.SelectContext(ctx, &programs, query); err != nil {
		return nil, fmt.Errorf("list programs: %w", err)
	}
	return programs, nil
}

// Find loads the program with the given name and level.
func (r *ProgramRepository) Find(ctx context.Context, name, level string) (*models.Program, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE pn.name = $1 AND pl.name = $2", programColumns, programJoins)
	var program models.Program
	if err := r.db.GetContext(ctx, &program, query, name, level); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find program: %w", err)
	}
	return &program, nil
}

// Create inserts a program for existing name and level rows.
func (r *ProgramRepository) Create(ctx context.Context, program *models.Program) error {
	program.CreatedAt = time.Now().UTC()
	const query = `INSERT INTO programs (name_id, year_level_id, created_at) VALUES ($1, $2, $3) RETURNING id`
	if err := r.db.GetContext(ctx, &program.ID, query, program.NameID, program.YearLevelID, program.CreatedAt); err != nil {
		return fmt.Errorf("create program: %w", err)
	}
	return nil
}

// RequirementCourses lists one row per distinct code and number attached to the program.
func (r *ProgramRepository) RequirementCourses(ctx context.Context, programID int64) ([]models.RequirementCourse, error) {
	const query = `SELECT MIN(c.id) AS course_id, cc.name AS code, cn.name AS number
FROM program_courses pc
JOIN courses c ON c.id = pc.course_id
JOIN course_codes cc ON cc.id = c.code_id
JOIN course_numbers cn ON cn.id = c.number_id
WHERE pc.program_id = $1
GROUP BY cc.name, cn.name
ORDER BY cc.name, cn.name`
	var courses []models.RequirementCourse
	if err := r.db.SelectContext(ctx, &courses, query, programID); err != nil {
		return nil, fmt.Errorf("list requirement courses: %w", err)
	}
	return courses, nil
}

// HasCourse reports whether any course with the code and number is attached.
func (r *ProgramRepository) HasCourse(ctx context.Context, programID int64, code, number string) (bool, error) {
	const query = `SELECT EXISTS (SELECT 1 FROM program_courses pc
JOIN courses c ON c.id = pc.course_id
JOIN course_codes cc ON cc.id = c.code_id
JOIN course_numbers cn ON cn.id = c.number_id
WHERE pc.program_id = $1 AND cc.name = $2 AND cn.name = $3)`
	var exists bool
	if err := r.db.GetContext(ctx, &exists, query, programID, code, number); err != nil {
		return false, fmt.Errorf("check requirement course: %w", err)
	}
	return exists, nil
}

// AttachCourses links every section of a code and number to the program.
func (r *ProgramRepository) AttachCourses(ctx context.Context, programID int64, code, number string) (int64, error) {
	const query = `INSERT INTO program_courses (program_id, course_id)
SELECT $1, c.id FROM courses c
JOIN course_codes cc ON cc.id = c.code_id
JOIN course_numbers cn ON cn.id = c.number_id
WHERE cc.name = $2 AND cn.name = $3
ON CONFLICT DO NOTHING`
	res, err := r.db.ExecContext(ctx, query, programID, code, number)
	if err != nil {
		return 0, fmt.Errorf("attach courses: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// DetachCourses unlinks every section of a code and number from the program.
func (r *ProgramRepository) DetachCourses(ctx context.Context, programID int64, code, number string) (int64, error) {
	const query = `DELETE FROM program_courses pc
USING courses c, course_codes cc, course_numbers cn
WHERE pc.program_id = $1 AND pc.course_id = c.id AND cc.id = c.code_id AND cn.id = c.number_id
AND cc.name = $2 AND cn.name = $3`
	res, err := r.db.ExecContext(ctx, query, programID, code, number)
	if err != nil {
		return 0, fmt.Errorf("detach courses: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}
