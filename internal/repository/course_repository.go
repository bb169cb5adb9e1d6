package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/noah-isme/course-timetable-api/internal/models"
)

const courseColumns = `c.id, cc.name AS code, cn.name AS number, cs.name AS section, ct.name AS term, cy.name AS academic_year, cd.name AS day, st.name AS start_time, et.name AS end_time, c.slug, c.created_at, c.updated_at`

const courseJoins = `FROM courses c
LEFT JOIN course_codes cc ON cc.id = c.code_id
LEFT JOIN course_numbers cn ON cn.id = c.number_id
LEFT JOIN course_sections cs ON cs.id = c.section_id
LEFT JOIN course_terms ct ON ct.id = c.term_id
LEFT JOIN course_years cy ON cy.id = c.academic_year_id
LEFT JOIN course_days cd ON cd.id = c.day_id
LEFT JOIN course_times st ON st.id = c.start_time_id
LEFT JOIN course_times et ON et.id = c.end_time_id`

var courseSorts = map[string]string{
	"code":          "cc.name",
	"number":        "cn.name",
	"section":       "cs.name",
	"term":          "ct.name",
	"academic_year": "cy.name",
	"created_at":    "c.created_at",
	"id":            "c.id",
}

// CourseRepository handles persistence for course offerings.
type CourseRepository struct {
	db *sqlx.DB
}

// NewCourseRepository instantiates a course repository.
func NewCourseRepository(db *sqlx.DB) *CourseRepository {
	return &CourseRepository{db: db}
}

// ListTimetableRecords returns the courses matching a timetable query, oldest first.
func (r *CourseRepository) ListTimetableRecords(ctx context.Context, q models.TimetableQuery) ([]models.Course, error) {
	conditions := []string{"cy.name = $1", "ct.name = ANY($2)"}
	args := []interface{}{q.Year, pq.Array(q.Terms)}

	if len(q.Courses) > 0 {
		groups := make([]string, 0, len(q.Courses))
		for _, group := range q.Courses {
			if group.Code == "" {
				continue
			}
			args = append(args, group.Code)
			// Codes stored before canonicalisation may be lower case.
			clause := fmt.Sprintf("UPPER(cc.name) = UPPER($%d)", len(args))
			if len(group.Numbers) > 0 {
				args = append(args, pq.Array(group.Numbers))
				clause = fmt.Sprintf("(%s AND cn.name = ANY($%d))", clause, len(args))
			}
			groups = append(groups, clause)
		}
		if len(groups) > 0 {
			conditions = append(conditions, "("+strings.Join(groups, " OR ")+")")
		}
	}

	if q.Program != "" {
		args = append(args, q.Program)
		sub := fmt.Sprintf(`EXISTS (SELECT 1 FROM program_courses pc JOIN programs p ON p.id = pc.program_id JOIN program_names pn ON pn.id = p.name_id JOIN program_year_levels pl ON pl.id = p.year_level_id WHERE pc.course_id = c.id AND pn.name = $%d`, len(args))
		if q.Level != "" {
			args = append(args, q.Level)
			sub += fmt.Sprintf(" AND pl.name = $%d", len(args))
		}
		conditions = append(conditions, sub+")")
	}

	query := fmt.Sprintf("SELECT %s %s WHERE %s ORDER BY c.id", courseColumns, courseJoins, strings.Join(conditions, " AND "))

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list timetable records: %w", err)
	}
	return courses, nil
}

func courseConditions(filter models.CourseFilter) (string, []interface{}) {
	var where conditions
	if len(filter.Years) > 0 {
		where.add("cy.name = ANY(?)", pq.Array(filter.Years))
	}
	if filter.Code != "" {
		where.add("cc.name = ?", filter.Code)
	}
	if filter.Number != "" {
		where.add("cn.name = ?", filter.Number)
	}
	if filter.Section != "" {
		where.add("cs.name = ?", filter.Section)
	}
	if len(filter.Terms) > 0 {
		where.add("ct.name = ANY(?)", pq.Array(filter.Terms))
	}
	if len(filter.Days) > 0 {
		where.add("cd.name = ANY(?)", pq.Array(filter.Days))
	}
	return where.from(courseJoins), where.args
}

func courseOrder(filter models.CourseFilter) string {
	return sortClause(filter.SortBy, filter.SortOrder, courseSorts, "cc.name") + ", c.id ASC"
}

// List returns a page of courses matching the filter.
func (r *CourseRepository) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error) {
	base, args := courseConditions(filter)
	var courses []models.Course
	total, err := selectPage(ctx, r.db, &courses, courseColumns, base, courseOrder(filter), pageClause(filter.Page, filter.PageSize), args)
	if err != nil {
		return nil, 0, fmt.Errorf("list courses: %w", err)
	}
	return courses, total, nil
}

// ListAll returns every course matching the filter without paging.
func (r *CourseRepository) ListAll(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	base, args := courseConditions(filter)
	query := fmt.Sprintf("SELECT %s %s ORDER BY %s", courseColumns, base, courseOrder(filter))

	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query, args...); err != nil {
		return nil, fmt.Errorf("list all courses: %w", err)
	}
	return courses, nil
}

// Catalog returns every course for option aggregation.
func (r *CourseRepository) Catalog(ctx context.Context) ([]models.Course, error) {
	query := fmt.Sprintf("SELECT %s %s ORDER BY c.id", courseColumns, courseJoins)
	var courses []models.Course
	if err := r.db.SelectContext(ctx, &courses, query); err != nil {
		return nil, fmt.Errorf("load course catalog: %w", err)
	}
	return courses, nil
}

// FindByID loads a course with its reference names.
func (r *CourseRepository) FindByID(ctx context.Context, id int64) (*models.Course, error) {
	query := fmt.Sprintf("SELECT %s %s WHERE c.id = $1", courseColumns, courseJoins)
	var course models.Course
	if err := r.db.GetContext(ctx, &course, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find course: %w", err)
	}
	return &course, nil
}

// Create inserts a course and fills in its generated identifier.
func (r *CourseRepository) Create(ctx context.Context, rec *models.CourseRecord) error {
	now := time.Now().UTC()
	rec.CreatedAt = now
	rec.UpdatedAt = now

	const query = `INSERT INTO courses (code_id, number_id, section_id, term_id, academic_year_id, day_id, start_time_id, end_time_id, slug, created_at, updated_at) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11) RETURNING id`
	if err := r.db.GetContext(ctx, &rec.ID, query,
		rec.CodeID, rec.NumberID, rec.SectionID, rec.TermID, rec.YearID,
		rec.DayID, rec.StartTimeID, rec.EndTimeID, rec.Slug, rec.CreatedAt, rec.UpdatedAt,
	); err != nil {
		return fmt.Errorf("create course: %w", err)
	}
	return nil
}

// Update replaces every column of an existing course.
func (r *CourseRepository) Update(ctx context.Context, rec *models.CourseRecord) error {
	rec.UpdatedAt = time.Now().UTC()

	const query = `UPDATE courses SET code_id = $2, number_id = $3, section_id = $4, term_id = $5, academic_year_id = $6, day_id = $7, start_time_id = $8, end_time_id = $9, slug = $10, updated_at = $11 WHERE id = $1`
	res, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.CodeID, rec.NumberID, rec.SectionID, rec.TermID, rec.YearID,
		rec.DayID, rec.StartTimeID, rec.EndTimeID, rec.Slug, rec.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("update course: %w", err)
	}
	return expectAffected(res)
}

// Delete removes a course.
func (r *CourseRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM courses WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	return expectAffected(res)
}

func expectAffected(res sql.Result) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if affected == 0 {
		return sql.ErrNoRows
	}
	return nil
}
