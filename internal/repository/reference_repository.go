package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/course-timetable-api/internal/models"
)

var referenceTables = map[models.ReferenceKind]string{
	models.ReferenceTerm:         "course_terms",
	models.ReferenceCode:         "course_codes",
	models.ReferenceNumber:       "course_numbers",
	models.ReferenceSection:      "course_sections",
	models.ReferenceTime:         "course_times",
	models.ReferenceDay:          "course_days",
	models.ReferenceYear:         "course_years",
	models.ReferenceProgramName:  "program_names",
	models.ReferenceProgramLevel: "program_year_levels",
}

// courseColumnsByKind maps a kind to the courses column(s) pointing at it.
var courseColumnsByKind = map[models.ReferenceKind][]string{
	models.ReferenceTerm:    {"c.term_id"},
	models.ReferenceCode:    {"c.code_id"},
	models.ReferenceNumber:  {"c.number_id"},
	models.ReferenceSection: {"c.section_id"},
	models.ReferenceTime:    {"c.start_time_id", "c.end_time_id"},
	models.ReferenceDay:     {"c.day_id"},
	models.ReferenceYear:    {"c.academic_year_id"},
}

var programColumnsByKind = map[models.ReferenceKind]string{
	models.ReferenceProgramName:  "p.name_id",
	models.ReferenceProgramLevel: "p.year_level_id",
}

var referenceSorts = map[string]string{"name": "name", "created_at": "created_at", "id": "id"}

// ReferenceRepository manages the named lookup tables.
type ReferenceRepository struct {
	db *sqlx.DB
}

// NewReferenceRepository instantiates a reference repository.
func NewReferenceRepository(db *sqlx.DB) *ReferenceRepository {
	return &ReferenceRepository{db: db}
}

func referenceTable(kind models.ReferenceKind) (string, error) {
	table, ok := referenceTables[kind]
	if !ok {
		return "", fmt.Errorf("%w: %s", ErrUnknownReferenceKind, kind)
	}
	return table, nil
}

// List returns a page of reference items ordered by name.
func (r *ReferenceRepository) List(ctx context.Context, kind models.ReferenceKind, filter models.ReferenceFilter) ([]models.ReferenceItem, int, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, 0, err
	}

	var where conditions
	if filter.Search != "" {
		where.add("LOWER(name) LIKE ?", "%"+strings.ToLower(filter.Search)+"%")
	}
	order := sortClause(filter.SortBy, filter.SortOrder, referenceSorts, "name")

	var items []models.ReferenceItem
	total, err := selectPage(ctx, r.db, &items, "id, name, created_at, updated_at", where.from("FROM "+table), order, pageClause(filter.Page, filter.PageSize), where.args)
	if err != nil {
		return nil, 0, fmt.Errorf("list %s: %w", kind, err)
	}
	return items, total, nil
}

// FindByID loads a reference item.
func (r *ReferenceRepository) FindByID(ctx context.Context, kind models.ReferenceKind, id int64) (*models.ReferenceItem, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	var item models.ReferenceItem
	query := fmt.Sprintf("SELECT id, name, created_at, updated_at FROM %s WHERE id = $1", table)
	if err := r.db.GetContext(ctx, &item, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s: %w", kind, err)
	}
	return &item, nil
}

// FindByName loads a reference item by its exact name.
func (r *ReferenceRepository) FindByName(ctx context.Context, kind models.ReferenceKind, name string) (*models.ReferenceItem, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	var item models.ReferenceItem
	query := fmt.Sprintf("SELECT id, name, created_at, updated_at FROM %s WHERE name = $1", table)
	if err := r.db.GetContext(ctx, &item, query, name); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find %s by name: %w", kind, err)
	}
	return &item, nil
}

// GetOrCreate returns the item with the given name, inserting it when absent.
func (r *ReferenceRepository) GetOrCreate(ctx context.Context, kind models.ReferenceKind, name string) (*models.ReferenceItem, error) {
	table, err := referenceTable(kind)
	if err != nil {
		return nil, err
	}
	now := time.Now().UTC()
	query := fmt.Sprintf(`INSERT INTO %s (name, created_at, updated_at) VALUES ($1, $2, $2) ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id, name, created_at, updated_at`, table)
	var item models.ReferenceItem
	if err := r.db.GetContext(ctx, &item, query, name, now); err != nil {
		return nil, fmt.Errorf("get or create %s: %w", kind, err)
	}
	return &item, nil
}

// Create inserts a new reference item.
func (r *ReferenceRepository) Create(ctx context.Context, kind models.ReferenceKind, item *models.ReferenceItem) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	now := time.Now().UTC()
	item.CreatedAt = now
	item.UpdatedAt = now
	query := fmt.Sprintf("INSERT INTO %s (name, created_at, updated_at) VALUES ($1, $2, $3) RETURNING id", table)
	if err := r.db.GetContext(ctx, &item.ID, query, item.Name, item.CreatedAt, item.UpdatedAt); err != nil {
		return fmt.Errorf("create %s: %w", kind, err)
	}
	return nil
}

// Update renames a reference item.
func (r *ReferenceRepository) Update(ctx context.Context, kind models.ReferenceKind, item *models.ReferenceItem) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	item.UpdatedAt = time.Now().UTC()
	query := fmt.Sprintf("UPDATE %s SET name = $2, updated_at = $3 WHERE id = $1", table)
	res, err := r.db.ExecContext(ctx, query, item.ID, item.Name, item.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update %s: %w", kind, err)
	}
	return expectAffected(res)
}

// Delete removes a reference item. Courses pointing at it keep a null column.
func (r *ReferenceRepository) Delete(ctx context.Context, kind models.ReferenceKind, id int64) error {
	table, err := referenceTable(kind)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, fmt.Sprintf("DELETE FROM %s WHERE id = $1", table), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	return expectAffected(res)
}

// AffectedCourses lists the courses referencing an item, ordered by identity.
// A time item matches courses that start or end at it.
func (r *ReferenceRepository) AffectedCourses(ctx context.Context, kind models.ReferenceKind, id int64) ([]models.AffectedCourse, error) {
	columns, ok := courseColumnsByKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReferenceKind, kind)
	}
	matches := make([]string, len(columns))
	for i, column := range columns {
		matches[i] = column + " = $1"
	}
	query := fmt.Sprintf(`SELECT COALESCE(cc.name, '') AS code, COALESCE(cn.name, '') AS number, COALESCE(cs.name, '') AS section, COALESCE(cy.name, '') AS year, COALESCE(ct.name, '') AS term %s WHERE %s ORDER BY code, number, section, year, term`,
		courseJoins, strings.Join(matches, " OR "))

	var courses []models.AffectedCourse
	if err := r.db.SelectContext(ctx, &courses, query, id); err != nil {
		return nil, fmt.Errorf("list courses affected by %s: %w", kind, err)
	}
	return courses, nil
}

// AffectedPrograms lists the programs referencing a program name or level item.
func (r *ReferenceRepository) AffectedPrograms(ctx context.Context, kind models.ReferenceKind, id int64) ([]models.AffectedProgram, error) {
	column, ok := programColumnsByKind[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownReferenceKind, kind)
	}
	query := fmt.Sprintf(`SELECT pn.name AS program, pl.name AS level FROM programs p JOIN program_names pn ON pn.id = p.name_id JOIN program_year_levels pl ON pl.id = p.year_level_id WHERE %s = $1 ORDER BY pn.name, pl.name`, column)

	var programs []models.AffectedProgram
	if err := r.db.SelectContext(ctx, &programs, query, id); err != nil {
		return nil, fmt.Errorf("list programs affected by %s: %w", kind, err)
	}
	return programs, nil
}
