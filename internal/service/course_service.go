package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/dto"
	"github.com/noah-isme/course-timetable-api/internal/models"
	"github.com/noah-isme/course-timetable-api/internal/timetable"
	"github.com/noah-isme/course-timetable-api/pkg/database"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type courseRepository interface {
	List(ctx context.Context, filter models.CourseFilter) ([]models.Course, int, error)
	ListAll(ctx context.Context, filter models.CourseFilter) ([]models.Course, error)
	FindByID(ctx context.Context, id int64) (*models.Course, error)
	Create(ctx context.Context, rec *models.CourseRecord) error
	Update(ctx context.Context, rec *models.CourseRecord) error
	Delete(ctx context.Context, id int64) error
}

type referenceResolver interface {
	GetOrCreate(ctx context.Context, kind models.ReferenceKind, name string) (*models.ReferenceItem, error)
}

// CourseService manages course offerings at the edit boundary: it canonicalises
// day labels and times before they reach storage.
type CourseService struct {
	repo      courseRepository
	refs      referenceResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewCourseService constructs a CourseService.
func NewCourseService(repo courseRepository, refs referenceResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *CourseService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &CourseService{repo: repo, refs: refs, cache: cache, validator: validate, logger: logger}
}

// List returns a page of courses and pagination metadata.
func (s *CourseService) List(ctx context.Context, filter models.CourseFilter) ([]models.Course, *models.Pagination, error) {
	courses, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, paginationFor(filter.Page, filter.PageSize, total), nil
}

// ListAll returns every course matching filter, for export.
func (s *CourseService) ListAll(ctx context.Context, filter models.CourseFilter) ([]models.Course, error) {
	courses, err := s.repo.ListAll(ctx, filter)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list courses")
	}
	return courses, nil
}

// Get returns a course by ID.
func (s *CourseService) Get(ctx context.Context, id int64) (*models.Course, error) {
	course, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course")
	}
	return course, nil
}

// Create stores a new course offering.
func (s *CourseService) Create(ctx context.Context, req dto.CourseRequest) (*models.Course, error) {
	rec, err := s.buildRecord(ctx, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Create(ctx, rec); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "course section already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create course")
	}

	s.cache.InvalidateOptions(ctx)
	return s.Get(ctx, rec.ID)
}

// Update replaces a course offering.
func (s *CourseService) Update(ctx context.Context, id int64, req dto.CourseRequest) (*models.Course, error) {
	rec, err := s.buildRecord(ctx, req)
	if err != nil {
		return nil, err
	}
	rec.ID = id

	if err := s.repo.Update(ctx, rec); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "course not found")
		case database.IsUniqueViolation(err):
			return nil, appErrors.Clone(appErrors.ErrConflict, "course section already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update course")
	}

	s.cache.InvalidateOptions(ctx)
	return s.Get(ctx, id)
}

// Delete removes a course offering.
func (s *CourseService) Delete(ctx context.Context, id int64) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "course not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete course")
	}
	s.cache.InvalidateOptions(ctx)
	return nil
}

// CourseSlug is code-number-section-year-term, lowercased.
func CourseSlug(code, number, section, year, term string) string {
	return strings.ToLower(strings.Join([]string{code, number, section, year, term}, "-"))
}

func (s *CourseService) buildRecord(ctx context.Context, req dto.CourseRequest) (*models.CourseRecord, error) {
	req = trimCourseRequest(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid course payload")
	}

	dayLabel, err := canonicalDay(req.Day)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}
	start, end, err := canonicalTimes(req.Start, req.End)
	if err != nil {
		return nil, appErrors.Validation(err, err.Error())
	}

	rec := &models.CourseRecord{Slug: CourseSlug(req.Code, req.Number, req.Section, req.AcademicYear, req.Term)}

	resolve := func(kind models.ReferenceKind, name string) (int64, error) {
		item, err := s.refs.GetOrCreate(ctx, kind, name)
		if err != nil {
			return 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, fmt.Sprintf("failed to resolve %s", kind))
		}
		return item.ID, nil
	}
	resolveOptional := func(kind models.ReferenceKind, name string) (*int64, error) {
		if name == "" {
			return nil, nil
		}
		id, err := resolve(kind, name)
		if err != nil {
			return nil, err
		}
		return &id, nil
	}

	if rec.CodeID, err = resolve(models.ReferenceCode, req.Code); err != nil {
		return nil, err
	}
	if rec.NumberID, err = resolve(models.ReferenceNumber, req.Number); err != nil {
		return nil, err
	}
	if rec.SectionID, err = resolve(models.ReferenceSection, req.Section); err != nil {
		return nil, err
	}
	if rec.TermID, err = resolve(models.ReferenceTerm, req.Term); err != nil {
		return nil, err
	}
	if rec.YearID, err = resolve(models.ReferenceYear, req.AcademicYear); err != nil {
		return nil, err
	}
	if rec.DayID, err = resolveOptional(models.ReferenceDay, dayLabel); err != nil {
		return nil, err
	}
	if rec.StartTimeID, err = resolveOptional(models.ReferenceTime, start); err != nil {
		return nil, err
	}
	if rec.EndTimeID, err = resolveOptional(models.ReferenceTime, end); err != nil {
		return nil, err
	}
	return rec, nil
}

func trimCourseRequest(req dto.CourseRequest) dto.CourseRequest {
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Number = strings.TrimSpace(req.Number)
	req.Section = strings.TrimSpace(req.Section)
	req.Term = strings.TrimSpace(req.Term)
	req.AcademicYear = strings.TrimSpace(req.AcademicYear)
	req.Day = strings.TrimSpace(req.Day)
	req.Start = strings.TrimSpace(req.Start)
	req.End = strings.TrimSpace(req.End)
	return req
}

// canonicalDay rewrites any accepted spelling into the stored day label.
func canonicalDay(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	days, unknown := timetable.ParseDayLabel(raw)
	if len(unknown) > 0 {
		return "", &timetable.UnknownDayError{Token: unknown[0]}
	}
	if len(days) == 0 {
		return "", fmt.Errorf("day label %q names no weekday", raw)
	}
	return timetable.CanonicalDayLabel(days), nil
}

// canonicalTimes normalises each time independently. A lone start or end is
// stored and the record is reported as missing_time by the calendar.
func canonicalTimes(rawStart, rawEnd string) (string, string, error) {
	start, err := optionalTime(rawStart)
	if err != nil {
		return "", "", fmt.Errorf("start: %w", err)
	}
	end, err := optionalTime(rawEnd)
	if err != nil {
		return "", "", fmt.Errorf("end: %w", err)
	}
	if start == nil || end == nil {
		return labelOf(start), labelOf(end), nil
	}
	if *start >= *end {
		return "", "", fmt.Errorf("start %s must be before end %s", *start, *end)
	}
	return start.String(), end.String(), nil
}

func optionalTime(raw string) (*timetable.TimeLabel, error) {
	if raw == "" {
		return nil, nil
	}
	t, err := timetable.ParseTimeLabel(raw)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

func labelOf(t *timetable.TimeLabel) string {
	if t == nil {
		return ""
	}
	return t.String()
}
