package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/dto"
	"github.com/noah-isme/course-timetable-api/internal/models"
	"github.com/noah-isme/course-timetable-api/internal/timetable"
	"github.com/noah-isme/course-timetable-api/pkg/database"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type referenceRepository interface {
	List(ctx context.Context, kind models.ReferenceKind, filter models.ReferenceFilter) ([]models.ReferenceItem, int, error)
	FindByID(ctx context.Context, kind models.ReferenceKind, id int64) (*models.ReferenceItem, error)
	Create(ctx context.Context, kind models.ReferenceKind, item *models.ReferenceItem) error
	Update(ctx context.Context, kind models.ReferenceKind, item *models.ReferenceItem) error
	Delete(ctx context.Context, kind models.ReferenceKind, id int64) error
	AffectedCourses(ctx context.Context, kind models.ReferenceKind, id int64) ([]models.AffectedCourse, error)
	AffectedPrograms(ctx context.Context, kind models.ReferenceKind, id int64) ([]models.AffectedProgram, error)
}

// ReferenceService manages the lookup tables behind courses and programs.
type ReferenceService struct {
	repo      referenceRepository
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewReferenceService constructs a ReferenceService.
func NewReferenceService(repo referenceRepository, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ReferenceService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ReferenceService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// List returns a page of items of one kind.
func (s *ReferenceService) List(ctx context.Context, kind models.ReferenceKind, filter models.ReferenceFilter) ([]models.ReferenceItem, *models.Pagination, error) {
	if err := checkKind(kind); err != nil {
		return nil, nil, err
	}
	items, total, err := s.repo.List(ctx, kind, filter)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list references")
	}
	return items, paginationFor(filter.Page, filter.PageSize, total), nil
}

// Get returns one item.
func (s *ReferenceService) Get(ctx context.Context, kind models.ReferenceKind, id int64) (*models.ReferenceItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	item, err := s.repo.FindByID(ctx, kind, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reference not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load reference")
	}
	return item, nil
}

// Create adds an item. Day and time names are stored in canonical form.
func (s *ReferenceService) Create(ctx context.Context, kind models.ReferenceKind, req dto.ReferenceRequest) (*models.ReferenceItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	name, err := s.canonicalName(kind, req)
	if err != nil {
		return nil, err
	}

	item := &models.ReferenceItem{Name: name}
	if err := s.repo.Create(ctx, kind, item); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "reference already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create reference")
	}
	s.cache.InvalidateOptions(ctx)
	return s.Get(ctx, kind, item.ID)
}

// Update renames an item. Every course or program pointing at it follows.
func (s *ReferenceService) Update(ctx context.Context, kind models.ReferenceKind, id int64, req dto.ReferenceRequest) (*models.ReferenceItem, error) {
	if err := checkKind(kind); err != nil {
		return nil, err
	}
	name, err := s.canonicalName(kind, req)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Update(ctx, kind, &models.ReferenceItem{ID: id, Name: name}); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return nil, appErrors.Clone(appErrors.ErrNotFound, "reference not found")
		case database.IsUniqueViolation(err):
			return nil, appErrors.Clone(appErrors.ErrConflict, "reference already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update reference")
	}
	s.cache.InvalidateOptions(ctx)
	return s.Get(ctx, kind, id)
}

// Delete removes an item. Courses keep their row with the field cleared;
// programs built on a deleted name or level are removed.
func (s *ReferenceService) Delete(ctx context.Context, kind models.ReferenceKind, id int64) error {
	if err := checkKind(kind); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, kind, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return appErrors.Clone(appErrors.ErrNotFound, "reference not found")
		}
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete reference")
	}
	s.cache.InvalidateOptions(ctx)
	return nil
}

// Affected previews which courses or programs an edit or delete of the item touches.
func (s *ReferenceService) Affected(ctx context.Context, kind models.ReferenceKind, id int64) (*models.AffectedReport, error) {
	if _, err := s.Get(ctx, kind, id); err != nil {
		return nil, err
	}

	report := &models.AffectedReport{}
	if kind.ProgramScoped() {
		programs, err := s.repo.AffectedPrograms(ctx, kind, id)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load affected programs")
		}
		report.Programs = programs
		report.Count = len(programs)
		return report, nil
	}

	courses, err := s.repo.AffectedCourses(ctx, kind, id)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load affected courses")
	}
	report.Courses = courses
	report.Count = len(courses)
	return report, nil
}

func (s *ReferenceService) canonicalName(kind models.ReferenceKind, req dto.ReferenceRequest) (string, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := s.validator.Struct(req); err != nil {
		return "", appErrors.Validation(err, "invalid reference payload")
	}

	switch kind {
	case models.ReferenceDay:
		label, err := canonicalDay(req.Name)
		if err != nil {
			return "", appErrors.Validation(err, err.Error())
		}
		return label, nil
	case models.ReferenceTime:
		t, err := timetable.ParseTimeLabel(req.Name)
		if err != nil {
			return "", appErrors.Validation(err, err.Error())
		}
		return t.String(), nil
	case models.ReferenceCode:
		return strings.ToUpper(req.Name), nil
	}
	return req.Name, nil
}

func checkKind(kind models.ReferenceKind) error {
	if !kind.Valid() {
		return appErrors.Clone(appErrors.ErrNotFound, "unknown reference kind")
	}
	return nil
}
