package service

import (
	"context"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/models"
	"github.com/noah-isme/course-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type timetableCourseRepository interface {
	ListTimetableRecords(ctx context.Context, q models.TimetableQuery) ([]models.Course, error)
	Catalog(ctx context.Context) ([]models.Course, error)
}

type timetableProgramRepository interface {
	List(ctx context.Context) ([]models.Program, error)
}

// TimetableService builds calendars and the option lists that drive the filter form.
type TimetableService struct {
	courses   timetableCourseRepository
	programs  timetableProgramRepository
	engine    *timetable.Engine
	cache     *CacheService
	cacheTTL  time.Duration
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewTimetableService constructs a TimetableService.
func NewTimetableService(courses timetableCourseRepository, programs timetableProgramRepository, engine *timetable.Engine, cache *CacheService, cacheTTL time.Duration, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger) *TimetableService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &TimetableService{
		courses:   courses,
		programs:  programs,
		engine:    engine,
		cache:     cache,
		cacheTTL:  cacheTTL,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
	}
}

// Calendar loads the courses selected by q and lays them out. The result is
// built per request and never cached.
func (s *TimetableService) Calendar(ctx context.Context, q models.TimetableQuery) (*timetable.Calendar, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Validation(err, "year and at least one term are required")
	}

	courses, err := s.courses.ListTimetableRecords(ctx, q)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load courses")
	}

	records := make([]timetable.RawCourse, len(courses))
	for i, c := range courses {
		records[i] = c.Raw()
	}

	start := time.Now()
	cal := s.engine.Build(records)
	elapsed := time.Since(start)

	reasons := make(map[string]int)
	for _, inv := range cal.Invalid {
		reasons[string(inv.Reason)]++
	}
	s.metrics.ObserveLayout(elapsed, len(cal.Occurrences), reasons)

	if len(cal.Invalid) > 0 {
		s.logger.Debug("courses excluded from calendar",
			zap.String("year", q.Year),
			zap.Strings("terms", q.Terms),
			zap.Int("invalid", len(cal.Invalid)),
			zap.Any("reasons", reasons),
		)
	}

	return cal, nil
}

// Years lists every academic year with at least one course.
func (s *TimetableService) Years(ctx context.Context) ([]string, error) {
	return s.cachedOptions(ctx, OptionsKey("years"), func(records []timetable.RawCourse) []string {
		return timetable.Years(records)
	})
}

// Codes lists every course code.
func (s *TimetableService) Codes(ctx context.Context) ([]string, error) {
	return s.cachedOptions(ctx, OptionsKey("codes"), func(records []timetable.RawCourse) []string {
		return timetable.Codes(records)
	})
}

// Terms lists the terms offered in year. An empty year yields an empty list.
func (s *TimetableService) Terms(ctx context.Context, year string) ([]string, error) {
	if year == "" {
		return []string{}, nil
	}
	return s.cachedOptions(ctx, OptionsKey("terms", year), func(records []timetable.RawCourse) []string {
		return timetable.TermsForYear(records, year)
	})
}

// Numbers lists the course numbers under code. An empty code yields an empty list.
func (s *TimetableService) Numbers(ctx context.Context, code string) ([]string, error) {
	if code == "" {
		return []string{}, nil
	}
	return s.cachedOptions(ctx, OptionsKey("numbers", code), func(records []timetable.RawCourse) []string {
		return timetable.NumbersForCode(records, code)
	})
}

// Programs lists every program name.
func (s *TimetableService) Programs(ctx context.Context) ([]string, error) {
	return s.cachedProgramOptions(ctx, OptionsKey("programs"), timetable.ProgramNames)
}

// Levels lists the year levels of program. An empty program yields an empty list.
func (s *TimetableService) Levels(ctx context.Context, program string) ([]string, error) {
	if program == "" {
		return []string{}, nil
	}
	return s.cachedProgramOptions(ctx, OptionsKey("levels", program), func(pairs []timetable.ProgramLevel) []string {
		return timetable.LevelsForProgram(pairs, program)
	})
}

func (s *TimetableService) cachedOptions(ctx context.Context, key string, derive func([]timetable.RawCourse) []string) ([]string, error) {
	return s.cache.Strings(ctx, key, s.cacheTTL, func(ctx context.Context) ([]string, error) {
		courses, err := s.courses.Catalog(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load course catalog")
		}
		records := make([]timetable.RawCourse, len(courses))
		for i, c := range courses {
			records[i] = c.Raw()
		}
		return derive(records), nil
	})
}

func (s *TimetableService) cachedProgramOptions(ctx context.Context, key string, derive func([]timetable.ProgramLevel) []string) ([]string, error) {
	return s.cache.Strings(ctx, key, s.cacheTTL, func(ctx context.Context) ([]string, error) {
		programs, err := s.programs.List(ctx)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load programs")
		}
		pairs := make([]timetable.ProgramLevel, len(programs))
		for i := range programs {
			p := programs[i]
			pairs[i] = timetable.ProgramLevel{Program: &p.Name, Level: &p.YearLevel}
		}
		return derive(pairs), nil
	})
}
