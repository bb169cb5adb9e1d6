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
	"github.com/noah-isme/course-timetable-api/pkg/database"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type programRepository interface {
	List(ctx context.Context) ([]models.Program, error)
	Find(ctx context.Context, name, level string) (*models.Program, error)
	Create(ctx context.Context, program *models.Program) error
	RequirementCourses(ctx context.Context, programID int64) ([]models.RequirementCourse, error)
	HasCourse(ctx context.Context, programID int64, code, number string) (bool, error)
	AttachCourses(ctx context.Context, programID int64, code, number string) (int64, error)
	DetachCourses(ctx context.Context, programID int64, code, number string) (int64, error)
}

// ProgramService manages programs and the courses they require.
type ProgramService struct {
	repo      programRepository
	refs      referenceResolver
	cache     *CacheService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewProgramService constructs a ProgramService.
func NewProgramService(repo programRepository, refs referenceResolver, cache *CacheService, validate *validator.Validate, logger *zap.Logger) *ProgramService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ProgramService{repo: repo, refs: refs, cache: cache, validator: validate, logger: logger}
}

// List returns every program.
func (s *ProgramService) List(ctx context.Context) ([]models.Program, error) {
	programs, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list programs")
	}
	return programs, nil
}

// Create registers a program, creating its name and level rows as needed.
func (s *ProgramService) Create(ctx context.Context, req dto.ProgramRequest) (*models.Program, error) {
	req.Program = strings.TrimSpace(req.Program)
	req.Level = strings.TrimSpace(req.Level)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid program payload")
	}

	name, err := s.refs.GetOrCreate(ctx, models.ReferenceProgramName, req.Program)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve program name")
	}
	level, err := s.refs.GetOrCreate(ctx, models.ReferenceProgramLevel, req.Level)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to resolve program level")
	}

	program := &models.Program{NameID: name.ID, Name: name.Name, YearLevelID: level.ID, YearLevel: level.Name}
	if err := s.repo.Create(ctx, program); err != nil {
		if database.IsUniqueViolation(err) {
			return nil, appErrors.Clone(appErrors.ErrConflict, "program already exists")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create program")
	}
	s.cache.InvalidateOptions(ctx)
	return program, nil
}

// Requirements lists the distinct courses a program requires.
func (s *ProgramService) Requirements(ctx context.Context, name, level string) (*models.Requirements, error) {
	program, err := s.find(ctx, name, level)
	if err != nil {
		return nil, err
	}
	courses, err := s.repo.RequirementCourses(ctx, program.ID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list requirements")
	}
	if courses == nil {
		courses = []models.RequirementCourse{}
	}
	return &models.Requirements{Program: *program, Courses: courses}, nil
}

// Attach links every section of a code and number to a program.
func (s *ProgramService) Attach(ctx context.Context, req models.RequirementChange) (*dto.RequirementChangeResponse, error) {
	req = trimRequirement(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid requirement payload")
	}
	program, err := s.find(ctx, req.Program, req.Level)
	if err != nil {
		return nil, err
	}

	exists, err := s.repo.HasCourse(ctx, program.ID, req.Code, req.Number)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check requirement")
	}
	if exists {
		return nil, appErrors.Clone(appErrors.ErrConflict, "course is already required by this program")
	}

	affected, err := s.repo.AttachCourses(ctx, program.ID, req.Code, req.Number)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to attach courses")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "no course matches code and number")
	}
	s.logger.Info("requirement attached",
		zap.String("program", req.Program),
		zap.String("level", req.Level),
		zap.String("code", req.Code),
		zap.String("number", req.Number),
		zap.Int64("courses", affected),
	)
	return requirementResponse(req, affected), nil
}

// Detach unlinks every section of a code and number from a program.
func (s *ProgramService) Detach(ctx context.Context, req models.RequirementChange) (*dto.RequirementChangeResponse, error) {
	req = trimRequirement(req)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Validation(err, "invalid requirement payload")
	}
	program, err := s.find(ctx, req.Program, req.Level)
	if err != nil {
		return nil, err
	}

	affected, err := s.repo.DetachCourses(ctx, program.ID, req.Code, req.Number)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to detach courses")
	}
	if affected == 0 {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "course is not required by this program")
	}
	return requirementResponse(req, affected), nil
}

func (s *ProgramService) find(ctx context.Context, name, level string) (*models.Program, error) {
	name, level = strings.TrimSpace(name), strings.TrimSpace(level)
	if name == "" || level == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "program and level are required")
	}
	program, err := s.repo.Find(ctx, name, level)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "program not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load program")
	}
	return program, nil
}

func trimRequirement(req models.RequirementChange) models.RequirementChange {
	req.Program = strings.TrimSpace(req.Program)
	req.Level = strings.TrimSpace(req.Level)
	req.Code = strings.ToUpper(strings.TrimSpace(req.Code))
	req.Number = strings.TrimSpace(req.Number)
	return req
}

func requirementResponse(req models.RequirementChange, affected int64) *dto.RequirementChangeResponse {
	return &dto.RequirementChangeResponse{
		Program:  req.Program,
		Level:    req.Level,
		Code:     req.Code,
		Number:   req.Number,
		Affected: affected,
	}
}
