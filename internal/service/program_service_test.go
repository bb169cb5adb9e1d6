package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-timetable-api/internal/dto"
	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type programRepoMock struct {
	programs  map[string]models.Program
	created   []models.Program
	createErr error
	attached  map[string]bool
	matching  int64
	required  []models.RequirementCourse
}

func newProgramRepoMock() *programRepoMock {
	return &programRepoMock{
		programs: map[string]models.Program{"BSc/1": {ID: 7, Name: "BSc", YearLevel: "1"}},
		attached: map[string]bool{},
		matching: 3,
	}
}

func (m *programRepoMock) List(ctx context.Context) ([]models.Program, error) {
	out := make([]models.Program, 0, len(m.programs))
	for _, p := range m.programs {
		out = append(out, p)
	}
	return out, nil
}

func (m *programRepoMock) Find(ctx context.Context, name, level string) (*models.Program, error) {
	p, ok := m.programs[name+"/"+level]
	if !ok {
		return nil, sql.ErrNoRows
	}
	return &p, nil
}

func (m *programRepoMock) Create(ctx context.Context, program *models.Program) error {
	if m.createErr != nil {
		return m.createErr
	}
	program.ID = 99
	m.created = append(m.created, *program)
	return nil
}

func (m *programRepoMock) RequirementCourses(ctx context.Context, programID int64) ([]models.RequirementCourse, error) {
	return m.required, nil
}

func (m *programRepoMock) HasCourse(ctx context.Context, programID int64, code, number string) (bool, error) {
	return m.attached[code+number], nil
}

func (m *programRepoMock) AttachCourses(ctx context.Context, programID int64, code, number string) (int64, error) {
	if m.matching == 0 {
		return 0, nil
	}
	m.attached[code+number] = true
	return m.matching, nil
}

func (m *programRepoMock) DetachCourses(ctx context.Context, programID int64, code, number string) (int64, error) {
	if !m.attached[code+number] {
		return 0, nil
	}
	delete(m.attached, code+number)
	return m.matching, nil
}

func TestProgramServiceCreate(t *testing.T) {
	repo := newProgramRepoMock()
	refs := newReferenceResolverMock()
	svc := NewProgramService(repo, refs, nil, nil, nil)

	program, err := svc.Create(context.Background(), dto.ProgramRequest{Program: " BA ", Level: "2"})
	require.NoError(t, err)
	assert.Equal(t, int64(99), program.ID)
	assert.Equal(t, "BA", program.Name)
	assert.Equal(t, "2", program.YearLevel)
	assert.Equal(t, []string{"BA"}, refs.names[models.ReferenceProgramName])
	assert.Equal(t, []string{"2"}, refs.names[models.ReferenceProgramLevel])

	repo.createErr = &pq.Error{Code: "23505"}
	_, err = svc.Create(context.Background(), dto.ProgramRequest{Program: "BA", Level: "2"})
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	_, err = svc.Create(context.Background(), dto.ProgramRequest{Program: "BA"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProgramServiceRequirements(t *testing.T) {
	repo := newProgramRepoMock()
	svc := NewProgramService(repo, newReferenceResolverMock(), nil, nil, nil)
	ctx := context.Background()

	reqs, err := svc.Requirements(ctx, "BSc", "1")
	require.NoError(t, err)
	assert.Equal(t, int64(7), reqs.Program.ID)
	assert.NotNil(t, reqs.Courses)
	assert.Empty(t, reqs.Courses)

	_, err = svc.Requirements(ctx, "BSc", "4")
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Requirements(ctx, "", "1")
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestProgramServiceAttachDetach(t *testing.T) {
	repo := newProgramRepoMock()
	svc := NewProgramService(repo, newReferenceResolverMock(), nil, nil, nil)
	ctx := context.Background()
	change := models.RequirementChange{Program: "BSc", Level: "1", Code: "cpsc", Number: "110"}

	res, err := svc.Attach(ctx, change)
	require.NoError(t, err)
	assert.Equal(t, "CPSC", res.Code)
	assert.Equal(t, int64(3), res.Affected)

	_, err = svc.Attach(ctx, change)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)

	res, err = svc.Detach(ctx, change)
	require.NoError(t, err)
	assert.Equal(t, int64(3), res.Affected)

	_, err = svc.Detach(ctx, change)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestProgramServiceAttachWithoutMatchingCourses(t *testing.T) {
	repo := newProgramRepoMock()
	repo.matching = 0
	svc := NewProgramService(repo, newReferenceResolverMock(), nil, nil, nil)

	_, err := svc.Attach(context.Background(), models.RequirementChange{Program: "BSc", Level: "1", Code: "PHYS", Number: "999"})
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)

	_, err = svc.Attach(context.Background(), models.RequirementChange{Program: "BSc", Level: "1", Code: "PHYS"})
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
