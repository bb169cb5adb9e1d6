package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/internal/models"
	"github.com/noah-isme/course-timetable-api/internal/timetable"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type timetableCourseRepoMock struct {
	records     []models.Course
	catalog     []models.Course
	err         error
	lastQuery   models.TimetableQuery
	catalogHits int
}

func (m *timetableCourseRepoMock) ListTimetableRecords(ctx context.Context, q models.TimetableQuery) ([]models.Course, error) {
	m.lastQuery = q
	return m.records, m.err
}

func (m *timetableCourseRepoMock) Catalog(ctx context.Context) ([]models.Course, error) {
	m.catalogHits++
	return m.catalog, m.err
}

type programListMock struct {
	programs []models.Program
}

func (m *programListMock) List(ctx context.Context) ([]models.Program, error) {
	return m.programs, nil
}

type memoryCache struct {
	entries map[string][]string
	deleted []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]string{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) error {
	v, ok := c.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	*(dest.(*[]string)) = v
	return nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	c.entries[key] = value.([]string)
	return nil
}

func (c *memoryCache) DeleteByPattern(ctx context.Context, pattern string) error {
	c.deleted = append(c.deleted, pattern)
	c.entries = map[string][]string{}
	return nil
}

func sp(s string) *string { return &s }

func course(id int64, code, number, section, year, term, day, start, end string) models.Course {
	c := models.Course{ID: id, Code: sp(code), Number: sp(number), Section: sp(section), AcademicYear: sp(year), Term: sp(term)}
	if day != "" {
		c.Day = sp(day)
	}
	if start != "" {
		c.StartTime = sp(start)
	}
	if end != "" {
		c.EndTime = sp(end)
	}
	return c
}

func newTestEngine(t *testing.T) *timetable.Engine {
	engine, err := timetable.NewEngine(timetable.EngineConfig{Window: timetable.DefaultWindow})
	require.NoError(t, err)
	return engine
}

func TestTimetableServiceCalendar(t *testing.T) {
	repo := &timetableCourseRepoMock{records: []models.Course{
		course(1, "CPSC", "110", "101", "2024", "W1", "Mon_Wed", "09:00", "10:30"),
		course(2, "CPSC", "121", "101", "2024", "W1", "Mon", "10:00", "11:00"),
		course(3, "MATH", "100", "101", "2024", "W1", "", "09:00", "10:00"),
	}}
	metrics := NewMetricsService()
	svc := NewTimetableService(repo, &programListMock{}, newTestEngine(t), nil, 0, metrics, nil, zap.NewNop())

	q := models.TimetableQuery{Year: "2024", Terms: []string{"W1"}}
	cal, err := svc.Calendar(context.Background(), q)
	require.NoError(t, err)
	assert.Equal(t, q, repo.lastQuery)
	require.Len(t, cal.Occurrences, 2)
	require.Len(t, cal.Invalid, 1)
	assert.Equal(t, timetable.ReasonMissingDay, cal.Invalid[0].Reason)

	second := cal.Occurrences[1]
	assert.Equal(t, timetable.OccurrenceID(2), second.ID)
	assert.True(t, second.Layout[timetable.Monday].Overlaps)
	assert.Equal(t, 90.0, second.Layout[timetable.Monday].WidthPct)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.LayoutsBuilt)
	assert.Equal(t, uint64(1), snap.InvalidCoursesSeen)
}

func TestTimetableServiceCalendarRequiresYearAndTerm(t *testing.T) {
	repo := &timetableCourseRepoMock{}
	svc := NewTimetableService(repo, &programListMock{}, newTestEngine(t), nil, 0, nil, nil, nil)

	for _, q := range []models.TimetableQuery{
		{Terms: []string{"W1"}},
		{Year: "2024"},
		{Year: "2024", Terms: []string{""}},
	} {
		_, err := svc.Calendar(context.Background(), q)
		require.Error(t, err)
		assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
	}
}

func TestTimetableServiceCalendarRepoError(t *testing.T) {
	repo := &timetableCourseRepoMock{err: errors.New("db down")}
	svc := NewTimetableService(repo, &programListMock{}, newTestEngine(t), nil, 0, nil, nil, nil)

	_, err := svc.Calendar(context.Background(), models.TimetableQuery{Year: "2024", Terms: []string{"W1"}})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInternal.Code, appErrors.FromError(err).Code)
}

func TestTimetableServiceOptionsAreCached(t *testing.T) {
	repo := &timetableCourseRepoMock{catalog: []models.Course{
		course(1, "CPSC", "110", "101", "2024", "W1", "Mon", "09:00", "10:00"),
		course(2, "CPSC", "110", "102", "2024", "W2", "Tue", "09:00", "10:00"),
		course(3, "MATH", "100", "101", "2023", "S", "Wed", "09:00", "10:00"),
	}}
	store := newMemoryCache()
	cache := NewCacheService(store, nil, time.Minute, zap.NewNop(), true)
	svc := NewTimetableService(repo, &programListMock{}, newTestEngine(t), cache, time.Minute, nil, nil, nil)
	ctx := context.Background()

	terms, err := svc.Terms(ctx, "2024")
	require.NoError(t, err)
	assert.Equal(t, []string{"W1", "W2"}, terms)

	again, err := svc.Terms(ctx, "2024")
	require.NoError(t, err)
	assert.Equal(t, terms, again)
	assert.Equal(t, 1, repo.catalogHits)

	years, err := svc.Years(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"2023", "2024"}, years)
	assert.Equal(t, 2, repo.catalogHits)

	cache.InvalidateOptions(ctx)
	assert.Equal(t, []string{"options:*"}, store.deleted)
	_, err = svc.Terms(ctx, "2024")
	require.NoError(t, err)
	assert.Equal(t, 3, repo.catalogHits)
}

func TestTimetableServiceEmptyKeysShortCircuit(t *testing.T) {
	repo := &timetableCourseRepoMock{}
	svc := NewTimetableService(repo, &programListMock{}, newTestEngine(t), nil, 0, nil, nil, nil)
	ctx := context.Background()

	terms, err := svc.Terms(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{}, terms)

	numbers, err := svc.Numbers(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{}, numbers)

	levels, err := svc.Levels(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{}, levels)
	assert.Zero(t, repo.catalogHits)
}

func TestTimetableServiceProgramLevels(t *testing.T) {
	programs := &programListMock{programs: []models.Program{
		{Name: "BSc", YearLevel: "2"},
		{Name: "BSc", YearLevel: "1"},
		{Name: "BA", YearLevel: "1"},
	}}
	svc := NewTimetableService(&timetableCourseRepoMock{}, programs, newTestEngine(t), nil, 0, nil, nil, nil)

	levels, err := svc.Levels(context.Background(), "BSc")
	require.NoError(t, err)
	assert.Equal(t, []string{"1", "2"}, levels)

	names, err := svc.Programs(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"BA", "BSc"}, names)
}
