package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-timetable-api/internal/dto"
	"github.com/noah-isme/course-timetable-api/internal/models"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type fakeReferenceSrv struct {
	err        error
	lastKind   models.ReferenceKind
	lastID     int64
	lastName   string
	lastFilter models.ReferenceFilter
}

func (f *fakeReferenceSrv) List(_ context.Context, kind models.ReferenceKind, filter models.ReferenceFilter) ([]models.ReferenceItem, *models.Pagination, error) {
	f.lastKind, f.lastFilter = kind, filter
	if f.err != nil {
		return nil, nil, f.err
	}
	return []models.ReferenceItem{{ID: 1, Name: "W1"}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func (f *fakeReferenceSrv) Create(_ context.Context, kind models.ReferenceKind, req dto.ReferenceRequest) (*models.ReferenceItem, error) {
	f.lastKind, f.lastName = kind, req.Name
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReferenceItem{ID: 2, Name: req.Name}, nil
}

func (f *fakeReferenceSrv) Update(_ context.Context, kind models.ReferenceKind, id int64, req dto.ReferenceRequest) (*models.ReferenceItem, error) {
	f.lastKind, f.lastID, f.lastName = kind, id, req.Name
	if f.err != nil {
		return nil, f.err
	}
	return &models.ReferenceItem{ID: id, Name: req.Name}, nil
}

func (f *fakeReferenceSrv) Delete(_ context.Context, kind models.ReferenceKind, id int64) error {
	f.lastKind, f.lastID = kind, id
	return f.err
}

func (f *fakeReferenceSrv) Affected(_ context.Context, kind models.ReferenceKind, id int64) (*models.AffectedReport, error) {
	f.lastKind, f.lastID = kind, id
	if f.err != nil {
		return nil, f.err
	}
	return &models.AffectedReport{Count: 1, Courses: []models.AffectedCourse{{Code: "CPSC", Number: "110", Section: "101", Year: "2024", Term: "W1"}}}, nil
}

func TestReferenceHandlerKinds(t *testing.T) {
	handler := NewReferenceHandler(&fakeReferenceSrv{})
	c, rec := courseContext(http.MethodGet, "/references", nil)
	handler.Kinds(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var kinds []string
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &kinds))
	assert.Len(t, kinds, len(models.ReferenceKinds))
	assert.Contains(t, kinds, "program-levels")
}

func TestReferenceHandlerListLowercasesKind(t *testing.T) {
	svc := &fakeReferenceSrv{}
	handler := NewReferenceHandler(svc)
	c, rec := courseContext(http.MethodGet, "/references/TERMS?search=w&page=3", nil, gin.Param{Key: "kind", Value: "TERMS"})
	handler.List(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, models.ReferenceTerm, svc.lastKind)
	assert.Equal(t, "w", svc.lastFilter.Search)
	assert.Equal(t, 3, svc.lastFilter.Page)
}

func TestReferenceHandlerCreateAndUpdate(t *testing.T) {
	svc := &fakeReferenceSrv{}
	handler := NewReferenceHandler(svc)

	c, rec := courseContext(http.MethodPost, "/references/days", []byte(`{"name":"Tue_Thu"}`), gin.Param{Key: "kind", Value: "days"})
	handler.Create(c)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Tue_Thu", svc.lastName)

	c, rec = courseContext(http.MethodPut, "/references/days/4", []byte(`{"name":"Mon"}`),
		gin.Param{Key: "kind", Value: "days"}, gin.Param{Key: "id", Value: "4"})
	handler.Update(c)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(4), svc.lastID)

	c, rec = courseContext(http.MethodPut, "/references/days/x", []byte(`{"name":"Mon"}`),
		gin.Param{Key: "kind", Value: "days"}, gin.Param{Key: "id", Value: "x"})
	handler.Update(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReferenceHandlerDeleteConflict(t *testing.T) {
	svc := &fakeReferenceSrv{err: appErrors.Clone(appErrors.ErrConflict, "reference in use")}
	handler := NewReferenceHandler(svc)

	c, rec := courseContext(http.MethodDelete, "/references/codes/2", nil,
		gin.Param{Key: "kind", Value: "codes"}, gin.Param{Key: "id", Value: "2"})
	handler.Delete(c)
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, models.ReferenceCode, svc.lastKind)
}

func TestReferenceHandlerAffected(t *testing.T) {
	svc := &fakeReferenceSrv{}
	handler := NewReferenceHandler(svc)

	c, rec := courseContext(http.MethodGet, "/references/terms/1/affected", nil,
		gin.Param{Key: "kind", Value: "terms"}, gin.Param{Key: "id", Value: "1"})
	handler.Affected(c)

	require.Equal(t, http.StatusOK, rec.Code)
	var report models.AffectedReport
	require.NoError(t, json.Unmarshal(decodeEnvelope(t, rec).Data, &report))
	assert.Equal(t, 1, report.Count)
	assert.Empty(t, report.Programs)
}
