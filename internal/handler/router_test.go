package handler

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/course-timetable-api/internal/middleware"
	"github.com/noah-isme/course-timetable-api/internal/models"
	"github.com/noah-isme/course-timetable-api/internal/service"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

type routerTokens map[string]*models.JWTClaims

func (t routerTokens) ValidateToken(token string) (*models.JWTClaims, error) {
	if claims, ok := t[token]; ok {
		return claims, nil
	}
	return nil, appErrors.Clone(appErrors.ErrUnauthorized, "invalid token")
}

type routerAudit struct {
	logs []*models.AuditLog
}

func (a *routerAudit) CreateAuditLog(_ context.Context, log *models.AuditLog) error {
	a.logs = append(a.logs, log)
	return nil
}

func newTestRouter(t *testing.T, audit *routerAudit) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	r := gin.New()

	timetableSrv := &fakeTimetableSrv{cal: testCalendar(t), pdf: []byte("%PDF")}
	courses := &fakeCourseSrv{}
	RegisterRoutes(r, RouterConfig{
		Tokens: routerTokens{
			"staff-token": {UserID: "u-1", Role: models.RoleStaff},
			"admin-token": {UserID: "u-2", Role: models.RoleSuperuser},
		},
		Audit:        audit,
		LoginLimiter: middleware.NewRateLimiter(60, 5),
	}, Handlers{
		Auth:      NewAuthHandler(&fakeAuthSrv{}),
		Timetable: NewTimetableHandler(timetableSrv, timetableSrv, 1),
		Course:    NewCourseHandler(courses, courses),
		Reference: NewReferenceHandler(&fakeReferenceSrv{}),
		Program:   NewProgramHandler(&fakeProgramSrv{}),
		User:      NewUserHandler(&fakeStaffSrv{}),
		Metrics:   NewMetricsHandler(service.NewMetricsService(), nil),
	})
	return r
}

func doRequest(r http.Handler, method, path, token string, body []byte) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewReader(body))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestRouterAccessControl(t *testing.T) {
	r := newTestRouter(t, &routerAudit{})

	cases := []struct {
		name   string
		method string
		path   string
		token  string
		body   []byte
		status int
	}{
		{"health is public", http.MethodGet, "/health", "", nil, http.StatusOK},
		{"login is public", http.MethodPost, "/api/v1/auth/login", "", []byte(`{"username":"alice","password":"pw"}`), http.StatusOK},
		{"calendar needs a token", http.MethodGet, "/api/v1/timetable?year=2024&term=W1", "", nil, http.StatusUnauthorized},
		{"calendar for staff", http.MethodGet, "/api/v1/timetable?year=2024&term=W1", "staff-token", nil, http.StatusOK},
		{"options for staff", http.MethodGet, "/api/v1/timetable/options/years", "staff-token", nil, http.StatusOK},
		{"pdf for staff", http.MethodGet, "/api/v1/timetable/export.pdf?year=2024&term=W1", "staff-token", nil, http.StatusOK},
		{"course list needs a token", http.MethodGet, "/api/v1/courses", "bogus", nil, http.StatusUnauthorized},
		{"reference kinds for staff", http.MethodGet, "/api/v1/references", "staff-token", nil, http.StatusOK},
		{"requirements for staff", http.MethodGet, "/api/v1/requirements?program=BSc&level=1", "staff-token", nil, http.StatusOK},
		{"staff list forbidden to staff", http.MethodGet, "/api/v1/staff", "staff-token", nil, http.StatusForbidden},
		{"staff list for superuser", http.MethodGet, "/api/v1/staff", "admin-token", nil, http.StatusOK},
		{"metrics summary for staff", http.MethodGet, "/api/v1/metrics/summary", "staff-token", nil, http.StatusOK},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := doRequest(r, tc.method, tc.path, tc.token, tc.body)
			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
		})
	}
}

func TestRouterAuditsWrites(t *testing.T) {
	audit := &routerAudit{}
	r := newTestRouter(t, audit)

	rec := doRequest(r, http.MethodDelete, "/api/v1/courses/5", "staff-token", nil)
	require.Equal(t, http.StatusNoContent, rec.Code)
	rec = doRequest(r, http.MethodGet, "/api/v1/courses/5", "staff-token", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	require.Len(t, audit.logs, 1)
	assert.Equal(t, models.AuditActionDelete, audit.logs[0].Action)
	assert.Equal(t, "course", audit.logs[0].Resource)
	assert.Equal(t, "5", *audit.logs[0].ResourceID)
}

func TestRouterLoginRateLimit(t *testing.T) {
	r := newTestRouter(t, &routerAudit{})
	body := []byte(`{"username":"alice","password":"pw"}`)

	for i := 0; i < 5; i++ {
		require.Equal(t, http.StatusOK, doRequest(r, http.MethodPost, "/api/v1/auth/login", "", body).Code)
	}
	rec := doRequest(r, http.MethodPost, "/api/v1/auth/login", "", body)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
}
