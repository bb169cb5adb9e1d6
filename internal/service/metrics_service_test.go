package service

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestMetricsServiceSnapshot(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/timetable", http.StatusOK, 4*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/timetable", http.StatusBadRequest, 2*time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.RecordCacheOperation(false, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveLayout(10*time.Millisecond, 12, map[string]int{"unknown_day": 2, "inverted_time": 0})

	snap := m.Snapshot()
	assert.Equal(t, uint64(2), snap.RequestsTotal)
	assert.InDelta(t, 3.0, snap.AverageRequestDurationMs, 0.0001)
	assert.Equal(t, uint64(2), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
	assert.InDelta(t, 2.0/3.0, snap.CacheHitRatio, 0.0001)
	assert.Equal(t, uint64(1), snap.LayoutsBuilt)
	assert.InDelta(t, 10.0, snap.AverageLayoutDurationMs, 0.0001)
	assert.Equal(t, uint64(2), snap.InvalidCoursesSeen)
}

func TestMetricsServiceExposition(t *testing.T) {
	m := NewMetricsService()
	m.ObserveHTTPRequest(http.MethodGet, "/api/v1/courses/:id", http.StatusNotFound, time.Millisecond)
	m.ObserveLayout(time.Millisecond, 1, map[string]int{"missing_day": 1})

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, body, `timetable_http_requests_total{method="GET",path="/api/v1/courses/:id",status="404"} 1`)
	assert.Contains(t, body, `timetable_layout_invalid_courses_total{reason="missing_day"} 1`)
	assert.Contains(t, body, "go_goroutines")
}

func TestMetricsServiceNilSafe(t *testing.T) {
	var m *MetricsService
	m.ObserveHTTPRequest(http.MethodGet, "/", http.StatusOK, time.Millisecond)
	m.RecordCacheOperation(true, time.Millisecond)
	m.ObserveCacheWrite(time.Millisecond)
	m.ObserveLayout(time.Millisecond, 1, nil)
	assert.Zero(t, m.Snapshot().RequestsTotal)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}
