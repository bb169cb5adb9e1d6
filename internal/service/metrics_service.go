package service

import (
	"net/http"
	"runtime"
	"strconv"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/noah-isme/course-timetable-api/internal/models"
)

const metricsNamespace = "timetable"

// MetricsService owns a private Prometheus registry and keeps running totals
// for the JSON snapshot. Every method is safe on a nil receiver.
type MetricsService struct {
	handler http.Handler

	requestDuration *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	cacheLookups    *prometheus.CounterVec
	cacheLatency    prometheus.Histogram
	cacheWrites     prometheus.Histogram
	cacheHitRatio   prometheus.Gauge
	layoutDuration  prometheus.Histogram
	layoutSize      prometheus.Histogram
	invalidCourses  *prometheus.CounterVec

	totals snapshotTotals
}

type snapshotTotals struct {
	cacheHits, cacheMisses atomic.Uint64
	requests, requestNanos atomic.Uint64
	layouts, layoutNanos   atomic.Uint64
	invalidCourses         atomic.Uint64
}

// NewMetricsService registers the HTTP, option cache and layout collectors
// plus the Go runtime and process collectors.
func NewMetricsService() *MetricsService {
	m := &MetricsService{
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Request latency by route template",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "path", "status"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Requests served by route template",
		}, []string{"method", "path", "status"}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "options_cache",
			Name:      "lookups_total",
			Help:      "Option list cache lookups by result",
		}, []string{"result"}),
		cacheLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "options_cache",
			Name:      "read_seconds",
			Help:      "Option list cache read latency",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		cacheWrites: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "options_cache",
			Name:      "write_seconds",
			Help:      "Option list cache write latency",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1},
		}),
		cacheHitRatio: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: metricsNamespace,
			Subsystem: "options_cache",
			Name:      "hit_ratio",
			Help:      "Hits over lookups since start",
		}),
		layoutDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "layout",
			Name:      "duration_seconds",
			Help:      "Time spent normalizing, placing and stacking one calendar",
			Buckets:   []float64{.0005, .001, .0025, .005, .01, .025, .05, .1, .25},
		}),
		layoutSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: metricsNamespace,
			Subsystem: "layout",
			Name:      "occurrences",
			Help:      "Valid occurrences placed per calendar",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		invalidCourses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: metricsNamespace,
			Subsystem: "layout",
			Name:      "invalid_courses_total",
			Help:      "Courses routed to the invalid bucket, by reason",
		}, []string{"reason"}),
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestDuration, m.requests,
		m.cacheLookups, m.cacheLatency, m.cacheWrites, m.cacheHitRatio,
		m.layoutDuration, m.layoutSize, m.invalidCourses,
	)
	m.handler = promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry})
	return m
}

// Handler serves the registry in the Prometheus text format.
func (m *MetricsService) Handler() http.Handler {
	if m == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return m.handler
}

// ObserveHTTPRequest records one served request. path is the route template.
func (m *MetricsService) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	if m == nil {
		return
	}
	code := strconv.Itoa(status)
	m.requestDuration.WithLabelValues(method, path, code).Observe(duration.Seconds())
	m.requests.WithLabelValues(method, path, code).Inc()
	m.totals.requests.Add(1)
	m.totals.requestNanos.Add(uint64(duration))
}

// RecordCacheOperation records an option cache lookup and refreshes the hit ratio.
func (m *MetricsService) RecordCacheOperation(hit bool, duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheLatency.Observe(duration.Seconds())
	if hit {
		m.cacheLookups.WithLabelValues("hit").Inc()
		m.totals.cacheHits.Add(1)
	} else {
		m.cacheLookups.WithLabelValues("miss").Inc()
		m.totals.cacheMisses.Add(1)
	}
	m.cacheHitRatio.Set(ratio(m.totals.cacheHits.Load(), m.totals.cacheMisses.Load()))
}

// ObserveCacheWrite records an option cache write.
func (m *MetricsService) ObserveCacheWrite(duration time.Duration) {
	if m == nil {
		return
	}
	m.cacheWrites.Observe(duration.Seconds())
}

// ObserveLayout records one calendar build. invalid maps reason to course count.
func (m *MetricsService) ObserveLayout(duration time.Duration, valid int, invalid map[string]int) {
	if m == nil {
		return
	}
	m.layoutDuration.Observe(duration.Seconds())
	m.layoutSize.Observe(float64(valid))
	m.totals.layouts.Add(1)
	m.totals.layoutNanos.Add(uint64(duration))
	for reason, count := range invalid {
		if count <= 0 {
			continue
		}
		m.invalidCourses.WithLabelValues(reason).Add(float64(count))
		m.totals.invalidCourses.Add(uint64(count))
	}
}

// Snapshot returns the running totals for the JSON metrics endpoint.
func (m *MetricsService) Snapshot() models.SystemMetrics {
	if m == nil {
		return models.SystemMetrics{}
	}
	hits, misses := m.totals.cacheHits.Load(), m.totals.cacheMisses.Load()
	requests, layouts := m.totals.requests.Load(), m.totals.layouts.Load()

	return models.SystemMetrics{
		CacheHitRatio:            ratio(hits, misses),
		CacheHits:                hits,
		CacheMisses:              misses,
		RequestsTotal:            requests,
		AverageRequestDurationMs: averageMs(m.totals.requestNanos.Load(), requests),
		LayoutsBuilt:             layouts,
		AverageLayoutDurationMs:  averageMs(m.totals.layoutNanos.Load(), layouts),
		InvalidCoursesSeen:       m.totals.invalidCourses.Load(),
		Goroutines:               runtime.NumGoroutine(),
		GeneratedAt:              time.Now().UTC(),
	}
}

func ratio(hits, misses uint64) float64 {
	if hits+misses == 0 {
		return 0
	}
	return float64(hits) / float64(hits+misses)
}

func averageMs(totalNs, count uint64) float64 {
	if count == 0 {
		return 0
	}
	return float64(totalNs) / float64(count) / float64(time.Millisecond)
}
