package models

import "time"

// SystemMetrics is a JSON snapshot of the service's runtime counters.
type SystemMetrics struct {
	CacheHitRatio            float64   `json:"cache_hit_ratio"`
	CacheHits                uint64    `json:"cache_hits"`
	CacheMisses              uint64    `json:"cache_misses"`
	RequestsTotal            uint64    `json:"requests_total"`
	AverageRequestDurationMs float64   `json:"average_request_duration_ms"`
	LayoutsBuilt             uint64    `json:"layouts_built"`
	AverageLayoutDurationMs  float64   `json:"average_layout_duration_ms"`
	InvalidCoursesSeen       uint64    `json:"invalid_courses_seen"`
	Goroutines               int       `json:"goroutines"`
	GeneratedAt              time.Time `json:"generated_at"`
}
