package service

import (
	"context"
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/pkg/cache"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

// optionsKeyspace holds every option list. Keys are relative to the
// repository keyspace configured by REDIS_KEY_PREFIX.
const optionsKeyspace cache.Keyspace = "options"

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// CacheService is a read-through cache for the filter form's option lists.
// Cache failures are logged and counted, never surfaced to callers.
type CacheService struct {
	repo       CacheRepository
	metrics    *MetricsService
	defaultTTL time.Duration
	logger     *zap.Logger
	enabled    bool
}

// NewCacheService constructs a cache service. A nil receiver, a nil repo or
// enabled=false all behave as a cache that always misses.
func NewCacheService(repo CacheRepository, metrics *MetricsService, defaultTTL time.Duration, logger *zap.Logger, enabled bool) *CacheService {
	if defaultTTL <= 0 {
		defaultTTL = 10 * time.Minute
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheService{repo: repo, metrics: metrics, defaultTTL: defaultTTL, logger: logger, enabled: enabled}
}

// OptionsKey names the cached option list, scoped by its parent selections.
func OptionsKey(list string, scope ...string) string {
	return optionsKeyspace.Key(append([]string{list}, scope...)...)
}

// Enabled indicates whether caching is active.
func (s *CacheService) Enabled() bool {
	return s != nil && s.enabled && s.repo != nil
}

// Strings returns the list cached under key, calling load and storing its
// result on a miss. A load error is returned as is and nothing is stored.
func (s *CacheService) Strings(ctx context.Context, key string, ttl time.Duration, load func(context.Context) ([]string, error)) ([]string, error) {
	var cached []string
	if s.lookup(ctx, key, &cached) {
		return cached, nil
	}

	values, err := load(ctx)
	if err != nil {
		return nil, err
	}
	s.store(ctx, key, values, ttl)
	return values, nil
}

func (s *CacheService) lookup(ctx context.Context, key string, dest interface{}) bool {
	if !s.Enabled() {
		return false
	}
	start := time.Now()
	err := s.repo.Get(ctx, key, dest)
	hit := err == nil
	s.metrics.RecordCacheOperation(hit, time.Since(start))
	if err != nil && !errors.Is(err, appErrors.ErrCacheMiss) {
		s.logger.Warn("option cache read failed", zap.String("key", key), zap.Error(err))
	}
	return hit
}

func (s *CacheService) store(ctx context.Context, key string, value interface{}, ttl time.Duration) {
	if !s.Enabled() {
		return
	}
	if ttl <= 0 {
		ttl = s.defaultTTL
	}
	start := time.Now()
	err := s.repo.Set(ctx, key, value, ttl)
	s.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		s.logger.Warn("option cache write failed", zap.String("key", key), zap.Error(err))
	}
}

// InvalidateOptions drops every cached option list. Called after any write
// that can change which years, terms, numbers, programs or levels exist.
func (s *CacheService) InvalidateOptions(ctx context.Context) {
	if !s.Enabled() {
		return
	}
	pattern := optionsKeyspace.Key("*")
	if err := s.repo.DeleteByPattern(ctx, pattern); err != nil {
		s.logger.Warn("option cache invalidation failed", zap.String("pattern", pattern), zap.Error(err))
	}
}
