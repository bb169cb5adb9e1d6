package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/course-timetable-api/pkg/cache"
	appErrors "github.com/noah-isme/course-timetable-api/pkg/errors"
)

const scanBatch = 100

// CacheRepository keeps JSON encoded option lists in Redis under one keyspace.
type CacheRepository struct {
	client   *redis.Client
	keyspace cache.Keyspace
	logger   *zap.Logger
}

// NewCacheRepository constructs a cache repository. A nil client turns every
// read into a miss and every write into a no-op.
func NewCacheRepository(client *redis.Client, keyspace cache.Keyspace, logger *zap.Logger) *CacheRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CacheRepository{client: client, keyspace: keyspace, logger: logger}
}

// Get decodes the entry stored under key into dest. Entries that no longer
// decode are dropped and reported as a miss.
func (r *CacheRepository) Get(ctx context.Context, key string, dest interface{}) error {
	if r.client == nil {
		return appErrors.ErrCacheMiss
	}
	full := r.keyspace.Qualify(key)

	raw, err := r.client.Get(ctx, full).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		return appErrors.ErrCacheMiss
	case err != nil:
		return fmt.Errorf("redis get %s: %w", full, err)
	}

	if err := json.Unmarshal(raw, dest); err != nil {
		r.logger.Warn("dropping undecodable cache entry", zap.String("key", full), zap.Error(err))
		_ = r.client.Unlink(ctx, full).Err()
		return appErrors.ErrCacheMiss
	}
	return nil
}

// Set stores value under key for ttl.
func (r *CacheRepository) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if r.client == nil {
		return nil
	}
	full := r.keyspace.Qualify(key)

	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache entry %s: %w", full, err)
	}
	if err := r.client.Set(ctx, full, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", full, err)
	}
	return nil
}

// DeleteByPattern unlinks every key matching pattern, one SCAN page at a time.
func (r *CacheRepository) DeleteByPattern(ctx context.Context, pattern string) error {
	if r.client == nil {
		return nil
	}
	full := r.keyspace.Qualify(pattern)

	removed := 0
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, full, scanBatch).Result()
		if err != nil {
			return fmt.Errorf("redis scan %s: %w", full, err)
		}
		if len(keys) > 0 {
			if err := r.client.Unlink(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("redis unlink %s: %w", full, err)
			}
			removed += len(keys)
		}
		if next == 0 {
			break
		}
		cursor = next
	}

	r.logger.Debug("cache entries invalidated", zap.String("pattern", full), zap.Int("removed", removed))
	return nil
}

// Ping reports whether Redis answers. Without a client there is nothing to check.
func (r *CacheRepository) Ping(ctx context.Context) error {
	if r.client == nil {
		return nil
	}
	return r.client.Ping(ctx).Err()
}

// Close releases the Redis connection pool.
func (r *CacheRepository) Close() error {
	if r.client == nil {
		return nil
	}
	return r.client.Close()
}
