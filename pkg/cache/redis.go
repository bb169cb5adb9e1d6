package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/noah-isme/course-timetable-api/pkg/config"
)

// ErrDisabled is returned by NewRedis when REDIS_ENABLED is false.
var ErrDisabled = errors.New("redis disabled")

// NewRedis connects to the option-list cache. Dial, read and write share the
// configured dial timeout so a stalled Redis cannot hold a request open.
func NewRedis(cfg config.RedisConfig) (*redis.Client, error) {
	if !cfg.Enabled {
		return nil, ErrDisabled
	}
	timeout := cfg.DialTimeout
	if timeout <= 0 {
		timeout = 3 * time.Second
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  timeout,
		ReadTimeout:  timeout,
		WriteTimeout: timeout,
	})

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis %s: %w", client.Options().Addr, err)
	}
	return client, nil
}

// Keyspace prefixes keys so several deployments can share one Redis database.
type Keyspace string

// Key joins parts under the keyspace. Parts are trimmed and lowercased, and
// empty parts are kept as empty segments so "terms:" and "terms" differ.
func (k Keyspace) Key(parts ...string) string {
	segments := make([]string, 0, len(parts)+1)
	if k != "" {
		segments = append(segments, string(k))
	}
	for _, part := range parts {
		segments = append(segments, strings.ToLower(strings.TrimSpace(part)))
	}
	return strings.Join(segments, ":")
}

// Qualify places an already built key or SCAN pattern inside the keyspace.
func (k Keyspace) Qualify(key string) string {
	if k == "" || strings.HasPrefix(key, string(k)+":") {
		return key
	}
	return string(k) + ":" + key
}
