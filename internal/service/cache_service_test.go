package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type failingCache struct {
	memoryCache
	getErr error
	setErr error
}

func (c *failingCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.getErr != nil {
		return c.getErr
	}
	return c.memoryCache.Get(ctx, key, dest)
}

func (c *failingCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.setErr != nil {
		return c.setErr
	}
	return c.memoryCache.Set(ctx, key, value, ttl)
}

func TestOptionsKey(t *testing.T) {
	assert.Equal(t, "options:years", OptionsKey("years"))
	assert.Equal(t, "options:numbers:cpsc", OptionsKey("numbers", " CPSC "))
	assert.Equal(t, "options:levels:bsc", OptionsKey("levels", "BSc"))
}

func TestCacheServiceStringsReadThrough(t *testing.T) {
	store := newMemoryCache()
	metrics := NewMetricsService()
	svc := NewCacheService(store, metrics, time.Minute, zap.NewNop(), true)
	ctx := context.Background()

	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"W1", "W2"}, nil
	}

	first, err := svc.Strings(ctx, OptionsKey("terms", "2024"), 0, load)
	require.NoError(t, err)
	second, err := svc.Strings(ctx, OptionsKey("terms", "2024"), 0, load)
	require.NoError(t, err)

	assert.Equal(t, []string{"W1", "W2"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)

	snap := metrics.Snapshot()
	assert.Equal(t, uint64(1), snap.CacheHits)
	assert.Equal(t, uint64(1), snap.CacheMisses)
}

func TestCacheServiceLoadErrorIsNotStored(t *testing.T) {
	store := newMemoryCache()
	svc := NewCacheService(store, nil, time.Minute, zap.NewNop(), true)

	_, err := svc.Strings(context.Background(), OptionsKey("years"), 0, func(context.Context) ([]string, error) {
		return nil, errors.New("db down")
	})
	require.Error(t, err)
	assert.Empty(t, store.entries)
}

func TestCacheServiceSwallowsStoreFailures(t *testing.T) {
	store := &failingCache{memoryCache: *newMemoryCache(), getErr: errors.New("conn reset"), setErr: errors.New("conn reset")}
	svc := NewCacheService(store, nil, time.Minute, zap.NewNop(), true)

	values, err := svc.Strings(context.Background(), OptionsKey("codes"), 0, func(context.Context) ([]string, error) {
		return []string{"CPSC"}, nil
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"CPSC"}, values)
}

func TestCacheServiceDisabled(t *testing.T) {
	store := newMemoryCache()
	var nilSvc *CacheService
	for _, svc := range []*CacheService{
		nilSvc,
		NewCacheService(store, nil, 0, nil, false),
		NewCacheService(nil, nil, 0, nil, true),
	} {
		assert.False(t, svc.Enabled())
		loads := 0
		for i := 0; i < 2; i++ {
			_, err := svc.Strings(context.Background(), OptionsKey("years"), 0, func(context.Context) ([]string, error) {
				loads++
				return []string{"2024"}, nil
			})
			require.NoError(t, err)
		}
		assert.Equal(t, 2, loads)
		svc.InvalidateOptions(context.Background())
	}
	assert.Empty(t, store.entries)
	assert.Empty(t, store.deleted)
}
