package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type cachedResult struct {
	Symbol string  `json:"symbol"`
	Value  float64 `json:"value"`
}

func newTestCache(t *testing.T, ttl time.Duration) (*AnalysisCache, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	logger := logrus.New()
	logger.SetLevel(logrus.ErrorLevel)
	return NewAnalysisCache(client, ttl, logger), mr
}

func TestKey(t *testing.T) {
	from := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	key := Key("volatility", "BRENT", from, to)

	assert.Equal(t, "volatility:BRENT:2026-01-01:2026-03-01", key)
	// Identical requests must produce identical keys.
	assert.Equal(t, key, Key("volatility", "BRENT", from, to))
}

func TestCacheRoundTrip(t *testing.T) {
	c, _ := newTestCache(t, time.Minute)
	ctx := context.Background()

	var miss cachedResult
	assert.False(t, c.Get(ctx, "k1", &miss))

	c.Set(ctx, "k1", cachedResult{Symbol: "BRENT", Value: 0.42})

	var hit cachedResult
	require.True(t, c.Get(ctx, "k1", &hit))
	assert.Equal(t, "BRENT", hit.Symbol)
	assert.Equal(t, 0.42, hit.Value)

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.Equal(t, int64(1), stats.Sets)
}

func TestCacheExpiry(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)
	ctx := context.Background()

	c.Set(ctx, "k1", cachedResult{Symbol: "BRENT"})
	mr.FastForward(2 * time.Minute)

	var result cachedResult
	assert.False(t, c.Get(ctx, "k1", &result))
}

func TestCacheCorruptEntryIsAMiss(t *testing.T) {
	c, mr := newTestCache(t, time.Minute)

	require.NoError(t, mr.Set("analysis:k1", "{not json"))

	var result cachedResult
	assert.False(t, c.Get(context.Background(), "k1", &result))
}

func TestNilCacheIsInert(t *testing.T) {
	var c *AnalysisCache
	ctx := context.Background()

	var result cachedResult
	assert.False(t, c.Get(ctx, "k1", &result))
	c.Set(ctx, "k1", cachedResult{})
}
