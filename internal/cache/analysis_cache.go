package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// AnalysisCacheStats tracks cache performance counters.
type AnalysisCacheStats struct {
	Hits   int64 `json:"hits"`
	Misses int64 `json:"misses"`
	Sets   int64 `json:"sets"`
	mu     sync.Mutex
}

// AnalysisCache fronts the analytic services with a Redis-backed result
// cache. Results are immutable for a fixed window, so a short TTL is safe.
type AnalysisCache struct {
	redis  *redis.Client
	ttl    time.Duration
	logger *logrus.Logger
	stats  *AnalysisCacheStats
	prefix string
}

// NewAnalysisCache creates a Redis-backed analysis result cache.
func NewAnalysisCache(redisClient *redis.Client, ttl time.Duration, logger *logrus.Logger) *AnalysisCache {
	return &AnalysisCache{
		redis:  redisClient,
		ttl:    ttl,
		logger: logger,
		stats:  &AnalysisCacheStats{},
		prefix: "analysis:",
	}
}

// Key builds a deterministic cache key from the analysis kind, symbol and
// window so identical requests hit the same entry.
func Key(kind, symbol string, from, to time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%s", kind, symbol, from.Format("2006-01-02"), to.Format("2006-01-02"))
}

// Get unmarshals a cached result into dest. The bool reports a hit.
func (c *AnalysisCache) Get(ctx context.Context, key string, dest any) bool {
	if c == nil || c.redis == nil {
		return false
	}
	data, err := c.redis.Get(ctx, c.prefix+key).Result()
	if err == redis.Nil {
		c.count(&c.stats.Misses)
		return false
	}
	if err != nil {
		c.logger.WithFields(logrus.Fields{"key": key}).Warnf("cache get failed: %v", err)
		c.count(&c.stats.Misses)
		return false
	}
	if err := json.Unmarshal([]byte(data), dest); err != nil {
		c.logger.WithFields(logrus.Fields{"key": key}).Warnf("cache entry corrupt: %v", err)
		c.count(&c.stats.Misses)
		return false
	}
	c.count(&c.stats.Hits)
	return true
}

// Set serializes value under key with the configured TTL. Failures are logged
// and swallowed; the cache is best effort.
func (c *AnalysisCache) Set(ctx context.Context, key string, value any) {
	if c == nil || c.redis == nil {
		return
	}
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.WithFields(logrus.Fields{"key": key}).Warnf("cache marshal failed: %v", err)
		return
	}
	if err := c.redis.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		c.logger.WithFields(logrus.Fields{"key": key}).Warnf("cache set failed: %v", err)
		return
	}
	c.count(&c.stats.Sets)
}

// Stats returns a copy of the current counters.
func (c *AnalysisCache) Stats() AnalysisCacheStats {
	c.stats.mu.Lock()
	defer c.stats.mu.Unlock()
	return AnalysisCacheStats{Hits: c.stats.Hits, Misses: c.stats.Misses, Sets: c.stats.Sets}
}

func (c *AnalysisCache) count(field *int64) {
	c.stats.mu.Lock()
	*field++
	c.stats.mu.Unlock()
}
