package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ashureev/hungrybot/internal/domain"
	"github.com/ashureev/hungrybot/internal/metrics"
)

const cacheKeyPrefix = "hungrybot:search:"

// RedisConfig holds the connection settings for the search cache.
type RedisConfig struct {
	Address  string
	Password string
	DB       int
}

// OpenRedis connects to Redis and verifies the connection.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Address,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

// CachedSearcher serves repeated searches from Redis.
// Only successful, non-empty answers are cached.
type CachedSearcher struct {
	next    Searcher
	rdb     redis.Cmdable
	ttl     time.Duration
	logger  *slog.Logger
	metrics *metrics.Metrics
}

var _ Searcher = (*CachedSearcher)(nil)

// NewCachedSearcher wraps next with a Redis cache whose entries live for ttl.
func NewCachedSearcher(next Searcher, rdb redis.Cmdable, ttl time.Duration, logger *slog.Logger, m *metrics.Metrics) *CachedSearcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedSearcher{next: next, rdb: rdb, ttl: ttl, logger: logger, metrics: m}
}

// SearchBusinesses returns a cached answer or asks the wrapped searcher.
func (c *CachedSearcher) SearchBusinesses(ctx context.Context, term, location string) ([]domain.Business, error) {
	key := cacheKey(term, location)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var cached []domain.Business
		if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil && len(cached) > 0 {
			c.metrics.CacheOutcome("hit")
			return cached, nil
		}
		c.logger.Warn("Discarding unreadable search cache entry", "key", key)
		c.metrics.CacheOutcome("error")
	case errors.Is(err, redis.Nil):
		c.metrics.CacheOutcome("miss")
	default:
		c.logger.Warn("Search cache read failed", "key", key, "error", err)
		c.metrics.CacheOutcome("error")
	}

	businesses, err := c.next.SearchBusinesses(ctx, term, location)
	if err != nil || len(businesses) == 0 {
		return businesses, err
	}

	data, err := json.Marshal(businesses)
	if err != nil {
		return businesses, nil
	}
	if err := c.rdb.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("Search cache write failed", "key", key, "error", err)
	}
	return businesses, nil
}

func cacheKey(term, location string) string {
	norm := func(s string) string { return strings.ToLower(strings.Join(strings.Fields(s), " ")) }
	return cacheKeyPrefix + url.QueryEscape(norm(term)) + ":" + url.QueryEscape(norm(location))
}
