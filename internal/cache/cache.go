// Package cache stores rendered analytics reports in Redis.
package cache

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/theirongolddev/edumetrics/internal/metrics"
)

const keyPrefix = "edumetrics:report:"

// ErrMiss is returned by Get when no report is cached under the key.
var ErrMiss = errors.New("cache: miss")

// ReportCache stores serialized reports with a TTL.
type ReportCache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Close() error
}

// RedisCache is a ReportCache backed by Redis.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects to the Redis URL and verifies it with PING.
func NewRedis(ctx context.Context, url string, ttl time.Duration) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("cache: failed to parse redis url: %w", err)
	}
	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("cache: failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client, ttl: ttl}, nil
}

// Get returns the cached report or ErrMiss.
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, keyPrefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		metrics.CacheLookups.WithLabelValues("miss").Inc()
		return nil, ErrMiss
	case err != nil:
		metrics.CacheLookups.WithLabelValues("error").Inc()
		return nil, err
	}
	metrics.CacheLookups.WithLabelValues("hit").Inc()
	return val, nil
}

// Set stores a report for the configured TTL.
func (c *RedisCache) Set(ctx context.Context, key string, value []byte) error {
	return c.client.Set(ctx, keyPrefix+key, value, c.ttl).Err()
}

// Close closes the Redis connection pool.
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Nop is a ReportCache that never stores anything.
type Nop struct{}

// Get always misses.
func (Nop) Get(context.Context, string) ([]byte, error) { return nil, ErrMiss }

// Set discards the value.
func (Nop) Set(context.Context, string, []byte) error { return nil }

// Close does nothing.
func (Nop) Close() error { return nil }

// Key derives a stable cache key from a report name and its parameters.
func Key(report string, parts ...string) string {
	h := sha256.Sum256([]byte(strings.Join(parts, "\x00")))
	return report + ":" + hex.EncodeToString(h[:12])
}
