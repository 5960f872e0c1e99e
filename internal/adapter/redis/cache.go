package redis

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	"github.com/couchcryptid/event-weather-risk-service/internal/observability"
	goredis "github.com/redis/go-redis/v9"
)

const keyPrefix = "weather-risk:forecast:"

// Provider is the forecast source the cache decorates.
type Provider interface {
	Forecast(ctx context.Context, locationCode string) ([]domain.ForecastDay, error)
}

// kv is the subset of the Redis client the cache uses.
type kv interface {
	Get(ctx context.Context, key string) *goredis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *goredis.StatusCmd
	Ping(ctx context.Context) *goredis.StatusCmd
}

// Cache is a forecast cache shared between service replicas. Redis failures
// degrade to calling the inner provider directly.
type Cache struct {
	client  kv
	inner   Provider
	ttl     time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
}

// NewClient creates a Redis client for addr.
func NewClient(addr string) *goredis.Client {
	return goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 2 * time.Second,
		ReadTimeout: time.Second,
	})
}

// NewCache creates a Redis cache decorator around a forecast provider.
func NewCache(client *goredis.Client, inner Provider, ttl time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Cache {
	return &Cache{client: client, inner: inner, ttl: ttl, metrics: metrics, logger: logger}
}

func (c *Cache) Forecast(ctx context.Context, locationCode string) ([]domain.ForecastDay, error) {
	key := cacheKey(locationCode)

	val, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var days []domain.ForecastDay
		if jsonErr := json.Unmarshal(val, &days); jsonErr == nil {
			c.metrics.ForecastCache.WithLabelValues("hit").Inc()
			return days, nil
		}
		c.logger.Warn("discarding unreadable cached forecast", "key", key)
	case !errors.Is(err, goredis.Nil):
		c.logger.Warn("forecast cache read failed", "key", key, "error", err)
	}
	c.metrics.ForecastCache.WithLabelValues("miss").Inc()

	days, err := c.inner.Forecast(ctx, locationCode)
	if err != nil {
		return nil, err
	}
	if len(days) == 0 {
		return days, nil
	}

	data, err := json.Marshal(days)
	if err != nil {
		c.logger.Warn("forecast cache encode failed", "key", key, "error", err)
		return days, nil
	}
	if err := c.client.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("forecast cache write failed", "key", key, "error", err)
	}
	return days, nil
}

// CheckReadiness pings Redis.
func (c *Cache) CheckReadiness(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

func cacheKey(locationCode string) string {
	return keyPrefix + locationCode
}
