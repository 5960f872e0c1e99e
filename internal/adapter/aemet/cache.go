package aemet

import (
	"context"
	"sync"
	"time"

	"github.com/couchcryptid/event-weather-risk-service/internal/domain"
	"github.com/couchcryptid/event-weather-risk-service/internal/observability"
	"github.com/jonboulle/clockwork"
)

// Provider is the forecast source a cache decorates.
type Provider interface {
	Forecast(ctx context.Context, locationCode string) ([]domain.ForecastDay, error)
}

// CachedProvider wraps a Provider with an in-memory LRU cache whose entries
// expire after a fixed TTL.
type CachedProvider struct {
	inner   Provider
	cache   *lruCache
	ttl     time.Duration
	clock   clockwork.Clock
	metrics *observability.Metrics
}

// NewCachedProvider creates a cache decorator around a forecast provider.
func NewCachedProvider(inner Provider, maxEntries int, ttl time.Duration, clock clockwork.Clock, metrics *observability.Metrics) *CachedProvider {
	return &CachedProvider{
		inner:   inner,
		cache:   newLRUCache(maxEntries),
		ttl:     ttl,
		clock:   clock,
		metrics: metrics,
	}
}

func (c *CachedProvider) Forecast(ctx context.Context, locationCode string) ([]domain.ForecastDay, error) {
	now := c.clock.Now()
	if days, ok := c.cache.get(locationCode, now); ok {
		c.metrics.ForecastCache.WithLabelValues("hit").Inc()
		return days, nil
	}
	c.metrics.ForecastCache.WithLabelValues("miss").Inc()

	days, err := c.inner.Forecast(ctx, locationCode)
	if err != nil {
		return nil, err
	}
	// Empty forecasts are not cached so the next request retries upstream.
	if len(days) > 0 {
		c.cache.put(locationCode, days, now.Add(c.ttl))
	}
	return days, nil
}

// lruCache is a thread-safe LRU cache of forecasts with per-entry expiry.
type lruCache struct {
	maxEntries int
	mu         sync.Mutex
	entries    map[string]*node
	head       *node // most recently used
	tail       *node // least recently used
}

type node struct {
	key       string
	days      []domain.ForecastDay
	expiresAt time.Time
	prev      *node
	next      *node
}

func newLRUCache(maxEntries int) *lruCache {
	return &lruCache{
		maxEntries: maxEntries,
		entries:    make(map[string]*node),
	}
}

func (c *lruCache) get(key string, now time.Time) ([]domain.ForecastDay, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	n, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if !now.Before(n.expiresAt) {
		delete(c.entries, key)
		c.unlink(n)
		return nil, false
	}
	c.moveToFront(n)
	return n.days, true
}

func (c *lruCache) put(key string, days []domain.ForecastDay, expiresAt time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if n, ok := c.entries[key]; ok {
		n.days = days
		n.expiresAt = expiresAt
		c.moveToFront(n)
		return
	}

	n := &node{key: key, days: days, expiresAt: expiresAt}
	c.entries[key] = n
	c.pushFront(n)

	if len(c.entries) > c.maxEntries {
		c.evictTail()
	}
}

func (c *lruCache) size() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *lruCache) moveToFront(n *node) {
	if n == c.head {
		return
	}
	c.unlink(n)
	c.pushFront(n)
}

func (c *lruCache) pushFront(n *node) {
	n.next = c.head
	n.prev = nil
	if c.head != nil {
		c.head.prev = n
	}
	c.head = n
	if c.tail == nil {
		c.tail = n
	}
}

func (c *lruCache) unlink(n *node) {
	if n.prev != nil {
		n.prev.next = n.next
	} else {
		c.head = n.next
	}
	if n.next != nil {
		n.next.prev = n.prev
	} else {
		c.tail = n.prev
	}
	n.prev, n.next = nil, nil
}

func (c *lruCache) evictTail() {
	if c.tail == nil {
		return
	}
	t := c.tail
	delete(c.entries, t.key)
	c.unlink(t)
}
