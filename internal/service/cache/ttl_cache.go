package cache

import (
	"context"
	"time"

	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
)

const (
	// TTL envelope applied to every put regardless of what the caller asked.
	minTTL = time.Second
	maxTTL = 24 * time.Hour
)

// Result of a cache lookup.
type Result int

const (
	Miss Result = iota
	Fresh
)

// HotCache is an optional best-effort in-memory/redis layer in front of the
// persistent store. Failures here never fail a lookup.
type HotCache interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) error
}

// TTLCache is a freshness-gated read-through cache over a persistent store.
// A stale but present entry is a Miss; the caller refreshes and re-puts.
// Concurrent writers to the same key race benignly: entries are idempotent
// recomputations of the same upstream fact, so last-write-wins holds.
type TTLCache struct {
	store   domrepo.CacheStore
	hot     HotCache
	log     *logger.Logger
	metrics domrepo.Metrics
	now     func() time.Time
}

type Option func(*TTLCache)

func WithHotCache(h HotCache) Option {
	return func(c *TTLCache) { c.hot = h }
}

func WithMetrics(m domrepo.Metrics) Option {
	return func(c *TTLCache) { c.metrics = m }
}

// WithClock overrides the time source; tests use it to cross TTL boundaries.
func WithClock(now func() time.Time) Option {
	return func(c *TTLCache) { c.now = now }
}

func New(store domrepo.CacheStore, log *logger.Logger, opts ...Option) *TTLCache {
	c := &TTLCache{
		store: store,
		log:   log,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached value for key when the entry is still fresh:
// now < stored_at + ttl. Anything else, including store errors, is a Miss.
func (c *TTLCache) Get(ctx context.Context, operation, key string) ([]byte, Result) {
	if c.hot != nil {
		var hotVal []byte
		if err := c.hot.Get(ctx, key, &hotVal); err == nil && len(hotVal) > 0 {
			c.record(operation, "fresh")
			return hotVal, Fresh
		}
	}

	entry, err := c.store.GetEntry(ctx, key)
	if err != nil {
		c.log.Warn("cache read failed", logger.String("key", key), logger.Error(err))
		c.record(operation, "miss")
		return nil, Miss
	}
	if entry == nil {
		c.record(operation, "miss")
		return nil, Miss
	}

	expiry := entry.StoredAt.Add(time.Duration(entry.TTLSeconds) * time.Second)
	if !c.now().Before(expiry) {
		c.record(operation, "miss")
		return nil, Miss
	}

	c.record(operation, "fresh")
	return entry.Value, Fresh
}

// Put stores value under key with ttl clamped into [1s, 24h]. A write failure
// is logged and returned, but callers treat it as non-fatal: the computed
// value is still valid.
func (c *TTLCache) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if ttl < minTTL {
		ttl = minTTL
	}
	if ttl > maxTTL {
		ttl = maxTTL
	}

	if c.hot != nil {
		if err := c.hot.Set(ctx, key, value, ttl); err != nil {
			c.log.Debug("hot cache set failed", logger.String("key", key), logger.Error(err))
		}
	}

	err := c.store.PutEntry(ctx, &domrepo.CacheEntry{
		Key:        key,
		Value:      value,
		StoredAt:   c.now(),
		TTLSeconds: int64(ttl / time.Second),
	})
	if err != nil {
		c.log.Warn("cache write failed", logger.String("key", key), logger.Error(err))
	}
	return err
}

func (c *TTLCache) record(operation, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordCacheLookup(operation, outcome)
	}
}
