package cache

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
)

type memCacheStore struct {
	entries map[string]*domrepo.CacheEntry
	getErr  error
	putErr  error
}

func newMemCacheStore() *memCacheStore {
	return &memCacheStore{entries: make(map[string]*domrepo.CacheEntry)}
}

func (m *memCacheStore) GetEntry(_ context.Context, key string) (*domrepo.CacheEntry, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	return m.entries[key], nil
}

func (m *memCacheStore) PutEntry(_ context.Context, e *domrepo.CacheEntry) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[e.Key] = e
	return nil
}

func newTestCache(t *testing.T, store domrepo.CacheStore, now *time.Time) *TTLCache {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(store, log, WithClock(func() time.Time { return *now }))
}

func TestGetFreshWithinTTL(t *testing.T) {
	store := newMemCacheStore()
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	c := newTestCache(t, store, &now)

	if err := c.Put(context.Background(), "k", []byte("v"), 15*time.Second); err != nil {
		t.Fatalf("put: %v", err)
	}

	now = now.Add(14 * time.Second)
	val, res := c.Get(context.Background(), "quote", "k")
	if res != Fresh {
		t.Fatalf("expected Fresh at 14s")
	}
	if string(val) != "v" {
		t.Fatalf("unexpected value %q", val)
	}
}

func TestGetMissAtTTLBoundary(t *testing.T) {
	store := newMemCacheStore()
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	c := newTestCache(t, store, &now)

	if err := c.Put(context.Background(), "k", []byte("v"), 15*time.Second); err != nil {
		t.Fatalf("put: %v", err)
	}

	// Exactly stored_at + ttl is already stale.
	now = now.Add(15 * time.Second)
	if _, res := c.Get(context.Background(), "quote", "k"); res != Miss {
		t.Fatalf("expected Miss at boundary")
	}
}

func TestGetMissWhenAbsent(t *testing.T) {
	store := newMemCacheStore()
	now := time.Now()
	c := newTestCache(t, store, &now)

	if _, res := c.Get(context.Background(), "quote", "nope"); res != Miss {
		t.Fatalf("expected Miss for absent key")
	}
}

func TestPutClampsTTL(t *testing.T) {
	store := newMemCacheStore()
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	c := newTestCache(t, store, &now)

	if err := c.Put(context.Background(), "low", []byte("v"), 0); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got := store.entries["low"].TTLSeconds; got != 1 {
		t.Fatalf("expected ttl clamped up to 1s, got %d", got)
	}

	if err := c.Put(context.Background(), "high", []byte("v"), 48*time.Hour); err != nil {
		t.Fatalf("put: %v", err)
	}
	if got := store.entries["high"].TTLSeconds; got != 86400 {
		t.Fatalf("expected ttl clamped down to 86400s, got %d", got)
	}
}

func TestStoreErrorsDegradeToMiss(t *testing.T) {
	store := newMemCacheStore()
	store.getErr = errors.New("store down")
	now := time.Now()
	c := newTestCache(t, store, &now)

	if _, res := c.Get(context.Background(), "quote", "k"); res != Miss {
		t.Fatalf("expected Miss on store error")
	}
}

func TestPutReportsWriteFailure(t *testing.T) {
	store := newMemCacheStore()
	store.putErr = errors.New("insert failed")
	now := time.Now()
	c := newTestCache(t, store, &now)

	if err := c.Put(context.Background(), "k", []byte("v"), time.Minute); err == nil {
		t.Fatalf("expected write error to surface")
	}
}

func TestFingerprintDeterministic(t *testing.T) {
	a := Fingerprint("history", "AAPL", "3mo", "1d")
	b := Fingerprint("history", "AAPL", "3mo", "1d")
	if a != b {
		t.Fatalf("fingerprint not deterministic: %q vs %q", a, b)
	}
	if a == Fingerprint("history", "AAPL", "6mo", "1d") {
		t.Fatalf("different params must not collide")
	}
	if !strings.HasPrefix(a, "history:") {
		t.Fatalf("fingerprint should carry the operation prefix, got %q", a)
	}
}
