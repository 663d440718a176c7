package ratelimit

import (
	"context"
	"testing"
	"time"

	"MarketPulse/pkg/logger"
)

type memRateStore struct {
	events  []event
	deletes []time.Time
}

type event struct {
	bucket   string
	identity string
	at       time.Time
}

func (m *memRateStore) CountEvents(_ context.Context, bucket, identity string, since time.Time) (int, error) {
	n := 0
	for _, e := range m.events {
		if e.bucket == bucket && e.identity == identity && !e.at.Before(since) {
			n++
		}
	}
	return n, nil
}

func (m *memRateStore) InsertEvent(_ context.Context, bucket, identity string, at time.Time) error {
	m.events = append(m.events, event{bucket, identity, at})
	return nil
}

func (m *memRateStore) DeleteEventsBefore(_ context.Context, cutoff time.Time) error {
	m.deletes = append(m.deletes, cutoff)
	kept := m.events[:0]
	for _, e := range m.events {
		if !e.at.Before(cutoff) {
			kept = append(kept, e)
		}
	}
	m.events = kept
	return nil
}

func newTestLimiter(t *testing.T, store *memRateStore, now *time.Time, dice float64) *Limiter {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return New(store, log,
		WithClock(func() time.Time { return *now }),
		WithRand(func() float64 { return dice }),
	)
}

func TestAdmitLimitThenDeny(t *testing.T) {
	store := &memRateStore{}
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(t, store, &now, 0.99)

	// Scenario: bucket "quote", limit 2, window 60s, three requests in 10s.
	for i := 0; i < 2; i++ {
		d, err := l.Admit(context.Background(), "quote", "1.2.3.4", 2, 60)
		if err != nil {
			t.Fatalf("admit %d: %v", i, err)
		}
		if !d.Allowed {
			t.Fatalf("request %d should be allowed", i+1)
		}
		now = now.Add(5 * time.Second)
	}

	d, err := l.Admit(context.Background(), "quote", "1.2.3.4", 2, 60)
	if err != nil {
		t.Fatalf("admit: %v", err)
	}
	if d.Allowed {
		t.Fatalf("third request inside window should be denied")
	}
	if d.RetryAfterSeconds != 60 {
		t.Fatalf("retry_after = %d, want 60", d.RetryAfterSeconds)
	}
}

func TestAdmitAllowsAfterWindowSlides(t *testing.T) {
	store := &memRateStore{}
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(t, store, &now, 0.99)

	for i := 0; i < 2; i++ {
		if d, _ := l.Admit(context.Background(), "news", "a", 2, 60); !d.Allowed {
			t.Fatalf("seed request %d denied", i)
		}
	}

	now = now.Add(61 * time.Second)
	if d, _ := l.Admit(context.Background(), "news", "a", 2, 60); !d.Allowed {
		t.Fatalf("request after window slid should be allowed")
	}
}

func TestAdmitIsolatesIdentitiesAndBuckets(t *testing.T) {
	store := &memRateStore{}
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)
	l := newTestLimiter(t, store, &now, 0.99)

	if d, _ := l.Admit(context.Background(), "quote", "a", 1, 60); !d.Allowed {
		t.Fatalf("first identity denied")
	}
	if d, _ := l.Admit(context.Background(), "quote", "b", 1, 60); !d.Allowed {
		t.Fatalf("other identity should not share the window")
	}
	if d, _ := l.Admit(context.Background(), "history", "a", 1, 60); !d.Allowed {
		t.Fatalf("other bucket should not share the window")
	}
	if d, _ := l.Admit(context.Background(), "quote", "a", 1, 60); d.Allowed {
		t.Fatalf("same bucket and identity should be denied")
	}
}

func TestAdmitTriggersProbabilisticCleanup(t *testing.T) {
	store := &memRateStore{}
	now := time.Date(2024, 10, 10, 12, 0, 0, 0, time.UTC)

	// Dice below the threshold forces a cleanup on the admitted call.
	l := newTestLimiter(t, store, &now, 0.01)
	if _, err := l.Admit(context.Background(), "quote", "a", 5, 60); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if len(store.deletes) != 1 {
		t.Fatalf("expected one cleanup pass, got %d", len(store.deletes))
	}
	want := now.Add(-24 * time.Hour)
	if !store.deletes[0].Equal(want) {
		t.Fatalf("cleanup cutoff = %v, want %v", store.deletes[0], want)
	}

	// Dice above the threshold skips cleanup.
	store2 := &memRateStore{}
	l2 := newTestLimiter(t, store2, &now, 0.5)
	if _, err := l2.Admit(context.Background(), "quote", "a", 5, 60); err != nil {
		t.Fatalf("admit: %v", err)
	}
	if len(store2.deletes) != 0 {
		t.Fatalf("expected no cleanup pass")
	}
}

func TestClientIdentity(t *testing.T) {
	if got := ClientIdentity("1.2.3.4, 5.6.7.8"); got != "1.2.3.4" {
		t.Fatalf("got %q", got)
	}
	if got := ClientIdentity(""); got != "unknown" {
		t.Fatalf("got %q", got)
	}
	if got := ClientIdentity("  9.9.9.9  "); got != "9.9.9.9" {
		t.Fatalf("got %q", got)
	}
}
