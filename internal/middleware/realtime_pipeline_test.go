package middleware

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

type procFunc func(ctx context.Context, b *models.Bar) error

func (f procFunc) Process(ctx context.Context, b *models.Bar) error { return f(ctx, b) }

type nopMetrics struct {
	mu     sync.Mutex
	errors map[string]int
}

func newNopMetrics() *nopMetrics { return &nopMetrics{errors: map[string]int{}} }

func (m *nopMetrics) RecordMessageSent(_, _ string)       {}
func (m *nopMetrics) RecordLastPrice(_ string, _ float64) {}
func (m *nopMetrics) RecordLatency(_ string, _ float64)   {}
func (m *nopMetrics) RecordError(kind string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errors[kind]++
}
func (m *nopMetrics) RecordProviderAttempt(_, _, _ string) {}
func (m *nopMetrics) RecordCacheLookup(_, _ string)        {}
func (m *nopMetrics) RecordRateDenial(_ string)            {}

func (m *nopMetrics) errorCount(kind string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.errors[kind]
}

func bar(sym string, ts int64) *models.Bar {
	return &models.Bar{Symbol: sym, Timestamp: ts, Close: 100, Volume: 1}
}

func TestPipelineRejectsInvalidBar(t *testing.T) {
	m := newNopMetrics()
	p := NewRealtimePipeline(procFunc(func(context.Context, *models.Bar) error { return nil }), m)

	if err := p.Process(context.Background(), nil); err == nil {
		t.Fatal("nil bar must fail validation")
	}
	if err := p.Process(context.Background(), &models.Bar{Symbol: "", Timestamp: 1}); err == nil {
		t.Fatal("empty symbol must fail validation")
	}
	if m.errorCount("pipeline_validate") != 2 {
		t.Fatalf("validate errors = %d, want 2", m.errorCount("pipeline_validate"))
	}
}

func TestPipelineThrottlesPerSymbol(t *testing.T) {
	var processed int
	m := newNopMetrics()
	p := NewRealtimePipeline(procFunc(func(context.Context, *models.Bar) error {
		processed++
		return nil
	}), m, WithMaxRPS(1))

	// two bars back to back for the same symbol: second one is dropped
	if err := p.Process(context.Background(), bar("AAPL", 1)); err != nil {
		t.Fatalf("first: %v", err)
	}
	if err := p.Process(context.Background(), bar("AAPL", 2)); err != nil {
		t.Fatalf("throttled bar must not error: %v", err)
	}
	if processed != 1 {
		t.Fatalf("processed = %d, want 1", processed)
	}
	// a different symbol is not throttled
	if err := p.Process(context.Background(), bar("MSFT", 3)); err != nil {
		t.Fatalf("other symbol: %v", err)
	}
	if processed != 2 {
		t.Fatalf("processed = %d, want 2", processed)
	}
}

func TestPipelineBuffersOnDownstreamFailure(t *testing.T) {
	var mu sync.Mutex
	var attempts int
	failing := true
	m := newNopMetrics()
	p := NewRealtimePipeline(procFunc(func(context.Context, *models.Bar) error {
		mu.Lock()
		defer mu.Unlock()
		attempts++
		if failing {
			return errors.New("downstream down")
		}
		return nil
	}), m, WithBufferSize(10))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	p.Start(ctx)
	defer p.Stop()

	if err := p.Process(ctx, bar("AAPL", 1)); err == nil {
		t.Fatal("expected downstream error")
	}

	mu.Lock()
	failing = false
	mu.Unlock()

	// the flusher retries the buffered bar until it lands
	deadline := time.After(3 * time.Second)
	for {
		mu.Lock()
		done := attempts >= 2
		mu.Unlock()
		if done {
			break
		}
		select {
		case <-deadline:
			t.Fatal("buffered bar never flushed")
		case <-time.After(10 * time.Millisecond):
		}
	}
}
