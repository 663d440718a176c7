package ratelimit

import (
	"context"
	"math/rand"
	"strings"
	"time"

	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
)

// Decision is the outcome of an admission check.
type Decision struct {
	Allowed           bool
	RetryAfterSeconds int
}

// Limiter is a counting sliding-window rate limiter over a persistent
// append-only event log. The window recomputes on every call rather than
// ticking on a schedule, so boundary bursts just inside the window are
// possible but bounded by limit events per window of wall-clock span.
type Limiter struct {
	store       domrepo.RateStore
	log         *logger.Logger
	metrics     domrepo.Metrics
	now         func() time.Time
	randFloat   func() float64
	cleanupAge  time.Duration
	cleanupProb float64
}

type Option func(*Limiter)

func WithMetrics(m domrepo.Metrics) Option {
	return func(l *Limiter) { l.metrics = m }
}

func WithCleanup(age time.Duration, probability float64) Option {
	return func(l *Limiter) {
		if age > 0 {
			l.cleanupAge = age
		}
		if probability > 0 {
			l.cleanupProb = probability
		}
	}
}

// WithClock overrides the time source for tests.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) { l.now = now }
}

// WithRand overrides the cleanup dice for tests.
func WithRand(f func() float64) Option {
	return func(l *Limiter) { l.randFloat = f }
}

func New(store domrepo.RateStore, log *logger.Logger, opts ...Option) *Limiter {
	l := &Limiter{
		store:       store,
		log:         log,
		now:         time.Now,
		randFloat:   rand.Float64,
		cleanupAge:  24 * time.Hour,
		cleanupProb: 0.02,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Admit counts events for (bucket, identity) inside the trailing window. At
// or above the limit the request is denied with retry_after equal to the full
// window. Otherwise the event is recorded and the request admitted; admitted
// calls occasionally sweep events older than the cleanup age, a best-effort
// housekeeping pass rather than a correctness mechanism.
func (l *Limiter) Admit(ctx context.Context, bucket, identity string, limit, windowSeconds int) (Decision, error) {
	now := l.now()
	since := now.Add(-time.Duration(windowSeconds) * time.Second)

	count, err := l.store.CountEvents(ctx, bucket, identity, since)
	if err != nil {
		return Decision{}, err
	}
	if count >= limit {
		if l.metrics != nil {
			l.metrics.RecordRateDenial(bucket)
		}
		return Decision{Allowed: false, RetryAfterSeconds: windowSeconds}, nil
	}

	if err := l.store.InsertEvent(ctx, bucket, identity, now); err != nil {
		return Decision{}, err
	}

	if l.randFloat() < l.cleanupProb {
		if err := l.store.DeleteEventsBefore(ctx, now.Add(-l.cleanupAge)); err != nil {
			l.log.Warn("rate event cleanup failed", logger.Error(err))
		}
	}

	return Decision{Allowed: true}, nil
}

// ClientIdentity derives the per-client key from a forwarded-for header:
// the first address in the list, or "unknown" when absent.
func ClientIdentity(forwardedFor string) string {
	first := strings.TrimSpace(strings.Split(forwardedFor, ",")[0])
	if first == "" {
		return "unknown"
	}
	return first
}
