package repository

import (
	"context"
	"time"

	"MarketPulse/internal/domain/models"
)

// MarketStore is the persistent home of bars, daily aggregates, news,
// sentiment rows, and the optional tilt inputs. Every write is a single
// upsert or append-only insert.
type MarketStore interface {
	StoreBars(ctx context.Context, bars []*models.Bar) error
	QueryBars(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.Bar, error)

	UpsertDailyAggregates(ctx context.Context, rows []*models.DailyAggregate) error
	QueryDailyAggregates(ctx context.Context, symbol string, limit int) ([]*models.DailyAggregate, error)

	StoreNews(ctx context.Context, symbol string, items []*models.NewsItem) error

	InsertSentiment(ctx context.Context, s *models.SentimentScore) error
	LatestSentiment(ctx context.Context, symbol string, since time.Time) (*models.SentimentScore, error)

	LatestOptionsSummary(ctx context.Context, symbol string) (*models.OptionsSummary, error)
	LatestInstitutionalFlow(ctx context.Context, symbol string) (*models.InstitutionalFlow, error)

	Health(ctx context.Context) error
}

// CacheEntry is one row of the persistent TTL cache.
type CacheEntry struct {
	Key        string
	Value      []byte
	StoredAt   time.Time
	TTLSeconds int64
}

// CacheStore persists TTL cache entries. Staleness is the caller's concern;
// the store only holds the latest entry per key.
type CacheStore interface {
	GetEntry(ctx context.Context, key string) (*CacheEntry, error) // nil when absent
	PutEntry(ctx context.Context, e *CacheEntry) error
}

// RateStore is the append-only event log behind the sliding-window limiter.
type RateStore interface {
	CountEvents(ctx context.Context, bucket, identity string, since time.Time) (int, error)
	InsertEvent(ctx context.Context, bucket, identity string, at time.Time) error
	DeleteEventsBefore(ctx context.Context, cutoff time.Time) error
}
