package repository

import (
	"context"
	"database/sql"
	"fmt"

	domrepo "MarketPulse/internal/domain/repository"
	pkgch "MarketPulse/pkg/clickhouse"
)

// CHCacheStore persists TTL cache entries in the live_cache table. The
// ReplacingMergeTree keyed on stored_at keeps the latest write per key; reads
// still take the max stored_at explicitly since merges are asynchronous.
type CHCacheStore struct {
	db       *sql.DB
	database string
}

func NewCHCacheStore(ch *pkgch.Client, database string) domrepo.CacheStore {
	if database == "" {
		database = "marketpulse"
	}
	return &CHCacheStore{db: ch.DB(), database: database}
}

func (s *CHCacheStore) GetEntry(ctx context.Context, key string) (*domrepo.CacheEntry, error) {
	q := fmt.Sprintf(`
        SELECT key, value, stored_at, ttl_seconds
        FROM %s.live_cache
        WHERE key = ?
        ORDER BY stored_at DESC
        LIMIT 1`, s.database)
	row := s.db.QueryRowContext(ctx, q, key)
	var e domrepo.CacheEntry
	var value string
	if err := row.Scan(&e.Key, &value, &e.StoredAt, &e.TTLSeconds); err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("cache get: %w", err)
	}
	e.Value = []byte(value)
	return &e, nil
}

func (s *CHCacheStore) PutEntry(ctx context.Context, e *domrepo.CacheEntry) error {
	q := fmt.Sprintf("INSERT INTO %s.live_cache (key, value, stored_at, ttl_seconds) VALUES (?, ?, ?, ?)", s.database)
	_, err := s.db.ExecContext(ctx, q, e.Key, string(e.Value), e.StoredAt.UTC(), e.TTLSeconds)
	if err != nil {
		return fmt.Errorf("cache put: %w", err)
	}
	return nil
}
