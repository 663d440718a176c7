package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	domrepo "MarketPulse/internal/domain/repository"
	pkgch "MarketPulse/pkg/clickhouse"
)

// CHRateStore is the append-only request log behind the sliding-window
// limiter. Rows carry no payload beyond (bucket, identity, ts).
type CHRateStore struct {
	db       *sql.DB
	database string
}

func NewCHRateStore(ch *pkgch.Client, database string) domrepo.RateStore {
	if database == "" {
		database = "marketpulse"
	}
	return &CHRateStore{db: ch.DB(), database: database}
}

func (s *CHRateStore) CountEvents(ctx context.Context, bucket, identity string, since time.Time) (int, error) {
	q := fmt.Sprintf("SELECT count() FROM %s.rate_gate WHERE bucket = ? AND identity = ? AND ts >= ?", s.database)
	row := s.db.QueryRowContext(ctx, q, bucket, identity, since)
	var n uint64
	if err := row.Scan(&n); err != nil {
		return 0, fmt.Errorf("rate count: %w", err)
	}
	return int(n), nil
}

func (s *CHRateStore) InsertEvent(ctx context.Context, bucket, identity string, at time.Time) error {
	q := fmt.Sprintf("INSERT INTO %s.rate_gate (bucket, identity, ts) VALUES (?, ?, ?)", s.database)
	if _, err := s.db.ExecContext(ctx, q, bucket, identity, at.UTC()); err != nil {
		return fmt.Errorf("rate insert: %w", err)
	}
	return nil
}

func (s *CHRateStore) DeleteEventsBefore(ctx context.Context, cutoff time.Time) error {
	// Lightweight delete; the table TTL is the backstop if mutations lag.
	q := fmt.Sprintf("DELETE FROM %s.rate_gate WHERE ts < ?", s.database)
	if _, err := s.db.ExecContext(ctx, q, cutoff.UTC()); err != nil {
		return fmt.Errorf("rate cleanup: %w", err)
	}
	return nil
}
