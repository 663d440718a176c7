package provider

import (
	"context"

	"MarketPulse/internal/domain/models"
)

// QuoteProvider fetches a point-in-time quote.
type QuoteProvider interface {
	Name() string
	FetchQuote(ctx context.Context, symbol string) (*models.Quote, error)
}

// HistoryProvider fetches a bar series for a range/interval.
type HistoryProvider interface {
	Name() string
	FetchHistory(ctx context.Context, symbol, rng, interval string) ([]models.Bar, error)
}

// NewsProvider fetches recent headlines for a symbol.
type NewsProvider interface {
	Name() string
	FetchNews(ctx context.Context, symbol string, hours, limit int) ([]models.NewsItem, error)
}
