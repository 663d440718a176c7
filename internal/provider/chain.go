package provider

import (
	"context"
	"net/url"
	"strings"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/pkg/logger"
)

// Chain tries an ordered list of providers for each resource kind until one
// returns usable data. It owns no state beyond its configuration.
type Chain struct {
	quotes    []QuoteProvider
	histories []HistoryProvider
	news      []NewsProvider
	log       *logger.Logger
	metrics   domrepo.Metrics
}

type ChainOption func(*Chain)

func WithQuoteProviders(ps ...QuoteProvider) ChainOption {
	return func(c *Chain) { c.quotes = ps }
}

func WithHistoryProviders(ps ...HistoryProvider) ChainOption {
	return func(c *Chain) { c.histories = ps }
}

func WithNewsProviders(ps ...NewsProvider) ChainOption {
	return func(c *Chain) { c.news = ps }
}

func WithMetrics(m domrepo.Metrics) ChainOption {
	return func(c *Chain) { c.metrics = m }
}

func NewChain(log *logger.Logger, opts ...ChainOption) *Chain {
	c := &Chain{log: log}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchQuote returns the first provider's successful quote.
func (c *Chain) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var attempts []Attempt
	for _, p := range c.quotes {
		q, err := p.FetchQuote(ctx, symbol)
		if err != nil {
			attempts = append(attempts, Attempt{Provider: p.Name(), Err: err})
			c.recordAttempt(p.Name(), "quote", "failure")
			c.log.Warn("quote provider failed",
				logger.String("provider", p.Name()),
				logger.String("symbol", symbol),
				logger.Error(err),
			)
			continue
		}
		q.Provider = p.Name()
		c.recordAttempt(p.Name(), "quote", "success")
		return q, nil
	}
	return nil, &ChainExhausted{Resource: "quote", Symbol: symbol, Attempts: attempts}
}

// FetchHistory returns the first provider's successful bar series.
func (c *Chain) FetchHistory(ctx context.Context, symbol, rng, interval string) (*models.History, error) {
	var attempts []Attempt
	for _, p := range c.histories {
		bars, err := p.FetchHistory(ctx, symbol, rng, interval)
		if err != nil {
			attempts = append(attempts, Attempt{Provider: p.Name(), Err: err})
			c.recordAttempt(p.Name(), "history", "failure")
			c.log.Warn("history provider failed",
				logger.String("provider", p.Name()),
				logger.String("symbol", symbol),
				logger.Error(err),
			)
			continue
		}
		c.recordAttempt(p.Name(), "history", "success")
		return &models.History{
			Symbol:   symbol,
			Range:    rng,
			Interval: interval,
			Provider: p.Name(),
			Bars:     bars,
		}, nil
	}
	return nil, &ChainExhausted{Resource: "history", Symbol: symbol, Attempts: attempts}
}

// FetchNews returns the first provider's successful headline set,
// deduplicated by canonical URL.
func (c *Chain) FetchNews(ctx context.Context, symbol string, hours, limit int) ([]models.NewsItem, error) {
	var attempts []Attempt
	for _, p := range c.news {
		items, err := p.FetchNews(ctx, symbol, hours, limit)
		if err != nil {
			attempts = append(attempts, Attempt{Provider: p.Name(), Err: err})
			c.recordAttempt(p.Name(), "news", "failure")
			c.log.Warn("news provider failed",
				logger.String("provider", p.Name()),
				logger.String("symbol", symbol),
				logger.Error(err),
			)
			continue
		}
		c.recordAttempt(p.Name(), "news", "success")
		return DedupeNews(items), nil
	}
	return nil, &ChainExhausted{Resource: "news", Symbol: symbol, Attempts: attempts}
}

func (c *Chain) recordAttempt(provider, resource, outcome string) {
	if c.metrics != nil {
		c.metrics.RecordProviderAttempt(provider, resource, outcome)
	}
}

// CanonicalURL strips the query string and fragment so the same article
// reached through different tracking params collapses to one key.
func CanonicalURL(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return raw
	}
	u.RawQuery = ""
	u.Fragment = ""
	return strings.TrimSuffix(u.String(), "/")
}

// DedupeNews removes items whose URLs differ only by query string,
// preserving first-seen order.
func DedupeNews(items []models.NewsItem) []models.NewsItem {
	seen := make(map[string]struct{}, len(items))
	out := make([]models.NewsItem, 0, len(items))
	for _, it := range items {
		key := CanonicalURL(it.URL)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, it)
	}
	return out
}
