package provider

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/logger"
)

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	l, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	require.NoError(t, err)
	return l
}

type fakeHistoryProvider struct {
	name string
	bars []models.Bar
	err  error
}

func (f *fakeHistoryProvider) Name() string { return f.name }

func (f *fakeHistoryProvider) FetchHistory(_ context.Context, symbol, _, _ string) ([]models.Bar, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.bars, nil
}

type fakeQuoteProvider struct {
	name  string
	quote *models.Quote
	err   error
}

func (f *fakeQuoteProvider) Name() string { return f.name }

func (f *fakeQuoteProvider) FetchQuote(_ context.Context, symbol string) (*models.Quote, error) {
	if f.err != nil {
		return nil, f.err
	}
	q := *f.quote
	q.Symbol = symbol
	return &q, nil
}

type fakeNewsProvider struct {
	name  string
	items []models.NewsItem
	err   error
}

func (f *fakeNewsProvider) Name() string { return f.name }

func (f *fakeNewsProvider) FetchNews(_ context.Context, _ string, _, _ int) ([]models.NewsItem, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.items, nil
}

func TestChainFallsBackToSecondary(t *testing.T) {
	primary := &fakeHistoryProvider{name: "primary", err: &HTTPError{Status: 500}}
	secondary := &fakeHistoryProvider{name: "secondary", bars: []models.Bar{
		{Symbol: "AAPL", Timestamp: 1700000000, Close: 180},
	}}
	chain := NewChain(testLogger(t), WithHistoryProviders(primary, secondary))

	h, err := chain.FetchHistory(context.Background(), "AAPL", "3mo", "1d")
	require.NoError(t, err)
	assert.Equal(t, "secondary", h.Provider)
	assert.Len(t, h.Bars, 1)
}

func TestChainExhaustedAggregatesAllFailures(t *testing.T) {
	chain := NewChain(testLogger(t), WithQuoteProviders(
		&fakeQuoteProvider{name: "a", err: ErrNoKey},
		&fakeQuoteProvider{name: "b", err: &HTTPError{Status: 503}},
		&fakeQuoteProvider{name: "c", err: ErrEmptyResult},
	))

	_, err := chain.FetchQuote(context.Background(), "MSFT")
	require.Error(t, err)

	var ce *ChainExhausted
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, "quote", ce.Resource)
	assert.Equal(t, "MSFT", ce.Symbol)
	require.Len(t, ce.Attempts, 3)
	assert.Equal(t, "a", ce.Attempts[0].Provider)
	assert.ErrorIs(t, ce.Attempts[0].Err, ErrNoKey)
}

func TestChainFirstSuccessWins(t *testing.T) {
	chain := NewChain(testLogger(t), WithQuoteProviders(
		&fakeQuoteProvider{name: "first", quote: &models.Quote{Price: 101}},
		&fakeQuoteProvider{name: "second", quote: &models.Quote{Price: 999}},
	))

	q, err := chain.FetchQuote(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, "first", q.Provider)
	assert.Equal(t, 101.0, q.Price)
}

func TestFetchNewsDedupesByCanonicalURL(t *testing.T) {
	chain := NewChain(testLogger(t), WithNewsProviders(&fakeNewsProvider{
		name: "n",
		items: []models.NewsItem{
			{Title: "a", URL: "https://reuters.com/x?utm=1"},
			{Title: "b", URL: "https://reuters.com/x?utm=2"},
			{Title: "c", URL: "https://reuters.com/y"},
		},
	}))

	items, err := chain.FetchNews(context.Background(), "AAPL", 48, 20)
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "a", items[0].Title)
	assert.Equal(t, "c", items[1].Title)
}

func TestCanonicalURL(t *testing.T) {
	assert.Equal(t, CanonicalURL("https://a.com/p?x=1#frag"), CanonicalURL("https://a.com/p?y=2"))
	assert.NotEqual(t, CanonicalURL("https://a.com/p"), CanonicalURL("https://a.com/q"))
}
