package usecase

import (
	"context"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/provider"
	svccache "MarketPulse/internal/service/cache"
	"MarketPulse/pkg/logger"
)

type memCacheStore struct {
	entries map[string]*domrepo.CacheEntry
}

func newMemCacheStore() *memCacheStore {
	return &memCacheStore{entries: map[string]*domrepo.CacheEntry{}}
}

func (m *memCacheStore) GetEntry(_ context.Context, key string) (*domrepo.CacheEntry, error) {
	return m.entries[key], nil
}

func (m *memCacheStore) PutEntry(_ context.Context, e *domrepo.CacheEntry) error {
	m.entries[e.Key] = e
	return nil
}

type stubQuoteProvider struct {
	name  string
	quote *models.Quote
	err   error
	calls int
}

func (s *stubQuoteProvider) Name() string { return s.name }

func (s *stubQuoteProvider) FetchQuote(_ context.Context, _ string) (*models.Quote, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	q := *s.quote
	return &q, nil
}

func testLogger(t *testing.T) *logger.Logger {
	t.Helper()
	log, err := logger.New(&logger.Config{Level: "error", Format: "json", Output: "stderr"})
	if err != nil {
		t.Fatalf("logger: %v", err)
	}
	return log
}

func TestGetQuoteFetchesThenServesCached(t *testing.T) {
	log := testLogger(t)
	stub := &stubQuoteProvider{
		name:  "stub",
		quote: &models.Quote{Symbol: "AAPL", Price: 187.5, AsOf: time.Now().UTC()},
	}
	chain := provider.NewChain(log, provider.WithQuoteProviders(stub))
	cache := svccache.New(newMemCacheStore(), log)
	uc := NewQuoteUseCase(chain, cache, 15*time.Second, log)

	q, cached, err := uc.GetQuote(context.Background(), "aapl")
	if err != nil {
		t.Fatalf("first get: %v", err)
	}
	if cached {
		t.Fatal("first get should not be cached")
	}
	if q.Symbol != "AAPL" || q.Provider != "stub" {
		t.Fatalf("unexpected quote: %+v", q)
	}

	q2, cached, err := uc.GetQuote(context.Background(), "AAPL")
	if err != nil {
		t.Fatalf("second get: %v", err)
	}
	if !cached {
		t.Fatal("second get should be served from cache")
	}
	if q2.Price != q.Price {
		t.Fatalf("cached price %v != fetched %v", q2.Price, q.Price)
	}
	if stub.calls != 1 {
		t.Fatalf("provider called %d times, want 1", stub.calls)
	}
}

func TestGetQuoteNormalizesIndexAliases(t *testing.T) {
	log := testLogger(t)
	stub := &stubQuoteProvider{
		name:  "stub",
		quote: &models.Quote{Symbol: "SPY", Price: 512.0},
	}
	chain := provider.NewChain(log, provider.WithQuoteProviders(stub))
	cache := svccache.New(newMemCacheStore(), log)
	uc := NewQuoteUseCase(chain, cache, 15*time.Second, log)

	if _, _, err := uc.GetQuote(context.Background(), "^GSPC"); err != nil {
		t.Fatalf("alias get: %v", err)
	}
	// the alias resolves to the same cache entry as the ETF proxy
	if _, cached, _ := uc.GetQuote(context.Background(), "SPY"); !cached {
		t.Fatal("SPY should hit the entry warmed by ^GSPC")
	}
}

func TestGetQuoteRejectsInvalidSymbol(t *testing.T) {
	log := testLogger(t)
	chain := provider.NewChain(log)
	cache := svccache.New(newMemCacheStore(), log)
	uc := NewQuoteUseCase(chain, cache, 15*time.Second, log)

	if _, _, err := uc.GetQuote(context.Background(), "!!bad!!"); err != ErrInvalidSymbol {
		t.Fatalf("error = %v, want ErrInvalidSymbol", err)
	}
}
