package usecase

import (
	"context"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
)

type fakeMarketStore struct {
	bars      []*models.Bar
	aggs      map[string][]*models.DailyAggregate
	news      map[string][]*models.NewsItem
	sentiment []*models.SentimentScore
}

func newFakeMarketStore() *fakeMarketStore {
	return &fakeMarketStore{
		aggs: map[string][]*models.DailyAggregate{},
		news: map[string][]*models.NewsItem{},
	}
}

func (f *fakeMarketStore) StoreBars(_ context.Context, bars []*models.Bar) error {
	f.bars = append(f.bars, bars...)
	return nil
}

func (f *fakeMarketStore) QueryBars(_ context.Context, symbol string, _, _ time.Time, _ int) ([]*models.Bar, error) {
	var out []*models.Bar
	for _, b := range f.bars {
		if b.Symbol == symbol {
			out = append(out, b)
		}
	}
	return out, nil
}

func (f *fakeMarketStore) UpsertDailyAggregates(_ context.Context, rows []*models.DailyAggregate) error {
	for _, r := range rows {
		f.aggs[r.Symbol] = append(f.aggs[r.Symbol], r)
	}
	return nil
}

func (f *fakeMarketStore) QueryDailyAggregates(_ context.Context, symbol string, limit int) ([]*models.DailyAggregate, error) {
	rows := f.aggs[symbol]
	if len(rows) > limit {
		rows = rows[len(rows)-limit:]
	}
	return rows, nil
}

func (f *fakeMarketStore) StoreNews(_ context.Context, symbol string, items []*models.NewsItem) error {
	f.news[symbol] = append(f.news[symbol], items...)
	return nil
}

func (f *fakeMarketStore) InsertSentiment(_ context.Context, s *models.SentimentScore) error {
	f.sentiment = append(f.sentiment, s)
	return nil
}

func (f *fakeMarketStore) LatestSentiment(_ context.Context, symbol string, since time.Time) (*models.SentimentScore, error) {
	for i := len(f.sentiment) - 1; i >= 0; i-- {
		s := f.sentiment[i]
		if s.Symbol == symbol && !s.WindowEnd.Before(since) {
			return s, nil
		}
	}
	return nil, nil
}

func (f *fakeMarketStore) LatestOptionsSummary(_ context.Context, _ string) (*models.OptionsSummary, error) {
	return nil, nil
}

func (f *fakeMarketStore) LatestInstitutionalFlow(_ context.Context, _ string) (*models.InstitutionalFlow, error) {
	return nil, nil
}

func (f *fakeMarketStore) Health(_ context.Context) error { return nil }

type fakeMetrics struct {
	errors   []string
	messages int
}

func (f *fakeMetrics) RecordMessageSent(_, _ string)        { f.messages++ }
func (f *fakeMetrics) RecordError(kind string)              { f.errors = append(f.errors, kind) }
func (f *fakeMetrics) RecordLastPrice(_ string, _ float64)  {}
func (f *fakeMetrics) RecordLatency(_ string, _ float64)    {}
func (f *fakeMetrics) RecordProviderAttempt(_, _, _ string) {}
func (f *fakeMetrics) RecordCacheLookup(_, _ string)        {}
func (f *fakeMetrics) RecordRateDenial(_ string)            {}

var _ domrepo.MarketStore = (*fakeMarketStore)(nil)
var _ domrepo.Metrics = (*fakeMetrics)(nil)

func TestKafkaBarsHandlerStoresBar(t *testing.T) {
	store := newFakeMarketStore()
	h := NewKafkaBarsHandler("bars", store, &fakeMetrics{})

	msg := []byte(`{"symbol":"AAPL","t":1717000000,"o":186,"h":188,"l":185,"c":187.5,"v":1200}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if len(store.bars) != 1 {
		t.Fatalf("stored %d bars, want 1", len(store.bars))
	}
	b := store.bars[0]
	if b.Symbol != "AAPL" || b.Timestamp != 1717000000 || b.Close != 187.5 {
		t.Fatalf("unexpected bar: %+v", b)
	}
}

func TestKafkaBarsHandlerConvertsMilliseconds(t *testing.T) {
	store := newFakeMarketStore()
	h := NewKafkaBarsHandler("bars", store, &fakeMetrics{})

	msg := []byte(`{"symbol":"MSFT","t":1717000000000,"c":420.25,"v":10}`)
	if err := h.Handle(context.Background(), msg); err != nil {
		t.Fatalf("handle: %v", err)
	}
	if got := store.bars[0].Timestamp; got != 1717000000 {
		t.Fatalf("timestamp = %d, want seconds", got)
	}
}

func TestKafkaBarsHandlerRejectsGarbage(t *testing.T) {
	store := newFakeMarketStore()
	m := &fakeMetrics{}
	h := NewKafkaBarsHandler("bars", store, m)

	if err := h.Handle(context.Background(), []byte("not json")); err == nil {
		t.Fatal("expected unmarshal error")
	}
	if len(store.bars) != 0 {
		t.Fatal("garbage must not be stored")
	}
	if len(m.errors) == 0 {
		t.Fatal("expected an error metric")
	}
}
