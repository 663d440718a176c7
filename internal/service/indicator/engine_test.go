package indicator

import (
	"reflect"
	"testing"
	"time"

	"MarketPulse/internal/domain/models"
)

func dayBars(symbol string, start time.Time, closes []float64) []models.Bar {
	bars := make([]models.Bar, 0, len(closes))
	for i, c := range closes {
		ts := start.AddDate(0, 0, i).Unix()
		bars = append(bars, models.Bar{
			Symbol:    symbol,
			Timestamp: ts,
			Open:      c - 0.5,
			High:      c + 1,
			Low:       c - 1,
			Close:     c,
			Volume:    1000,
		})
	}
	return bars
}

func TestRecomputeEmptyInput(t *testing.T) {
	e := New()
	if rows := e.Recompute(nil); len(rows) != 0 {
		t.Fatalf("expected zero rows, got %d", len(rows))
	}
}

func TestAggregateDailyGroupsByUTCDate(t *testing.T) {
	e := New()
	day := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	bars := []models.Bar{
		{Symbol: "AAPL", Timestamp: day.Add(14 * time.Hour).Unix(), High: 12, Low: 9, Close: 10, Volume: 100},
		{Symbol: "AAPL", Timestamp: day.Add(16 * time.Hour).Unix(), High: 15, Low: 11, Close: 14, Volume: 200},
		{Symbol: "AAPL", Timestamp: day.Add(20 * time.Hour).Unix(), High: 13, Low: 10, Close: 12, Volume: 300},
		{Symbol: "AAPL", Timestamp: day.AddDate(0, 0, 1).Add(15 * time.Hour).Unix(), High: 20, Low: 18, Close: 19, Volume: 50},
	}

	rows := e.AggregateDaily(bars)
	if len(rows) != 2 {
		t.Fatalf("expected 2 daily rows, got %d", len(rows))
	}

	first := rows[0]
	if first.Date != "2024-10-10" {
		t.Fatalf("date = %q", first.Date)
	}
	if first.High != 15 {
		t.Fatalf("high = %v, want max", first.High)
	}
	if first.Low != 9 {
		t.Fatalf("low = %v, want min", first.Low)
	}
	if first.Close != 12 {
		t.Fatalf("close = %v, want last bar's close", first.Close)
	}
	if first.Volume != 600 {
		t.Fatalf("volume = %v, want sum", first.Volume)
	}
}

func TestAggregateDailyZeroLowIgnored(t *testing.T) {
	e := New()
	day := time.Date(2024, 10, 10, 0, 0, 0, 0, time.UTC)
	bars := []models.Bar{
		{Symbol: "X", Timestamp: day.Add(1 * time.Hour).Unix(), High: 10, Low: 0, Close: 9},
		{Symbol: "X", Timestamp: day.Add(2 * time.Hour).Unix(), High: 11, Low: 8, Close: 10},
	}
	rows := e.AggregateDaily(bars)
	if rows[0].Low != 8 {
		t.Fatalf("low = %v, zero low must not initialize the minimum", rows[0].Low)
	}
}

func TestIndicatorNullability(t *testing.T) {
	e := New()
	start := time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)
	closes := make([]float64, 60)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	rows := e.Recompute(dayBars("AAPL", start, closes))

	if rows[13].RSI14 != nil {
		t.Fatalf("rsi14 at index 13 should be nil")
	}
	if rows[14].RSI14 == nil {
		t.Fatalf("rsi14 at index 14 should be set")
	}
	if rows[13].ATR14 != nil || rows[14].ATR14 == nil {
		t.Fatalf("atr14 nullability wrong")
	}
	if rows[48].SMA50 != nil {
		t.Fatalf("sma50 needs 50 closes")
	}
	if rows[49].SMA50 == nil {
		t.Fatalf("sma50 at index 49 should be set")
	}
	if rows[59].SMA200 != nil {
		t.Fatalf("sma200 with 60 days must stay nil")
	}
	for _, r := range rows {
		if r.MACD != nil || r.MACDSignal != nil {
			t.Fatalf("macd fields are reserved and must stay nil")
		}
	}
}

func TestRSIBoundsAndMonotonicUp(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 50 + float64(i)
	}
	v := RSI14(closes, 20)
	if v == nil {
		t.Fatalf("rsi nil")
	}
	// All gains, no losses.
	if *v != 100 {
		t.Fatalf("rsi = %v, want 100 for monotonic rise", *v)
	}

	mixed := []float64{10, 11, 10, 12, 11, 13, 12, 14, 13, 15, 14, 16, 15, 17, 16, 18}
	m := RSI14(mixed, 15)
	if m == nil || *m < 0 || *m > 100 {
		t.Fatalf("rsi out of bounds: %v", m)
	}
}

func TestATRNonNegative(t *testing.T) {
	n := 20
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		closes[i] = 100
		highs[i] = 101
		lows[i] = 99
	}
	v := ATR14(highs, lows, closes, 15)
	if v == nil || *v < 0 {
		t.Fatalf("atr = %v", v)
	}
	if *v != 2 {
		t.Fatalf("atr = %v, want 2 for constant 99..101 range", *v)
	}
}

func TestSMAWindowMean(t *testing.T) {
	closes := []float64{1, 2, 3, 4, 5}
	v := SMA(closes, 5, 4)
	if v == nil || *v != 3 {
		t.Fatalf("sma = %v, want 3", v)
	}
	if SMA(closes, 5, 3) != nil {
		t.Fatalf("sma should be nil below window")
	}
}

func TestRecomputeIdempotent(t *testing.T) {
	e := New()
	start := time.Date(2024, 1, 1, 16, 0, 0, 0, time.UTC)
	closes := make([]float64, 220)
	for i := range closes {
		closes[i] = 100 + float64(i%17)
	}
	bars := dayBars("AAPL", start, closes)

	a := e.Recompute(bars)
	b := e.Recompute(bars)
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("recompute is not idempotent")
	}
}

func TestUptrendScenario(t *testing.T) {
	// 260 consecutive trading days with closes rising 0.5% a day.
	e := New()
	start := time.Date(2023, 6, 1, 16, 0, 0, 0, time.UTC)
	closes := make([]float64, 260)
	px := 100.0
	for i := range closes {
		closes[i] = px
		px *= 1.005
	}
	rows := e.Recompute(dayBars("AAPL", start, closes))

	last := rows[len(rows)-1]
	if last.SMA50 == nil || last.SMA200 == nil {
		t.Fatalf("expected both moving averages after 260 days")
	}
	if !(*last.SMA50 > *last.SMA200) {
		t.Fatalf("uptrend must have sma50 > sma200 (%v vs %v)", *last.SMA50, *last.SMA200)
	}
	if last.RSI14 == nil || *last.RSI14 <= 50 {
		t.Fatalf("rsi should trend above 50 in a steady rise, got %v", last.RSI14)
	}
}
