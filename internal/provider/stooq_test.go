package provider

import (
	"errors"
	"testing"
)

func TestParseStooqQuoteSingleLine(t *testing.T) {
	body := []byte("Symbol,Date,Time,Open,High,Low,Close,Volume\nAAPL.US,2024-10-10,22:00:00,180.1,182.5,179.8,181.2,51234567\n")
	q, err := parseStooqQuote("AAPL", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Symbol != "AAPL" {
		t.Fatalf("symbol = %q", q.Symbol)
	}
	if q.Price != 181.2 {
		t.Fatalf("price = %v", q.Price)
	}
}

func TestParseStooqQuoteNoData(t *testing.T) {
	body := []byte("Symbol,Date,Time,Open,High,Low,Close,Volume\nFOO.US,N/D,N/D,N/D,N/D,N/D,N/D,N/D\n")
	if _, err := parseStooqQuote("FOO", body); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestParseStooqHistoryMultiLine(t *testing.T) {
	body := []byte("Date,Open,High,Low,Close,Volume\n2024-10-09,179,181,178,180,1000\n2024-10-10,180,183,180,182,1100\n")
	bars, err := parseStooqHistory("AAPL", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("len = %d", len(bars))
	}
	if bars[0].Close != 180 || bars[1].Close != 182 {
		t.Fatalf("unexpected closes %v %v", bars[0].Close, bars[1].Close)
	}
	if bars[0].Timestamp >= bars[1].Timestamp {
		t.Fatalf("expected ascending timestamps")
	}
}

func TestSymbolVariants(t *testing.T) {
	got := symbolVariants("AAPL")
	if len(got) != 2 || got[0] != "aapl" || got[1] != "aapl.us" {
		t.Fatalf("unexpected variants %v", got)
	}
}
