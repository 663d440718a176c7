package provider

import (
	"errors"
	"testing"
)

func TestParseYahooChart(t *testing.T) {
	body := []byte(`{"chart":{"result":[{"timestamp":[1700000000,1700086400],
		"indicators":{"quote":[{"open":[10,11],"high":[12,13],"low":[9,10],
		"close":[11,12],"volume":[100,200]}]}}],"error":null}}`)
	bars, err := parseYahooChart("AAPL", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 2 {
		t.Fatalf("len = %d", len(bars))
	}
	if bars[1].Close != 12 || bars[1].Volume != 200 {
		t.Fatalf("unexpected bar %+v", bars[1])
	}
}

func TestParseYahooChartSkipsZeroCloses(t *testing.T) {
	body := []byte(`{"chart":{"result":[{"timestamp":[1,2],
		"indicators":{"quote":[{"open":[10,11],"high":[12,13],"low":[9,10],
		"close":[0,12],"volume":[100,200]}]}}],"error":null}}`)
	bars, err := parseYahooChart("AAPL", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(bars) != 1 || bars[0].Timestamp != 2 {
		t.Fatalf("unexpected bars %+v", bars)
	}
}

func TestParseYahooChartEmpty(t *testing.T) {
	body := []byte(`{"chart":{"result":[],"error":null}}`)
	if _, err := parseYahooChart("AAPL", body); !errors.Is(err, ErrEmptyResult) {
		t.Fatalf("expected ErrEmptyResult, got %v", err)
	}
}

func TestParseYahooChartInvalidJSON(t *testing.T) {
	var pe *ParseError
	_, err := parseYahooChart("AAPL", []byte("<html>rate limited</html>"))
	if !errors.As(err, &pe) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestParseYahooQuote(t *testing.T) {
	body := []byte(`{"quoteResponse":{"result":[{"symbol":"AAPL",
		"regularMarketPrice":181.5,"regularMarketPreviousClose":180.0,
		"currency":"USD","regularMarketTime":1700000000}]}}`)
	q, err := parseYahooQuote("AAPL", body)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Price != 181.5 || q.PrevClose != 180.0 {
		t.Fatalf("unexpected quote %+v", q)
	}
	if q.Change < 1.49 || q.Change > 1.51 {
		t.Fatalf("unexpected change %v", q.Change)
	}
}

func TestTrustedDomain(t *testing.T) {
	if !trustedDomain("reuters.com") || !trustedDomain("www.reuters.com") {
		t.Fatalf("expected reuters trusted")
	}
	if trustedDomain("definitelynotreuters.com") || trustedDomain("blog.example.com") {
		t.Fatalf("expected untrusted")
	}
}
