package provider

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
)

// Stooq is the delimited-text fallback behind Yahoo. Its symbol spelling
// differs from the canonical form, so several variants are tried per attempt
// before giving up.
type Stooq struct {
	client  *xhttp.Client
	baseURL string
}

func NewStooq(client *xhttp.Client) *Stooq {
	return &Stooq{client: client, baseURL: "https://stooq.com"}
}

func (s *Stooq) Name() string { return "stooq" }

// symbolVariants returns the spellings to try, US-suffixed last.
func symbolVariants(symbol string) []string {
	lower := strings.ToLower(symbol)
	return []string{lower, lower + ".us"}
}

func (s *Stooq) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var lastErr error = ErrEmptyResult
	for _, variant := range symbolVariants(symbol) {
		body, err := s.fetch(ctx, s.baseURL+"/q/l/", map[string][]string{
			"s": {variant},
			"f": {"sd2t2ohlcv"},
			"h": {""},
			"e": {"csv"},
		})
		if err != nil {
			lastErr = err
			continue
		}
		q, err := parseStooqQuote(symbol, body)
		if err != nil {
			lastErr = err
			continue
		}
		return q, nil
	}
	return nil, lastErr
}

func (s *Stooq) FetchHistory(ctx context.Context, symbol, rng, interval string) ([]models.Bar, error) {
	ivl := "d"
	if interval == "1wk" {
		ivl = "w"
	}
	var lastErr error = ErrEmptyResult
	for _, variant := range symbolVariants(symbol) {
		body, err := s.fetch(ctx, s.baseURL+"/q/d/l/", map[string][]string{
			"s": {variant},
			"i": {ivl},
		})
		if err != nil {
			lastErr = err
			continue
		}
		bars, err := parseStooqHistory(symbol, body)
		if err != nil {
			lastErr = err
			continue
		}
		return limitBarsByRange(bars, rng), nil
	}
	return nil, lastErr
}

func (s *Stooq) fetch(ctx context.Context, u string, params map[string][]string) ([]byte, error) {
	resp, err := s.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         u,
		QueryParams: params,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode}
	}
	return io.ReadAll(resp.Body)
}

// parseStooqQuote reads the single-line quote format:
// Symbol,Date,Time,Open,High,Low,Close,Volume with an optional header row.
func parseStooqQuote(symbol string, body []byte) (*models.Quote, error) {
	lines := dataLines(body)
	if len(lines) == 0 {
		return nil, ErrEmptyResult
	}
	fields := strings.Split(lines[len(lines)-1], ",")
	if len(fields) < 8 {
		return nil, &ParseError{Err: fmt.Errorf("quote line has %d fields", len(fields))}
	}
	closePx, err := parseStooqFloat(fields[6])
	if err != nil {
		return nil, err
	}
	openPx, _ := parseStooqFloat(fields[3])

	asOf := time.Now().UTC()
	if t, err := time.Parse("2006-01-02 15:04:05", fields[1]+" "+fields[2]); err == nil {
		asOf = t.UTC()
	}

	// Stooq's line format carries no previous close; approximate the change
	// against the session open.
	change := closePx - openPx
	var changePct float64
	if openPx != 0 {
		changePct = change / openPx * 100
	}
	return &models.Quote{
		Symbol:    symbol,
		Price:     closePx,
		PrevClose: openPx,
		Change:    change,
		ChangePct: changePct,
		AsOf:      asOf,
	}, nil
}

// parseStooqHistory reads the multi-line format: Date,Open,High,Low,Close,Volume.
func parseStooqHistory(symbol string, body []byte) ([]models.Bar, error) {
	lines := dataLines(body)
	bars := make([]models.Bar, 0, len(lines))
	for _, line := range lines {
		fields := strings.Split(line, ",")
		if len(fields) < 6 {
			continue
		}
		day, err := time.Parse("2006-01-02", fields[0])
		if err != nil {
			continue
		}
		o, err1 := parseStooqFloat(fields[1])
		h, err2 := parseStooqFloat(fields[2])
		l, err3 := parseStooqFloat(fields[3])
		c, err4 := parseStooqFloat(fields[4])
		if err1 != nil || err2 != nil || err3 != nil || err4 != nil {
			continue
		}
		v, _ := parseStooqFloat(fields[5])
		bars = append(bars, models.Bar{
			Symbol:    symbol,
			Timestamp: day.UTC().Unix(),
			Open:      o,
			High:      h,
			Low:       l,
			Close:     c,
			Volume:    v,
		})
	}
	if len(bars) == 0 {
		return nil, ErrEmptyResult
	}
	return bars, nil
}

// dataLines drops blank lines, the header row, and stooq's "N/D" placeholder
// rows.
func dataLines(body []byte) []string {
	out := make([]string, 0, 8)
	for _, line := range strings.Split(strings.ReplaceAll(string(body), "\r\n", "\n"), "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if strings.HasPrefix(line, "Symbol,") || strings.HasPrefix(line, "Date,") {
			continue
		}
		if strings.Contains(line, "N/D") {
			continue
		}
		out = append(out, line)
	}
	return out
}

func parseStooqFloat(s string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil {
		return 0, &ParseError{Err: err}
	}
	return v, nil
}

// limitBarsByRange trims a full-depth stooq series to roughly the requested
// range, keeping the newest bars.
func limitBarsByRange(bars []models.Bar, rng string) []models.Bar {
	days := map[string]int{
		"5d":  7,
		"1mo": 31,
		"3mo": 93,
		"6mo": 186,
		"1y":  366,
		"2y":  732,
		"5y":  1830,
	}[rng]
	if days == 0 {
		return bars
	}
	cutoff := time.Now().UTC().AddDate(0, 0, -days).Unix()
	for i, b := range bars {
		if b.Timestamp >= cutoff {
			return bars[i:]
		}
	}
	return bars
}
