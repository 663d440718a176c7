package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
)

// Yahoo serves both the history and quote chains. Two equivalent hosts are
// tried as micro-fallbacks before the attempt counts as failed.
type Yahoo struct {
	client *xhttp.Client
	hosts  []string
}

func NewYahoo(client *xhttp.Client) *Yahoo {
	return &Yahoo{
		client: client,
		hosts:  []string{"https://query1.finance.yahoo.com", "https://query2.finance.yahoo.com"},
	}
}

func (y *Yahoo) Name() string { return "yahoo" }

type yahooChartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string  `json:"symbol"`
			RegularMarketPrice         float64 `json:"regularMarketPrice"`
			RegularMarketPreviousClose float64 `json:"regularMarketPreviousClose"`
			Currency                   string  `json:"currency"`
			RegularMarketTime          int64   `json:"regularMarketTime"`
		} `json:"result"`
	} `json:"quoteResponse"`
}

func (y *Yahoo) FetchHistory(ctx context.Context, symbol, rng, interval string) ([]models.Bar, error) {
	var lastErr error
	for _, host := range y.hosts {
		u := fmt.Sprintf("%s/v8/finance/chart/%s", host, symbol)
		body, err := y.fetch(ctx, u, map[string][]string{
			"range":    {rng},
			"interval": {interval},
		})
		if err != nil {
			lastErr = err
			continue
		}
		bars, err := parseYahooChart(symbol, body)
		if err != nil {
			lastErr = err
			continue
		}
		return bars, nil
	}
	return nil, lastErr
}

func (y *Yahoo) FetchQuote(ctx context.Context, symbol string) (*models.Quote, error) {
	var lastErr error
	for _, host := range y.hosts {
		u := fmt.Sprintf("%s/v7/finance/quote", host)
		body, err := y.fetch(ctx, u, map[string][]string{"symbols": {symbol}})
		if err != nil {
			lastErr = err
			continue
		}
		q, err := parseYahooQuote(symbol, body)
		if err != nil {
			lastErr = err
			continue
		}
		return q, nil
	}
	return nil, lastErr
}

func (y *Yahoo) fetch(ctx context.Context, u string, params map[string][]string) ([]byte, error) {
	resp, err := y.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         u,
		QueryParams: params,
		Headers:     map[string]string{"User-Agent": "Mozilla/5.0 (compatible; marketpulse/1.0)"},
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

func parseYahooChart(symbol string, body []byte) ([]models.Bar, error) {
	var cr yahooChartResponse
	if err := json.Unmarshal(body, &cr); err != nil {
		return nil, &ParseError{Err: err}
	}
	if cr.Chart.Error != nil {
		return nil, &ParseError{Err: fmt.Errorf("chart error: %s", cr.Chart.Error.Code)}
	}
	if len(cr.Chart.Result) == 0 || len(cr.Chart.Result[0].Indicators.Quote) == 0 {
		return nil, ErrEmptyResult
	}

	res := cr.Chart.Result[0]
	q := res.Indicators.Quote[0]
	bars := make([]models.Bar, 0, len(res.Timestamp))
	for i, ts := range res.Timestamp {
		if i >= len(q.Close) || q.Close[i] == 0 {
			continue
		}
		bar := models.Bar{Symbol: symbol, Timestamp: ts, Close: q.Close[i]}
		if i < len(q.Open) {
			bar.Open = q.Open[i]
		}
		if i < len(q.High) {
			bar.High = q.High[i]
		}
		if i < len(q.Low) {
			bar.Low = q.Low[i]
		}
		if i < len(q.Volume) {
			bar.Volume = q.Volume[i]
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 {
		return nil, ErrEmptyResult
	}
	return bars, nil
}

func parseYahooQuote(symbol string, body []byte) (*models.Quote, error) {
	var qr yahooQuoteResponse
	if err := json.Unmarshal(body, &qr); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(qr.QuoteResponse.Result) == 0 {
		return nil, ErrEmptyResult
	}

	r := qr.QuoteResponse.Result[0]
	if r.RegularMarketPrice == 0 {
		return nil, ErrEmptyResult
	}
	asOf := time.Now().UTC()
	if r.RegularMarketTime > 0 {
		asOf = time.Unix(r.RegularMarketTime, 0).UTC()
	}
	change := r.RegularMarketPrice - r.RegularMarketPreviousClose
	var changePct float64
	if r.RegularMarketPreviousClose != 0 {
		changePct = change / r.RegularMarketPreviousClose * 100
	}
	return &models.Quote{
		Symbol:    symbol,
		Price:     r.RegularMarketPrice,
		PrevClose: r.RegularMarketPreviousClose,
		Change:    change,
		ChangePct: changePct,
		Currency:  r.Currency,
		AsOf:      asOf,
	}, nil
}
