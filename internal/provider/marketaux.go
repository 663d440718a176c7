package provider

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
)

// TrustedDomains is the fixed allowlist applied to broad-recall providers and
// offered as a filter to providers that support one.
var TrustedDomains = []string{
	"reuters.com",
	"apnews.com",
	"wsj.com",
	"ft.com",
	"cnbc.com",
	"marketwatch.com",
	"investors.com",
}

// Marketaux is the primary news provider. It is key-gated and accepts a
// domain filter; some plans reject the filter, in which case the request is
// retried exactly once without it.
type Marketaux struct {
	client *xhttp.Client
	apiKey string
}

func NewMarketaux(client *xhttp.Client, apiKey string) *Marketaux {
	return &Marketaux{client: client, apiKey: apiKey}
}

func (m *Marketaux) Name() string { return "marketaux" }

type marketauxResponse struct {
	Data []struct {
		Title       string `json:"title"`
		URL         string `json:"url"`
		Source      string `json:"source"`
		PublishedAt string `json:"published_at"`
		Entities    []struct {
			SentimentScore *float64 `json:"sentiment_score"`
		} `json:"entities"`
	} `json:"data"`
}

func (m *Marketaux) FetchNews(ctx context.Context, symbol string, hours, limit int) ([]models.NewsItem, error) {
	if m.apiKey == "" {
		return nil, ErrNoKey
	}

	items, err := m.fetchOnce(ctx, symbol, hours, limit, true)
	if err != nil {
		var he *HTTPError
		// A plan that rejects the domain filter answers with a client error;
		// retry once unfiltered.
		if errors.As(err, &he) && he.Status == 422 {
			return m.fetchOnce(ctx, symbol, hours, limit, false)
		}
		return nil, err
	}
	return items, nil
}

func (m *Marketaux) fetchOnce(ctx context.Context, symbol string, hours, limit int, withFilter bool) ([]models.NewsItem, error) {
	publishedAfter := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	params := map[string][]string{
		"symbols":         {symbol},
		"filter_entities": {"true"},
		"language":        {"en"},
		"limit":           {strconv.Itoa(limit)},
		"published_after": {publishedAfter.Format("2006-01-02T15:04")},
		"api_token":       {m.apiKey},
	}
	if withFilter {
		params["domains"] = []string{strings.Join(TrustedDomains, ",")}
	}

	resp, err := m.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         "https://api.marketaux.com/v1/news/all",
		QueryParams: params,
	})
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ParseError{Err: err}
	}
	var mr marketauxResponse
	if err := json.Unmarshal(body, &mr); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(mr.Data) == 0 {
		return nil, ErrEmptyResult
	}

	items := make([]models.NewsItem, 0, len(mr.Data))
	for _, d := range mr.Data {
		item := models.NewsItem{
			Title:    d.Title,
			URL:      d.URL,
			Source:   d.Source,
			Provider: m.Name(),
		}
		if t, err := time.Parse(time.RFC3339, d.PublishedAt); err == nil {
			item.PublishedAt = t.UTC()
		}
		for _, e := range d.Entities {
			if e.SentimentScore != nil {
				score := *e.SentimentScore
				item.Score = &score
				break
			}
		}
		items = append(items, item)
	}
	return items, nil
}
