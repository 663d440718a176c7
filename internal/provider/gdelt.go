package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
)

// GDELT is the keyless last-resort news provider. Its recall is broad, so
// results are filtered post-hoc to the trusted domain set.
type GDELT struct {
	client *xhttp.Client
}

func NewGDELT(client *xhttp.Client) *GDELT {
	return &GDELT{client: client}
}

func (g *GDELT) Name() string { return "gdelt" }

type gdeltResponse struct {
	Articles []struct {
		Title    string `json:"title"`
		URL      string `json:"url"`
		Domain   string `json:"domain"`
		SeenDate string `json:"seendate"` // 20240102T150405Z
	} `json:"articles"`
}

func (g *GDELT) FetchNews(ctx context.Context, symbol string, hours, limit int) ([]models.NewsItem, error) {
	resp, err := g.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    "https://api.gdeltproject.org/api/v2/doc/doc",
		QueryParams: map[string][]string{
			"query":      {fmt.Sprintf("%q stock", symbol)},
			"mode":       {"artlist"},
			"format":     {"json"},
			"timespan":   {fmt.Sprintf("%dh", hours)},
			"maxrecords": {strconv.Itoa(limit * 3)},
			"sort":       {"datedesc"},
		},
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
	var gr gdeltResponse
	if err := json.Unmarshal(body, &gr); err != nil {
		return nil, &ParseError{Err: err}
	}

	items := make([]models.NewsItem, 0, limit)
	for _, a := range gr.Articles {
		if !trustedDomain(a.Domain) {
			continue
		}
		item := models.NewsItem{
			Title:    a.Title,
			URL:      a.URL,
			Source:   a.Domain,
			Provider: g.Name(),
		}
		if t, err := time.Parse("20060102T150405Z", a.SeenDate); err == nil {
			item.PublishedAt = t.UTC()
		}
		items = append(items, item)
		if len(items) >= limit {
			break
		}
	}
	if len(items) == 0 {
		return nil, ErrEmptyResult
	}
	return items, nil
}

func trustedDomain(domain string) bool {
	d := strings.ToLower(domain)
	for _, t := range TrustedDomains {
		if d == t || strings.HasSuffix(d, "."+t) {
			return true
		}
	}
	return false
}
