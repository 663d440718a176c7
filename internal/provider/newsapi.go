package provider

import (
	"context"
	"encoding/json"
	"io"
	"strconv"
	"time"

	"MarketPulse/internal/domain/models"
	xhttp "MarketPulse/pkg/http"
)

// NewsAPI is the second news provider, key-gated with its own schema.
type NewsAPI struct {
	client *xhttp.Client
	apiKey string
}

func NewNewsAPI(client *xhttp.Client, apiKey string) *NewsAPI {
	return &NewsAPI{client: client, apiKey: apiKey}
}

func (n *NewsAPI) Name() string { return "newsapi" }

type newsAPIResponse struct {
	Status   string `json:"status"`
	Articles []struct {
		Title  string `json:"title"`
		URL    string `json:"url"`
		Source struct {
			Name string `json:"name"`
		} `json:"source"`
		PublishedAt string `json:"publishedAt"`
	} `json:"articles"`
}

func (n *NewsAPI) FetchNews(ctx context.Context, symbol string, hours, limit int) ([]models.NewsItem, error) {
	if n.apiKey == "" {
		return nil, ErrNoKey
	}

	from := time.Now().UTC().Add(-time.Duration(hours) * time.Hour)
	resp, err := n.client.SendRequest(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    "https://newsapi.org/v2/everything",
		QueryParams: map[string][]string{
			"q":        {symbol},
			"from":     {from.Format(time.RFC3339)},
			"language": {"en"},
			"sortBy":   {"publishedAt"},
			"pageSize": {strconv.Itoa(limit)},
		},
		Headers: map[string]string{"X-Api-Key": n.apiKey},
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
	var nr newsAPIResponse
	if err := json.Unmarshal(body, &nr); err != nil {
		return nil, &ParseError{Err: err}
	}
	if len(nr.Articles) == 0 {
		return nil, ErrEmptyResult
	}

	items := make([]models.NewsItem, 0, len(nr.Articles))
	for _, a := range nr.Articles {
		item := models.NewsItem{
			Title:    a.Title,
			URL:      a.URL,
			Source:   a.Source.Name,
			Provider: n.Name(),
		}
		if t, err := time.Parse(time.RFC3339, a.PublishedAt); err == nil {
			item.PublishedAt = t.UTC()
		}
		items = append(items, item)
	}
	return items, nil
}
