package models

import "time"

// Bar is a single OHLCV record as returned by an upstream provider.
// Immutable once produced; uniquely identified by (Symbol, Timestamp).
type Bar struct {
	Symbol    string  `json:"symbol"`
	Timestamp int64   `json:"t"` // unix seconds
	Open      float64 `json:"o"`
	High      float64 `json:"h"`
	Low       float64 `json:"l"`
	Close     float64 `json:"c"`
	Volume    float64 `json:"v"`
}

// Quote is a point-in-time price snapshot.
type Quote struct {
	Symbol    string    `json:"symbol"`
	Price     float64   `json:"price"`
	PrevClose float64   `json:"prev_close"`
	Change    float64   `json:"change"`
	ChangePct float64   `json:"change_pct"`
	Currency  string    `json:"currency,omitempty"`
	Provider  string    `json:"provider"`
	AsOf      time.Time `json:"as_of"`
}

// History is a bar series plus the provider that produced it.
type History struct {
	Symbol   string `json:"symbol"`
	Range    string `json:"range"`
	Interval string `json:"interval"`
	Provider string `json:"provider"`
	Bars     []Bar  `json:"bars"`
}

// NewsItem is one normalized headline.
type NewsItem struct {
	Title       string    `json:"title"`
	URL         string    `json:"url"`
	Source      string    `json:"source"`
	PublishedAt time.Time `json:"published_at"`
	Provider    string    `json:"provider"`
	// Score is a provider-supplied sentiment score when the upstream has one.
	Score *float64 `json:"score,omitempty"`
}
