package models

import "time"

// Contribution is one weak signal's effect on the base probability.
// Request-scoped; never persisted.
type Contribution struct {
	Name      string  `json:"name"`
	Delta     float64 `json:"delta"`
	Rationale string  `json:"rationale"`
}

// Probability is the output of the base probability model.
type Probability struct {
	Symbol        string         `json:"symbol"`
	Value         float64        `json:"probability"` // in [0.05, 0.95]
	Contributions []Contribution `json:"contributions"`
	Rationale     []string       `json:"rationale"`
}

// Insight is the full blended view served to clients.
type Insight struct {
	Symbol       string          `json:"symbol"`
	Probability  float64         `json:"probability"`
	Blended      float64         `json:"blended_probability"`
	Rationale    []string        `json:"rationale"`
	Volatility   string          `json:"volatility,omitempty"` // high, normal, low
	Action       string          `json:"action"`               // consider_accumulating, watchlist_caution, hold
	Expected     *ExpectedReturn `json:"expected_return,omitempty"`
	Sentiment    *SentimentScore `json:"sentiment,omitempty"`
	ComputedAt   time.Time       `json:"computed_at"`
	HorizonDays  int             `json:"horizon_days"`
	OptionsTilt  *float64        `json:"options_tilt,omitempty"`
	InstFlowTilt *float64        `json:"institutional_tilt,omitempty"`
}

// ExpectedReturn is the statistics-only horizon estimate from daily closes.
type ExpectedReturn struct {
	Symbol       string  `json:"symbol"`
	HorizonDays  int     `json:"horizon_days"`
	Expected     float64 `json:"expected_return"`
	Low68        float64 `json:"low_68"`
	High68       float64 `json:"high_68"`
	Confidence   float64 `json:"confidence"` // in [0, 1]
	Observations int     `json:"observations"`
}

// CompareResult is the per-symbol fan-out for comparison requests. Failed
// symbols land in Errors and never abort siblings.
type CompareResult struct {
	Insights map[string]*Insight `json:"insights"`
	Errors   map[string]string   `json:"errors,omitempty"`
}
