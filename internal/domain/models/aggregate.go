package models

import "time"

// DailyAggregate is one derived daily row for a symbol. Keyed by
// (Symbol, Date) with upsert semantics; recomputable from the Bar series at
// any time. Indicator fields are nil until enough preceding daily closes
// exist (14 for RSI/ATR, 50 and 200 for the moving averages).
type DailyAggregate struct {
	Symbol     string   `json:"symbol"`
	Date       string   `json:"date"` // YYYY-MM-DD, UTC calendar date
	High       float64  `json:"high"`
	Low        float64  `json:"low"`
	Close      float64  `json:"close"`
	Volume     float64  `json:"volume"`
	RSI14      *float64 `json:"rsi14"`
	SMA50      *float64 `json:"sma50"`
	SMA200     *float64 `json:"sma200"`
	ATR14      *float64 `json:"atr14"`
	MACD       *float64 `json:"macd"`        // reserved, never computed here
	MACDSignal *float64 `json:"macd_signal"` // reserved, never computed here
}

// SentimentScore is one append-only sentiment computation for a symbol.
// Consumers take the most recent row whose window overlaps their lookback.
type SentimentScore struct {
	Symbol      string    `json:"symbol"`
	WindowStart time.Time `json:"window_start"`
	WindowEnd   time.Time `json:"window_end"`
	Score       float64   `json:"score"`
	NArticles   int       `json:"n_articles"`
}

// OptionsSummary carries the options-market tilt input for the blend.
type OptionsSummary struct {
	Symbol       string    `json:"symbol"`
	AsOf         time.Time `json:"as_of"`
	PutCallRatio float64   `json:"put_call_ratio"`
	Tilt         float64   `json:"tilt"` // in [-1, 1]
}

// InstitutionalFlow carries the institutional-flow tilt input for the blend.
type InstitutionalFlow struct {
	Symbol     string    `json:"symbol"`
	AsOf       time.Time `json:"as_of"`
	NetFlowUSD float64   `json:"net_flow_usd"`
	Tilt       float64   `json:"tilt"` // in [-1, 1]
}
