package models

// Requests for the market HTTP endpoints. Defined in domain for consistency
// and reuse across handlers.

type QuoteRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
}

type HistoryRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"required"`
	Range    string `query:"range" json:"range" default:"3mo" validate:"oneof=5d 1mo 3mo 6mo 1y 2y 5y"`
	Interval string `query:"interval" json:"interval" default:"1d" validate:"oneof=1d 1wk"`
}

type NewsRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Hours  int    `query:"hours" json:"hours" default:"48" validate:"gte=1,lte=336"`
	Limit  int    `query:"limit" json:"limit" default:"20" validate:"gte=1,lte=100"`
}

type RecomputeRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Range  string `query:"range" json:"range" default:"1y" validate:"oneof=3mo 6mo 1y 2y 5y"`
}

type InsightRequest struct {
	Symbol  string `query:"symbol" json:"symbol" validate:"required"`
	Horizon int    `query:"horizon" json:"horizon" default:"7" validate:"gte=1,lte=30"`
}

type SentimentRequest struct {
	Symbol string `query:"symbol" json:"symbol" validate:"required"`
	Hours  int    `query:"hours" json:"hours" default:"48" validate:"gte=1,lte=336"`
}

type CompareRequest struct {
	Symbols string `query:"symbols" json:"symbols" validate:"required"`
	Horizon int    `query:"horizon" json:"horizon" default:"7" validate:"gte=1,lte=30"`
}
