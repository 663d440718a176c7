package usecase

import (
	"context"
	"time"

	"MarketPulse/internal/domain/models"
	"MarketPulse/internal/provider"
	"MarketPulse/internal/service/sentiment"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/symbol"
)

// SentimentUseCase serves the sentiment score for a symbol, reusing a stored
// row inside the lookback and computing a fresh one otherwise.
type SentimentUseCase struct {
	chain     *provider.Chain
	sentiment *sentiment.Service
	newsLimit int
	log       *logger.Logger
}

func NewSentimentUseCase(chain *provider.Chain, sent *sentiment.Service, log *logger.Logger) *SentimentUseCase {
	return &SentimentUseCase{chain: chain, sentiment: sent, newsLimit: 50, log: log}
}

// GetSentiment returns the score over the trailing hours window.
func (uc *SentimentUseCase) GetSentiment(ctx context.Context, raw string, hours int) (*models.SentimentScore, error) {
	sym, ok := symbol.NormalizeValid(raw)
	if !ok {
		return nil, ErrInvalidSymbol
	}
	window := time.Duration(hours) * time.Hour

	if s, err := uc.sentiment.Latest(ctx, sym, window); err == nil && s != nil {
		return s, nil
	} else if err != nil {
		uc.log.Warn("stored sentiment lookup failed", logger.String("symbol", sym), logger.Error(err))
	}

	items, err := uc.chain.FetchNews(ctx, sym, hours, uc.newsLimit)
	if err != nil {
		return nil, err
	}
	// Compute persists its own row; a failed insert still yields the score.
	s, _ := uc.sentiment.Compute(ctx, sym, items, window)
	return s, nil
}
