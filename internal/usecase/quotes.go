package usecase

import (
	"context"
	"encoding/json"
	"time"

	"MarketPulse/internal/provider"
	svccache "MarketPulse/internal/service/cache"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/symbol"

	"MarketPulse/internal/domain/models"
)

// QuoteUseCase serves point-in-time quotes through the freshness-gated cache
// with provider fallback on miss.
type QuoteUseCase struct {
	chain *provider.Chain
	cache *svccache.TTLCache
	ttl   time.Duration
	log   *logger.Logger
}

func NewQuoteUseCase(chain *provider.Chain, cache *svccache.TTLCache, ttl time.Duration, log *logger.Logger) *QuoteUseCase {
	return &QuoteUseCase{chain: chain, cache: cache, ttl: ttl, log: log}
}

// GetQuote returns the quote for raw and whether it was served from cache.
func (uc *QuoteUseCase) GetQuote(ctx context.Context, raw string) (*models.Quote, bool, error) {
	sym, ok := symbol.NormalizeValid(raw)
	if !ok {
		return nil, false, ErrInvalidSymbol
	}

	key := svccache.Fingerprint("quote", sym)
	if b, res := uc.cache.Get(ctx, "quote", key); res == svccache.Fresh {
		var q models.Quote
		if err := json.Unmarshal(b, &q); err == nil {
			return &q, true, nil
		}
		uc.log.Warn("cached quote decode failed", logger.String("symbol", sym))
	}

	q, err := uc.chain.FetchQuote(ctx, sym)
	if err != nil {
		return nil, false, err
	}

	if b, err := json.Marshal(q); err == nil {
		_ = uc.cache.Put(ctx, key, b, uc.ttl)
	}
	return q, false, nil
}
