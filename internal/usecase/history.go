package usecase

import (
	"context"
	"encoding/json"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/provider"
	svccache "MarketPulse/internal/service/cache"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/symbol"
)

// HistoryUseCase serves bar series through the cache, persisting fetched
// bars so the aggregate recompute can run offline from upstream.
type HistoryUseCase struct {
	chain     *provider.Chain
	cache     *svccache.TTLCache
	store     domrepo.MarketStore
	dailyTTL  time.Duration
	weeklyTTL time.Duration
	log       *logger.Logger
}

func NewHistoryUseCase(
	chain *provider.Chain,
	cache *svccache.TTLCache,
	store domrepo.MarketStore,
	dailyTTL, weeklyTTL time.Duration,
	log *logger.Logger,
) *HistoryUseCase {
	return &HistoryUseCase{
		chain:     chain,
		cache:     cache,
		store:     store,
		dailyTTL:  dailyTTL,
		weeklyTTL: weeklyTTL,
		log:       log,
	}
}

// GetHistory returns the bar series for the request and whether it came from
// cache. A persistence failure after a successful fetch is logged but never
// fails the request.
func (uc *HistoryUseCase) GetHistory(ctx context.Context, req models.HistoryRequest) (*models.History, bool, error) {
	sym, ok := symbol.NormalizeValid(req.Symbol)
	if !ok {
		return nil, false, ErrInvalidSymbol
	}

	key := svccache.Fingerprint("history", sym, req.Range, req.Interval)
	if b, res := uc.cache.Get(ctx, "history", key); res == svccache.Fresh {
		var h models.History
		if err := json.Unmarshal(b, &h); err == nil {
			return &h, true, nil
		}
		uc.log.Warn("cached history decode failed", logger.String("symbol", sym))
	}

	h, err := uc.chain.FetchHistory(ctx, sym, req.Range, req.Interval)
	if err != nil {
		return nil, false, err
	}

	uc.persistBars(ctx, h)

	ttl := uc.dailyTTL
	if req.Interval == "1wk" {
		ttl = uc.weeklyTTL
	}
	if b, err := json.Marshal(h); err == nil {
		_ = uc.cache.Put(ctx, key, b, ttl)
	}
	return h, false, nil
}

func (uc *HistoryUseCase) persistBars(ctx context.Context, h *models.History) {
	if uc.store == nil || len(h.Bars) == 0 {
		return
	}
	bars := make([]*models.Bar, 0, len(h.Bars))
	for i := range h.Bars {
		b := h.Bars[i]
		b.Symbol = h.Symbol
		bars = append(bars, &b)
	}
	if err := uc.store.StoreBars(ctx, bars); err != nil {
		uc.log.Warn("history persist failed",
			logger.String("symbol", h.Symbol),
			logger.Int("bars", len(bars)),
			logger.Error(err),
		)
	}
}
