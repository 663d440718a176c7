package usecase

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/provider"
	svccache "MarketPulse/internal/service/cache"
	"MarketPulse/internal/service/sentiment"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/symbol"
)

// NewsUseCase serves deduplicated headlines through the cache. Every fresh
// fetch is archived and scored so the insight path has a sentiment row to
// read without refetching.
type NewsUseCase struct {
	chain     *provider.Chain
	cache     *svccache.TTLCache
	store     domrepo.MarketStore
	sentiment *sentiment.Service
	ttl       time.Duration
	log       *logger.Logger
}

func NewNewsUseCase(
	chain *provider.Chain,
	cache *svccache.TTLCache,
	store domrepo.MarketStore,
	sent *sentiment.Service,
	ttl time.Duration,
	log *logger.Logger,
) *NewsUseCase {
	return &NewsUseCase{
		chain:     chain,
		cache:     cache,
		store:     store,
		sentiment: sent,
		ttl:       ttl,
		log:       log,
	}
}

// GetNews returns headlines for the request and whether they came from cache.
func (uc *NewsUseCase) GetNews(ctx context.Context, req models.NewsRequest) ([]models.NewsItem, bool, error) {
	sym, ok := symbol.NormalizeValid(req.Symbol)
	if !ok {
		return nil, false, ErrInvalidSymbol
	}

	key := svccache.Fingerprint("news", sym, strconv.Itoa(req.Hours), strconv.Itoa(req.Limit))
	if b, res := uc.cache.Get(ctx, "news", key); res == svccache.Fresh {
		var items []models.NewsItem
		if err := json.Unmarshal(b, &items); err == nil {
			return items, true, nil
		}
		uc.log.Warn("cached news decode failed", logger.String("symbol", sym))
	}

	items, err := uc.chain.FetchNews(ctx, sym, req.Hours, req.Limit)
	if err != nil {
		return nil, false, err
	}

	uc.archive(ctx, sym, items, time.Duration(req.Hours)*time.Hour)

	if b, err := json.Marshal(items); err == nil {
		_ = uc.cache.Put(ctx, key, b, uc.ttl)
	}
	return items, false, nil
}

// archive persists the headline set and records one sentiment row for it.
// Both writes are best-effort.
func (uc *NewsUseCase) archive(ctx context.Context, sym string, items []models.NewsItem, window time.Duration) {
	if uc.store != nil && len(items) > 0 {
		ptrs := make([]*models.NewsItem, 0, len(items))
		for i := range items {
			ptrs = append(ptrs, &items[i])
		}
		if err := uc.store.StoreNews(ctx, sym, ptrs); err != nil {
			uc.log.Warn("news archive failed",
				logger.String("symbol", sym),
				logger.Error(err),
			)
		}
	}
	if uc.sentiment != nil {
		if _, err := uc.sentiment.Compute(ctx, sym, items, window); err != nil {
			uc.log.Warn("sentiment compute failed",
				logger.String("symbol", sym),
				logger.Error(err),
			)
		}
	}
}
