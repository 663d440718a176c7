package usecase

import (
	"context"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	"MarketPulse/internal/provider"
	"MarketPulse/internal/service/indicator"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/symbol"
)

// RecomputeSummary reports what a recompute run produced.
type RecomputeSummary struct {
	Symbol   string `json:"symbol"`
	Range    string `json:"range"`
	Provider string `json:"provider"`
	Bars     int    `json:"bars"`
	Rows     int    `json:"rows"`
	From     string `json:"from,omitempty"`
	To       string `json:"to,omitempty"`
}

// AggregatesUseCase rebuilds the derived daily rows for a symbol from its
// bar history. Recompute is idempotent; rerunning over the same bars
// rewrites identical rows.
type AggregatesUseCase struct {
	chain  *provider.Chain
	engine *indicator.Engine
	store  domrepo.MarketStore
	log    *logger.Logger
}

func NewAggregatesUseCase(chain *provider.Chain, engine *indicator.Engine, store domrepo.MarketStore, log *logger.Logger) *AggregatesUseCase {
	return &AggregatesUseCase{chain: chain, engine: engine, store: store, log: log}
}

// Recompute fetches daily bars over rng, derives the aggregate rows, and
// upserts them.
func (uc *AggregatesUseCase) Recompute(ctx context.Context, rawSymbol, rng string) (*RecomputeSummary, error) {
	sym, ok := symbol.NormalizeValid(rawSymbol)
	if !ok {
		return nil, ErrInvalidSymbol
	}

	h, err := uc.chain.FetchHistory(ctx, sym, rng, "1d")
	if err != nil {
		return nil, err
	}

	rows := uc.engine.Recompute(h.Bars)
	for _, r := range rows {
		r.Symbol = sym
	}
	if err := uc.store.UpsertDailyAggregates(ctx, rows); err != nil {
		return nil, err
	}

	summary := &RecomputeSummary{
		Symbol:   sym,
		Range:    rng,
		Provider: h.Provider,
		Bars:     len(h.Bars),
		Rows:     len(rows),
	}
	if len(rows) > 0 {
		summary.From = rows[0].Date
		summary.To = rows[len(rows)-1].Date
	}
	uc.log.Info("daily aggregates recomputed",
		logger.String("symbol", sym),
		logger.String("range", rng),
		logger.Int("rows", len(rows)),
	)
	return summary, nil
}

// Latest returns up to limit aggregate rows ascending by date, recomputing
// from a default one-year window when the store has none.
func (uc *AggregatesUseCase) Latest(ctx context.Context, rawSymbol string, limit int) ([]*models.DailyAggregate, error) {
	sym, ok := symbol.NormalizeValid(rawSymbol)
	if !ok {
		return nil, ErrInvalidSymbol
	}

	rows, err := uc.store.QueryDailyAggregates(ctx, sym, limit)
	if err != nil {
		return nil, err
	}
	if len(rows) > 0 {
		return rows, nil
	}

	if _, err := uc.Recompute(ctx, sym, "1y"); err != nil {
		return nil, err
	}
	rows, err = uc.store.QueryDailyAggregates(ctx, sym, limit)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, ErrNoData
	}
	return rows, nil
}
