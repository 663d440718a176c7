package usecase

import (
	"context"
	"strings"
	"sync"
	"time"

	"MarketPulse/internal/domain/models"
	svcmetrics "MarketPulse/internal/service/metrics"
)

const (
	compareTimeout    = 10 * time.Second
	compareMaxSymbols = 10
)

// CompareUseCase fans an insight computation out across symbols. Symbols
// fail independently: an error lands in the Errors map without aborting
// siblings.
type CompareUseCase struct {
	insight *InsightUseCase
	timeout time.Duration
}

func NewCompareUseCase(insight *InsightUseCase) *CompareUseCase {
	return &CompareUseCase{insight: insight, timeout: compareTimeout}
}

// Compare computes insights for the comma-separated symbol list.
func (uc *CompareUseCase) Compare(ctx context.Context, symbolList string, horizonDays int) (*models.CompareResult, error) {
	start := time.Now()
	defer func() {
		svcmetrics.InsightLatency.WithLabelValues("compare").Observe(time.Since(start).Seconds())
	}()

	symbols := splitSymbols(symbolList)
	if len(symbols) == 0 {
		return nil, ErrInvalidSymbol
	}
	if len(symbols) > compareMaxSymbols {
		symbols = symbols[:compareMaxSymbols]
	}

	ctx, cancel := context.WithTimeout(ctx, uc.timeout)
	defer cancel()

	res := &models.CompareResult{
		Insights: make(map[string]*models.Insight, len(symbols)),
		Errors:   map[string]string{},
	}

	type item struct {
		symbol  string
		insight *models.Insight
		err     error
	}
	ch := make(chan item, len(symbols))
	var wg sync.WaitGroup

	for _, sym := range symbols {
		wg.Add(1)
		go func(sym string) {
			defer wg.Done()
			ins, err := uc.insight.GetInsight(ctx, sym, horizonDays)
			ch <- item{sym, ins, err}
		}(sym)
	}
	go func() { wg.Wait(); close(ch) }()

	for it := range ch {
		if it.err != nil {
			res.Errors[it.symbol] = it.err.Error()
			continue
		}
		res.Insights[it.insight.Symbol] = it.insight
	}

	if len(res.Errors) == 0 {
		res.Errors = nil
	}
	return res, nil
}

func splitSymbols(list string) []string {
	parts := strings.Split(list, ",")
	out := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		if _, ok := seen[p]; ok {
			continue
		}
		seen[p] = struct{}{}
		out = append(out, p)
	}
	return out
}
