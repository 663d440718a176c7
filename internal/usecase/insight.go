package usecase

import (
	"context"
	"errors"
	"time"

	"MarketPulse/internal/domain/models"
	domrepo "MarketPulse/internal/domain/repository"
	svcmetrics "MarketPulse/internal/service/metrics"
	"MarketPulse/internal/service/sentiment"
	"MarketPulse/internal/service/signal"
	"MarketPulse/pkg/logger"
	"MarketPulse/pkg/symbol"
)

const atrAverageWindow = 30

// InsightUseCase assembles the blended directional view for one symbol from
// stored aggregates, the latest sentiment row, and the optional tilt inputs.
type InsightUseCase struct {
	aggs      *AggregatesUseCase
	store     domrepo.MarketStore
	blender   *signal.Blender
	sentiment *sentiment.Service
	lookback  time.Duration
	log       *logger.Logger
	now       func() time.Time
}

func NewInsightUseCase(
	aggs *AggregatesUseCase,
	store domrepo.MarketStore,
	blender *signal.Blender,
	sent *sentiment.Service,
	lookback time.Duration,
	log *logger.Logger,
) *InsightUseCase {
	svcmetrics.Register()
	return &InsightUseCase{
		aggs:      aggs,
		store:     store,
		blender:   blender,
		sentiment: sent,
		lookback:  lookback,
		log:       log,
		now:       time.Now,
	}
}

// GetInsight computes the insight for raw over horizonDays. Missing signal
// inputs degrade to neutral tilts; only a missing aggregate series fails.
func (uc *InsightUseCase) GetInsight(ctx context.Context, raw string, horizonDays int) (*models.Insight, error) {
	start := uc.now()
	defer func() {
		svcmetrics.InsightLatency.WithLabelValues("insight").Observe(uc.now().Sub(start).Seconds())
	}()

	sym, ok := symbol.NormalizeValid(raw)
	if !ok {
		return nil, ErrInvalidSymbol
	}
	horizon := signal.ClampHorizon(horizonDays)

	rows, err := uc.aggs.Latest(ctx, sym, signal.ClampLookback(250))
	if err != nil {
		svcmetrics.InsightErrors.WithLabelValues("insight").Inc()
		return nil, err
	}

	in := uc.buildInputs(ctx, sym, rows)
	base := uc.blender.BaseProbability(sym, in)

	optTilt := uc.optionsTilt(ctx, sym)
	instTilt := uc.institutionalTilt(ctx, sym)
	blended := uc.blender.Blend(base.Value, optTilt, instTilt)

	volatility := uc.blender.VolatilityLabel(in.ATRNow, in.ATRAvg30)
	action := uc.blender.Action(blended, in.SMA50, in.SMA200, volatility)

	insight := &models.Insight{
		Symbol:       sym,
		Probability:  base.Value,
		Blended:      blended,
		Rationale:    base.Rationale,
		Volatility:   volatility,
		Action:       action,
		ComputedAt:   uc.now().UTC(),
		HorizonDays:  horizon,
		OptionsTilt:  optTilt,
		InstFlowTilt: instTilt,
	}

	closes := make([]float64, 0, len(rows))
	for _, r := range rows {
		closes = append(closes, r.Close)
	}
	exp, err := signal.ExpectedReturn(sym, closes, horizon)
	switch {
	case err == nil:
		insight.Expected = exp
	case errors.Is(err, signal.ErrInsufficientData):
		// served without the estimate
	default:
		return nil, err
	}

	if s, err := uc.sentiment.Latest(ctx, sym, uc.lookback); err == nil && s != nil {
		insight.Sentiment = s
	}
	return insight, nil
}

// buildInputs maps the aggregate tail onto the blend inputs. rows are
// ascending by date.
func (uc *InsightUseCase) buildInputs(ctx context.Context, sym string, rows []*models.DailyAggregate) signal.Inputs {
	var in signal.Inputs
	if len(rows) == 0 {
		return in
	}
	last := rows[len(rows)-1]
	in.RSI14 = last.RSI14
	in.SMA50 = last.SMA50
	in.SMA200 = last.SMA200
	in.ATRNow = last.ATR14
	in.ATRAvg30 = averageATR(rows, atrAverageWindow)

	start := len(rows) - 7
	if start < 0 {
		start = 0
	}
	for _, r := range rows[start:] {
		in.Closes7 = append(in.Closes7, r.Close)
	}

	if s, err := uc.sentiment.Latest(ctx, sym, uc.lookback); err == nil && s != nil {
		score := s.Score
		in.Sentiment = &score
	} else if err != nil {
		uc.log.Warn("sentiment lookup failed", logger.String("symbol", sym), logger.Error(err))
	}
	return in
}

func (uc *InsightUseCase) optionsTilt(ctx context.Context, sym string) *float64 {
	o, err := uc.store.LatestOptionsSummary(ctx, sym)
	if err != nil {
		uc.log.Warn("options summary lookup failed", logger.String("symbol", sym), logger.Error(err))
		return nil
	}
	if o == nil {
		return nil
	}
	t := o.Tilt
	return &t
}

func (uc *InsightUseCase) institutionalTilt(ctx context.Context, sym string) *float64 {
	f, err := uc.store.LatestInstitutionalFlow(ctx, sym)
	if err != nil {
		uc.log.Warn("institutional flow lookup failed", logger.String("symbol", sym), logger.Error(err))
		return nil
	}
	if f == nil {
		return nil
	}
	t := f.Tilt
	return &t
}

// averageATR is the mean ATR over the trailing window rows that have one.
// Nil when no row in the window carries an ATR.
func averageATR(rows []*models.DailyAggregate, window int) *float64 {
	start := len(rows) - window
	if start < 0 {
		start = 0
	}
	var sum float64
	var n int
	for _, r := range rows[start:] {
		if r.ATR14 != nil {
			sum += *r.ATR14
			n++
		}
	}
	if n == 0 {
		return nil
	}
	avg := sum / float64(n)
	return &avg
}
