package signal

import (
	"errors"
	"math"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/util"
)

// ErrInsufficientData marks a computation that lacks enough history for a
// meaningful estimate. It is an explicit "unknown" result, not a failure.
var ErrInsufficientData = errors.New("insufficient data")

const (
	minReturnObservations = 10
	minHorizonDays        = 1
	maxHorizonDays        = 30
	minLookback           = 20
	maxLookback           = 250
	confidenceSigmaScale  = 0.20
)

// ClampHorizon bounds a requested horizon into the supported range.
func ClampHorizon(days int) int {
	return util.ClampInt(days, minHorizonDays, maxHorizonDays)
}

// ClampLookback bounds a requested lookback into the supported range.
func ClampLookback(days int) int {
	return util.ClampInt(days, minLookback, maxLookback)
}

// ExpectedReturn is the statistics-only path: log-returns over the given
// daily closes (ascending), projected over the horizon with a 68% band.
// Requires at least 10 usable return observations.
func ExpectedReturn(symbol string, closes []float64, horizonDays int) (*models.ExpectedReturn, error) {
	horizonDays = ClampHorizon(horizonDays)

	returns := make([]float64, 0, len(closes))
	for i := 1; i < len(closes); i++ {
		if closes[i-1] <= 0 || closes[i] <= 0 {
			continue
		}
		returns = append(returns, math.Log(closes[i]/closes[i-1]))
	}
	if len(returns) < minReturnObservations {
		return nil, ErrInsufficientData
	}

	mean := 0.0
	for _, r := range returns {
		mean += r
	}
	mean /= float64(len(returns))

	// Sample standard deviation.
	ss := 0.0
	for _, r := range returns {
		d := r - mean
		ss += d * d
	}
	sigma := math.Sqrt(ss / float64(len(returns)-1))

	h := float64(horizonDays)
	expectedLog := h * mean
	band := math.Sqrt(h) * sigma

	return &models.ExpectedReturn{
		Symbol:       symbol,
		HorizonDays:  horizonDays,
		Expected:     math.Exp(expectedLog) - 1,
		Low68:        math.Exp(expectedLog-band) - 1,
		High68:       math.Exp(expectedLog+band) - 1,
		Confidence:   util.ClampFloat(1-band/confidenceSigmaScale, 0, 1),
		Observations: len(returns),
	}, nil
}
