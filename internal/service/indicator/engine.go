package indicator

import (
	"math"
	"sort"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/util"
)

// Engine turns a time-ordered intraday bar series into daily aggregates and
// fills in the trailing-window indicators. Everything here is deterministic:
// re-running over the same bars yields identical output.
type Engine struct{}

func New() *Engine {
	return &Engine{}
}

// Recompute aggregates bars into daily rows and computes SMA50/SMA200,
// RSI14, and ATR14. Empty input yields zero rows, not an error. MACD fields
// are reserved and stay nil.
func (e *Engine) Recompute(bars []models.Bar) []*models.DailyAggregate {
	rows := e.AggregateDaily(bars)
	e.fillIndicators(rows)
	return rows
}

// AggregateDaily groups bars by the UTC calendar date of their timestamps.
// Within a day: high is the maximum, low the minimum over non-zero lows,
// close the chronologically last bar's close, volume the sum.
func (e *Engine) AggregateDaily(bars []models.Bar) []*models.DailyAggregate {
	if len(bars) == 0 {
		return nil
	}

	byDate := make(map[string]*models.DailyAggregate)
	lastTS := make(map[string]int64)
	for _, b := range bars {
		date := util.UTCDate(b.Timestamp)
		row, ok := byDate[date]
		if !ok {
			row = &models.DailyAggregate{Symbol: b.Symbol, Date: date}
			byDate[date] = row
		}
		if b.High > row.High {
			row.High = b.High
		}
		// The first non-zero low initializes the running minimum; zero lows
		// are treated as missing data, not as a price.
		if b.Low > 0 && (row.Low == 0 || b.Low < row.Low) {
			row.Low = b.Low
		}
		if b.Timestamp >= lastTS[date] {
			lastTS[date] = b.Timestamp
			row.Close = b.Close
		}
		row.Volume += b.Volume
	}

	rows := make([]*models.DailyAggregate, 0, len(byDate))
	for _, row := range byDate {
		rows = append(rows, row)
	}
	sort.Slice(rows, func(i, j int) bool { return rows[i].Date < rows[j].Date })
	return rows
}

func (e *Engine) fillIndicators(rows []*models.DailyAggregate) {
	closes := make([]float64, len(rows))
	highs := make([]float64, len(rows))
	lows := make([]float64, len(rows))
	for i, r := range rows {
		closes[i] = r.Close
		highs[i] = r.High
		lows[i] = r.Low
	}

	for i := range rows {
		rows[i].SMA50 = SMA(closes, 50, i)
		rows[i].SMA200 = SMA(closes, 200, i)
		rows[i].RSI14 = RSI14(closes, i)
		rows[i].ATR14 = ATR14(highs, lows, closes, i)
	}
}

// SMA returns the arithmetic mean of closes[i-window+1..i], or nil when
// fewer than window closes exist.
func SMA(closes []float64, window, i int) *float64 {
	if i+1 < window {
		return nil
	}
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		sum += closes[j]
	}
	v := sum / float64(window)
	return &v
}

// RSI14 computes the simple-average relative strength index over the
// trailing 14 close-to-close diffs. Nil when i < 14; 100 when no losses
// occurred in the window.
func RSI14(closes []float64, i int) *float64 {
	const window = 14
	if i < window {
		return nil
	}
	gains, losses := 0.0, 0.0
	for j := i - window + 1; j <= i; j++ {
		diff := closes[j] - closes[j-1]
		if diff > 0 {
			gains += diff
		} else {
			losses += -diff
		}
	}
	avgGain := gains / window
	avgLoss := losses / window
	if avgLoss == 0 {
		v := 100.0
		return &v
	}
	rs := avgGain / avgLoss
	v := 100 - 100/(1+rs)
	return &v
}

// ATR14 computes the mean true range over the trailing 14 daily bars. Nil
// when i < 14. The previous close falls back to the same day's close when no
// prior day exists.
func ATR14(highs, lows, closes []float64, i int) *float64 {
	const window = 14
	if i < window {
		return nil
	}
	sum := 0.0
	for j := i - window + 1; j <= i; j++ {
		prevClose := closes[j]
		if j > 0 {
			prevClose = closes[j-1]
		}
		tr := math.Max(highs[j]-lows[j],
			math.Max(math.Abs(highs[j]-prevClose), math.Abs(lows[j]-prevClose)))
		sum += tr
	}
	v := sum / window
	return &v
}
