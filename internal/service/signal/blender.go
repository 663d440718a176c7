package signal

import (
	"fmt"

	"MarketPulse/internal/domain/models"
	"MarketPulse/pkg/util"
)

const (
	probFloor = 0.05
	probCeil  = 0.95

	rsiTilt       = 0.10
	trendTilt     = 0.07
	sentimentGain = 0.30
	sentimentCap  = 0.08
	momentumGain  = 0.50
	momentumCap   = 0.06
	extTiltGain   = 0.05
)

// Inputs carries everything the blend can draw on. Any field may be nil or
// short; missing inputs skip their tilt and leave a rationale line instead.
type Inputs struct {
	RSI14  *float64
	SMA50  *float64
	SMA200 *float64
	// Closes7 is the trailing 7 daily closes, ascending, newest last.
	Closes7   []float64
	Sentiment *float64
	// ATRNow and ATRAvg30 feed the volatility label only.
	ATRNow   *float64
	ATRAvg30 *float64
}

// Blender computes the bounded, explainable directional probability.
// It never fails on missing inputs; absence degrades to a neutral tilt with
// its own rationale line.
type Blender struct{}

func NewBlender() *Blender {
	return &Blender{}
}

// BaseProbability runs the base model: a 0.50 prior nudged by RSI, trend,
// sentiment, and momentum tilts, clamped into [0.05, 0.95]. Every branch
// appends an order-stable rationale string so a consumer can reconstruct
// exactly which signals fired.
func (b *Blender) BaseProbability(symbol string, in Inputs) models.Probability {
	p := 0.50
	var contributions []models.Contribution

	add := func(name string, delta float64, rationale string) {
		p += delta
		contributions = append(contributions, models.Contribution{
			Name:      name,
			Delta:     delta,
			Rationale: rationale,
		})
	}

	// 1. RSI tilt.
	switch {
	case in.RSI14 == nil:
		add("rsi", 0, "RSI missing")
	case *in.RSI14 < 30:
		add("rsi", rsiTilt, "RSI oversold (<30)")
	case *in.RSI14 > 70:
		add("rsi", -rsiTilt, "RSI overbought (>70)")
	default:
		add("rsi", 0, "RSI neutral")
	}

	// 2. Trend tilt.
	switch {
	case in.SMA50 == nil || in.SMA200 == nil:
		add("trend", 0, "Trend data missing")
	case *in.SMA50 > *in.SMA200:
		add("trend", trendTilt, "Uptrend (SMA50>SMA200)")
	case *in.SMA50 < *in.SMA200:
		add("trend", -trendTilt, "Downtrend (SMA50<SMA200)")
	default:
		add("trend", 0, "Trend flat (SMA50=SMA200)")
	}

	// 3. Sentiment tilt.
	if in.Sentiment == nil {
		add("sentiment", 0, "Sentiment missing")
	} else {
		delta := util.ClampFloat(*in.Sentiment*sentimentGain, -sentimentCap, sentimentCap)
		add("sentiment", delta, fmt.Sprintf("News sentiment %+.2f", *in.Sentiment))
	}

	// 4. Momentum tilt over the trailing 7 closes.
	if len(in.Closes7) < 2 || in.Closes7[0] == 0 {
		add("momentum", 0, "Momentum unavailable")
	} else {
		oldest := in.Closes7[0]
		newest := in.Closes7[len(in.Closes7)-1]
		pct7 := (newest - oldest) / oldest
		delta := util.ClampFloat(pct7*momentumGain, -momentumCap, momentumCap)
		add("momentum", delta, fmt.Sprintf("7-day momentum %+.1f%%", pct7*100))
	}

	p = util.ClampFloat(p, probFloor, probCeil)

	rationale := make([]string, 0, len(contributions))
	for _, c := range contributions {
		rationale = append(rationale, c.Rationale)
	}
	return models.Probability{
		Symbol:        symbol,
		Value:         p,
		Contributions: contributions,
		Rationale:     rationale,
	}
}

// Blend folds the optional options and institutional tilts into the base
// probability, re-clamped into the same envelope. Nil tilts contribute
// nothing.
func (b *Blender) Blend(base float64, optionsTilt, instTilt *float64) float64 {
	p := base
	if optionsTilt != nil {
		p += extTiltGain * util.ClampFloat(*optionsTilt, -1, 1)
	}
	if instTilt != nil {
		p += extTiltGain * util.ClampFloat(*instTilt, -1, 1)
	}
	return util.ClampFloat(p, probFloor, probCeil)
}

// VolatilityLabel classifies the current ATR against its 30-day average.
// Empty when either value is missing.
func (b *Blender) VolatilityLabel(atrNow, atrAvg30 *float64) string {
	if atrNow == nil || atrAvg30 == nil || *atrAvg30 == 0 {
		return ""
	}
	ratio := *atrNow / *atrAvg30
	switch {
	case ratio > 1.15:
		return "high"
	case ratio < 0.85:
		return "low"
	default:
		return "normal"
	}
}

// Action derives the presentation hint from the blended probability, trend
// direction, and volatility label. It is a convenience on top of the
// probability, not part of its contract.
func (b *Blender) Action(blended float64, sma50, sma200 *float64, volatility string) string {
	bullish := sma50 != nil && sma200 != nil && *sma50 > *sma200
	switch {
	case blended >= 0.60 && bullish:
		return "consider_accumulating"
	case blended <= 0.45 || volatility == "high":
		return "watchlist_caution"
	default:
		return "hold"
	}
}
