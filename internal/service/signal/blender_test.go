package signal

import (
	"math"
	"testing"
)

func fp(v float64) *float64 { return &v }

func TestBaseProbabilityNeutral(t *testing.T) {
	b := NewBlender()
	p := b.BaseProbability("AAPL", Inputs{
		RSI14:  fp(50),
		SMA50:  fp(100),
		SMA200: fp(100),
	})
	if p.Value != 0.50 {
		t.Fatalf("neutral inputs should keep 0.50, got %v", p.Value)
	}
	want := []string{"RSI neutral", "Trend flat (SMA50=SMA200)", "Sentiment missing", "Momentum unavailable"}
	if len(p.Rationale) != len(want) {
		t.Fatalf("rationale %v", p.Rationale)
	}
	for i, w := range want {
		if p.Rationale[i] != w {
			t.Fatalf("rationale[%d] = %q, want %q", i, p.Rationale[i], w)
		}
	}
}

func TestBaseProbabilityOversoldUptrend(t *testing.T) {
	b := NewBlender()
	p := b.BaseProbability("AAPL", Inputs{
		RSI14:  fp(25),
		SMA50:  fp(110),
		SMA200: fp(100),
	})
	if math.Abs(p.Value-0.67) > 1e-9 {
		t.Fatalf("p = %v, want 0.67", p.Value)
	}
	if p.Rationale[0] != "RSI oversold (<30)" {
		t.Fatalf("rationale[0] = %q", p.Rationale[0])
	}
	if p.Rationale[1] != "Uptrend (SMA50>SMA200)" {
		t.Fatalf("rationale[1] = %q", p.Rationale[1])
	}
}

func TestBaseProbabilityOverboughtDowntrend(t *testing.T) {
	b := NewBlender()
	p := b.BaseProbability("AAPL", Inputs{
		RSI14:  fp(75),
		SMA50:  fp(90),
		SMA200: fp(100),
	})
	if math.Abs(p.Value-0.33) > 1e-9 {
		t.Fatalf("p = %v, want 0.33", p.Value)
	}
}

func TestSentimentTiltClamped(t *testing.T) {
	b := NewBlender()
	// Extreme sentiment hits the 0.08 cap.
	p := b.BaseProbability("AAPL", Inputs{Sentiment: fp(2.0)})
	if math.Abs(p.Value-0.58) > 1e-9 {
		t.Fatalf("p = %v, want 0.58 (0.50 + 0.08 cap)", p.Value)
	}
	n := b.BaseProbability("AAPL", Inputs{Sentiment: fp(-2.0)})
	if math.Abs(n.Value-0.42) > 1e-9 {
		t.Fatalf("p = %v, want 0.42", n.Value)
	}
}

func TestMomentumTilt(t *testing.T) {
	b := NewBlender()
	// +4% over 7 bars: delta = clamp(0.04*0.5, ±0.06) = +0.02.
	closes := []float64{100, 101, 102, 101, 103, 104, 104}
	p := b.BaseProbability("AAPL", Inputs{Closes7: closes})
	if math.Abs(p.Value-0.52) > 1e-9 {
		t.Fatalf("p = %v, want 0.52", p.Value)
	}

	// Huge momentum saturates at 0.06.
	steep := []float64{100, 120, 140, 160, 180, 200, 220}
	s := b.BaseProbability("AAPL", Inputs{Closes7: steep})
	if math.Abs(s.Value-0.56) > 1e-9 {
		t.Fatalf("p = %v, want 0.56", s.Value)
	}
}

func TestMomentumSkippedOnBadInput(t *testing.T) {
	b := NewBlender()
	if p := b.BaseProbability("AAPL", Inputs{Closes7: []float64{100}}); p.Value != 0.50 {
		t.Fatalf("single close must skip momentum, got %v", p.Value)
	}
	if p := b.BaseProbability("AAPL", Inputs{Closes7: []float64{0, 100}}); p.Value != 0.50 {
		t.Fatalf("zero divisor must skip momentum, got %v", p.Value)
	}
}

func TestProbabilityAlwaysInsideEnvelope(t *testing.T) {
	b := NewBlender()
	// Stack every positive tilt.
	up := b.BaseProbability("AAPL", Inputs{
		RSI14:     fp(10),
		SMA50:     fp(200),
		SMA200:    fp(100),
		Sentiment: fp(5),
		Closes7:   []float64{100, 150, 200, 250, 300, 350, 400},
	})
	if up.Value < 0.05 || up.Value > 0.95 {
		t.Fatalf("p out of envelope: %v", up.Value)
	}
	blended := b.Blend(up.Value, fp(1), fp(1))
	if blended > 0.95 {
		t.Fatalf("blended out of envelope: %v", blended)
	}

	down := b.BaseProbability("AAPL", Inputs{
		RSI14:     fp(90),
		SMA50:     fp(50),
		SMA200:    fp(100),
		Sentiment: fp(-5),
		Closes7:   []float64{400, 350, 300, 250, 200, 150, 100},
	})
	if down.Value < 0.05 {
		t.Fatalf("p below envelope: %v", down.Value)
	}
	if b.Blend(down.Value, fp(-1), fp(-1)) < 0.05 {
		t.Fatalf("blended below envelope")
	}
}

func TestBlendTiltWeights(t *testing.T) {
	b := NewBlender()
	got := b.Blend(0.50, fp(1), fp(-1))
	if math.Abs(got-0.50) > 1e-9 {
		t.Fatalf("opposing unit tilts should cancel, got %v", got)
	}
	if got := b.Blend(0.50, fp(0.5), nil); math.Abs(got-0.525) > 1e-9 {
		t.Fatalf("got %v, want 0.525", got)
	}
}

func TestVolatilityLabel(t *testing.T) {
	b := NewBlender()
	if got := b.VolatilityLabel(fp(1.2), fp(1.0)); got != "high" {
		t.Fatalf("got %q", got)
	}
	if got := b.VolatilityLabel(fp(0.8), fp(1.0)); got != "low" {
		t.Fatalf("got %q", got)
	}
	if got := b.VolatilityLabel(fp(1.0), fp(1.0)); got != "normal" {
		t.Fatalf("got %q", got)
	}
	if got := b.VolatilityLabel(nil, fp(1.0)); got != "" {
		t.Fatalf("missing atr must yield empty label, got %q", got)
	}
}

func TestAction(t *testing.T) {
	b := NewBlender()
	if got := b.Action(0.65, fp(110), fp(100), "normal"); got != "consider_accumulating" {
		t.Fatalf("got %q", got)
	}
	// High probability without a bullish trend is not an accumulate.
	if got := b.Action(0.65, fp(90), fp(100), "normal"); got != "hold" {
		t.Fatalf("got %q", got)
	}
	if got := b.Action(0.40, fp(110), fp(100), "normal"); got != "watchlist_caution" {
		t.Fatalf("got %q", got)
	}
	if got := b.Action(0.55, fp(110), fp(100), "high"); got != "watchlist_caution" {
		t.Fatalf("high volatility should force caution, got %q", got)
	}
	if got := b.Action(0.55, fp(110), fp(100), "normal"); got != "hold" {
		t.Fatalf("got %q", got)
	}
}
