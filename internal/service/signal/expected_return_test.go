package signal

import (
	"errors"
	"math"
	"testing"
)

func TestExpectedReturnInsufficientData(t *testing.T) {
	closes := []float64{100, 101, 102, 103, 104, 105}
	if _, err := ExpectedReturn("AAPL", closes, 7); !errors.Is(err, ErrInsufficientData) {
		t.Fatalf("expected ErrInsufficientData, got %v", err)
	}
}

func TestExpectedReturnConstantSeries(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100
	}
	er, err := ExpectedReturn("AAPL", closes, 7)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(er.Expected) > 1e-12 {
		t.Fatalf("constant series must have zero expected return, got %v", er.Expected)
	}
	if er.Confidence != 1 {
		t.Fatalf("zero sigma must yield full confidence, got %v", er.Confidence)
	}
	if er.Observations != 29 {
		t.Fatalf("observations = %d", er.Observations)
	}
}

func TestExpectedReturnSteadyGrowth(t *testing.T) {
	closes := make([]float64, 40)
	px := 100.0
	for i := range closes {
		closes[i] = px
		px *= 1.01
	}
	er, err := ExpectedReturn("AAPL", closes, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// 1% daily growth over 10 days compounds to about 10.46%.
	want := math.Pow(1.01, 10) - 1
	if math.Abs(er.Expected-want) > 1e-6 {
		t.Fatalf("expected %v, got %v", want, er.Expected)
	}
	if !(er.Low68 <= er.Expected && er.Expected <= er.High68) {
		t.Fatalf("band does not bracket the point estimate")
	}
}

func TestExpectedReturnBandWidensWithHorizon(t *testing.T) {
	closes := make([]float64, 60)
	px := 100.0
	for i := range closes {
		if i%2 == 0 {
			px *= 1.02
		} else {
			px *= 0.99
		}
		closes[i] = px
	}
	short, err := ExpectedReturn("AAPL", closes, 2)
	if err != nil {
		t.Fatalf("short: %v", err)
	}
	long, err := ExpectedReturn("AAPL", closes, 20)
	if err != nil {
		t.Fatalf("long: %v", err)
	}
	if (long.High68 - long.Low68) <= (short.High68 - short.Low68) {
		t.Fatalf("band must widen with horizon")
	}
	if long.Confidence > short.Confidence {
		t.Fatalf("confidence must not grow with horizon")
	}
}

func TestExpectedReturnHorizonClamped(t *testing.T) {
	closes := make([]float64, 30)
	for i := range closes {
		closes[i] = 100 + float64(i)
	}
	er, err := ExpectedReturn("AAPL", closes, 500)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if er.HorizonDays != 30 {
		t.Fatalf("horizon = %d, want clamp to 30", er.HorizonDays)
	}
}

func TestClampBounds(t *testing.T) {
	if ClampHorizon(0) != 1 || ClampHorizon(31) != 30 {
		t.Fatalf("horizon clamp wrong")
	}
	if ClampLookback(5) != 20 || ClampLookback(1000) != 250 {
		t.Fatalf("lookback clamp wrong")
	}
}
