package tuner

import (
	"testing"

	"wavescan/internal/wave"
	"wavescan/internal/wave/engine"
)

func swings(prices ...float64) []wave.SwingPoint {
	if len(prices) < 2 {
		return nil
	}
	first := wave.KindLow
	if prices[1] < prices[0] {
		first = wave.KindHigh
	}
	out := make([]wave.SwingPoint, len(prices))
	kind := first
	for i, p := range prices {
		out[i] = wave.SwingPoint{Index: i * 4, Price: p, Kind: kind}
		kind = kind.Opposite()
	}
	return out
}

func TestTune_EvaluatesFullGrid(t *testing.T) {
	e := engine.New()
	in := swings(100, 110, 105, 125, 115, 126)
	grid := Grid{
		SkipN:      []int{0, 1},
		MaxGap:     []int{1, 2},
		BeamWidths: []int{16, 64},
	}

	result, err := Tune(e, in, wave.DefaultOptions(), grid, engine.Env{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Evaluated != 8 {
		t.Fatalf("evaluated %d configurations, want 8", result.Evaluated)
	}
	if result.Patterns == 0 {
		t.Fatal("best configuration found no patterns on a clean impulse")
	}
	if result.BestConfidence <= 0 {
		t.Fatalf("best confidence = %f, want > 0", result.BestConfidence)
	}
}

func TestTune_TiePrefersCheaper(t *testing.T) {
	// Every grid point sees the same six swings and lands on the same
	// best pattern, so the confidence ties across the whole grid and
	// the smallest beam and gap must win.
	e := engine.New()
	in := swings(100, 110, 105, 125, 115, 126)
	grid := Grid{
		MaxGap:     []int{1, 2, 3},
		BeamWidths: []int{16, 64, 256},
	}

	result, err := Tune(e, in, wave.DefaultOptions(), grid, engine.Env{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Options.BeamWidth != 16 {
		t.Errorf("beam width = %d, want 16", result.Options.BeamWidth)
	}
	if result.Options.MaxGap != 1 {
		t.Errorf("max gap = %d, want 1", result.Options.MaxGap)
	}
}

func TestTune_EmptyDimensionsUseBase(t *testing.T) {
	e := engine.New()
	in := swings(100, 110, 105, 125, 115, 126)
	base := wave.DefaultOptions()
	base.SkipN = 1

	result, err := Tune(e, in, base, Grid{}, engine.Env{})
	if err != nil {
		t.Fatal(err)
	}
	if result.Evaluated != 1 {
		t.Fatalf("evaluated %d configurations, want 1", result.Evaluated)
	}
	if result.Options.SkipN != 1 {
		t.Errorf("skip_n = %d, want the base value 1", result.Options.SkipN)
	}
}

func TestTune_Deterministic(t *testing.T) {
	e := engine.New()
	in := swings(100, 110, 105, 125, 115, 126, 118, 140)
	grid := DefaultGrid()

	a, err := Tune(e, in, wave.DefaultOptions(), grid, engine.Env{})
	if err != nil {
		t.Fatal(err)
	}
	b, err := Tune(e, in, wave.DefaultOptions(), grid, engine.Env{})
	if err != nil {
		t.Fatal(err)
	}
	if *a != *b {
		t.Fatalf("tuning not deterministic: %+v vs %+v", a, b)
	}
}
