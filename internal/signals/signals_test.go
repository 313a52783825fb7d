package signals

import (
	"testing"

	"wavescan/internal/wave"
)

func pattern(typ wave.PatternType, conf float64, p0, p1 float64) wave.WavePattern {
	return wave.WavePattern{
		Type:       typ,
		Confidence: conf,
		Points: []wave.WavePoint{
			{Index: 0, Price: p0},
			{Index: 10, Price: p1},
		},
	}
}

func TestGenerate_Empty(t *testing.T) {
	sig := Generate(nil, DefaultConfig())
	if sig.Side != SideFlat || sig.Reason != "no_patterns" {
		t.Fatalf("signal = %+v, want flat/no_patterns", sig)
	}
}

func TestGenerate_BuyOnUpImpulse(t *testing.T) {
	patterns := []wave.WavePattern{pattern(wave.PatternImpulse, 0.8, 100, 110)}
	sig := Generate(patterns, DefaultConfig())
	if sig.Side != SideBuy {
		t.Fatalf("side = %v, want buy", sig.Side)
	}
	if sig.Reason != "impulse_up" {
		t.Errorf("reason = %q, want impulse_up", sig.Reason)
	}
	if sig.Confidence != 0.8 {
		t.Errorf("confidence = %f, want 0.8", sig.Confidence)
	}
	if sig.Pattern == nil {
		t.Error("signal missing its source pattern")
	}
}

func TestGenerate_SellOnDownImpulse(t *testing.T) {
	patterns := []wave.WavePattern{pattern(wave.PatternImpulse, 0.7, 110, 100)}
	sig := Generate(patterns, DefaultConfig())
	if sig.Side != SideSell || sig.Reason != "impulse_down" {
		t.Fatalf("signal = %+v, want sell/impulse_down", sig)
	}
}

func TestGenerate_LowConfidenceStaysFlat(t *testing.T) {
	patterns := []wave.WavePattern{pattern(wave.PatternImpulse, 0.3, 100, 110)}
	sig := Generate(patterns, DefaultConfig())
	if sig.Side != SideFlat || sig.Reason != "low_confidence" {
		t.Fatalf("signal = %+v, want flat/low_confidence", sig)
	}
	if sig.Pattern == nil {
		t.Error("flat signal should still reference the best pattern")
	}
}

func TestGenerate_UsesBestRankedPattern(t *testing.T) {
	patterns := []wave.WavePattern{
		pattern(wave.PatternCorrection, 0.9, 110, 100),
		pattern(wave.PatternImpulse, 0.95, 100, 110),
	}
	sig := Generate(patterns, DefaultConfig())
	if sig.Side != SideSell {
		t.Fatalf("side = %v, want sell from the first-ranked pattern", sig.Side)
	}
}

func TestGenerate_CustomThreshold(t *testing.T) {
	patterns := []wave.WavePattern{pattern(wave.PatternImpulse, 0.55, 100, 110)}
	if sig := Generate(patterns, Config{MinConfidence: 0.5}); sig.Side != SideBuy {
		t.Errorf("side = %v, want buy with a lowered threshold", sig.Side)
	}
	if sig := Generate(patterns, Config{MinConfidence: 0.6}); sig.Side != SideFlat {
		t.Errorf("side = %v, want flat with the default threshold", sig.Side)
	}
}
