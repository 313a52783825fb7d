// Package signals converts ranked wave patterns into trade signals.
package signals

import (
	"wavescan/internal/wave"
)

// Side is the direction of a signal.
type Side string

const (
	SideBuy  Side = "buy"
	SideSell Side = "sell"
	SideFlat Side = "flat"
)

// Signal is a directional recommendation derived from the best
// detected pattern.
type Signal struct {
	Side       Side
	Confidence float64
	Reason     string
	Pattern    *wave.WavePattern
}

// Config bounds signal generation.
type Config struct {
	// MinConfidence below which no directional signal is emitted.
	MinConfidence float64
}

// DefaultConfig returns the default signal configuration.
func DefaultConfig() Config {
	return Config{MinConfidence: 0.6}
}

// Generate derives a signal from a ranked pattern set. Impulses in
// trend direction are entries; a completed impulse followed by
// nothing better stays flat. An empty set is a flat signal, not an
// error.
func Generate(patterns []wave.WavePattern, cfg Config) Signal {
	if len(patterns) == 0 {
		return Signal{Side: SideFlat, Reason: "no_patterns"}
	}

	best := &patterns[0]
	if best.Confidence < cfg.MinConfidence {
		return Signal{Side: SideFlat, Confidence: best.Confidence, Reason: "low_confidence", Pattern: best}
	}

	switch best.Direction() {
	case wave.DirUp:
		return Signal{Side: SideBuy, Confidence: best.Confidence, Reason: reasonFor(best), Pattern: best}
	case wave.DirDown:
		return Signal{Side: SideSell, Confidence: best.Confidence, Reason: reasonFor(best), Pattern: best}
	default:
		return Signal{Side: SideFlat, Confidence: best.Confidence, Reason: "flat_pattern", Pattern: best}
	}
}

func reasonFor(p *wave.WavePattern) string {
	if p.Type == wave.PatternImpulse {
		if p.Direction() == wave.DirUp {
			return "impulse_up"
		}
		return "impulse_down"
	}
	if p.Direction() == wave.DirUp {
		return "correction_up"
	}
	return "correction_down"
}
