package rules

import "fmt"

// fibMargin returns the signed distance of a ratio from the tolerance
// band around its nearest canonical Fibonacci level. Positive inside
// the band, negative outside, MaxViolation for unusable ratios.
func fibMargin(b FibBounds, ratio float64) float64 {
	if ratio < 0 {
		return MaxViolation
	}
	best := -1.0
	for _, lvl := range b.Levels {
		d := abs(ratio - lvl)
		if best < 0 || d < best {
			best = d
		}
	}
	if best < 0 {
		return MaxViolation
	}
	return b.Tolerance - best
}

// fibMargins records a soft fib margin per leg ratio. Fib alignment
// never affects hard validity; it feeds the scorer only.
func fibMargins(into map[string]float64, b FibBounds, ratios []float64) {
	for i, r := range ratios {
		into[fmt.Sprintf("fib_ratio_%d", i+1)] = fibMargin(b, r)
	}
}
