package rules

import (
	"wavescan/internal/wave"
)

// EvaluateImpulse checks six turning points against the impulse
// grammar. Margins are fractions of the relevant reference leg:
// positive means satisfied with that much headroom, negative means
// violated by that much. allowDiagonal switches the wave-4 overlap
// rule to the diagonal allowance.
func EvaluateImpulse(points []wave.WavePoint, b Bounds, allowDiagonal bool) Report {
	r := Report{Margins: make(map[string]float64, 10)}
	if len(points) != 6 {
		r.Margins[RuleAlternation] = MaxViolation
		r.finalize()
		return r
	}

	p := points
	s := float64(wave.DirectionOf(p[0].Price, p[1].Price))
	if s == 0 {
		r.Margins[RuleAlternation] = MaxViolation
		r.finalize()
		return r
	}

	// Legs must alternate around the impulse direction. The margin is
	// the smallest signed leg move in the expected direction,
	// normalized by the first leg.
	w1 := abs(p[1].Price - p[0].Price)
	altMargin := 1.0
	for i := 1; i < 6; i++ {
		exp := s
		if i%2 == 0 {
			exp = -s
		}
		move := (p[i].Price - p[i-1].Price) * exp
		if w1 > 0 {
			altMargin = minf(altMargin, move/w1)
		} else {
			altMargin = MaxViolation
		}
	}
	r.Margins[RuleAlternation] = altMargin

	w2 := abs(p[2].Price - p[1].Price)
	w3 := abs(p[3].Price - p[2].Price)
	w4 := abs(p[4].Price - p[3].Price)
	w5 := abs(p[5].Price - p[4].Price)

	if w1 <= 0 {
		// Degenerate wave 1 makes every retrace ratio undefined.
		r.Margins[RuleWave2Retrace] = MaxViolation
		r.Margins[RuleSoftWave2] = MaxViolation
		r.Margins[RuleWave3Length] = MaxViolation
		r.Margins[RuleWave3Beyond] = MaxViolation
		r.Margins[RuleWave4Overlap] = MaxViolation
		r.Margins[RuleWave5] = MaxViolation
		r.Margins[RuleSoftWave5End] = MaxViolation
		r.finalize()
		return r
	}

	// Wave 2 must not retrace past the start of wave 1.
	retrace2 := w2 / w1
	r.Margins[RuleWave2Retrace] = b.Impulse.Wave2MaxRetrace - retrace2
	r.Margins[RuleSoftWave2] = b.Impulse.Wave2SoftRetrace - retrace2

	// Wave 3 is never the shortest of 1, 3, 5.
	ref := maxf(w1, maxf(w3, w5))
	if ref > 0 {
		r.Margins[RuleWave3Length] = (w3 - minf(w1, w5)) / ref
	} else {
		r.Margins[RuleWave3Length] = MaxViolation
	}

	// Wave 3 must carry beyond the end of wave 1.
	r.Margins[RuleWave3Beyond] = (p[3].Price - p[1].Price) * s / w1

	// Wave 4 may not enter wave 1 territory beyond the allowance.
	// Penetration is positive when p4 crosses p1 against the trend.
	allowance := b.Impulse.Wave4OverlapAllowance
	if allowDiagonal {
		allowance = b.Impulse.Wave4DiagonalAllowance
	}
	penetration := (p[1].Price - p[4].Price) * s / w1
	r.Margins[RuleWave4Overlap] = allowance - penetration
	r.Diagonal = allowDiagonal && penetration > b.Impulse.Wave4OverlapAllowance

	// Wave 5 must relate to wave 1 by equality, extension, or (when
	// wave 3 is extended) truncation; the best-fitting relation wins.
	r5 := w5 / w1
	rel := maxf(
		b.Impulse.Wave5EqualityTolerance-abs(r5-1.0),
		b.Impulse.Wave5ExtensionTolerance-abs(r5-1.618),
	)
	if w3/w1 >= b.Impulse.Wave3ExtensionRatio {
		rel = maxf(rel, r5-b.Impulse.Wave5TruncationMin)
	}
	r.Margins[RuleWave5] = rel

	// Truncated fifths are tolerated, so the carry past wave 3 is a
	// soft margin only.
	r.Margins[RuleSoftWave5End] = (p[5].Price - p[3].Price) * s / w1

	fibMargins(r.Margins, b.Fib, []float64{retrace2, w3 / w1, safeRatio(w4, w3), r5})

	r.finalize()
	return r
}

// PartialImpulse estimates how promising an impulse prefix is from
// the margins computable so far. Prefixes are the first 2..5 turning
// points of a forming candidate; the estimate guides beam pruning and
// must be cheap.
func PartialImpulse(points []wave.WavePoint, b Bounds) float64 {
	if len(points) < 2 {
		return 0
	}
	s := float64(wave.DirectionOf(points[0].Price, points[1].Price))
	if s == 0 {
		return MaxViolation
	}
	w1 := abs(points[1].Price - points[0].Price)
	if w1 <= 0 {
		return MaxViolation
	}

	score := 0.0
	if len(points) >= 3 {
		retrace2 := abs(points[2].Price-points[1].Price) / w1
		score += clampMargin(b.Impulse.Wave2MaxRetrace - retrace2)
		score += 0.5 * clampMargin(fibMargin(b.Fib, retrace2)/b.Fib.Tolerance)
	}
	if len(points) >= 4 {
		score += clampMargin((points[3].Price - points[1].Price) * s / w1)
	}
	if len(points) >= 5 {
		allowance := b.Impulse.Wave4OverlapAllowance
		penetration := (points[1].Price - points[4].Price) * s / w1
		score += clampMargin(allowance - penetration)
	}
	return score
}

func safeRatio(num, den float64) float64 {
	if den <= 0 {
		return -1
	}
	return num / den
}

// clampMargin bounds a margin contribution so a single huge leg can
// not dominate the partial estimate.
func clampMargin(m float64) float64 {
	if m < MaxViolation {
		return MaxViolation
	}
	if m > 1 {
		return 1
	}
	return m
}
