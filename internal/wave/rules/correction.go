package rules

import (
	"wavescan/internal/wave"
)

// EvaluateCorrection checks four turning points against the A-B-C
// grammar. B's retrace of A decides the sub-shape: a zigzag keeps B
// shallow, a flat carries B almost back to A's origin. C is bounded
// relative to A in either shape.
func EvaluateCorrection(points []wave.WavePoint, b Bounds) Report {
	r := Report{Margins: make(map[string]float64, 6)}
	if len(points) != 4 {
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

	wa := abs(p[1].Price - p[0].Price)
	altMargin := 1.0
	for i := 1; i < 4; i++ {
		exp := s
		if i%2 == 0 {
			exp = -s
		}
		move := (p[i].Price - p[i-1].Price) * exp
		if wa > 0 {
			altMargin = minf(altMargin, move/wa)
		} else {
			altMargin = MaxViolation
		}
	}
	r.Margins[RuleAlternation] = altMargin

	if wa <= 0 {
		r.Margins[RuleBRetrace] = MaxViolation
		r.Margins[RuleCRelation] = MaxViolation
		r.finalize()
		return r
	}

	wb := abs(p[2].Price - p[1].Price)
	wc := abs(p[3].Price - p[2].Price)

	// B retrace, evaluated against both sub-shape bands; the closer
	// fit names the shape.
	rb := wb / wa
	zig := minf(rb-b.Correction.ZigzagBMinRetrace, b.Correction.ZigzagBMaxRetrace-rb)
	flat := minf(rb-b.Correction.FlatBMinRetrace, b.Correction.FlatBMaxRetrace-rb)
	if zig >= flat {
		r.Margins[RuleBRetrace] = zig
		r.Shape = "zigzag"
	} else {
		r.Margins[RuleBRetrace] = flat
		r.Shape = "flat"
	}

	// C relative to A.
	rc := wc / wa
	r.Margins[RuleCRelation] = minf(rc-b.Correction.CMinRatio, b.Correction.CMaxRatio-rc)

	fibMargins(r.Margins, b.Fib, []float64{rb, rc})

	r.finalize()
	return r
}

// PartialCorrection estimates how promising an A-B-C prefix is.
func PartialCorrection(points []wave.WavePoint, b Bounds) float64 {
	if len(points) < 2 {
		return 0
	}
	if wave.DirectionOf(points[0].Price, points[1].Price) == wave.DirFlat {
		return MaxViolation
	}
	wa := abs(points[1].Price - points[0].Price)
	if wa <= 0 {
		return MaxViolation
	}
	score := 0.0
	if len(points) >= 3 {
		rb := abs(points[2].Price-points[1].Price) / wa
		zig := minf(rb-b.Correction.ZigzagBMinRetrace, b.Correction.ZigzagBMaxRetrace-rb)
		flat := minf(rb-b.Correction.FlatBMinRetrace, b.Correction.FlatBMaxRetrace-rb)
		score += clampMargin(maxf(zig, flat))
		score += 0.5 * clampMargin(fibMargin(b.Fib, rb)/b.Fib.Tolerance)
	}
	return score
}
