// Package score converts rule margins and auxiliary signals into a
// ranking score and a calibrated confidence.
package score

import (
	"fmt"
	"sort"
	"strings"

	"wavescan/internal/wave"
	"wavescan/internal/wave/rules"
)

// Weights defines the contribution of each component to the raw score.
type Weights struct {
	Margins   float64
	Fib       float64
	Trend     float64
	Agreement float64
	Amplitude float64
}

// DefaultWeights returns the default component weights.
func DefaultWeights() Weights {
	return Weights{
		Margins:   3.0,
		Fib:       2.0,
		Trend:     1.0,
		Agreement: 0.5,
		Amplitude: 0.5,
	}
}

// Env carries the external signals the scorer consumes: a
// longer-horizon trend direction and a recent volatility estimate
// (same units as price; zero means unknown). Both come from
// collaborators outside the engine.
type Env struct {
	Trend      wave.Direction
	Volatility float64
}

// agreementOverlap is the span overlap a secondary proposal needs to
// count as agreeing with a primary pattern.
const agreementOverlap = 0.5

// Scorer scores and calibrates finished patterns.
type Scorer struct {
	weights   Weights
	calibrate wave.Calibrator
	fib       rules.FibBounds
}

// NewScorer creates a scorer with the given weights and calibrator.
func NewScorer(w Weights, calibrate wave.Calibrator, fib rules.FibBounds) *Scorer {
	if calibrate == nil {
		calibrate = DefaultCalibrator()
	}
	return &Scorer{weights: w, calibrate: calibrate, fib: fib}
}

// Apply scores every pattern, joins secondary-detector agreement,
// applies the confidence calibration, and returns the patterns
// ordered by score descending (earlier start on ties). Patterns below
// minConfidence are annotated, never dropped. Input patterns are not
// mutated.
func (s *Scorer) Apply(patterns []wave.WavePattern, proposals []wave.Proposal, env Env, minConfidence float64) []wave.WavePattern {
	out := make([]wave.WavePattern, len(patterns))
	copy(out, patterns)

	for i := range out {
		p := &out[i]
		// The element copy above shares Margins and Meta with the
		// caller's pattern; clone both so annotations stay local.
		p.Margins = cloneMargins(p.Margins)
		p.Meta = cloneMeta(p.Meta)
		p.Agreement = agrees(p, proposals)
		p.Score = s.raw(p, env)
		p.Confidence = clamp01(s.calibrate(p.Score))
		if p.Confidence < minConfidence {
			p.Meta["below_min_confidence"] = "true"
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Score != out[j].Score {
			return out[i].Score > out[j].Score
		}
		return out[i].StartIndex() < out[j].StartIndex()
	})
	return out
}

// raw combines margin satisfaction, fib alignment, trend consistency,
// agreement, and regime-normalized amplitude into one number.
func (s *Scorer) raw(p *wave.WavePattern, env Env) float64 {
	return s.weights.Margins*marginComponent(p.Margins) +
		s.weights.Fib*fibComponent(p.Margins, s.fib.Tolerance) +
		s.weights.Trend*trendComponent(p, env.Trend) +
		s.weights.Agreement*agreementComponent(p.Agreement) +
		s.weights.Amplitude*amplitudeComponent(p, env.Volatility)
}

// marginComponent is the mean clamped hard-rule margin in [0, 1].
func marginComponent(margins map[string]float64) float64 {
	sum, n := 0.0, 0
	for name, m := range margins {
		if strings.HasPrefix(name, "fib_") || strings.HasPrefix(name, "soft_") {
			continue
		}
		sum += clamp01(m)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// fibComponent measures how close leg ratios sit to canonical levels,
// normalized by the tolerance band.
func fibComponent(margins map[string]float64, tolerance float64) float64 {
	if tolerance <= 0 {
		return 0
	}
	sum, n := 0.0, 0
	for name, m := range margins {
		if !strings.HasPrefix(name, "fib_") {
			continue
		}
		sum += clamp01(m / tolerance)
		n++
	}
	if n == 0 {
		return 0
	}
	return sum / float64(n)
}

// trendComponent rewards alignment with the longer-horizon trend; an
// unknown trend is neutral.
func trendComponent(p *wave.WavePattern, trend wave.Direction) float64 {
	if trend == wave.DirFlat {
		return 0.5
	}
	if p.Direction() == trend {
		return 1
	}
	return 0
}

func agreementComponent(agreement bool) float64 {
	if agreement {
		return 1
	}
	return 0
}

// amplitudeComponent rescales the pattern's mean leg amplitude by the
// recent-volatility estimate so significance is comparable across
// regimes. Unknown volatility is neutral.
func amplitudeComponent(p *wave.WavePattern, volatility float64) float64 {
	if volatility <= 0 || len(p.Points) < 2 {
		return 0.5
	}
	sum := 0.0
	for i := 1; i < len(p.Points); i++ {
		d := p.Points[i].Price - p.Points[i-1].Price
		if d < 0 {
			d = -d
		}
		sum += d
	}
	mean := sum / float64(len(p.Points)-1)
	return clamp01(mean / (4 * volatility))
}

// agrees reports whether any secondary proposal overlaps the pattern
// span enough and points the same way.
func agrees(p *wave.WavePattern, proposals []wave.Proposal) bool {
	dir := p.Direction()
	for _, prop := range proposals {
		if prop.Direction != dir {
			continue
		}
		if wave.OverlapFraction(p.StartIndex(), p.EndIndex(), prop.StartIndex, prop.EndIndex) > agreementOverlap {
			return true
		}
	}
	return false
}

func cloneMargins(m map[string]float64) map[string]float64 {
	out := make(map[string]float64, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func cloneMeta(m map[string]string) map[string]string {
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// FormatComponents renders the score components of a pattern for
// diagnostics output.
func (s *Scorer) FormatComponents(p *wave.WavePattern, env Env) string {
	return fmt.Sprintf("margins=%.3f fib=%.3f trend=%.3f agree=%.1f amp=%.3f",
		marginComponent(p.Margins),
		fibComponent(p.Margins, s.fib.Tolerance),
		trendComponent(p, env.Trend),
		agreementComponent(p.Agreement),
		amplitudeComponent(p, env.Volatility),
	)
}
