// Package fibscan is an independent secondary detector: a pure
// Fibonacci-ratio scan over a swing sequence, with no beam search.
// Its proposals feed the cross-detector agreement check.
package fibscan

import (
	apperrors "wavescan/internal/errors"
	"wavescan/internal/wave"
)

// fib retrace and extension targets the scan accepts.
var (
	retraceLevels   = []float64{0.382, 0.5, 0.618, 0.786}
	extensionLevels = []float64{0.618, 1.0, 1.618, 2.618}
)

// Detector proposes index ranges whose three-leg ratio structure sits
// near canonical Fibonacci levels.
type Detector struct {
	tolerance float64
	minPoints int
}

// New creates a detector with the given ratio tolerance.
func New(tolerance float64) *Detector {
	if tolerance <= 0 {
		tolerance = 0.15
	}
	return &Detector{tolerance: tolerance, minPoints: 4}
}

func (d *Detector) Name() string {
	return "fibscan"
}

// Propose scans every window of four consecutive swings. A window
// qualifies when the middle leg retraces the first near a retrace
// level and the third leg extends the first near an extension level.
// Returns ErrInsufficientData when the sequence is too short; callers
// degrade to agreement=false, never fail.
func (d *Detector) Propose(swings []wave.SwingPoint) ([]wave.Proposal, error) {
	if len(swings) < d.minPoints {
		return nil, apperrors.Wrapf(apperrors.ErrInsufficientData, "fibscan needs %d swings, got %d", d.minPoints, len(swings))
	}

	var out []wave.Proposal
	for i := 0; i+3 < len(swings); i++ {
		p0, p1, p2, p3 := swings[i], swings[i+1], swings[i+2], swings[i+3]
		leg1 := abs(p1.Price - p0.Price)
		if leg1 <= 0 {
			continue
		}
		retrace := abs(p2.Price-p1.Price) / leg1
		extension := abs(p3.Price-p2.Price) / leg1
		if !d.near(retrace, retraceLevels) || !d.near(extension, extensionLevels) {
			continue
		}
		out = append(out, wave.Proposal{
			StartIndex: p0.Index,
			EndIndex:   p3.Index,
			Direction:  wave.DirectionOf(p0.Price, p1.Price),
		})
	}
	return out, nil
}

func (d *Detector) near(ratio float64, levels []float64) bool {
	for _, lvl := range levels {
		if abs(ratio-lvl) <= d.tolerance {
			return true
		}
	}
	return false
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}
