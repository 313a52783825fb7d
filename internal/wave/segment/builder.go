// Package segment turns alternating swing points into directional
// segments (monowaves), absorbing micro-swings to tolerate noise.
package segment

import (
	apperrors "wavescan/internal/errors"
	"wavescan/internal/wave"
)

// Validate checks the swing-sequence input contract: at least two
// points, strictly increasing indices, strictly alternating kinds.
func Validate(swings []wave.SwingPoint) error {
	if len(swings) < 2 {
		return apperrors.NewValidationError("swings", len(swings), "need at least 2 swing points")
	}
	for i := 1; i < len(swings); i++ {
		if swings[i].Index <= swings[i-1].Index {
			return apperrors.NewValidationError("swings", swings[i].Index, "indices must strictly increase")
		}
		if swings[i].Kind == swings[i-1].Kind {
			return apperrors.NewValidationError("swings", swings[i].Index, "kinds must strictly alternate")
		}
	}
	return nil
}

// Build converts a swing sequence into segments. With skipN > 0 it
// merges up to skipN interior micro-swing pairs, smallest amplitude
// first, so small counter-moves are absorbed into the surrounding
// segment. Removing an adjacent pair of interior points preserves
// strict alternation, which Build re-checks before returning.
//
// The result covers the same index range as the input; SkipCount on
// each segment records how many raw swings it absorbed. Build is
// deterministic: the same input and skipN always yield the same
// segments.
func Build(swings []wave.SwingPoint, skipN int) ([]wave.Segment, error) {
	if err := Validate(swings); err != nil {
		return nil, err
	}
	if skipN < 0 {
		return nil, apperrors.NewValidationError("skip_n", skipN, "must be non-negative")
	}

	// Work on positions into the original slice so SkipCount can be
	// derived from how many raw points sit between kept neighbours.
	kept := make([]int, len(swings))
	for i := range kept {
		kept[i] = i
	}

	for merged := 0; merged < skipN && len(kept) >= 4; merged++ {
		// The candidate merge removes interior points kept[i] and
		// kept[i+1]; pick the pair spanning the smallest price move,
		// earliest pair on ties.
		best := -1
		bestAmp := 0.0
		for i := 1; i+1 < len(kept)-1; i++ {
			a := swings[kept[i]].Price
			b := swings[kept[i+1]].Price
			amp := b - a
			if amp < 0 {
				amp = -amp
			}
			if best == -1 || amp < bestAmp {
				best = i
				bestAmp = amp
			}
		}
		if best == -1 {
			break
		}
		kept = append(kept[:best], kept[best+2:]...)
	}

	segs := make([]wave.Segment, 0, len(kept)-1)
	for i := 1; i < len(kept); i++ {
		skipped := kept[i] - kept[i-1] - 1
		segs = append(segs, wave.NewSegment(swings[kept[i-1]], swings[kept[i]], skipped))
	}

	// Alternation must survive merging; kinds of kept points still
	// alternate because removals happen in adjacent pairs.
	for i := 1; i < len(segs); i++ {
		if segs[i].Start.Kind == segs[i-1].Start.Kind {
			return nil, apperrors.NewValidationError("segments", i, "alternation lost during merge")
		}
	}
	return segs, nil
}
