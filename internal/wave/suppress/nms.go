// Package suppress removes redundant overlapping patterns, keeping
// the best-scoring pattern per contested index region.
package suppress

import (
	"sort"

	"wavescan/internal/wave"
)

// ByOverlap applies non-maximum suppression over index spans. It
// walks the patterns in score-descending order and keeps each one
// unless its span overlaps an already-kept pattern by more than
// threshold (intersection over union). The returned slice is a new
// ordering; input patterns are never mutated.
//
// ByOverlap is idempotent: running it on its own output is a no-op.
func ByOverlap(patterns []wave.WavePattern, threshold float64, maxKeep int) (kept []wave.WavePattern, suppressed int) {
	if len(patterns) == 0 {
		return nil, 0
	}

	ordered := make([]wave.WavePattern, len(patterns))
	copy(ordered, patterns)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Score != ordered[j].Score {
			return ordered[i].Score > ordered[j].Score
		}
		return ordered[i].StartIndex() < ordered[j].StartIndex()
	})

	for i := range ordered {
		p := &ordered[i]
		conflict := false
		for k := range kept {
			frac := wave.OverlapFraction(p.StartIndex(), p.EndIndex(), kept[k].StartIndex(), kept[k].EndIndex())
			if frac > threshold {
				conflict = true
				break
			}
		}
		if conflict {
			suppressed++
			continue
		}
		kept = append(kept, *p)
		if maxKeep > 0 && len(kept) >= maxKeep {
			suppressed += len(ordered) - i - 1
			break
		}
	}
	return kept, suppressed
}
