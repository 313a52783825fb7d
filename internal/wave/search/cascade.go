package search

import (
	"sort"

	"wavescan/internal/wave"
)

// Window is a closed bar-index range used to seed a finer search from
// coarse-timeframe survivors.
type Window struct {
	Start int
	End   int
}

func insideAny(windows []Window, idx int) bool {
	for _, w := range windows {
		if idx >= w.Start && idx <= w.End {
			return true
		}
	}
	return false
}

// SeedWindows derives seed windows from coarse-search survivors. Each
// pattern's index span is padded on both sides and overlapping windows
// are coalesced. Bounding the finer search to these windows reduces
// branching without changing which patterns are rule-valid inside
// them.
func SeedWindows(patterns []wave.WavePattern, pad int) []Window {
	if len(patterns) == 0 {
		return nil
	}
	windows := make([]Window, 0, len(patterns))
	for i := range patterns {
		p := &patterns[i]
		windows = append(windows, Window{Start: p.StartIndex() - pad, End: p.EndIndex() + pad})
	}
	sort.Slice(windows, func(i, j int) bool {
		if windows[i].Start != windows[j].Start {
			return windows[i].Start < windows[j].Start
		}
		return windows[i].End < windows[j].End
	})

	merged := windows[:1]
	for _, w := range windows[1:] {
		last := &merged[len(merged)-1]
		if w.Start <= last.End {
			if w.End > last.End {
				last.End = w.End
			}
			continue
		}
		merged = append(merged, w)
	}
	return merged
}
