// Package search enumerates plausible multi-leg wave candidates from
// a segment sequence with a budgeted beam search.
package search

import (
	"fmt"
	"sort"

	"wavescan/internal/wave"
	"wavescan/internal/wave/rules"
)

// gapPenalty is subtracted from a candidate's partial score for every
// segment it skips, so gap-free labelings win ties against noisy ones.
const gapPenalty = 0.05

// candidate is a partial pattern during search. Candidates never
// outlive the search call that created them.
type candidate struct {
	legs    []int // segment indices chosen as legs, in order
	start   int   // first leg's segment index
	partial float64
	penalty float64 // accumulated gap penalty
}

func (c *candidate) points(segs []wave.Segment) []wave.WavePoint {
	pts := make([]wave.WavePoint, 0, len(c.legs)+1)
	first := segs[c.legs[0]]
	pts = append(pts, wave.WavePoint{Index: first.Start.Index, Price: first.Start.Price})
	for _, li := range c.legs {
		pts = append(pts, wave.WavePoint{Index: segs[li].End.Index, Price: segs[li].End.Price})
	}
	return pts
}

// grammar adapts one pattern type to the generic beam loop.
type grammar struct {
	typ     wave.PatternType
	legs    int
	partial func(points []wave.WavePoint) float64
	full    func(points []wave.WavePoint) rules.Report
}

func grammars(b rules.Bounds, allowDiagonal bool) []grammar {
	return []grammar{
		{
			typ:     wave.PatternImpulse,
			legs:    5,
			partial: func(p []wave.WavePoint) float64 { return rules.PartialImpulse(p, b) },
			full:    func(p []wave.WavePoint) rules.Report { return rules.EvaluateImpulse(p, b, allowDiagonal) },
		},
		{
			typ:     wave.PatternCorrection,
			legs:    3,
			partial: func(p []wave.WavePoint) float64 { return rules.PartialCorrection(p, b) },
			full:    func(p []wave.WavePoint) rules.Report { return rules.EvaluateCorrection(p, b) },
		},
	}
}

// budget is shared across grammars within one Run call.
type budget struct {
	nodes     int
	limit     int
	exhausted bool
}

func (b *budget) spend() bool {
	if b.nodes >= b.limit {
		b.exhausted = true
		return false
	}
	b.nodes++
	return true
}

// Run explores the segment sequence and returns every finished,
// rule-valid pattern, unscored and unsuppressed, together with search
// diagnostics. Identical inputs always produce the identical set in
// the identical order; ties are broken by earlier start index, then
// higher partial score.
func Run(segs []wave.Segment, opts wave.Options, b rules.Bounds) ([]wave.WavePattern, wave.Diagnostics) {
	return run(segs, opts, b, nil)
}

// RunSeeded is Run restricted to candidates whose first leg starts
// inside one of the given index windows. The coarse-to-fine cascade
// uses it to bound the finer search without changing validity rules.
func RunSeeded(segs []wave.Segment, windows []Window, opts wave.Options, b rules.Bounds) ([]wave.WavePattern, wave.Diagnostics) {
	if windows == nil {
		windows = []Window{}
	}
	return run(segs, opts, b, windows)
}

func run(segs []wave.Segment, opts wave.Options, b rules.Bounds, windows []Window) ([]wave.WavePattern, wave.Diagnostics) {
	var diag wave.Diagnostics
	diag.SegmentsBuilt = len(segs)
	bud := &budget{limit: opts.NodeBudget}

	var patterns []wave.WavePattern
	for _, g := range grammars(b, opts.AllowDiagonal) {
		found := runGrammar(segs, g, opts, windows, bud, &diag)
		patterns = append(patterns, found...)
	}
	diag.BudgetExhausted = bud.exhausted
	return patterns, diag
}

func runGrammar(segs []wave.Segment, g grammar, opts wave.Options, windows []Window, bud *budget, diag *wave.Diagnostics) []wave.WavePattern {
	n := len(segs)
	if n < g.legs {
		return nil
	}

	// Seed one candidate per admissible start segment.
	beam := make([]candidate, 0, n)
	for i := 0; i+g.legs <= n; i++ {
		if windows != nil && !insideAny(windows, segs[i].Start.Index) {
			continue
		}
		if segs[i].Direction == wave.DirFlat {
			diag.Pruned++
			continue
		}
		c := candidate{legs: []int{i}, start: i}
		c.partial = g.partial(c.points(segs))
		beam = append(beam, c)
	}

	for depth := 1; depth < g.legs && !bud.exhausted; depth++ {
		// Branch cap is per start index per depth: once a start has
		// spawned its allowed branches at this depth, further
		// alternatives for it are pruned unexplored.
		perStart := make(map[int]int, len(beam))
		var next []candidate
		for bi := range beam {
			cand := &beam[bi]
			last := cand.legs[len(cand.legs)-1]
			prevDir := segs[last].Direction
			for delta := 1; delta <= opts.MaxGap+1; delta++ {
				ni := last + delta
				if ni >= n {
					break
				}
				if perStart[cand.start] >= opts.MaxCandidatesPerStart {
					diag.Pruned++
					break
				}
				if !bud.spend() {
					break
				}
				diag.Explored++

				// Fail fast on direction: each leg opposes the one
				// before it.
				if segs[ni].Direction == wave.DirFlat || segs[ni].Direction != -prevDir {
					diag.Pruned++
					continue
				}

				legsCopy := make([]int, len(cand.legs), len(cand.legs)+1)
				copy(legsCopy, cand.legs)
				ext := candidate{
					legs:    append(legsCopy, ni),
					start:   cand.start,
					penalty: cand.penalty + gapPenalty*float64(delta-1),
				}
				ext.partial = g.partial(ext.points(segs)) - ext.penalty
				if ext.partial <= rules.MaxViolation {
					diag.Pruned++
					continue
				}
				perStart[cand.start]++
				next = append(next, ext)
			}
			if bud.exhausted {
				break
			}
		}

		sortCandidates(next)
		if len(next) > opts.BeamWidth {
			diag.Pruned += len(next) - opts.BeamWidth
			next = next[:opts.BeamWidth]
		}
		beam = next
	}

	var out []wave.WavePattern
	for i := range beam {
		cand := &beam[i]
		if len(cand.legs) != g.legs {
			continue
		}
		pts := cand.points(segs)
		report := g.full(pts)
		if !report.Valid {
			diag.Pruned++
			continue
		}
		p := wave.WavePattern{
			Type:    g.typ,
			Points:  pts,
			Margins: report.Margins,
			Meta:    map[string]string{},
		}
		if report.Shape != "" {
			p.Meta["shape"] = report.Shape
		}
		if report.Diagonal {
			p.Meta["diagonal"] = "true"
		}
		p.Meta["partial_score"] = fmt.Sprintf("%.4f", cand.partial)
		out = append(out, p)
	}
	return out
}

// sortCandidates orders a beam deterministically: higher partial
// score first, earlier start on ties, then lexicographic leg indices.
func sortCandidates(cands []candidate) {
	sort.Slice(cands, func(i, j int) bool {
		a, b := &cands[i], &cands[j]
		if a.partial != b.partial {
			return a.partial > b.partial
		}
		if a.start != b.start {
			return a.start < b.start
		}
		for k := 0; k < len(a.legs) && k < len(b.legs); k++ {
			if a.legs[k] != b.legs[k] {
				return a.legs[k] < b.legs[k]
			}
		}
		return len(a.legs) < len(b.legs)
	})
}
