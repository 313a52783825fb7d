// Package tuner selects engine options by grid search over a small
// set of discrete configurations, maximizing the best resulting
// confidence.
package tuner

import (
	apperrors "wavescan/internal/errors"
	"wavescan/internal/wave"
	"wavescan/internal/wave/engine"
)

// Grid is the finite parameter grid to search. Empty dimensions fall
// back to the base option value.
type Grid struct {
	SkipN      []int
	MaxGap     []int
	BeamWidths []int
}

// DefaultGrid returns a small grid useful for interactive tuning.
func DefaultGrid() Grid {
	return Grid{
		SkipN:      []int{0, 1, 2},
		MaxGap:     []int{1, 2},
		BeamWidths: []int{32, 64, 128},
	}
}

// Result is the winning configuration with its run summary.
type Result struct {
	Options         wave.Options
	Patterns        int
	BestScore       float64
	BestConfidence  float64
	Evaluated       int
	BudgetExhausted bool
}

// Tune runs the full pipeline once per grid point on the same input
// and picks the configuration with the highest best confidence. Ties
// prefer the cheaper configuration: smaller beam width first, then
// smaller max gap. The grid is walked in a fixed order, so tuning is
// deterministic.
func Tune(e *engine.Engine, swings []wave.SwingPoint, base wave.Options, grid Grid, env engine.Env) (*Result, error) {
	skips := orInts(grid.SkipN, base.SkipN)
	gaps := orInts(grid.MaxGap, base.MaxGap)
	beams := orInts(grid.BeamWidths, base.BeamWidth)
	if len(skips)*len(gaps)*len(beams) == 0 {
		return nil, apperrors.NewValidationError("grid", 0, "grid must have at least one configuration")
	}

	var best *Result
	evaluated := 0
	exhausted := false
	for _, sk := range skips {
		for _, mg := range gaps {
			for _, bw := range beams {
				opts := base
				opts.SkipN = sk
				opts.MaxGap = mg
				opts.BeamWidth = bw

				res, err := e.Detect(swings, opts, env)
				if err != nil {
					return nil, err
				}
				evaluated++
				exhausted = exhausted || res.Diagnostics.BudgetExhausted

				cand := &Result{
					Options:  opts,
					Patterns: len(res.Patterns),
				}
				if len(res.Patterns) > 0 {
					cand.BestScore = res.Patterns[0].Score
					cand.BestConfidence = res.Patterns[0].Confidence
				}
				if best == nil || better(cand, best) {
					best = cand
				}
			}
		}
	}

	best.Evaluated = evaluated
	best.BudgetExhausted = exhausted
	return best, nil
}

// better prefers higher best confidence, then cheaper configurations.
func better(a, b *Result) bool {
	if a.BestConfidence != b.BestConfidence {
		return a.BestConfidence > b.BestConfidence
	}
	if a.Options.BeamWidth != b.Options.BeamWidth {
		return a.Options.BeamWidth < b.Options.BeamWidth
	}
	if a.Options.MaxGap != b.Options.MaxGap {
		return a.Options.MaxGap < b.Options.MaxGap
	}
	return false
}

func orInts(vals []int, fallback int) []int {
	if len(vals) == 0 {
		return []int{fallback}
	}
	return vals
}
