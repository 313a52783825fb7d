// Package engine wires the pipeline stages into the wave candidate
// detection engine: segments, budgeted search, suppression, scoring,
// and confidence calibration. An engine call is a pure function of
// (swings, options); it holds no cross-call state.
package engine

import (
	"wavescan/internal/wave"
	"wavescan/internal/wave/rules"
	"wavescan/internal/wave/score"
	"wavescan/internal/wave/search"
	"wavescan/internal/wave/segment"
	"wavescan/internal/wave/suppress"
)

// Result is the ranked output of one engine run, with read-only
// search diagnostics for the caller to log or export.
type Result struct {
	Patterns    []wave.WavePattern
	Diagnostics wave.Diagnostics
}

// Env carries per-run external signals (longer-horizon trend,
// recent-volatility estimate). The zero value means both unknown.
type Env = score.Env

// Engine is a configured detector. The zero configuration from New
// uses the embedded rule bounds, default weights, and the default
// logistic calibrator.
type Engine struct {
	bounds     rules.Bounds
	scorer     *score.Scorer
	secondary  wave.RangeProposer
	calibrator wave.Calibrator
	weights    *score.Weights
}

// Option configures an Engine.
type Option func(*Engine)

// WithBounds overrides the rule-bound table.
func WithBounds(b rules.Bounds) Option {
	return func(e *Engine) { e.bounds = b }
}

// WithCalibrator supplies an externally fitted confidence calibrator.
func WithCalibrator(c wave.Calibrator) Option {
	return func(e *Engine) { e.scorer = nil; e.calibrator = c }
}

// WithSecondary plugs in a secondary detector for the agreement
// check. Pass nil to disable it.
func WithSecondary(p wave.RangeProposer) Option {
	return func(e *Engine) { e.secondary = p }
}

// WithWeights overrides the score component weights.
func WithWeights(w score.Weights) Option {
	return func(e *Engine) { e.scorer = nil; e.weights = &w }
}

// New creates an engine.
func New(opts ...Option) *Engine {
	e := &Engine{bounds: rules.DefaultBounds()}
	for _, o := range opts {
		o(e)
	}
	if e.scorer == nil {
		w := score.DefaultWeights()
		if e.weights != nil {
			w = *e.weights
		}
		e.scorer = score.NewScorer(w, e.calibrator, e.bounds.Fib)
	}
	return e
}

// Detect runs the full pipeline on a swing sequence: segment build,
// beam search over both grammars, scoring and calibration, overlap
// suppression, and ranking. It returns a ValidationError for
// malformed input or options; an empty pattern set is a valid
// outcome, and an exhausted search budget only sets the diagnostics
// flag.
func (e *Engine) Detect(swings []wave.SwingPoint, opts wave.Options, env Env) (*Result, error) {
	opts = opts.Normalized()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	segs, err := segment.Build(swings, opts.SkipN)
	if err != nil {
		return nil, err
	}

	raw, diag := search.Run(segs, opts, e.bounds)
	return e.finish(raw, diag, swings, opts, env), nil
}

// DetectCascade runs the search on a coarser swing sequence first and
// uses its surviving index ranges to seed the finer search. Both
// sequences must honor the input contract; validity rules are
// unchanged, only branching is reduced.
func (e *Engine) DetectCascade(coarse, fine []wave.SwingPoint, opts wave.Options, env Env) (*Result, error) {
	opts = opts.Normalized()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	coarseSegs, err := segment.Build(coarse, opts.SkipN)
	if err != nil {
		return nil, err
	}
	fineSegs, err := segment.Build(fine, opts.SkipN)
	if err != nil {
		return nil, err
	}

	coarseRaw, diag := search.Run(coarseSegs, opts, e.bounds)
	windows := search.SeedWindows(coarseRaw, seedPad(coarseSegs))
	fineRaw, fineDiag := search.RunSeeded(fineSegs, windows, opts, e.bounds)
	diag.Add(fineDiag)

	return e.finish(fineRaw, diag, fine, opts, env), nil
}

// finish applies the back half of the pipeline: agreement join,
// scoring, calibration, suppression, ranking.
func (e *Engine) finish(raw []wave.WavePattern, diag wave.Diagnostics, swings []wave.SwingPoint, opts wave.Options, env Env) *Result {
	var proposals []wave.Proposal
	if e.secondary != nil {
		// A failed secondary detector degrades to agreement=false.
		if props, err := e.secondary.Propose(swings); err == nil {
			proposals = props
		}
	}

	scored := e.scorer.Apply(raw, proposals, env, opts.MinConfidence)
	kept, suppressed := suppress.ByOverlap(scored, opts.NMSOverlap, opts.MaxPatterns)
	diag.Suppressed = suppressed

	return &Result{Patterns: kept, Diagnostics: diag}
}

// seedPad widens coarse seed windows by the median segment duration
// so fine candidates straddling a coarse boundary are not lost.
func seedPad(segs []wave.Segment) int {
	if len(segs) == 0 {
		return 0
	}
	total := 0
	for _, s := range segs {
		total += s.Duration
	}
	return total / len(segs)
}
