package wave

import (
	apperrors "wavescan/internal/errors"
)

// Options are the resolved search parameters for one engine run.
// They are immutable per invocation; the tuner produces them before
// search starts.
type Options struct {
	// SkipN is the number of micro-swings the segment builder may
	// absorb to tolerate noise.
	SkipN int

	// MaxGap is the maximum number of segments a candidate may skip
	// while being extended by one leg.
	MaxGap int

	// BeamWidth is the number of candidates retained per search depth.
	BeamWidth int

	// MaxCandidatesPerStart caps the branches explored per distinct
	// start index.
	MaxCandidatesPerStart int

	// NodeBudget bounds total extensions explored by one search run.
	// Exhausting it is a soft cutoff, not an error.
	NodeBudget int

	// MaxPatterns caps the number of ranked patterns returned.
	MaxPatterns int

	// MinConfidence marks (but never drops) low-confidence patterns.
	MinConfidence float64

	// NMSOverlap is the index-range overlap fraction above which a
	// lower-scoring pattern is suppressed.
	NMSOverlap float64

	// AllowDiagonal relaxes the wave-4 overlap rule for diagonal
	// impulse variants.
	AllowDiagonal bool
}

// DefaultOptions returns the documented defaults for unset fields.
func DefaultOptions() Options {
	return Options{
		SkipN:                 0,
		MaxGap:                1,
		BeamWidth:             64,
		MaxCandidatesPerStart: 256,
		NodeBudget:            20000,
		MaxPatterns:           50,
		MinConfidence:         0.5,
		NMSOverlap:            0.70,
		AllowDiagonal:         false,
	}
}

// Normalized fills zero-valued capacity fields with their defaults.
// SkipN and MaxGap are left alone: zero is a meaningful setting for
// both (no noise absorption, contiguous legs only), and their
// defaults come from DefaultOptions and the config layer.
func (o Options) Normalized() Options {
	def := DefaultOptions()
	if o.BeamWidth == 0 {
		o.BeamWidth = def.BeamWidth
	}
	if o.MaxCandidatesPerStart == 0 {
		o.MaxCandidatesPerStart = def.MaxCandidatesPerStart
	}
	if o.NodeBudget == 0 {
		o.NodeBudget = def.NodeBudget
	}
	if o.MaxPatterns == 0 {
		o.MaxPatterns = def.MaxPatterns
	}
	if o.NMSOverlap == 0 {
		o.NMSOverlap = def.NMSOverlap
	}
	return o
}

// Validate checks option invariants. Invalid options are fatal to the
// call and never silently repaired.
func (o Options) Validate() error {
	if o.SkipN < 0 {
		return apperrors.NewValidationError("skip_n", o.SkipN, "must be non-negative")
	}
	if o.MaxGap < 0 {
		return apperrors.NewValidationError("max_gap", o.MaxGap, "must be non-negative")
	}
	if o.BeamWidth <= 0 {
		return apperrors.NewValidationError("beam_width", o.BeamWidth, "must be positive")
	}
	if o.MaxCandidatesPerStart <= 0 {
		return apperrors.NewValidationError("max_candidates_per_start", o.MaxCandidatesPerStart, "must be positive")
	}
	if o.NodeBudget <= 0 {
		return apperrors.NewValidationError("node_budget", o.NodeBudget, "must be positive")
	}
	if o.MaxPatterns <= 0 {
		return apperrors.NewValidationError("max_patterns", o.MaxPatterns, "must be positive")
	}
	if o.MinConfidence < 0 || o.MinConfidence > 1 {
		return apperrors.NewValidationError("min_confidence", o.MinConfidence, "must be in [0, 1]")
	}
	if o.NMSOverlap <= 0 || o.NMSOverlap >= 1 {
		return apperrors.NewValidationError("nms_overlap_threshold", o.NMSOverlap, "must be in (0, 1)")
	}
	return nil
}
