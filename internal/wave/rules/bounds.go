// Package rules evaluates candidate turning-point sequences against
// the wave pattern grammar, reporting signed margins for every rule.
package rules

import (
	_ "embed"
	"sync"

	"gopkg.in/yaml.v3"

	apperrors "wavescan/internal/errors"
)

//go:embed bounds.yaml
var boundsYAML []byte

// ImpulseBounds holds the numeric bounds for impulse rules.
type ImpulseBounds struct {
	Wave2MaxRetrace         float64 `yaml:"wave2_max_retrace"`
	Wave2SoftRetrace        float64 `yaml:"wave2_soft_retrace"`
	Wave4OverlapAllowance   float64 `yaml:"wave4_overlap_allowance"`
	Wave4DiagonalAllowance  float64 `yaml:"wave4_diagonal_allowance"`
	Wave5EqualityTolerance  float64 `yaml:"wave5_equality_tolerance"`
	Wave5ExtensionTolerance float64 `yaml:"wave5_extension_tolerance"`
	Wave5TruncationMin      float64 `yaml:"wave5_truncation_min"`
	Wave3ExtensionRatio     float64 `yaml:"wave3_extension_ratio"`
}

// CorrectionBounds holds the numeric bounds for A-B-C rules.
type CorrectionBounds struct {
	ZigzagBMinRetrace float64 `yaml:"zigzag_b_min_retrace"`
	ZigzagBMaxRetrace float64 `yaml:"zigzag_b_max_retrace"`
	FlatBMinRetrace   float64 `yaml:"flat_b_min_retrace"`
	FlatBMaxRetrace   float64 `yaml:"flat_b_max_retrace"`
	CMinRatio         float64 `yaml:"c_min_ratio"`
	CMaxRatio         float64 `yaml:"c_max_ratio"`
}

// FibBounds holds the canonical Fibonacci levels and tolerance band.
type FibBounds struct {
	Tolerance float64   `yaml:"tolerance"`
	Levels    []float64 `yaml:"levels"`
}

// Bounds is the full rule-bound configuration table.
type Bounds struct {
	Impulse    ImpulseBounds    `yaml:"impulse"`
	Correction CorrectionBounds `yaml:"correction"`
	Fib        FibBounds        `yaml:"fib"`
}

// Validate checks internal consistency of the bounds table.
func (b Bounds) Validate() error {
	if b.Impulse.Wave2MaxRetrace <= 0 {
		return apperrors.NewValidationError("wave2_max_retrace", b.Impulse.Wave2MaxRetrace, "must be positive")
	}
	if b.Impulse.Wave4DiagonalAllowance < b.Impulse.Wave4OverlapAllowance {
		return apperrors.NewValidationError("wave4_diagonal_allowance", b.Impulse.Wave4DiagonalAllowance, "must not be below the plain allowance")
	}
	if b.Correction.ZigzagBMinRetrace >= b.Correction.ZigzagBMaxRetrace {
		return apperrors.NewValidationError("zigzag_b_min_retrace", b.Correction.ZigzagBMinRetrace, "must be below the max retrace")
	}
	if b.Correction.CMinRatio >= b.Correction.CMaxRatio {
		return apperrors.NewValidationError("c_min_ratio", b.Correction.CMinRatio, "must be below c_max_ratio")
	}
	if b.Fib.Tolerance <= 0 {
		return apperrors.NewValidationError("fib.tolerance", b.Fib.Tolerance, "must be positive")
	}
	if len(b.Fib.Levels) == 0 {
		return apperrors.NewValidationError("fib.levels", 0, "must not be empty")
	}
	return nil
}

var (
	defaultBounds     Bounds
	defaultBoundsOnce sync.Once
)

// DefaultBounds returns the embedded bounds table. All numeric
// cutoffs (the wave-4 diagonal allowance, the fib tolerance band)
// live in bounds.yaml, never in rule code.
func DefaultBounds() Bounds {
	defaultBoundsOnce.Do(func() {
		if err := yaml.Unmarshal(boundsYAML, &defaultBounds); err != nil {
			panic("rules: embedded bounds.yaml is malformed: " + err.Error())
		}
		if err := defaultBounds.Validate(); err != nil {
			panic("rules: embedded bounds.yaml is inconsistent: " + err.Error())
		}
	})
	return defaultBounds
}
