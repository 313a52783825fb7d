package score

import (
	"math"

	apperrors "wavescan/internal/errors"
	"wavescan/internal/wave"
)

// Logistic returns a logistic calibrator centered at mid with the
// given slope. It is strictly monotonic for slope > 0.
func Logistic(mid, slope float64) wave.Calibrator {
	return func(score float64) float64 {
		return 1.0 / (1.0 + math.Exp(-(score-mid)*slope))
	}
}

// DefaultCalibrator is the logistic curve used when no externally
// fitted mapping is supplied.
func DefaultCalibrator() wave.Calibrator {
	return Logistic(2.5, 1.0)
}

// PiecewiseLinear builds a monotonic calibrator from externally
// fitted knots (an isotonic-regression style mapping). xs must be
// strictly increasing and ys non-decreasing within [0, 1]. Scores
// outside the knot range clamp to the end values.
func PiecewiseLinear(xs, ys []float64) (wave.Calibrator, error) {
	if len(xs) < 2 || len(xs) != len(ys) {
		return nil, apperrors.NewValidationError("calibration", len(xs), "need at least 2 matching knots")
	}
	for i := 1; i < len(xs); i++ {
		if xs[i] <= xs[i-1] {
			return nil, apperrors.NewValidationError("calibration", xs[i], "knot scores must strictly increase")
		}
		if ys[i] < ys[i-1] {
			return nil, apperrors.NewValidationError("calibration", ys[i], "knot confidences must not decrease")
		}
	}
	for _, y := range ys {
		if y < 0 || y > 1 {
			return nil, apperrors.NewValidationError("calibration", y, "knot confidences must be in [0, 1]")
		}
	}

	knotsX := append([]float64(nil), xs...)
	knotsY := append([]float64(nil), ys...)
	return func(score float64) float64 {
		if score <= knotsX[0] {
			return knotsY[0]
		}
		last := len(knotsX) - 1
		if score >= knotsX[last] {
			return knotsY[last]
		}
		for i := 1; i <= last; i++ {
			if score <= knotsX[i] {
				t := (score - knotsX[i-1]) / (knotsX[i] - knotsX[i-1])
				return knotsY[i-1] + t*(knotsY[i]-knotsY[i-1])
			}
		}
		return knotsY[last]
	}, nil
}
