// Package utils provides shared utility functions.
package utils

import (
	"fmt"
	"strconv"
)

// FormatPrice formats a price with a sensible number of decimals for
// its magnitude.
func FormatPrice(p float64) string {
	abs := p
	if abs < 0 {
		abs = -abs
	}
	switch {
	case abs >= 1000:
		return fmt.Sprintf("%.2f", p)
	case abs >= 1:
		return fmt.Sprintf("%.4f", p)
	default:
		return fmt.Sprintf("%.6f", p)
	}
}

// FormatRatio formats a leg ratio or margin.
func FormatRatio(r float64) string {
	return strconv.FormatFloat(r, 'f', 3, 64)
}

// FormatPercent formats a fraction as a percentage.
func FormatPercent(f float64) string {
	return fmt.Sprintf("%.1f%%", f*100)
}

// FormatSpan formats a closed index range.
func FormatSpan(start, end int) string {
	return fmt.Sprintf("[%d..%d]", start, end)
}
