// Package wave defines the shared types and contracts for the wave
// candidate detection engine: swing points, segments, validated wave
// patterns, and the capability interfaces the pipeline stages plug into.
package wave

import (
	"time"
)

// PointKind marks a swing point as a local high or low.
type PointKind string

const (
	KindHigh PointKind = "high"
	KindLow  PointKind = "low"
)

// Opposite returns the alternating counterpart of a point kind.
func (k PointKind) Opposite() PointKind {
	if k == KindHigh {
		return KindLow
	}
	return KindHigh
}

// SwingPoint is a directional turning point produced by an external
// swing extractor. Within a sequence, kinds strictly alternate and
// indices strictly increase.
type SwingPoint struct {
	Index     int
	Timestamp time.Time
	Price     float64
	Kind      PointKind
}

// Direction represents the direction of a price move.
type Direction int

const (
	DirDown Direction = -1
	DirFlat Direction = 0
	DirUp   Direction = 1
)

func (d Direction) String() string {
	switch d {
	case DirUp:
		return "up"
	case DirDown:
		return "down"
	default:
		return "flat"
	}
}

// DirectionOf returns the sign of a price move.
func DirectionOf(from, to float64) Direction {
	switch {
	case to > from:
		return DirUp
	case to < from:
		return DirDown
	default:
		return DirFlat
	}
}

// Segment is a directional move between two post-merge swing points
// (a "monowave"). Segments reference the originating swing points,
// they do not copy the underlying series.
type Segment struct {
	Start     SwingPoint
	End       SwingPoint
	Direction Direction
	Amplitude float64 // absolute price move
	Duration  int     // End.Index - Start.Index
	SkipCount int     // raw swings absorbed by noise merging
}

// NewSegment builds a segment between two swing points.
func NewSegment(start, end SwingPoint, skipCount int) Segment {
	amp := end.Price - start.Price
	if amp < 0 {
		amp = -amp
	}
	return Segment{
		Start:     start,
		End:       end,
		Direction: DirectionOf(start.Price, end.Price),
		Amplitude: amp,
		Duration:  end.Index - start.Index,
		SkipCount: skipCount,
	}
}

// WavePoint is a turning point inside a validated pattern.
type WavePoint struct {
	Index int
	Price float64
}

// PatternType identifies the grammar a pattern was validated against.
type PatternType string

const (
	PatternImpulse    PatternType = "impulse_12345"
	PatternCorrection PatternType = "correction_abc"
)

// PointCount returns the number of turning points the pattern type
// requires: 6 for a 5-leg impulse, 4 for an A-B-C correction.
func (t PatternType) PointCount() int {
	if t == PatternImpulse {
		return 6
	}
	return 4
}

// WavePattern is a validated, scored pattern. It is immutable once
// produced: ranking filters and reorders collections, never patterns.
type WavePattern struct {
	Type       PatternType
	Points     []WavePoint
	Score      float64
	Confidence float64
	Margins    map[string]float64
	Agreement  bool
	Meta       map[string]string
}

// StartIndex returns the index of the first turning point.
func (p *WavePattern) StartIndex() int {
	if len(p.Points) == 0 {
		return 0
	}
	return p.Points[0].Index
}

// EndIndex returns the index of the last turning point.
func (p *WavePattern) EndIndex() int {
	if len(p.Points) == 0 {
		return 0
	}
	return p.Points[len(p.Points)-1].Index
}

// Direction returns the direction of the pattern's first leg.
func (p *WavePattern) Direction() Direction {
	if len(p.Points) < 2 {
		return DirFlat
	}
	return DirectionOf(p.Points[0].Price, p.Points[1].Price)
}

// Diagnostics exposes read-only search counters for the caller to log
// or export. The engine itself performs no logging.
type Diagnostics struct {
	SegmentsBuilt   int
	Explored        int
	Pruned          int
	Suppressed      int
	BudgetExhausted bool
}

// Add merges counters from another diagnostics value.
func (d *Diagnostics) Add(other Diagnostics) {
	d.SegmentsBuilt += other.SegmentsBuilt
	d.Explored += other.Explored
	d.Pruned += other.Pruned
	d.Suppressed += other.Suppressed
	d.BudgetExhausted = d.BudgetExhausted || other.BudgetExhausted
}

// Proposal is an index-range candidate proposed by a secondary
// detector.
type Proposal struct {
	StartIndex int
	EndIndex   int
	Direction  Direction
}

// RangeProposer is anything that can propose index-range candidates
// from a swing sequence. Secondary heuristics implement this so the
// primary search never depends on a concrete detector.
type RangeProposer interface {
	Name() string
	Propose(swings []SwingPoint) ([]Proposal, error)
}

// Calibrator maps a raw score to a confidence in [0, 1]. The mapping
// is fit externally from historical outcomes; the engine only applies
// it and requires it to be monotonic.
type Calibrator func(score float64) float64

// OverlapFraction returns the intersection-over-union of two closed
// index ranges. Degenerate ranges yield 0.
func OverlapFraction(aStart, aEnd, bStart, bEnd int) float64 {
	interLo := aStart
	if bStart > interLo {
		interLo = bStart
	}
	interHi := aEnd
	if bEnd < interHi {
		interHi = bEnd
	}
	inter := interHi - interLo
	if inter < 0 {
		inter = 0
	}
	unionLo := aStart
	if bStart < unionLo {
		unionLo = bStart
	}
	unionHi := aEnd
	if bEnd > unionHi {
		unionHi = bEnd
	}
	union := unionHi - unionLo
	if union <= 0 {
		return 0
	}
	return float64(inter) / float64(union)
}
