package rules

// MaxViolation is the margin assigned when a rule cannot be evaluated
// numerically (zero-amplitude legs, zero denominators). Rule
// evaluation always produces a defined margin, never an error.
const MaxViolation = -1.0

// Rule names reported in margins. Prefixes: "fib_" margins are soft
// and feed only the scorer; "soft_" margins are reported but do not
// affect validity.
const (
	RuleAlternation  = "alternation"
	RuleWave2Retrace = "wave2_retrace"
	RuleWave3Length  = "wave3_not_shortest"
	RuleWave3Beyond  = "wave3_beyond_wave1"
	RuleWave4Overlap = "wave4_overlap"
	RuleWave5        = "wave5_relation"
	RuleSoftWave2    = "soft_wave2_retrace"
	RuleSoftWave5End = "soft_wave5_beyond_wave3"
	RuleBRetrace     = "b_retrace"
	RuleCRelation    = "c_relation"
)

// Report is the outcome of evaluating one candidate against the
// grammar. All margins are reported even on failure so the scorer and
// diagnostics can see how close a rejected candidate came.
type Report struct {
	Valid    bool
	Margins  map[string]float64
	Diagonal bool   // wave-4 overlap accepted under the diagonal allowance
	Shape    string // correction sub-shape: "zigzag" or "flat"
}

// hard reports whether a margin name participates in validity.
func hard(name string) bool {
	if len(name) >= 4 && name[:4] == "fib_" {
		return false
	}
	if len(name) >= 5 && name[:5] == "soft_" {
		return false
	}
	return true
}

// finalize computes Valid from the hard margins.
func (r *Report) finalize() {
	r.Valid = true
	for name, m := range r.Margins {
		if hard(name) && m < 0 {
			r.Valid = false
			return
		}
	}
}

func abs(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

func maxf(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}

func minf(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}
