package engine

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"wavescan/internal/wave"
)

func enginePricesGen() gopter.Gen {
	return gen.IntRange(6, 16).FlatMap(func(v interface{}) gopter.Gen {
		n := v.(int)
		return gen.SliceOfN(n, gen.Float64Range(1.0, 100.0)).Map(func(raw []float64) []float64 {
			out := make([]float64, len(raw))
			up := true
			prev := 500.0
			for i, r := range raw {
				if up {
					prev += 1 + r
				} else {
					prev -= 1 + r
				}
				out[i] = prev
				up = !up
			}
			return out
		})
	}, reflect.TypeOf([]float64{}))
}

func bestScore(r *Result) (float64, bool) {
	if len(r.Patterns) == 0 {
		return 0, false
	}
	return r.Patterns[0].Score, true
}

// Widening the beam or raising the node budget keeps every candidate
// the narrower run kept, so the best achievable score never drops.
func TestProperty_BudgetMonotonicity(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	e := New()

	properties.Property("wider beam never loses the best pattern", prop.ForAll(
		func(prices []float64) bool {
			in := swings(prices...)

			narrow := wave.DefaultOptions()
			narrow.BeamWidth = 4
			wide := narrow
			wide.BeamWidth = 64

			a, err := e.Detect(in, narrow, Env{})
			if err != nil {
				t.Logf("narrow detect failed: %v", err)
				return false
			}
			b, err := e.Detect(in, wide, Env{})
			if err != nil {
				t.Logf("wide detect failed: %v", err)
				return false
			}
			sa, okA := bestScore(a)
			sb, okB := bestScore(b)
			if okA && !okB {
				t.Log("wider beam lost all patterns")
				return false
			}
			if okA && okB && sb < sa {
				t.Logf("wider beam best %f below narrower %f", sb, sa)
				return false
			}
			return true
		},
		enginePricesGen(),
	))

	properties.Property("larger node budget never loses the best pattern", prop.ForAll(
		func(prices []float64) bool {
			in := swings(prices...)

			small := wave.DefaultOptions()
			small.NodeBudget = 40
			large := small
			large.NodeBudget = 20000

			a, err := e.Detect(in, small, Env{})
			if err != nil {
				t.Logf("small-budget detect failed: %v", err)
				return false
			}
			b, err := e.Detect(in, large, Env{})
			if err != nil {
				t.Logf("large-budget detect failed: %v", err)
				return false
			}
			sa, okA := bestScore(a)
			sb, okB := bestScore(b)
			if okA && !okB {
				t.Log("larger budget lost all patterns")
				return false
			}
			if okA && okB && sb < sa {
				t.Logf("larger budget best %f below smaller %f", sb, sa)
				return false
			}
			return true
		},
		enginePricesGen(),
	))

	properties.TestingRun(t)
}
