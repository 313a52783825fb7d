package search

import (
	"reflect"
	"strings"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	"wavescan/internal/wave"
	"wavescan/internal/wave/rules"
	"wavescan/internal/wave/segment"
)

func segsFromPrices(t *testing.T, prices []float64) []wave.Segment {
	t.Helper()
	if len(prices) < 2 {
		return nil
	}
	first := wave.KindLow
	if prices[1] < prices[0] {
		first = wave.KindHigh
	}
	swings := make([]wave.SwingPoint, len(prices))
	kind := first
	for i, p := range prices {
		swings[i] = wave.SwingPoint{Index: i * 4, Price: p, Kind: kind}
		kind = kind.Opposite()
	}
	segs, err := segment.Build(swings, 0)
	if err != nil {
		t.Fatalf("building segments: %v", err)
	}
	return segs
}

func TestRun_FindsTextbookImpulse(t *testing.T) {
	segs := segsFromPrices(t, []float64{100, 110, 105, 125, 115, 126})
	patterns, diag := Run(segs, wave.DefaultOptions(), rules.DefaultBounds())

	var impulses []wave.WavePattern
	for _, p := range patterns {
		if p.Type == wave.PatternImpulse {
			impulses = append(impulses, p)
		}
	}
	if len(impulses) != 1 {
		t.Fatalf("got %d impulses, want 1 (patterns: %v)", len(impulses), patterns)
	}
	imp := impulses[0]
	if len(imp.Points) != 6 {
		t.Fatalf("impulse has %d points, want 6", len(imp.Points))
	}
	if imp.StartIndex() != 0 || imp.EndIndex() != 20 {
		t.Errorf("impulse spans %d..%d, want 0..20", imp.StartIndex(), imp.EndIndex())
	}
	for name, m := range imp.Margins {
		if strings.HasPrefix(name, "fib_") || strings.HasPrefix(name, "soft_") {
			continue
		}
		if m < 0 {
			t.Errorf("hard margin %s = %f, want >= 0", name, m)
		}
	}
	if diag.Explored == 0 {
		t.Error("diagnostics did not count explored nodes")
	}
	if diag.BudgetExhausted {
		t.Error("budget flagged exhausted on a trivial input")
	}
}

func TestRun_TooFewSegments(t *testing.T) {
	segs := segsFromPrices(t, []float64{100, 110, 105})
	patterns, _ := Run(segs, wave.DefaultOptions(), rules.DefaultBounds())
	if len(patterns) != 0 {
		t.Fatalf("got %d patterns from 2 segments, want 0", len(patterns))
	}
}

func TestRun_BudgetExhaustion(t *testing.T) {
	segs := segsFromPrices(t, []float64{100, 110, 105, 125, 115, 126, 118, 140, 130, 150})
	opts := wave.DefaultOptions()
	opts.NodeBudget = 3
	_, diag := Run(segs, opts, rules.DefaultBounds())
	if !diag.BudgetExhausted {
		t.Fatal("tiny budget not flagged as exhausted")
	}
	if diag.Explored > opts.NodeBudget {
		t.Errorf("explored %d nodes past a budget of %d", diag.Explored, opts.NodeBudget)
	}
}

func TestRun_BranchCapSingleCandidatePerStart(t *testing.T) {
	// With beam 1 and one branch per start, each grammar can finish at
	// most one candidate, whatever the gap setting allows.
	segs := segsFromPrices(t, []float64{100, 110, 105, 125, 115, 126, 118, 140, 130, 150})
	opts := wave.DefaultOptions()
	opts.MaxCandidatesPerStart = 1
	opts.BeamWidth = 1
	opts.MaxGap = 2

	patterns, diag := Run(segs, opts, rules.DefaultBounds())

	perType := map[wave.PatternType]int{}
	for _, p := range patterns {
		perType[p.Type]++
	}
	for typ, n := range perType {
		if n > 1 {
			t.Errorf("%s finished %d candidates with beam 1, want at most 1", typ, n)
		}
	}
	starts := map[int]int{}
	for _, p := range patterns {
		starts[p.StartIndex()]++
		if starts[p.StartIndex()] > 2 {
			t.Errorf("start %d produced more than one candidate per grammar", p.StartIndex())
		}
	}
	if diag.Pruned == 0 {
		t.Error("tight caps pruned nothing on a branching input")
	}
}

func TestRunSeeded_EmptyWindows(t *testing.T) {
	segs := segsFromPrices(t, []float64{100, 110, 105, 125, 115, 126})
	patterns, _ := RunSeeded(segs, []Window{}, wave.DefaultOptions(), rules.DefaultBounds())
	if len(patterns) != 0 {
		t.Fatalf("got %d patterns with no seed windows, want 0", len(patterns))
	}
}

func TestRunSeeded_WindowAdmitsStart(t *testing.T) {
	segs := segsFromPrices(t, []float64{100, 110, 105, 125, 115, 126})
	full, _ := Run(segs, wave.DefaultOptions(), rules.DefaultBounds())
	seeded, _ := RunSeeded(segs, []Window{{Start: 0, End: 100}}, wave.DefaultOptions(), rules.DefaultBounds())
	if !reflect.DeepEqual(full, seeded) {
		t.Fatal("all-covering window changed the result")
	}
}

func TestSeedWindows_Coalesces(t *testing.T) {
	patterns := []wave.WavePattern{
		{Points: []wave.WavePoint{{Index: 10}, {Index: 30}}},
		{Points: []wave.WavePoint{{Index: 25}, {Index: 50}}},
		{Points: []wave.WavePoint{{Index: 80}, {Index: 90}}},
	}
	windows := SeedWindows(patterns, 5)
	want := []Window{{Start: 5, End: 55}, {Start: 75, End: 95}}
	if !reflect.DeepEqual(windows, want) {
		t.Fatalf("windows = %v, want %v", windows, want)
	}
}

func TestSeedWindows_Empty(t *testing.T) {
	if w := SeedWindows(nil, 5); w != nil {
		t.Fatalf("windows = %v, want nil", w)
	}
}

func searchPricesGen() gopter.Gen {
	return gen.IntRange(6, 20).FlatMap(func(v interface{}) gopter.Gen {
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

// The search is a pure function of its input: identical calls return
// the identical pattern list in the identical order.
func TestProperty_RunDeterministic(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	bounds := rules.DefaultBounds()

	properties.Property("identical inputs give identical output", prop.ForAll(
		func(prices []float64) bool {
			segs := segsFromPrices(t, prices)
			opts := wave.DefaultOptions()
			a, diagA := Run(segs, opts, bounds)
			b, diagB := Run(segs, opts, bounds)
			return reflect.DeepEqual(a, b) && diagA == diagB
		},
		searchPricesGen(),
	))

	properties.Property("every result satisfies its grammar", prop.ForAll(
		func(prices []float64) bool {
			segs := segsFromPrices(t, prices)
			patterns, _ := Run(segs, wave.DefaultOptions(), bounds)
			for _, p := range patterns {
				if len(p.Points) != p.Type.PointCount() {
					t.Logf("%s pattern with %d points", p.Type, len(p.Points))
					return false
				}
				var report rules.Report
				if p.Type == wave.PatternImpulse {
					report = rules.EvaluateImpulse(p.Points, bounds, false)
				} else {
					report = rules.EvaluateCorrection(p.Points, bounds)
				}
				if !report.Valid {
					t.Logf("returned pattern fails re-evaluation: %v", p)
					return false
				}
			}
			return true
		},
		searchPricesGen(),
	))

	properties.TestingRun(t)
}
