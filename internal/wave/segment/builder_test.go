package segment

import (
	"reflect"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"

	apperrors "wavescan/internal/errors"
	"wavescan/internal/wave"
)

// swingsFromPrices builds a strictly alternating swing sequence. The
// first kind follows from the first move's direction.
func swingsFromPrices(prices []float64) []wave.SwingPoint {
	if len(prices) < 2 {
		return nil
	}
	first := wave.KindLow
	if prices[1] < prices[0] {
		first = wave.KindHigh
	}
	out := make([]wave.SwingPoint, len(prices))
	kind := first
	for i, p := range prices {
		out[i] = wave.SwingPoint{Index: i * 4, Price: p, Kind: kind}
		kind = kind.Opposite()
	}
	return out
}

func TestValidate_Rejects(t *testing.T) {
	cases := []struct {
		name   string
		swings []wave.SwingPoint
	}{
		{"too short", []wave.SwingPoint{{Index: 0, Price: 100, Kind: wave.KindLow}}},
		{"duplicate index", []wave.SwingPoint{
			{Index: 0, Price: 100, Kind: wave.KindLow},
			{Index: 0, Price: 110, Kind: wave.KindHigh},
		}},
		{"repeated kind", []wave.SwingPoint{
			{Index: 0, Price: 100, Kind: wave.KindLow},
			{Index: 4, Price: 95, Kind: wave.KindLow},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := Validate(tc.swings)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !apperrors.Is(err, apperrors.ErrInputValidation) {
				t.Errorf("error %v is not an input validation error", err)
			}
		})
	}
}

func TestBuild_NoSkips(t *testing.T) {
	swings := swingsFromPrices([]float64{100, 110, 105, 125, 115, 126})
	segs, err := Build(swings, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 5 {
		t.Fatalf("got %d segments, want 5", len(segs))
	}
	wantDirs := []wave.Direction{wave.DirUp, wave.DirDown, wave.DirUp, wave.DirDown, wave.DirUp}
	for i, s := range segs {
		if s.Direction != wantDirs[i] {
			t.Errorf("segment %d direction = %v, want %v", i, s.Direction, wantDirs[i])
		}
		if s.SkipCount != 0 {
			t.Errorf("segment %d skip count = %d, want 0", i, s.SkipCount)
		}
	}
	if segs[2].Amplitude != 20 {
		t.Errorf("segment 2 amplitude = %f, want 20", segs[2].Amplitude)
	}
}

func TestBuild_MergesSmallestPair(t *testing.T) {
	// The 105-106 blip is the smallest interior pair; one merge
	// absorbs it so the decline runs 110 down to 104 uninterrupted.
	swings := swingsFromPrices([]float64{100, 110, 105, 106, 104, 125, 115, 126})
	segs, err := Build(swings, 1)
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 5 {
		t.Fatalf("got %d segments, want 5", len(segs))
	}

	merged := segs[1]
	if merged.Start.Price != 110 || merged.End.Price != 104 {
		t.Errorf("merged segment spans %f..%f, want 110..104", merged.Start.Price, merged.End.Price)
	}
	if merged.SkipCount != 2 {
		t.Errorf("merged segment skip count = %d, want 2", merged.SkipCount)
	}
}

func TestBuild_SkipBudgetBeyondInterior(t *testing.T) {
	// A skip budget larger than the interior can absorb is not an
	// error; merging just stops.
	swings := swingsFromPrices([]float64{100, 110, 105, 125})
	segs, err := Build(swings, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(segs) != 1 {
		t.Fatalf("got %d segments, want 1", len(segs))
	}
	if segs[0].Start.Price != 100 || segs[0].End.Price != 125 {
		t.Errorf("segment spans %f..%f, want 100..125", segs[0].Start.Price, segs[0].End.Price)
	}
}

func TestBuild_NegativeSkip(t *testing.T) {
	swings := swingsFromPrices([]float64{100, 110})
	if _, err := Build(swings, -1); err == nil {
		t.Fatal("expected validation error for negative skip")
	}
}

// alternatingPricesGen produces price slices whose consecutive values
// differ, so the derived kinds strictly alternate.
func alternatingPricesGen(minLen, maxLen int) gopter.Gen {
	return gen.IntRange(minLen, maxLen).FlatMap(func(v interface{}) gopter.Gen {
		n := v.(int)
		return gen.SliceOfN(n, gen.Float64Range(1.0, 1000.0)).Map(func(raw []float64) []float64 {
			out := make([]float64, len(raw))
			up := true
			prev := 500.0
			for i, r := range raw {
				delta := 1.0 + r/10
				if up {
					prev += delta
				} else {
					prev -= delta
				}
				out[i] = prev
				up = !up
			}
			return out
		})
	}, reflect.TypeOf([]float64{}))
}

// Merging preserves the endpoints, keeps segments contiguous, and is
// deterministic.
func TestProperty_BuildInvariants(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 100
	properties := gopter.NewProperties(parameters)

	properties.Property("build preserves endpoints and contiguity", prop.ForAll(
		func(prices []float64, skipN int) bool {
			swings := swingsFromPrices(prices)
			segs, err := Build(swings, skipN)
			if err != nil {
				t.Logf("build failed for %d swings skip %d: %v", len(swings), skipN, err)
				return false
			}
			if len(segs) == 0 {
				return false
			}
			if segs[0].Start != swings[0] || segs[len(segs)-1].End != swings[len(swings)-1] {
				t.Log("endpoints not preserved")
				return false
			}
			for i := 1; i < len(segs); i++ {
				if segs[i].Start != segs[i-1].End {
					t.Log("segments not contiguous")
					return false
				}
				if segs[i].Direction == segs[i-1].Direction {
					t.Log("adjacent segments share a direction")
					return false
				}
			}

			again, err := Build(swings, skipN)
			if err != nil || !reflect.DeepEqual(segs, again) {
				t.Log("build not deterministic")
				return false
			}
			return true
		},
		alternatingPricesGen(4, 24),
		gen.IntRange(0, 4),
	))

	properties.TestingRun(t)
}
