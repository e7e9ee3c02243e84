// Package testutil provides shared test infrastructure for the dp packages.
package testutil

import (
	"math"
	"math/rand"
	"testing"
)

// AssertFloat64Equal compares two float64 values with relative tolerance.
func AssertFloat64Equal(t *testing.T, name string, want, got, relTol float64) {
	t.Helper()
	if want == got {
		return
	}
	diff := math.Abs(want - got)
	maxVal := math.Max(math.Abs(want), math.Abs(got))
	if diff/maxVal > relTol {
		t.Errorf("%s: got %v, want %v (diff=%v, relDiff=%v)", name, got, want, diff, diff/maxVal)
	}
}

// AssertTablesClose fails if any entry of got differs from want by more than absTol.
// Reports only the first mismatch.
func AssertTablesClose(t *testing.T, name string, want, got []float64, absTol float64) {
	t.Helper()
	if len(want) != len(got) {
		t.Fatalf("%s: length %d, want %d", name, len(got), len(want))
	}
	for i := range want {
		if want[i] == got[i] {
			continue
		}
		if d := math.Abs(want[i] - got[i]); d > absTol || math.IsNaN(d) {
			t.Errorf("%s[%d]: got %v, want %v (diff=%v)", name, i, got[i], want[i], d)
			return
		}
	}
}

// RandomTable returns n values drawn uniformly from [lo, hi) with a fixed seed.
func RandomTable(seed int64, n int, lo, hi float64) []float64 {
	rng := rand.New(rand.NewSource(seed))
	v := make([]float64, n)
	for i := range v {
		v[i] = lo + rng.Float64()*(hi-lo)
	}
	return v
}
