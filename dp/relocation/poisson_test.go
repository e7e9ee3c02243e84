package relocation

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPoissonTable_ClosedFormAtSmallCounts(t *testing.T) {
	table := NewPoissonTable(3, 11)
	require.Len(t, table, 12)

	assert.InDelta(t, 0.0498, table[0], 1e-4)
	for k := 0; k <= 4; k++ {
		want := math.Exp(-3) * math.Pow(3, float64(k)) / float64(factorial(k))
		assert.InDelta(t, want, table[k], 1e-12, "count %d", k)
	}
}

func TestNewPoissonTable_NonNegativeAndSubUnitMass(t *testing.T) {
	for _, rate := range []float64{0.5, 2, 3, 4, 10} {
		for _, cutoff := range []int{0, 1, 5, 11, 30} {
			table := NewPoissonTable(rate, cutoff)
			for k, p := range table {
				assert.GreaterOrEqual(t, p, 0.0, "rate %g count %d", rate, k)
			}
			assert.LessOrEqual(t, table.Mass(), 1.0+1e-12, "rate %g cutoff %d", rate, cutoff)
			assert.InDelta(t, 1-table.Mass(), table.Residual(), 1e-15)
		}
	}
}

func TestNewPoissonTable_ResidualShrinksWithCutoff(t *testing.T) {
	// The truncation error is documented, not corrected: a larger cutoff keeps more mass.
	short := NewPoissonTable(4, 5).Residual()
	long := NewPoissonTable(4, 20).Residual()
	assert.Greater(t, short, long)
	assert.Greater(t, short, 0.1, "cutoff 5 at rate 4 drops a visible tail")
	assert.Less(t, long, 1e-6)
}

func TestNewPoissonTable_ZeroRate_PointMass(t *testing.T) {
	table := NewPoissonTable(0, 3)
	assert.Equal(t, PoissonTable{1, 0, 0, 0}, table)
}

func TestNewPoissonTable_NegativeCutoff_Empty(t *testing.T) {
	assert.Empty(t, NewPoissonTable(3, -1))
}

func TestNewDistributionCache_OneTablePerDistinctRate(t *testing.T) {
	cache := NewDistributionCache(11, 3, 4, 3, 2)
	assert.Len(t, cache, 3)
	assert.Equal(t, NewPoissonTable(4, 11), cache.Table(4))
	assert.Nil(t, cache.Table(7))
}

func factorial(n int) int {
	f := 1
	for i := 2; i <= n; i++ {
		f *= i
	}
	return f
}
