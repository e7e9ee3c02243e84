package relocation

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat/distuv"
)

// PoissonTable holds Poisson probabilities for counts 0..cutoff.
//
// The tail beyond cutoff is dropped, not folded into the last entry, so the
// table sums to less than one. Expectations computed from it are biased low
// by up to 1-Mass() of the reward and successor value; see Residual.
type PoissonTable []float64

// NewPoissonTable tabulates the Poisson pmf with the given rate for counts
// 0..cutoff. A zero rate is the point mass at 0.
func NewPoissonTable(rate float64, cutoff int) PoissonTable {
	if cutoff < 0 {
		return PoissonTable{}
	}
	t := make(PoissonTable, cutoff+1)
	if rate == 0 {
		t[0] = 1
		return t
	}
	dist := distuv.Poisson{Lambda: rate}
	for n := range t {
		t[n] = dist.Prob(float64(n))
	}
	return t
}

// Mass returns the total probability retained by the table.
func (t PoissonTable) Mass() float64 {
	return floats.Sum(t)
}

// Residual returns the probability mass discarded by truncation.
func (t PoissonTable) Residual() float64 {
	return 1 - t.Mass()
}

// DistributionCache maps each rate to its truncated table.
// Built once, read-only afterwards; safe for any number of concurrent readers.
type DistributionCache map[float64]PoissonTable

// NewDistributionCache builds one table per distinct rate.
func NewDistributionCache(cutoff int, rates ...float64) DistributionCache {
	c := make(DistributionCache, len(rates))
	for _, r := range rates {
		if _, ok := c[r]; ok {
			continue
		}
		c[r] = NewPoissonTable(r, cutoff)
	}
	return c
}

// Table returns the table for rate, or nil if the rate was not precomputed.
func (c DistributionCache) Table(rate float64) PoissonTable {
	return c[rate]
}
