// Package relocation models two locations exchanging interchangeable units
// under independent Poisson demand and replenishment.
//
// A state is the pair of unit counts (A, B). Each step the planner moves
// |action| units (A→B when positive, B→A when negative) at a fixed cost per
// unit, then demand is served from what is on hand and returned units arrive.
// Both counts are capped at Capacity.
package relocation

import (
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/dpsim/dpsim/dp"
)

// State is the number of units at each location.
type State struct {
	A, B int
}

// Model implements dp.Model for the relocation problem.
// All fields are fixed at construction; Evaluate and Backup are safe for
// concurrent use.
type Model struct {
	cfg   Config
	size  int // Capacity + 1
	cache DistributionCache

	demandA, demandB       PoissonTable
	replenishA, replenishB PoissonTable

	// Factored expectation: per-location transition matrices from the
	// post-transfer count to the next count, expected reward per
	// post-transfer count, and the joint mass retained per location.
	transA, transB   *mat.Dense
	rewardA, rewardB []float64
	massA, massB     float64
}

var _ dp.Model = (*Model)(nil)

// NewModel validates cfg and precomputes the distribution cache.
func NewModel(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if cfg.Expectation == "" {
		cfg.Expectation = ExpectationExact
	}
	m := &Model{
		cfg:   cfg,
		size:  cfg.Capacity + 1,
		cache: NewDistributionCache(cfg.Cutoff, cfg.Rates()...),
	}
	m.demandA = m.cache.Table(cfg.DemandRateA)
	m.demandB = m.cache.Table(cfg.DemandRateB)
	m.replenishA = m.cache.Table(cfg.ReplenishRateA)
	m.replenishB = m.cache.Table(cfg.ReplenishRateB)
	for rate, t := range m.cache {
		logrus.Debugf("poisson rate %g truncated at %d: residual mass %.3g", rate, cfg.Cutoff, t.Residual())
	}

	m.transA, m.rewardA, m.massA = m.locationKernel(m.demandA, m.replenishA)
	m.transB, m.rewardB, m.massB = m.locationKernel(m.demandB, m.replenishB)
	return m, nil
}

// Config returns the model's configuration.
func (m *Model) Config() Config { return m.cfg }

// Cache returns the precomputed distribution tables.
func (m *Model) Cache() DistributionCache { return m.cache }

// NumStates returns (Capacity+1)².
func (m *Model) NumStates() int { return m.size * m.size }

// Index maps a state to its flat table index.
func (m *Model) Index(s State) int { return s.A*m.size + s.B }

// StateAt maps a flat table index back to a state.
func (m *Model) StateAt(i int) State { return State{A: i / m.size, B: i % m.size} }

// Feasible reports whether action keeps both counts in [0, Capacity].
func (m *Model) Feasible(s State, action int) bool {
	a, b := s.A-action, s.B+action
	return a >= 0 && a <= m.cfg.Capacity && b >= 0 && b <= m.cfg.Capacity
}

// Actions appends every feasible transfer in [-MaxAction, MaxAction], ascending.
func (m *Model) Actions(i int, buf []int) []int {
	s := m.StateAt(i)
	for a := -m.cfg.MaxAction; a <= m.cfg.MaxAction; a++ {
		if m.Feasible(s, a) {
			buf = append(buf, a)
		}
	}
	return buf
}

// DefaultAction is the zero transfer, feasible in every state.
func (m *Model) DefaultAction(int) int { return 0 }

// Backup is Evaluate on a flat state index.
func (m *Model) Backup(i, action int, v []float64) float64 {
	return m.Evaluate(m.StateAt(i), action, v)
}

// Evaluate returns the expected one-step reward plus discounted successor
// value of moving action units from A to B in state s, or dp.Infeasible if
// the transfer would leave either location outside [0, Capacity].
//
// v is a flat value table indexed by Index; a table of any other length panics.
func (m *Model) Evaluate(s State, action int, v []float64) float64 {
	if len(v) != m.size*m.size {
		panic(fmt.Sprintf("relocation: value table has %d entries, want %d", len(v), m.size*m.size))
	}
	if !m.Feasible(s, action) {
		return dp.Infeasible
	}
	cost := m.cfg.TransferCost * math.Abs(float64(action))
	a := m.clip(s.A - action)
	b := m.clip(s.B + action)

	if m.cfg.Expectation == ExpectationFactored {
		return m.factored(a, b, v) - cost
	}
	return m.exact(a, b, v) - cost
}

// exact enumerates every combination of the four truncated counts.
// Order per location: serve demand from post-transfer stock, then add
// returns and cap at Capacity.
func (m *Model) exact(a, b int, v []float64) float64 {
	gamma := m.cfg.Discount
	total := 0.0
	for dA, pdA := range m.demandA {
		servedA := min(a, dA)
		leftA := a - servedA
		for dB, pdB := range m.demandB {
			servedB := min(b, dB)
			leftB := b - servedB
			pDemand := pdA * pdB
			reward := m.cfg.RewardPerUnit * float64(servedA+servedB)
			for rA, prA := range m.replenishA {
				row := m.clip(leftA+rA) * m.size
				for rB, prB := range m.replenishB {
					p := pDemand * prA * prB
					total += p * (reward + gamma*v[row+m.clip(leftB+rB)])
				}
			}
		}
	}
	return total
}

// factored computes the same sum as exact. Demand and returns at A are
// independent of those at B and the reward is additive, so the joint sum
// splits into R_A(a)·m_B + R_B(b)·m_A + γ·P_A[a,:]·V·P_B[b,:]ᵀ.
func (m *Model) factored(a, b int, v []float64) float64 {
	vm := mat.NewDense(m.size, m.size, v)
	future := mat.Inner(m.transA.RowView(a), vm, m.transB.RowView(b))
	return m.rewardA[a]*m.massB + m.rewardB[b]*m.massA + m.cfg.Discount*future
}

// locationKernel builds one location's transition matrix, expected reward
// vector and retained mass from its demand and replenishment tables.
func (m *Model) locationKernel(demand, replenish PoissonTable) (*mat.Dense, []float64, float64) {
	trans := mat.NewDense(m.size, m.size, nil)
	reward := make([]float64, m.size)
	replenishMass := replenish.Mass()
	for n := 0; n < m.size; n++ {
		served := 0.0
		for d, pd := range demand {
			s := min(n, d)
			served += pd * float64(s)
			for r, pr := range replenish {
				next := m.clip(n - s + r)
				trans.Set(n, next, trans.At(n, next)+pd*pr)
			}
		}
		reward[n] = m.cfg.RewardPerUnit * served * replenishMass
	}
	return trans, reward, demand.Mass() * replenishMass
}

func (m *Model) clip(n int) int {
	return max(0, min(n, m.cfg.Capacity))
}
