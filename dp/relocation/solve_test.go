package relocation

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpsim/dpsim/dp"
	"github.com/dpsim/dpsim/dp/internal/testutil"
	"github.com/dpsim/dpsim/dp/trace"
)

func factoredConfig() Config {
	cfg := DefaultConfig()
	cfg.Expectation = ExpectationFactored
	return cfg
}

func TestSolve_InvalidConfig_FailsBeforeComputation(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Discount = 1

	plan, err := Solve(context.Background(), cfg, dp.MethodPolicyIteration, dp.Options{})
	assert.Nil(t, plan)
	assert.True(t, errors.Is(err, dp.ErrInvalidConfiguration))
}

func TestSolve_UnknownMethod_Rejected(t *testing.T) {
	plan, err := Solve(context.Background(), DefaultConfig(), "monte-carlo", dp.Options{})
	assert.Nil(t, plan)
	assert.True(t, errors.Is(err, dp.ErrInvalidConfiguration))
}

func TestSolve_PolicyIteration_CanonicalProblem(t *testing.T) {
	// GIVEN the canonical problem
	plan, err := Solve(context.Background(), factoredConfig(), dp.MethodPolicyIteration,
		dp.Options{TraceLevel: trace.TraceLevelRounds})
	require.NoError(t, err)
	res := plan.Result

	// THEN policy iteration settles within a handful of rounds
	assert.True(t, res.Converged)
	assert.LessOrEqual(t, len(res.Rounds), 10)

	// AND the total value never decreases from one round to the next
	for i := 1; i < len(res.Rounds); i++ {
		assert.GreaterOrEqual(t, res.Rounds[i].ValueSum, res.Rounds[i-1].ValueSum-1e-2,
			"round %d", res.Rounds[i].Round)
	}
	assert.True(t, res.Summary(1e-2).Monotonic)

	// AND a full A with an empty B sends units towards B
	assert.Positive(t, plan.ActionAt(State{A: 20, B: 0}))
	// AND a full B with an empty A sends units back
	assert.Negative(t, plan.ActionAt(State{A: 0, B: 20}))
}

func TestSolve_PolicyIteration_PolicyBands(t *testing.T) {
	plan, err := Solve(context.Background(), factoredConfig(), dp.MethodPolicyIteration, dp.Options{})
	require.NoError(t, err)
	m, err := NewModel(factoredConfig())
	require.NoError(t, err)

	for a := 0; a <= 20; a++ {
		for b := 0; b <= 20; b++ {
			s := State{A: a, B: b}
			assert.True(t, m.Feasible(s, plan.ActionAt(s)), "state %v", s)
		}
	}
	// With B empty, the transfer grows with the stock at A.
	for a := 1; a <= 20; a++ {
		assert.GreaterOrEqual(t, plan.ActionAt(State{A: a, B: 0}), plan.ActionAt(State{A: a - 1, B: 0}), "A=%d", a)
	}
	// With A full, the transfer shrinks as B fills up.
	for b := 1; b <= 20; b++ {
		assert.LessOrEqual(t, plan.ActionAt(State{A: 20, B: b}), plan.ActionAt(State{A: 20, B: b - 1}), "B=%d", b)
	}
}

func TestSolve_PolicyEvaluationMatchesValueIteration(t *testing.T) {
	cfg := factoredConfig()
	cfg.Tolerance = 1e-7

	pi, err := Solve(context.Background(), cfg, dp.MethodPolicyIteration, dp.Options{})
	require.NoError(t, err)
	vi, err := Solve(context.Background(), cfg, dp.MethodValueIteration, dp.Options{})
	require.NoError(t, err)

	testutil.AssertTablesClose(t, "values", vi.Result.Values, pi.Result.Values, 1e-3)
}

func TestSolve_ParallelSynchronous_MatchesInPlace(t *testing.T) {
	cfg := factoredConfig()
	cfg.Capacity = 10
	cfg.MaxAction = 3
	cfg.Tolerance = 1e-7

	serial, err := Solve(context.Background(), cfg, dp.MethodPolicyIteration, dp.Options{})
	require.NoError(t, err)
	parallel, err := Solve(context.Background(), cfg, dp.MethodPolicyIteration,
		dp.Options{Update: dp.UpdateSynchronous, Workers: 4})
	require.NoError(t, err)

	testutil.AssertTablesClose(t, "values", serial.Result.Values, parallel.Result.Values, 1e-4)
}

func TestSolve_ExactEnumeration_EndToEnd(t *testing.T) {
	if testing.Short() {
		t.Skip("exact O(cutoff^4) enumeration over the full grid is slow")
	}
	plan, err := Solve(context.Background(), DefaultConfig(), dp.MethodPolicyIteration, dp.Options{})
	require.NoError(t, err)

	assert.True(t, plan.Result.Converged)
	assert.LessOrEqual(t, len(plan.Result.Rounds), 10)
	assert.Positive(t, plan.ActionAt(State{A: 20, B: 0}))
}

func TestNewPlan_GridLayout(t *testing.T) {
	cfg := factoredConfig()
	cfg.Capacity = 4
	cfg.MaxAction = 2
	m, err := NewModel(cfg)
	require.NoError(t, err)
	s, err := dp.NewSolver(m, cfg.SolverOptions(dp.Options{}))
	require.NoError(t, err)
	res, err := s.PolicyIteration(context.Background())
	require.NoError(t, err)

	plan := m.NewPlan(res)
	rows, cols := plan.Values.Dims()
	assert.Equal(t, 5, rows)
	assert.Equal(t, 5, cols)
	require.Len(t, plan.Policy, 5)
	for i := 0; i < m.NumStates(); i++ {
		st := m.StateAt(i)
		assert.Equal(t, res.Policy[i], plan.ActionAt(st))
		assert.Equal(t, res.Values[i], plan.ValueAt(st))
	}
}
