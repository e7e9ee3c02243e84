package relocation

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"

	"github.com/dpsim/dpsim/dp"
)

// Plan is a solved relocation problem laid out on the (A, B) grid.
type Plan struct {
	// Values[a][b] is the value of state (a, b), as a (Capacity+1)² matrix.
	Values *mat.Dense
	// Policy[a][b] is the transfer chosen in state (a, b). This is the
	// two-dimensional array heat-map renderers consume.
	Policy [][]int
	Result *dp.Result
}

// ValueAt returns the value of state s.
func (p *Plan) ValueAt(s State) float64 { return p.Values.At(s.A, s.B) }

// ActionAt returns the planned transfer in state s.
func (p *Plan) ActionAt(s State) int { return p.Policy[s.A][s.B] }

// NewPlan lays a solver result out on the model's grid.
func (m *Model) NewPlan(res *dp.Result) *Plan {
	values := mat.NewDense(m.size, m.size, append([]float64(nil), res.Values...))
	policy := make([][]int, m.size)
	for a := range policy {
		policy[a] = append([]int(nil), res.Policy[a*m.size:(a+1)*m.size]...)
	}
	return &Plan{Values: values, Policy: policy, Result: res}
}

// SolverOptions folds the convergence fields of cfg into opts.
func (c Config) SolverOptions(opts dp.Options) dp.Options {
	opts.Tolerance = c.Tolerance
	if c.MaxSweeps > 0 {
		opts.MaxSweeps = c.MaxSweeps
	}
	if c.MaxRounds > 0 {
		opts.MaxRounds = c.MaxRounds
	}
	return opts
}

// Solve validates cfg, builds the model and runs the requested method.
// Configuration errors are returned before any table is allocated. On
// non-convergence the partial plan is returned alongside the error.
func Solve(ctx context.Context, cfg Config, method dp.Method, opts dp.Options) (*Plan, error) {
	if method == "" {
		method = dp.MethodPolicyIteration
	}
	if method != dp.MethodPolicyIteration && method != dp.MethodValueIteration {
		return nil, fmt.Errorf("%w: unknown method %q; valid: policy-iteration, value-iteration", dp.ErrInvalidConfiguration, method)
	}
	m, err := NewModel(cfg)
	if err != nil {
		return nil, err
	}
	s, err := dp.NewSolver(m, cfg.SolverOptions(opts))
	if err != nil {
		return nil, err
	}
	logrus.WithField("run_id", s.RunID()).Infof(
		"solving relocation: capacity=%d max_action=%d rates=%v cutoff=%d discount=%g expectation=%s method=%s",
		cfg.Capacity, cfg.MaxAction, cfg.Rates(), cfg.Cutoff, cfg.Discount, m.cfg.Expectation, method)

	var res *dp.Result
	if method == dp.MethodValueIteration {
		res, err = s.ValueIteration(ctx)
	} else {
		res, err = s.PolicyIteration(ctx)
	}
	if res == nil {
		return nil, err
	}
	return m.NewPlan(res), err
}
