package dp

import (
	"time"

	"github.com/dpsim/dpsim/dp/trace"
)

// Method names the algorithm that produced a Result.
type Method string

const (
	MethodPolicyIteration Method = "policy-iteration"
	MethodValueIteration  Method = "value-iteration"
)

// RoundStats summarises one policy-iteration round. Value iteration reports
// a single round covering all of its sweeps.
type RoundStats struct {
	Round    int
	Sweeps   int     // evaluation sweeps in this round
	Delta    float64 // max change in the last evaluation sweep
	Changed  int     // states whose action changed during improvement
	ValueSum float64 // sum of the value table after evaluation
}

// Result bundles the outputs of a solve.
// Values and Policy are copies; later solver calls do not mutate them.
type Result struct {
	RunID     string
	Method    Method
	Values    []float64
	Policy    []int
	Rounds    []RoundStats
	Sweeps    int // total sweeps across all rounds
	Converged bool
	WallTime  time.Duration
	Trace     *trace.SolveTrace // nil if tracing is off
}

// Summary computes trace statistics; safe when tracing is off. Value sums
// may dip by up to slack between rounds before Monotonic turns false.
func (r *Result) Summary(slack float64) *trace.TraceSummary {
	return trace.Summarize(r.Trace, slack)
}

func (s *Solver) finish(res *Result, start time.Time) *Result {
	res.Values = append([]float64(nil), s.Values...)
	res.Policy = append([]int(nil), s.Policy...)
	res.Trace = s.trace
	res.WallTime = time.Since(start)
	return res
}
