package dp

import "math"

// Infeasible is the value a backup returns for an action that cannot be
// taken from the given state.
var Infeasible = math.Inf(-1)

// IsInfeasible reports whether v is the infeasible sentinel.
func IsInfeasible(v float64) bool {
	return math.IsInf(v, -1)
}

// Model is a finite MDP with integer-indexed states and integer actions.
//
// Backup must be a pure function of its arguments and the model's immutable
// configuration; it is called concurrently when a Solver runs with Workers > 1.
type Model interface {
	// NumStates returns the size of the state space. States are 0..NumStates()-1.
	NumStates() int
	// Actions appends the feasible actions of state s to buf in ascending order
	// and returns the extended slice.
	Actions(s int, buf []int) []int
	// Backup returns the expected immediate reward plus discounted successor
	// value of taking action a in state s under value table v.
	Backup(s, a int, v []float64) float64
}

// Terminal is implemented by models with absorbing states. Terminal states are
// skipped by every sweep and keep their initial value.
type Terminal interface {
	IsTerminal(s int) bool
}

// Initializer is implemented by models whose value table does not start at zero.
type Initializer interface {
	InitialValue(s int) float64
}

// DefaultActioner is implemented by models whose initial policy is not the
// first feasible action.
type DefaultActioner interface {
	DefaultAction(s int) int
}

func isTerminal(m Model, s int) bool {
	t, ok := m.(Terminal)
	return ok && t.IsTerminal(s)
}

// change returns |a-b|, treating two equal infinities as no change.
func change(a, b float64) float64 {
	if a == b {
		return 0
	}
	return math.Abs(a - b)
}
