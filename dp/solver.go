package dp

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"

	"github.com/dpsim/dpsim/dp/trace"
)

// Phase is the state of the policy-iteration driver.
type Phase string

const (
	PhaseEvaluating Phase = "evaluating"
	PhaseImproving  Phase = "improving"
	PhaseConverged  Phase = "converged"
)

// Solver is the context object threaded through every DP operation.
// It owns the value table and the policy table of one model.
//
// Thread-safety: a Solver is NOT safe for concurrent use. It fans work out to
// its own goroutines when Options.Workers > 1.
type Solver struct {
	// Values holds one entry per state. Warm-started across evaluation rounds.
	Values []float64
	// Policy holds the current action per state. Terminal states hold 0.
	Policy []int

	model Model
	opts  Options
	runID string
	log   *logrus.Entry
	trace *trace.SolveTrace
	phase Phase
	round int

	prev []float64 // pre-sweep snapshot for synchronous updates
}

// NewSolver validates opts and allocates the value and policy tables for m.
// Values start at the model's InitialValue (zero otherwise); the policy starts
// at the model's DefaultAction, or the smallest feasible action otherwise.
func NewSolver(m Model, opts Options) (*Solver, error) {
	opts = opts.withDefaults()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	n := m.NumStates()
	if n <= 0 {
		return nil, fmt.Errorf("%w: model has %d states", ErrInvalidConfiguration, n)
	}

	runID := uuid.NewString()
	s := &Solver{
		Values: make([]float64, n),
		Policy: make([]int, n),
		model:  m,
		opts:   opts,
		runID:  runID,
		log:    logrus.WithField("run_id", runID),
		trace:  trace.NewSolveTrace(opts.TraceLevel),
		phase:  PhaseEvaluating,
	}

	init, hasInit := m.(Initializer)
	def, hasDef := m.(DefaultActioner)
	var buf []int
	for st := 0; st < n; st++ {
		if hasInit {
			s.Values[st] = init.InitialValue(st)
		}
		if isTerminal(m, st) {
			continue
		}
		if hasDef {
			s.Policy[st] = def.DefaultAction(st)
			continue
		}
		buf = m.Actions(st, buf[:0])
		if len(buf) == 0 {
			return nil, fmt.Errorf("%w at state %d", ErrNoFeasibleAction, st)
		}
		s.Policy[st] = buf[0]
	}
	return s, nil
}

// RunID returns the identifier attached to every log line of this solver.
func (s *Solver) RunID() string { return s.runID }

// Phase returns the current driver phase.
func (s *Solver) Phase() Phase { return s.phase }

// Options returns the effective options, defaults applied.
func (s *Solver) Options() Options { return s.opts }

// Trace returns the solve trace, or nil when tracing is off.
func (s *Solver) Trace() *trace.SolveTrace { return s.trace }

// ValueSum returns the sum of the value table.
func (s *Solver) ValueSum() float64 { return floats.Sum(s.Values) }

// stateFunc computes the new value of state st reading table read.
// actions is a per-goroutine scratch buffer.
type stateFunc func(st int, read []float64, actions []int) (float64, []int, error)

// sweep visits every non-terminal state exactly once and returns the maximum
// absolute change. In-place sweeps read and write s.Values directly;
// synchronous sweeps read a snapshot and may run on several workers.
func (s *Solver) sweep(fn stateFunc) (float64, error) {
	n := len(s.Values)
	if s.opts.Update == UpdateInPlace {
		var buf []int
		delta := 0.0
		for st := 0; st < n; st++ {
			if isTerminal(s.model, st) {
				continue
			}
			old := s.Values[st]
			v, next, err := fn(st, s.Values, buf[:0])
			buf = next
			if err != nil {
				return delta, err
			}
			s.Values[st] = v
			if d := change(old, v); d > delta {
				delta = d
			}
		}
		return delta, nil
	}

	if s.prev == nil {
		s.prev = make([]float64, n)
	}
	copy(s.prev, s.Values)
	deltas := make([]float64, s.opts.Workers)
	errs := make([]error, s.opts.Workers)
	s.parallel(n, func(w, lo, hi int) {
		var buf []int
		for st := lo; st < hi; st++ {
			if isTerminal(s.model, st) {
				continue
			}
			v, next, err := fn(st, s.prev, buf[:0])
			buf = next
			if err != nil {
				errs[w] = err
				return
			}
			s.Values[st] = v
			if d := change(s.prev[st], v); d > deltas[w] {
				deltas[w] = d
			}
		}
	})
	for _, err := range errs {
		if err != nil {
			return 0, err
		}
	}
	return floats.Max(deltas), nil
}

// parallel splits [0, n) into contiguous chunks, one per worker, and waits
// for all of them. With one worker fn runs on the calling goroutine.
func (s *Solver) parallel(n int, fn func(w, lo, hi int)) {
	workers := s.opts.Workers
	if workers <= 1 || n < workers {
		fn(0, 0, n)
		return
	}
	chunk := (n + workers - 1) / workers
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		lo := w * chunk
		hi := min(lo+chunk, n)
		if lo >= hi {
			break
		}
		wg.Add(1)
		go func(w, lo, hi int) {
			defer wg.Done()
			fn(w, lo, hi)
		}(w, lo, hi)
	}
	wg.Wait()
}

// greedy returns the action maximising Backup at st under v, with the action
// currently in the policy and its value. The maximum is found first; the
// smallest action within TieTolerance of it wins, so near-ties never chain.
// qs is a per-goroutine scratch buffer for the action values.
func (s *Solver) greedy(st int, v []float64, buf []int, qs []float64) (best int, bestV, curV float64, next []int, nextQs []float64, err error) {
	buf = s.model.Actions(st, buf)
	if len(buf) == 0 {
		return 0, 0, 0, buf, qs, fmt.Errorf("%w at state %d", ErrNoFeasibleAction, st)
	}
	cur := s.Policy[st]
	curV = Infeasible
	qs = qs[:0]
	for _, a := range buf {
		q := s.model.Backup(st, a, v)
		if a == cur {
			curV = q
		}
		qs = append(qs, q)
	}
	maxV := floats.Max(qs)
	for i, q := range qs {
		if q == maxV || maxV-q <= s.opts.TieTolerance {
			return buf[i], q, curV, buf, qs, nil
		}
	}
	// unreachable: the maximum itself always qualifies
	return buf[0], qs[0], curV, buf, qs, nil
}

func (s *Solver) checkContext(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
