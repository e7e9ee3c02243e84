package dp

import (
	"context"
	"fmt"
	"time"

	"github.com/dpsim/dpsim/dp/trace"
)

// ValueIteration applies the Bellman optimality backup
// V[s] = max_a Backup(s, a, V) until the largest change in one sweep is below
// Tolerance, then extracts the greedy policy. No policy is kept while sweeping.
func (s *Solver) ValueIteration(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := s.log.WithField("method", MethodValueIteration)
	res := &Result{RunID: s.runID, Method: MethodValueIteration}
	s.phase = PhaseEvaluating
	s.round = 0

	optimal := func(st int, read []float64, buf []int) (float64, []int, error) {
		buf = s.model.Actions(st, buf)
		if len(buf) == 0 {
			return 0, buf, fmt.Errorf("%w at state %d", ErrNoFeasibleAction, st)
		}
		best := Infeasible
		for _, a := range buf {
			if q := s.model.Backup(st, a, read); q > best {
				best = q
			}
		}
		return best, buf, nil
	}

	var stats SweepStats
	for stats.Sweeps < s.opts.MaxSweeps {
		if err := s.checkContext(ctx); err != nil {
			return s.finish(res, start), err
		}
		delta, err := s.sweep(optimal)
		if err != nil {
			return s.finish(res, start), err
		}
		stats.Sweeps++
		stats.Delta = delta
		s.round = stats.Sweeps
		s.trace.RecordRound(trace.RoundRecord{
			Round: stats.Sweeps, Phase: "value-iteration", Sweeps: 1, Delta: delta, ValueSum: s.ValueSum(),
		})
		log.Debugf("sweep %d: delta=%g", stats.Sweeps, delta)
		if delta < s.opts.Tolerance {
			res.Sweeps = stats.Sweeps
			if _, err := s.ExtractPolicy(ctx); err != nil {
				return s.finish(res, start), err
			}
			s.phase = PhaseConverged
			res.Converged = true
			res.Rounds = append(res.Rounds, RoundStats{Round: 1, Sweeps: stats.Sweeps, Delta: delta, ValueSum: s.ValueSum()})
			log.Infof("converged after %d sweeps (delta=%.3g)", stats.Sweeps, delta)
			return s.finish(res, start), nil
		}
	}
	res.Sweeps = stats.Sweeps
	return s.finish(res, start), fmt.Errorf("value iteration: %w after %d sweeps (delta=%g, tolerance=%g)",
		ErrNonConvergence, stats.Sweeps, stats.Delta, s.opts.Tolerance)
}

// ExtractPolicy sets every state's action to the greedy one under the current
// value table, ties going to the smallest action. It returns the number of
// states whose action changed.
func (s *Solver) ExtractPolicy(ctx context.Context) (int, error) {
	changed, _, err := s.ImprovePolicy(ctx)
	return changed, err
}
