package dp

import (
	"context"
	"fmt"
	"time"

	"github.com/dpsim/dpsim/dp/trace"
)

// SweepStats reports the work done by one evaluation or value-iteration run.
type SweepStats struct {
	Sweeps int
	Delta  float64 // max absolute change in the last sweep
}

// EvaluatePolicy sweeps V[s] = Backup(s, Policy[s], V) over every state until
// the largest change in one sweep is below Tolerance. Hitting MaxSweeps
// returns ErrNonConvergence; the table is left as it was after the last sweep.
func (s *Solver) EvaluatePolicy(ctx context.Context) (SweepStats, error) {
	s.phase = PhaseEvaluating
	backup := func(st int, read []float64, buf []int) (float64, []int, error) {
		return s.model.Backup(st, s.Policy[st], read), buf, nil
	}

	var stats SweepStats
	for stats.Sweeps < s.opts.MaxSweeps {
		if err := s.checkContext(ctx); err != nil {
			return stats, err
		}
		delta, err := s.sweep(backup)
		if err != nil {
			return stats, err
		}
		stats.Sweeps++
		stats.Delta = delta
		s.log.Tracef("evaluation sweep %d: delta=%g", stats.Sweeps, delta)
		if delta < s.opts.Tolerance {
			return stats, nil
		}
	}
	return stats, fmt.Errorf("policy evaluation: %w after %d sweeps (delta=%g, tolerance=%g)",
		ErrNonConvergence, stats.Sweeps, stats.Delta, s.opts.Tolerance)
}

// ImprovePolicy makes the policy greedy with respect to the current value
// table. It returns how many states changed action; stable is true when none did.
func (s *Solver) ImprovePolicy(ctx context.Context) (changed int, stable bool, err error) {
	s.phase = PhaseImproving
	if err := s.checkContext(ctx); err != nil {
		return 0, false, err
	}

	n := len(s.Values)
	counts := make([]int, s.opts.Workers)
	errs := make([]error, s.opts.Workers)
	var changes [][]trace.ChangeRecord
	if s.trace.WantsChanges() {
		changes = make([][]trace.ChangeRecord, s.opts.Workers)
	}

	s.parallel(n, func(w, lo, hi int) {
		var buf []int
		var qs []float64
		for st := lo; st < hi; st++ {
			if isTerminal(s.model, st) {
				continue
			}
			best, bestV, curV, next, nextQs, err := s.greedy(st, s.Values, buf[:0], qs)
			buf, qs = next, nextQs
			if err != nil {
				errs[w] = err
				return
			}
			old := s.Policy[st]
			if best == old {
				continue
			}
			s.Policy[st] = best
			counts[w]++
			if changes != nil {
				changes[w] = append(changes[w], trace.ChangeRecord{
					Round: s.round, State: st, OldAction: old, NewAction: best, Gain: bestV - curV,
				})
			}
		}
	})

	for _, err := range errs {
		if err != nil {
			return 0, false, err
		}
	}
	for w := range counts {
		changed += counts[w]
		if changes == nil {
			continue
		}
		for _, c := range changes[w] {
			s.trace.RecordChange(c)
		}
	}
	return changed, changed == 0, nil
}

// PolicyIteration alternates EvaluatePolicy and ImprovePolicy until the
// policy is stable. Values and policy are warm-started from the solver's
// current tables. Exceeding MaxRounds returns ErrNonConvergence.
func (s *Solver) PolicyIteration(ctx context.Context) (*Result, error) {
	start := time.Now()
	log := s.log.WithField("method", MethodPolicyIteration)
	res := &Result{RunID: s.runID, Method: MethodPolicyIteration}

	for s.round = 1; s.round <= s.opts.MaxRounds; s.round++ {
		stats, err := s.EvaluatePolicy(ctx)
		res.Sweeps += stats.Sweeps
		if err != nil {
			return s.finish(res, start), fmt.Errorf("round %d: %w", s.round, err)
		}
		sum := s.ValueSum()
		s.trace.RecordRound(trace.RoundRecord{
			Round: s.round, Phase: "evaluate", Sweeps: stats.Sweeps, Delta: stats.Delta, ValueSum: sum,
		})

		changed, stable, err := s.ImprovePolicy(ctx)
		if err != nil {
			return s.finish(res, start), fmt.Errorf("round %d: %w", s.round, err)
		}
		s.trace.RecordRound(trace.RoundRecord{
			Round: s.round, Phase: "improve", Changed: changed, ValueSum: sum,
		})
		res.Rounds = append(res.Rounds, RoundStats{
			Round: s.round, Sweeps: stats.Sweeps, Delta: stats.Delta, Changed: changed, ValueSum: sum,
		})
		log.Infof("round %d: %d evaluation sweeps (delta=%.3g), %d actions changed, value sum %.4f",
			s.round, stats.Sweeps, stats.Delta, changed, sum)

		if stable {
			s.phase = PhaseConverged
			res.Converged = true
			return s.finish(res, start), nil
		}
	}
	s.round = s.opts.MaxRounds
	return s.finish(res, start), fmt.Errorf("policy iteration: %w after %d rounds", ErrNonConvergence, s.opts.MaxRounds)
}
