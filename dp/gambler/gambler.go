// Package gambler solves the stake-sizing problem: a gambler with capital s
// bets any whole stake up to min(s, Goal-s) on a coin that lands heads with
// probability HeadsProb, and wants to maximise the probability of reaching Goal.
package gambler

import (
	"context"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/dpsim/dpsim/dp"
)

// Config describes one stake-sizing problem.
type Config struct {
	Goal      int     `yaml:"goal"`       // target capital (must be >= 2)
	HeadsProb float64 `yaml:"heads_prob"` // win probability of one bet, in (0, 1)
	Tolerance float64 `yaml:"tolerance"`  // value iteration convergence threshold
	MaxSweeps int     `yaml:"max_sweeps,omitempty"`
}

// DefaultConfig returns the textbook instance: goal 100, heads 0.4.
func DefaultConfig() Config {
	return Config{Goal: 100, HeadsProb: 0.4, Tolerance: 1e-9}
}

// Validate reports every invalid field, wrapped in dp.ErrInvalidConfiguration.
func (c Config) Validate() error {
	var errs *multierror.Error
	if c.Goal < 2 {
		errs = multierror.Append(errs, fmt.Errorf("goal must be at least 2, got %d", c.Goal))
	}
	if math.IsNaN(c.HeadsProb) || c.HeadsProb <= 0 || c.HeadsProb >= 1 {
		errs = multierror.Append(errs, fmt.Errorf("heads_prob must be in (0, 1), got %v", c.HeadsProb))
	}
	if math.IsNaN(c.Tolerance) || c.Tolerance <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("tolerance must be positive, got %v", c.Tolerance))
	}
	if c.MaxSweeps < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max_sweeps must be non-negative, got %d", c.MaxSweeps))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", dp.ErrInvalidConfiguration, err)
	}
	return nil
}

// Model implements dp.Model. State s is the current capital.
type Model struct {
	goal int
	p    float64
}

var _ dp.Model = (*Model)(nil)

// NewModel validates cfg and returns the model.
func NewModel(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Model{goal: cfg.Goal, p: cfg.HeadsProb}, nil
}

func (m *Model) NumStates() int { return m.goal + 1 }

// IsTerminal is true when the gambler is broke or has reached the goal.
func (m *Model) IsTerminal(s int) bool { return s == 0 || s == m.goal }

// Actions appends the stakes 1..min(s, Goal-s).
func (m *Model) Actions(s int, buf []int) []int {
	for a := 1; a <= min(s, m.goal-s); a++ {
		buf = append(buf, a)
	}
	return buf
}

// Backup is the undiscounted expectation of one bet. The only reward is 1 on
// reaching the goal; terminal states are worth 0.
func (m *Model) Backup(s, a int, v []float64) float64 {
	win, lose := s+a, s-a
	reward := 0.0
	if win == m.goal {
		reward = 1
	}
	return m.p*(reward+v[win]) + (1-m.p)*v[lose]
}

// Solution is a solved stake-sizing problem.
type Solution struct {
	// WinProb[s] is the probability of reaching the goal from capital s.
	WinProb []float64
	// Stake[s] is the smallest optimal stake at capital s; 0 at terminal states.
	Stake  []int
	Result *dp.Result
}

// Solve runs value iteration and extracts the smallest optimal stake per capital.
func Solve(ctx context.Context, cfg Config, opts dp.Options) (*Solution, error) {
	m, err := NewModel(cfg)
	if err != nil {
		return nil, err
	}
	opts.Tolerance = cfg.Tolerance
	if cfg.MaxSweeps > 0 {
		opts.MaxSweeps = cfg.MaxSweeps
	}
	s, err := dp.NewSolver(m, opts)
	if err != nil {
		return nil, err
	}
	res, err := s.ValueIteration(ctx)
	if res == nil {
		return nil, err
	}
	return &Solution{WinProb: res.Values, Stake: res.Policy, Result: res}, err
}
