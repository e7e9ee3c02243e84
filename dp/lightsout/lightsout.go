// Package lightsout finds the minimum number of presses that turns every cell
// of an N×N toggle board on. Pressing a cell flips it and its orthogonal
// neighbours.
//
// A board is a bitmask: bit r*N+c is set when cell (r, c) is lit.
package lightsout

import (
	"context"
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/dpsim/dpsim/dp"
)

// MaxSize bounds N; the state space has 2^(N*N) entries.
const MaxSize = 4

// Config describes one board size.
type Config struct {
	Size      int `yaml:"size"` // board side N, in [1, MaxSize]
	MaxSweeps int `yaml:"max_sweeps,omitempty"`
}

// DefaultConfig returns the 4×4 board.
func DefaultConfig() Config {
	return Config{Size: 4}
}

// Validate reports every invalid field, wrapped in dp.ErrInvalidConfiguration.
func (c Config) Validate() error {
	var errs *multierror.Error
	if c.Size < 1 || c.Size > MaxSize {
		errs = multierror.Append(errs, fmt.Errorf("size must be in [1, %d], got %d", MaxSize, c.Size))
	}
	if c.MaxSweeps < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max_sweeps must be non-negative, got %d", c.MaxSweeps))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", dp.ErrInvalidConfiguration, err)
	}
	return nil
}

// Model implements dp.Model. Values are negated press counts: the solver
// maximises, so V[s] = -moves(s), and -Inf marks a board that cannot be solved.
type Model struct {
	n      int
	solved int
	masks  []int // masks[c] is the set of cells flipped by pressing c
}

var _ dp.Model = (*Model)(nil)

// NewModel validates cfg and precomputes the press masks.
func NewModel(cfg Config) (*Model, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	n := cfg.Size
	m := &Model{n: n, solved: 1<<(n*n) - 1, masks: make([]int, n*n)}
	for c := range m.masks {
		r, col := c/n, c%n
		mask := 1 << c
		if r > 0 {
			mask |= 1 << (c - n)
		}
		if r < n-1 {
			mask |= 1 << (c + n)
		}
		if col > 0 {
			mask |= 1 << (c - 1)
		}
		if col < n-1 {
			mask |= 1 << (c + 1)
		}
		m.masks[c] = mask
	}
	return m, nil
}

func (m *Model) NumStates() int { return 1 << (m.n * m.n) }

// Solved returns the all-lit board.
func (m *Model) Solved() int { return m.solved }

// Press returns the board after pressing cell c.
func (m *Model) Press(board, c int) int { return board ^ m.masks[c] }

func (m *Model) IsTerminal(s int) bool { return s == m.solved }

// InitialValue is 0 for the solved board and -Inf for every other board, so
// sweeps only ever lower the press count of boards already known to be solvable.
func (m *Model) InitialValue(s int) float64 {
	if s == m.solved {
		return 0
	}
	return math.Inf(-1)
}

// Actions appends every cell index; all presses are always allowed.
func (m *Model) Actions(_ int, buf []int) []int {
	for c := range m.masks {
		buf = append(buf, c)
	}
	return buf
}

// Backup charges one press and moves to the toggled board.
func (m *Model) Backup(s, c int, v []float64) float64 {
	return -1 + v[m.Press(s, c)]
}

// Solution is a solved board size.
type Solution struct {
	// Moves[s] is the minimum number of presses from board s, or -1 if s
	// cannot be solved.
	Moves []int
	// Press[s] is the first cell to press from board s (smallest index among
	// optimal presses), or -1 if s is solved or unsolvable.
	Press    []int
	Solvable int // boards from which the solved board is reachable
	MaxMoves int // largest finite entry of Moves
	Result   *dp.Result
}

// Solve runs value iteration from -Inf and reads press counts off the values.
// A zero opts.Tolerance becomes 0.5: values move in whole presses.
func Solve(ctx context.Context, cfg Config, opts dp.Options) (*Solution, error) {
	m, err := NewModel(cfg)
	if err != nil {
		return nil, err
	}
	if opts.Tolerance == 0 {
		opts.Tolerance = 0.5
	}
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

	sol := &Solution{
		Moves:  make([]int, len(res.Values)),
		Press:  make([]int, len(res.Values)),
		Result: res,
	}
	for st, v := range res.Values {
		if math.IsInf(v, -1) {
			sol.Moves[st] = -1
			sol.Press[st] = -1
			continue
		}
		moves := int(-v)
		sol.Moves[st] = moves
		sol.Press[st] = res.Policy[st]
		if st == m.solved {
			sol.Press[st] = -1
		}
		sol.Solvable++
		sol.MaxMoves = max(sol.MaxMoves, moves)
	}
	return sol, err
}
