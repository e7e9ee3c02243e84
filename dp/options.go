package dp

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/dpsim/dpsim/dp/trace"
)

// UpdateMode selects how a sweep reads the value table.
type UpdateMode string

const (
	// UpdateInPlace lets later states in a sweep read values already updated
	// in the same sweep. Faster convergence, strictly serial.
	UpdateInPlace UpdateMode = "in-place"
	// UpdateSynchronous reads every value from the pre-sweep table
	// (double buffering). Sweeps may be split across workers.
	UpdateSynchronous UpdateMode = "synchronous"
)

// Default solver limits.
const (
	DefaultTolerance    = 1e-4
	DefaultMaxSweeps    = 10_000
	DefaultMaxRounds    = 100
	DefaultTieTolerance = 1e-12
)

// Options configures a Solver. Zero-valued fields take the defaults above.
type Options struct {
	Tolerance    float64    // max per-sweep change accepted as converged (must be > 0)
	MaxSweeps    int        // cap on sweeps per evaluation or value-iteration run
	MaxRounds    int        // cap on policy-iteration rounds
	Update       UpdateMode // "in-place" (default) or "synchronous"
	Workers      int        // goroutines per synchronous sweep and per improvement pass (default 1)
	TieTolerance float64    // values closer than this are ties; ties go to the smallest action
	TraceLevel   trace.TraceLevel
}

// withDefaults returns a copy of o with zero fields filled in.
func (o Options) withDefaults() Options {
	if o.Tolerance == 0 {
		o.Tolerance = DefaultTolerance
	}
	if o.MaxSweeps == 0 {
		o.MaxSweeps = DefaultMaxSweeps
	}
	if o.MaxRounds == 0 {
		o.MaxRounds = DefaultMaxRounds
	}
	if o.Update == "" {
		o.Update = UpdateInPlace
	}
	if o.Workers == 0 {
		o.Workers = 1
	}
	if o.TieTolerance == 0 {
		o.TieTolerance = DefaultTieTolerance
	}
	if o.TraceLevel == "" {
		o.TraceLevel = trace.TraceLevelNone
	}
	return o
}

// Validate checks o after defaults are applied and reports every violation.
func (o Options) Validate() error {
	var errs *multierror.Error
	if math.IsNaN(o.Tolerance) || o.Tolerance <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("tolerance must be positive, got %v", o.Tolerance))
	}
	if o.MaxSweeps < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max sweeps must be non-negative, got %d", o.MaxSweeps))
	}
	if o.MaxRounds < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max rounds must be non-negative, got %d", o.MaxRounds))
	}
	if o.Update != UpdateInPlace && o.Update != UpdateSynchronous && o.Update != "" {
		errs = multierror.Append(errs, fmt.Errorf("unknown update mode %q; valid: in-place, synchronous", o.Update))
	}
	if o.Workers < 0 {
		errs = multierror.Append(errs, fmt.Errorf("workers must be non-negative, got %d", o.Workers))
	}
	if o.TieTolerance < 0 {
		errs = multierror.Append(errs, fmt.Errorf("tie tolerance must be non-negative, got %v", o.TieTolerance))
	}
	if !trace.IsValidTraceLevel(string(o.TraceLevel)) {
		errs = multierror.Append(errs, fmt.Errorf("unknown trace level %q; valid: none, rounds, changes", o.TraceLevel))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidConfiguration, err)
	}
	return nil
}
