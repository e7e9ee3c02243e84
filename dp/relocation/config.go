package relocation

import (
	"fmt"
	"math"

	"github.com/hashicorp/go-multierror"

	"github.com/dpsim/dpsim/dp"
)

// Expectation selects how the evaluator integrates over the four random counts.
type Expectation string

const (
	// ExpectationExact enumerates every (demandA, demandB, replenishA, replenishB)
	// combination, O(Cutoff⁴) per backup.
	ExpectationExact Expectation = "exact"
	// ExpectationFactored uses per-location transition matrices and gives the
	// same truncated expectation in O(Capacity²) per backup.
	ExpectationFactored Expectation = "factored"
)

var validExpectations = map[Expectation]bool{
	"":                  true, // empty defaults to exact
	ExpectationExact:    true,
	ExpectationFactored: true,
}

// Config describes one relocation problem.
type Config struct {
	Capacity       int         `yaml:"capacity"`         // max units per location (must be > 0)
	MaxAction      int         `yaml:"max_action"`       // max units moved per step in either direction
	TransferCost   float64     `yaml:"transfer_cost"`    // cost per unit moved
	RewardPerUnit  float64     `yaml:"reward_per_unit"`  // reward per satisfied unit of demand
	Discount       float64     `yaml:"discount"`         // in [0, 1)
	DemandRateA    float64     `yaml:"demand_rate_a"`    // Poisson rate of demand at A
	DemandRateB    float64     `yaml:"demand_rate_b"`    // Poisson rate of demand at B
	ReplenishRateA float64     `yaml:"replenish_rate_a"` // Poisson rate of returns at A
	ReplenishRateB float64     `yaml:"replenish_rate_b"` // Poisson rate of returns at B
	Cutoff         int         `yaml:"cutoff"`           // largest count kept in each Poisson table
	Tolerance      float64     `yaml:"tolerance"`        // policy evaluation convergence threshold
	MaxSweeps      int         `yaml:"max_sweeps,omitempty"`
	MaxRounds      int         `yaml:"max_rounds,omitempty"`
	Expectation    Expectation `yaml:"expectation,omitempty"`
}

// DefaultConfig returns the canonical two-location problem.
func DefaultConfig() Config {
	return Config{
		Capacity:       20,
		MaxAction:      5,
		TransferCost:   2,
		RewardPerUnit:  10,
		Discount:       0.9,
		DemandRateA:    3,
		DemandRateB:    4,
		ReplenishRateA: 3,
		ReplenishRateB: 2,
		Cutoff:         11,
		Tolerance:      1e-4,
		Expectation:    ExpectationExact,
	}
}

// Rates returns the four Poisson rates in the order demand A, demand B,
// replenish A, replenish B.
func (c Config) Rates() []float64 {
	return []float64{c.DemandRateA, c.DemandRateB, c.ReplenishRateA, c.ReplenishRateB}
}

// Validate reports every invalid field, wrapped in dp.ErrInvalidConfiguration.
func (c Config) Validate() error {
	var errs *multierror.Error
	if c.Capacity <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("capacity must be positive, got %d", c.Capacity))
	}
	if c.MaxAction < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max_action must be non-negative, got %d", c.MaxAction))
	}
	if c.Cutoff < 0 {
		errs = multierror.Append(errs, fmt.Errorf("cutoff must be non-negative, got %d", c.Cutoff))
	}
	if math.IsNaN(c.Discount) || c.Discount < 0 || c.Discount >= 1 {
		errs = multierror.Append(errs, fmt.Errorf("discount must be in [0, 1), got %v", c.Discount))
	}
	if math.IsNaN(c.TransferCost) || math.IsInf(c.TransferCost, 0) {
		errs = multierror.Append(errs, fmt.Errorf("transfer_cost must be a finite number, got %v", c.TransferCost))
	}
	if math.IsNaN(c.RewardPerUnit) || math.IsInf(c.RewardPerUnit, 0) {
		errs = multierror.Append(errs, fmt.Errorf("reward_per_unit must be a finite number, got %v", c.RewardPerUnit))
	}
	rateNames := []string{"demand_rate_a", "demand_rate_b", "replenish_rate_a", "replenish_rate_b"}
	for i, r := range c.Rates() {
		if math.IsNaN(r) || math.IsInf(r, 0) || r < 0 {
			errs = multierror.Append(errs, fmt.Errorf("%s must be a finite non-negative number, got %v", rateNames[i], r))
		}
	}
	if math.IsNaN(c.Tolerance) || c.Tolerance <= 0 {
		errs = multierror.Append(errs, fmt.Errorf("tolerance must be positive, got %v", c.Tolerance))
	}
	if c.MaxSweeps < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max_sweeps must be non-negative, got %d", c.MaxSweeps))
	}
	if c.MaxRounds < 0 {
		errs = multierror.Append(errs, fmt.Errorf("max_rounds must be non-negative, got %d", c.MaxRounds))
	}
	if !validExpectations[c.Expectation] {
		errs = multierror.Append(errs, fmt.Errorf("unknown expectation %q; valid: exact, factored", c.Expectation))
	}
	if err := errs.ErrorOrNil(); err != nil {
		return fmt.Errorf("%w: %v", dp.ErrInvalidConfiguration, err)
	}
	return nil
}
