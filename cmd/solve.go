package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dpsim/dpsim/dp"
	"github.com/dpsim/dpsim/dp/relocation"
	"github.com/dpsim/dpsim/dp/trace"
)

var (
	// Relocation problem
	capacity       int     // Max units per location
	maxAction      int     // Max units moved per step
	transferCost   float64 // Cost per unit moved
	rewardPerUnit  float64 // Reward per satisfied unit of demand
	discount       float64 // Discount factor
	demandRateA    float64 // Poisson demand rate at A
	demandRateB    float64 // Poisson demand rate at B
	replenishRateA float64 // Poisson return rate at A
	replenishRateB float64 // Poisson return rate at B
	cutoff         int     // Largest count kept in each Poisson table
	expectation    string  // exact or factored

	// Solver
	tolerance  float64 // Evaluation convergence threshold
	maxSweeps  int     // Sweep cap per evaluation
	maxRounds  int     // Round cap for policy iteration
	method     string  // policy or value
	updateMode string  // in-place or synchronous
	workers    int     // Goroutines per synchronous sweep
	traceLevel string  // none, rounds or changes

	presetName   string // Named relocation preset in the defaults file
	outputFormat string // text or yaml
)

// solveCmd solves the two-location relocation problem
var solveCmd = &cobra.Command{
	Use:   "solve",
	Short: "Solve the two-location relocation problem",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := relocationConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		m, err := parseMethod(method)
		if err != nil {
			logrus.Fatalf("%v", err)
		}
		opts := dp.Options{
			Update:     dp.UpdateMode(updateMode),
			Workers:    workers,
			TraceLevel: trace.TraceLevel(traceLevel),
		}

		plan, err := relocation.Solve(context.Background(), cfg, m, opts)
		if plan == nil {
			logrus.Fatalf("Solve failed: %v", err)
		}
		if err != nil {
			logrus.Warnf("Returning partial plan: %v", err)
		}

		if err := writePlan(os.Stdout, outputFormat, cfg, plan); err != nil {
			logrus.Fatalf("Writing plan: %v", err)
		}
		logrus.Info("Solve complete.")
	},
}

// relocationConfig starts from the named preset (or the canonical problem)
// and overlays every flag the user set explicitly.
func relocationConfig(cmd *cobra.Command) (relocation.Config, error) {
	cfg := relocation.DefaultConfig()
	if presetName != "" {
		presets, err := loadPresets(defaultsFilePath)
		if err != nil {
			return cfg, err
		}
		if cfg, err = presets.RelocationPreset(presetName); err != nil {
			return cfg, err
		}
		logrus.Infof("Using relocation preset %q from %s", presetName, defaultsFilePath)
	}

	// Only explicit flags override the preset; defaults must not clobber it.
	flags := cmd.Flags()
	if flags.Changed("capacity") {
		cfg.Capacity = capacity
	}
	if flags.Changed("max-action") {
		cfg.MaxAction = maxAction
	}
	if flags.Changed("transfer-cost") {
		cfg.TransferCost = transferCost
	}
	if flags.Changed("reward-per-unit") {
		cfg.RewardPerUnit = rewardPerUnit
	}
	if flags.Changed("discount") {
		cfg.Discount = discount
	}
	if flags.Changed("demand-rate-a") {
		cfg.DemandRateA = demandRateA
	}
	if flags.Changed("demand-rate-b") {
		cfg.DemandRateB = demandRateB
	}
	if flags.Changed("replenish-rate-a") {
		cfg.ReplenishRateA = replenishRateA
	}
	if flags.Changed("replenish-rate-b") {
		cfg.ReplenishRateB = replenishRateB
	}
	if flags.Changed("cutoff") {
		cfg.Cutoff = cutoff
	}
	if flags.Changed("expectation") {
		cfg.Expectation = relocation.Expectation(expectation)
	}
	if flags.Changed("tolerance") {
		cfg.Tolerance = tolerance
	}
	if flags.Changed("max-sweeps") {
		cfg.MaxSweeps = maxSweeps
	}
	if flags.Changed("max-rounds") {
		cfg.MaxRounds = maxRounds
	}
	return cfg, nil
}

// parseMethod accepts the short and the full method names.
func parseMethod(name string) (dp.Method, error) {
	switch name {
	case "policy", string(dp.MethodPolicyIteration):
		return dp.MethodPolicyIteration, nil
	case "value", string(dp.MethodValueIteration):
		return dp.MethodValueIteration, nil
	}
	return "", fmt.Errorf("%w: unknown method %q; valid: policy, value", dp.ErrInvalidConfiguration, name)
}

// registerRelocationFlags binds the relocation and solver flags to c.
func registerRelocationFlags(c *cobra.Command) {
	def := relocation.DefaultConfig()

	// Problem
	c.Flags().IntVar(&capacity, "capacity", def.Capacity, "Max units per location")
	c.Flags().IntVar(&maxAction, "max-action", def.MaxAction, "Max units moved per step in either direction")
	c.Flags().Float64Var(&transferCost, "transfer-cost", def.TransferCost, "Cost per unit moved")
	c.Flags().Float64Var(&rewardPerUnit, "reward-per-unit", def.RewardPerUnit, "Reward per satisfied unit of demand")
	c.Flags().Float64Var(&discount, "discount", def.Discount, "Discount factor in [0, 1)")
	c.Flags().Float64Var(&demandRateA, "demand-rate-a", def.DemandRateA, "Poisson demand rate at A")
	c.Flags().Float64Var(&demandRateB, "demand-rate-b", def.DemandRateB, "Poisson demand rate at B")
	c.Flags().Float64Var(&replenishRateA, "replenish-rate-a", def.ReplenishRateA, "Poisson return rate at A")
	c.Flags().Float64Var(&replenishRateB, "replenish-rate-b", def.ReplenishRateB, "Poisson return rate at B")
	c.Flags().IntVar(&cutoff, "cutoff", def.Cutoff, "Largest count kept in each Poisson table")
	c.Flags().StringVar(&expectation, "expectation", string(def.Expectation), "Expectation mode (exact, factored)")

	// Solver
	c.Flags().Float64Var(&tolerance, "tolerance", def.Tolerance, "Policy evaluation convergence threshold")
	c.Flags().IntVar(&maxSweeps, "max-sweeps", dp.DefaultMaxSweeps, "Max sweeps per evaluation")
	c.Flags().IntVar(&maxRounds, "max-rounds", dp.DefaultMaxRounds, "Max policy iteration rounds")
	c.Flags().StringVar(&method, "method", "policy", "Solution method (policy, value)")
	c.Flags().StringVar(&updateMode, "update", string(dp.UpdateInPlace), "Sweep update mode (in-place, synchronous)")
	c.Flags().IntVar(&workers, "workers", 1, "Goroutines per synchronous sweep")
	c.Flags().StringVar(&traceLevel, "trace", string(trace.TraceLevelNone), "Trace level (none, rounds, changes)")

	c.Flags().StringVar(&presetName, "preset", "", "Named relocation preset from the defaults file")
	c.Flags().StringVar(&outputFormat, "output", "text", "Output format (text, yaml)")
}

func init() {
	registerRelocationFlags(solveCmd)
	rootCmd.AddCommand(solveCmd)
}
