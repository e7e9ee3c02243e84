package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/dpsim/dpsim/dp"
	"github.com/dpsim/dpsim/dp/gambler"
	"github.com/dpsim/dpsim/dp/lightsout"
)

var (
	goal             int     // Gambler target capital
	headsProb        float64 // Gambler win probability per bet
	gamblerTolerance float64 // Gambler value iteration threshold
	gamblerPreset    string  // Named gambler preset

	boardSize       int    // Lights-out board side
	lightsOutPreset string // Named lightsout preset
)

// gamblerCmd solves the stake-sizing problem by value iteration
var gamblerCmd = &cobra.Command{
	Use:   "gambler",
	Short: "Solve the gambler's stake-sizing problem",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := gamblerConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		sol, err := gambler.Solve(context.Background(), cfg, dp.Options{})
		if sol == nil {
			logrus.Fatalf("Solve failed: %v", err)
		}
		if err != nil {
			logrus.Warnf("Returning partial solution: %v", err)
		}
		printGambler(os.Stdout, sol)
	},
}

// lightsOutCmd solves every board of one size by value iteration
var lightsOutCmd = &cobra.Command{
	Use:   "lightsout",
	Short: "Compute minimum press counts for every lights-out board of one size",
	Run: func(cmd *cobra.Command, args []string) {
		cfg, err := lightsOutConfig(cmd)
		if err != nil {
			logrus.Fatalf("%v", err)
		}

		sol, err := lightsout.Solve(context.Background(), cfg, dp.Options{})
		if sol == nil {
			logrus.Fatalf("Solve failed: %v", err)
		}
		if err != nil {
			logrus.Warnf("Returning partial solution: %v", err)
		}
		printLightsOut(os.Stdout, sol)
	},
}

// gamblerConfig starts from the named preset (or the textbook instance) and
// overlays explicit flags.
func gamblerConfig(cmd *cobra.Command) (gambler.Config, error) {
	cfg := gambler.DefaultConfig()
	if gamblerPreset != "" {
		presets, err := loadPresets(defaultsFilePath)
		if err != nil {
			return cfg, err
		}
		if cfg, err = presets.GamblerPreset(gamblerPreset); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("goal") {
		cfg.Goal = goal
	}
	if cmd.Flags().Changed("heads-prob") {
		cfg.HeadsProb = headsProb
	}
	if cmd.Flags().Changed("tolerance") {
		cfg.Tolerance = gamblerTolerance
	}
	return cfg, nil
}

// lightsOutConfig starts from the named preset (or the 4×4 board) and
// overlays explicit flags.
func lightsOutConfig(cmd *cobra.Command) (lightsout.Config, error) {
	cfg := lightsout.DefaultConfig()
	if lightsOutPreset != "" {
		presets, err := loadPresets(defaultsFilePath)
		if err != nil {
			return cfg, err
		}
		if cfg, err = presets.LightsOutPreset(lightsOutPreset); err != nil {
			return cfg, err
		}
	}
	if cmd.Flags().Changed("size") {
		cfg.Size = boardSize
	}
	return cfg, nil
}

func printGambler(w io.Writer, sol *gambler.Solution) {
	fmt.Fprintln(w, "=== Stake-sizing policy ===")
	fmt.Fprintln(w, "capital  win_prob  stake")
	last := len(sol.WinProb) - 1
	for s := 1; s < last; s++ {
		fmt.Fprintf(w, "%7d  %8.5f  %5d\n", s, sol.WinProb[s], sol.Stake[s])
	}
	fmt.Fprintf(w, "run_id=%s sweeps=%d converged=%v\n", sol.Result.RunID, sol.Result.Sweeps, sol.Result.Converged)
}

func printLightsOut(w io.Writer, sol *lightsout.Solution) {
	hist := make(map[int]int)
	for _, m := range sol.Moves {
		hist[m]++
	}
	keys := make([]int, 0, len(hist))
	for k := range hist {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	fmt.Fprintln(w, "=== Lights-out ===")
	fmt.Fprintf(w, "boards=%d solvable=%d max_moves=%d\n", len(sol.Moves), sol.Solvable, sol.MaxMoves)
	for _, k := range keys {
		if k < 0 {
			fmt.Fprintf(w, "unsolvable: %d\n", hist[k])
			continue
		}
		fmt.Fprintf(w, "%2d moves: %d\n", k, hist[k])
	}
	fmt.Fprintf(w, "run_id=%s sweeps=%d converged=%v\n", sol.Result.RunID, sol.Result.Sweeps, sol.Result.Converged)
}

// registerGamblerFlags binds the stake-sizing flags to c.
func registerGamblerFlags(c *cobra.Command) {
	def := gambler.DefaultConfig()
	c.Flags().IntVar(&goal, "goal", def.Goal, "Target capital")
	c.Flags().Float64Var(&headsProb, "heads-prob", def.HeadsProb, "Probability of winning one bet")
	c.Flags().Float64Var(&gamblerTolerance, "tolerance", def.Tolerance, "Value iteration convergence threshold")
	c.Flags().StringVar(&gamblerPreset, "preset", "", "Named gambler preset from the defaults file")
}

// registerLightsOutFlags binds the board flags to c.
func registerLightsOutFlags(c *cobra.Command) {
	c.Flags().IntVar(&boardSize, "size", lightsout.DefaultConfig().Size, fmt.Sprintf("Board side, at most %d", lightsout.MaxSize))
	c.Flags().StringVar(&lightsOutPreset, "preset", "", "Named lightsout preset from the defaults file")
}

func init() {
	registerGamblerFlags(gamblerCmd)
	registerLightsOutFlags(lightsOutCmd)

	rootCmd.AddCommand(gamblerCmd)
	rootCmd.AddCommand(lightsOutCmd)
}
