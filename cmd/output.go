package cmd

import (
	"fmt"
	"io"
	"strings"

	"gonum.org/v1/gonum/floats"
	"gopkg.in/yaml.v3"

	"github.com/dpsim/dpsim/dp"
	"github.com/dpsim/dpsim/dp/relocation"
)

// planDocument is the YAML form of a solved relocation problem.
type planDocument struct {
	RunID     string            `yaml:"run_id"`
	Method    dp.Method         `yaml:"method"`
	Converged bool              `yaml:"converged"`
	Sweeps    int               `yaml:"sweeps"`
	Config    relocation.Config `yaml:"config"`
	Rounds    []roundDocument   `yaml:"rounds"`
	// Policy[a][b] and Values[a][b] are indexed by the unit count at A then B.
	Policy [][]int     `yaml:"policy"`
	Values [][]float64 `yaml:"values"`
}

type roundDocument struct {
	Round    int     `yaml:"round"`
	Sweeps   int     `yaml:"sweeps"`
	Delta    float64 `yaml:"delta"`
	Changed  int     `yaml:"changed"`
	ValueSum float64 `yaml:"value_sum"`
}

func newPlanDocument(cfg relocation.Config, plan *relocation.Plan) planDocument {
	res := plan.Result
	doc := planDocument{
		RunID:     res.RunID,
		Method:    res.Method,
		Converged: res.Converged,
		Sweeps:    res.Sweeps,
		Config:    cfg,
		Policy:    plan.Policy,
	}
	for _, r := range res.Rounds {
		doc.Rounds = append(doc.Rounds, roundDocument(r))
	}
	rows, _ := plan.Values.Dims()
	for a := 0; a < rows; a++ {
		doc.Values = append(doc.Values, plan.Values.RawRowView(a))
	}
	return doc
}

// writePlan renders plan in the requested format.
func writePlan(w io.Writer, format string, cfg relocation.Config, plan *relocation.Plan) error {
	switch format {
	case "", "text":
		printPlan(w, plan)
		return nil
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(newPlanDocument(cfg, plan)); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q; valid: text, yaml", format)
}

// printPlan writes the policy grid, A on the vertical axis with the largest
// count on top, followed by a value summary and per-round statistics.
func printPlan(w io.Writer, plan *relocation.Plan) {
	res := plan.Result
	fmt.Fprintln(w, "=== Policy (rows: units at A, columns: units at B) ===")
	n := len(plan.Policy)
	header := []string{"   "}
	for b := 0; b < n; b++ {
		header = append(header, fmt.Sprintf("%3d", b))
	}
	fmt.Fprintln(w, strings.Join(header, " "))
	for a := n - 1; a >= 0; a-- {
		row := []string{fmt.Sprintf("%3d", a)}
		for _, action := range plan.Policy[a] {
			row = append(row, fmt.Sprintf("%3d", action))
		}
		fmt.Fprintln(w, strings.Join(row, " "))
	}

	fmt.Fprintln(w, "=== Values ===")
	fmt.Fprintf(w, "min=%.3f max=%.3f mean=%.3f\n",
		floats.Min(res.Values), floats.Max(res.Values), floats.Sum(res.Values)/float64(len(res.Values)))

	fmt.Fprintln(w, "=== Rounds ===")
	for _, r := range res.Rounds {
		fmt.Fprintf(w, "round %d: sweeps=%d delta=%.3g changed=%d value_sum=%.3f\n",
			r.Round, r.Sweeps, r.Delta, r.Changed, r.ValueSum)
	}
	fmt.Fprintf(w, "run_id=%s method=%s converged=%v sweeps=%d wall_time=%v\n",
		res.RunID, res.Method, res.Converged, res.Sweeps, res.WallTime)
}
