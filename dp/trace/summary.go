package trace

// TraceSummary aggregates statistics from a SolveTrace.
type TraceSummary struct {
	Rounds       int
	TotalSweeps  int
	TotalChanges int
	FinalDelta   float64
	MaxGain      float64
	// Monotonic is true when ValueSum never decreased between consecutive
	// evaluate records by more than the slack passed to Summarize.
	Monotonic      bool
	ChangesByRound map[int]int
}

// Summarize computes aggregate statistics from a SolveTrace.
// Safe for nil or empty traces (returns zero-value fields, Monotonic true).
func Summarize(st *SolveTrace, slack float64) *TraceSummary {
	summary := &TraceSummary{
		Monotonic:      true,
		ChangesByRound: make(map[int]int),
	}
	if st == nil {
		return summary
	}

	prev := 0.0
	seen := false
	for _, r := range st.Rounds {
		summary.TotalSweeps += r.Sweeps
		summary.TotalChanges += r.Changed
		if r.Round > summary.Rounds {
			summary.Rounds = r.Round
		}
		if r.Phase == "improve" {
			if r.Changed > 0 {
				summary.ChangesByRound[r.Round] = r.Changed
			}
			continue
		}
		summary.FinalDelta = r.Delta
		if seen && r.ValueSum < prev-slack {
			summary.Monotonic = false
		}
		prev = r.ValueSum
		seen = true
	}

	for _, c := range st.Changes {
		if c.Gain > summary.MaxGain {
			summary.MaxGain = c.Gain
		}
	}

	return summary
}
