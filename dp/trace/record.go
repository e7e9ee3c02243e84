// Package trace provides solve-trace recording for dynamic-programming runs.
// It has no dependencies on dp/ and stores pure data types.
package trace

// RoundRecord captures one evaluate/improve round of policy iteration, or one
// sweep batch of value iteration.
type RoundRecord struct {
	Round    int
	Phase    string  // "evaluate", "improve" or "value-iteration"
	Sweeps   int     // sweeps spent in this round
	Delta    float64 // max absolute value change in the last sweep
	Changed  int     // number of states whose action changed (improve only)
	ValueSum float64 // sum of the value table after the round
}

// ChangeRecord captures a single policy change at one state.
type ChangeRecord struct {
	Round     int
	State     int
	OldAction int
	NewAction int
	Gain      float64 // value(new) - value(old) under the table used for improvement
}
