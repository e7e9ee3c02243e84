// Package dp provides exact dynamic-programming solvers for finite MDPs.
//
// # Reading Guide
//
// Start with these files:
//   - model.go: the Model interface every problem implements (states, feasible actions, Bellman backup)
//   - solver.go: the Solver context object holding the value and policy tables
//   - policy_iteration.go: evaluation, improvement and the two-phase driver
//   - value_iteration.go: the single-loop optimality backup and policy extraction
//
// # Architecture
//
// The dp package owns the generic loops; problems live in sub-packages:
//   - dp/relocation/: two-location inventory relocation with Poisson demand and replenishment
//   - dp/gambler/: stake sizing towards a capital goal
//   - dp/lightsout/: minimum presses to light every cell of a toggle board
//   - dp/trace/: per-round records of a solve
//
// A Solver never touches package-level state: the value table, policy table,
// options and logger all hang off the Solver, so independent solves can run
// side by side.
package dp
