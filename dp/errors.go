package dp

import "errors"

var (
	// ErrInvalidConfiguration is returned before any computation when a
	// problem or solver configuration is rejected.
	ErrInvalidConfiguration = errors.New("invalid configuration")

	// ErrNonConvergence is returned when an iteration cap is hit before the
	// tolerance is reached. The tables are left as they were at the cap.
	ErrNonConvergence = errors.New("did not converge")

	// ErrNoFeasibleAction means a non-terminal state offered no action.
	// Models guarantee at least one feasible action per state, so this is a bug.
	ErrNoFeasibleAction = errors.New("no feasible action")
)
