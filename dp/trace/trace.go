package trace

// TraceLevel controls the verbosity of solve tracing.
type TraceLevel string

const (
	// TraceLevelNone disables tracing (zero overhead).
	TraceLevelNone TraceLevel = "none"
	// TraceLevelRounds captures one record per round.
	TraceLevelRounds TraceLevel = "rounds"
	// TraceLevelChanges captures round records plus every per-state policy change.
	TraceLevelChanges TraceLevel = "changes"
)

// validTraceLevels maps accepted trace level strings.
var validTraceLevels = map[TraceLevel]bool{
	TraceLevelNone:    true,
	TraceLevelRounds:  true,
	TraceLevelChanges: true,
	"":                true, // empty defaults to none
}

// IsValidTraceLevel returns true if the given level string is a recognized trace level.
func IsValidTraceLevel(level string) bool {
	return validTraceLevels[TraceLevel(level)]
}

// SolveTrace collects records during a solve.
type SolveTrace struct {
	Level   TraceLevel
	Rounds  []RoundRecord
	Changes []ChangeRecord
}

// NewSolveTrace creates a SolveTrace ready for recording.
// Returns nil for TraceLevelNone and the empty level; all methods are nil-safe.
func NewSolveTrace(level TraceLevel) *SolveTrace {
	if level == TraceLevelNone || level == "" {
		return nil
	}
	return &SolveTrace{
		Level:   level,
		Rounds:  make([]RoundRecord, 0),
		Changes: make([]ChangeRecord, 0),
	}
}

// RecordRound appends a round record.
func (st *SolveTrace) RecordRound(record RoundRecord) {
	if st == nil {
		return
	}
	st.Rounds = append(st.Rounds, record)
}

// RecordChange appends a policy change record. Ignored below TraceLevelChanges.
func (st *SolveTrace) RecordChange(record ChangeRecord) {
	if st == nil || st.Level != TraceLevelChanges {
		return
	}
	st.Changes = append(st.Changes, record)
}

// WantsChanges reports whether per-state change records are kept.
func (st *SolveTrace) WantsChanges() bool {
	return st != nil && st.Level == TraceLevelChanges
}
