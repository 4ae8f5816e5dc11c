package domain

import "time"

// RunOutcome is the terminal state of one import run.
type RunOutcome string

const (
	OutcomeNoop      RunOutcome = "noop"
	OutcomeLocked    RunOutcome = "locked"
	OutcomeAborted   RunOutcome = "aborted"
	OutcomeCompleted RunOutcome = "completed"
)

// RunStats holds statistics about an import run.
type RunStats struct {
	RunID    string        `json:"run_id"`
	Outcome  RunOutcome    `json:"outcome"`
	Reason   string        `json:"reason,omitempty"`
	Fetched  int           `json:"fetched"`
	Imported int           `json:"imported"`
	Skipped  int           `json:"skipped"`
	Invalid  int           `json:"invalid"`
	Failed   int           `json:"failed"`
	Duration time.Duration `json:"duration"`
}
