// Package run contains the pure business logic for pipeline runs: stage
// identity, stage ordering, and status rules. No I/O, only pure functions.
package run

import "github.com/dealnexus/discovery/internal/core/agents"

// Status represents the possible states of a run.
type Status string

const (
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusError     Status = "error"
)

// StageStatus represents the possible states of a single stage result.
type StageStatus string

const (
	StagePending   StageStatus = "pending"
	StageCompleted StageStatus = "completed"
	StageError     StageStatus = "error"
)

// ScanDisposition records the outcome of the post-synthesis marker scan on a
// run. Empty means the scan never ran, which is distinct from a clean result.
type ScanDisposition string

const (
	ScanUnchecked ScanDisposition = ""
	ScanClear     ScanDisposition = "clear"
	ScanFlagged   ScanDisposition = "flagged"
)

// Stages lists the five stage identifiers in execution order. Feasibility
// and compliance are mutually independent and may execute concurrently;
// every other ordering constraint is strict.
var Stages = []string{
	agents.Strategist,
	agents.Feasibility,
	agents.Compliance,
	agents.Economics,
	agents.Synthesis,
}

// IsStage reports whether stageID names one of the five pipeline stages.
func IsStage(stageID string) bool {
	for _, s := range Stages {
		if s == stageID {
			return true
		}
	}
	return false
}

// Skippable reports whether a failure of the given stage lets the run
// continue. The strategist performs industry detection that every later
// stage depends on, so its failure aborts the run.
func Skippable(stageID string) bool {
	return stageID != agents.Strategist
}

// InitialStatus returns the initial status for a new run.
func InitialStatus() Status {
	return StatusRunning
}
