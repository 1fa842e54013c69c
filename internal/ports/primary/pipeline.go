// Package primary defines the primary ports (driving adapters) for the
// application: the service interfaces the CLI and any future review UI
// consume, plus their boundary DTOs.
package primary

import "context"

// PipelineService defines the primary port for pipeline runs.
type PipelineService interface {
	// StartRun executes the full stage sequence once against one document.
	// Precondition failures (empty document, unconfigured backend) are
	// returned synchronously with no run persisted. Stage failures are
	// carried as data on the returned run state, not as an error.
	StartRun(ctx context.Context, req StartRunRequest) (*RunState, error)

	// GetRun retrieves a run-state snapshot by ID.
	GetRun(ctx context.Context, runID string) (*RunState, error)

	// GetLatestRun retrieves the most recently started run.
	GetLatestRun(ctx context.Context) (*RunState, error)

	// ListRuns lists recent runs, newest first.
	ListRuns(ctx context.Context, limit int) ([]*RunState, error)
}

// StartRunRequest carries the inputs for one pipeline run.
type StartRunRequest struct {
	Transcript    string
	ClientContext string
}

// RunState is the per-run snapshot exposed to the presentation layer.
// No success signal is derivable from it while InterventionNeeded is set or
// any stage is in error.
type RunState struct {
	ID                 string
	ClientContext      string
	Status             string // 'running', 'completed', 'error'
	StageStatuses      map[string]string
	InterventionNeeded bool
	ScanDisposition    string // '' (unchecked), 'clear', 'flagged'
	SentimentScore     int
	SentimentSummary   string
	Artifact           string
	StartedAt          string
	CompletedAt        string
}

// StageResult is a single stage's latest result at the port boundary.
type StageResult struct {
	StageID     string
	Status      string
	Payload     map[string]any
	Raw         string
	Error       string
	CompletedAt string
}
