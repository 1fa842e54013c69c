package app

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/dealnexus/discovery/internal/core/agents"
	"github.com/dealnexus/discovery/internal/core/run"
	"github.com/dealnexus/discovery/internal/core/signals"
	"github.com/dealnexus/discovery/internal/ports/primary"
	"github.com/dealnexus/discovery/internal/ports/secondary"
)

// neutralSentiment is used when the up-front sentiment call fails. The
// pipeline never blocks on sentiment.
var neutralSentiment = secondary.Sentiment{
	Score:   50,
	Summary: "Sentiment assessment unavailable.",
}

// PipelineServiceImpl implements the PipelineService interface. It owns the
// fixed stage sequence and all escalation bookkeeping a run produces.
type PipelineServiceImpl struct {
	runRepo          secondary.RunRepository
	stageRepo        secondary.StageResultRepository
	interventionRepo secondary.InterventionRepository
	ledgerService    primary.LedgerService
	executor         secondary.StageExecutor
	reference        secondary.ReferenceDataProvider
	threshold        int
	now              func() time.Time
}

// NewPipelineService creates a new PipelineService with injected
// dependencies.
func NewPipelineService(
	runRepo secondary.RunRepository,
	stageRepo secondary.StageResultRepository,
	interventionRepo secondary.InterventionRepository,
	ledgerService primary.LedgerService,
	executor secondary.StageExecutor,
	reference secondary.ReferenceDataProvider,
	threshold int,
) *PipelineServiceImpl {
	return &PipelineServiceImpl{
		runRepo:          runRepo,
		stageRepo:        stageRepo,
		interventionRepo: interventionRepo,
		ledgerService:    ledgerService,
		executor:         executor,
		reference:        reference,
		threshold:        threshold,
		now:              time.Now,
	}
}

// StartRun executes the full stage sequence once. Precondition failures are
// returned synchronously before any row is written; once the run row exists,
// stage failures are recorded as data and the method returns the final run
// state with a nil error.
func (s *PipelineServiceImpl) StartRun(ctx context.Context, req primary.StartRunRequest) (*primary.RunState, error) {
	if strings.TrimSpace(req.Transcript) == "" {
		return nil, fmt.Errorf("transcript is empty")
	}
	if !s.executor.Configured() {
		return nil, fmt.Errorf("stage executor is not configured: set the API key and endpoint first")
	}

	// Reference data is loaded before the run row exists so a broken
	// knowledge base rejects the run instead of producing a half-run.
	baseline, err := s.reference.BaselineMetrics(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load baseline metrics: %w", err)
	}

	id, err := s.runRepo.GetNextID(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get next run ID: %w", err)
	}

	record := &secondary.RunRecord{
		ID:            id,
		ClientContext: req.ClientContext,
		Status:        string(run.InitialStatus()),
		StartedAt:     s.now().UTC().Format(time.RFC3339),
	}
	if err := s.runRepo.Create(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create run: %w", err)
	}

	sentiment, err := s.executor.AssessSentiment(ctx, req.Transcript)
	if err != nil || sentiment == nil {
		fallback := neutralSentiment
		sentiment = &fallback
	}
	record.SentimentScore = sentiment.Score
	record.SentimentSummary = sentiment.Summary

	// Strategist runs first. Everything downstream depends on its industry
	// detection, so its failure aborts the run.
	strategistOutcome := s.executor.Execute(ctx, agents.Strategist, &secondary.StageContext{
		ClientContext:   req.ClientContext,
		Transcript:      req.Transcript,
		BaselineMetrics: baseline,
		PreviousOutputs: map[string]any{},
		Sentiment:       sentiment,
	})
	if err := s.putOutcome(ctx, id, agents.Strategist, strategistOutcome); err != nil {
		return nil, err
	}
	if !strategistOutcome.Completed() {
		record.Status = string(run.StatusError)
		record.CompletedAt = s.now().UTC().Format(time.RFC3339)
		if err := s.runRepo.Update(ctx, record); err != nil {
			return nil, fmt.Errorf("failed to finalize run: %w", err)
		}
		return s.buildState(ctx, record)
	}

	industry := signals.DetectedIndustry(strategistOutcome.Payload)
	kpis, err := s.reference.IndustryKPIsFor(ctx, industry)
	if err != nil {
		kpis = map[string]any{}
	}

	outputs := map[string]any{
		agents.Strategist: downstreamOutput(strategistOutcome),
	}

	stageCtx := func() *secondary.StageContext {
		return &secondary.StageContext{
			ClientContext:    req.ClientContext,
			Transcript:       req.Transcript,
			DetectedIndustry: industry,
			IndustryKPIs:     kpis,
			BaselineMetrics:  baseline,
			PreviousOutputs:  copyOutputs(outputs),
			Sentiment:        sentiment,
		}
	}

	// Feasibility and compliance are mutually independent.
	var feasibilityOutcome, complianceOutcome *secondary.StageOutcome
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		feasibilityOutcome = s.executor.Execute(gctx, agents.Feasibility, stageCtx())
		return nil
	})
	g.Go(func() error {
		complianceOutcome = s.executor.Execute(gctx, agents.Compliance, stageCtx())
		return nil
	})
	// Goroutines report failure on the outcome, never as an error.
	_ = g.Wait()

	if err := s.putOutcome(ctx, id, agents.Feasibility, feasibilityOutcome); err != nil {
		return nil, err
	}
	if err := s.putOutcome(ctx, id, agents.Compliance, complianceOutcome); err != nil {
		return nil, err
	}
	outputs[agents.Feasibility] = downstreamOutput(feasibilityOutcome)
	outputs[agents.Compliance] = downstreamOutput(complianceOutcome)

	interventionNeeded := false

	// Blocking pairing: a non-approved compliance verdict combined with
	// custom-build requirements means the delivery plan cannot proceed as
	// drafted. The disagreement goes on the ledger before synthesis runs.
	complianceStatus := signals.ComplianceStatus(complianceOutcome.Payload)
	customBuilds := signals.CustomBuilds(feasibilityOutcome.Payload)
	if complianceOutcome.Completed() && !signals.IsApproved(complianceStatus) && len(customBuilds) > 0 {
		issue := fmt.Sprintf("Compliance status %s conflicts with %d custom build requirement(s)", complianceStatus, len(customBuilds))
		if _, err := s.ledgerService.Append(ctx, primary.AppendEntryRequest{
			Sender:           agents.Compliance,
			Recipient:        agents.Feasibility,
			IssueIdentified:  issue,
			PolicyReference:  signals.ComplianceSummary(complianceOutcome.Payload),
			ResolutionStatus: primary.ResolutionUnresolved,
		}); err != nil {
			return nil, fmt.Errorf("failed to log blocking condition: %w", err)
		}
		interventionNeeded = true
	}

	economicsOutcome := s.executor.Execute(ctx, agents.Economics, stageCtx())
	if err := s.putOutcome(ctx, id, agents.Economics, economicsOutcome); err != nil {
		return nil, err
	}
	outputs[agents.Economics] = downstreamOutput(economicsOutcome)

	synthesisOutcome := s.executor.Execute(ctx, agents.Synthesis, stageCtx())
	if err := s.putOutcome(ctx, id, agents.Synthesis, synthesisOutcome); err != nil {
		return nil, err
	}

	if synthesisOutcome.Completed() {
		artifact := synthesisOutcome.Raw
		if !economicsOutcome.Completed() {
			artifact = "NOTE: Economic analysis unavailable for this run; the assessment below excludes ROI modeling.\n\n" + artifact
		}
		record.Artifact = artifact

		if signals.HasInterventionMarker(artifact) {
			interventionNeeded = true
			record.ScanDisposition = string(run.ScanFlagged)
			if err := s.recordScanFindings(ctx, id, complianceOutcome, feasibilityOutcome, economicsOutcome); err != nil {
				return nil, err
			}
		} else if interventionNeeded {
			record.ScanDisposition = string(run.ScanFlagged)
		} else {
			record.ScanDisposition = string(run.ScanClear)
		}
	} else {
		// Synthesis failure always forces intervention. The marker scan has
		// nothing to scan, so the disposition stays unchecked.
		interventionNeeded = true
		record.Artifact = fmt.Sprintf("Final assembly failed: %s. Stage outputs are retained for manual review.", synthesisOutcome.Err)
		if err := s.appendIntervention(ctx, id, agents.Synthesis, agents.Strategist,
			fmt.Sprintf("Synthesis stage failed: %s", synthesisOutcome.Err), "pipeline"); err != nil {
			return nil, err
		}
	}

	record.Status = string(run.StatusCompleted)
	record.InterventionNeeded = interventionNeeded
	record.CompletedAt = s.now().UTC().Format(time.RFC3339)
	if err := s.runRepo.Update(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to finalize run: %w", err)
	}

	return s.buildState(ctx, record)
}

// GetRun retrieves a run-state snapshot by ID.
func (s *PipelineServiceImpl) GetRun(ctx context.Context, runID string) (*primary.RunState, error) {
	record, err := s.runRepo.GetByID(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	return s.buildState(ctx, record)
}

// GetLatestRun retrieves the most recently started run.
func (s *PipelineServiceImpl) GetLatestRun(ctx context.Context) (*primary.RunState, error) {
	record, err := s.runRepo.GetLatest(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}
	return s.buildState(ctx, record)
}

// ListRuns lists recent runs, newest first.
func (s *PipelineServiceImpl) ListRuns(ctx context.Context, limit int) ([]*primary.RunState, error) {
	records, err := s.runRepo.List(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}

	states := make([]*primary.RunState, 0, len(records))
	for _, r := range records {
		state, err := s.buildState(ctx, r)
		if err != nil {
			return nil, err
		}
		states = append(states, state)
	}
	return states, nil
}

// Helper methods

// recordScanFindings appends one intervention record per concrete signal
// present in the stage payloads, or a single generic record when the marker
// cannot be traced to any signal.
func (s *PipelineServiceImpl) recordScanFindings(ctx context.Context, runID string, compliance, feasibility, economics *secondary.StageOutcome) error {
	recorded := false

	complianceStatus := signals.ComplianceStatus(compliance.Payload)
	if compliance.Completed() && !signals.IsApproved(complianceStatus) {
		issue := fmt.Sprintf("Compliance review returned %s", complianceStatus)
		if err := s.appendIntervention(ctx, runID, agents.Compliance, agents.Synthesis, issue, signals.ComplianceSummary(compliance.Payload)); err != nil {
			return err
		}
		recorded = true
	}

	if builds := signals.CustomBuilds(feasibility.Payload); len(builds) > 0 {
		issue := fmt.Sprintf("%d custom build requirement(s) need scoping: %s", len(builds), strings.Join(builds, "; "))
		if err := s.appendIntervention(ctx, runID, agents.Feasibility, agents.Economics, issue, "delivery"); err != nil {
			return err
		}
		recorded = true
	}

	if risk := signals.DealRisk(economics.Payload); signals.IsHighRisk(risk) {
		issue := fmt.Sprintf("Deal risk classified %s: %s", risk, signals.Recommendation(economics.Payload))
		if err := s.appendIntervention(ctx, runID, agents.Economics, agents.Synthesis, issue, "economics"); err != nil {
			return err
		}
		recorded = true
	}

	if !recorded {
		return s.appendIntervention(ctx, runID, agents.Synthesis, agents.Strategist,
			"Unresolved work markers present in the final artifact", "pipeline")
	}
	return nil
}

func (s *PipelineServiceImpl) appendIntervention(ctx context.Context, runID, participantA, participantB, issue, policyRef string) error {
	record := &secondary.InterventionRecord{
		RunID:           runID,
		ParticipantA:    participantA,
		ParticipantB:    participantB,
		Issue:           issue,
		PolicyReference: policyRef,
		Threshold:       s.threshold,
		Options:         resolutionOptions,
	}
	if err := s.interventionRepo.Append(ctx, record); err != nil {
		return fmt.Errorf("failed to record intervention: %w", err)
	}
	return nil
}

func (s *PipelineServiceImpl) putOutcome(ctx context.Context, runID, stageID string, outcome *secondary.StageOutcome) error {
	result := &secondary.StageResultRecord{
		RunID:       runID,
		StageID:     stageID,
		Status:      outcome.Status,
		Payload:     outcome.Payload,
		Raw:         outcome.Raw,
		Error:       outcome.Err,
		CompletedAt: outcome.CompletedAt,
	}
	if result.CompletedAt == "" {
		result.CompletedAt = s.now().UTC().Format(time.RFC3339)
	}
	if err := s.stageRepo.Put(ctx, result); err != nil {
		return fmt.Errorf("failed to store %s result: %w", stageID, err)
	}
	return nil
}

func (s *PipelineServiceImpl) buildState(ctx context.Context, record *secondary.RunRecord) (*primary.RunState, error) {
	results, err := s.stageRepo.ListByRun(ctx, record.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage results: %w", err)
	}

	statuses := make(map[string]string, len(run.Stages))
	for _, stageID := range run.Stages {
		statuses[stageID] = string(run.StagePending)
	}
	for _, r := range results {
		statuses[r.StageID] = r.Status
	}

	return &primary.RunState{
		ID:                 record.ID,
		ClientContext:      record.ClientContext,
		Status:             record.Status,
		StageStatuses:      statuses,
		InterventionNeeded: record.InterventionNeeded,
		ScanDisposition:    record.ScanDisposition,
		SentimentScore:     record.SentimentScore,
		SentimentSummary:   record.SentimentSummary,
		Artifact:           record.Artifact,
		StartedAt:          record.StartedAt,
		CompletedAt:        record.CompletedAt,
	}, nil
}

// downstreamOutput is what later stages see of an earlier stage. A failed
// stage contributes an explicit error placeholder, never a stale payload.
func downstreamOutput(outcome *secondary.StageOutcome) map[string]any {
	if !outcome.Completed() {
		return map[string]any{
			"status": string(run.StageError),
			"error":  outcome.Err,
		}
	}
	if outcome.Payload != nil {
		return outcome.Payload
	}
	return map[string]any{"raw": outcome.Raw}
}

func copyOutputs(outputs map[string]any) map[string]any {
	copied := make(map[string]any, len(outputs))
	for k, v := range outputs {
		copied[k] = v
	}
	return copied
}

// Ensure PipelineServiceImpl implements the interface.
var _ primary.PipelineService = (*PipelineServiceImpl)(nil)
