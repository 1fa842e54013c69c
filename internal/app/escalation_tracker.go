package app

import (
	"context"
	"fmt"
	"sync"

	"github.com/dealnexus/discovery/internal/core/agents"
	"github.com/dealnexus/discovery/internal/ports/primary"
	"github.com/dealnexus/discovery/internal/ports/secondary"
)

// resolutionOptions is the fixed set of recommended actions attached to
// every intervention record. It is enumerable, never computed.
var resolutionOptions = []string{
	"Override agent decision with human judgment",
	"Modify policy parameters to enable resolution",
	"Escalate to executive stakeholder for strategic direction",
}

// EscalationTracker maintains unresolved-turn counters per conversation key
// and appends a durable intervention record each time a counter crosses the
// threshold. Counters live in process memory; the persisted ledger is the
// source of truth and Replay recomputes them deterministically at startup.
type EscalationTracker struct {
	interventionRepo secondary.InterventionRepository
	threshold        int

	mu     sync.Mutex
	counts map[string]int
}

// NewEscalationTracker creates a tracker with the process-wide threshold.
// The threshold is fixed for the tracker's lifetime.
func NewEscalationTracker(interventionRepo secondary.InterventionRepository, threshold int) *EscalationTracker {
	return &EscalationTracker{
		interventionRepo: interventionRepo,
		threshold:        threshold,
		counts:           make(map[string]int),
	}
}

// Threshold returns the configured unresolved-turn limit.
func (t *EscalationTracker) Threshold() int {
	return t.threshold
}

// Record applies one appended ledger entry to the counters. An unresolved
// entry increments its conversation key's counter, a resolved entry resets
// it to zero, and a pending entry changes nothing. When an increment brings
// the counter to or past the threshold, a new intervention record is
// appended; escalation does not reset the counter (escalation and
// resolution are independent actions).
func (t *EscalationTracker) Record(ctx context.Context, entry *secondary.LedgerEntryRecord) (turnCount int, escalated bool, err error) {
	key := agents.ConversationKey(entry.Sender, entry.Recipient, entry.IssueIdentified)

	t.mu.Lock()
	switch entry.ResolutionStatus {
	case primary.ResolutionUnresolved:
		t.counts[key]++
	case primary.ResolutionResolved:
		t.counts[key] = 0
	}
	turnCount = t.counts[key]
	t.mu.Unlock()

	if entry.ResolutionStatus != primary.ResolutionUnresolved || turnCount < t.threshold {
		return turnCount, false, nil
	}

	record := &secondary.InterventionRecord{
		ParticipantA:    entry.Sender,
		ParticipantB:    entry.Recipient,
		Issue:           entry.IssueIdentified,
		PolicyReference: entry.PolicyReference,
		TurnCount:       turnCount,
		Threshold:       t.threshold,
		Options:         resolutionOptions,
	}
	if err := t.interventionRepo.Append(ctx, record); err != nil {
		return turnCount, false, fmt.Errorf("failed to record intervention: %w", err)
	}

	return turnCount, true, nil
}

// Replay rebuilds the counters from the persisted ledger by scanning every
// entry in insertion order and applying the same increment/reset rule. No
// intervention records are emitted: past crossings are already in the
// durable escalation log, and re-emitting them on every restart would
// duplicate it.
func (t *EscalationTracker) Replay(ctx context.Context, ledgerRepo secondary.LedgerRepository) error {
	entries, err := ledgerRepo.List(ctx, secondary.LedgerFilters{})
	if err != nil {
		return fmt.Errorf("failed to replay ledger: %w", err)
	}

	counts := make(map[string]int)
	for _, entry := range entries {
		key := agents.ConversationKey(entry.Sender, entry.Recipient, entry.IssueIdentified)
		switch entry.ResolutionStatus {
		case primary.ResolutionUnresolved:
			counts[key]++
		case primary.ResolutionResolved:
			counts[key] = 0
		}
	}

	t.mu.Lock()
	t.counts = counts
	t.mu.Unlock()

	return nil
}

// TurnCount returns the current unresolved-turn count for a conversation.
func (t *EscalationTracker) TurnCount(sender, recipient, issue string) int {
	key := agents.ConversationKey(sender, recipient, issue)
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.counts[key]
}
