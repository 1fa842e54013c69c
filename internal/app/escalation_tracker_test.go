package app

import (
	"context"
	"testing"

	"github.com/dealnexus/discovery/internal/core/agents"
	"github.com/dealnexus/discovery/internal/ports/secondary"
)

func unresolvedEntry(sender, recipient, issue string) *secondary.LedgerEntryRecord {
	return &secondary.LedgerEntryRecord{
		ConversationID:   agents.ConversationKey(sender, recipient, issue),
		Sender:           sender,
		Recipient:        recipient,
		IssueIdentified:  issue,
		ResolutionStatus: "unresolved",
	}
}

func TestEscalationTracker_Record_EscalatesAtThreshold(t *testing.T) {
	repo := newMockInterventionRepository()
	tracker := NewEscalationTracker(repo, 3)
	ctx := context.Background()

	entry := unresolvedEntry(agents.Compliance, agents.Feasibility, "Data residency conflict")

	for turn := 1; turn <= 3; turn++ {
		count, escalated, err := tracker.Record(ctx, entry)
		if err != nil {
			t.Fatalf("turn %d: expected no error, got %v", turn, err)
		}
		if count != turn {
			t.Errorf("turn %d: expected count %d, got %d", turn, turn, count)
		}
		if escalated != (turn == 3) {
			t.Errorf("turn %d: escalated = %v", turn, escalated)
		}
	}

	if len(repo.records) != 1 {
		t.Fatalf("expected 1 intervention record, got %d", len(repo.records))
	}
	record := repo.records[0]
	if record.ParticipantA != agents.Compliance || record.ParticipantB != agents.Feasibility {
		t.Errorf("unexpected participants %q/%q", record.ParticipantA, record.ParticipantB)
	}
}

func TestEscalationTracker_Record_EscalationDoesNotReset(t *testing.T) {
	repo := newMockInterventionRepository()
	tracker := NewEscalationTracker(repo, 3)
	ctx := context.Background()

	entry := unresolvedEntry(agents.Compliance, agents.Feasibility, "Data residency conflict")
	for i := 0; i < 4; i++ {
		if _, _, err := tracker.Record(ctx, entry); err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
	}

	if got := tracker.TurnCount(agents.Compliance, agents.Feasibility, "Data residency conflict"); got != 4 {
		t.Errorf("expected count 4 after 4 unresolved turns, got %d", got)
	}
	// The 4th unresolved turn is still past the threshold.
	if len(repo.records) != 2 {
		t.Errorf("expected 2 intervention records, got %d", len(repo.records))
	}
}

func TestEscalationTracker_Record_PendingIsNoOp(t *testing.T) {
	repo := newMockInterventionRepository()
	tracker := NewEscalationTracker(repo, 3)
	ctx := context.Background()

	entry := unresolvedEntry(agents.Compliance, agents.Feasibility, "Data residency conflict")
	entry.ResolutionStatus = "pending"

	for i := 0; i < 5; i++ {
		count, escalated, err := tracker.Record(ctx, entry)
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if count != 0 || escalated {
			t.Fatalf("expected pending entries to leave the counter at 0, got count=%d escalated=%v", count, escalated)
		}
	}
}

func TestEscalationTracker_Record_OrderIndependentKey(t *testing.T) {
	repo := newMockInterventionRepository()
	tracker := NewEscalationTracker(repo, 3)
	ctx := context.Background()

	// Messages in both directions count against the same conversation.
	tracker.Record(ctx, unresolvedEntry(agents.Compliance, agents.Feasibility, "Data residency conflict"))
	tracker.Record(ctx, unresolvedEntry(agents.Feasibility, agents.Compliance, "Data residency conflict"))

	if got := tracker.TurnCount(agents.Compliance, agents.Feasibility, "Data residency conflict"); got != 2 {
		t.Errorf("expected count 2 across both directions, got %d", got)
	}
}

func TestEscalationTracker_Record_RepoFailure(t *testing.T) {
	repo := newMockInterventionRepository()
	repo.failing = true
	tracker := NewEscalationTracker(repo, 1)
	ctx := context.Background()

	_, _, err := tracker.Record(ctx, unresolvedEntry(agents.Compliance, agents.Feasibility, "Data residency conflict"))
	if err == nil {
		t.Fatal("expected error when the intervention write fails")
	}
}

func TestEscalationTracker_Replay(t *testing.T) {
	ledgerRepo := newMockLedgerRepository()
	ctx := context.Background()

	// Persisted history: two unresolved turns on one issue, a full
	// unresolved-resolved cycle on another.
	ledgerRepo.Append(ctx, unresolvedEntry(agents.Compliance, agents.Feasibility, "Data residency conflict"))
	ledgerRepo.Append(ctx, unresolvedEntry(agents.Compliance, agents.Feasibility, "Data residency conflict"))
	ledgerRepo.Append(ctx, unresolvedEntry(agents.Economics, agents.Synthesis, "Margin pressure"))
	resolved := unresolvedEntry(agents.Economics, agents.Synthesis, "Margin pressure")
	resolved.ResolutionStatus = "resolved"
	ledgerRepo.Append(ctx, resolved)

	repo := newMockInterventionRepository()
	tracker := NewEscalationTracker(repo, 3)
	if err := tracker.Replay(ctx, ledgerRepo); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := tracker.TurnCount(agents.Compliance, agents.Feasibility, "Data residency conflict"); got != 2 {
		t.Errorf("expected replayed count 2, got %d", got)
	}
	if got := tracker.TurnCount(agents.Economics, agents.Synthesis, "Margin pressure"); got != 0 {
		t.Errorf("expected replayed count 0 after resolution, got %d", got)
	}
	if len(repo.records) != 0 {
		t.Errorf("expected replay to emit no intervention records, got %d", len(repo.records))
	}

	// The next unresolved turn resumes from the replayed count.
	count, escalated, err := tracker.Record(ctx, unresolvedEntry(agents.Compliance, agents.Feasibility, "Data residency conflict"))
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if count != 3 || !escalated {
		t.Errorf("expected the resumed counter to escalate at 3, got count=%d escalated=%v", count, escalated)
	}
}

func TestEscalationTracker_Replay_PastThresholdEmitsNothing(t *testing.T) {
	ledgerRepo := newMockLedgerRepository()
	ctx := context.Background()
	for i := 0; i < 4; i++ {
		ledgerRepo.Append(ctx, unresolvedEntry(agents.Compliance, agents.Feasibility, "Data residency conflict"))
	}

	repo := newMockInterventionRepository()
	tracker := NewEscalationTracker(repo, 3)
	if err := tracker.Replay(ctx, ledgerRepo); err != nil {
		t.Fatalf("expected no error, got %v", err)
	}

	if got := tracker.TurnCount(agents.Compliance, agents.Feasibility, "Data residency conflict"); got != 4 {
		t.Errorf("expected replayed count 4, got %d", got)
	}
	if len(repo.records) != 0 {
		t.Errorf("expected no records from replay past the threshold, got %d", len(repo.records))
	}
}
