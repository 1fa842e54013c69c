package app

import (
	"context"
	"fmt"
	"time"

	"github.com/dealnexus/discovery/internal/core/agents"
	"github.com/dealnexus/discovery/internal/ports/primary"
	"github.com/dealnexus/discovery/internal/ports/secondary"
)

// LedgerServiceImpl implements the LedgerService interface.
type LedgerServiceImpl struct {
	ledgerRepo secondary.LedgerRepository
	tracker    *EscalationTracker
	now        func() time.Time
}

// NewLedgerService creates a new LedgerService with injected dependencies.
func NewLedgerService(ledgerRepo secondary.LedgerRepository, tracker *EscalationTracker) *LedgerServiceImpl {
	return &LedgerServiceImpl{
		ledgerRepo: ledgerRepo,
		tracker:    tracker,
		now:        time.Now,
	}
}

// Append validates and logs one inter-agent message, then feeds it to the
// escalation tracker. Validation rejects the call before anything is
// written, so an invalid request never partially appends.
func (s *LedgerServiceImpl) Append(ctx context.Context, req primary.AppendEntryRequest) (*primary.AppendEntryResponse, error) {
	if err := agents.ValidatePair(req.Sender, req.Recipient); err != nil {
		return nil, err
	}

	status := req.ResolutionStatus
	if status == "" {
		status = primary.ResolutionPending
	}
	if status != primary.ResolutionPending && status != primary.ResolutionUnresolved && status != primary.ResolutionResolved {
		return nil, fmt.Errorf("invalid resolution status: %s", status)
	}

	record := &secondary.LedgerEntryRecord{
		ConversationID:   agents.ConversationID(req.Sender, req.Recipient, s.now()),
		Sender:           req.Sender,
		Recipient:        req.Recipient,
		IssueIdentified:  req.IssueIdentified,
		PolicyReference:  req.PolicyReference,
		ResolutionStatus: status,
	}

	appended, err := s.ledgerRepo.Append(ctx, record)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	turnCount, escalated, err := s.tracker.Record(ctx, appended)
	if err != nil {
		return nil, err
	}

	return &primary.AppendEntryResponse{
		Entry:               s.recordToEntry(appended),
		UnresolvedTurnCount: turnCount,
		MaxTurnsAllowed:     s.tracker.Threshold(),
		EscalationTriggered: escalated,
	}, nil
}

// List retrieves entries in insertion order, optionally filtered by sender
// and/or recipient.
func (s *LedgerServiceImpl) List(ctx context.Context, filters primary.LedgerFilters) ([]*primary.ConversationEntry, error) {
	records, err := s.ledgerRepo.List(ctx, secondary.LedgerFilters{
		Sender:    filters.Sender,
		Recipient: filters.Recipient,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}

	entries := make([]*primary.ConversationEntry, len(records))
	for i, r := range records {
		entries[i] = s.recordToEntry(r)
	}
	return entries, nil
}

// Resolve marks all entries sharing the conversation ID as resolved.
// Returns false when no entry matched.
func (s *LedgerServiceImpl) Resolve(ctx context.Context, conversationID string) (bool, error) {
	updated, err := s.ledgerRepo.Resolve(ctx, conversationID)
	if err != nil {
		return false, fmt.Errorf("failed to resolve conversation: %w", err)
	}
	return updated > 0, nil
}

// Unresolved retrieves all entries whose resolution status is 'unresolved'.
func (s *LedgerServiceImpl) Unresolved(ctx context.Context) ([]*primary.ConversationEntry, error) {
	records, err := s.ledgerRepo.List(ctx, secondary.LedgerFilters{
		ResolutionStatus: primary.ResolutionUnresolved,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list unresolved entries: %w", err)
	}

	entries := make([]*primary.ConversationEntry, len(records))
	for i, r := range records {
		entries[i] = s.recordToEntry(r)
	}
	return entries, nil
}

// Helper methods

func (s *LedgerServiceImpl) recordToEntry(r *secondary.LedgerEntryRecord) *primary.ConversationEntry {
	return &primary.ConversationEntry{
		ConversationID:   r.ConversationID,
		Sender:           r.Sender,
		Recipient:        r.Recipient,
		IssueIdentified:  r.IssueIdentified,
		PolicyReference:  r.PolicyReference,
		ResolutionStatus: r.ResolutionStatus,
		Timestamp:        r.CreatedAt,
	}
}

// Ensure LedgerServiceImpl implements the interface.
var _ primary.LedgerService = (*LedgerServiceImpl)(nil)
