package primary

import "context"

// LedgerService defines the primary port for the conversation ledger: the
// durable record of inter-agent disagreement a review UI reads, appends to,
// and resolves.
type LedgerService interface {
	// Append validates and logs one inter-agent message. Participant
	// validation (agents.ErrInvalidParticipant, agents.ErrSelfReference)
	// rejects the call before anything is written.
	Append(ctx context.Context, req AppendEntryRequest) (*AppendEntryResponse, error)

	// List retrieves entries in insertion order, optionally filtered by
	// sender and/or recipient.
	List(ctx context.Context, filters LedgerFilters) ([]*ConversationEntry, error)

	// Resolve marks all entries sharing the conversation ID as resolved.
	// Returns false when no entry matched; that is a no-op query, not an
	// error.
	Resolve(ctx context.Context, conversationID string) (bool, error)

	// Unresolved retrieves all entries whose resolution status is
	// 'unresolved'.
	Unresolved(ctx context.Context) ([]*ConversationEntry, error)
}

// Resolution status constants
const (
	ResolutionPending    = "pending"
	ResolutionUnresolved = "unresolved"
	ResolutionResolved   = "resolved"
)

// ConversationEntry represents a ledger entry at the port boundary.
type ConversationEntry struct {
	ConversationID   string
	Sender           string
	Recipient        string
	IssueIdentified  string
	PolicyReference  string
	ResolutionStatus string
	Timestamp        string
}

// AppendEntryRequest carries the inputs for a ledger append.
type AppendEntryRequest struct {
	Sender           string
	Recipient        string
	IssueIdentified  string
	PolicyReference  string
	ResolutionStatus string // defaults to 'pending' when empty
}

// AppendEntryResponse reports the logged entry together with the escalation
// bookkeeping the append triggered.
type AppendEntryResponse struct {
	Entry               *ConversationEntry
	UnresolvedTurnCount int
	MaxTurnsAllowed     int
	EscalationTriggered bool
}

// LedgerFilters contains filter options for listing ledger entries.
type LedgerFilters struct {
	Sender    string
	Recipient string
}
