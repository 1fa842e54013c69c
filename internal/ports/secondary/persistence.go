// Package secondary defines the secondary ports (driven adapters) for the
// application. These are the interfaces through which the application drives
// external systems: the database, the stage executor backend, and the
// read-only knowledge base.
package secondary

import "context"

// RunRepository defines the secondary port for run persistence.
type RunRepository interface {
	// Create persists a new run.
	Create(ctx context.Context, run *RunRecord) error

	// GetByID retrieves a run by its ID.
	GetByID(ctx context.Context, id string) (*RunRecord, error)

	// GetLatest retrieves the most recently started run.
	GetLatest(ctx context.Context) (*RunRecord, error)

	// Update updates an existing run.
	Update(ctx context.Context, run *RunRecord) error

	// List retrieves runs in reverse start order.
	List(ctx context.Context, limit int) ([]*RunRecord, error)

	// GetNextID returns the next available run ID.
	GetNextID(ctx context.Context) (string, error)
}

// RunRecord represents a run as stored in persistence.
type RunRecord struct {
	ID                 string
	ClientContext      string
	Status             string // 'running', 'completed', 'error'
	InterventionNeeded bool
	ScanDisposition    string // '', 'clear', 'flagged'
	SentimentScore     int
	SentimentSummary   string
	Artifact           string
	StartedAt          string
	CompletedAt        string // Empty string means null
}

// StageResultRepository defines the secondary port for stage-result
// persistence. Each (run, stage) pair owns exactly one row; Put replaces any
// earlier write for that pair atomically (last write wins, no history).
type StageResultRepository interface {
	// Put stores the latest result for a stage within a run.
	Put(ctx context.Context, result *StageResultRecord) error

	// Get retrieves the result for a stage within a run.
	Get(ctx context.Context, runID, stageID string) (*StageResultRecord, error)

	// ListByRun retrieves all stage results for a run in pipeline order.
	ListByRun(ctx context.Context, runID string) ([]*StageResultRecord, error)
}

// StageResultRecord represents a stage result as stored in persistence.
// Payload carries the structured output when the executor response parsed as
// JSON; Raw carries the unstructured text otherwise. Error is set only when
// Status is 'error'.
type StageResultRecord struct {
	RunID       string
	StageID     string
	Status      string // 'pending', 'completed', 'error'
	Payload     map[string]any
	Raw         string
	Error       string
	CompletedAt string
}

// LedgerRepository defines the secondary port for the conversation ledger.
// The ledger is append-only: entries are never deleted, and the only in-place
// mutation is the resolution-status upgrade performed by Resolve.
type LedgerRepository interface {
	// Append persists a new ledger entry and returns it with its assigned
	// sequence number and timestamp.
	Append(ctx context.Context, entry *LedgerEntryRecord) (*LedgerEntryRecord, error)

	// List retrieves entries in insertion order, optionally filtered.
	List(ctx context.Context, filters LedgerFilters) ([]*LedgerEntryRecord, error)

	// Resolve marks all entries sharing the conversation ID as resolved.
	// Returns the number of entries updated (0 is a no-op, not an error).
	Resolve(ctx context.Context, conversationID string) (int, error)
}

// LedgerEntryRecord represents a ledger entry as stored in persistence.
type LedgerEntryRecord struct {
	Seq              int64
	ConversationID   string
	Sender           string
	Recipient        string
	IssueIdentified  string
	PolicyReference  string
	ResolutionStatus string // 'pending', 'unresolved', 'resolved'
	CreatedAt        string
}

// LedgerFilters contains filter options for listing ledger entries.
type LedgerFilters struct {
	Sender           string
	Recipient        string
	ResolutionStatus string
}

// InterventionRepository defines the secondary port for the durable
// escalation log. Records are append-only and never overwritten.
type InterventionRepository interface {
	// Append persists a new intervention record.
	Append(ctx context.Context, record *InterventionRecord) error

	// List retrieves intervention records in insertion order.
	List(ctx context.Context, runID string) ([]*InterventionRecord, error)
}

// InterventionRecord represents a human-intervention record as stored in the
// escalation log.
type InterventionRecord struct {
	Seq             int64
	RunID           string // Empty when raised by the tracker outside a run
	ParticipantA    string
	ParticipantB    string
	Issue           string
	PolicyReference string
	TurnCount       int
	Threshold       int
	Options         []string
	CreatedAt       string
}
