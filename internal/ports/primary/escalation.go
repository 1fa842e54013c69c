package primary

import "context"

// InterventionService defines the primary port for the durable escalation
// log consumed by alerting and review surfaces.
type InterventionService interface {
	// ListInterventions retrieves intervention records in insertion order,
	// optionally scoped to one run.
	ListInterventions(ctx context.Context, runID string) ([]*Intervention, error)
}

// Intervention represents a human-intervention record at the port boundary.
type Intervention struct {
	Seq             int64
	RunID           string // Empty for escalations raised outside a run
	ParticipantA    string
	ParticipantB    string
	Issue           string
	PolicyReference string
	TurnCount       int
	Threshold       int
	Options         []string
	CreatedAt       string
}
