package app

import (
	"context"
	"fmt"

	"github.com/dealnexus/discovery/internal/ports/primary"
	"github.com/dealnexus/discovery/internal/ports/secondary"
)

// InterventionServiceImpl implements the InterventionService interface.
type InterventionServiceImpl struct {
	interventionRepo secondary.InterventionRepository
}

// NewInterventionService creates a new InterventionService with injected
// dependencies.
func NewInterventionService(interventionRepo secondary.InterventionRepository) *InterventionServiceImpl {
	return &InterventionServiceImpl{interventionRepo: interventionRepo}
}

// ListInterventions retrieves intervention records in insertion order,
// optionally scoped to one run.
func (s *InterventionServiceImpl) ListInterventions(ctx context.Context, runID string) ([]*primary.Intervention, error) {
	records, err := s.interventionRepo.List(ctx, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to list interventions: %w", err)
	}

	interventions := make([]*primary.Intervention, len(records))
	for i, r := range records {
		interventions[i] = &primary.Intervention{
			Seq:             r.Seq,
			RunID:           r.RunID,
			ParticipantA:    r.ParticipantA,
			ParticipantB:    r.ParticipantB,
			Issue:           r.Issue,
			PolicyReference: r.PolicyReference,
			TurnCount:       r.TurnCount,
			Threshold:       r.Threshold,
			Options:         r.Options,
			CreatedAt:       r.CreatedAt,
		}
	}
	return interventions, nil
}

// Ensure InterventionServiceImpl implements the interface.
var _ primary.InterventionService = (*InterventionServiceImpl)(nil)
