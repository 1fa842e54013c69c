package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dealnexus/discovery/internal/ports/secondary"
)

// InterventionRepository implements secondary.InterventionRepository with
// SQLite. The escalation log is append-only; records are never rewritten or
// deduplicated.
type InterventionRepository struct {
	db *sql.DB
}

// NewInterventionRepository creates a new SQLite intervention repository.
func NewInterventionRepository(db *sql.DB) *InterventionRepository {
	return &InterventionRepository{db: db}
}

// Append persists a new intervention record.
func (r *InterventionRepository) Append(ctx context.Context, record *secondary.InterventionRecord) error {
	options, err := json.Marshal(record.Options)
	if err != nil {
		return fmt.Errorf("failed to encode resolution options: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		"INSERT INTO interventions (run_id, participant_a, participant_b, issue, policy_reference, turn_count, threshold, options) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		record.RunID, record.ParticipantA, record.ParticipantB, record.Issue, record.PolicyReference, record.TurnCount, record.Threshold, string(options),
	)
	if err != nil {
		return fmt.Errorf("failed to append intervention: %w", err)
	}

	return nil
}

// List retrieves intervention records in insertion order, optionally scoped
// to one run.
func (r *InterventionRepository) List(ctx context.Context, runID string) ([]*secondary.InterventionRecord, error) {
	query := "SELECT seq, run_id, participant_a, participant_b, issue, policy_reference, turn_count, threshold, options, created_at FROM interventions"
	args := []any{}

	if runID != "" {
		query += " WHERE run_id = ?"
		args = append(args, runID)
	}

	query += " ORDER BY seq ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list interventions: %w", err)
	}
	defer rows.Close()

	var records []*secondary.InterventionRecord
	for rows.Next() {
		var (
			runIDCol  sql.NullString
			policyRef sql.NullString
			options   sql.NullString
			createdAt time.Time
		)

		record := &secondary.InterventionRecord{}
		err := rows.Scan(&record.Seq, &runIDCol, &record.ParticipantA, &record.ParticipantB, &record.Issue, &policyRef, &record.TurnCount, &record.Threshold, &options, &createdAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan intervention: %w", err)
		}

		record.RunID = runIDCol.String
		record.PolicyReference = policyRef.String
		record.CreatedAt = createdAt.Format(time.RFC3339)
		if options.Valid && options.String != "" {
			if err := json.Unmarshal([]byte(options.String), &record.Options); err != nil {
				return nil, fmt.Errorf("failed to decode resolution options: %w", err)
			}
		}

		records = append(records, record)
	}

	return records, nil
}

// Ensure InterventionRepository implements the interface.
var _ secondary.InterventionRepository = (*InterventionRepository)(nil)
