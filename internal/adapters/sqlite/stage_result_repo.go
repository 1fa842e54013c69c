package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dealnexus/discovery/internal/ports/secondary"
)

// StageResultRepository implements secondary.StageResultRepository with
// SQLite. Each (run, stage) pair owns one row; Put is a single-statement
// upsert so concurrent stages writing disjoint keys never interleave.
type StageResultRepository struct {
	db *sql.DB
}

// NewStageResultRepository creates a new SQLite stage-result repository.
func NewStageResultRepository(db *sql.DB) *StageResultRepository {
	return &StageResultRepository{db: db}
}

// Put stores the latest result for a stage within a run, replacing any
// earlier write for that pair.
func (r *StageResultRepository) Put(ctx context.Context, result *secondary.StageResultRecord) error {
	payload, err := marshalPayload(result.Payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	var completedAt any
	if result.CompletedAt != "" {
		completedAt = result.CompletedAt
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO stage_results (run_id, stage_id, status, payload, raw, error, completed_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT(run_id, stage_id) DO UPDATE SET
			status = excluded.status,
			payload = excluded.payload,
			raw = excluded.raw,
			error = excluded.error,
			completed_at = excluded.completed_at`,
		result.RunID, result.StageID, result.Status, payload, result.Raw, result.Error, completedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to put stage result: %w", err)
	}

	return nil
}

// Get retrieves the result for a stage within a run.
func (r *StageResultRepository) Get(ctx context.Context, runID, stageID string) (*secondary.StageResultRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT run_id, stage_id, status, payload, raw, error, completed_at FROM stage_results WHERE run_id = ? AND stage_id = ?",
		runID, stageID,
	)

	record, err := scanStageResult(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("stage result %s/%s not found", runID, stageID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get stage result: %w", err)
	}

	return record, nil
}

// ListByRun retrieves all stage results for a run in pipeline order.
func (r *StageResultRepository) ListByRun(ctx context.Context, runID string) ([]*secondary.StageResultRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT run_id, stage_id, status, payload, raw, error, completed_at FROM stage_results
		 WHERE run_id = ?
		 ORDER BY CASE stage_id
			WHEN 'strategist' THEN 1
			WHEN 'feasibility' THEN 2
			WHEN 'compliance' THEN 3
			WHEN 'economics' THEN 4
			WHEN 'synthesis' THEN 5
		 END`,
		runID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list stage results: %w", err)
	}
	defer rows.Close()

	var results []*secondary.StageResultRecord
	for rows.Next() {
		record, err := scanStageResult(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan stage result: %w", err)
		}
		results = append(results, record)
	}

	return results, nil
}

func scanStageResult(s scanner) (*secondary.StageResultRecord, error) {
	var (
		payload     sql.NullString
		raw         sql.NullString
		errText     sql.NullString
		completedAt sql.NullTime
	)

	record := &secondary.StageResultRecord{}
	err := s.Scan(&record.RunID, &record.StageID, &record.Status, &payload, &raw, &errText, &completedAt)
	if err != nil {
		return nil, err
	}

	if payload.Valid && payload.String != "" {
		decoded := map[string]any{}
		if err := json.Unmarshal([]byte(payload.String), &decoded); err != nil {
			return nil, fmt.Errorf("failed to decode payload: %w", err)
		}
		record.Payload = decoded
	}
	record.Raw = raw.String
	record.Error = errText.String
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}

func marshalPayload(payload map[string]any) (any, error) {
	if payload == nil {
		return nil, nil
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return string(data), nil
}

// Ensure StageResultRepository implements the interface.
var _ secondary.StageResultRepository = (*StageResultRepository)(nil)
