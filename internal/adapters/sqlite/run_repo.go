// Package sqlite contains SQLite implementations of repository interfaces.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dealnexus/discovery/internal/ports/secondary"
)

// RunRepository implements secondary.RunRepository with SQLite.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a new SQLite run repository.
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Create persists a new run.
func (r *RunRepository) Create(ctx context.Context, run *secondary.RunRecord) error {
	_, err := r.db.ExecContext(ctx,
		"INSERT INTO runs (id, client_context, status, intervention_needed, scan_disposition, sentiment_score, sentiment_summary, artifact) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		run.ID, run.ClientContext, run.Status, boolToInt(run.InterventionNeeded), run.ScanDisposition, run.SentimentScore, run.SentimentSummary, run.Artifact,
	)
	if err != nil {
		return fmt.Errorf("failed to create run: %w", err)
	}

	return nil
}

// GetByID retrieves a run by its ID.
func (r *RunRepository) GetByID(ctx context.Context, id string) (*secondary.RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, client_context, status, intervention_needed, scan_disposition, sentiment_score, sentiment_summary, artifact, started_at, completed_at FROM runs WHERE id = ?",
		id,
	)

	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}

	return record, nil
}

// GetLatest retrieves the most recently started run.
func (r *RunRepository) GetLatest(ctx context.Context) (*secondary.RunRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT id, client_context, status, intervention_needed, scan_disposition, sentiment_score, sentiment_summary, artifact, started_at, completed_at FROM runs ORDER BY started_at DESC, id DESC LIMIT 1",
	)

	record, err := scanRun(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("no runs found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest run: %w", err)
	}

	return record, nil
}

// Update updates an existing run.
func (r *RunRepository) Update(ctx context.Context, run *secondary.RunRecord) error {
	var completedAt any
	if run.CompletedAt != "" {
		completedAt = run.CompletedAt
	}

	result, err := r.db.ExecContext(ctx,
		"UPDATE runs SET client_context = ?, status = ?, intervention_needed = ?, scan_disposition = ?, sentiment_score = ?, sentiment_summary = ?, artifact = ?, completed_at = ? WHERE id = ?",
		run.ClientContext, run.Status, boolToInt(run.InterventionNeeded), run.ScanDisposition, run.SentimentScore, run.SentimentSummary, run.Artifact, completedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}

	rowsAffected, _ := result.RowsAffected()
	if rowsAffected == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}

	return nil
}

// List retrieves runs in reverse start order.
func (r *RunRepository) List(ctx context.Context, limit int) ([]*secondary.RunRecord, error) {
	query := "SELECT id, client_context, status, intervention_needed, scan_disposition, sentiment_score, sentiment_summary, artifact, started_at, completed_at FROM runs ORDER BY started_at DESC, id DESC"
	args := []any{}

	if limit > 0 {
		query += " LIMIT ?"
		args = append(args, limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	var runs []*secondary.RunRecord
	for rows.Next() {
		record, err := scanRun(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		runs = append(runs, record)
	}

	return runs, nil
}

// GetNextID returns the next available run ID.
func (r *RunRepository) GetNextID(ctx context.Context) (string, error) {
	var maxID int
	err := r.db.QueryRowContext(ctx,
		"SELECT COALESCE(MAX(CAST(REPLACE(id, 'RUN-', '') AS INTEGER)), 0) FROM runs",
	).Scan(&maxID)
	if err != nil {
		return "", fmt.Errorf("failed to get next run ID: %w", err)
	}

	return fmt.Sprintf("RUN-%03d", maxID+1), nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(s scanner) (*secondary.RunRecord, error) {
	var (
		interventionInt int
		startedAt       time.Time
		completedAt     sql.NullTime
		sentiment       sql.NullString
		artifact        sql.NullString
		clientContext   sql.NullString
	)

	record := &secondary.RunRecord{}
	err := s.Scan(&record.ID, &clientContext, &record.Status, &interventionInt, &record.ScanDisposition, &record.SentimentScore, &sentiment, &artifact, &startedAt, &completedAt)
	if err != nil {
		return nil, err
	}

	record.ClientContext = clientContext.String
	record.InterventionNeeded = interventionInt == 1
	record.SentimentSummary = sentiment.String
	record.Artifact = artifact.String
	record.StartedAt = startedAt.Format(time.RFC3339)
	if completedAt.Valid {
		record.CompletedAt = completedAt.Time.Format(time.RFC3339)
	}

	return record, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// Ensure RunRepository implements the interface.
var _ secondary.RunRepository = (*RunRepository)(nil)
