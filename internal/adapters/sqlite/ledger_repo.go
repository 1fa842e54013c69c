package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/dealnexus/discovery/internal/ports/secondary"
)

// LedgerRepository implements secondary.LedgerRepository with SQLite.
// Entries are append-only; Resolve is the only in-place mutation and touches
// nothing but resolution_status.
type LedgerRepository struct {
	db *sql.DB
}

// NewLedgerRepository creates a new SQLite ledger repository.
func NewLedgerRepository(db *sql.DB) *LedgerRepository {
	return &LedgerRepository{db: db}
}

// Append persists a new ledger entry and returns it with its assigned
// sequence number and timestamp.
func (r *LedgerRepository) Append(ctx context.Context, entry *secondary.LedgerEntryRecord) (*secondary.LedgerEntryRecord, error) {
	result, err := r.db.ExecContext(ctx,
		"INSERT INTO ledger_entries (conversation_id, sender, recipient, issue_identified, policy_reference, resolution_status) VALUES (?, ?, ?, ?, ?, ?)",
		entry.ConversationID, entry.Sender, entry.Recipient, entry.IssueIdentified, entry.PolicyReference, entry.ResolutionStatus,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append ledger entry: %w", err)
	}

	seq, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to read ledger sequence: %w", err)
	}

	return r.getBySeq(ctx, seq)
}

// List retrieves entries in insertion order, optionally filtered.
func (r *LedgerRepository) List(ctx context.Context, filters secondary.LedgerFilters) ([]*secondary.LedgerEntryRecord, error) {
	query := "SELECT seq, conversation_id, sender, recipient, issue_identified, policy_reference, resolution_status, created_at FROM ledger_entries WHERE 1=1"
	args := []any{}

	if filters.Sender != "" {
		query += " AND sender = ?"
		args = append(args, filters.Sender)
	}
	if filters.Recipient != "" {
		query += " AND recipient = ?"
		args = append(args, filters.Recipient)
	}
	if filters.ResolutionStatus != "" {
		query += " AND resolution_status = ?"
		args = append(args, filters.ResolutionStatus)
	}

	query += " ORDER BY seq ASC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list ledger entries: %w", err)
	}
	defer rows.Close()

	var entries []*secondary.LedgerEntryRecord
	for rows.Next() {
		record, err := scanLedgerEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, record)
	}

	return entries, nil
}

// Resolve marks all entries sharing the conversation ID as resolved and
// returns the number of entries updated.
func (r *LedgerRepository) Resolve(ctx context.Context, conversationID string) (int, error) {
	result, err := r.db.ExecContext(ctx,
		"UPDATE ledger_entries SET resolution_status = 'resolved' WHERE conversation_id = ?",
		conversationID,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to resolve conversation: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to count resolved entries: %w", err)
	}

	return int(rowsAffected), nil
}

func (r *LedgerRepository) getBySeq(ctx context.Context, seq int64) (*secondary.LedgerEntryRecord, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT seq, conversation_id, sender, recipient, issue_identified, policy_reference, resolution_status, created_at FROM ledger_entries WHERE seq = ?",
		seq,
	)

	record, err := scanLedgerEntry(row)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch appended entry: %w", err)
	}

	return record, nil
}

func scanLedgerEntry(s scanner) (*secondary.LedgerEntryRecord, error) {
	var (
		policyRef sql.NullString
		createdAt time.Time
	)

	record := &secondary.LedgerEntryRecord{}
	err := s.Scan(&record.Seq, &record.ConversationID, &record.Sender, &record.Recipient, &record.IssueIdentified, &policyRef, &record.ResolutionStatus, &createdAt)
	if err != nil {
		return nil, err
	}

	record.PolicyReference = policyRef.String
	record.CreatedAt = createdAt.Format(time.RFC3339)

	return record, nil
}

// Ensure LedgerRepository implements the interface.
var _ secondary.LedgerRepository = (*LedgerRepository)(nil)
