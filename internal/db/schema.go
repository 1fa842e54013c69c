package db

// SchemaSQL is the complete schema for fresh discovery installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All repository
// tests load it via GetSchemaSQL() so that test and production schemas cannot
// drift: if repository code references a column that is not declared here,
// tests fail immediately with "no such column".
//
// All run, stage-result, ledger, and intervention state share this one
// database so that per-key writes are atomic and no ordering assumptions
// exist between separate state files.
const SchemaSQL = `
-- Runs (one row per end-to-end pipeline execution)
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	client_context TEXT,
	status TEXT NOT NULL CHECK(status IN ('running', 'completed', 'error')) DEFAULT 'running',
	intervention_needed INTEGER NOT NULL DEFAULT 0,
	scan_disposition TEXT NOT NULL CHECK(scan_disposition IN ('', 'clear', 'flagged')) DEFAULT '',
	sentiment_score INTEGER NOT NULL DEFAULT 0,
	sentiment_summary TEXT,
	artifact TEXT,
	started_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	completed_at DATETIME
);

-- Stage results (exactly one row per stage per run, last write wins)
CREATE TABLE IF NOT EXISTS stage_results (
	run_id TEXT NOT NULL,
	stage_id TEXT NOT NULL CHECK(stage_id IN ('strategist', 'feasibility', 'compliance', 'economics', 'synthesis')),
	status TEXT NOT NULL CHECK(status IN ('pending', 'completed', 'error')) DEFAULT 'pending',
	payload TEXT,
	raw TEXT,
	error TEXT,
	completed_at DATETIME,
	PRIMARY KEY (run_id, stage_id),
	FOREIGN KEY (run_id) REFERENCES runs(id) ON DELETE CASCADE
);

-- Conversation ledger (append-only inter-agent disagreement log;
-- only resolution_status is ever updated in place)
CREATE TABLE IF NOT EXISTS ledger_entries (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	conversation_id TEXT NOT NULL,
	sender TEXT NOT NULL,
	recipient TEXT NOT NULL,
	issue_identified TEXT NOT NULL,
	policy_reference TEXT,
	resolution_status TEXT NOT NULL CHECK(resolution_status IN ('pending', 'unresolved', 'resolved')) DEFAULT 'pending',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_ledger_conversation ON ledger_entries(conversation_id);
CREATE INDEX IF NOT EXISTS idx_ledger_status ON ledger_entries(resolution_status);

-- Interventions (durable escalation log, append-only, never deduplicated)
CREATE TABLE IF NOT EXISTS interventions (
	seq INTEGER PRIMARY KEY AUTOINCREMENT,
	run_id TEXT,
	participant_a TEXT NOT NULL,
	participant_b TEXT NOT NULL,
	issue TEXT NOT NULL,
	policy_reference TEXT,
	turn_count INTEGER NOT NULL DEFAULT 0,
	threshold INTEGER NOT NULL DEFAULT 0,
	options TEXT,
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);
`

// InitSchema creates the schema if it does not exist. The schema is
// idempotent (CREATE IF NOT EXISTS throughout), so this is safe to run on
// every connection.
func InitSchema() error {
	db, err := GetDB()
	if err != nil {
		return err
	}

	if _, err := db.Exec(SchemaSQL); err != nil {
		return err
	}

	return nil
}

// GetSchemaSQL returns the authoritative schema SQL for use by tests.
// Tests should use this instead of hardcoding their own schema to prevent drift.
func GetSchemaSQL() string {
	return SchemaSQL
}
