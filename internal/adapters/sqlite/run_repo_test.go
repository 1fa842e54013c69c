package sqlite_test

import (
	"context"
	"testing"

	"github.com/dealnexus/discovery/internal/adapters/sqlite"
	"github.com/dealnexus/discovery/internal/ports/secondary"
)

func TestRunRepository_CreateAndGet(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	run := &secondary.RunRecord{
		ID:            "RUN-001",
		ClientContext: "MedVault - Series B Fintech",
		Status:        "running",
	}

	if err := repo.Create(ctx, run); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	retrieved, err := repo.GetByID(ctx, "RUN-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if retrieved.ClientContext != "MedVault - Series B Fintech" {
		t.Errorf("unexpected client context %q", retrieved.ClientContext)
	}
	if retrieved.Status != "running" {
		t.Errorf("expected status 'running', got %q", retrieved.Status)
	}
	if retrieved.InterventionNeeded {
		t.Error("expected intervention flag to start false")
	}
	if retrieved.ScanDisposition != "" {
		t.Errorf("expected unchecked scan disposition, got %q", retrieved.ScanDisposition)
	}
	if retrieved.StartedAt == "" {
		t.Error("expected started_at to be set")
	}
	if retrieved.CompletedAt != "" {
		t.Errorf("expected empty completed_at, got %q", retrieved.CompletedAt)
	}
}

func TestRunRepository_GetByID_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	if _, err := repo.GetByID(ctx, "RUN-999"); err == nil {
		t.Fatal("expected error for non-existent run")
	}
}

func TestRunRepository_Update(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	seedRun(t, db, "RUN-001", "")

	run, err := repo.GetByID(ctx, "RUN-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}

	run.Status = "completed"
	run.InterventionNeeded = true
	run.ScanDisposition = "flagged"
	run.Artifact = "# Executive Report"
	run.CompletedAt = "2026-03-14T15:09:26Z"

	if err := repo.Update(ctx, run); err != nil {
		t.Fatalf("Update failed: %v", err)
	}

	updated, err := repo.GetByID(ctx, "RUN-001")
	if err != nil {
		t.Fatalf("GetByID failed: %v", err)
	}
	if updated.Status != "completed" {
		t.Errorf("expected status 'completed', got %q", updated.Status)
	}
	if !updated.InterventionNeeded {
		t.Error("expected intervention flag to be set")
	}
	if updated.ScanDisposition != "flagged" {
		t.Errorf("expected 'flagged' disposition, got %q", updated.ScanDisposition)
	}
	if updated.CompletedAt == "" {
		t.Error("expected completed_at to be set")
	}
}

func TestRunRepository_Update_NotFound(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	err := repo.Update(ctx, &secondary.RunRecord{ID: "RUN-999", Status: "completed"})
	if err == nil {
		t.Fatal("expected error for non-existent run")
	}
}

func TestRunRepository_GetNextID(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	id, err := repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "RUN-001" {
		t.Errorf("expected RUN-001, got %q", id)
	}

	seedRun(t, db, "RUN-001", "")
	seedRun(t, db, "RUN-002", "")

	id, err = repo.GetNextID(ctx)
	if err != nil {
		t.Fatalf("GetNextID failed: %v", err)
	}
	if id != "RUN-003" {
		t.Errorf("expected RUN-003, got %q", id)
	}
}

func TestRunRepository_GetLatest(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	if _, err := repo.GetLatest(ctx); err == nil {
		t.Fatal("expected error with no runs")
	}

	seedRun(t, db, "RUN-001", "")
	seedRun(t, db, "RUN-002", "")

	latest, err := repo.GetLatest(ctx)
	if err != nil {
		t.Fatalf("GetLatest failed: %v", err)
	}
	if latest.ID != "RUN-002" {
		t.Errorf("expected RUN-002, got %q", latest.ID)
	}
}

func TestRunRepository_List(t *testing.T) {
	db := setupTestDB(t)
	repo := sqlite.NewRunRepository(db)
	ctx := context.Background()

	seedRun(t, db, "RUN-001", "")
	seedRun(t, db, "RUN-002", "")
	seedRun(t, db, "RUN-003", "")

	runs, err := repo.List(ctx, 2)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != "RUN-003" {
		t.Errorf("expected newest run first, got %q", runs[0].ID)
	}
}
