// Package wire provides dependency injection for the discovery application.
// It creates singleton services with lazy initialization.
package wire

import (
	"context"
	"log"
	"os"
	"sync"

	"github.com/dealnexus/discovery/internal/adapters/executor"
	"github.com/dealnexus/discovery/internal/adapters/knowledge"
	"github.com/dealnexus/discovery/internal/adapters/sqlite"
	"github.com/dealnexus/discovery/internal/app"
	"github.com/dealnexus/discovery/internal/config"
	"github.com/dealnexus/discovery/internal/db"
	"github.com/dealnexus/discovery/internal/ports/primary"
)

var (
	pipelineService     primary.PipelineService
	ledgerService       primary.LedgerService
	interventionService primary.InterventionService
	cfg                 *config.Config
	once                sync.Once
)

// PipelineService returns the singleton PipelineService instance.
func PipelineService() primary.PipelineService {
	once.Do(initServices)
	return pipelineService
}

// LedgerService returns the singleton LedgerService instance.
func LedgerService() primary.LedgerService {
	once.Do(initServices)
	return ledgerService
}

// InterventionService returns the singleton InterventionService instance.
func InterventionService() primary.InterventionService {
	once.Do(initServices)
	return interventionService
}

// Config returns the loaded process configuration.
func Config() *config.Config {
	once.Do(initServices)
	return cfg
}

// initServices initializes all services and their dependencies.
// This is called once via sync.Once.
func initServices() {
	cwd, err := os.Getwd()
	if err != nil {
		log.Fatalf("failed to resolve working directory: %v", err)
	}
	cfg, err = config.LoadConfig(cwd)
	if err != nil {
		// No config file is fine; defaults cover everything except the
		// API key, which the orchestrator checks before a run.
		cfg = config.Default()
	}

	database, err := db.GetDB()
	if err != nil {
		log.Fatalf("failed to initialize database: %v", err)
	}

	runRepo := sqlite.NewRunRepository(database)
	stageRepo := sqlite.NewStageResultRepository(database)
	ledgerRepo := sqlite.NewLedgerRepository(database)
	interventionRepo := sqlite.NewInterventionRepository(database)

	stageExecutor := executor.NewClient(cfg)
	reference := knowledge.NewProvider(cfg.KnowledgeDir)

	tracker := app.NewEscalationTracker(interventionRepo, cfg.MaxUnresolvedTurns)
	// Counters are recomputed from the persisted ledger so escalation state
	// survives restarts without a separate counter store.
	if err := tracker.Replay(context.Background(), ledgerRepo); err != nil {
		log.Fatalf("failed to replay ledger: %v", err)
	}

	ledgerService = app.NewLedgerService(ledgerRepo, tracker)
	pipelineService = app.NewPipelineService(runRepo, stageRepo, interventionRepo, ledgerService, stageExecutor, reference, cfg.MaxUnresolvedTurns)
	interventionService = app.NewInterventionService(interventionRepo)
}
