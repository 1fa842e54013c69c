package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/dealnexus/discovery/internal/config"
	"github.com/dealnexus/discovery/internal/db"
)

// InitCmd returns the init command
func InitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Initialize the discovery database and config",
		Long: `Initialize the discovery database at ~/.discovery/discovery.db, write a
default .discovery/config.json in the current directory, and seed starter
knowledge bundles.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dbPath, err := db.GetDBPath()
			if err != nil {
				return fmt.Errorf("failed to get database path: %w", err)
			}

			fmt.Printf("Initializing discovery database at %s\n", dbPath)
			if err := db.InitSchema(); err != nil {
				return fmt.Errorf("failed to initialize schema: %w", err)
			}
			fmt.Println("✓ Database initialized")

			cwd, err := os.Getwd()
			if err != nil {
				return fmt.Errorf("failed to resolve working directory: %w", err)
			}

			cfg := config.Default()
			if existing, err := config.LoadConfig(cwd); err == nil {
				cfg = existing
			} else if err := config.SaveConfig(cwd, cfg); err != nil {
				return fmt.Errorf("failed to write config: %w", err)
			} else {
				fmt.Println("✓ Config written to .discovery/config.json")
			}

			if err := seedKnowledge(cfg.KnowledgeDir); err != nil {
				return fmt.Errorf("failed to seed knowledge bundles: %w", err)
			}

			fmt.Println()
			fmt.Printf("Set your API key in $%s, then:\n", cfg.APIKeyEnv)
			fmt.Println("  discovery run --transcript meeting.txt")

			return nil
		},
	}
}

const starterKPIs = `general:
  time_to_value: 90 days or less
  adoption_rate: 70%+ of licensed seats
saas:
  churn_rate: under 5% annually
  nrr: 110%+
  cac_payback: under 18 months
logistics:
  on_time_delivery: 96%+
  cost_per_mile: regional benchmark
healthcare:
  claim_denial_rate: under 8%
  patient_wait_time: under 20 minutes
`

const starterBaseline = `payback_months: 18
typical_roi_multiple: 3.2
adoption_rate: 70%
implementation_weeks: 12
`

// seedKnowledge writes starter YAML bundles, skipping files that exist.
func seedKnowledge(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	bundles := map[string]string{
		"industry_kpis.yaml":    starterKPIs,
		"baseline_metrics.yaml": starterBaseline,
	}
	for name, content := range bundles {
		path := filepath.Join(dir, name)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			return err
		}
		fmt.Printf("✓ Wrote %s\n", path)
	}
	return nil
}
