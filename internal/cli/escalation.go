package cli

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dealnexus/discovery/internal/wire"
)

// EscalationCmd returns the escalation command
func EscalationCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "escalation",
		Short: "View human-intervention records",
		Long:  "List the durable escalation log produced by turn-limit crossings and pipeline findings",
	}

	cmd.AddCommand(escalationListCmd())

	return cmd
}

func escalationListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List intervention records",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			runID, _ := cmd.Flags().GetString("run")

			interventions, err := wire.InterventionService().ListInterventions(ctx, runID)
			if err != nil {
				return fmt.Errorf("failed to list interventions: %w", err)
			}

			if len(interventions) == 0 {
				fmt.Println("No interventions recorded.")
				return nil
			}

			for _, item := range interventions {
				header := fmt.Sprintf("#%d %s ↔ %s", item.Seq, item.ParticipantA, item.ParticipantB)
				fmt.Println(color.New(color.FgRed).Sprint(header))
				if item.RunID != "" {
					fmt.Printf("  Run: %s\n", item.RunID)
				}
				fmt.Printf("  Issue: %s\n", item.Issue)
				if item.PolicyReference != "" {
					fmt.Printf("  Policy: %s\n", item.PolicyReference)
				}
				if item.TurnCount > 0 {
					fmt.Printf("  Turns: %d (limit %d)\n", item.TurnCount, item.Threshold)
				}
				fmt.Println("  Options:")
				for i, option := range item.Options {
					fmt.Printf("    %d. %s\n", i+1, option)
				}
				fmt.Printf("  Logged: %s\n\n", item.CreatedAt)
			}
			return nil
		},
	}

	cmd.Flags().String("run", "", "Scope to one run ID")

	return cmd
}
