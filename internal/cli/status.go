package cli

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dealnexus/discovery/internal/ports/primary"
	"github.com/dealnexus/discovery/internal/wire"
)

// StatusCmd returns the status command
func StatusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status [run-id]",
		Short: "Show run status",
		Long: `Show the state of a pipeline run. With no argument, shows the most
recent run. Use --list to show recent runs instead.

Examples:
  discovery status
  discovery status RUN-003
  discovery status --list 10`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			limit, _ := cmd.Flags().GetInt("list")

			if limit > 0 {
				return listRuns(ctx, limit)
			}

			var state *primary.RunState
			var err error
			if len(args) == 1 {
				state, err = wire.PipelineService().GetRun(ctx, args[0])
			} else {
				state, err = wire.PipelineService().GetLatestRun(ctx)
			}
			if err != nil {
				return fmt.Errorf("run not found: %w", err)
			}

			printRunState(state)
			fmt.Printf("\nStarted: %s\n", state.StartedAt)
			if state.CompletedAt != "" {
				fmt.Printf("Completed: %s\n", state.CompletedAt)
			}
			return nil
		},
	}

	cmd.Flags().Int("list", 0, "List the N most recent runs")

	return cmd
}

func listRuns(ctx context.Context, limit int) error {
	states, err := wire.PipelineService().ListRuns(ctx, limit)
	if err != nil {
		return fmt.Errorf("failed to list runs: %w", err)
	}

	if len(states) == 0 {
		fmt.Println("No runs found.")
		fmt.Println()
		fmt.Println("Start your first run:")
		fmt.Println("  discovery run --transcript meeting.txt")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tSTATUS\tINTERVENTION\tSCAN\tSTARTED")
	fmt.Fprintln(w, "--\t------\t------------\t----\t-------")
	for _, s := range states {
		intervention := "-"
		if s.InterventionNeeded {
			intervention = "needed"
		}
		scan := s.ScanDisposition
		if scan == "" {
			scan = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n", s.ID, s.Status, intervention, scan, s.StartedAt)
	}
	w.Flush()
	return nil
}
