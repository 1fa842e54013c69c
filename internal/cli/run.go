package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/dealnexus/discovery/internal/core/run"
	"github.com/dealnexus/discovery/internal/ports/primary"
	"github.com/dealnexus/discovery/internal/wire"
)

// RunCmd returns the run command
func RunCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run the discovery pipeline on a transcript",
		Long: `Run the five-stage discovery pipeline against a meeting transcript.

The pipeline executes strategist, feasibility, compliance, economics and
synthesis in order, logs inter-stage disagreements to the ledger, and scans
the final assessment for unresolved work.

Examples:
  discovery run --transcript meeting.txt
  discovery run --transcript meeting.txt --client "Meridian Logistics, 400 seats" --output assessment.md`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			transcriptPath, _ := cmd.Flags().GetString("transcript")
			clientContext, _ := cmd.Flags().GetString("client")
			outputPath, _ := cmd.Flags().GetString("output")

			transcript, err := os.ReadFile(transcriptPath)
			if err != nil {
				return fmt.Errorf("failed to read transcript: %w", err)
			}

			fmt.Println("Starting discovery pipeline...")
			state, err := wire.PipelineService().StartRun(ctx, primary.StartRunRequest{
				Transcript:    string(transcript),
				ClientContext: clientContext,
			})
			if err != nil {
				return fmt.Errorf("failed to start run: %w", err)
			}

			printRunState(state)

			if outputPath != "" && state.Artifact != "" {
				if err := os.WriteFile(outputPath, []byte(state.Artifact), 0644); err != nil {
					return fmt.Errorf("failed to write assessment: %w", err)
				}
				fmt.Printf("\nAssessment written to %s\n", outputPath)
			}

			return nil
		},
	}

	cmd.Flags().String("transcript", "", "Path to the meeting transcript (required)")
	cmd.Flags().String("client", "", "Client context for the run")
	cmd.Flags().String("output", "", "Write the final assessment to this file")
	cmd.MarkFlagRequired("transcript")

	return cmd
}

func printRunState(state *primary.RunState) {
	fmt.Printf("\nRun: %s\n", state.ID)
	if state.ClientContext != "" {
		fmt.Printf("Client: %s\n", state.ClientContext)
	}
	fmt.Printf("Status: %s\n", colorStatus(state.Status))
	fmt.Println()
	for _, stageID := range run.Stages {
		fmt.Printf("  %-12s %s\n", stageID, colorStatus(state.StageStatuses[stageID]))
	}
	fmt.Println()
	fmt.Printf("Sentiment: %d/100 - %s\n", state.SentimentScore, state.SentimentSummary)

	switch state.ScanDisposition {
	case string(run.ScanClear):
		fmt.Printf("Marker scan: %s\n", color.New(color.FgHiGreen).Sprint("clear"))
	case string(run.ScanFlagged):
		fmt.Printf("Marker scan: %s\n", color.New(color.FgRed).Sprint("flagged"))
	default:
		fmt.Println("Marker scan: not performed")
	}

	if state.InterventionNeeded {
		fmt.Println(color.New(color.FgRed).Sprint("Human intervention needed - see 'discovery escalation list'"))
	}
}

func colorStatus(status string) string {
	switch status {
	case string(run.StatusCompleted):
		return color.New(color.FgHiGreen).Sprint(status)
	case string(run.StatusError):
		return color.New(color.FgRed).Sprint(status)
	case string(run.StatusRunning):
		return color.New(color.FgYellow).Sprint(status)
	default:
		return status
	}
}
