package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dealnexus/discovery/internal/cli"
	"github.com/dealnexus/discovery/internal/version"
)

func main() {
	rootCmd := &cobra.Command{
		Use:     "discovery",
		Short:   "Discovery - multi-stage deal assessment pipeline",
		Version: version.String(),
		Long: `Discovery runs a five-stage reasoning pipeline over sales meeting
transcripts: strategy, feasibility, compliance and economics reviews feed a
synthesized client-facing assessment. Inter-stage disagreements are logged to
a conversation ledger and escalated to humans when they stay unresolved.`,
	}

	rootCmd.AddCommand(cli.InitCmd())
	rootCmd.AddCommand(cli.RunCmd())
	rootCmd.AddCommand(cli.StatusCmd())
	rootCmd.AddCommand(cli.LedgerCmd())
	rootCmd.AddCommand(cli.EscalationCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
