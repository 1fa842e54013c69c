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

// LedgerCmd returns the ledger command
func LedgerCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ledger",
		Short: "Manage the conversation ledger",
		Long:  "List, append to and resolve entries in the inter-agent conversation ledger",
	}

	cmd.AddCommand(ledgerListCmd())
	cmd.AddCommand(ledgerAppendCmd())
	cmd.AddCommand(ledgerResolveCmd())
	cmd.AddCommand(ledgerUnresolvedCmd())

	return cmd
}

func ledgerListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			sender, _ := cmd.Flags().GetString("sender")
			recipient, _ := cmd.Flags().GetString("recipient")

			entries, err := wire.LedgerService().List(ctx, primary.LedgerFilters{
				Sender:    sender,
				Recipient: recipient,
			})
			if err != nil {
				return fmt.Errorf("failed to list ledger entries: %w", err)
			}

			printEntries(entries)
			return nil
		},
	}

	cmd.Flags().String("sender", "", "Filter by sender agent")
	cmd.Flags().String("recipient", "", "Filter by recipient agent")

	return cmd
}

func ledgerAppendCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "append",
		Short: "Append a ledger entry",
		Long: `Append one inter-agent message to the conversation ledger.

Sender and recipient must be distinct members of the fixed agent set:
strategist, feasibility, compliance, economics, synthesis.

Examples:
  discovery ledger append --from compliance --to feasibility \
    --issue "Data residency conflict" --policy "GDPR Art. 44" --status unresolved`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			sender, _ := cmd.Flags().GetString("from")
			recipient, _ := cmd.Flags().GetString("to")
			issue, _ := cmd.Flags().GetString("issue")
			policy, _ := cmd.Flags().GetString("policy")
			status, _ := cmd.Flags().GetString("status")

			resp, err := wire.LedgerService().Append(ctx, primary.AppendEntryRequest{
				Sender:           sender,
				Recipient:        recipient,
				IssueIdentified:  issue,
				PolicyReference:  policy,
				ResolutionStatus: status,
			})
			if err != nil {
				return fmt.Errorf("failed to append entry: %w", err)
			}

			fmt.Printf("✓ Logged %s (%s)\n", resp.Entry.ConversationID, resp.Entry.ResolutionStatus)
			if resp.Entry.ResolutionStatus == primary.ResolutionUnresolved {
				fmt.Printf("Unresolved turns: %d/%d\n", resp.UnresolvedTurnCount, resp.MaxTurnsAllowed)
			}
			if resp.EscalationTriggered {
				fmt.Println("Escalated to human intervention - see 'discovery escalation list'")
			}
			return nil
		},
	}

	cmd.Flags().String("from", "", "Sender agent (required)")
	cmd.Flags().String("to", "", "Recipient agent (required)")
	cmd.Flags().String("issue", "", "Issue identified (required)")
	cmd.Flags().String("policy", "", "Policy reference")
	cmd.Flags().String("status", "", "Resolution status: pending, unresolved or resolved (default pending)")
	cmd.MarkFlagRequired("from")
	cmd.MarkFlagRequired("to")
	cmd.MarkFlagRequired("issue")

	return cmd
}

func ledgerResolveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resolve [conversation-id]",
		Short: "Mark a conversation resolved",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			matched, err := wire.LedgerService().Resolve(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to resolve conversation: %w", err)
			}
			if !matched {
				fmt.Printf("No entries found for %s\n", args[0])
				return nil
			}
			fmt.Printf("✓ Resolved %s\n", args[0])
			return nil
		},
	}
}

func ledgerUnresolvedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unresolved",
		Short: "List unresolved ledger entries",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			entries, err := wire.LedgerService().Unresolved(ctx)
			if err != nil {
				return fmt.Errorf("failed to list unresolved entries: %w", err)
			}

			printEntries(entries)
			return nil
		},
	}
}

func printEntries(entries []*primary.ConversationEntry) {
	if len(entries) == 0 {
		fmt.Println("No ledger entries found.")
		return
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "CONVERSATION\tFROM\tTO\tSTATUS\tISSUE\tLOGGED")
	fmt.Fprintln(w, "------------\t----\t--\t------\t-----\t------")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			e.ConversationID,
			e.Sender,
			e.Recipient,
			e.ResolutionStatus,
			e.IssueIdentified,
			e.Timestamp,
		)
	}
	w.Flush()
}
