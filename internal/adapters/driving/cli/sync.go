package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/bookline/calsync/internal/core/domain"
)

var syncCmd = &cobra.Command{
	Use:   "sync [appointment-id]",
	Short: "Sync one appointment to the tenant's connected calendars",
	Long: `Sync propagates a single appointment mutation to every active calendar
connection of the tenant and prints one outcome per connection.

Examples:
  calsync sync appt-42 --tenant salon-1 --op create
  calsync sync appt-42 --tenant salon-1 --op update
  calsync sync appt-42 --tenant salon-1 --op delete`,
	Args: cobra.ExactArgs(1),
	RunE: runSync,
}

var (
	syncTenant    string
	syncOperation string
)

func init() {
	syncCmd.Flags().StringVarP(&syncTenant, "tenant", "t", "", "tenant id (required)")
	syncCmd.Flags().StringVarP(&syncOperation, "op", "o", string(domain.OpCreate), "operation: create, update or delete")
	syncCmd.MarkFlagRequired("tenant") //nolint:errcheck // flag exists

	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	op := domain.SyncOperation(syncOperation)
	if !op.Valid() {
		return fmt.Errorf("invalid operation %q: must be create, update or delete", syncOperation)
	}

	results := calendarSync.SyncAppointment(cmd.Context(), args[0], syncTenant, op)
	if len(results) == 0 {
		fmt.Println("No active calendar connections; nothing to sync.")
		return nil
	}

	for _, res := range results {
		printResult(res)
	}
	return nil
}

func printResult(res domain.SyncResult) {
	provider := string(res.Provider)
	if provider == "" {
		provider = "-"
	}
	if res.Success {
		fmt.Printf("  ok   %-10s %-8s %s\n", provider, res.SyncStatus, res.ExternalEventID)
		return
	}
	fmt.Printf("  FAIL %-10s %-8s %s\n", provider, res.SyncStatus, res.Error)
}
