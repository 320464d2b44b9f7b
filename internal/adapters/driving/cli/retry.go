package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var retryCmd = &cobra.Command{
	Use:   "retry",
	Short: "Re-attempt failed syncs for a tenant",
	Long: `Retry scans the tenant's failed sync attempts, decides per row whether a
create, update or delete repairs it, and re-attempts each one independently
with exponential backoff.`,
	RunE: runRetry,
}

var retryTenant string

func init() {
	retryCmd.Flags().StringVarP(&retryTenant, "tenant", "t", "", "tenant id (required)")
	retryCmd.MarkFlagRequired("tenant") //nolint:errcheck // flag exists

	rootCmd.AddCommand(retryCmd)
}

func runRetry(cmd *cobra.Command, _ []string) error {
	outcomes := calendarSync.RetryFailedSyncs(cmd.Context(), retryTenant)
	if len(outcomes) == 0 {
		fmt.Println("No failed syncs to retry.")
		return nil
	}

	var repaired, skipped, failed int
	for _, out := range outcomes {
		switch {
		case out.Skipped:
			skipped++
			fmt.Printf("  skip %-10s appointment %s\n", out.Provider, out.AppointmentID)
		case out.Result.Success:
			repaired++
			fmt.Printf("  ok   %-10s appointment %s after %d attempt(s)\n", out.Provider, out.AppointmentID, out.Attempts)
		default:
			failed++
			fmt.Printf("  FAIL %-10s appointment %s: %s\n", out.Provider, out.AppointmentID, out.Result.Error)
		}
	}

	fmt.Printf("%d repaired, %d skipped, %d still failing\n", repaired, skipped, failed)
	return nil
}
