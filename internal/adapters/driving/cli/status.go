package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var statusCmd = &cobra.Command{
	Use:   "status [appointment-id]",
	Short: "Show the sync status of one appointment",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

var statusTenant string

func init() {
	statusCmd.Flags().StringVarP(&statusTenant, "tenant", "t", "", "tenant id (required)")
	statusCmd.MarkFlagRequired("tenant") //nolint:errcheck // flag exists

	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, args []string) error {
	status, err := calendarSync.GetAppointmentSyncStatus(cmd.Context(), args[0], statusTenant)
	if err != nil {
		return fmt.Errorf("get sync status: %w", err)
	}

	if !status.Synced {
		fmt.Println("Never synced.")
		return nil
	}

	fmt.Printf("Synced:     yes\n")
	fmt.Printf("Has errors: %v\n", status.HasErrors)
	fmt.Printf("Last sync:  %s\n", status.LastSync.Format(time.RFC3339))
	return nil
}
