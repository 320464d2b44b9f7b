package cli

import (
	"github.com/spf13/cobra"

	"github.com/bookline/calsync/internal/core/ports/driven"
	"github.com/bookline/calsync/internal/core/ports/driving"
	"github.com/bookline/calsync/internal/logger"
)

var (
	// version is set by goreleaser ldflags.
	version = "dev"

	// verbose enables debug logging.
	verbose bool

	// Services injected for CLI commands.
	calendarSync driving.CalendarSync
	connections  driven.ConnectionRegistry
)

// Services holds the service implementations the commands run against.
type Services struct {
	Sync        driving.CalendarSync
	Connections driven.ConnectionRegistry
}

// SetServices injects service implementations for CLI commands.
func SetServices(s *Services) {
	if s == nil {
		return
	}
	calendarSync = s.Sync
	connections = s.Connections
}

// rootCmd is the base command.
var rootCmd = &cobra.Command{
	Use:   "calsync",
	Short: "Push appointment changes to tenants' external calendars",
	Long: `Calsync propagates appointment mutations to every external calendar a
tenant has connected (Google Calendar, Microsoft 365) and keeps an audit log
of every sync attempt. Individual provider failures never block the others.`,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// SetVersion sets the version string for the CLI.
func SetVersion(v string) {
	version = v
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose debug output")

	// Set verbose mode before any command executes. The flag only ever
	// enables debug output; config-file verbosity stays in effect otherwise.
	rootCmd.PersistentPreRunE = func(_ *cobra.Command, _ []string) error {
		if verbose {
			logger.SetVerbose(true)
		}
		return nil
	}
}
