package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the calsync version",
	Run: func(_ *cobra.Command, _ []string) {
		fmt.Println("calsync", version)
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
