package commands

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// Version information - can be set at build time
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version of stjs",
	Long:  `Print the version information for the stjs compiler.`,
	Run: func(cmd *cobra.Command, args []string) {
		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "stjs version %s\n", color.New(color.FgGreen, color.Bold).Sprint(Version))
		if GitCommit != "unknown" {
			fmt.Fprintf(out, "  Git commit: %s\n", GitCommit)
		}
		if BuildDate != "unknown" {
			fmt.Fprintf(out, "  Build date: %s\n", BuildDate)
		}
	},
}
