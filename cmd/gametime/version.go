package main

import (
	"fmt"

	"github.com/aatumaykin/gametime/internal/version"
	"github.com/spf13/cobra"
)

// versionCmd represents the version command
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version information",
	Long:  `Display the version, build time, git commit and Go version of gametime.`,
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintln(cmd.OutOrStdout(), "gametime - in-game clock action scheduler")
		fmt.Fprint(cmd.OutOrStdout(), version.String())
	},
}
