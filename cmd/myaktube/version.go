// ABOUTME: Version command printing build information.
// ABOUTME: Values are set with -ldflags at release time.

package main

import (
	"fmt"

	"github.com/harper/myaktube/internal/store"
	"github.com/spf13/cobra"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "myaktube %s (commit %s, built %s, schema v%d)\n", version, commit, date, store.SchemaVersion)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
