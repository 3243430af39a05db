// ABOUTME: Import command for restoring a library archive.
// ABOUTME: Keeps original ids; records already present are replaced.

package main

import (
	"fmt"
	"os"

	"github.com/harper/myaktube/internal/ui"
	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <path>",
	Short: "Import a library archive",
	Long:  `Import media and playlists from a JSON or YAML archive written by export.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		f, err := os.Open(args[0]) //nolint:gosec // User-specified file path is expected CLI behavior
		if err != nil {
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer func() { _ = f.Close() }()

		archive, err := decodeArchive(f)
		if err != nil {
			return err
		}

		report, err := lib.Import(cmd.Context(), archive)
		out := cmd.OutOrStdout()
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Imported %d media and %d playlists", report.Media, report.Playlists)))
		if report.Skipped > 0 {
			fmt.Fprintln(out, ui.Warning(fmt.Sprintf("Skipped %d media already in the library", report.Skipped)))
		}
		if report.DroppedRefs > 0 {
			fmt.Fprintln(out, ui.Warning(fmt.Sprintf("Dropped %d playlist entries for media not in the library", report.DroppedRefs)))
		}
		if err != nil {
			return fmt.Errorf("some records failed to import: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
}
