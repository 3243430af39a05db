// ABOUTME: Remove command for deleting media.
// ABOUTME: Includes confirmation prompt; playlists referencing the media are cleaned first.

package main

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/ui"
	"github.com/spf13/cobra"
)

var rmCmd = &cobra.Command{
	Use:   "rm <id-prefix>",
	Short: "Remove a media item",
	Long:  `Delete a media item and remove it from every playlist.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		m, err := lib.ResolveMedia(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get media: %w", err)
		}

		if !force && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete %s %q (%s)?", m.Kind, m.Name, models.ShortID(m.ID))) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}

		if err := lib.DeleteMedia(ctx, m.ID); err != nil {
			return fmt.Errorf("failed to delete media: %w", err)
		}

		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Deleted %s", m.Name)))
		return nil
	},
}

func confirm(in io.Reader, out io.Writer, prompt string) bool {
	fmt.Fprintf(out, "%s [y/N] ", prompt)
	reader := bufio.NewReader(in)
	response, _ := reader.ReadString('\n')
	response = strings.TrimSpace(strings.ToLower(response))
	return response == "y" || response == "yes"
}

func init() {
	rmCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	rootCmd.AddCommand(rmCmd)
}
