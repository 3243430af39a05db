// ABOUTME: Show command for displaying one media item.
// ABOUTME: Renders metadata and playlist membership as markdown.

package main

import (
	"fmt"

	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/ui"
	"github.com/spf13/cobra"
)

var showCmd = &cobra.Command{
	Use:   "show <id-prefix>",
	Short: "Show a media item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()

		m, err := lib.ResolveMedia(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get media: %w", err)
		}
		playlists, err := lib.ListPlaylists(ctx)
		if err != nil {
			return fmt.Errorf("failed to list playlists: %w", err)
		}

		var holding []*models.Playlist
		for _, p := range playlists {
			if p.Contains(m.ID) {
				holding = append(holding, p)
			}
		}

		rendered, err := ui.RenderMarkdown(ui.MediaMarkdown(m, holding))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(showCmd)
}
