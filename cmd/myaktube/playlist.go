// ABOUTME: Playlist commands: create, list, show, add, remove and delete.
// ABOUTME: Playlists are referenced by id, id prefix or name.

package main

import (
	"fmt"

	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/ui"
	"github.com/spf13/cobra"
)

var playlistCmd = &cobra.Command{
	Use:     "playlist",
	Aliases: []string{"pl"},
	Short:   "Manage playlists",
}

var playlistCreateCmd = &cobra.Command{
	Use:   "create [name]",
	Short: "Create an empty playlist",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := ""
		if len(args) == 1 {
			name = args[0]
		}
		p, err := lib.CreatePlaylist(cmd.Context(), name)
		if err != nil {
			return fmt.Errorf("failed to create playlist: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Created playlist %s (%s)", p.Name, models.ShortID(p.ID))))
		return nil
	},
}

var playlistListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List playlists",
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		playlists, err := lib.ListPlaylists(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to list playlists: %w", err)
		}
		out := cmd.OutOrStdout()
		if len(playlists) == 0 {
			fmt.Fprintln(out, "No playlists.")
			return nil
		}
		for _, p := range playlists {
			fmt.Fprint(out, ui.FormatPlaylistListItem(p))
		}
		return nil
	},
}

var playlistShowCmd = &cobra.Command{
	Use:   "show <playlist>",
	Short: "Show a playlist and its media",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := lib.ResolvePlaylist(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get playlist: %w", err)
		}
		items, err := lib.ListMediaForPlaylist(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("failed to list playlist media: %w", err)
		}
		rendered, err := ui.RenderMarkdown(ui.PlaylistMarkdown(p, items))
		if err != nil {
			return err
		}
		fmt.Fprint(cmd.OutOrStdout(), rendered)
		return nil
	},
}

var playlistAddCmd = &cobra.Command{
	Use:   "add <playlist> <media>...",
	Short: "Append media to a playlist",
	Args:  cobra.MinimumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		p, err := lib.ResolvePlaylist(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get playlist: %w", err)
		}
		for _, ref := range args[1:] {
			m, err := lib.ResolveMedia(ctx, ref)
			if err != nil {
				return fmt.Errorf("failed to get media: %w", err)
			}
			updated, err := lib.AddMediaToPlaylist(ctx, p.ID, m.ID)
			if err != nil {
				return fmt.Errorf("failed to add media: %w", err)
			}
			if updated == nil {
				return fmt.Errorf("playlist %s was deleted", p.Name)
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("%s → %s (%d items)", m.Name, p.Name, updated.Count())))
		}
		return nil
	},
}

var playlistRemoveCmd = &cobra.Command{
	Use:   "remove <playlist> <media>",
	Short: "Remove media from a playlist",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		p, err := lib.ResolvePlaylist(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get playlist: %w", err)
		}
		m, err := lib.ResolveMedia(ctx, args[1])
		if err != nil {
			return fmt.Errorf("failed to get media: %w", err)
		}
		updated, err := lib.RemoveMediaFromPlaylist(ctx, p.ID, m.ID)
		if err != nil {
			return fmt.Errorf("failed to remove media: %w", err)
		}
		if updated == nil {
			return fmt.Errorf("playlist %s was deleted", p.Name)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Removed %s from %s", m.Name, p.Name)))
		return nil
	},
}

var playlistDeleteCmd = &cobra.Command{
	Use:   "delete <playlist>",
	Short: "Delete a playlist (its media is kept)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		ctx := cmd.Context()
		out := cmd.OutOrStdout()

		p, err := lib.ResolvePlaylist(ctx, args[0])
		if err != nil {
			return fmt.Errorf("failed to get playlist: %w", err)
		}
		if !force && !confirm(cmd.InOrStdin(), out, fmt.Sprintf("Delete playlist %q (%d items)?", p.Name, p.Count())) {
			fmt.Fprintln(out, "Cancelled.")
			return nil
		}
		if err := lib.DeletePlaylist(ctx, p.ID); err != nil {
			return fmt.Errorf("failed to delete playlist: %w", err)
		}
		fmt.Fprintln(out, ui.Success(fmt.Sprintf("Deleted playlist %s", p.Name)))
		return nil
	},
}

func init() {
	playlistDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation")
	playlistCmd.AddCommand(playlistCreateCmd, playlistListCmd, playlistShowCmd,
		playlistAddCmd, playlistRemoveCmd, playlistDeleteCmd)
	rootCmd.AddCommand(playlistCmd)
}
