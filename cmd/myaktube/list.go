// ABOUTME: List command for browsing the library.
// ABOUTME: Filters by name, kind, or playlist membership.

package main

import (
	"context"
	"fmt"

	"github.com/harper/myaktube/internal/library"
	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/ui"
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List media",
	Long:    `List media oldest first, or in playlist order with --playlist.`,
	Args:    cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		playlistRef, _ := cmd.Flags().GetString("playlist")
		search, _ := cmd.Flags().GetString("search")
		kindFlag, _ := cmd.Flags().GetString("kind")

		items, err := selectMedia(cmd.Context(), playlistRef, search, kindFlag)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		if len(items) == 0 {
			fmt.Fprintln(out, "No media found.")
			return nil
		}
		for _, m := range items {
			fmt.Fprint(out, ui.FormatMediaListItem(m))
		}
		return nil
	},
}

// selectMedia lists the library, or one playlist in its order, then narrows by
// kind and name.
func selectMedia(ctx context.Context, playlistRef, search, kindFlag string) ([]*models.MediaItem, error) {
	var items []*models.MediaItem
	var err error
	if playlistRef != "" {
		p, perr := lib.ResolvePlaylist(ctx, playlistRef)
		if perr != nil {
			return nil, fmt.Errorf("failed to find playlist: %w", perr)
		}
		items, err = lib.ListMediaForPlaylist(ctx, p.ID)
	} else {
		items, err = lib.ListMedia(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list media: %w", err)
	}

	if kindFlag != "" {
		kind, err := models.ParseKind(kindFlag)
		if err != nil {
			return nil, err
		}
		items = library.FilterByKind(items, kind)
	}
	return library.FilterByName(items, search), nil
}

func init() {
	listCmd.Flags().StringP("playlist", "p", "", "only media in this playlist (id, prefix or name)")
	listCmd.Flags().StringP("search", "s", "", "case-insensitive name filter")
	listCmd.Flags().String("kind", "", "audio or video")
	rootCmd.AddCommand(listCmd)
}
