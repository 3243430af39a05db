// ABOUTME: Play command for extracting or playing media content.
// ABOUTME: Hands a temporary file to the configured player and removes it afterwards.

package main

import (
	"context"
	"fmt"
	"mime"
	"os"
	"os/exec"
	"runtime"
	"strings"

	"github.com/harper/myaktube/internal/library"
	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/ui"
	"github.com/spf13/cobra"
)

var playCmd = &cobra.Command{
	Use:   "play [id-prefix]",
	Short: "Play media",
	Long: `Play a media item with the configured player, or write its content with -o.
Use -o - to write the raw content to stdout.

With --playlist, --search, --kind or --all, play the matching list as a queue
in order, starting at the given item if one is named. --loop keeps cycling.`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		output, _ := cmd.Flags().GetString("output")
		playlistRef, _ := cmd.Flags().GetString("playlist")
		search, _ := cmd.Flags().GetString("search")
		kindFlag, _ := cmd.Flags().GetString("kind")
		all, _ := cmd.Flags().GetBool("all")
		loop, _ := cmd.Flags().GetBool("loop")
		ctx := cmd.Context()

		queued := all || playlistRef != "" || search != "" || kindFlag != ""
		if !queued {
			if len(args) == 0 {
				return fmt.Errorf("name a media item, or choose a queue with --playlist, --search, --kind or --all")
			}
			return playOne(cmd, args[0], output)
		}
		if output != "" {
			return fmt.Errorf("-o writes a single item; drop the queue flags")
		}

		items, err := selectMedia(ctx, playlistRef, search, kindFlag)
		if err != nil {
			return err
		}
		if len(items) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No media found.")
			return nil
		}

		startID := ""
		if len(args) == 1 {
			start, err := lib.ResolveMedia(ctx, args[0])
			if err != nil {
				return fmt.Errorf("failed to get media: %w", err)
			}
			startID = start.ID
		}

		q := library.NewQueue(items, startID)
		_, err = lib.PlayQueue(ctx, q, loop, func(ctx context.Context, m *models.MediaItem) error {
			fmt.Fprintln(cmd.ErrOrStderr(), ui.FormatNowPlaying(m, q.Index()+1, q.Len()))
			return playWithPlayer(cmd, m)
		})
		return err
	},
}

func playOne(cmd *cobra.Command, ref, output string) error {
	ctx := cmd.Context()
	meta, err := lib.ResolveMedia(ctx, ref)
	if err != nil {
		return fmt.Errorf("failed to get media: %w", err)
	}
	m, err := lib.GetPlayableMedia(ctx, meta.ID)
	if err != nil {
		return fmt.Errorf("failed to load media: %w", err)
	}

	switch output {
	case "-":
		_, err := cmd.OutOrStdout().Write(m.Content)
		return err
	case "":
		return playWithPlayer(cmd, m)
	default:
		if err := os.WriteFile(output, m.Content, 0600); err != nil {
			return fmt.Errorf("failed to write file: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Wrote %s to %s", m.Name, output)))
		return nil
	}
}

func playWithPlayer(cmd *cobra.Command, m *models.MediaItem) error {
	tmp, err := os.CreateTemp("", "myaktube-*"+extensionFor(m.MimeType))
	if err != nil {
		return err
	}
	defer func() {
		_ = os.Remove(tmp.Name()) // Best-effort cleanup
	}()

	if _, err := tmp.Write(m.Content); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("failed to write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	argv := playerCommand(cfg.Player)
	argv = append(argv, tmp.Name())
	logger.WithField("media_id", m.ID).WithField("player", argv[0]).Debug("launching player")

	player := exec.CommandContext(cmd.Context(), argv[0], argv[1:]...) //nolint:gosec // Launching the configured player is expected CLI behavior
	player.Stdin = os.Stdin
	player.Stdout = cmd.OutOrStdout()
	player.Stderr = cmd.ErrOrStderr()
	if err := player.Run(); err != nil {
		return fmt.Errorf("player %s: %w", argv[0], err)
	}
	return nil
}

func playerCommand(configured string) []string {
	if fields := strings.Fields(configured); len(fields) > 0 {
		return fields
	}
	if runtime.GOOS == "darwin" {
		return []string{"open", "-W"}
	}
	return []string{"xdg-open"}
}

func extensionFor(mimeType string) string {
	exts, err := mime.ExtensionsByType(mimeType)
	if err != nil || len(exts) == 0 {
		return ""
	}
	return exts[0]
}

func init() {
	playCmd.Flags().StringP("output", "o", "", "write content to this path (- for stdout) instead of playing")
	playCmd.Flags().StringP("playlist", "p", "", "queue this playlist (id, prefix or name)")
	playCmd.Flags().StringP("search", "s", "", "queue media whose name matches")
	playCmd.Flags().String("kind", "", "queue only audio or video")
	playCmd.Flags().Bool("all", false, "queue the whole library")
	playCmd.Flags().Bool("loop", false, "keep cycling through the queue")
	rootCmd.AddCommand(playCmd)
}
