// ABOUTME: Upload command for adding audio and video files.
// ABOUTME: Each file succeeds or fails on its own; the exit status reports any failure.

package main

import (
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"

	"github.com/harper/myaktube/internal/library"
	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/ui"
	"github.com/spf13/cobra"
)

var uploadCmd = &cobra.Command{
	Use:   "upload <file>...",
	Short: "Add media files",
	Long:  `Add one or more audio or video files to the library. The content type is taken from the file extension, then from the content, unless --type is given.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		typeFlag, _ := cmd.Flags().GetString("type")
		out := cmd.OutOrStdout()

		var uploads []library.Upload
		var files []*os.File
		defer func() {
			for _, f := range files {
				_ = f.Close()
			}
		}()

		failed := 0
		for _, path := range args {
			f, err := os.Open(path) //nolint:gosec // User-specified file path is expected CLI behavior
			if err != nil {
				fmt.Fprintln(out, ui.Error(fmt.Sprintf("%s: %v", path, err)))
				failed++
				continue
			}
			files = append(files, f)

			mimeType := typeFlag
			if mimeType == "" {
				mimeType, err = detectMIME(path, f)
				if err != nil {
					fmt.Fprintln(out, ui.Error(fmt.Sprintf("%s: %v", path, err)))
					failed++
					continue
				}
			}
			uploads = append(uploads, library.Upload{
				Name:     filepath.Base(path),
				MimeType: mimeType,
				Body:     f,
			})
		}

		for _, r := range lib.UploadAll(cmd.Context(), uploads) {
			if r.Err != nil {
				fmt.Fprintln(out, ui.Error(fmt.Sprintf("%s: %v", r.Name, r.Err)))
				failed++
				continue
			}
			fmt.Fprintln(out, ui.Success(fmt.Sprintf("Added %s %s (%s)", r.Media.Kind, r.Media.Name, models.ShortID(r.Media.ID))))
		}

		if failed > 0 {
			return fmt.Errorf("%d of %d uploads failed", failed, len(args))
		}
		return nil
	},
}

// Registered on top of the system table, which is often missing media types.
var mediaExtensions = map[string]string{
	".mp3":  "audio/mpeg",
	".m4a":  "audio/mp4",
	".aac":  "audio/aac",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".opus": "audio/opus",
	".wav":  "audio/wav",
	".mp4":  "video/mp4",
	".m4v":  "video/x-m4v",
	".mkv":  "video/x-matroska",
	".webm": "video/webm",
	".mov":  "video/quicktime",
	".avi":  "video/x-msvideo",
}

// detectMIME uses the extension, falling back to sniffing the first 512 bytes.
func detectMIME(path string, f io.ReadSeeker) (string, error) {
	if byExt := mime.TypeByExtension(filepath.Ext(path)); byExt != "" {
		if mediaType, _, err := mime.ParseMediaType(byExt); err == nil {
			return mediaType, nil
		}
		return byExt, nil
	}

	head := make([]byte, 512)
	n, err := io.ReadFull(f, head)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", fmt.Errorf("read header: %w", err)
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		return "", fmt.Errorf("rewind: %w", err)
	}

	mediaType, _, err := mime.ParseMediaType(http.DetectContentType(head[:n]))
	if err != nil {
		return "application/octet-stream", nil //nolint:nilerr // Unknown content is still uploadable
	}
	return mediaType, nil
}

func init() {
	for ext, typ := range mediaExtensions {
		_ = mime.AddExtensionType(ext, typ)
	}
	uploadCmd.Flags().String("type", "", "content type for every file (e.g. audio/mpeg)")
	rootCmd.AddCommand(uploadCmd)
}
