// ABOUTME: Export command for backing up the library.
// ABOUTME: Writes a JSON or YAML archive, optionally with base64 content.

package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/harper/myaktube/internal/library"
	"github.com/harper/myaktube/internal/ui"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the library",
	Long:  `Export media metadata and playlists to JSON or YAML. Use --content to include the media payloads.`,
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		format, _ := cmd.Flags().GetString("format")
		outputPath, _ := cmd.Flags().GetString("output")
		withContent, _ := cmd.Flags().GetBool("content")

		archive, err := lib.Export(cmd.Context(), withContent)
		if err != nil {
			return fmt.Errorf("failed to export: %w", err)
		}

		data, err := encodeArchive(archive, format)
		if err != nil {
			return err
		}

		if outputPath == "" || outputPath == "-" {
			_, err := cmd.OutOrStdout().Write(data)
			return err
		}
		if err := os.WriteFile(outputPath, data, 0600); err != nil {
			return fmt.Errorf("failed to write export: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ui.Success(fmt.Sprintf("Exported %d media and %d playlists to %s",
			len(archive.Media), len(archive.Playlists), outputPath)))
		return nil
	},
}

func encodeArchive(archive *library.Archive, format string) ([]byte, error) {
	switch format {
	case "json":
		data, err := json.MarshalIndent(archive, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case "yaml", "yml":
		return yaml.Marshal(archive)
	default:
		return nil, fmt.Errorf("unknown format: %s", format)
	}
}

func decodeArchive(r io.Reader) (*library.Archive, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	var archive library.Archive
	if jsonErr := json.Unmarshal(data, &archive); jsonErr == nil {
		return &archive, nil
	}
	// yaml.v3 is a superset parser, so it also reports malformed JSON sensibly.
	archive = library.Archive{}
	if err := yaml.Unmarshal(data, &archive); err != nil {
		return nil, fmt.Errorf("parse archive: %w", err)
	}
	return &archive, nil
}

func init() {
	exportCmd.Flags().StringP("format", "f", "json", "export format: json or yaml")
	exportCmd.Flags().StringP("output", "o", "", "output file (default stdout)")
	exportCmd.Flags().Bool("content", false, "include media content (base64)")
	rootCmd.AddCommand(exportCmd)
}
