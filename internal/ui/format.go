// ABOUTME: Terminal UI formatting for myaktube output.
// ABOUTME: Uses glamour for markdown detail views and fatih/color for styling.

package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/harper/myaktube/internal/models"
)

var (
	faint   = color.New(color.Faint).SprintFunc()
	bold    = color.New(color.Bold).SprintFunc()
	cyan    = color.New(color.FgCyan).SprintFunc()
	magenta = color.New(color.FgMagenta).SprintFunc()
)

const timeLayout = "2006-01-02 15:04"

func kindLabel(k models.MediaKind) string {
	if k == models.KindVideo {
		return magenta("video")
	}
	return cyan("audio")
}

func FormatMediaListItem(m *models.MediaItem) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("  %s  %s %s\n", faint(models.ShortID(m.ID)), bold(m.Name), kindLabel(m.Kind)))

	if by := byline(m); by != "" {
		sb.WriteString(fmt.Sprintf("             %s\n", by))
	}

	sb.WriteString(fmt.Sprintf("             %s %s  %s %s\n",
		faint("Size:"), faint(humanize.Bytes(uint64(m.Size))),
		faint("Added:"), faint(m.CreatedAt.Format(timeLayout))))

	return sb.String()
}

func byline(m *models.MediaItem) string {
	var parts []string
	if m.Title != "" {
		parts = append(parts, m.Title)
	}
	if m.Artist != "" {
		parts = append(parts, m.Artist)
	}
	if m.Album != "" {
		parts = append(parts, m.Album)
	}
	return strings.Join(parts, " · ")
}

func FormatPlaylistListItem(p *models.Playlist) string {
	noun := "items"
	if p.Count() == 1 {
		noun = "item"
	}
	return fmt.Sprintf("  %s  %s %s\n",
		faint(models.ShortID(p.ID)),
		bold(p.Name),
		faint(fmt.Sprintf("(%d %s)", p.Count(), noun)))
}

// MediaMarkdown describes one media item and the playlists holding it.
func MediaMarkdown(m *models.MediaItem, playlists []*models.Playlist) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", m.Name))
	sb.WriteString("| Field | Value |\n|---|---|\n")
	sb.WriteString(fmt.Sprintf("| ID | `%s` |\n", m.ID))
	sb.WriteString(fmt.Sprintf("| Kind | %s |\n", m.Kind))
	sb.WriteString(fmt.Sprintf("| Type | %s |\n", m.MimeType))
	sb.WriteString(fmt.Sprintf("| Size | %s |\n", humanize.Bytes(uint64(m.Size))))
	if m.Title != "" {
		sb.WriteString(fmt.Sprintf("| Title | %s |\n", m.Title))
	}
	if m.Artist != "" {
		sb.WriteString(fmt.Sprintf("| Artist | %s |\n", m.Artist))
	}
	if m.Album != "" {
		sb.WriteString(fmt.Sprintf("| Album | %s |\n", m.Album))
	}
	sb.WriteString(fmt.Sprintf("| Added | %s |\n", m.CreatedAt.Format(timeLayout)))

	if len(playlists) > 0 {
		sb.WriteString("\n## Playlists\n\n")
		for _, p := range playlists {
			sb.WriteString(fmt.Sprintf("- %s\n", p.Name))
		}
	}
	return sb.String()
}

// PlaylistMarkdown lists a playlist's media in playlist order.
func PlaylistMarkdown(p *models.Playlist, items []*models.MediaItem) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("# %s\n\n", p.Name))
	sb.WriteString(fmt.Sprintf("`%s` · created %s\n\n", p.ID, p.CreatedAt.Format(timeLayout)))
	if len(items) == 0 {
		sb.WriteString("_Empty playlist._\n")
		return sb.String()
	}
	for i, m := range items {
		sb.WriteString(fmt.Sprintf("%d. **%s** (%s, %s)\n", i+1, m.Name, m.Kind, humanize.Bytes(uint64(m.Size))))
	}
	return sb.String()
}

func RenderMarkdown(content string) (string, error) {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		// Fallback to raw content if renderer fails
		return content, nil //nolint:nilerr // Intentional fallback
	}

	out, err := renderer.Render(content)
	if err != nil {
		return content, nil //nolint:nilerr // Intentional fallback
	}
	return out, nil
}

func Separator() string {
	return faint(strings.Repeat("─", 50)) + "\n"
}

func Success(msg string) string {
	return color.New(color.FgGreen).Sprint("✓ ") + msg
}

func Error(msg string) string {
	return color.New(color.FgRed).Sprint("✗ ") + msg
}

func Warning(msg string) string {
	return color.New(color.FgYellow).Sprint("! ") + msg
}

func FormatShortID(id string) string {
	return faint(models.ShortID(id))
}

// FormatNowPlaying is the status line shown as each queued item starts.
func FormatNowPlaying(m *models.MediaItem, position, total int) string {
	line := fmt.Sprintf("▶ %s %s", bold(m.Name), faint(fmt.Sprintf("[%d/%d]", position, total)))
	if by := byline(m); by != "" {
		line += "  " + faint(by)
	}
	return line
}
