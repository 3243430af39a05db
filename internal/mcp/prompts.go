// ABOUTME: MCP prompts for common library workflows.
// ABOUTME: Provides pre-configured prompts for AI agent interactions.

package mcp

import (
	"context"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerPrompts() {
	// Register individual prompts - SDK will automatically handle listing
	s.server.AddPrompt(&mcp.Prompt{
		Name:        "build-playlist",
		Description: "Assemble a playlist from the library around a theme",
		Arguments: []*mcp.PromptArgument{
			{
				Name:        "theme",
				Description: "Mood, occasion or genre for the playlist",
				Required:    true,
			},
		},
	}, s.getBuildPlaylistPrompt)

	s.server.AddPrompt(&mcp.Prompt{
		Name:        "tidy-library",
		Description: "Find duplicates, untitled uploads and empty playlists",
	}, s.getTidyLibraryPrompt)
}

func userPrompt(text string) *mcp.GetPromptResult {
	return &mcp.GetPromptResult{
		Messages: []*mcp.PromptMessage{
			{
				Role: "user",
				Content: &mcp.TextContent{
					Text: text,
				},
			},
		},
	}
}

func (s *Server) getBuildPlaylistPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	theme, ok := req.Params.Arguments["theme"]
	if !ok || theme == "" {
		theme = "Road Trip"
	}

	template := fmt.Sprintf(`Build a playlist for: %s

1. Use list_media to see what is in the library (names, artists, albums, kinds)
2. Pick the items that fit the theme and decide on a running order
3. Use create_playlist with a short name for the theme
4. Use add_to_playlist for each item, in the order you chose
5. Finish with list_media filtered by the new playlist to confirm the order

Explain briefly why each item was chosen.`, theme)

	return userPrompt(template), nil
}

func (s *Server) getTidyLibraryPrompt(ctx context.Context, req *mcp.GetPromptRequest) (*mcp.GetPromptResult, error) {
	template := `Help me tidy my media library:

1. Use list_media to see every item
2. Point out likely duplicates (same name and size) and items with no title or artist
3. Use list_playlists to find empty playlists or playlists with near-identical names
4. Propose deletions and merges with item IDs, but do not delete anything until I confirm`

	return userPrompt(template), nil
}
