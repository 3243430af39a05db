// ABOUTME: MCP tools for media and playlist operations.
// ABOUTME: Maps CLI functionality to MCP tool interface.

package mcp

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"time"

	"github.com/harper/myaktube/internal/library"
	"github.com/harper/myaktube/internal/models"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

func (s *Server) registerTools() {
	// list_media
	s.server.AddTool(&mcp.Tool{
		Name:        "list_media",
		Description: "List media items, optionally filtered by name, kind or playlist",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"query": {"type": "string", "description": "Case-insensitive name filter"},
				"kind": {"type": "string", "enum": ["audio", "video"], "description": "Only this kind"},
				"playlist": {"type": "string", "description": "Playlist ID, prefix or name; lists in playlist order"}
			}
		}`),
	}, s.handleListMedia)

	// get_media
	s.server.AddTool(&mcp.Tool{
		Name:        "get_media",
		Description: "Get a media item's metadata and the playlists that contain it",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Media ID or prefix (6+ chars)"}
			},
			"required": ["id"]
		}`),
	}, s.handleGetMedia)

	// upload_media
	s.server.AddTool(&mcp.Tool{
		Name:        "upload_media",
		Description: "Add an audio or video file to the library",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"filename": {"type": "string", "description": "Original file name, used for the display name"},
				"mime_type": {"type": "string", "description": "MIME type; video/* is stored as video"},
				"data": {"type": "string", "description": "Base64 encoded content"}
			},
			"required": ["filename", "mime_type", "data"]
		}`),
	}, s.handleUploadMedia)

	// delete_media
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_media",
		Description: "Delete a media item and remove it from every playlist",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"id": {"type": "string", "description": "Media ID or prefix"}
			},
			"required": ["id"]
		}`),
	}, s.handleDeleteMedia)

	// list_playlists
	s.server.AddTool(&mcp.Tool{
		Name:        "list_playlists",
		Description: "List playlists with their item counts",
		InputSchema: json.RawMessage(`{"type": "object", "properties": {}}`),
	}, s.handleListPlaylists)

	// create_playlist
	s.server.AddTool(&mcp.Tool{
		Name:        "create_playlist",
		Description: "Create an empty playlist",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"name": {"type": "string", "description": "Playlist name"}
			}
		}`),
	}, s.handleCreatePlaylist)

	// add_to_playlist
	s.server.AddTool(&mcp.Tool{
		Name:        "add_to_playlist",
		Description: "Append a media item to a playlist (no-op if already present)",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"playlist": {"type": "string", "description": "Playlist ID, prefix or name"},
				"media": {"type": "string", "description": "Media ID or prefix"}
			},
			"required": ["playlist", "media"]
		}`),
	}, s.handleAddToPlaylist)

	// remove_from_playlist
	s.server.AddTool(&mcp.Tool{
		Name:        "remove_from_playlist",
		Description: "Remove a media item from a playlist",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"playlist": {"type": "string", "description": "Playlist ID, prefix or name"},
				"media": {"type": "string", "description": "Media ID or prefix"}
			},
			"required": ["playlist", "media"]
		}`),
	}, s.handleRemoveFromPlaylist)

	// delete_playlist
	s.server.AddTool(&mcp.Tool{
		Name:        "delete_playlist",
		Description: "Delete a playlist; its media stays in the library",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"playlist": {"type": "string", "description": "Playlist ID, prefix or name"}
			},
			"required": ["playlist"]
		}`),
	}, s.handleDeletePlaylist)
}

type mediaView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Kind      string    `json:"kind"`
	MimeType  string    `json:"mime_type"`
	Size      int64     `json:"size"`
	Title     string    `json:"title,omitempty"`
	Artist    string    `json:"artist,omitempty"`
	Album     string    `json:"album,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	Resource  string    `json:"resource"`
}

type playlistView struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	MediaIDs  []string  `json:"media_ids"`
	Count     int       `json:"count"`
	CreatedAt time.Time `json:"created_at"`
}

func toMediaView(m *models.MediaItem) mediaView {
	return mediaView{
		ID:        m.ID,
		Name:      m.Name,
		Kind:      string(m.Kind),
		MimeType:  m.MimeType,
		Size:      m.Size,
		Title:     m.Title,
		Artist:    m.Artist,
		Album:     m.Album,
		CreatedAt: m.CreatedAt,
		Resource:  mediaURI(m.ID),
	}
}

func toPlaylistView(p *models.Playlist) playlistView {
	return playlistView{
		ID:        p.ID,
		Name:      p.Name,
		MediaIDs:  p.MediaIDs,
		Count:     p.Count(),
		CreatedAt: p.CreatedAt,
	}
}

func errorResult(format string, args ...any) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: fmt.Sprintf(format, args...)},
		},
		IsError: true,
	}
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{
			&mcp.TextContent{Text: text},
		},
	}
}

func jsonResult(v any) *mcp.CallToolResult {
	data, _ := json.MarshalIndent(v, "", "  ")
	return textResult(string(data))
}

// Tool handlers.
func (s *Server) handleListMedia(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Query    string `json:"query"`
		Kind     string `json:"kind"`
		Playlist string `json:"playlist"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	var items []*models.MediaItem
	var err error
	if params.Playlist != "" {
		p, perr := s.lib.ResolvePlaylist(ctx, params.Playlist)
		if perr != nil {
			return errorResult("failed to find playlist: %v", perr), nil
		}
		items, err = s.lib.ListMediaForPlaylist(ctx, p.ID)
	} else {
		items, err = s.lib.ListMedia(ctx)
	}
	if err != nil {
		return errorResult("failed to list media: %v", err), nil
	}

	if params.Kind != "" {
		kind, err := models.ParseKind(params.Kind)
		if err != nil {
			return errorResult("%v", err), nil
		}
		items = library.FilterByKind(items, kind)
	}
	items = library.FilterByName(items, params.Query)

	views := make([]mediaView, 0, len(items))
	for _, m := range items {
		views = append(views, toMediaView(m))
	}
	return jsonResult(views), nil
}

func (s *Server) handleGetMedia(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	m, err := s.lib.ResolveMedia(ctx, params.ID)
	if err != nil {
		return errorResult("failed to get media: %v", err), nil
	}
	playlists, err := s.lib.ListPlaylists(ctx)
	if err != nil {
		return errorResult("failed to list playlists: %v", err), nil
	}

	in := []string{}
	for _, p := range playlists {
		if p.Contains(m.ID) {
			in = append(in, p.Name)
		}
	}
	return jsonResult(struct {
		mediaView
		Playlists []string `json:"playlists"`
	}{toMediaView(m), in}), nil
}

func (s *Server) handleUploadMedia(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Filename string `json:"filename"`
		MimeType string `json:"mime_type"`
		Data     string `json:"data"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	data, err := base64.StdEncoding.DecodeString(params.Data)
	if err != nil {
		return errorResult("invalid base64 data: %v", err), nil
	}

	m, err := s.lib.UploadMedia(ctx, library.Upload{
		Name:     params.Filename,
		MimeType: params.MimeType,
		Body:     bytes.NewReader(data),
	})
	if err != nil {
		return errorResult("failed to upload media: %v", err), nil
	}
	return jsonResult(toMediaView(m)), nil
}

func (s *Server) handleDeleteMedia(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		ID string `json:"id"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	m, err := s.lib.ResolveMedia(ctx, params.ID)
	if err != nil {
		return errorResult("failed to find media: %v", err), nil
	}
	if err := s.lib.DeleteMedia(ctx, m.ID); err != nil {
		return errorResult("failed to delete media: %v", err), nil
	}
	return textResult(fmt.Sprintf("Deleted media %s (%s)", m.Name, m.ID)), nil
}

func (s *Server) handleListPlaylists(ctx context.Context, _ *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	playlists, err := s.lib.ListPlaylists(ctx)
	if err != nil {
		return errorResult("failed to list playlists: %v", err), nil
	}
	views := make([]playlistView, 0, len(playlists))
	for _, p := range playlists {
		views = append(views, toPlaylistView(p))
	}
	return jsonResult(views), nil
}

func (s *Server) handleCreatePlaylist(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	p, err := s.lib.CreatePlaylist(ctx, params.Name)
	if err != nil {
		return errorResult("failed to create playlist: %v", err), nil
	}
	return jsonResult(toPlaylistView(p)), nil
}

func (s *Server) handleAddToPlaylist(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.changeMembership(ctx, req, s.lib.AddMediaToPlaylist)
}

func (s *Server) handleRemoveFromPlaylist(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return s.changeMembership(ctx, req, s.lib.RemoveMediaFromPlaylist)
}

type membershipFunc func(ctx context.Context, playlistID, mediaID string) (*models.Playlist, error)

func (s *Server) changeMembership(ctx context.Context, req *mcp.CallToolRequest, change membershipFunc) (*mcp.CallToolResult, error) {
	var params struct {
		Playlist string `json:"playlist"`
		Media    string `json:"media"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	p, err := s.lib.ResolvePlaylist(ctx, params.Playlist)
	if err != nil {
		return errorResult("failed to find playlist: %v", err), nil
	}
	m, err := s.lib.ResolveMedia(ctx, params.Media)
	if err != nil {
		return errorResult("failed to find media: %v", err), nil
	}

	updated, err := change(ctx, p.ID, m.ID)
	if err != nil {
		return errorResult("failed to update playlist: %v", err), nil
	}
	if updated == nil {
		return errorResult("playlist %s no longer exists", p.ID), nil
	}
	return jsonResult(toPlaylistView(updated)), nil
}

func (s *Server) handleDeletePlaylist(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var params struct {
		Playlist string `json:"playlist"`
	}
	if err := json.Unmarshal(req.Params.Arguments, &params); err != nil {
		return nil, err
	}

	p, err := s.lib.ResolvePlaylist(ctx, params.Playlist)
	if err != nil {
		return errorResult("failed to find playlist: %v", err), nil
	}
	if err := s.lib.DeletePlaylist(ctx, p.ID); err != nil {
		return errorResult("failed to delete playlist: %v", err), nil
	}
	return textResult(fmt.Sprintf("Deleted playlist %s", p.Name)), nil
}
