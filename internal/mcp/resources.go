// ABOUTME: MCP resources exposing media payloads and playlists by URI.
// ABOUTME: Media resources carry the raw blob; playlist resources are markdown.

package mcp

import (
	"context"
	"fmt"
	"strings"

	"github.com/harper/myaktube/internal/ui"
	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	mediaURIPrefix    = "myaktube://media/"
	playlistURIPrefix = "myaktube://playlist/"
)

func mediaURI(id string) string {
	return mediaURIPrefix + id
}

func (s *Server) registerResources() {
	s.server.AddResourceTemplate(
		&mcp.ResourceTemplate{
			URITemplate: mediaURIPrefix + "{id}",
			Name:        "Media",
			Description: "Raw audio or video content of a media item",
		},
		s.handleReadMedia,
	)
	s.server.AddResourceTemplate(
		&mcp.ResourceTemplate{
			URITemplate: playlistURIPrefix + "{id}",
			Name:        "Playlist",
			Description: "A playlist and its media in order",
			MIMEType:    "text/markdown",
		},
		s.handleReadPlaylist,
	)
}

func (s *Server) handleReadMedia(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ref, ok := strings.CutPrefix(req.Params.URI, mediaURIPrefix)
	if !ok || ref == "" {
		return nil, fmt.Errorf("invalid resource URI: %s", req.Params.URI)
	}

	meta, err := s.lib.ResolveMedia(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to find media: %w", err)
	}
	full, err := s.lib.GetPlayableMedia(ctx, meta.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load media: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: full.MimeType,
				Blob:     full.Content,
			},
		},
	}, nil
}

func (s *Server) handleReadPlaylist(ctx context.Context, req *mcp.ReadResourceRequest) (*mcp.ReadResourceResult, error) {
	ref, ok := strings.CutPrefix(req.Params.URI, playlistURIPrefix)
	if !ok || ref == "" {
		return nil, fmt.Errorf("invalid resource URI: %s", req.Params.URI)
	}

	p, err := s.lib.ResolvePlaylist(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to find playlist: %w", err)
	}
	items, err := s.lib.ListMediaForPlaylist(ctx, p.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to list playlist media: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{
			{
				URI:      req.Params.URI,
				MIMEType: "text/markdown",
				Text:     ui.PlaylistMarkdown(p, items),
			},
		},
	}, nil
}
