// ABOUTME: MCP server for myaktube integration with AI agents.
// ABOUTME: Provides tools, resources, and prompts over the library service.

package mcp

import (
	"context"

	"github.com/harper/myaktube/internal/library"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/sirupsen/logrus"
)

type Server struct {
	server *mcp.Server
	lib    *library.Service
	log    logrus.FieldLogger
}

func NewServer(lib *library.Service, version string, log logrus.FieldLogger) *Server {
	s := &Server{lib: lib, log: log}

	s.server = mcp.NewServer(
		&mcp.Implementation{
			Name:    "myaktube",
			Version: version,
		},
		&mcp.ServerOptions{
			HasTools:     true,
			HasResources: true,
			HasPrompts:   true,
		},
	)

	s.registerTools()
	s.registerResources()
	s.registerPrompts()

	return s
}

func (s *Server) Serve(ctx context.Context) error {
	s.log.Info("mcp server listening on stdio")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}
