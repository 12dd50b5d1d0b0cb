// Package mcp exposes blend statistics to MCP clients over stdio.
package mcp

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/blackwell-systems/blendstats/internal/blend"
	"github.com/blackwell-systems/blendstats/internal/config"
	"github.com/blackwell-systems/blendstats/internal/store"
	"github.com/mark3labs/mcp-go/server"
)

// Server is an MCP stdio server. Every tool call builds its own Reader, so
// calls share no extraction state.
type Server struct {
	cfg    *config.Config
	db     *store.DB    // nil disables history
	runner blend.Runner // nil runs the real Blender binary
	mcp    *server.MCPServer
}

// NewServer constructs a Server. db may be nil when no database is available.
func NewServer(cfg *config.Config, db *store.DB, version string) *Server {
	s := &Server{cfg: cfg, db: db}
	s.mcp = server.NewMCPServer(
		"blendstats",
		version,
		server.WithToolCapabilities(false),
	)
	s.mcp.AddTools(s.tools()...)
	return s
}

// Run serves requests read from r and writes responses to w until ctx is
// cancelled or r reaches EOF.
func (s *Server) Run(ctx context.Context, r io.Reader, w io.Writer) error {
	return server.NewStdioServer(s.mcp).Listen(ctx, r, w)
}

// reader builds a Reader for path. Unlike the CLI, a missing file is an
// error rather than a silent switch to the bundled sample.
func (s *Server) reader(path string) (*blend.Reader, error) {
	if path == "" {
		return nil, fmt.Errorf("path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("project file: %w", err)
	}
	return blend.New(path, s.cfg.BlenderBin,
		blend.WithScriptPath(s.cfg.ScriptPath),
		blend.WithFallbackPath(s.cfg.FallbackPath),
		blend.WithTimeout(s.cfg.Timeout),
		blend.WithRunner(s.runner),
	), nil
}
