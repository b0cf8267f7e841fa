// Package mcp exposes wiki retrieval and question answering as MCP tools
// over stdio, so AI assistants can ground their answers in the wiki.
package mcp

import (
	"github.com/mark3labs/mcp-go/server"

	"github.com/trotybot/wikirag/internal/engine"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Server wraps an MCP server that exposes wiki search and ask tools.
type Server struct {
	engine *engine.Engine
	mcp    *server.MCPServer
}

// NewServer creates a new MCP server over a shared engine.
func NewServer(eng *engine.Engine) *Server {
	s := &Server{engine: eng}

	s.mcp = server.NewMCPServer(
		"wikirag",
		Version,
		server.WithToolCapabilities(false),
	)

	s.registerTools()

	return s
}

// registerTools adds all tool definitions and their handlers to the MCP server.
func (s *Server) registerTools() {
	s.mcp.AddTool(wikiSearchTool, s.handleWikiSearch)
	s.mcp.AddTool(wikiAskTool, s.handleWikiAsk)
}

// Serve starts the MCP server on stdio. Stdout is used for MCP protocol
// messages; all logging must go to stderr.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcp)
}
