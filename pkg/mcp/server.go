// Package mcp exposes intelhub operations as MCP tools over streamable HTTP.
package mcp

import (
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/mcp/tools"
)

// ServerName is reported to MCP clients during initialization.
const ServerName = "intelhub"

// Server wraps the mcp-go MCPServer.
type Server struct {
	mcp    *server.MCPServer
	logger *zap.Logger
}

// NewServer creates an MCP server with every intelhub tool registered.
func NewServer(version string, deps *tools.ToolDeps, logger *zap.Logger) *Server {
	mcpServer := server.NewMCPServer(
		ServerName,
		version,
		server.WithToolCapabilities(true),
		server.WithRecovery(),
		server.WithInstructions("Track competitors, run discovery, review flagged findings and generate monthly intelligence reports."),
	)

	tools.RegisterTools(mcpServer, version, deps)

	return &Server{
		mcp:    mcpServer,
		logger: logger.Named("mcp"),
	}
}

// MCP returns the underlying MCPServer.
func (s *Server) MCP() *server.MCPServer {
	return s.mcp
}

// NewStreamableHTTPServer creates an HTTP transport server wrapping this MCP server.
// The HTTP mux handles routing to /mcp, so no endpoint path is configured here.
func (s *Server) NewStreamableHTTPServer() *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(
		s.mcp,
		server.WithStateLess(true),
	)
}

// RegisterTool registers an additional tool.
func (s *Server) RegisterTool(tool mcp.Tool, handler server.ToolHandlerFunc) {
	s.mcp.AddTool(tool, handler)
}
