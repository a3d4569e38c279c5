package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

type healthResult struct {
	Status     string `json:"status"`
	Version    string `json:"version"`
	SampleMode bool   `json:"sample_mode"`
}

// RegisterHealthTool adds a health check tool to the MCP server.
// The tool returns the server status, version and whether sample data is loaded.
func RegisterHealthTool(s *server.MCPServer, version string, deps *ToolDeps) {
	tool := mcp.NewTool(
		"health",
		mcp.WithDescription("Returns server health status and version"),
		mcp.WithReadOnlyHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		return jsonResult(healthResult{Status: "ok", Version: version, SampleMode: deps.Store.SampleMode()})
	})
}
