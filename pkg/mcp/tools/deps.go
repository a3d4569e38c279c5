// Package tools provides the MCP tools for intelhub.
package tools

import (
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/services"
	"github.com/ekaya-inc/intelhub/pkg/state"
)

// ToolDeps contains dependencies shared by all intelhub tools.
type ToolDeps struct {
	Store     *state.Store
	Discovery services.DiscoveryService
	Reports   services.ReportService
	Logger    *zap.Logger
}

// RegisterTools registers every intelhub tool on s.
func RegisterTools(s *server.MCPServer, version string, deps *ToolDeps) {
	RegisterHealthTool(s, version, deps)
	RegisterCompetitorTools(s, deps)
	RegisterFindingTools(s, deps)
	RegisterWorkflowTools(s, deps)
	RegisterReportTools(s, deps)
}

// toolError turns err into a structured result when the caller can act on it
// and into a Go error otherwise.
func toolError(deps *ToolDeps, tool string, err error) (*mcp.CallToolResult, error) {
	if result := NewDomainErrorResult(err); result != nil {
		if IsInputError(err) {
			deps.Logger.Debug("Tool rejected input", zap.String("tool", tool), zap.Error(err))
		} else {
			deps.Logger.Warn("Tool call failed", zap.String("tool", tool), zap.Error(err))
		}
		return result, nil
	}
	deps.Logger.Error("Tool call failed", zap.String("tool", tool), zap.Error(err))
	return nil, fmt.Errorf("%s failed: %w", tool, err)
}
