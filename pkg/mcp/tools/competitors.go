package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

type listCompetitorsResponse struct {
	Competitors []models.Competitor `json:"competitors"`
	Total       int                 `json:"total"`
}

// RegisterCompetitorTools registers list_competitors and add_competitor.
func RegisterCompetitorTools(s *server.MCPServer, deps *ToolDeps) {
	registerListCompetitorsTool(s, deps)
	registerAddCompetitorTool(s, deps)
}

func registerListCompetitorsTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"list_competitors",
		mcp.WithDescription("Lists the tracked competitors in the order they were added."),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		competitors := deps.Store.Competitors()
		return jsonResult(listCompetitorsResponse{Competitors: competitors, Total: len(competitors)})
	})
}

func registerAddCompetitorTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"add_competitor",
		mcp.WithDescription("Starts tracking a competitor. The next discovery run includes it."),
		mcp.WithString(
			"name",
			mcp.Required(),
			mcp.Description("Competitor name as it should appear in findings"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		name := getOptionalString(req, "name")
		if name == "" {
			return NewErrorResult("invalid_parameters", "parameter 'name' cannot be empty"), nil
		}

		c, err := deps.Store.AddCompetitor(name)
		if err != nil {
			return toolError(deps, "add_competitor", err)
		}

		deps.Logger.Info("Competitor added", zap.String("competitor_id", c.ID))
		return jsonResult(c)
	})
}
