package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RegisterWorkflowTools registers run_discovery and generate_report.
func RegisterWorkflowTools(s *server.MCPServer, deps *ToolDeps) {
	registerRunDiscoveryTool(s, deps)
	registerGenerateReportTool(s, deps)
}

func registerRunDiscoveryTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"run_discovery",
		mcp.WithDescription(
			"Asks the discovery agent to research every tracked competitor and stores the findings it returns. "+
				"Only one discovery runs at a time. This can take several minutes.",
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		// A run that reached the agent completes even if the client goes away.
		outcome, err := deps.Discovery.Run(context.WithoutCancel(ctx))
		if err != nil {
			return toolError(deps, "run_discovery", err)
		}
		return jsonResult(outcome)
	})
}

func registerGenerateReportTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"generate_report",
		mcp.WithDescription(
			"Generates a monthly intelligence report from all approved findings. "+
				"Fails if no findings have been approved.",
		),
		mcp.WithNumber(
			"month",
			mcp.Required(),
			mcp.Description("Report month, 1-12"),
			mcp.Min(1),
			mcp.Max(12),
		),
		mcp.WithNumber(
			"year",
			mcp.Required(),
			mcp.Description("Report year, e.g. 2026"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(true),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		args := arguments(req)
		month, ok, err := extractIntParam(args, "month", deps.Logger)
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if !ok {
			return NewErrorResult("invalid_parameters", "parameter 'month' is required"), nil
		}
		year, ok, err := extractIntParam(args, "year", deps.Logger)
		if err != nil {
			return NewErrorResult("invalid_parameters", err.Error()), nil
		}
		if !ok {
			return NewErrorResult("invalid_parameters", "parameter 'year' is required"), nil
		}

		report, err := deps.Reports.Generate(context.WithoutCancel(ctx), month, year)
		if err != nil {
			return toolError(deps, "generate_report", err)
		}
		return jsonResult(report)
	})
}
