package tools

import (
	"context"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/render"
)

// getReportResponse carries the stored report plus its rendered markdown.
type getReportResponse struct {
	Report   models.Report `json:"report"`
	Markdown string        `json:"markdown"`
}

// RegisterReportTools registers get_report.
func RegisterReportTools(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"get_report",
		mcp.WithDescription(
			"Returns a generated report with its sections rendered as markdown. "+
				"Without report_id the most recent report is returned.",
		),
		mcp.WithString(
			"report_id",
			mcp.Description("Optional - ID of the report to fetch"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		var report models.Report
		if id := getOptionalString(req, "report_id"); id != "" {
			r, err := deps.Store.Report(id)
			if err != nil {
				return toolError(deps, "get_report", err)
			}
			report = r
		} else {
			reports := deps.Store.Reports()
			if len(reports) == 0 {
				return NewErrorResult("not_found", "no reports have been generated yet"), nil
			}
			report = reports[0]
		}

		return jsonResult(getReportResponse{Report: report, Markdown: render.Markdown(&report)})
	})
}
