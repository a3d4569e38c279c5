package tools

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

type listFindingsResponse struct {
	Findings []models.Finding `json:"findings"`
	Total    int              `json:"total"`
}

// RegisterFindingTools registers list_findings and review_finding.
func RegisterFindingTools(s *server.MCPServer, deps *ToolDeps) {
	registerListFindingsTool(s, deps)
	registerReviewFindingTool(s, deps)
}

func registerListFindingsTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"list_findings",
		mcp.WithDescription(
			"Lists discovered findings, newest first. "+
				"Flagged findings are waiting for review; only approved findings feed monthly reports.",
		),
		mcp.WithString(
			"competitor",
			mcp.Description("Optional - Only findings for this competitor name"),
		),
		mcp.WithString(
			"site_type",
			mcp.Description("Optional - Only findings with this site type (e.g. 'Blog', 'News')"),
		),
		mcp.WithString(
			"status",
			mcp.Description("Optional - Filter by status: 'approved', 'flagged', or 'dismissed'"),
			mcp.Enum("approved", "flagged", "dismissed"),
		),
		mcp.WithReadOnlyHintAnnotation(true),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(true),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		filter := models.FindingFilter{
			Competitor: getOptionalString(req, "competitor"),
			SiteType:   getOptionalString(req, "site_type"),
			Status:     models.FindingStatus(getOptionalString(req, "status")),
		}
		if filter.Status != "" && !models.IsValidFindingStatus(filter.Status) {
			return NewErrorResult("invalid_parameters",
				fmt.Sprintf("invalid status: %s (must be one of: approved, flagged, dismissed)", filter.Status)), nil
		}

		found := deps.Store.Findings(filter)
		return jsonResult(listFindingsResponse{Findings: found, Total: len(found)})
	})
}

func registerReviewFindingTool(s *server.MCPServer, deps *ToolDeps) {
	tool := mcp.NewTool(
		"review_finding",
		mcp.WithDescription(
			"Resolves a flagged finding. Approved findings are included in monthly reports; "+
				"dismissed findings are not. Findings that are not flagged cannot be changed.",
		),
		mcp.WithString(
			"finding_id",
			mcp.Required(),
			mcp.Description("ID of the flagged finding"),
		),
		mcp.WithString(
			"status",
			mcp.Required(),
			mcp.Description("New status: 'approved' or 'dismissed'"),
			mcp.Enum("approved", "dismissed"),
		),
		mcp.WithReadOnlyHintAnnotation(false),
		mcp.WithDestructiveHintAnnotation(false),
		mcp.WithIdempotentHintAnnotation(false),
		mcp.WithOpenWorldHintAnnotation(false),
	)

	s.AddTool(tool, func(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		id := getOptionalString(req, "finding_id")
		if id == "" {
			return NewErrorResult("invalid_parameters", "parameter 'finding_id' cannot be empty"), nil
		}
		status := models.FindingStatus(getOptionalString(req, "status"))
		if !models.IsValidFindingStatus(status) {
			return NewErrorResult("invalid_parameters",
				fmt.Sprintf("invalid status: %q (must be one of: approved, dismissed)", status)), nil
		}

		f, err := deps.Store.UpdateFindingStatus(id, status)
		if err != nil {
			return toolError(deps, "review_finding", err)
		}

		deps.Logger.Info("Finding reviewed", zap.String("finding_id", f.ID), zap.String("status", string(f.Status)))
		return jsonResult(f)
	})
}
