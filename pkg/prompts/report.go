package prompts

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

// FindingSummaryLine renders one approved finding for the report prompt.
func FindingSummaryLine(f models.Finding) string {
	return fmt.Sprintf("Competitor: %s, Title: %s, Site Type: %s, Engagement: %s, Source: %s, Confidence: %d%%",
		f.Competitor, f.Title, f.SiteType, f.EngagementType, f.OwnedEarned, f.ConfidenceScore)
}

// DistinctCompetitors returns the competitor names of findings, deduplicated in
// first-seen order.
func DistinctCompetitors(findings []models.Finding) []string {
	seen := make(map[string]bool, len(findings))
	names := make([]string, 0, len(findings))
	for _, f := range findings {
		if seen[f.Competitor] {
			continue
		}
		seen[f.Competitor] = true
		names = append(names, f.Competitor)
	}
	return names
}

// BuildReportPrompt creates the instruction sent to the report agent for the
// given period and approved findings.
func BuildReportPrompt(month, year int, approved []models.Finding) string {
	lines := make([]string, len(approved))
	for i, f := range approved {
		lines[i] = FindingSummaryLine(f)
	}

	var prompt strings.Builder
	fmt.Fprintf(&prompt, "Generate a comprehensive monthly competitive intelligence report for %s %d. ",
		models.MonthName(month), year)
	prompt.WriteString("Here are the approved findings to analyze:\n\n")
	prompt.WriteString(strings.Join(lines, "\n"))
	prompt.WriteString("\n\nPlease provide an executive summary, trend analysis, per-competitor overviews, ")
	prompt.WriteString("a comparative matrix, and strategic recommendations. ")
	fmt.Fprintf(&prompt, "Total approved findings: %d. Competitors covered: %s.",
		len(approved), strings.Join(DistinctCompetitors(approved), ", "))

	return prompt.String()
}
