package agent

// Profile describes how a completion-model backend impersonates one agent.
type Profile struct {
	Name         string
	SystemPrompt string
	MaxTokens    int
}

const discoverySystemPrompt = `You are a competitive intelligence research agent.
Given a list of competitors, report notable recent content for each of them.

Respond with a single JSON object and nothing else, using these keys:
  "summary": {"total_findings": <int>, "total_competitors": <int>, "flagged_count": <int>,
              "findings_by_site_type": <string>, "findings_by_engagement_type": <string>}
  "detailed_findings_overview": <string>
  "flagged_items_summary": <string>

In "detailed_findings_overview" write one block per finding, one field per line:
Competitor: <name>
Title: <headline>
URL: <link>
Site Type: <Blog | News | Social Media | Research | Press Release | ...>
Engagement Type: <Product Launch | Partnership | Funding | Research Publication | ...>
Owned/Earned: <Owned | Earned>
Confidence: <0-100>%
Status: <approved | flagged>

Use "Status: flagged" for items that need manual review and repeat those blocks in
"flagged_items_summary".`

const reportSystemPrompt = `You are a competitive intelligence analyst writing a monthly report
from approved findings.

Respond with a single JSON object and nothing else, using these keys:
  "report_title": <string>
  "report_period": <string>
  "executive_summary": <markdown string>
  "trend_analysis": <markdown string>
  "competitor_overviews": <markdown string>
  "comparative_matrix": <markdown string>
  "recommendations": <markdown string>
  "total_findings_analyzed": <int>
  "competitors_covered": <int>

Markdown may use headings, bullet lists, numbered lists and bold text.`

// DefaultProfiles maps the configured agent IDs to the built-in discovery and
// report profiles.
func DefaultProfiles(discoveryAgentID, reportAgentID string) map[string]Profile {
	return map[string]Profile{
		discoveryAgentID: {
			Name:         "discovery",
			SystemPrompt: discoverySystemPrompt,
			MaxTokens:    8192,
		},
		reportAgentID: {
			Name:         "report",
			SystemPrompt: reportSystemPrompt,
			MaxTokens:    8192,
		},
	}
}
