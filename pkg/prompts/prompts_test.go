package prompts

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

func TestBuildDiscoveryPrompt(t *testing.T) {
	prompt := BuildDiscoveryPrompt([]string{"OpenAI", "Google DeepMind", "Anthropic"})

	assert.True(t, strings.HasPrefix(prompt,
		"Run a comprehensive competitor content discovery for the following competitors: OpenAI, Google DeepMind, Anthropic. Search for recent blog posts"))
	assert.True(t, strings.HasSuffix(prompt, "Flag any items that need manual review."))
	assert.Contains(t, prompt, "owned vs earned media")
}

func TestFindingSummaryLine(t *testing.T) {
	f := models.Finding{
		Competitor:      "Acme",
		Title:           "New Launch",
		SiteType:        "Blog",
		EngagementType:  "Product Launch",
		OwnedEarned:     "Owned",
		ConfidenceScore: 88,
	}

	assert.Equal(t,
		"Competitor: Acme, Title: New Launch, Site Type: Blog, Engagement: Product Launch, Source: Owned, Confidence: 88%",
		FindingSummaryLine(f))
}

func TestDistinctCompetitors(t *testing.T) {
	findings := []models.Finding{
		{Competitor: "Globex"},
		{Competitor: "Acme"},
		{Competitor: "Globex"},
		{Competitor: "Initech"},
	}
	assert.Equal(t, []string{"Globex", "Acme", "Initech"}, DistinctCompetitors(findings))
	assert.Empty(t, DistinctCompetitors(nil))
}

func TestBuildReportPrompt(t *testing.T) {
	approved := []models.Finding{
		{Competitor: "Acme", Title: "A", SiteType: "Blog", EngagementType: "Launch", OwnedEarned: "Owned", ConfidenceScore: 90},
		{Competitor: "Globex", Title: "B", SiteType: "News", EngagementType: "Funding", OwnedEarned: "Earned", ConfidenceScore: 70},
		{Competitor: "Acme", Title: "C", SiteType: "Social", EngagementType: "Post", OwnedEarned: "Owned", ConfidenceScore: 60},
	}

	want := "Generate a comprehensive monthly competitive intelligence report for March 2026. " +
		"Here are the approved findings to analyze:\n\n" +
		"Competitor: Acme, Title: A, Site Type: Blog, Engagement: Launch, Source: Owned, Confidence: 90%\n" +
		"Competitor: Globex, Title: B, Site Type: News, Engagement: Funding, Source: Earned, Confidence: 70%\n" +
		"Competitor: Acme, Title: C, Site Type: Social, Engagement: Post, Source: Owned, Confidence: 60%\n\n" +
		"Please provide an executive summary, trend analysis, per-competitor overviews, a comparative matrix, " +
		"and strategic recommendations. Total approved findings: 3. Competitors covered: Acme, Globex."

	assert.Equal(t, want, BuildReportPrompt(3, 2026, approved))
}
