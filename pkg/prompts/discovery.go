package prompts

import (
	"fmt"
	"strings"
)

const discoveryTask = "Search for recent blog posts, press releases, product launches, research publications, " +
	"social media announcements, partnerships, funding news, and any other notable content. " +
	"Classify each finding by site type, engagement type, owned vs earned media, and provide a confidence score. " +
	"Flag any items that need manual review."

// BuildDiscoveryPrompt creates the instruction sent to the discovery agent for
// the given competitor names, in tracking order.
func BuildDiscoveryPrompt(competitorNames []string) string {
	return fmt.Sprintf("Run a comprehensive competitor content discovery for the following competitors: %s. %s",
		strings.Join(competitorNames, ", "), discoveryTask)
}
