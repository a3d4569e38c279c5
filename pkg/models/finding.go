package models

// ============================================================================
// Finding Status
// ============================================================================

// FindingStatus is the review state of a finding.
type FindingStatus string

const (
	FindingStatusApproved  FindingStatus = "approved"
	FindingStatusFlagged   FindingStatus = "flagged"
	FindingStatusDismissed FindingStatus = "dismissed"
)

// ValidFindingStatuses contains all valid finding status values.
var ValidFindingStatuses = []FindingStatus{
	FindingStatusApproved,
	FindingStatusFlagged,
	FindingStatusDismissed,
}

// IsValidFindingStatus checks if the given status is valid.
func IsValidFindingStatus(s FindingStatus) bool {
	for _, v := range ValidFindingStatuses {
		if v == s {
			return true
		}
	}
	return false
}

// CanTransition reports whether a finding may move from one status to another.
// Only flagged findings are pending review; they resolve to approved or dismissed.
func CanTransition(from, to FindingStatus) bool {
	return from == FindingStatusFlagged &&
		(to == FindingStatusApproved || to == FindingStatusDismissed)
}

// ============================================================================
// Finding
// ============================================================================

// Finding is one discovered piece of competitor content.
// Classification labels are an open vocabulary produced by the discovery agent.
type Finding struct {
	ID              string        `json:"id"`
	Competitor      string        `json:"competitor"` // denormalized name, not a reference
	Title           string        `json:"title"`
	URL             string        `json:"url"`
	SiteType        string        `json:"site_type"`
	EngagementType  string        `json:"engagement_type"`
	OwnedEarned     string        `json:"owned_earned"`
	ConfidenceScore int           `json:"confidence_score"`
	Status          FindingStatus `json:"status"`
	DiscoveredAt    string        `json:"discovered_at"` // YYYY-MM-DD
}

// FindingFilter narrows a findings listing. Empty fields match everything.
type FindingFilter struct {
	Competitor string
	SiteType   string
	Status     FindingStatus
}

// IsEmpty returns true if no filter field is set.
func (f FindingFilter) IsEmpty() bool {
	return f.Competitor == "" && f.SiteType == "" && f.Status == ""
}

// Matches returns true if the finding satisfies every set field.
func (f FindingFilter) Matches(finding Finding) bool {
	if f.Competitor != "" && finding.Competitor != f.Competitor {
		return false
	}
	if f.SiteType != "" && finding.SiteType != f.SiteType {
		return false
	}
	if f.Status != "" && finding.Status != f.Status {
		return false
	}
	return true
}

// FindingFacets lists the distinct filter values present in the findings collection,
// in first-seen order.
type FindingFacets struct {
	Competitors []string `json:"competitors"`
	SiteTypes   []string `json:"site_types"`
}
