package models

import "time"

// DiscoveryRun records one completed discovery cycle.
type DiscoveryRun struct {
	ID            string    `json:"id"`
	Date          time.Time `json:"date"`
	TotalFindings int       `json:"total_findings"`
	FlaggedCount  int       `json:"flagged_count"`
	XLSXURL       string    `json:"xlsx_url"`
}

// Dashboard summarizes the domain state for the landing view.
type Dashboard struct {
	CompetitorsTracked int           `json:"competitors_tracked"`
	LatestCompetitor   string        `json:"latest_competitor,omitempty"`
	TotalFindings      int           `json:"total_findings"`
	FlaggedCount       int           `json:"flagged_count"`
	ReportsGenerated   int           `json:"reports_generated"`
	LastRun            *DiscoveryRun `json:"last_run,omitempty"`
	LatestExportURL    string        `json:"latest_export_url,omitempty"`
	SampleMode         bool          `json:"sample_mode"`
}
