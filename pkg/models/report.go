package models

import "time"

// MonthNames maps month numbers (index+1) to English month names.
var MonthNames = [12]string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// MonthName returns the English name for month (1-12), or "Unknown".
func MonthName(month int) string {
	if month < 1 || month > 12 {
		return "Unknown"
	}
	return MonthNames[month-1]
}

// Report is a monthly narrative generated by the report agent.
// Narrative sections are stored verbatim and may contain a small markdown subset.
type Report struct {
	ID                  string    `json:"id"`
	Month               int       `json:"month"`
	Year                int       `json:"year"`
	ReportTitle         string    `json:"report_title"`
	ReportPeriod        string    `json:"report_period"`
	ExecutiveSummary    string    `json:"executive_summary"`
	TrendAnalysis       string    `json:"trend_analysis"`
	CompetitorOverviews string    `json:"competitor_overviews"`
	ComparativeMatrix   string    `json:"comparative_matrix"`
	Recommendations     string    `json:"recommendations"`
	TotalFindings       int       `json:"total_findings"`
	CompetitorsCovered  int       `json:"competitors_covered"`
	PDFURL              string    `json:"pdf_url"`
	GeneratedAt         time.Time `json:"generated_at"`
}

// ReportSection is a titled narrative block of a report.
type ReportSection struct {
	Title string
	Body  string
}

// Sections returns the narrative sections in display order.
func (r *Report) Sections() []ReportSection {
	return []ReportSection{
		{Title: "Executive Summary", Body: r.ExecutiveSummary},
		{Title: "Trend Analysis", Body: r.TrendAnalysis},
		{Title: "Competitor Overviews", Body: r.CompetitorOverviews},
		{Title: "Comparative Matrix", Body: r.ComparativeMatrix},
		{Title: "Recommendations", Body: r.Recommendations},
	}
}
