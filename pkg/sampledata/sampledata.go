// Package sampledata provides the demo dataset shown in sample mode.
package sampledata

import (
	_ "embed"
	"fmt"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

//go:embed sample.yaml
var sampleYAML []byte

// Dataset is a full set of hub collections.
type Dataset struct {
	Competitors      []models.Competitor
	Findings         []models.Finding
	Reports          []models.Report
	DiscoveryHistory []models.DiscoveryRun
}

type document struct {
	Competitors []struct {
		ID        string `yaml:"id"`
		Name      string `yaml:"name"`
		DateAdded string `yaml:"date_added"`
	} `yaml:"competitors"`
	Findings []struct {
		ID              string `yaml:"id"`
		Competitor      string `yaml:"competitor"`
		Title           string `yaml:"title"`
		URL             string `yaml:"url"`
		SiteType        string `yaml:"site_type"`
		EngagementType  string `yaml:"engagement_type"`
		OwnedEarned     string `yaml:"owned_earned"`
		ConfidenceScore int    `yaml:"confidence_score"`
		Status          string `yaml:"status"`
		DiscoveredAt    string `yaml:"discovered_at"`
	} `yaml:"findings"`
	Reports []struct {
		ID                  string    `yaml:"id"`
		Month               int       `yaml:"month"`
		Year                int       `yaml:"year"`
		ReportTitle         string    `yaml:"report_title"`
		ReportPeriod        string    `yaml:"report_period"`
		ExecutiveSummary    string    `yaml:"executive_summary"`
		TrendAnalysis       string    `yaml:"trend_analysis"`
		CompetitorOverviews string    `yaml:"competitor_overviews"`
		ComparativeMatrix   string    `yaml:"comparative_matrix"`
		Recommendations     string    `yaml:"recommendations"`
		TotalFindings       int       `yaml:"total_findings"`
		CompetitorsCovered  int       `yaml:"competitors_covered"`
		PDFURL              string    `yaml:"pdf_url"`
		GeneratedAt         time.Time `yaml:"generated_at"`
	} `yaml:"reports"`
	DiscoveryHistory []struct {
		ID            string    `yaml:"id"`
		Date          time.Time `yaml:"date"`
		TotalFindings int       `yaml:"total_findings"`
		FlaggedCount  int       `yaml:"flagged_count"`
		XLSXURL       string    `yaml:"xlsx_url"`
	} `yaml:"discovery_history"`
}

// Load decodes the embedded dataset. Each call returns fresh slices.
func Load() (*Dataset, error) {
	var doc document
	if err := yaml.Unmarshal(sampleYAML, &doc); err != nil {
		return nil, fmt.Errorf("decode sample dataset: %w", err)
	}

	ds := &Dataset{
		Competitors:      make([]models.Competitor, 0, len(doc.Competitors)),
		Findings:         make([]models.Finding, 0, len(doc.Findings)),
		Reports:          make([]models.Report, 0, len(doc.Reports)),
		DiscoveryHistory: make([]models.DiscoveryRun, 0, len(doc.DiscoveryHistory)),
	}

	for _, c := range doc.Competitors {
		ds.Competitors = append(ds.Competitors, models.Competitor{ID: c.ID, Name: c.Name, DateAdded: c.DateAdded})
	}

	for _, f := range doc.Findings {
		status := models.FindingStatus(f.Status)
		if !models.IsValidFindingStatus(status) {
			return nil, fmt.Errorf("sample finding %s: invalid status %q", f.ID, f.Status)
		}
		ds.Findings = append(ds.Findings, models.Finding{
			ID:              f.ID,
			Competitor:      f.Competitor,
			Title:           f.Title,
			URL:             f.URL,
			SiteType:        f.SiteType,
			EngagementType:  f.EngagementType,
			OwnedEarned:     f.OwnedEarned,
			ConfidenceScore: f.ConfidenceScore,
			Status:          status,
			DiscoveredAt:    f.DiscoveredAt,
		})
	}

	for _, r := range doc.Reports {
		ds.Reports = append(ds.Reports, models.Report{
			ID:                  r.ID,
			Month:               r.Month,
			Year:                r.Year,
			ReportTitle:         r.ReportTitle,
			ReportPeriod:        r.ReportPeriod,
			ExecutiveSummary:    r.ExecutiveSummary,
			TrendAnalysis:       r.TrendAnalysis,
			CompetitorOverviews: r.CompetitorOverviews,
			ComparativeMatrix:   r.ComparativeMatrix,
			Recommendations:     r.Recommendations,
			TotalFindings:       r.TotalFindings,
			CompetitorsCovered:  r.CompetitorsCovered,
			PDFURL:              r.PDFURL,
			GeneratedAt:         r.GeneratedAt,
		})
	}

	for _, d := range doc.DiscoveryHistory {
		ds.DiscoveryHistory = append(ds.DiscoveryHistory, models.DiscoveryRun{
			ID:            d.ID,
			Date:          d.Date,
			TotalFindings: d.TotalFindings,
			FlaggedCount:  d.FlaggedCount,
			XLSXURL:       d.XLSXURL,
		})
	}

	return ds, nil
}
