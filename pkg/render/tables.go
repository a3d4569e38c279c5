package render

import (
	"fmt"
	"strings"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

// CompetitorsTable renders competitors as a markdown table.
func CompetitorsTable(competitors []models.Competitor) string {
	rows := make([][]string, 0, len(competitors))
	for _, c := range competitors {
		rows = append(rows, []string{c.ID, c.Name, c.DateAdded})
	}
	return table([]string{"ID", "Name", "Added"}, rows)
}

// FindingsTable renders findings as a markdown table.
func FindingsTable(findings []models.Finding) string {
	rows := make([][]string, 0, len(findings))
	for _, f := range findings {
		rows = append(rows, []string{
			f.ID,
			f.Competitor,
			f.Title,
			f.SiteType,
			fmt.Sprintf("%d%%", f.ConfidenceScore),
			string(f.Status),
			f.DiscoveredAt,
		})
	}
	return table([]string{"ID", "Competitor", "Title", "Site", "Confidence", "Status", "Discovered"}, rows)
}

// ReportsTable renders report summaries as a markdown table.
func ReportsTable(reports []models.Report) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		rows = append(rows, []string{
			r.ID,
			r.ReportTitle,
			fmt.Sprintf("%d", r.TotalFindings),
			r.GeneratedAt.UTC().Format("2006-01-02 15:04"),
		})
	}
	return table([]string{"ID", "Title", "Findings", "Generated"}, rows)
}

func table(header []string, rows [][]string) string {
	var b strings.Builder
	writeRow(&b, header)
	sep := make([]string, len(header))
	for i := range sep {
		sep[i] = "---"
	}
	writeRow(&b, sep)
	for _, row := range rows {
		writeRow(&b, row)
	}
	return b.String()
}

func writeRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escapeCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

// escapeCell keeps agent text from breaking the table layout.
func escapeCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}
