// Package render turns stored reports into markdown, sanitized HTML and
// terminal output.
package render

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"
	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

// StyleAuto picks a terminal style from the detected background.
const StyleAuto = "auto"

// DefaultWordWrap is the terminal wrap width used when none is given.
const DefaultWordWrap = 80

var (
	markdown = goldmark.New(
		goldmark.WithExtensions(extension.GFM),
		goldmark.WithRendererOptions(html.WithHardWraps()),
	)
	policy = bluemonday.UGCPolicy()
)

// Markdown assembles a report into a single markdown document.
// Empty narrative sections are omitted.
func Markdown(r *models.Report) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", r.ReportTitle)
	if r.ReportPeriod != "" {
		fmt.Fprintf(&b, "_%s_\n\n", r.ReportPeriod)
	}
	fmt.Fprintf(&b, "**Findings analyzed:** %d  \n**Competitors covered:** %d\n\n", r.TotalFindings, r.CompetitorsCovered)

	for _, section := range r.Sections() {
		body := strings.TrimSpace(section.Body)
		if body == "" {
			continue
		}
		fmt.Fprintf(&b, "## %s\n\n%s\n\n", section.Title, body)
	}

	if r.PDFURL != "" {
		fmt.Fprintf(&b, "[Download PDF](%s)\n", r.PDFURL)
	}
	return b.String()
}

// HTML converts markdown to HTML and strips anything outside the UGC policy.
// Agent output is untrusted, so raw HTML in the source never survives.
func HTML(source string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(source), &buf); err != nil {
		return "", fmt.Errorf("convert markdown: %w", err)
	}
	return string(policy.SanitizeBytes(buf.Bytes())), nil
}

// ReportHTML renders a report as a sanitized HTML fragment.
func ReportHTML(r *models.Report) (string, error) {
	return HTML(Markdown(r))
}

// Terminal renders markdown for display in a terminal. style is a glamour
// style name ("dark", "light", "notty", ...) or StyleAuto.
func Terminal(source, style string, width int) (string, error) {
	if width <= 0 {
		width = DefaultWordWrap
	}

	styleOpt := glamour.WithStandardStyle(style)
	if style == "" || style == StyleAuto {
		styleOpt = glamour.WithAutoStyle()
	}

	renderer, err := glamour.NewTermRenderer(styleOpt, glamour.WithWordWrap(width))
	if err != nil {
		return "", fmt.Errorf("create terminal renderer: %w", err)
	}
	out, err := renderer.Render(source)
	if err != nil {
		return "", fmt.Errorf("render markdown: %w", err)
	}
	return out, nil
}
