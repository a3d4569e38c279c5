// Package findings turns the discovery agent's free-text payload into typed findings.
//
// The agent's output is not guaranteed to be structured, so parsing is a
// best-effort, line-oriented scrape over a small label vocabulary
// ("Competitor:", "Title:", ...). Parse never fails: unknown lines are ignored and
// an unstructured overview collapses into a single synthetic finding.
package findings

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/ekaya-inc/intelhub/pkg/jsonutil"
	"github.com/ekaya-inc/intelhub/pkg/models"
)

// Response document keys read by the parser.
const (
	KeyDetailedOverview  = "detailed_findings_overview"
	KeyFlaggedSummary    = "flagged_items_summary"
	KeySummary           = "summary"
	KeySiteTypeSummary   = "findings_by_site_type"
	KeyEngagementSummary = "findings_by_engagement_type"
)

// Defaults applied to fields a record leaves unset.
const (
	DefaultCompetitor      = "Unknown"
	DefaultTitle           = "Untitled"
	DefaultSiteType        = "Web"
	DefaultEngagementType  = "Content"
	DefaultOwnedEarned     = "Unknown"
	DefaultConfidenceScore = 70
)

// Values of the synthetic record emitted when no structured record is found.
const (
	FallbackCompetitor      = "Multiple"
	FallbackSiteType        = "Mixed"
	FallbackEngagementType  = "Various"
	FallbackOwnedEarned     = "Mixed"
	FallbackConfidenceScore = 75
	FallbackTitleMaxRunes   = 150
)

// partial accumulates labelled fields until the next record boundary.
// Empty strings mean "not set".
type partial struct {
	competitor     string
	title          string
	url            string
	siteType       string
	engagementType string
	ownedEarned    string
	confidence     int
	hasConfidence  bool
	status         models.FindingStatus
}

func (p *partial) started() bool {
	return p.title != "" || p.competitor != ""
}

// label pairs a line matcher with the field it sets.
type label struct {
	pattern *regexp.Regexp
	apply   func(p *partial, value string)
}

// labelPattern matches "<name>:" at the start of a trimmed line, case-insensitively,
// with an optional "- " list bullet.
func labelPattern(names ...string) *regexp.Regexp {
	return regexp.MustCompile(`(?i)^(?:-\s*)?(?:` + strings.Join(names, "|") + `):\s*`)
}

// competitorLabel starts a new record; it is checked before the field labels.
var competitorLabel = labelPattern(`competitor`)

// fieldLabels are scanned in order; the first match wins.
// Adding an alias is a one-line change to the matching pattern.
var fieldLabels = []label{
	{labelPattern(`title`), func(p *partial, v string) { p.title = v }},
	{labelPattern(`url`), func(p *partial, v string) { p.url = v }},
	{labelPattern(`site\s*type`), func(p *partial, v string) { p.siteType = v }},
	{labelPattern(`engagement\s*type`, `engagement`), func(p *partial, v string) { p.engagementType = v }},
	{labelPattern(`owned/earned`, `source`), func(p *partial, v string) { p.ownedEarned = v }},
	{labelPattern(`confidence`, `score`), func(p *partial, v string) {
		if score, ok := parseScore(v); ok {
			p.confidence = score
			p.hasConfidence = true
		}
	}},
	{labelPattern(`status`), func(p *partial, v string) { p.status = ClassifyStatus(v) }},
}

// Parser converts agent discovery responses into findings.
type Parser struct {
	now   func() time.Time
	newID func() string
}

// Option configures a Parser.
type Option func(*Parser)

// WithClock sets the clock used to stamp DiscoveredAt.
func WithClock(now func() time.Time) Option {
	return func(p *Parser) { p.now = now }
}

// WithIDGenerator sets the function used to assign finding IDs.
func WithIDGenerator(newID func() string) Option {
	return func(p *Parser) { p.newID = newID }
}

// NewParser creates a parser using the wall clock and random UUIDs.
func NewParser(opts ...Option) *Parser {
	p := &Parser{
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

var defaultParser = NewParser()

// Parse converts a discovery result document into findings using the default parser.
func Parse(result jsonutil.Document) []models.Finding {
	return defaultParser.Parse(result)
}

// Parse converts a discovery result document into findings, in source order.
// It returns an empty (non-nil) slice when the document carries no usable text.
func (p *Parser) Parse(result jsonutil.Document) []models.Finding {
	parsed := make([]models.Finding, 0)

	overview := result.StringOr(KeyDetailedOverview, "")
	flagged := result.StringOr(KeyFlaggedSummary, "")

	combined := overview + "\n" + flagged
	if strings.TrimSpace(combined) == "" {
		return parsed
	}

	current := &partial{}
	for _, line := range strings.Split(combined, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}

		if loc := competitorLabel.FindStringIndex(trimmed); loc != nil {
			if current.started() {
				parsed = append(parsed, p.finalize(current))
			}
			current = &partial{competitor: strings.TrimSpace(trimmed[loc[1]:])}
			continue
		}

		for _, l := range fieldLabels {
			if loc := l.pattern.FindStringIndex(trimmed); loc != nil {
				l.apply(current, strings.TrimSpace(trimmed[loc[1]:]))
				break
			}
		}
	}

	if current.started() {
		parsed = append(parsed, p.finalize(current))
	}

	if len(parsed) == 0 && strings.TrimSpace(overview) != "" {
		parsed = append(parsed, p.fallback(overview, result.Object(KeySummary)))
	}

	return parsed
}

func (p *Parser) finalize(acc *partial) models.Finding {
	f := models.Finding{
		ID:              p.newID(),
		Competitor:      orDefault(acc.competitor, DefaultCompetitor),
		Title:           orDefault(acc.title, DefaultTitle),
		URL:             acc.url,
		SiteType:        orDefault(acc.siteType, DefaultSiteType),
		EngagementType:  orDefault(acc.engagementType, DefaultEngagementType),
		OwnedEarned:     orDefault(acc.ownedEarned, DefaultOwnedEarned),
		ConfidenceScore: DefaultConfidenceScore,
		Status:          models.FindingStatusApproved,
		DiscoveredAt:    models.CalendarDate(p.now()),
	}
	if acc.hasConfidence {
		f.ConfidenceScore = acc.confidence
	}
	if acc.status != "" {
		f.Status = acc.status
	}
	return f
}

func (p *Parser) fallback(overview string, summary jsonutil.Document) models.Finding {
	return models.Finding{
		ID:              p.newID(),
		Competitor:      FallbackCompetitor,
		Title:           FallbackTitle(overview),
		SiteType:        summary.StringOr(KeySiteTypeSummary, FallbackSiteType),
		EngagementType:  summary.StringOr(KeyEngagementSummary, FallbackEngagementType),
		OwnedEarned:     FallbackOwnedEarned,
		ConfidenceScore: FallbackConfidenceScore,
		Status:          models.FindingStatusApproved,
		DiscoveredAt:    models.CalendarDate(p.now()),
	}
}

// FallbackTitle returns the first FallbackTitleMaxRunes characters of overview
// with line breaks replaced by spaces.
func FallbackTitle(overview string) string {
	runes := []rune(overview)
	if len(runes) > FallbackTitleMaxRunes {
		runes = runes[:FallbackTitleMaxRunes]
	}
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\r' {
			return ' '
		}
		return r
	}, string(runes))
}

// ClassifyStatus maps a free-text status value onto a finding status.
// Anything mentioning "flag" is flagged, "dismiss" is dismissed, everything else approved.
func ClassifyStatus(value string) models.FindingStatus {
	s := strings.ToLower(strings.TrimSpace(value))
	switch {
	case strings.Contains(s, "flag"):
		return models.FindingStatusFlagged
	case strings.Contains(s, "dismiss"):
		return models.FindingStatusDismissed
	default:
		return models.FindingStatusApproved
	}
}

// parseScore strips the first "%" and reads a leading, optionally signed integer,
// so "85%", "85 / 100" and "0.9" yield 85, 85 and 0.
func parseScore(value string) (int, bool) {
	s := strings.TrimSpace(strings.Replace(value, "%", "", 1))

	end := 0
	if end < len(s) && (s[end] == '-' || s[end] == '+') {
		end++
	}
	digitsStart := end
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == digitsStart {
		return 0, false
	}

	n, err := strconv.Atoi(s[:end])
	if err != nil {
		return 0, false
	}
	return n, true
}

func orDefault(value, fallback string) string {
	if value == "" {
		return fallback
	}
	return value
}
