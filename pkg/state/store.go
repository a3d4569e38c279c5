// Package state holds the hub's domain collections in memory and mirrors every
// change to the persistent key-value store.
//
// The Store is the single owner of competitors, findings, reports, discovery
// history and the latest export URL. Mutations are synchronous and replace the
// affected collection wholesale; the new value is then written through to the
// kvstore on a background goroutine. Write-through is best-effort: failures are
// logged and never surface to callers.
package state

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/apperrors"
	"github.com/ekaya-inc/intelhub/pkg/kvstore"
	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/sampledata"
)

// Store is the in-memory domain aggregate.
// Slices held by the Store are never modified in place, so snapshots handed to
// the writer stay valid after later mutations.
type Store struct {
	mu          sync.RWMutex
	competitors []models.Competitor
	findings    []models.Finding
	reports     []models.Report
	history     []models.DiscoveryRun
	exportURL   string
	sampleMode  bool

	kv     kvstore.Store
	writer *writer
	logger *zap.Logger

	now          func() time.Time
	newID        func() string
	writeTimeout time.Duration
}

// Option configures a Store.
type Option func(*Store)

// WithClock sets the clock used for DateAdded.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// WithIDGenerator sets the function used to assign competitor IDs.
func WithIDGenerator(newID func() string) Option {
	return func(s *Store) { s.newID = newID }
}

// WithWriteTimeout bounds each write-through call.
func WithWriteTimeout(d time.Duration) Option {
	return func(s *Store) {
		if d > 0 {
			s.writeTimeout = d
		}
	}
}

// New creates an empty Store backed by kv and starts its writer.
// Call Load to populate it and Close to drain pending writes.
func New(kv kvstore.Store, logger *zap.Logger, opts ...Option) *Store {
	s := &Store{
		competitors:  []models.Competitor{},
		findings:     []models.Finding{},
		reports:      []models.Report{},
		history:      []models.DiscoveryRun{},
		kv:           kv,
		logger:       logger.Named("state"),
		now:          time.Now,
		newID:        uuid.NewString,
		writeTimeout: DefaultWriteTimeout,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.writer = newWriter(kv, s.logger, s.writeTimeout)
	return s
}

// Load replaces every collection with its persisted value and leaves sample mode.
// Missing or malformed entries load as empty. Any other read failure is
// returned and leaves the Store unchanged, so a transient backend error never
// replaces durable data with empty collections.
func (s *Store) Load(ctx context.Context) error {
	competitors, err := load[[]models.Competitor](ctx, s, kvstore.KeyCompetitors)
	if err != nil {
		return err
	}
	findings, err := load[[]models.Finding](ctx, s, kvstore.KeyFindings)
	if err != nil {
		return err
	}
	reports, err := load[[]models.Report](ctx, s, kvstore.KeyReports)
	if err != nil {
		return err
	}
	history, err := load[[]models.DiscoveryRun](ctx, s, kvstore.KeyDiscoveryHistory)
	if err != nil {
		return err
	}
	exportURL, err := load[string](ctx, s, kvstore.KeyLatestExportURL)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.competitors = orEmpty(competitors)
	s.findings = orEmpty(findings)
	s.reports = orEmpty(reports)
	s.history = orEmpty(history)
	s.exportURL = exportURL
	s.sampleMode = false

	s.logger.Info("Loaded state",
		zap.Int("competitors", len(competitors)),
		zap.Int("findings", len(findings)),
		zap.Int("reports", len(reports)),
		zap.Int("discovery_runs", len(history)))
	return nil
}

func load[T any](ctx context.Context, s *Store, key string) (T, error) {
	v, err := kvstore.Decode[T](ctx, s.kv, key)
	switch {
	case err == nil, errors.Is(err, kvstore.ErrNotFound):
		return v, nil
	case errors.Is(err, kvstore.ErrMalformed):
		s.logger.Warn("Ignoring unreadable stored value", zap.String("key", key), zap.Error(err))
		var zero T
		return zero, nil
	default:
		var zero T
		return zero, fmt.Errorf("load %s: %w", key, err)
	}
}

func orEmpty[T any](v []T) []T {
	if v == nil {
		return []T{}
	}
	return v
}

// Flush blocks until all write-through scheduled so far has been attempted.
func (s *Store) Flush() {
	s.writer.flush()
}

// Close drains pending write-through and stops the writer. The kvstore is not closed.
func (s *Store) Close() {
	s.writer.close()
}

// persist schedules a write of value under key. Callers hold s.mu.
func (s *Store) persist(key string, value any) {
	if s.sampleMode {
		return
	}
	s.writer.schedule(key, value)
}

// ============================================================================
// Competitors
// ============================================================================

// Competitors returns the tracked competitors in insertion order.
func (s *Store) Competitors() []models.Competitor {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.competitors)
}

// CompetitorNames returns the names of the tracked competitors in insertion order.
func (s *Store) CompetitorNames() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()

	names := make([]string, len(s.competitors))
	for i, c := range s.competitors {
		names[i] = c.Name
	}
	return names
}

// AddCompetitor appends a competitor dated today.
func (s *Store) AddCompetitor(name string) (models.Competitor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Competitor{}, fmt.Errorf("competitor name is required: %w", apperrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	c := models.Competitor{
		ID:        s.newID(),
		Name:      name,
		DateAdded: models.CalendarDate(s.now()),
	}
	next := make([]models.Competitor, 0, len(s.competitors)+1)
	next = append(next, s.competitors...)
	next = append(next, c)

	s.competitors = next
	s.persist(kvstore.KeyCompetitors, next)
	return c, nil
}

// RenameCompetitor changes a competitor's name. Findings keep the old name.
func (s *Store) RenameCompetitor(id, name string) (models.Competitor, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.Competitor{}, fmt.Errorf("competitor name is required: %w", apperrors.ErrInvalidInput)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.competitors, func(c models.Competitor) bool { return c.ID == id })
	if idx < 0 {
		return models.Competitor{}, fmt.Errorf("competitor %s: %w", id, apperrors.ErrNotFound)
	}

	next := slices.Clone(s.competitors)
	next[idx].Name = name

	s.competitors = next
	s.persist(kvstore.KeyCompetitors, next)
	return next[idx], nil
}

// DeleteCompetitor removes a competitor. Its findings are kept.
func (s *Store) DeleteCompetitor(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.competitors, func(c models.Competitor) bool { return c.ID == id })
	if idx < 0 {
		return fmt.Errorf("competitor %s: %w", id, apperrors.ErrNotFound)
	}

	next := make([]models.Competitor, 0, len(s.competitors)-1)
	next = append(next, s.competitors[:idx]...)
	next = append(next, s.competitors[idx+1:]...)

	s.competitors = next
	s.persist(kvstore.KeyCompetitors, next)
	return nil
}

// ============================================================================
// Findings
// ============================================================================

// Findings returns the findings matching filter, most recent first.
func (s *Store) Findings(filter models.FindingFilter) []models.Finding {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if filter.IsEmpty() {
		return slices.Clone(s.findings)
	}
	out := make([]models.Finding, 0)
	for _, f := range s.findings {
		if filter.Matches(f) {
			out = append(out, f)
		}
	}
	return out
}

// Finding returns one finding by ID.
func (s *Store) Finding(id string) (models.Finding, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := slices.IndexFunc(s.findings, func(f models.Finding) bool { return f.ID == id })
	if idx < 0 {
		return models.Finding{}, fmt.Errorf("finding %s: %w", id, apperrors.ErrNotFound)
	}
	return s.findings[idx], nil
}

// ApprovedFindings returns the approved findings, most recent first.
func (s *Store) ApprovedFindings() []models.Finding {
	return s.Findings(models.FindingFilter{Status: models.FindingStatusApproved})
}

// PrependFindings places batch, in order, ahead of the existing findings.
// An empty batch changes nothing.
func (s *Store) PrependFindings(batch []models.Finding) {
	if len(batch) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Finding, 0, len(batch)+len(s.findings))
	next = append(next, batch...)
	next = append(next, s.findings...)

	s.findings = next
	s.persist(kvstore.KeyFindings, next)
}

// UpdateFindingStatus resolves a flagged finding to approved or dismissed.
func (s *Store) UpdateFindingStatus(id string, status models.FindingStatus) (models.Finding, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := slices.IndexFunc(s.findings, func(f models.Finding) bool { return f.ID == id })
	if idx < 0 {
		return models.Finding{}, fmt.Errorf("finding %s: %w", id, apperrors.ErrNotFound)
	}

	current := s.findings[idx].Status
	if !models.CanTransition(current, status) {
		return models.Finding{}, fmt.Errorf("finding %s from %q to %q: %w", id, current, status, apperrors.ErrInvalidTransition)
	}

	next := slices.Clone(s.findings)
	next[idx].Status = status

	s.findings = next
	s.persist(kvstore.KeyFindings, next)
	return next[idx], nil
}

// FindingFacets returns the distinct non-empty competitors and site types present
// in the findings, in first-seen order.
func (s *Store) FindingFacets() models.FindingFacets {
	s.mu.RLock()
	defer s.mu.RUnlock()

	facets := models.FindingFacets{Competitors: []string{}, SiteTypes: []string{}}
	seenCompetitor := make(map[string]bool)
	seenSiteType := make(map[string]bool)
	for _, f := range s.findings {
		if f.Competitor != "" && !seenCompetitor[f.Competitor] {
			seenCompetitor[f.Competitor] = true
			facets.Competitors = append(facets.Competitors, f.Competitor)
		}
		if f.SiteType != "" && !seenSiteType[f.SiteType] {
			seenSiteType[f.SiteType] = true
			facets.SiteTypes = append(facets.SiteTypes, f.SiteType)
		}
	}
	return facets
}

// ============================================================================
// Reports and discovery history
// ============================================================================

// Reports returns the generated reports, most recent first.
func (s *Store) Reports() []models.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.reports)
}

// Report returns one report by ID.
func (s *Store) Report(id string) (models.Report, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	idx := slices.IndexFunc(s.reports, func(r models.Report) bool { return r.ID == id })
	if idx < 0 {
		return models.Report{}, fmt.Errorf("report %s: %w", id, apperrors.ErrNotFound)
	}
	return s.reports[idx], nil
}

// PrependReport places r ahead of the existing reports.
func (s *Store) PrependReport(r models.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.Report, 0, len(s.reports)+1)
	next = append(next, r)
	next = append(next, s.reports...)

	s.reports = next
	s.persist(kvstore.KeyReports, next)
}

// DiscoveryHistory returns past discovery runs, most recent first.
func (s *Store) DiscoveryHistory() []models.DiscoveryRun {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.history)
}

// PrependDiscoveryRun places run ahead of the existing history.
func (s *Store) PrependDiscoveryRun(run models.DiscoveryRun) {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := make([]models.DiscoveryRun, 0, len(s.history)+1)
	next = append(next, run)
	next = append(next, s.history...)

	s.history = next
	s.persist(kvstore.KeyDiscoveryHistory, next)
}

// LatestExportURL returns the spreadsheet URL of the most recent discovery export.
func (s *Store) LatestExportURL() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.exportURL
}

// SetLatestExportURL records the most recent discovery export.
func (s *Store) SetLatestExportURL(url string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.exportURL = url
	s.persist(kvstore.KeyLatestExportURL, url)
}

// ============================================================================
// Dashboard and sample mode
// ============================================================================

// Dashboard summarizes the current collections.
func (s *Store) Dashboard() models.Dashboard {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := models.Dashboard{
		CompetitorsTracked: len(s.competitors),
		TotalFindings:      len(s.findings),
		ReportsGenerated:   len(s.reports),
		LatestExportURL:    s.exportURL,
		SampleMode:         s.sampleMode,
	}
	if n := len(s.competitors); n > 0 {
		d.LatestCompetitor = s.competitors[n-1].Name
	}
	for _, f := range s.findings {
		if f.Status == models.FindingStatusFlagged {
			d.FlaggedCount++
		}
	}
	if len(s.history) > 0 {
		last := s.history[0]
		d.LastRun = &last
	}
	return d
}

// SampleMode reports whether the demo dataset is being shown.
func (s *Store) SampleMode() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.sampleMode
}

// SetSampleMode switches between the demo dataset and persisted state.
// While on, mutations apply in memory only. Switching off discards them and
// reloads from the store; if the reload fails the Store stays in sample mode.
// The latest export URL is kept when switching on.
func (s *Store) SetSampleMode(ctx context.Context, on bool) error {
	if on == s.SampleMode() {
		return nil
	}

	if !on {
		s.writer.flush()
		if err := s.Load(ctx); err != nil {
			s.logger.Error("Failed to leave sample mode", zap.Error(err))
			return fmt.Errorf("reload persisted state: %w", err)
		}
		s.logger.Info("Sample mode disabled")
		return nil
	}

	ds, err := sampledata.Load()
	if err != nil {
		return fmt.Errorf("load sample data: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.competitors = ds.Competitors
	s.findings = ds.Findings
	s.reports = ds.Reports
	s.history = ds.DiscoveryHistory
	s.sampleMode = true

	s.logger.Info("Sample mode enabled")
	return nil
}
