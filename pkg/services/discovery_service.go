package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/agent"
	"github.com/ekaya-inc/intelhub/pkg/apperrors"
	"github.com/ekaya-inc/intelhub/pkg/findings"
	"github.com/ekaya-inc/intelhub/pkg/jsonutil"
	"github.com/ekaya-inc/intelhub/pkg/logging"
	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/prompts"
	"github.com/ekaya-inc/intelhub/pkg/state"
)

// Status messages shown while and after a discovery runs.
const (
	DiscoveryStartingMessage = "Starting competitor discovery..."
	discoveryFailedFallback  = "Discovery failed. Please try again."
	unexpectedErrorFallback  = "An unexpected error occurred."
)

// Summary keys read from the discovery agent's result document.
const (
	summaryTotalFindings    = "total_findings"
	summaryTotalCompetitors = "total_competitors"
	summaryFlaggedCount     = "flagged_count"
)

// DiscoveryOutcome describes a completed discovery cycle.
type DiscoveryOutcome struct {
	Run              models.DiscoveryRun `json:"run"`
	Findings         []models.Finding    `json:"findings"`
	TotalCompetitors int                 `json:"total_competitors"`
	Message          string              `json:"message"`
}

// DiscoveryStatus reports whether a discovery is running and the last status message.
type DiscoveryStatus struct {
	Running bool   `json:"running"`
	Message string `json:"message"`
}

// DiscoveryService runs discovery cycles against the discovery agent.
type DiscoveryService interface {
	// Run performs one discovery cycle over all tracked competitors.
	Run(ctx context.Context) (*DiscoveryOutcome, error)

	// Status returns the busy flag and the last status message.
	Status() DiscoveryStatus
}

type discoveryService struct {
	store   *state.Store
	gateway agent.Gateway
	agentID string
	parser  *findings.Parser
	logger  *zap.Logger

	now   func() time.Time
	newID func() string

	busy    atomic.Bool
	mu      sync.RWMutex
	message string
}

var _ DiscoveryService = (*discoveryService)(nil)

// NewDiscoveryService creates a discovery service that invokes agentID through gateway.
func NewDiscoveryService(store *state.Store, gateway agent.Gateway, agentID string, parser *findings.Parser, logger *zap.Logger) DiscoveryService {
	if parser == nil {
		parser = findings.NewParser()
	}
	return &discoveryService{
		store:   store,
		gateway: gateway,
		agentID: agentID,
		parser:  parser,
		logger:  logger.Named("discovery"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *discoveryService) Run(ctx context.Context) (*DiscoveryOutcome, error) {
	names := s.store.CompetitorNames()
	if len(names) == 0 {
		return nil, apperrors.ErrNoCompetitors
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, apperrors.ErrDiscoveryInProgress
	}
	defer s.busy.Store(false)

	s.setMessage(DiscoveryStartingMessage)
	s.logger.Info("Starting discovery", zap.Int("competitors", len(names)))

	result, err := s.gateway.Invoke(ctx, prompts.BuildDiscoveryPrompt(names), s.agentID)
	if err != nil {
		return nil, s.fail(err.Error(), err)
	}
	if result == nil || !result.Success {
		reason := ""
		if result != nil {
			reason = result.Error
		}
		if reason == "" {
			reason = discoveryFailedFallback
		}
		return nil, s.fail(reason, nil)
	}

	doc := jsonutil.Document(result.ResultDocument())
	summary := doc.Object(findings.KeySummary)
	totalFindings := summary.IntOr(summaryTotalFindings, 0)
	totalCompetitors := summary.IntOr(summaryTotalCompetitors, 0)
	flaggedCount := summary.IntOr(summaryFlaggedCount, 0)

	message := discoveryCompleteMessage(totalFindings, totalCompetitors)
	s.setMessage(message)

	parsed := s.parser.Parse(doc)
	s.store.PrependFindings(parsed)

	exportURL := result.FirstArtifactURL()
	if exportURL != "" {
		s.store.SetLatestExportURL(exportURL)
	}

	run := models.DiscoveryRun{
		ID:            s.newID(),
		Date:          s.now().UTC(),
		TotalFindings: totalFindings,
		FlaggedCount:  flaggedCount,
		XLSXURL:       exportURL,
	}
	if run.TotalFindings == 0 {
		run.TotalFindings = len(parsed)
	}
	s.store.PrependDiscoveryRun(run)

	s.logger.Info("Discovery complete",
		zap.Int("parsed_findings", len(parsed)),
		zap.Int("reported_findings", totalFindings),
		zap.Int("flagged", flaggedCount),
		zap.Bool("has_export", exportURL != ""))

	return &DiscoveryOutcome{
		Run:              run,
		Findings:         parsed,
		TotalCompetitors: totalCompetitors,
		Message:          message,
	}, nil
}

func (s *discoveryService) Status() DiscoveryStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return DiscoveryStatus{Running: s.busy.Load(), Message: s.message}
}

func (s *discoveryService) setMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

// fail records an "Error: <reason>" status and returns the matching error.
func (s *discoveryService) fail(reason string, cause error) error {
	if reason == "" {
		reason = unexpectedErrorFallback
	}
	s.setMessage("Error: " + reason)

	if cause != nil {
		s.logger.Error("Discovery agent call failed",
			zap.String("error_type", string(agent.GetErrorType(cause))),
			zap.String("error", logging.SanitizeError(cause)))
		return fmt.Errorf("%w: %w", apperrors.ErrAgentFailed, cause)
	}
	s.logger.Warn("Discovery agent reported failure", zap.String("reason", logging.SanitizePayload(reason)))
	return fmt.Errorf("%w: %s", apperrors.ErrAgentFailed, reason)
}

// discoveryCompleteMessage reports the agent's own totals, which may differ from
// the number of parsed findings.
func discoveryCompleteMessage(totalFindings, totalCompetitors int) string {
	return fmt.Sprintf("Discovery complete! Found %d %s across %d %s.",
		totalFindings, pluralize("finding", totalFindings),
		totalCompetitors, pluralize("competitor", totalCompetitors))
}

func pluralize(noun string, n int) string {
	if n == 1 {
		return noun
	}
	return inflection.Plural(noun)
}
