package services

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/agent"
	"github.com/ekaya-inc/intelhub/pkg/apperrors"
	"github.com/ekaya-inc/intelhub/pkg/jsonutil"
	"github.com/ekaya-inc/intelhub/pkg/logging"
	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/prompts"
	"github.com/ekaya-inc/intelhub/pkg/state"
)

// Status messages shown while a report is generated.
const (
	ReportGeneratingMessage = "Generating monthly report..."
	reportFailedFallback    = "Report generation failed. Please try again."
)

// Keys read from the report agent's result document.
const (
	reportKeyTitle               = "report_title"
	reportKeyPeriod              = "report_period"
	reportKeyExecutiveSummary    = "executive_summary"
	reportKeyTrendAnalysis       = "trend_analysis"
	reportKeyCompetitorOverviews = "competitor_overviews"
	reportKeyComparativeMatrix   = "comparative_matrix"
	reportKeyRecommendations     = "recommendations"
	reportKeyTotalFindings       = "total_findings_analyzed"
	reportKeyCompetitorsCovered  = "competitors_covered"
)

// ReportStatus reports whether a report is being generated and the last status message.
type ReportStatus struct {
	Running bool   `json:"running"`
	Message string `json:"message"`
}

// ReportService generates monthly reports from approved findings.
type ReportService interface {
	// Generate asks the report agent for a report covering month/year and stores it.
	Generate(ctx context.Context, month, year int) (*models.Report, error)

	// Status returns the busy flag and the last status message.
	Status() ReportStatus
}

type reportService struct {
	store   *state.Store
	gateway agent.Gateway
	agentID string
	logger  *zap.Logger

	now   func() time.Time
	newID func() string

	busy    atomic.Bool
	mu      sync.RWMutex
	message string
}

var _ ReportService = (*reportService)(nil)

// NewReportService creates a report service that invokes agentID through gateway.
func NewReportService(store *state.Store, gateway agent.Gateway, agentID string, logger *zap.Logger) ReportService {
	return &reportService{
		store:   store,
		gateway: gateway,
		agentID: agentID,
		logger:  logger.Named("report"),
		now:     time.Now,
		newID:   uuid.NewString,
	}
}

func (s *reportService) Generate(ctx context.Context, month, year int) (*models.Report, error) {
	if month < 1 || month > 12 {
		return nil, fmt.Errorf("month %d: %w", month, apperrors.ErrInvalidPeriod)
	}

	approved := s.store.ApprovedFindings()
	if len(approved) == 0 {
		return nil, apperrors.ErrNoApprovedFindings
	}

	if !s.busy.CompareAndSwap(false, true) {
		return nil, apperrors.ErrReportInProgress
	}
	defer s.busy.Store(false)

	monthName := models.MonthName(month)
	s.setMessage(ReportGeneratingMessage)
	s.logger.Info("Generating report",
		zap.String("period", fmt.Sprintf("%s %d", monthName, year)),
		zap.Int("approved_findings", len(approved)))

	result, err := s.gateway.Invoke(ctx, prompts.BuildReportPrompt(month, year, approved), s.agentID)
	if err != nil {
		return nil, s.fail(err.Error(), err)
	}
	if result == nil || !result.Success {
		reason := ""
		if result != nil {
			reason = result.Error
		}
		if reason == "" {
			reason = reportFailedFallback
		}
		return nil, s.fail(reason, nil)
	}

	doc := jsonutil.Document(result.ResultDocument())
	period := fmt.Sprintf("%s %d", monthName, year)

	report := models.Report{
		ID:                  s.newID(),
		Month:               month,
		Year:                year,
		ReportTitle:         doc.StringOr(reportKeyTitle, period+" Intelligence Report"),
		ReportPeriod:        doc.StringOr(reportKeyPeriod, period),
		ExecutiveSummary:    doc.StringOr(reportKeyExecutiveSummary, ""),
		TrendAnalysis:       doc.StringOr(reportKeyTrendAnalysis, ""),
		CompetitorOverviews: doc.StringOr(reportKeyCompetitorOverviews, ""),
		ComparativeMatrix:   doc.StringOr(reportKeyComparativeMatrix, ""),
		Recommendations:     doc.StringOr(reportKeyRecommendations, ""),
		TotalFindings:       doc.IntOr(reportKeyTotalFindings, len(approved)),
		CompetitorsCovered:  doc.IntOr(reportKeyCompetitorsCovered, len(prompts.DistinctCompetitors(approved))),
		PDFURL:              result.FirstArtifactURL(),
		GeneratedAt:         s.now().UTC(),
	}
	s.store.PrependReport(report)

	s.setMessage(fmt.Sprintf("Report generated successfully for %s!", period))
	s.logger.Info("Report generated",
		zap.String("report_id", report.ID),
		zap.Bool("has_pdf", report.PDFURL != ""))

	return &report, nil
}

func (s *reportService) Status() ReportStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return ReportStatus{Running: s.busy.Load(), Message: s.message}
}

func (s *reportService) setMessage(message string) {
	s.mu.Lock()
	s.message = message
	s.mu.Unlock()
}

func (s *reportService) fail(reason string, cause error) error {
	if reason == "" {
		reason = unexpectedErrorFallback
	}
	s.setMessage("Error: " + reason)

	if cause != nil {
		s.logger.Error("Report agent call failed",
			zap.String("error_type", string(agent.GetErrorType(cause))),
			zap.String("error", logging.SanitizeError(cause)))
		return fmt.Errorf("%w: %w", apperrors.ErrAgentFailed, cause)
	}
	s.logger.Warn("Report agent reported failure", zap.String("reason", logging.SanitizePayload(reason)))
	return fmt.Errorf("%w: %s", apperrors.ErrAgentFailed, reason)
}
