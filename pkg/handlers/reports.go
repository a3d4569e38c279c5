package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/render"
	"github.com/ekaya-inc/intelhub/pkg/services"
	"github.com/ekaya-inc/intelhub/pkg/state"
)

// GenerateReportRequest for POST /api/reports
type GenerateReportRequest struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// ReportListResponse for GET /api/reports
type ReportListResponse struct {
	Reports []models.Report `json:"reports"`
	Total   int             `json:"total"`
}

// ReportHandler generates and serves monthly reports.
type ReportHandler struct {
	reports services.ReportService
	store   *state.Store
	logger  *zap.Logger
}

// NewReportHandler creates a new report handler.
func NewReportHandler(reports services.ReportService, store *state.Store, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{reports: reports, store: store, logger: logger}
}

// RegisterRoutes registers the report handler's routes on the given mux.
func (h *ReportHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/reports", h.List)
	mux.HandleFunc("POST /api/reports", h.Generate)
	mux.HandleFunc("GET /api/reports/status", h.Status)
	mux.HandleFunc("GET /api/reports/{id}", h.Get)
	mux.HandleFunc("GET /api/reports/{id}/html", h.HTML)
}

// List handles GET /api/reports
func (h *ReportHandler) List(w http.ResponseWriter, r *http.Request) {
	reports := h.store.Reports()
	writeData(w, http.StatusOK, ReportListResponse{Reports: reports, Total: len(reports)}, h.logger)
}

// Generate handles POST /api/reports. Like discovery, it blocks until the agent
// answers and survives a client disconnect.
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req GenerateReportRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	report, err := h.reports.Generate(context.WithoutCancel(r.Context()), req.Month, req.Year)
	if err != nil {
		writeServiceError(w, err, "generate_report_failed", h.logger)
		return
	}
	writeData(w, http.StatusCreated, report, h.logger)
}

// Status handles GET /api/reports/status
func (h *ReportHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.reports.Status(), h.logger)
}

// Get handles GET /api/reports/{id}
func (h *ReportHandler) Get(w http.ResponseWriter, r *http.Request) {
	report, err := h.store.Report(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "get_report_failed", h.logger)
		return
	}
	writeData(w, http.StatusOK, report, h.logger)
}

// HTML handles GET /api/reports/{id}/html, returning a sanitized HTML fragment.
func (h *ReportHandler) HTML(w http.ResponseWriter, r *http.Request) {
	report, err := h.store.Report(r.PathValue("id"))
	if err != nil {
		writeServiceError(w, err, "get_report_failed", h.logger)
		return
	}

	out, err := render.ReportHTML(&report)
	if err != nil {
		writeServiceError(w, err, "render_report_failed", h.logger)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(out))
}
