package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/state"
)

// SampleModeRequest for PUT /api/sample-mode
type SampleModeRequest struct {
	Enabled bool `json:"enabled"`
}

// ExportResponse for GET /api/exports/latest
type ExportResponse struct {
	URL string `json:"url"`
}

// DashboardHandler serves the landing summary, the latest export and the
// sample data toggle.
type DashboardHandler struct {
	store  *state.Store
	logger *zap.Logger
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(store *state.Store, logger *zap.Logger) *DashboardHandler {
	return &DashboardHandler{store: store, logger: logger}
}

// RegisterRoutes registers the dashboard handler's routes on the given mux.
func (h *DashboardHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/dashboard", h.Dashboard)
	mux.HandleFunc("GET /api/exports/latest", h.LatestExport)
	mux.HandleFunc("PUT /api/sample-mode", h.SetSampleMode)
}

// Dashboard handles GET /api/dashboard
func (h *DashboardHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.store.Dashboard(), h.logger)
}

// LatestExport handles GET /api/exports/latest
func (h *DashboardHandler) LatestExport(w http.ResponseWriter, r *http.Request) {
	url := h.store.LatestExportURL()
	if url == "" {
		writeError(w, http.StatusNotFound, "no_export", "No discovery export is available yet", h.logger)
		return
	}
	writeData(w, http.StatusOK, ExportResponse{URL: url}, h.logger)
}

// SetSampleMode handles PUT /api/sample-mode
func (h *DashboardHandler) SetSampleMode(w http.ResponseWriter, r *http.Request) {
	var req SampleModeRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	// Reloading must not be cut short by a dropped client.
	if err := h.store.SetSampleMode(context.WithoutCancel(r.Context()), req.Enabled); err != nil {
		writeServiceError(w, err, "sample_mode_failed", h.logger)
		return
	}
	writeData(w, http.StatusOK, h.store.Dashboard(), h.logger)
}
