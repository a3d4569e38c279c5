package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/state"
)

// FindingListResponse for GET /api/findings
type FindingListResponse struct {
	Findings []models.Finding `json:"findings"`
	Total    int              `json:"total"`
}

// FindingStatusRequest for PUT /api/findings/{id}/status
type FindingStatusRequest struct {
	Status models.FindingStatus `json:"status"`
}

// FindingHandler handles finding review.
type FindingHandler struct {
	store  *state.Store
	logger *zap.Logger
}

// NewFindingHandler creates a new finding handler.
func NewFindingHandler(store *state.Store, logger *zap.Logger) *FindingHandler {
	return &FindingHandler{store: store, logger: logger}
}

// RegisterRoutes registers the finding handler's routes on the given mux.
func (h *FindingHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/findings", h.List)
	mux.HandleFunc("GET /api/findings/facets", h.Facets)
	mux.HandleFunc("PUT /api/findings/{id}/status", h.UpdateStatus)
}

// List handles GET /api/findings?competitor=&site_type=&status=
func (h *FindingHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := models.FindingFilter{
		Competitor: q.Get("competitor"),
		SiteType:   q.Get("site_type"),
		Status:     models.FindingStatus(q.Get("status")),
	}
	if filter.Status != "" && !models.IsValidFindingStatus(filter.Status) {
		writeError(w, http.StatusBadRequest, "invalid_status", "status must be approved, flagged or dismissed", h.logger)
		return
	}

	found := h.store.Findings(filter)
	writeData(w, http.StatusOK, FindingListResponse{Findings: found, Total: len(found)}, h.logger)
}

// Facets handles GET /api/findings/facets
func (h *FindingHandler) Facets(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.store.FindingFacets(), h.logger)
}

// UpdateStatus handles PUT /api/findings/{id}/status
func (h *FindingHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req FindingStatusRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	f, err := h.store.UpdateFindingStatus(r.PathValue("id"), req.Status)
	if err != nil {
		writeServiceError(w, err, "update_finding_failed", h.logger)
		return
	}

	h.logger.Info("Finding reviewed", zap.String("finding_id", f.ID), zap.String("status", string(f.Status)))
	writeData(w, http.StatusOK, f, h.logger)
}
