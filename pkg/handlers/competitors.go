package handlers

import (
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/state"
)

// CompetitorRequest for POST /api/competitors and PUT /api/competitors/{id}
type CompetitorRequest struct {
	Name string `json:"name"`
}

// CompetitorListResponse for GET /api/competitors
type CompetitorListResponse struct {
	Competitors []models.Competitor `json:"competitors"`
	Total       int                 `json:"total"`
}

// CompetitorHandler handles competitor list maintenance.
type CompetitorHandler struct {
	store  *state.Store
	logger *zap.Logger
}

// NewCompetitorHandler creates a new competitor handler.
func NewCompetitorHandler(store *state.Store, logger *zap.Logger) *CompetitorHandler {
	return &CompetitorHandler{store: store, logger: logger}
}

// RegisterRoutes registers the competitor handler's routes on the given mux.
func (h *CompetitorHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/competitors", h.List)
	mux.HandleFunc("POST /api/competitors", h.Create)
	mux.HandleFunc("PUT /api/competitors/{id}", h.Rename)
	mux.HandleFunc("DELETE /api/competitors/{id}", h.Delete)
}

// List handles GET /api/competitors
func (h *CompetitorHandler) List(w http.ResponseWriter, r *http.Request) {
	competitors := h.store.Competitors()
	writeData(w, http.StatusOK, CompetitorListResponse{
		Competitors: competitors,
		Total:       len(competitors),
	}, h.logger)
}

// Create handles POST /api/competitors
func (h *CompetitorHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req CompetitorRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	c, err := h.store.AddCompetitor(req.Name)
	if err != nil {
		writeServiceError(w, err, "create_competitor_failed", h.logger)
		return
	}

	h.logger.Info("Competitor added", zap.String("competitor_id", c.ID), zap.String("name", c.Name))
	writeData(w, http.StatusCreated, c, h.logger)
}

// Rename handles PUT /api/competitors/{id}
func (h *CompetitorHandler) Rename(w http.ResponseWriter, r *http.Request) {
	var req CompetitorRequest
	if !decodeBody(w, r, &req, h.logger) {
		return
	}

	c, err := h.store.RenameCompetitor(r.PathValue("id"), req.Name)
	if err != nil {
		writeServiceError(w, err, "rename_competitor_failed", h.logger)
		return
	}
	writeData(w, http.StatusOK, c, h.logger)
}

// Delete handles DELETE /api/competitors/{id}
func (h *CompetitorHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := h.store.DeleteCompetitor(id); err != nil {
		writeServiceError(w, err, "delete_competitor_failed", h.logger)
		return
	}

	h.logger.Info("Competitor removed", zap.String("competitor_id", id))
	w.WriteHeader(http.StatusNoContent)
}
