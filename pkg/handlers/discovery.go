package handlers

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/services"
	"github.com/ekaya-inc/intelhub/pkg/state"
)

// DiscoveryHistoryResponse for GET /api/discovery/history
type DiscoveryHistoryResponse struct {
	Runs  []models.DiscoveryRun `json:"runs"`
	Total int                   `json:"total"`
}

// DiscoveryHandler triggers discovery cycles and reports their progress.
type DiscoveryHandler struct {
	discovery services.DiscoveryService
	store     *state.Store
	logger    *zap.Logger
}

// NewDiscoveryHandler creates a new discovery handler.
func NewDiscoveryHandler(discovery services.DiscoveryService, store *state.Store, logger *zap.Logger) *DiscoveryHandler {
	return &DiscoveryHandler{discovery: discovery, store: store, logger: logger}
}

// RegisterRoutes registers the discovery handler's routes on the given mux.
func (h *DiscoveryHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/discovery", h.Run)
	mux.HandleFunc("GET /api/discovery/status", h.Status)
	mux.HandleFunc("GET /api/discovery/history", h.History)
}

// Run handles POST /api/discovery. It blocks until the agent answers; a client
// disconnect does not abort the agent call.
func (h *DiscoveryHandler) Run(w http.ResponseWriter, r *http.Request) {
	outcome, err := h.discovery.Run(context.WithoutCancel(r.Context()))
	if err != nil {
		writeServiceError(w, err, "discovery_failed", h.logger)
		return
	}
	writeData(w, http.StatusOK, outcome, h.logger)
}

// Status handles GET /api/discovery/status
func (h *DiscoveryHandler) Status(w http.ResponseWriter, r *http.Request) {
	writeData(w, http.StatusOK, h.discovery.Status(), h.logger)
}

// History handles GET /api/discovery/history
func (h *DiscoveryHandler) History(w http.ResponseWriter, r *http.Request) {
	runs := h.store.DiscoveryHistory()
	writeData(w, http.StatusOK, DiscoveryHistoryResponse{Runs: runs, Total: len(runs)}, h.logger)
}
