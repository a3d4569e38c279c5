package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/apperrors"
)

// ApiResponse is the envelope of every successful JSON response.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// writeData writes a success envelope around data.
func writeData(w http.ResponseWriter, statusCode int, data any, logger *zap.Logger) {
	if err := WriteJSON(w, statusCode, ApiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}

// writeError writes an error response, logging if the write itself fails.
func writeError(w http.ResponseWriter, statusCode int, errorCode, message string, logger *zap.Logger) {
	if err := ErrorResponse(w, statusCode, errorCode, message); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

// errorMapping pairs a sentinel error with its HTTP status and error code.
// A non-empty message replaces the error text, which for agent failures can
// carry the upstream response body.
type errorMapping struct {
	target  error
	status  int
	code    string
	message string
}

const (
	internalErrorMessage    = "An unexpected error occurred."
	agentFailedErrorMessage = "The agent call failed. See the workflow status for details."
)

var serviceErrors = []errorMapping{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", ""},
	{apperrors.ErrInvalidInput, http.StatusBadRequest, "invalid_input", ""},
	{apperrors.ErrInvalidTransition, http.StatusBadRequest, "invalid_transition", ""},
	{apperrors.ErrInvalidPeriod, http.StatusBadRequest, "invalid_period", ""},
	{apperrors.ErrDiscoveryInProgress, http.StatusConflict, "discovery_in_progress", ""},
	{apperrors.ErrReportInProgress, http.StatusConflict, "report_in_progress", ""},
	{apperrors.ErrNoCompetitors, http.StatusUnprocessableEntity, "no_competitors", ""},
	{apperrors.ErrNoApprovedFindings, http.StatusUnprocessableEntity, "no_approved_findings", ""},
	{apperrors.ErrAgentFailed, http.StatusBadGateway, "agent_failed", agentFailedErrorMessage},
}

// writeServiceError maps a domain error onto a status code. Unrecognized errors
// become 500 with fallbackCode and a generic message; the cause is only logged.
func writeServiceError(w http.ResponseWriter, err error, fallbackCode string, logger *zap.Logger) {
	for _, m := range serviceErrors {
		if errors.Is(err, m.target) {
			message := m.message
			if message == "" {
				message = err.Error()
			}
			writeError(w, m.status, m.code, message, logger)
			return
		}
	}
	logger.Error("Request failed", zap.String("code", fallbackCode), zap.Error(err))
	writeError(w, http.StatusInternalServerError, fallbackCode, internalErrorMessage, logger)
}

// decodeBody decodes a JSON request body into v, writing a 400 on failure.
func decodeBody(w http.ResponseWriter, r *http.Request, v any, logger *zap.Logger) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "Invalid request body", logger)
		return false
	}
	return true
}
