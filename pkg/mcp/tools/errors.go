package tools

import (
	"encoding/json"
	"errors"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/ekaya-inc/intelhub/pkg/apperrors"
)

// ErrorResponse represents a structured error in tool results.
// Errors the caller can act on are returned as a successful tool result
// so the details stay visible to the client.
type ErrorResponse struct {
	Error   bool   `json:"error"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// NewErrorResult creates a tool result containing a structured error.
// Use this for recoverable errors (invalid parameters, unknown IDs, busy workflows).
// System failures should still return Go errors.
func NewErrorResult(code, message string) *mcp.CallToolResult {
	return NewErrorResultWithDetails(code, message, nil)
}

// NewErrorResultWithDetails creates an error result with additional context.
func NewErrorResultWithDetails(code, message string, details any) *mcp.CallToolResult {
	resp := ErrorResponse{
		Error:   true,
		Code:    code,
		Message: message,
		Details: details,
	}
	jsonBytes, _ := json.Marshal(resp)
	result := mcp.NewToolResultText(string(jsonBytes))
	result.IsError = true
	return result
}

// agentFailedMessage replaces the error text of agent failures, which can carry
// the upstream response body. The detail stays in the logs and workflow status.
const agentFailedMessage = "The agent call failed. See the workflow status for details."

var errorCodes = []struct {
	target error
	code   string
}{
	{apperrors.ErrNotFound, "not_found"},
	{apperrors.ErrInvalidInput, "invalid_parameters"},
	{apperrors.ErrInvalidTransition, "invalid_transition"},
	{apperrors.ErrInvalidPeriod, "invalid_period"},
	{apperrors.ErrNoCompetitors, "no_competitors"},
	{apperrors.ErrNoApprovedFindings, "no_approved_findings"},
	{apperrors.ErrDiscoveryInProgress, "discovery_in_progress"},
	{apperrors.ErrReportInProgress, "report_in_progress"},
	{apperrors.ErrAgentFailed, "agent_failed"},
}

// ErrorCode returns the tool error code for a domain error, or "" if err is not one.
func ErrorCode(err error) string {
	for _, e := range errorCodes {
		if errors.Is(err, e.target) {
			return e.code
		}
	}
	return ""
}

// NewDomainErrorResult converts a domain error into a structured error result.
// Returns nil if err is not a domain error; the caller returns a Go error instead.
func NewDomainErrorResult(err error) *mcp.CallToolResult {
	code := ErrorCode(err)
	if code == "" {
		return nil
	}
	if code == "agent_failed" {
		return NewErrorResult(code, agentFailedMessage)
	}
	return NewErrorResult(code, err.Error())
}

// IsInputError returns true if the error was caused by caller input rather than
// a server failure. Input errors are logged at DEBUG, not ERROR.
func IsInputError(err error) bool {
	code := ErrorCode(err)
	return code != "" && code != "agent_failed"
}
