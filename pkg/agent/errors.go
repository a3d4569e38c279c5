package agent

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// ErrorType classifies gateway failures.
type ErrorType string

const (
	ErrorTypeEndpoint    ErrorType = "endpoint"
	ErrorTypeAuth        ErrorType = "auth"
	ErrorTypeAgent       ErrorType = "agent"
	ErrorTypeRateLimited ErrorType = "rate_limited"
	ErrorTypeServer      ErrorType = "server"
	ErrorTypeResponse    ErrorType = "response"
	ErrorTypeCircuitOpen ErrorType = "circuit_open"
	ErrorTypeUnknown     ErrorType = "unknown"
)

// Error represents a classified gateway error.
type Error struct {
	Type       ErrorType // Classification of the error
	Message    string    // Human-readable message
	Retryable  bool      // Whether the call can be retried
	Cause      error     // Underlying error
	StatusCode int       // HTTP status code if applicable
	AgentID    string    // Agent the call was addressed to, if known
}

// Error implements the error interface.
func (e *Error) Error() string {
	var parts []string
	parts = append(parts, string(e.Type))

	if e.StatusCode > 0 {
		parts = append(parts, fmt.Sprintf("HTTP %d", e.StatusCode))
	}
	if e.AgentID != "" {
		parts = append(parts, fmt.Sprintf("agent=%s", e.AgentID))
	}

	parts = append(parts, e.Message)

	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", strings.Join(parts, " "), e.Cause)
	}
	return strings.Join(parts, " ")
}

// Unwrap returns the underlying cause for errors.Is/As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// IsRetryable reports whether the call that produced e may be retried.
func (e *Error) IsRetryable() bool {
	return e.Retryable
}

// NewError creates a new classified error.
func NewError(errType ErrorType, message string, retryable bool, cause error) *Error {
	return &Error{
		Type:      errType,
		Message:   message,
		Retryable: retryable,
		Cause:     cause,
	}
}

// StatusError classifies a non-2xx HTTP response from an agent endpoint.
func StatusError(statusCode int, body string) *Error {
	msg := strings.TrimSpace(body)
	if msg == "" {
		msg = "unexpected status"
	}

	e := &Error{StatusCode: statusCode, Message: msg}
	switch {
	case statusCode == 401 || statusCode == 403:
		e.Type = ErrorTypeAuth
	case statusCode == 404:
		e.Type = ErrorTypeAgent
	case statusCode == 408:
		e.Type, e.Retryable = ErrorTypeEndpoint, true
	case statusCode == 429:
		e.Type, e.Retryable = ErrorTypeRateLimited, true
	case statusCode >= 500:
		e.Type, e.Retryable = ErrorTypeServer, true
	default:
		e.Type = ErrorTypeUnknown
	}
	return e
}

// statusCodePattern matches HTTP status codes as whole numbers, so ports and
// addresses such as 10.0.0.5:4010 are not mistaken for one.
var statusCodePattern = regexp.MustCompile(`\b(400|401|403|404|429|500|502|503|504|529)\b`)

// ClassifyError categorizes an error from a provider SDK or the network and
// returns a classified Error. Errors that are already classified pass through.
func ClassifyError(err error) *Error {
	if err == nil {
		return nil
	}

	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr
	}

	errStr := err.Error()
	lower := strings.ToLower(errStr)

	statusCode := 0
	if m := statusCodePattern.FindString(errStr); m != "" {
		statusCode, _ = strconv.Atoi(m)
	}

	classified := func(t ErrorType, msg string, retryable bool) *Error {
		e := NewError(t, msg, retryable, err)
		e.StatusCode = statusCode
		return e
	}

	switch {
	case statusCode == 401 || strings.Contains(lower, "unauthorized") ||
		strings.Contains(lower, "invalid api key") || strings.Contains(lower, "invalid x-api-key"):
		return classified(ErrorTypeAuth, "authentication failed", false)

	case strings.Contains(lower, "model") && (strings.Contains(lower, "not found") ||
		strings.Contains(lower, "does not exist")):
		return classified(ErrorTypeAgent, "model not found", false)

	case statusCode == 404:
		return classified(ErrorTypeEndpoint, "endpoint not found", false)

	case errors.Is(err, context.Canceled):
		return classified(ErrorTypeEndpoint, "request canceled", false)

	case strings.Contains(lower, "connection refused") || strings.Contains(lower, "no such host") ||
		strings.Contains(lower, "connection reset"):
		return classified(ErrorTypeEndpoint, "connection failed", true)

	case strings.Contains(lower, "timeout") || strings.Contains(lower, "deadline exceeded"):
		return classified(ErrorTypeEndpoint, "request timeout", true)

	case statusCode == 429 || strings.Contains(lower, "rate limit"):
		return classified(ErrorTypeRateLimited, "rate limited", true)

	case statusCode == 529 || strings.Contains(lower, "overloaded"):
		return classified(ErrorTypeServer, "provider overloaded", true)

	case statusCode >= 500:
		return classified(ErrorTypeServer, "server error", true)
	}

	return classified(ErrorTypeUnknown, "agent error", false)
}

// IsRetryable returns true if err is a retryable classified error.
func IsRetryable(err error) bool {
	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr.Retryable
	}
	return false
}

// GetErrorType extracts the ErrorType from an error.
func GetErrorType(err error) ErrorType {
	var agentErr *Error
	if errors.As(err, &agentErr) {
		return agentErr.Type
	}
	return ErrorTypeUnknown
}
