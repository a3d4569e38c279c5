package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/intelhub/pkg/apperrors"
)

// getTextContent extracts the text string from the first text content item
func getTextContent(result *mcp.CallToolResult) string {
	if len(result.Content) == 0 {
		return ""
	}
	jsonBytes, _ := json.Marshal(result.Content[0])
	var textContent struct {
		Type string `json:"type"`
		Text string `json:"text"`
	}
	_ = json.Unmarshal(jsonBytes, &textContent)
	return textContent.Text
}

func TestNewErrorResult(t *testing.T) {
	result := NewErrorResult("test_error", "this is a test error")

	require.NotNil(t, result)
	require.Len(t, result.Content, 1)
	assert.True(t, result.IsError)

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &errResp))

	assert.True(t, errResp.Error, "error field should be true")
	assert.Equal(t, "test_error", errResp.Code)
	assert.Equal(t, "this is a test error", errResp.Message)
	assert.Nil(t, errResp.Details, "details should be nil when not provided")
}

func TestNewErrorResultWithDetails(t *testing.T) {
	result := NewErrorResultWithDetails("invalid_parameters", "bad month", map[string]any{"valid": "1-12"})

	var errResp ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(getTextContent(result)), &errResp))

	assert.Equal(t, "invalid_parameters", errResp.Code)
	assert.Equal(t, map[string]any{"valid": "1-12"}, errResp.Details)
}

func TestErrorCode(t *testing.T) {
	tests := []struct {
		name  string
		err   error
		code  string
		input bool
	}{
		{"not found", fmt.Errorf("finding x: %w", apperrors.ErrNotFound), "not_found", true},
		{"transition", apperrors.ErrInvalidTransition, "invalid_transition", true},
		{"period", apperrors.ErrInvalidPeriod, "invalid_period", true},
		{"busy", apperrors.ErrReportInProgress, "report_in_progress", true},
		{"agent", fmt.Errorf("%w: timeout", apperrors.ErrAgentFailed), "agent_failed", false},
		{"unknown", errors.New("boom"), "", false},
		{"nil", nil, "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.code, ErrorCode(tt.err))
			assert.Equal(t, tt.input, IsInputError(tt.err))
			if tt.code == "" {
				assert.Nil(t, NewDomainErrorResult(tt.err))
			} else {
				assert.NotNil(t, NewDomainErrorResult(tt.err))
			}
		})
	}
}
