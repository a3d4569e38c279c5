package tools

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"
	"go.uber.org/zap"
)

// trimString removes leading and trailing whitespace from a string.
func trimString(s string) string {
	return strings.TrimSpace(s)
}

// arguments returns the request arguments, or nil if the client sent none.
func arguments(req mcp.CallToolRequest) map[string]any {
	args, _ := req.Params.Arguments.(map[string]any)
	return args
}

// getOptionalString extracts an optional string argument from the request.
func getOptionalString(req mcp.CallToolRequest, key string) string {
	val, _ := arguments(req)[key].(string)
	return trimString(val)
}

// extractIntParam reads an integer argument. Some clients send numbers as strings,
// so a numeric string is accepted with a warning. Absent keys return ok=false.
func extractIntParam(args map[string]any, key string, logger *zap.Logger) (int, bool, error) {
	raw, present := args[key]
	if !present || raw == nil {
		return 0, false, nil
	}

	switch v := raw.(type) {
	case float64:
		if v != math.Trunc(v) {
			return 0, false, fmt.Errorf("parameter %q must be a whole number, got %v", key, v)
		}
		return int(v), true, nil
	case int:
		return v, true, nil
	case string:
		n, err := strconv.Atoi(trimString(v))
		if err != nil {
			return 0, false, fmt.Errorf("parameter %q must be a number, got %q", key, v)
		}
		if logger != nil {
			logger.Warn("Numeric parameter sent as string", zap.String("param", key))
		}
		return n, true, nil
	default:
		return 0, false, fmt.Errorf("parameter %q must be a number, got %T", key, raw)
	}
}

// jsonResult marshals v into a text tool result.
func jsonResult(v any) (*mcp.CallToolResult, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal result: %w", err)
	}
	return mcp.NewToolResultText(string(b)), nil
}
