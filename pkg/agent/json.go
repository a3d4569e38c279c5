package agent

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

// thinkTagPattern matches <think>...</think> blocks some models emit before the answer.
var thinkTagPattern = regexp.MustCompile(`(?s)^[\s]*<think>.*?</think>[\s]*`)

// ExtractJSONObject returns the first JSON object in a model completion,
// tolerating leading <think> blocks, markdown code fences and surrounding prose.
func ExtractJSONObject(completion string) (string, error) {
	cleaned := thinkTagPattern.ReplaceAllString(completion, "")

	if obj, ok := extractBalanced(cleaned, '{', '}'); ok && json.Valid([]byte(obj)) {
		return obj, nil
	}

	trimmed := strings.TrimSpace(cleaned)
	if strings.HasPrefix(trimmed, "{") && json.Valid([]byte(trimmed)) {
		return trimmed, nil
	}

	return "", fmt.Errorf("no JSON object found in completion")
}

// extractBalanced finds the first balanced structure starting with openChar,
// skipping brackets inside string literals.
func extractBalanced(s string, openChar, closeChar byte) (string, bool) {
	start := strings.IndexByte(s, openChar)
	if start == -1 {
		return "", false
	}

	depth := 0
	inString := false
	escaped := false

	for i := start; i < len(s); i++ {
		c := s[i]

		if escaped {
			escaped = false
			continue
		}
		if c == '\\' && inString {
			escaped = true
			continue
		}
		if c == '"' {
			inString = !inString
			continue
		}
		if inString {
			continue
		}

		switch c {
		case openChar:
			depth++
		case closeChar:
			depth--
			if depth == 0 {
				return s[start : i+1], true
			}
		}
	}

	return "", false
}

// decodeResultDocument parses a completion into the agent's result document.
func decodeResultDocument(completion string) (map[string]any, error) {
	obj, err := ExtractJSONObject(completion)
	if err != nil {
		return nil, err
	}

	var doc map[string]any
	if err := json.Unmarshal([]byte(obj), &doc); err != nil {
		return nil, fmt.Errorf("unmarshal result document: %w", err)
	}
	return doc, nil
}
