package logging

import (
	"regexp"
)

const (
	// MaxPayloadLogLength is the maximum number of characters of an agent
	// prompt or response written to the log.
	MaxPayloadLogLength = 200
	// RedactedText is the replacement text for sensitive data
	RedactedText = "[REDACTED]"
)

var (
	// password=xxx, pwd=xxx, pass=xxx (until next delimiter)
	passwordPattern = regexp.MustCompile(`(?i)(password|pwd|pass)=[^;&\s]+`)

	// Authorization header values, JWT or opaque
	bearerPattern = regexp.MustCompile(`Bearer\s+[A-Za-z0-9\-_.~+/]+=*`)

	// api_key=..., apikey=..., key=... query parameters
	apiKeyPattern = regexp.MustCompile(`(?i)(api[_-]?key|apikey|key)=[A-Za-z0-9\-_]{20,}`)

	// Provider keys echoed back in error bodies (sk-..., sk-ant-...)
	providerKeyPattern = regexp.MustCompile(`\bsk-[A-Za-z0-9\-_]{16,}`)

	// user:pass@host credentials in URLs
	connStringPattern = regexp.MustCompile(`://[^:/\s]+:[^@\s]+@[^/\s]+`)
)

// SanitizeConnectionString removes credentials from postgres/redis connection strings.
// Use this before logging any connection string.
func SanitizeConnectionString(connStr string) string {
	if connStr == "" {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(connStr, "${1}="+RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizeError sanitizes error messages that might contain credentials.
// Use this before logging errors from the store backends or the agent gateway.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	sanitized := passwordPattern.ReplaceAllString(err.Error(), "${1}="+RedactedText)
	sanitized = bearerPattern.ReplaceAllString(sanitized, "Bearer "+RedactedText)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = providerKeyPattern.ReplaceAllString(sanitized, RedactedText)
	sanitized = connStringPattern.ReplaceAllString(sanitized, "://"+RedactedText+"@"+RedactedText)

	return sanitized
}

// SanitizePayload truncates an agent prompt or response for logging and strips
// anything that looks like a key.
func SanitizePayload(payload string) string {
	if payload == "" {
		return ""
	}

	sanitized := TruncateString(payload, MaxPayloadLogLength)
	sanitized = apiKeyPattern.ReplaceAllString(sanitized, "${1}="+RedactedText)
	sanitized = providerKeyPattern.ReplaceAllString(sanitized, RedactedText)

	return sanitized
}

// TruncateString truncates s to maxLen characters and adds an ellipsis if needed.
func TruncateString(s string, maxLen int) string {
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen]) + "..."
}
