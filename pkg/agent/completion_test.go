package agent

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const discoveryCompletion = "```json\n" + `{
  "summary": {"total_findings": 1, "total_competitors": 1, "flagged_count": 0},
  "detailed_findings_overview": "Competitor: Acme\nTitle: Launch"
}` + "\n```"

func testProfiles() map[string]Profile {
	return DefaultProfiles("disc", "rep")
}

func TestOpenAIGateway_Invoke(t *testing.T) {
	var req struct {
		Model    string `json:"model"`
		Messages []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		content, _ := json.Marshal(discoveryCompletion)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "c1", "object": "chat.completion", "created": 1, "model": "m",
			"choices": [{"index": 0, "message": {"role": "assistant", "content": ` + string(content) + `}, "finish_reason": "stop"}],
			"usage": {"prompt_tokens": 10, "completion_tokens": 20, "total_tokens": 30}
		}`))
	}))
	defer server.Close()

	g, err := NewOpenAIGateway(&CompletionConfig{
		Endpoint: server.URL + "/",
		APIKey:   "k",
		Model:    "gpt-test",
		Profiles: testProfiles(),
	}, zap.NewNop())
	require.NoError(t, err)

	result, err := g.Invoke(context.Background(), "find Acme content", "disc")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "Competitor: Acme\nTitle: Launch", result.ResultDocument()["detailed_findings_overview"])

	assert.Equal(t, "gpt-test", req.Model)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, "system", req.Messages[0].Role)
	assert.Contains(t, req.Messages[0].Content, "detailed_findings_overview")
	assert.Equal(t, "find Acme content", req.Messages[1].Content)
}

func TestOpenAIGateway_UnknownAgent(t *testing.T) {
	g, err := NewOpenAIGateway(&CompletionConfig{Model: "m", Profiles: testProfiles()}, zap.NewNop())
	require.NoError(t, err)

	_, err = g.Invoke(context.Background(), "m", "nobody")
	assert.Equal(t, ErrorTypeAgent, GetErrorType(err))
}

func TestAnthropicGateway_Invoke(t *testing.T) {
	var req struct {
		Model  string `json:"model"`
		System string `json:"system"`
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		text, _ := json.Marshal(`{"report_title": "March 2026 Intelligence Report", "total_findings_analyzed": 4}`)
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{
			"id": "msg_1", "type": "message", "role": "assistant", "model": "claude-test",
			"content": [{"type": "text", "text": ` + string(text) + `}],
			"stop_reason": "end_turn",
			"usage": {"input_tokens": 12, "output_tokens": 34}
		}`))
	}))
	defer server.Close()

	g, err := NewAnthropicGateway(&CompletionConfig{
		Endpoint: server.URL + "/v1",
		APIKey:   "k",
		Model:    "claude-test",
		Profiles: testProfiles(),
	}, zap.NewNop())
	require.NoError(t, err)

	result, err := g.Invoke(context.Background(), "write the report", "rep")
	require.NoError(t, err)

	assert.True(t, result.Success)
	assert.Equal(t, "March 2026 Intelligence Report", result.ResultDocument()["report_title"])
	assert.Equal(t, "claude-test", req.Model)
	assert.Contains(t, req.System, "executive_summary")
}

func TestCompletionConfig_Validate(t *testing.T) {
	_, err := NewAnthropicGateway(&CompletionConfig{Profiles: testProfiles()}, zap.NewNop())
	assert.Error(t, err)

	_, err = NewOpenAIGateway(&CompletionConfig{Model: "m"}, zap.NewNop())
	assert.Error(t, err)
}
