package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"testing"

	"github.com/mark3labs/mcp-go/server"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/kvstore"
	"github.com/ekaya-inc/intelhub/pkg/models"
	"github.com/ekaya-inc/intelhub/pkg/services"
	"github.com/ekaya-inc/intelhub/pkg/state"
)

type mockDiscoveryService struct {
	outcome *services.DiscoveryOutcome
	err     error
	calls   int
}

func (m *mockDiscoveryService) Run(ctx context.Context) (*services.DiscoveryOutcome, error) {
	m.calls++
	return m.outcome, m.err
}

func (m *mockDiscoveryService) Status() services.DiscoveryStatus {
	return services.DiscoveryStatus{}
}

type mockReportService struct {
	report   *models.Report
	err      error
	calls    int
	gotMonth int
	gotYear  int
}

func (m *mockReportService) Generate(ctx context.Context, month, year int) (*models.Report, error) {
	m.calls++
	m.gotMonth, m.gotYear = month, year
	return m.report, m.err
}

func (m *mockReportService) Status() services.ReportStatus {
	return services.ReportStatus{}
}

type toolTestContext struct {
	mcpServer *server.MCPServer
	deps      *ToolDeps
	discovery *mockDiscoveryService
	reports   *mockReportService
}

func newToolTestContext(t *testing.T) *toolTestContext {
	t.Helper()
	st := state.New(kvstore.NewMemoryStore(), zap.NewNop())
	t.Cleanup(st.Close)

	tc := &toolTestContext{
		mcpServer: server.NewMCPServer("test", "1.0.0", server.WithToolCapabilities(true)),
		discovery: &mockDiscoveryService{},
		reports:   &mockReportService{},
	}
	tc.deps = &ToolDeps{
		Store:     st,
		Discovery: tc.discovery,
		Reports:   tc.reports,
		Logger:    zap.NewNop(),
	}
	RegisterTools(tc.mcpServer, "test-version", tc.deps)
	return tc
}

// toolResponse is the decoded result of a tools/call.
type toolResponse struct {
	Text     string
	IsError  bool
	RPCError *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	}
}

func (tc *toolTestContext) call(t *testing.T, name string, args map[string]any) toolResponse {
	t.Helper()
	reqBytes, err := json.Marshal(map[string]any{
		"jsonrpc": "2.0",
		"id":      1,
		"method":  "tools/call",
		"params":  map[string]any{"name": name, "arguments": args},
	})
	require.NoError(t, err)

	result := tc.mcpServer.HandleMessage(context.Background(), reqBytes)
	resultBytes, err := json.Marshal(result)
	require.NoError(t, err)

	var response struct {
		Result struct {
			IsError bool `json:"isError"`
			Content []struct {
				Type string `json:"type"`
				Text string `json:"text"`
			} `json:"content"`
		} `json:"result"`
		Error *struct {
			Code    int    `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	require.NoError(t, json.Unmarshal(resultBytes, &response))

	out := toolResponse{IsError: response.Result.IsError, RPCError: response.Error}
	if len(response.Result.Content) > 0 {
		out.Text = response.Result.Content[0].Text
	}
	return out
}

func decodeText[T any](t *testing.T, resp toolResponse) T {
	t.Helper()
	require.Nil(t, resp.RPCError, "unexpected protocol error")
	require.False(t, resp.IsError, "unexpected tool error: %s", resp.Text)
	var v T
	require.NoError(t, json.Unmarshal([]byte(resp.Text), &v), fmt.Sprintf("text: %s", resp.Text))
	return v
}

func decodeToolError(t *testing.T, resp toolResponse) ErrorResponse {
	t.Helper()
	require.Nil(t, resp.RPCError, "unexpected protocol error")
	require.True(t, resp.IsError, "expected tool error, got: %s", resp.Text)
	var e ErrorResponse
	require.NoError(t, json.Unmarshal([]byte(resp.Text), &e))
	return e
}
