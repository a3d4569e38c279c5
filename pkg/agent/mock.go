package agent

import (
	"context"
	"sync"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

// MockGateway is a configurable Gateway for tests.
// Set InvokeFunc to control behavior; calls are recorded.
type MockGateway struct {
	// InvokeFunc is called when Invoke is invoked.
	// If nil, returns a successful result with an empty document.
	InvokeFunc func(ctx context.Context, message, agentID string) (*models.AgentResult, error)

	mu    sync.Mutex
	calls []MockCall
}

// MockCall records the arguments of one Invoke.
type MockCall struct {
	Message string
	AgentID string
}

var _ Gateway = (*MockGateway)(nil)

// NewMockGateway returns a mock that answers every call with result.
func NewMockGateway(result *models.AgentResult) *MockGateway {
	return &MockGateway{
		InvokeFunc: func(context.Context, string, string) (*models.AgentResult, error) {
			return result, nil
		},
	}
}

// Invoke implements Gateway.
func (m *MockGateway) Invoke(ctx context.Context, message, agentID string) (*models.AgentResult, error) {
	m.mu.Lock()
	m.calls = append(m.calls, MockCall{Message: message, AgentID: agentID})
	fn := m.InvokeFunc
	m.mu.Unlock()

	if fn != nil {
		return fn(ctx, message, agentID)
	}
	return &models.AgentResult{Success: true, Response: &models.AgentResponse{Result: map[string]any{}}}, nil
}

// Calls returns the recorded calls in order.
func (m *MockGateway) Calls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockCall(nil), m.calls...)
}

// CallCount returns the number of Invoke calls.
func (m *MockGateway) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}
