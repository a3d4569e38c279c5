package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

func fastRetry(maxRetries int) *RetryConfig {
	return &RetryConfig{
		MaxRetries:   maxRetries,
		InitialDelay: time.Millisecond,
		MaxDelay:     2 * time.Millisecond,
		Multiplier:   2.0,
	}
}

func TestWithRetry_RetriesTransientErrors(t *testing.T) {
	mock := &MockGateway{}
	mock.InvokeFunc = func(context.Context, string, string) (*models.AgentResult, error) {
		if mock.CallCount() < 3 {
			return nil, StatusError(503, "busy")
		}
		return &models.AgentResult{Success: true}, nil
	}

	result, err := WithRetry(mock, fastRetry(3), zap.NewNop()).Invoke(context.Background(), "m", "a")
	require.NoError(t, err)
	assert.True(t, result.Success)
	assert.Equal(t, 3, mock.CallCount())
}

func TestWithRetry_GivesUpAfterMaxRetries(t *testing.T) {
	mock := &MockGateway{InvokeFunc: func(context.Context, string, string) (*models.AgentResult, error) {
		return nil, StatusError(502, "down")
	}}

	_, err := WithRetry(mock, fastRetry(2), zap.NewNop()).Invoke(context.Background(), "m", "a")
	assert.Equal(t, ErrorTypeServer, GetErrorType(err))
	assert.Equal(t, 3, mock.CallCount())
}

func TestWithRetry_DoesNotRetryPermanentErrors(t *testing.T) {
	mock := &MockGateway{InvokeFunc: func(context.Context, string, string) (*models.AgentResult, error) {
		return nil, StatusError(401, "bad key")
	}}

	_, err := WithRetry(mock, fastRetry(5), zap.NewNop()).Invoke(context.Background(), "m", "a")
	assert.Equal(t, ErrorTypeAuth, GetErrorType(err))
	assert.Equal(t, 1, mock.CallCount())
}

func TestWithRetry_DoesNotRetryReportedFailure(t *testing.T) {
	mock := NewMockGateway(&models.AgentResult{Success: false, Error: "no results"})

	result, err := WithRetry(mock, fastRetry(5), zap.NewNop()).Invoke(context.Background(), "m", "a")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, 1, mock.CallCount())
}

func TestWithRetry_StopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	mock := &MockGateway{InvokeFunc: func(context.Context, string, string) (*models.AgentResult, error) {
		cancel()
		return nil, StatusError(503, "busy")
	}}

	cfg := fastRetry(5)
	cfg.InitialDelay = time.Hour
	cfg.MaxDelay = time.Hour

	_, err := WithRetry(mock, cfg, zap.NewNop()).Invoke(ctx, "m", "a")
	assert.True(t, errors.Is(err, context.Canceled))
	assert.Equal(t, 1, mock.CallCount())
}

func TestApplyJitter(t *testing.T) {
	assert.Equal(t, time.Second, applyJitter(time.Second, 0))
	for i := 0; i < 50; i++ {
		d := applyJitter(time.Second, 0.1)
		assert.GreaterOrEqual(t, d, 900*time.Millisecond)
		assert.LessOrEqual(t, d, 1100*time.Millisecond)
	}
}

func TestWithTimeout(t *testing.T) {
	g := WithTimeout(GatewayFunc(func(ctx context.Context, _, _ string) (*models.AgentResult, error) {
		<-ctx.Done()
		return nil, ctx.Err()
	}), 5*time.Millisecond)

	_, err := g.Invoke(context.Background(), "m", "a")
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	inner := NewMockGateway(&models.AgentResult{Success: true})
	assert.Same(t, Gateway(inner), WithTimeout(inner, 0))
}
