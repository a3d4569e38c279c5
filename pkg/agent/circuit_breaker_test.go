package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

func newTestBreaker(threshold int, now *time.Time) *CircuitBreaker {
	cb := NewCircuitBreaker(CircuitBreakerConfig{Threshold: threshold, ResetAfter: time.Minute})
	cb.now = func() time.Time { return *now }
	return cb
}

func TestCircuitBreaker_TripsAtThreshold(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cb := newTestBreaker(3, &now)

	for i := 0; i < 2; i++ {
		cb.RecordFailure()
		assert.Equal(t, CircuitClosed, cb.State())
	}
	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())
	assert.Equal(t, 3, cb.ConsecutiveFailures())

	err := cb.Allow()
	assert.Equal(t, ErrorTypeCircuitOpen, GetErrorType(err))
}

func TestCircuitBreaker_HalfOpenAfterReset(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cb := newTestBreaker(1, &now)

	cb.RecordFailure()
	require.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Allow())
	assert.Equal(t, CircuitHalfOpen, cb.State())

	// Only one trial call at a time.
	assert.Error(t, cb.Allow())

	cb.RecordFailure()
	assert.Equal(t, CircuitOpen, cb.State())

	now = now.Add(2 * time.Minute)
	require.NoError(t, cb.Allow())
	cb.RecordSuccess()
	assert.Equal(t, CircuitClosed, cb.State())
	assert.Equal(t, 0, cb.ConsecutiveFailures())
}

func TestCircuitState_String(t *testing.T) {
	assert.Equal(t, "closed", CircuitClosed.String())
	assert.Equal(t, "open", CircuitOpen.String())
	assert.Equal(t, "half-open", CircuitHalfOpen.String())
	assert.Equal(t, "unknown", CircuitState(9).String())
}

func TestWithCircuitBreaker(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	cb := newTestBreaker(2, &now)

	fail := true
	mock := &MockGateway{InvokeFunc: func(context.Context, string, string) (*models.AgentResult, error) {
		if fail {
			return nil, errors.New("connection refused")
		}
		return &models.AgentResult{Success: false, Error: "nothing found"}, nil
	}}
	g := WithCircuitBreaker(mock, cb)

	for i := 0; i < 2; i++ {
		_, err := g.Invoke(context.Background(), "m", "a")
		assert.Error(t, err)
	}
	assert.Equal(t, CircuitOpen, cb.State())

	_, err := g.Invoke(context.Background(), "m", "a")
	assert.Equal(t, ErrorTypeCircuitOpen, GetErrorType(err))
	assert.Equal(t, 2, mock.CallCount(), "open circuit must not reach the backend")

	now = now.Add(2 * time.Minute)
	fail = false
	result, err := g.Invoke(context.Background(), "m", "a")
	require.NoError(t, err)
	assert.False(t, result.Success)
	assert.Equal(t, CircuitClosed, cb.State())
}

func TestWithCircuitBreaker_ConfigErrorsDoNotTrip(t *testing.T) {
	now := time.Now()
	cb := newTestBreaker(1, &now)
	mock := &MockGateway{InvokeFunc: func(context.Context, string, string) (*models.AgentResult, error) {
		return nil, StatusError(401, "bad key")
	}}

	_, err := WithCircuitBreaker(mock, cb).Invoke(context.Background(), "m", "a")
	assert.Equal(t, ErrorTypeAuth, GetErrorType(err))
	assert.Equal(t, CircuitClosed, cb.State())
}
