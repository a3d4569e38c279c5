package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

// CircuitState represents the current state of the circuit breaker.
type CircuitState int

const (
	// CircuitClosed means calls flow through.
	CircuitClosed CircuitState = iota
	// CircuitOpen means the breaker has tripped and calls are rejected.
	CircuitOpen
	// CircuitHalfOpen means one trial call is in flight.
	CircuitHalfOpen
)

// String returns a human-readable string for the circuit state.
func (s CircuitState) String() string {
	switch s {
	case CircuitClosed:
		return "closed"
	case CircuitOpen:
		return "open"
	case CircuitHalfOpen:
		return "half-open"
	default:
		return "unknown"
	}
}

// CircuitBreakerConfig holds configuration for the circuit breaker.
type CircuitBreakerConfig struct {
	// Threshold is the number of consecutive failures before the circuit trips.
	Threshold int
	// ResetAfter is how long the circuit stays open before a trial call is allowed.
	ResetAfter time.Duration
}

// CircuitBreaker trips open after N consecutive gateway failures and lets a
// single trial call through once ResetAfter has elapsed.
type CircuitBreaker struct {
	mu               sync.Mutex
	consecutiveFails int
	threshold        int
	resetAfter       time.Duration
	lastFailure      time.Time
	state            CircuitState
	now              func() time.Time
}

// NewCircuitBreaker creates a closed circuit breaker. A non-positive threshold
// defaults to 5 and a non-positive ResetAfter to 30s.
func NewCircuitBreaker(config CircuitBreakerConfig) *CircuitBreaker {
	if config.Threshold <= 0 {
		config.Threshold = 5
	}
	if config.ResetAfter <= 0 {
		config.ResetAfter = 30 * time.Second
	}
	return &CircuitBreaker{
		threshold:  config.Threshold,
		resetAfter: config.ResetAfter,
		state:      CircuitClosed,
		now:        time.Now,
	}
}

// Allow returns nil if a call may proceed, moving an expired open circuit to half-open.
func (cb *CircuitBreaker) Allow() error {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	switch cb.state {
	case CircuitClosed:
		return nil
	case CircuitOpen:
		if cb.now().Sub(cb.lastFailure) > cb.resetAfter {
			cb.state = CircuitHalfOpen
			return nil
		}
		return NewError(ErrorTypeCircuitOpen,
			fmt.Sprintf("agent service appears to be down (failed %d times, last failure %v ago)",
				cb.consecutiveFails, cb.now().Sub(cb.lastFailure).Round(time.Second)),
			false, nil)
	case CircuitHalfOpen:
		return NewError(ErrorTypeCircuitOpen, "testing if agent service has recovered", false, nil)
	default:
		return fmt.Errorf("circuit breaker in unknown state: %v", cb.state)
	}
}

// RecordSuccess resets the failure count and closes the circuit.
func (cb *CircuitBreaker) RecordSuccess() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFails = 0
	cb.state = CircuitClosed
}

// RecordFailure counts a failure and trips the circuit at the threshold.
func (cb *CircuitBreaker) RecordFailure() {
	cb.mu.Lock()
	defer cb.mu.Unlock()

	cb.consecutiveFails++
	cb.lastFailure = cb.now()

	if cb.state == CircuitHalfOpen || cb.consecutiveFails >= cb.threshold {
		cb.state = CircuitOpen
	}
}

// State returns the current state of the circuit breaker.
func (cb *CircuitBreaker) State() CircuitState {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.state
}

// ConsecutiveFailures returns the current count of consecutive failures.
func (cb *CircuitBreaker) ConsecutiveFailures() int {
	cb.mu.Lock()
	defer cb.mu.Unlock()
	return cb.consecutiveFails
}

// WithCircuitBreaker rejects calls while cb is open. Transport errors count as
// failures; any returned result, successful or not, proves the service is up.
func WithCircuitBreaker(g Gateway, cb *CircuitBreaker) Gateway {
	return GatewayFunc(func(ctx context.Context, message, agentID string) (*models.AgentResult, error) {
		if err := cb.Allow(); err != nil {
			return nil, err
		}

		result, err := g.Invoke(ctx, message, agentID)
		if err != nil {
			if GetErrorType(err) == ErrorTypeAuth || GetErrorType(err) == ErrorTypeAgent {
				// Configuration problems say nothing about service health.
				cb.RecordSuccess()
			} else {
				cb.RecordFailure()
			}
			return nil, err
		}

		cb.RecordSuccess()
		return result, nil
	})
}
