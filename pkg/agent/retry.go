package agent

import (
	"context"
	"math/rand"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/logging"
	"github.com/ekaya-inc/intelhub/pkg/models"
)

// RetryConfig defines retry behavior with exponential backoff.
type RetryConfig struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
	JitterFactor float64 // 0.0-1.0, +/- share of the delay applied at random
}

// DefaultRetryConfig returns 2 retries starting at 2s, doubling, capped at 30s, with 10% jitter.
func DefaultRetryConfig() *RetryConfig {
	return &RetryConfig{
		MaxRetries:   2,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}
}

// applyJitter returns delay +/- (delay * jitterFactor * random(-1 to +1)).
func applyJitter(delay time.Duration, jitterFactor float64) time.Duration {
	if jitterFactor <= 0 {
		return delay
	}
	jitter := float64(delay) * jitterFactor * (rand.Float64()*2 - 1)
	return time.Duration(float64(delay) + jitter)
}

// WithRetry retries calls that fail with a retryable classified error.
// Results with Success=false are the agent's answer and are never retried.
func WithRetry(g Gateway, cfg *RetryConfig, logger *zap.Logger) Gateway {
	if cfg == nil {
		cfg = DefaultRetryConfig()
	}
	logger = logger.Named("retry")

	return GatewayFunc(func(ctx context.Context, message, agentID string) (*models.AgentResult, error) {
		delay := cfg.InitialDelay
		var lastErr error

		for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
			result, err := g.Invoke(ctx, message, agentID)
			if err == nil {
				return result, nil
			}
			lastErr = err

			if !IsRetryable(err) || attempt == cfg.MaxRetries {
				break
			}

			wait := applyJitter(delay, cfg.JitterFactor)
			logger.Warn("Retrying agent call",
				zap.String("agent_id", agentID),
				zap.Int("attempt", attempt+1),
				zap.Duration("backoff", wait),
				zap.String("error", logging.SanitizeError(err)))

			select {
			case <-time.After(wait):
				delay = time.Duration(float64(delay) * cfg.Multiplier)
				if delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		return nil, lastErr
	})
}
