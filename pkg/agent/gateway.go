// Package agent provides access to the external discovery and report agents.
package agent

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/config"
	"github.com/ekaya-inc/intelhub/pkg/models"
)

// Gateway sends one instruction to one agent and returns its result envelope.
// A transport failure is returned as an error; a failure reported by the agent
// comes back as a result with Success=false.
type Gateway interface {
	Invoke(ctx context.Context, message, agentID string) (*models.AgentResult, error)
}

// GatewayFunc adapts a function to the Gateway interface.
type GatewayFunc func(ctx context.Context, message, agentID string) (*models.AgentResult, error)

func (f GatewayFunc) Invoke(ctx context.Context, message, agentID string) (*models.AgentResult, error) {
	return f(ctx, message, agentID)
}

// New builds the gateway for cfg.Provider, wrapped with a per-call timeout,
// retries for transient errors and a circuit breaker.
func New(cfg *config.AgentConfig, logger *zap.Logger) (Gateway, error) {
	logger = logger.Named("agent")

	var (
		g   Gateway
		err error
	)
	switch cfg.Provider {
	case config.ProviderHTTP:
		g, err = NewHTTPGateway(&HTTPConfig{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.APIKey,
		}, logger)
	case config.ProviderOpenAI:
		g, err = NewOpenAIGateway(&CompletionConfig{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			Profiles: DefaultProfiles(cfg.DiscoveryAgentID, cfg.ReportAgentID),
		}, logger)
	case config.ProviderAnthropic:
		g, err = NewAnthropicGateway(&CompletionConfig{
			Endpoint: cfg.Endpoint,
			APIKey:   cfg.APIKey,
			Model:    cfg.Model,
			Profiles: DefaultProfiles(cfg.DiscoveryAgentID, cfg.ReportAgentID),
		}, logger)
	default:
		return nil, fmt.Errorf("unknown agent provider %q", cfg.Provider)
	}
	if err != nil {
		return nil, err
	}

	g = WithTimeout(g, cfg.Timeout)
	g = WithRetry(g, &RetryConfig{
		MaxRetries:   cfg.MaxRetries,
		InitialDelay: 2 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		JitterFactor: 0.1,
	}, logger)
	g = WithCircuitBreaker(g, NewCircuitBreaker(CircuitBreakerConfig{
		Threshold:  cfg.BreakerThreshold,
		ResetAfter: cfg.BreakerReset,
	}))

	logger.Info("Agent gateway ready",
		zap.String("provider", cfg.Provider),
		zap.Duration("timeout", cfg.Timeout),
		zap.Int("max_retries", cfg.MaxRetries))

	return g, nil
}

// WithTimeout bounds every call to g by d. A zero d leaves calls unbounded.
func WithTimeout(g Gateway, d time.Duration) Gateway {
	if d <= 0 {
		return g
	}
	return GatewayFunc(func(ctx context.Context, message, agentID string) (*models.AgentResult, error) {
		ctx, cancel := context.WithTimeout(ctx, d)
		defer cancel()
		return g.Invoke(ctx, message, agentID)
	})
}
