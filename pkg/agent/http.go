package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/logging"
	"github.com/ekaya-inc/intelhub/pkg/models"
)

// maxErrorBody caps how much of a failed response body is kept in the error.
const maxErrorBody = 4 << 10

// HTTPConfig configures the HTTP agent gateway.
type HTTPConfig struct {
	Endpoint string // Agent service URL receiving {"message","agent_id"}
	APIKey   string // Optional bearer token
	// Client overrides the HTTP client, mainly for tests.
	Client *http.Client
}

type invokeRequest struct {
	Message string `json:"message"`
	AgentID string `json:"agent_id"`
}

// HTTPGateway posts instructions to an agent service speaking the
// AgentResult wire contract directly.
type HTTPGateway struct {
	endpoint string
	apiKey   string
	client   *http.Client
	logger   *zap.Logger
}

var _ Gateway = (*HTTPGateway)(nil)

// NewHTTPGateway creates a gateway for cfg.Endpoint.
func NewHTTPGateway(cfg *HTTPConfig, logger *zap.Logger) (*HTTPGateway, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("endpoint is required")
	}

	client := cfg.Client
	if client == nil {
		client = &http.Client{}
	}

	return &HTTPGateway{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		client:   client,
		logger:   logger.Named("http"),
	}, nil
}

func (g *HTTPGateway) Invoke(ctx context.Context, message, agentID string) (*models.AgentResult, error) {
	body, err := json.Marshal(invokeRequest{Message: message, AgentID: agentID})
	if err != nil {
		return nil, fmt.Errorf("encode agent request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build agent request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if g.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+g.apiKey)
	}

	g.logger.Debug("Agent request",
		zap.String("agent_id", agentID),
		zap.String("message", logging.SanitizePayload(message)))

	start := time.Now()
	resp, err := g.client.Do(req)
	if err != nil {
		g.logger.Error("Agent request failed",
			zap.String("agent_id", agentID),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		classified := ClassifyError(err)
		classified.AgentID = agentID
		return nil, classified
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		statusErr := StatusError(resp.StatusCode, string(errBody))
		statusErr.AgentID = agentID
		return nil, statusErr
	}

	var result models.AgentResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		e := NewError(ErrorTypeResponse, "invalid agent response", false, err)
		e.AgentID = agentID
		return nil, e
	}

	g.logger.Info("Agent request completed",
		zap.String("agent_id", agentID),
		zap.Bool("success", result.Success),
		zap.Duration("elapsed", time.Since(start)))

	return &result, nil
}
