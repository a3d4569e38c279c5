package agent

import (
	"context"
	"time"

	"github.com/liushuangls/go-anthropic/v2"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/logging"
	"github.com/ekaya-inc/intelhub/pkg/models"
)

// AnthropicGateway serves agent calls from the Anthropic Messages API.
type AnthropicGateway struct {
	client   *anthropic.Client
	model    string
	profiles map[string]Profile
	logger   *zap.Logger
}

var _ Gateway = (*AnthropicGateway)(nil)

// NewAnthropicGateway creates a gateway for cfg.Model.
func NewAnthropicGateway(cfg *CompletionConfig, logger *zap.Logger) (*AnthropicGateway, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	var opts []anthropic.ClientOption
	if cfg.Endpoint != "" {
		opts = append(opts, anthropic.WithBaseURL(cfg.Endpoint))
	}

	return &AnthropicGateway{
		client:   anthropic.NewClient(cfg.APIKey, opts...),
		model:    cfg.Model,
		profiles: cfg.Profiles,
		logger:   logger.Named("anthropic"),
	}, nil
}

func (g *AnthropicGateway) Invoke(ctx context.Context, message, agentID string) (*models.AgentResult, error) {
	profile, err := lookupProfile(g.profiles, agentID)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Agent message request",
		zap.String("agent", profile.Name),
		zap.String("model", g.model),
		zap.Int("prompt_len", len(message)))

	start := time.Now()
	resp, err := g.client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(g.model),
		System:    profile.SystemPrompt,
		MaxTokens: profile.MaxTokens,
		Messages: []anthropic.Message{
			anthropic.NewUserTextMessage(message),
		},
	})
	if err != nil {
		g.logger.Error("Agent message failed",
			zap.String("agent", profile.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		classified := ClassifyError(err)
		classified.AgentID = agentID
		return nil, classified
	}

	text := firstText(resp)
	if text == "" {
		return nil, NewError(ErrorTypeResponse, "no text content in response", true, nil)
	}

	g.logger.Info("Agent message finished",
		zap.String("agent", profile.Name),
		zap.Int("input_tokens", resp.Usage.InputTokens),
		zap.Int("output_tokens", resp.Usage.OutputTokens),
		zap.Duration("elapsed", time.Since(start)))

	return completionResult(text), nil
}

func firstText(resp anthropic.MessagesResponse) string {
	for _, block := range resp.Content {
		if block.Type == "text" && block.Text != nil {
			return *block.Text
		}
	}
	return ""
}
