package agent

import (
	"context"
	"strings"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/ekaya-inc/intelhub/pkg/logging"
	"github.com/ekaya-inc/intelhub/pkg/models"
)

// OpenAIGateway serves agent calls from an OpenAI-compatible chat completion endpoint.
type OpenAIGateway struct {
	client   *openai.Client
	model    string
	profiles map[string]Profile
	logger   *zap.Logger
}

var _ Gateway = (*OpenAIGateway)(nil)

// NewOpenAIGateway creates a gateway for cfg.Model. An empty Endpoint uses the
// OpenAI API.
func NewOpenAIGateway(cfg *CompletionConfig, logger *zap.Logger) (*OpenAIGateway, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}

	return &OpenAIGateway{
		client:   openai.NewClientWithConfig(clientConfig),
		model:    cfg.Model,
		profiles: cfg.Profiles,
		logger:   logger.Named("openai"),
	}, nil
}

func (g *OpenAIGateway) Invoke(ctx context.Context, message, agentID string) (*models.AgentResult, error) {
	profile, err := lookupProfile(g.profiles, agentID)
	if err != nil {
		return nil, err
	}

	g.logger.Debug("Agent completion request",
		zap.String("agent", profile.Name),
		zap.String("model", g.model),
		zap.Int("prompt_len", len(message)))

	start := time.Now()
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: profile.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
		MaxTokens: profile.MaxTokens,
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
	})
	if err != nil {
		g.logger.Error("Agent completion failed",
			zap.String("agent", profile.Name),
			zap.Duration("elapsed", time.Since(start)),
			zap.String("error", logging.SanitizeError(err)))
		classified := ClassifyError(err)
		classified.AgentID = agentID
		return nil, classified
	}

	if len(resp.Choices) == 0 {
		return nil, NewError(ErrorTypeResponse, "no choices in response", true, nil)
	}

	g.logger.Info("Agent completion finished",
		zap.String("agent", profile.Name),
		zap.Int("prompt_tokens", resp.Usage.PromptTokens),
		zap.Int("completion_tokens", resp.Usage.CompletionTokens),
		zap.Duration("elapsed", time.Since(start)))

	return completionResult(resp.Choices[0].Message.Content), nil
}
