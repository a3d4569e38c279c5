package agent

import (
	"fmt"

	"github.com/ekaya-inc/intelhub/pkg/models"
)

// CompletionConfig configures a gateway backed by a chat-completion model.
type CompletionConfig struct {
	Endpoint string // Optional base URL override
	APIKey   string
	Model    string
	Profiles map[string]Profile
}

func (c *CompletionConfig) validate() error {
	if c.Model == "" {
		return fmt.Errorf("model is required")
	}
	if len(c.Profiles) == 0 {
		return fmt.Errorf("at least one agent profile is required")
	}
	return nil
}

func lookupProfile(profiles map[string]Profile, agentID string) (Profile, error) {
	p, ok := profiles[agentID]
	if !ok {
		e := NewError(ErrorTypeAgent, "no profile for agent", false, nil)
		e.AgentID = agentID
		return Profile{}, e
	}
	return p, nil
}

// completionResult wraps a model completion in the agent result envelope.
// A completion without a JSON object is reported as an agent-side failure.
func completionResult(completion string) *models.AgentResult {
	doc, err := decodeResultDocument(completion)
	if err != nil {
		return &models.AgentResult{
			Success: false,
			Error:   fmt.Sprintf("agent returned an unreadable response: %v", err),
		}
	}
	return &models.AgentResult{
		Success:  true,
		Response: &models.AgentResponse{Result: doc},
	}
}
