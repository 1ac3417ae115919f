package narrative

import (
	"context"
	"encoding/json"
	"strings"

	"astrografia/src/helpers"
	"astrografia/src/interfaces"
	"astrografia/src/models"
)

const defaultOpenAIBaseURL = "https://api.openai.com/v1"

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
	Temperature float64       `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

// -----------------------------------------------------------------------------

// OpenAINarrator calls an OpenAI-compatible chat completions endpoint.
type OpenAINarrator struct {
	Config  models.MNarrativeConfig
	Network interfaces.INetworkManager
}

func NewOpenAINarrator(cfg models.MNarrativeConfig, netMgr interfaces.INetworkManager) *OpenAINarrator {
	return &OpenAINarrator{Config: cfg, Network: netMgr}
}

// -----------------------------------------------------------------------------

func (o *OpenAINarrator) Name() string {
	return "openai"
}

// -----------------------------------------------------------------------------

func (o *OpenAINarrator) Generate(ctx context.Context, req models.MNarrativeRequest) (string, error) {
	if o.Config.APIKey == "" {
		return "", helpers.NewConfigurationError("openai api key not configured", nil)
	}
	base := strings.TrimRight(o.Config.BaseURL, "/")
	if base == "" {
		base = defaultOpenAIBaseURL
	}

	payload := chatRequest{
		Model: o.Config.Model,
		Messages: []chatMessage{
			{Role: "system", Content: systemInstruction},
			{Role: "user", Content: BuildPrompt(req)},
		},
		MaxTokens:   o.Config.MaxTokens,
		Temperature: o.Config.Temperature,
	}
	body, err := o.Network.PostJSON(ctx, base+"/chat/completions", map[string]string{
		"Authorization": "Bearer " + o.Config.APIKey,
	}, payload)
	if err != nil {
		return "", err
	}

	var resp chatResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return "", helpers.NewNetworkError("unexpected chat completion response", err)
	}
	if len(resp.Choices) == 0 || strings.TrimSpace(resp.Choices[0].Message.Content) == "" {
		return "", helpers.NewNetworkError("chat completion returned no content", nil)
	}
	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}
