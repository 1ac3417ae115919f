package narrative

import (
	"context"
	"strings"
	"sync"

	"astrografia/src/helpers"
	"astrografia/src/models"

	"google.golang.org/genai"
)

// GeminiNarrator uses the Gemini API through the genai SDK. The client is
// created on first use.
type GeminiNarrator struct {
	Config models.MNarrativeConfig

	once      sync.Once
	client    *genai.Client
	clientErr error
}

func NewGeminiNarrator(cfg models.MNarrativeConfig) *GeminiNarrator {
	return &GeminiNarrator{Config: cfg}
}

// -----------------------------------------------------------------------------

func (g *GeminiNarrator) Name() string {
	return "gemini"
}

// -----------------------------------------------------------------------------

func (g *GeminiNarrator) init(ctx context.Context) (*genai.Client, error) {
	g.once.Do(func() {
		if g.Config.APIKey == "" {
			g.clientErr = helpers.NewConfigurationError("gemini api key not configured", nil)
			return
		}
		g.client, g.clientErr = genai.NewClient(ctx, &genai.ClientConfig{
			APIKey:  g.Config.APIKey,
			Backend: genai.BackendGeminiAPI,
		})
	})
	return g.client, g.clientErr
}

// -----------------------------------------------------------------------------

func (g *GeminiNarrator) Generate(ctx context.Context, req models.MNarrativeRequest) (string, error) {
	client, err := g.init(ctx)
	if err != nil {
		return "", err
	}

	cfg := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(float32(g.Config.Temperature)),
		MaxOutputTokens:   int32(g.Config.MaxTokens),
	}
	resp, err := client.Models.GenerateContent(ctx, g.Config.Model, []*genai.Content{
		genai.NewContentFromText(BuildPrompt(req), genai.RoleUser),
	}, cfg)
	if err != nil {
		return "", helpers.NewNetworkError("gemini request failed", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", helpers.NewNetworkError("gemini returned no content", nil)
	}
	return text, nil
}
