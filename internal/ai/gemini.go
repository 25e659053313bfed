package ai

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"socialsphere/internal/config"

	"google.golang.org/genai"
)

// GeminiGenerator calls the Gemini API through the genai SDK.
type GeminiGenerator struct {
	client *genai.Client
}

// NewGeminiGenerator creates a client for the Gemini API. baseURL and
// httpClient are optional and mostly useful for tests and proxies.
func NewGeminiGenerator(ctx context.Context, apiKey, baseURL string, httpClient *http.Client) (*GeminiGenerator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	cc := &genai.ClientConfig{
		APIKey:     apiKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: httpClient,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}
	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}
	return &GeminiGenerator{client: client}, nil
}

func (g *GeminiGenerator) Generate(ctx context.Context, model, prompt string) (string, error) {
	result, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}
	if result == nil || len(result.Candidates) == 0 || result.Candidates[0].Content == nil {
		return "", nil
	}
	var sb strings.Builder
	for _, part := range result.Candidates[0].Content.Parts {
		if part != nil {
			sb.WriteString(part.Text)
		}
	}
	return sb.String(), nil
}

// NewFromConfig builds a gateway for cfg. Without an API key the gateway
// runs on the disabled generator and always answers with fallbacks.
func NewFromConfig(ctx context.Context, cfg *config.Config) (*Gateway, error) {
	opts := Options{
		Model:      cfg.AIModel,
		Timeout:    cfg.AITimeout,
		MaxRetries: cfg.AIMaxRetries,
		FailOpen:   cfg.ModerationFailOpen,
	}
	if cfg.GeminiAPIKey == "" {
		return NewGateway(Disabled, opts), nil
	}
	gen, err := NewGeminiGenerator(ctx, cfg.GeminiAPIKey, cfg.AIBaseURL, nil)
	if err != nil {
		return nil, err
	}
	return NewGateway(gen, opts), nil
}
