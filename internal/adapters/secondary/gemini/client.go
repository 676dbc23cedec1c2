// Package gemini implements a text-generation client backed by Google's
// Gemini API. This package serves as a secondary adapter behind the
// TextGenerator port; prompt construction and response parsing stay in
// the core.
package gemini

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"go.uber.org/zap"
	"google.golang.org/api/option"
)

// Generation parameters for outfit prompts. High temperature keeps the
// daily outfits varied; the token cap bounds cost per call.
const (
	generationTemperature = 0.8
	generationMaxTokens   = 800
)

// Client implements the TextGenerator interface using the Gemini SDK.
type Client struct {
	client *genai.Client
	model  string
	logger *zap.Logger
}

// NewClient creates a Gemini-backed text generator.
//
// Parameters:
//   - ctx: Context for SDK initialization
//   - apiKey: Gemini API credential
//   - model: Model identifier, e.g. "gemini-2.0-flash"
//   - logger: Zap logger for API interaction logging
//
// Returns:
//   - *Client: Configured text-generation client
//   - error: SDK initialization error
func NewClient(ctx context.Context, apiKey, model string, logger *zap.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))

	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &Client{
		client: client,
		model:  model,
		logger: logger,
	}, nil
}

// GenerateText sends the prompt to the model and returns the concatenated
// text parts of the first candidate.
//
// Parameters:
//   - ctx: Context for cancellation and timeout
//   - prompt: Full prompt text
//
// Returns:
//   - string: Raw model output, possibly wrapped in markdown fences
//   - error: API error or empty-candidate response
func (c *Client) GenerateText(ctx context.Context, prompt string) (string, error) {
	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(generationTemperature)
	model.SetMaxOutputTokens(generationMaxTokens)

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))

	if err != nil {
		return "", fmt.Errorf("failed to generate content: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no content generated")
	}

	var sb strings.Builder

	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	if sb.Len() == 0 {
		return "", fmt.Errorf("unexpected response format (no text parts)")
	}

	return sb.String(), nil
}

// Close releases the underlying SDK client.
func (c *Client) Close() error {
	return c.client.Close()
}
