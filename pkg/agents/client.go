package agents

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// GenAIClient talks to Google's Gemini API through the official SDK.
type GenAIClient struct {
	client *genai.Client
	model  string
}

// NewGenAIClient builds a completion client. An empty model selects
// gemini-2.0-flash.
func NewGenAIClient(ctx context.Context, apiKey, model string) (*GenAIClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("genai api key is required")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GenAIClient{client: client, model: model}, nil
}

// Complete sends a single-turn prompt and returns the model's text.
func (c *GenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	return c.generate(ctx, prompt, nil)
}

// CompleteWithSystem sends a prompt with a separate system instruction.
func (c *GenAIClient) CompleteWithSystem(ctx context.Context, system, prompt string) (string, error) {
	var cfg *genai.GenerateContentConfig
	if system != "" {
		cfg = &genai.GenerateContentConfig{
			SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		}
	}
	return c.generate(ctx, prompt, cfg)
}

func (c *GenAIClient) generate(ctx context.Context, prompt string, cfg *genai.GenerateContentConfig) (string, error) {
	contents := []*genai.Content{
		genai.NewContentFromText(prompt, genai.RoleUser),
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, contents, cfg)
	if err != nil {
		return "", fmt.Errorf("genai complete: %w", err)
	}

	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("genai complete: empty response")
	}
	return text, nil
}
