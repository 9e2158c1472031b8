package completion

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"contentengine/utils"

	"google.golang.org/genai"
)

// DefaultGeminiModel is used when no model is configured
const DefaultGeminiModel = "gemini-2.0-flash"

// GeminiConfig configures the Gemini provider. BaseURL is only set in tests.
type GeminiConfig struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// GeminiClient calls the Gemini API through the genai SDK
type GeminiClient struct {
	client *genai.Client
	model  string
}

// NewGeminiClient creates a client for the Gemini Developer API
func NewGeminiClient(ctx context.Context, config GeminiConfig) (*GeminiClient, error) {
	if config.APIKey == "" {
		return nil, fmt.Errorf("API key not configured")
	}
	if config.Model == "" {
		config.Model = DefaultGeminiModel
	}
	if config.Timeout <= 0 {
		config.Timeout = 60 * time.Second
	}

	cc := &genai.ClientConfig{
		APIKey:     config.APIKey,
		Backend:    genai.BackendGeminiAPI,
		HTTPClient: &http.Client{Timeout: config.Timeout},
	}
	if config.BaseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: config.BaseURL, APIVersion: "v1beta"}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}
	return &GeminiClient{client: client, model: config.Model}, nil
}

func (c *GeminiClient) Complete(ctx context.Context, r Request) (string, error) {
	utils.Log.Debug("[Gemini] Complete: model=%s system_len=%d user_len=%d", c.model, len(r.System), len(r.User))

	cfg := &genai.GenerateContentConfig{
		Temperature: genai.Ptr(float32(r.Temperature)),
	}
	if r.MaxTokens > 0 {
		cfg.MaxOutputTokens = int32(r.MaxTokens)
	}
	if r.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(r.System, genai.RoleUser)
	}

	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(r.User), cfg)
	if err != nil {
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			return "", &APIError{StatusCode: apiErr.Code, Message: apiErr.Message}
		}
		return "", fmt.Errorf("request failed: %w", err)
	}

	return strings.TrimSpace(resp.Text()), nil
}
