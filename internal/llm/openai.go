package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultChatURL = "https://api.openai.com/v1/chat/completions"

// OpenAIConfig configures the OpenAI chat-completions adapter.
type OpenAIConfig struct {
	APIKey     string
	Model      string
	ChatURL    string
	HTTPClient *http.Client
}

// OpenAIClient calls the OpenAI chat completions endpoint over plain HTTP.
type OpenAIClient struct {
	cfg OpenAIConfig
}

// NewOpenAIClient builds an OpenAI client. The HTTP client and endpoint URL
// are injectable so tests can point at a local server.
func NewOpenAIClient(cfg OpenAIConfig) *OpenAIClient {
	if cfg.HTTPClient == nil {
		cfg.HTTPClient = &http.Client{Timeout: 120 * time.Second}
	}
	if strings.TrimSpace(cfg.ChatURL) == "" {
		cfg.ChatURL = defaultChatURL
	}
	if strings.TrimSpace(cfg.Model) == "" {
		cfg.Model = "gpt-4-turbo-preview"
	}
	return &OpenAIClient{cfg: cfg}
}

type chatRequest struct {
	Model    string        `json:"model"`
	Messages []chatMessage `json:"messages"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
	Error *struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error,omitempty"`
}

// Complete sends a single-turn user prompt and returns the model's text.
func (c *OpenAIClient) Complete(ctx context.Context, prompt string) (string, error) {
	if strings.TrimSpace(c.cfg.APIKey) == "" {
		return "", fmt.Errorf("llm: api key is required")
	}

	body, err := json.Marshal(chatRequest{
		Model:    c.cfg.Model,
		Messages: []chatMessage{{Role: "user", Content: prompt}},
	})
	if err != nil {
		return "", fmt.Errorf("llm: marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.ChatURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("llm: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	// Credential material goes only into the Authorization header and is
	// never echoed in errors or logs.
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	res, err := c.cfg.HTTPClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("llm: request failed: %w", err)
	}
	defer func() { _ = res.Body.Close() }()

	payload, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("llm: read response: %w", err)
	}

	var parsed chatResponse
	if err := json.Unmarshal(payload, &parsed); err != nil {
		return "", fmt.Errorf("llm: decode response (status %d): %w", res.StatusCode, err)
	}
	if res.StatusCode != http.StatusOK {
		if parsed.Error != nil {
			return "", fmt.Errorf("llm: api error (status %d): %s", res.StatusCode, parsed.Error.Message)
		}
		return "", fmt.Errorf("llm: unexpected status %d", res.StatusCode)
	}
	if len(parsed.Choices) == 0 || strings.TrimSpace(parsed.Choices[0].Message.Content) == "" {
		return "", ErrEmptyResponse
	}

	return parsed.Choices[0].Message.Content, nil
}
