package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
)

const defaultGrokURL = "https://api.x.ai/v1/chat/completions"

// GrokClient talks to the x.ai chat-completions API.
type GrokClient struct {
	mu      sync.Mutex
	apiKey  string
	model   string
	baseURL string
	client  *http.Client
}

// NewGrokClient creates a client for the given API key. An empty model
// selects the default.
func NewGrokClient(apiKey, model string) *GrokClient {
	if model == "" {
		model = "grok-beta"
	}
	return &GrokClient{
		apiKey:  apiKey,
		model:   model,
		baseURL: defaultGrokURL,
		client:  &http.Client{},
	}
}

// SetAPIKey replaces the client's API key.
func (c *GrokClient) SetAPIKey(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.apiKey = key
}

// HasAPIKey reports whether a key is configured.
func (c *GrokClient) HasAPIKey() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.apiKey != ""
}

// SetBaseURL overrides the API endpoint. Used by tests.
func (c *GrokClient) SetBaseURL(url string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.baseURL = url
}

type grokRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type grokResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Chat sends the conversation and returns the first choice's content.
func (c *GrokClient) Chat(ctx context.Context, messages []Message) (string, error) {
	c.mu.Lock()
	apiKey := c.apiKey
	model := c.model
	baseURL := c.baseURL
	c.mu.Unlock()

	if apiKey == "" {
		return "", ErrNoAPIKey
	}

	body, err := json.Marshal(grokRequest{
		Model:       model,
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   2048,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, baseURL, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API error %d: %s", resp.StatusCode, string(respBody))
	}

	var parsed grokResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return "", fmt.Errorf("parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return "", fmt.Errorf("empty response from API")
	}
	return parsed.Choices[0].Message.Content, nil
}
