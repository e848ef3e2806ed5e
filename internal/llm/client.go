// Package llm talks to a local LM Studio server over its
// OpenAI-compatible chat completions endpoint.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/franklab/frank/internal/core"
)

// Client handles chat completion calls against LM Studio
type Client struct {
	baseURL    string
	model      string
	httpClient *http.Client
}

// Config for the LM Studio client
type Config struct {
	BaseURL string // server base URL, e.g. http://localhost:1234/v1
	Model   string // model identifier as loaded in LM Studio
	Timeout time.Duration
}

// DefaultConfig returns sensible defaults for a local LM Studio instance
func DefaultConfig() Config {
	baseURL := os.Getenv("FRANK_LLM_URL")
	if baseURL == "" {
		baseURL = "http://localhost:1234/v1"
	}
	model := os.Getenv("FRANK_LLM_MODEL")
	if model == "" {
		model = "local-model"
	}
	return Config{
		BaseURL: baseURL,
		Model:   model,
		Timeout: 120 * time.Second,
	}
}

// NewClient creates a new LM Studio client
func NewClient(cfg Config) *Client {
	def := DefaultConfig()
	if cfg.BaseURL == "" {
		cfg.BaseURL = def.BaseURL
	}
	if cfg.Model == "" {
		cfg.Model = def.Model
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = def.Timeout
	}

	return &Client{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
		},
	}
}

// Message represents a conversation message
type Message struct {
	Role    string `json:"role"` // "system", "user" or "assistant"
	Content string `json:"content"`
}

// Request is the chat completions request structure
type Request struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	TopP        float64   `json:"top_p,omitempty"`
	MaxTokens   int       `json:"max_tokens,omitempty"`
	Stream      bool      `json:"stream"`
}

// Response is the chat completions response structure
type Response struct {
	ID      string `json:"id"`
	Object  string `json:"object"`
	Model   string `json:"model"`
	Choices []struct {
		Index   int     `json:"index"`
		Message Message `json:"message"`
		Finish  string  `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

// Complete sends a chat completions request
func (c *Client) Complete(ctx context.Context, req Request) (*Response, error) {
	if req.Model == "" {
		req.Model = c.model
	}
	if req.MaxTokens == 0 {
		req.MaxTokens = 512
	}

	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", core.ErrLLMUnavailable, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("LM Studio error %d: %s", resp.StatusCode, string(respBody))
	}

	var llmResp Response
	if err := json.Unmarshal(respBody, &llmResp); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return &llmResp, nil
}

// Chat sends a system prompt plus one user message with the given
// sampling policy and returns the assistant text.
func (c *Client) Chat(ctx context.Context, system, userMessage string, policy core.Policy) (string, error) {
	resp, err := c.Complete(ctx, Request{
		Messages: []Message{
			{Role: "system", Content: system},
			{Role: "user", Content: userMessage},
		},
		Temperature: policy.Temperature,
		TopP:        policy.TopP,
		MaxTokens:   policy.MaxTokens,
	})
	if err != nil {
		return "", err
	}

	if len(resp.Choices) == 0 {
		return "", core.ErrEmptyResponse
	}

	return resp.Choices[0].Message.Content, nil
}
