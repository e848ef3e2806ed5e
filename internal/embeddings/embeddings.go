// Package embeddings turns text into vectors through a local Ollama
// instance, feeding the long-term memory index.
package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"
)

// Embedder is the surface long-term memory needs.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	Dimension() uint64
}

// Service generates embeddings over Ollama's HTTP API.
type Service struct {
	baseURL string
	model   string
	client  *http.Client
}

// Config for the embedding service.
type Config struct {
	BaseURL string // Ollama URL, default "http://localhost:11434"
	Model   string // embedding model, default "nomic-embed-text"
	Timeout time.Duration
}

// DefaultConfig reads the Ollama location from the environment.
func DefaultConfig() Config {
	baseURL := os.Getenv("OLLAMA_HOST")
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}
	model := os.Getenv("OLLAMA_EMBED_MODEL")
	if model == "" {
		model = "nomic-embed-text"
	}
	return Config{
		BaseURL: baseURL,
		Model:   model,
		Timeout: 30 * time.Second,
	}
}

// NewService creates an embedding service.
func NewService(cfg Config) *Service {
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

	return &Service{
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		client:  &http.Client{Timeout: cfg.Timeout},
	}
}

type embedRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
}

type embedResponse struct {
	Embedding []float32 `json:"embedding"`
}

// Embed generates an embedding for the given text.
func (s *Service) Embed(ctx context.Context, text string) ([]float32, error) {
	body, err := json.Marshal(embedRequest{Model: s.model, Prompt: text})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", s.baseURL+"/api/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("embedding request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("embedding failed: %s - %s", resp.Status, string(respBody))
	}

	var out embedResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return out.Embedding, nil
}

// Dimension returns the embedding width. nomic-embed-text produces
// 768-dimensional vectors.
func (s *Service) Dimension() uint64 {
	return 768
}

// Health checks if Ollama is reachable.
func (s *Service) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, "GET", s.baseURL+"/api/tags", nil)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("ollama not reachable: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ollama unhealthy: %s", resp.Status)
	}
	return nil
}
