// Package config handles FRANK configuration.
package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"
)

// Config holds all configuration
type Config struct {
	// Paths
	DataDir string `json:"data_dir"`

	// Server
	Server ServerConfig `json:"server"`

	// Services
	Qdrant   QdrantConfig   `json:"qdrant"`
	Ollama   OllamaConfig   `json:"ollama"`
	LMStudio LMStudioConfig `json:"lm_studio"`

	// Assistant behavior
	Assistant AssistantConfig `json:"assistant"`
}

// ServerConfig for the HTTP server
type ServerConfig struct {
	Port  int    `json:"port"`
	Host  string `json:"host"`
	Token string `json:"token"`
}

// QdrantConfig for the vector database
type QdrantConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// OllamaConfig for embeddings
type OllamaConfig struct {
	URL   string `json:"url"`
	Model string `json:"model"`
}

// LMStudioConfig for the local generation backend
type LMStudioConfig struct {
	BaseURL string `json:"base_url"`
	Model   string `json:"model"`
}

// AssistantConfig for session behavior
type AssistantConfig struct {
	WakeWord         string        `json:"wake_word"`
	ShortTermTurns   int           `json:"short_term_turns"`
	ReminderInterval time.Duration `json:"reminder_interval"`
	EnableMemory     bool          `json:"enable_memory"`
	EnableReminders  bool          `json:"enable_reminders"`
}

// Default returns default configuration
func Default() *Config {
	home, _ := os.UserHomeDir()

	return &Config{
		DataDir: filepath.Join(home, ".frank"),
		Server: ServerConfig{
			Port:  8765,
			Host:  "localhost",
			Token: os.Getenv("FRANK_WEB_TOKEN"),
		},
		Qdrant: QdrantConfig{
			Host: "localhost",
			Port: 6334,
		},
		Ollama: OllamaConfig{
			URL:   "http://localhost:11434",
			Model: "nomic-embed-text",
		},
		LMStudio: LMStudioConfig{
			BaseURL: "http://localhost:1234/v1",
			Model:   "local-model",
		},
		Assistant: AssistantConfig{
			WakeWord:         "FRANK",
			ShortTermTurns:   12,
			ReminderInterval: 30 * time.Second,
			EnableMemory:     true,
			EnableReminders:  true,
		},
	}
}

// Load loads config from file, falling back to defaults
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = filepath.Join(cfg.DataDir, "config.json")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnv()
			return cfg, nil // Use defaults
		}
		return nil, err
	}

	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv lets the environment override service endpoints and secrets.
func (c *Config) applyEnv() {
	if v := os.Getenv("FRANK_DATA_DIR"); v != "" {
		c.DataDir = v
	}
	if v := os.Getenv("FRANK_LLM_URL"); v != "" {
		c.LMStudio.BaseURL = v
	}
	if v := os.Getenv("FRANK_LLM_MODEL"); v != "" {
		c.LMStudio.Model = v
	}
	if v := os.Getenv("OLLAMA_HOST"); v != "" {
		c.Ollama.URL = v
	}
	if v := os.Getenv("OLLAMA_EMBED_MODEL"); v != "" {
		c.Ollama.Model = v
	}
	if v := os.Getenv("QDRANT_HOST"); v != "" {
		c.Qdrant.Host = v
	}
	if v := os.Getenv("FRANK_WEB_TOKEN"); v != "" {
		c.Server.Token = v
	}
}

// Save saves config to file
func (c *Config) Save(path string) error {
	if path == "" {
		path = filepath.Join(c.DataDir, "config.json")
	}

	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}

	// Don't save the web token to file
	safeCfg := *c
	safeCfg.Server.Token = ""

	data, err := json.MarshalIndent(safeCfg, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0600)
}

// DatabasePath is where the document ledgers live.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "frank.db")
}
