package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Defaults applied when a field is absent from config.json.
const (
	DefaultExecutorBaseURL    = "https://api.openai.com/v1"
	DefaultExecutorModel      = "gpt-4o-mini"
	DefaultAPIKeyEnv          = "DISCOVERY_API_KEY"
	DefaultRequestTimeoutSecs = 120
	DefaultMaxUnresolvedTurns = 3
)

// Config represents the flat discovery configuration.
// The escalation threshold and executor settings are process-wide: they are
// read once at startup and never change during a run.
type Config struct {
	Version            string `json:"version"`
	ExecutorBaseURL    string `json:"executor_base_url"`
	ExecutorModel      string `json:"executor_model"`
	APIKeyEnv          string `json:"api_key_env,omitempty"`
	RequestTimeoutSecs int    `json:"request_timeout_secs,omitempty"`
	MaxUnresolvedTurns int    `json:"max_unresolved_turns,omitempty"`
	KnowledgeDir       string `json:"knowledge_dir,omitempty"`
	PromptsDir         string `json:"prompts_dir,omitempty"`
}

// Default returns a config populated with defaults.
func Default() *Config {
	return &Config{
		Version:            "1",
		ExecutorBaseURL:    DefaultExecutorBaseURL,
		ExecutorModel:      DefaultExecutorModel,
		APIKeyEnv:          DefaultAPIKeyEnv,
		RequestTimeoutSecs: DefaultRequestTimeoutSecs,
		MaxUnresolvedTurns: DefaultMaxUnresolvedTurns,
		KnowledgeDir:       "knowledge",
		PromptsDir:         "prompts",
	}
}

// LoadConfig reads .discovery/config.json from the specified directory.
// Missing optional fields are filled with defaults so older config files
// keep working. Returns an error if no config is found.
func LoadConfig(dir string) (*Config, error) {
	path := filepath.Join(dir, ".discovery", "config.json")
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()
	return &cfg, nil
}

// SaveConfig writes config.json to the .discovery directory under dir.
func SaveConfig(dir string, cfg *Config) error {
	confDir := filepath.Join(dir, ".discovery")
	if err := os.MkdirAll(confDir, 0755); err != nil {
		return fmt.Errorf("failed to create .discovery dir: %w", err)
	}

	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	path := filepath.Join(confDir, "config.json")
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// APIKey resolves the executor API key from the configured environment
// variable. Empty when unconfigured; the orchestrator fails fast on that.
func (c *Config) APIKey() string {
	env := c.APIKeyEnv
	if env == "" {
		env = DefaultAPIKeyEnv
	}
	return os.Getenv(env)
}

func (c *Config) applyDefaults() {
	if c.ExecutorBaseURL == "" {
		c.ExecutorBaseURL = DefaultExecutorBaseURL
	}
	if c.ExecutorModel == "" {
		c.ExecutorModel = DefaultExecutorModel
	}
	if c.APIKeyEnv == "" {
		c.APIKeyEnv = DefaultAPIKeyEnv
	}
	if c.RequestTimeoutSecs <= 0 {
		c.RequestTimeoutSecs = DefaultRequestTimeoutSecs
	}
	if c.MaxUnresolvedTurns <= 0 {
		c.MaxUnresolvedTurns = DefaultMaxUnresolvedTurns
	}
	if c.KnowledgeDir == "" {
		c.KnowledgeDir = "knowledge"
	}
	if c.PromptsDir == "" {
		c.PromptsDir = "prompts"
	}
}
