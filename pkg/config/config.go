// Package config loads and validates the chatstream configuration file,
// with environment fallback for credentials.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "gpt-4o-mini"

	// APIKeyEnvVar is consulted when the config file carries no key.
	APIKeyEnvVar = "OPENAI_API_KEY"
)

// Config is the on-disk configuration, stored at
// ~/.config/<binary>/config.yaml and created with defaults on first run.
type Config struct {
	BaseURL      string `yaml:"baseURL,omitempty" validate:"required,url"`
	Model        string `yaml:"model,omitempty" validate:"required"`
	APIKey       string `yaml:"apiKey,omitempty"`
	Organization string `yaml:"organization,omitempty"`
	System       string `yaml:"system,omitempty"`

	// TimeoutSeconds bounds one whole request, including streaming; 0 means
	// no deadline.
	TimeoutSeconds int `yaml:"timeoutSeconds,omitempty" validate:"gte=0"`

	MaxTokens   int      `yaml:"maxTokens,omitempty" validate:"gte=0"`
	Temperature *float64 `yaml:"temperature,omitempty"`
}

func defaultConfig() *Config {
	return &Config{
		BaseURL:        DefaultBaseURL,
		Model:          DefaultModel,
		TimeoutSeconds: 120,
	}
}

// LoadOrCreateConfig reads the config file, creating it with defaults when it
// does not exist yet.
func LoadOrCreateConfig() (*Config, error) {
	exePath, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("failed to determine executable path: %w", err)
	}
	binaryName := filepath.Base(exePath)

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to determine user home directory: %w", err)
	}
	configDir := filepath.Join(homeDir, ".config", binaryName)
	configPath := filepath.Join(configDir, "config.yaml")

	if _, err := os.Stat(configDir); os.IsNotExist(err) {
		if err := os.MkdirAll(configDir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create config directory: %w", err)
		}
	}

	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		defaultCfg := defaultConfig()
		if err := saveConfig(configPath, defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to create default config: %w", err)
		}
		return defaultCfg, nil
	}

	return LoadConfig(configPath)
}

// LoadConfig reads and parses a config file from an explicit path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

func saveConfig(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	return os.WriteFile(path, data, 0o600)
}

// ResolveAPIKey picks the API key by priority: flag, environment, config.
func ResolveAPIKey(flagVal, configVal string) (string, error) {
	if strings.TrimSpace(flagVal) != "" {
		return strings.TrimSpace(flagVal), nil
	}
	if envVal := os.Getenv(APIKeyEnvVar); strings.TrimSpace(envVal) != "" {
		return strings.TrimSpace(envVal), nil
	}
	if strings.TrimSpace(configVal) != "" {
		return strings.TrimSpace(configVal), nil
	}
	return "", fmt.Errorf("API key is required. Provide via flag, %s environment variable, or config", APIKeyEnvVar)
}

// Validate checks the configuration against its struct constraints.
func (cfg *Config) Validate() error {
	v := validator.New()
	if err := v.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}
	return nil
}
