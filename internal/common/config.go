// Package common provides shared utilities for draftgen
package common

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	toml "github.com/pelletier/go-toml/v2"
)

// Config holds all configuration for draftgen
type Config struct {
	Environment string         `toml:"environment"`
	Server      ServerConfig   `toml:"server"`
	Clients     ClientsConfig  `toml:"clients"`
	Drafting    DraftingConfig `toml:"drafting"`
	Logging     LoggingConfig  `toml:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// ClientsConfig holds API client configurations
type ClientsConfig struct {
	Registry RegistryConfig `toml:"registry"`
	Gemini   GeminiConfig   `toml:"gemini"`
}

// RegistryConfig holds companies-registry API configuration.
// The API key doubles as the Basic-auth username with an empty password.
type RegistryConfig struct {
	BaseURL       string `toml:"base_url"`
	DocumentURL   string `toml:"document_url"`
	ViewerBaseURL string `toml:"viewer_base_url"`
	APIKey        string `toml:"api_key"`
	PageSize      int    `toml:"page_size"`
	RateLimit     int    `toml:"rate_limit"`
	Timeout       string `toml:"timeout"`
}

// GetTimeout parses and returns the timeout duration
func (c *RegistryConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GeminiConfig holds Gemini API configuration
type GeminiConfig struct {
	APIKey         string   `toml:"api_key"`
	Model          string   `toml:"model"`
	FallbackModels []string `toml:"fallback_models"`
	Timeout        string   `toml:"timeout"`
}

// GetTimeout parses and returns the per-generation deadline.
// Kept under the host request-handling limit with a safety margin.
func (c *GeminiConfig) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Timeout)
	if err != nil {
		return 20 * time.Second
	}
	return d
}

// CandidateModels returns the configured model followed by its fallbacks.
func (c *GeminiConfig) CandidateModels() []string {
	models := make([]string, 0, 1+len(c.FallbackModels))
	if c.Model != "" {
		models = append(models, c.Model)
	}
	for _, m := range c.FallbackModels {
		if m != "" && m != c.Model {
			models = append(models, m)
		}
	}
	return models
}

// DraftingConfig holds statement-drafting pipeline configuration
type DraftingConfig struct {
	DefaultFramework   string `toml:"default_framework"`
	MaxAttachmentBytes int64  `toml:"max_attachment_bytes"`
	PromptTextLimit    int    `toml:"prompt_text_limit"`
	ReferencePDF       string `toml:"reference_pdf"`
	DryRun             bool   `toml:"dry_run"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

// NewDefaultConfig returns a Config with sensible defaults
func NewDefaultConfig() *Config {
	return &Config{
		Environment: "development",
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: 8080,
		},
		Clients: ClientsConfig{
			Registry: RegistryConfig{
				BaseURL:       "https://api.company-information.service.gov.uk",
				DocumentURL:   "https://document-api.company-information.service.gov.uk",
				ViewerBaseURL: "https://find-and-update.company-information.service.gov.uk",
				PageSize:      10,
				RateLimit:     5,
				Timeout:       "30s",
			},
			Gemini: GeminiConfig{
				Model:          "gemini-2.0-flash",
				FallbackModels: []string{"gemini-1.5-flash", "gemini-1.5-pro"},
				Timeout:        "20s",
			},
		},
		Drafting: DraftingConfig{
			DefaultFramework:   "IFRS",
			MaxAttachmentBytes: 10 * 1024 * 1024,
			PromptTextLimit:    16000,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// LoadConfig loads configuration from files with environment overrides
func LoadConfig(paths ...string) (*Config, error) {
	config := NewDefaultConfig()

	// Load and merge each config file in order (later files override earlier)
	for _, path := range paths {
		if path == "" {
			continue
		}

		if _, err := os.Stat(path); os.IsNotExist(err) {
			continue // Skip missing files
		}

		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}

		if err := toml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	applyEnvOverrides(config)

	return config, nil
}

// applyEnvOverrides applies environment variable overrides to config
func applyEnvOverrides(config *Config) {
	if env := os.Getenv("DRAFTGEN_ENV"); env != "" {
		config.Environment = env
	}

	if host := os.Getenv("DRAFTGEN_HOST"); host != "" {
		config.Server.Host = host
	}

	if port := os.Getenv("DRAFTGEN_PORT"); port != "" {
		if p, err := strconv.Atoi(port); err == nil {
			config.Server.Port = p
		}
	}

	if level := os.Getenv("DRAFTGEN_LOG_LEVEL"); level != "" {
		config.Logging.Level = level
	}

	if key := ResolveAPIKey("registry_api_key", config.Clients.Registry.APIKey); key != "" {
		config.Clients.Registry.APIKey = key
	}
	if key := ResolveAPIKey("gemini_api_key", config.Clients.Gemini.APIKey); key != "" {
		config.Clients.Gemini.APIKey = key
	}

	if model := os.Getenv("DRAFTGEN_MODEL"); model != "" {
		config.Clients.Gemini.Model = model
	}

	if ref := os.Getenv("DRAFTGEN_REFERENCE_PDF"); ref != "" {
		config.Drafting.ReferencePDF = ref
	}

	if dry := os.Getenv("DRAFTGEN_DRY_RUN"); dry != "" {
		config.Drafting.DryRun = dry == "1" || strings.EqualFold(dry, "true")
	}
}

// ResolveAPIKey resolves an API key from environment variables, falling back
// to the supplied config value. Environment always wins.
func ResolveAPIKey(name string, fallback string) string {
	keyToEnvMapping := map[string][]string{
		"registry_api_key": {"COMPANIES_REGISTRY_API_KEY", "DRAFTGEN_REGISTRY_API_KEY", "CH_API_KEY"},
		"gemini_api_key":   {"GEMINI_API_KEY", "DRAFTGEN_GEMINI_API_KEY", "GOOGLE_API_KEY"},
	}

	if envVarNames, ok := keyToEnvMapping[name]; ok {
		for _, envVarName := range envVarNames {
			if envValue := os.Getenv(envVarName); envValue != "" {
				return envValue
			}
		}
	}

	return fallback
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	env := strings.ToLower(strings.TrimSpace(c.Environment))
	return env == "production" || env == "prod"
}
