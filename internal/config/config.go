// ABOUTME: Configuration loading and parsing for roam-gateway.
// ABOUTME: Supports YAML files with environment variable expansion and duration parsing.

package config

import (
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete roam-gateway configuration
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Assistant AssistantConfig `yaml:"assistant"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig holds server address configuration
type ServerConfig struct {
	HTTPAddr string `yaml:"http_addr"`
}

// DatabaseConfig holds message store configuration
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds authentication configuration
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// AssistantConfig holds assistant collaborator configuration: the OpenRouter
// chat endpoint for the generative fallback, the embeddings endpoint used by
// the vector index, and the on-disk locations for index data and seed tours.
type AssistantConfig struct {
	OpenRouterAPIKey string `yaml:"openrouter_api_key"`
	Model            string `yaml:"model"`
	EmbeddingsURL    string `yaml:"embeddings_url"`
	EmbeddingsModel  string `yaml:"embeddings_model"`
	DataDir          string `yaml:"data_dir"`
	SeedFile         string `yaml:"seed_file"`

	SearchTimeout   time.Duration `yaml:"-"`
	GenerateTimeout time.Duration `yaml:"-"`

	// Raw string values for YAML unmarshaling
	SearchTimeoutRaw   string `yaml:"search_timeout"`
	GenerateTimeoutRaw string `yaml:"generate_timeout"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Default collaborator timeouts, applied when the config omits them.
const (
	defaultSearchTimeout   = 10 * time.Second
	defaultGenerateTimeout = 10 * time.Second
)

// Load reads a configuration file from the given path and returns a parsed Config.
// Environment variables in the format ${VAR_NAME} are expanded.
// Duration strings are parsed into time.Duration values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables in the raw YAML content
	expandedData := expandEnvVars(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expandedData), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if err := parseDurations(&cfg); err != nil {
		return nil, fmt.Errorf("parsing durations: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

// expandEnvVars replaces ${VAR_NAME} patterns with the corresponding environment variable values.
// If the environment variable is not set, it is replaced with an empty string.
func expandEnvVars(s string) string {
	re := regexp.MustCompile(`\$\{([^}]+)\}`)

	return re.ReplaceAllStringFunc(s, func(match string) string {
		varName := re.FindStringSubmatch(match)[1]
		return os.Getenv(varName)
	})
}

// Validate checks that all required configuration fields are present and valid.
// Returns an error describing the first validation failure encountered.
func (c *Config) Validate() error {
	if c.Server.HTTPAddr == "" {
		return fmt.Errorf("server.http_addr is required")
	}

	if c.Database.Path == "" {
		return fmt.Errorf("database.path is required")
	}

	if c.Auth.JWTSecret == "" {
		return fmt.Errorf("auth.jwt_secret is required")
	}

	if c.Assistant.DataDir == "" {
		return fmt.Errorf("assistant.data_dir is required")
	}

	return nil
}

// parseDurations converts the raw duration strings into time.Duration values
func parseDurations(cfg *Config) error {
	var err error

	cfg.Assistant.SearchTimeout = defaultSearchTimeout
	if cfg.Assistant.SearchTimeoutRaw != "" {
		cfg.Assistant.SearchTimeout, err = time.ParseDuration(cfg.Assistant.SearchTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing search_timeout %q: %w", cfg.Assistant.SearchTimeoutRaw, err)
		}
	}

	cfg.Assistant.GenerateTimeout = defaultGenerateTimeout
	if cfg.Assistant.GenerateTimeoutRaw != "" {
		cfg.Assistant.GenerateTimeout, err = time.ParseDuration(cfg.Assistant.GenerateTimeoutRaw)
		if err != nil {
			return fmt.Errorf("parsing generate_timeout %q: %w", cfg.Assistant.GenerateTimeoutRaw, err)
		}
	}

	return nil
}
