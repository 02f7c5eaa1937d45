// ABOUTME: Tests for configuration loading and parsing
// ABOUTME: Covers YAML loading, env var expansion, and duration parsing

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	configPath := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	return configPath
}

func TestLoad_ValidConfig(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"

database:
  path: "./test.db"

auth:
  jwt_secret: "test-secret"

assistant:
  openrouter_api_key: "sk-test"
  model: "meta-llama/llama-3.1-8b-instruct"
  embeddings_url: "https://openrouter.ai/api/v1/embeddings"
  embeddings_model: "openai/text-embedding-3-small"
  data_dir: "./data"
  search_timeout: "5s"
  generate_timeout: "15s"

logging:
  level: "debug"
  format: "json"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.Server.HTTPAddr != "0.0.0.0:8080" {
		t.Errorf("unexpected http_addr: %s", cfg.Server.HTTPAddr)
	}
	if cfg.Database.Path != "./test.db" {
		t.Errorf("unexpected database path: %s", cfg.Database.Path)
	}
	if cfg.Auth.JWTSecret != "test-secret" {
		t.Errorf("unexpected jwt_secret: %s", cfg.Auth.JWTSecret)
	}
	if cfg.Assistant.SearchTimeout != 5*time.Second {
		t.Errorf("unexpected search_timeout: %v", cfg.Assistant.SearchTimeout)
	}
	if cfg.Assistant.GenerateTimeout != 15*time.Second {
		t.Errorf("unexpected generate_timeout: %v", cfg.Assistant.GenerateTimeout)
	}
	if cfg.Logging.Format != "json" {
		t.Errorf("unexpected logging format: %s", cfg.Logging.Format)
	}
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("ROAM_TEST_SECRET", "expanded-secret")

	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"
database:
  path: "./test.db"
auth:
  jwt_secret: "${ROAM_TEST_SECRET}"
assistant:
  data_dir: "./data"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Auth.JWTSecret != "expanded-secret" {
		t.Errorf("env var not expanded, got: %s", cfg.Auth.JWTSecret)
	}
}

func TestLoad_DefaultTimeouts(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"
database:
  path: "./test.db"
auth:
  jwt_secret: "s"
assistant:
  data_dir: "./data"
`)

	cfg, err := Load(configPath)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if cfg.Assistant.SearchTimeout != 10*time.Second {
		t.Errorf("expected default search_timeout 10s, got %v", cfg.Assistant.SearchTimeout)
	}
	if cfg.Assistant.GenerateTimeout != 10*time.Second {
		t.Errorf("expected default generate_timeout 10s, got %v", cfg.Assistant.GenerateTimeout)
	}
}

func TestLoad_InvalidDuration(t *testing.T) {
	configPath := writeConfig(t, `
server:
  http_addr: "0.0.0.0:8080"
database:
  path: "./test.db"
auth:
  jwt_secret: "s"
assistant:
  data_dir: "./data"
  search_timeout: "not-a-duration"
`)

	_, err := Load(configPath)
	if err == nil {
		t.Fatal("expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "search_timeout") {
		t.Errorf("error should mention search_timeout: %v", err)
	}
}

func TestLoad_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name    string
		content string
		want    string
	}{
		{
			name: "missing http_addr",
			content: `
database:
  path: "./test.db"
auth:
  jwt_secret: "s"
assistant:
  data_dir: "./data"
`,
			want: "server.http_addr",
		},
		{
			name: "missing database path",
			content: `
server:
  http_addr: ":8080"
auth:
  jwt_secret: "s"
assistant:
  data_dir: "./data"
`,
			want: "database.path",
		},
		{
			name: "missing jwt secret",
			content: `
server:
  http_addr: ":8080"
database:
  path: "./test.db"
assistant:
  data_dir: "./data"
`,
			want: "auth.jwt_secret",
		},
		{
			name: "missing data dir",
			content: `
server:
  http_addr: ":8080"
database:
  path: "./test.db"
auth:
  jwt_secret: "s"
`,
			want: "assistant.data_dir",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			configPath := writeConfig(t, tt.content)
			_, err := Load(configPath)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error %q should mention %q", err, tt.want)
			}
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	if err == nil {
		t.Fatal("expected error for missing file")
	}
}
