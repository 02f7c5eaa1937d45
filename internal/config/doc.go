// Package config handles configuration loading for roam-gateway.
//
// # Overview
//
// Configuration is loaded from YAML files with environment variable expansion.
// The package provides validation and sensible defaults.
//
// # Environment Variable Expansion
//
// Configuration values can reference environment variables:
//
//	auth:
//	  jwt_secret: "${ROAM_JWT_SECRET}"
//
// Syntax: ${VAR_NAME}
//
// # Configuration Sections
//
// Server settings:
//
//	server:
//	  http_addr: "0.0.0.0:8080"   # WebSocket endpoints and health checks
//
// Database:
//
//	database:
//	  path: "/var/lib/roam/gateway.db"
//
// Authentication:
//
//	auth:
//	  jwt_secret: "${ROAM_JWT_SECRET}"   # Shared with the main app's login flow
//
// Assistant collaborators:
//
//	assistant:
//	  openrouter_api_key: "${OPENROUTER_API_KEY}"
//	  model: "meta-llama/llama-3.1-8b-instruct"
//	  embeddings_url: "https://openrouter.ai/api/v1/embeddings"
//	  embeddings_model: "openai/text-embedding-3-small"
//	  data_dir: "/var/lib/roam"
//	  seed_file: "/etc/roam/tours.yaml"
//	  search_timeout: "10s"
//	  generate_timeout: "10s"
//
// Logging:
//
//	logging:
//	  level: "info"   # debug, info, warn, error
//	  format: "text"  # text, json
//
// # Usage
//
//	cfg, err := config.Load("/etc/roam/gateway.yaml")
//	if err != nil {
//	    log.Fatal(err)
//	}
package config
