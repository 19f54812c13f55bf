// Package config provides centralized configuration loaded from
// environment variables. Shared by both cmd/api and cmd/ingest.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Config is populated from environment variables by Load.
type Config struct {
	// Wildberries statistics API
	APIToken          string
	APIBaseURL        string
	PageLimit         int
	RequestTimeout    time.Duration
	RequestsPerMinute int

	// Storage
	DBPath     string
	SchemaPath string

	// API server
	APIHost     string
	APIPort     int
	Environment string // development, staging, production
	Debug       bool

	// CORS
	CORSAllowOrigins []string

	// Rate limiting
	RateLimitEnabled  bool
	RateLimitRequests int
	RateLimitWindow   time.Duration

	// Cache
	CacheEnabled bool
}

// Load reads configuration from environment variables with sensible
// defaults. The API token is not required here — only ingestion needs it,
// and it validates via RequireToken before any network call.
func Load() (*Config, error) {
	return &Config{
		APIToken:          envOr("WB_API_TOKEN", ""),
		APIBaseURL:        envOr("WB_API_BASE_URL", "https://statistics-api.wildberries.ru"),
		PageLimit:         envInt("WB_PAGE_LIMIT", 1000),
		RequestTimeout:    time.Duration(envInt("WB_REQUEST_TIMEOUT", 30)) * time.Second,
		RequestsPerMinute: envInt("WB_REQUESTS_PER_MINUTE", 60),

		DBPath:     envOr("WB_DB_PATH", filepath.Join("db", "wb_reports.db")),
		SchemaPath: envOr("WB_SCHEMA_PATH", filepath.Join("db", "schema.sql")),

		APIHost:     envOr("API_HOST", "0.0.0.0"),
		APIPort:     envInt("API_PORT", envInt("PORT", 8000)),
		Environment: envOr("ENVIRONMENT", "development"),
		Debug:       envBool("DEBUG", false),

		CORSAllowOrigins: envList("CORS_ALLOW_ORIGINS", []string{"*"}),

		RateLimitEnabled:  envBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequests: envInt("RATE_LIMIT_REQUESTS", 100),
		RateLimitWindow:   time.Duration(envInt("RATE_LIMIT_WINDOW", 60)) * time.Second,

		CacheEnabled: envBool("CACHE_ENABLED", true),
	}, nil
}

// RequireToken ensures the WB token is present before hitting the API.
func (c *Config) RequireToken() error {
	if c.APIToken == "" {
		return fmt.Errorf("WB_API_TOKEN environment variable is required to call the Wildberries API")
	}
	return nil
}

// IsProduction returns true if running in production environment.
func (c *Config) IsProduction() bool {
	return c.Environment == "production"
}

// --------------------------------------------------------------------------
// Env helpers
// --------------------------------------------------------------------------

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		b, err := strconv.ParseBool(v)
		if err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		result := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				result = append(result, trimmed)
			}
		}
		if len(result) > 0 {
			return result
		}
	}
	return fallback
}
