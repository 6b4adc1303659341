// Package config loads process configuration from environment variables.
package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all runtime configuration, loaded once at startup.
type Config struct {
	// Port is the HTTP listen port.
	Port int
	// GeminiAPIKey enables the generative classifier when set.
	GeminiAPIKey string
	// GeminiModel overrides the default generative model name.
	GeminiModel string
	// MaxWorkers bounds concurrent collaborator calls per request.
	MaxWorkers int
	// CallTimeout bounds each collaborator call.
	CallTimeout time.Duration
	// TargetColumn is the logical reference column name.
	TargetColumn string
	// HeaderSearchRows bounds the header detection scan depth.
	HeaderSearchRows int
	// DefaultHeaderRow is the 0-based fallback header row.
	DefaultHeaderRow int
	// NewColumnWidth is the fixed width for appended columns.
	NewColumnWidth float64
	// CORSOrigins lists origins allowed for cross-origin browser clients.
	CORSOrigins []string
	// CORSCredentials allows credentialed cross-origin requests.
	CORSCredentials bool
	// CORSMethods lists methods advertised in preflight responses.
	CORSMethods []string
	// CORSHeaders lists request headers advertised in preflight responses.
	CORSHeaders []string
	// LogLevel sets the zap log level (debug, info, warn, error).
	LogLevel string
	// Development switches logging to console encoding.
	Development bool
}

// Load reads configuration from the environment, applying defaults for
// anything unset.
func Load() *Config {
	return &Config{
		Port:             envInt("PORT", 8000),
		GeminiAPIKey:     os.Getenv("GEMINI_API_KEY"),
		GeminiModel:      os.Getenv("GEMINI_MODEL"),
		MaxWorkers:       envInt("MAX_WORKERS", 5),
		CallTimeout:      envDuration("AI_CALL_TIMEOUT", 30*time.Second),
		TargetColumn:     envString("TARGET_COLUMN", "TIPO DE UNIDAD"),
		HeaderSearchRows: envInt("MAX_HEADER_SEARCH_ROWS", 5),
		DefaultHeaderRow: envInt("DEFAULT_HEADER_ROW", 1),
		NewColumnWidth:   envFloat("NEW_COLUMN_WIDTH", 15),
		CORSOrigins:      envList("CORS_ORIGINS", []string{"*"}),
		CORSCredentials:  envBool("CORS_CREDENTIALS", true),
		CORSMethods:      envList("CORS_METHODS", []string{"*"}),
		CORSHeaders:      envList("CORS_HEADERS", []string{"*"}),
		LogLevel:         envString("LOG_LEVEL", "info"),
		Development:      envBool("LOG_DEVELOPMENT", false),
	}
}

func envString(key, fallback string) string {
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

func envFloat(key string, fallback float64) float64 {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			return n
		}
	}
	return fallback
}

func envBool(key string, fallback bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return fallback
}

func envList(key string, fallback []string) []string {
	if v := os.Getenv(key); v != "" {
		parts := strings.Split(v, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
