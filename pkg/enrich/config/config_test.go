package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg := Load()

	if cfg.Port != 8000 {
		t.Errorf("Port = %d, expected 8000", cfg.Port)
	}
	if cfg.MaxWorkers != 5 {
		t.Errorf("MaxWorkers = %d, expected 5", cfg.MaxWorkers)
	}
	if cfg.TargetColumn != "TIPO DE UNIDAD" {
		t.Errorf("TargetColumn = %q", cfg.TargetColumn)
	}
	if cfg.HeaderSearchRows != 5 || cfg.DefaultHeaderRow != 1 {
		t.Errorf("header config = %d/%d", cfg.HeaderSearchRows, cfg.DefaultHeaderRow)
	}
	if cfg.NewColumnWidth != 15 {
		t.Errorf("NewColumnWidth = %v", cfg.NewColumnWidth)
	}
	if cfg.CallTimeout != 30*time.Second {
		t.Errorf("CallTimeout = %v", cfg.CallTimeout)
	}
	if len(cfg.CORSOrigins) != 1 || cfg.CORSOrigins[0] != "*" {
		t.Errorf("CORSOrigins = %v, expected wildcard", cfg.CORSOrigins)
	}
	if !cfg.CORSCredentials {
		t.Error("CORSCredentials should default to true")
	}
}

func TestLoadCORSList(t *testing.T) {
	t.Setenv("CORS_ORIGINS", "https://app.example.com, https://staging.example.com")
	t.Setenv("CORS_METHODS", "GET,POST,OPTIONS")

	cfg := Load()
	if len(cfg.CORSOrigins) != 2 || cfg.CORSOrigins[1] != "https://staging.example.com" {
		t.Errorf("CORSOrigins = %v, entries should be split and trimmed", cfg.CORSOrigins)
	}
	if len(cfg.CORSMethods) != 3 {
		t.Errorf("CORSMethods = %v", cfg.CORSMethods)
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("MAX_WORKERS", "8")
	t.Setenv("AI_CALL_TIMEOUT", "10s")
	t.Setenv("TARGET_COLUMN", "TIPO VEHICULO")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg := Load()
	if cfg.Port != 9090 {
		t.Errorf("Port = %d", cfg.Port)
	}
	if cfg.MaxWorkers != 8 {
		t.Errorf("MaxWorkers = %d", cfg.MaxWorkers)
	}
	if cfg.CallTimeout != 10*time.Second {
		t.Errorf("CallTimeout = %v", cfg.CallTimeout)
	}
	if cfg.TargetColumn != "TIPO VEHICULO" {
		t.Errorf("TargetColumn = %q", cfg.TargetColumn)
	}
	if !cfg.Development {
		t.Error("Development should be true")
	}
}

func TestLoadIgnoresMalformedEnv(t *testing.T) {
	t.Setenv("PORT", "not-a-number")
	t.Setenv("AI_CALL_TIMEOUT", "soon")

	cfg := Load()
	if cfg.Port != 8000 {
		t.Errorf("Port = %d, malformed values fall back to defaults", cfg.Port)
	}
	if cfg.CallTimeout != 30*time.Second {
		t.Errorf("CallTimeout = %v", cfg.CallTimeout)
	}
}
