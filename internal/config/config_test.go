package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "SAND_API_KEY", "MAX_DOCUMENT_BYTES", "STATS_WINDOW"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	if cfg.Port != "8091" {
		t.Errorf("expected default port 8091, got %q", cfg.Port)
	}
	if cfg.MaxDocumentBytes != 4194304 {
		t.Errorf("expected 4MB default, got %d", cfg.MaxDocumentBytes)
	}
	if cfg.StatsWindow != time.Hour {
		t.Errorf("expected 1h default, got %v", cfg.StatsWindow)
	}
	if cfg.APIKey != "" {
		t.Errorf("expected open API by default, got %q", cfg.APIKey)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("SAND_API_KEY", "secret")
	t.Setenv("MAX_DOCUMENT_BYTES", "1024")
	t.Setenv("STATS_WINDOW", "15m")

	cfg := Load()
	if cfg.Port != "9000" || cfg.APIKey != "secret" {
		t.Errorf("unexpected config %+v", cfg)
	}
	if cfg.MaxDocumentBytes != 1024 {
		t.Errorf("expected 1024, got %d", cfg.MaxDocumentBytes)
	}
	if cfg.StatsWindow != 15*time.Minute {
		t.Errorf("expected 15m, got %v", cfg.StatsWindow)
	}
}

func TestLoad_IgnoresGarbageValues(t *testing.T) {
	t.Setenv("MAX_DOCUMENT_BYTES", "not-a-number")
	t.Setenv("STATS_WINDOW", "soon")

	cfg := Load()
	if cfg.MaxDocumentBytes != 4194304 {
		t.Errorf("expected the default to survive, got %d", cfg.MaxDocumentBytes)
	}
	if cfg.StatsWindow != time.Hour {
		t.Errorf("expected the default to survive, got %v", cfg.StatsWindow)
	}
}

func TestValidate(t *testing.T) {
	cfg := Config{Port: "8091", MaxDocumentBytes: 4194304}
	if err := cfg.Validate(); err != nil {
		t.Errorf("unexpected error: %v", err)
	}

	cfg.Port = ""
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for an empty port")
	}

	cfg.Port = "http"
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a non-numeric port")
	}

	cfg = Config{Port: "8091", MaxDocumentBytes: -1}
	if err := cfg.Validate(); err == nil {
		t.Error("expected an error for a non-positive document cap")
	}
}
