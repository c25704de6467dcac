package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"API_BASE", "REACT_APP_API_BASE", "HEALTHCHECK_PATH", "REACT_APP_HEALTHCHECK_PATH"} {
		t.Setenv(key, "")
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBase != "http://localhost:3001" {
		t.Fatalf("APIBase = %q", cfg.APIBase)
	}
	if cfg.HealthcheckPath != "/health" {
		t.Fatalf("HealthcheckPath = %q", cfg.HealthcheckPath)
	}
	if cfg.BackendURL != "http://localhost:3001" || cfg.BackendDocsPath != "/swagger-ui.html" {
		t.Fatalf("docs defaults = %q %q", cfg.BackendURL, cfg.BackendDocsPath)
	}
	if cfg.RequestTimeout != 15*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
	if cfg.WatchInterval != time.Minute {
		t.Fatalf("WatchInterval = %v", cfg.WatchInterval)
	}
	if cfg.StorageType != "none" {
		t.Fatalf("StorageType = %q", cfg.StorageType)
	}
}

func TestLoadAPIBaseOverrideIsVerbatim(t *testing.T) {
	t.Setenv("API_BASE", "https://api.example.com/prefix/")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBase != "https://api.example.com/prefix/" {
		t.Fatalf("APIBase = %q", cfg.APIBase)
	}
}

func TestLoadReactAppAliases(t *testing.T) {
	t.Setenv("API_BASE", "")
	t.Setenv("REACT_APP_API_BASE", "http://legacy:8080")
	t.Setenv("REACT_APP_HEALTHCHECK_PATH", "/healthz")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBase != "http://legacy:8080" {
		t.Fatalf("APIBase = %q", cfg.APIBase)
	}
	if cfg.HealthcheckPath != "/healthz" {
		t.Fatalf("HealthcheckPath = %q", cfg.HealthcheckPath)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	t.Setenv("API_BASE", "http://from-env")

	fs := NewFlagSet("test")
	if err := fs.Parse([]string{"--api-base", "http://from-flag", "--timeout", "3"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.APIBase != "http://from-flag" {
		t.Fatalf("APIBase = %q", cfg.APIBase)
	}
	if cfg.RequestTimeout != 3*time.Second {
		t.Fatalf("RequestTimeout = %v", cfg.RequestTimeout)
	}
}

func TestLoadUnsetFlagsDoNotShadowEnv(t *testing.T) {
	t.Setenv("HEALTHCHECK_PATH", "/ready")

	fs := NewFlagSet("test")
	if err := fs.Parse(nil); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	cfg, err := Load(fs)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.HealthcheckPath != "/ready" {
		t.Fatalf("HealthcheckPath = %q", cfg.HealthcheckPath)
	}
}

func TestLoadRejectsInvalidInterval(t *testing.T) {
	t.Setenv("WATCH_INTERVAL", "0")

	if _, err := Load(nil); err == nil {
		t.Fatalf("expected error for zero watch interval")
	}
}
