package config

import (
	"errors"
	"testing"
	"time"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("APP_NAME", "job-scout")
	t.Setenv("APP_ENV", "test")
	t.Setenv("HTTP_PORT", "8080")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Scrape.PollAttempts != 30 {
		t.Fatalf("expected 30 attempts, got %d", cfg.Scrape.PollAttempts)
	}
	if cfg.Scrape.PollInitialDelay != 500*time.Millisecond {
		t.Fatalf("unexpected initial delay %s", cfg.Scrape.PollInitialDelay)
	}
	if cfg.Scrape.PollInterval != 700*time.Millisecond {
		t.Fatalf("unexpected interval %s", cfg.Scrape.PollInterval)
	}
	if cfg.Database.Enabled() {
		t.Fatalf("expected database disabled without DB_HOST")
	}
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")

	_, err := Load()
	if !errors.Is(err, errMissingRequiredEnv) {
		t.Fatalf("expected errMissingRequiredEnv, got %v", err)
	}
}

func TestLoad_InvalidNumber(t *testing.T) {
	setRequired(t)
	t.Setenv("SCRAPE_POLL_ATTEMPTS", "many")

	_, err := Load()
	if !errors.Is(err, errInvalidEnv) {
		t.Fatalf("expected errInvalidEnv, got %v", err)
	}
}

func TestLoad_WebappURLTrimmed(t *testing.T) {
	setRequired(t)
	t.Setenv("WEBAPP_URL", "https://app.example.com/")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Backend.WebappURL != "https://app.example.com" {
		t.Fatalf("unexpected webapp url %q", cfg.Backend.WebappURL)
	}
}

func TestLoadTool_RequiresNothing(t *testing.T) {
	t.Setenv("APP_NAME", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("HTTP_PORT", "")
	t.Setenv("SCRAPE_HEADLESS", "true")

	cfg, err := LoadTool()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if !cfg.Scrape.Headless {
		t.Fatalf("expected headless from env")
	}
}

func TestLoad_WSAllowedOrigins(t *testing.T) {
	setRequired(t)
	t.Setenv("WS_ALLOWED_ORIGINS", "chrome-extension://*, ,https://app.example.com")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if len(cfg.WS.AllowedOrigins) != 2 || cfg.WS.AllowedOrigins[0] != "chrome-extension://*" {
		t.Fatalf("unexpected origins %v", cfg.WS.AllowedOrigins)
	}
}

func TestLoad_RefreshSchedule(t *testing.T) {
	setRequired(t)
	t.Setenv("SCRAPE_REFRESH_SCHEDULE", " @every 6h ")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if cfg.Scrape.RefreshSpec != "@every 6h" || cfg.Scrape.RefreshLimit != 20 {
		t.Fatalf("unexpected refresh config %+v", cfg.Scrape)
	}
}
