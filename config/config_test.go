package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Underwriting.MinScore != 700 {
		t.Errorf("expected min score 700, got %d", cfg.Underwriting.MinScore)
	}
	if cfg.Session.RefusalLimit != 2 {
		t.Errorf("expected refusal limit 2, got %d", cfg.Session.RefusalLimit)
	}
}

func TestLoadOverridesFromYAML(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: ":9090"
underwriting:
  rate_tiers:
    - min_score: 820
      rate: 9.75
    - min_score: 700
      rate: 12.0
session:
  profile_timeout: 500ms
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":9090" {
		t.Errorf("expected addr :9090, got %s", cfg.Server.Addr)
	}
	if len(cfg.Underwriting.RateTiers) != 2 || cfg.Underwriting.RateTiers[0].Rate != 9.75 {
		t.Errorf("rate tiers not overridden: %+v", cfg.Underwriting.RateTiers)
	}
	if cfg.Session.ProfileTimeout != 500*time.Millisecond {
		t.Errorf("expected 500ms, got %s", cfg.Session.ProfileTimeout)
	}
	// untouched sections keep their defaults
	if cfg.Underwriting.DefaultTenureMonths != 36 {
		t.Errorf("expected default tenure 36, got %d", cfg.Underwriting.DefaultTenureMonths)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_ADDR", ":7070")
	t.Setenv("OPENAI_API_KEY", "sk-test")

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Server.Addr != ":7070" {
		t.Errorf("expected env addr, got %s", cfg.Server.Addr)
	}
	if cfg.LLM.APIKey != "sk-test" {
		t.Errorf("expected api key from env")
	}
}

func TestLoadRejectsBadTenures(t *testing.T) {
	path := writeConfig(t, `
underwriting:
  option_tenures: [36, 24, 60]
`)

	if _, err := Load(path); err == nil {
		t.Errorf("expected error for unordered tenures")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Errorf("expected error for missing file")
	}
}
