package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestExpandEnv(t *testing.T) {
	t.Setenv("SHEET_TEST_HOST", "db.internal")

	got := expandEnv("host: ${SHEET_TEST_HOST:localhost}\nport: ${SHEET_TEST_PORT:5432}\nkey: ${SHEET_TEST_UNSET}")
	want := "host: db.internal\nport: 5432\nkey: ${SHEET_TEST_UNSET}"
	if got != want {
		t.Fatalf("expandEnv()=%q want %q", got, want)
	}
}

func TestLoadFromAppliesFileEnvAndDefaults(t *testing.T) {
	dir := t.TempDir()
	base := `
llm:
  default_provider: gemini
  providers:
    gemini:
      type: gemini
      api_key: ${SHEET_TEST_KEY:}
      model: gemini-2.5-flash
features:
  history:
    default_limit: 10
`
	if err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(base), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	override := `
features:
  history:
    default_limit: 5
`
	if err := os.WriteFile(filepath.Join(dir, "config.staging.yaml"), []byte(override), 0o600); err != nil {
		t.Fatalf("write env config: %v", err)
	}
	t.Setenv("APP_ENV", "staging")
	t.Setenv("SHEET_TEST_KEY", "from-env")

	cfg, err := LoadFrom(dir)
	if err != nil {
		t.Fatalf("LoadFrom: %v", err)
	}

	name, p, ok := cfg.LLM.Provider("")
	if !ok || name != "gemini" {
		t.Fatalf("default provider not resolved: %q ok=%v", name, ok)
	}
	if p.APIKey != "from-env" || p.Type != ProviderTypeGemini {
		t.Fatalf("unexpected provider config: %+v", p)
	}
	if cfg.Features.History.DefaultLimit != 5 {
		t.Fatalf("env file override not applied: %d", cfg.Features.History.DefaultLimit)
	}
	if cfg.Features.History.MaxLimit != 100 {
		t.Fatalf("default max_limit not applied: %d", cfg.Features.History.MaxLimit)
	}
	if cfg.Features.GenerationGate.TTL != 3*time.Minute {
		t.Fatalf("default gate ttl not applied: %v", cfg.Features.GenerationGate.TTL)
	}
	if cfg.Server.HTTP.Port != 8080 {
		t.Fatalf("default port not applied: %d", cfg.Server.HTTP.Port)
	}
}

func TestLoadFromMissingBaseFile(t *testing.T) {
	if _, err := LoadFrom(t.TempDir()); err == nil {
		t.Fatalf("expected error for missing config.yaml")
	}
}
