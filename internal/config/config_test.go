package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "8080" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.DBDriver != "sqlite" {
		t.Errorf("db driver = %q", cfg.DBDriver)
	}
	if cfg.LLMProvider != "openai" {
		t.Errorf("llm provider = %q", cfg.LLMProvider)
	}
	if cfg.MaxSteps != 20 {
		t.Errorf("max steps = %d", cfg.MaxSteps)
	}
	if cfg.FalBaseURL != "https://fal.run" {
		t.Errorf("fal base url = %q", cfg.FalBaseURL)
	}
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	t.Setenv("PORT", "9999")
	t.Setenv("ARTISAN_DB_DRIVER", "postgres")
	t.Setenv("ARTISAN_MAX_STEPS", "5")
	t.Setenv("ARTISAN_STORAGE_USE_SSL", "true")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != "9999" {
		t.Errorf("port = %q", cfg.Port)
	}
	if cfg.DBDriver != "postgres" {
		t.Errorf("db driver = %q", cfg.DBDriver)
	}
	if cfg.MaxSteps != 5 {
		t.Errorf("max steps = %d", cfg.MaxSteps)
	}
	if !cfg.StorageUseSSL {
		t.Error("storage use ssl not overridden")
	}
}

func TestLoadYAMLFileWithEnvPrecedence(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte("port: \"7000\"\nllm_model: claude-sonnet-4-5\nmax_steps: 8\n")
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}

	t.Setenv("ARTISAN_CONFIG", path)
	t.Setenv("PORT", "7001")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.LLMModel != "claude-sonnet-4-5" {
		t.Errorf("llm model = %q", cfg.LLMModel)
	}
	if cfg.MaxSteps != 8 {
		t.Errorf("max steps = %d", cfg.MaxSteps)
	}
	// Env wins over the file.
	if cfg.Port != "7001" {
		t.Errorf("port = %q", cfg.Port)
	}
}

func TestLoadRejectsMalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("port: [oops"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("ARTISAN_CONFIG", path)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed config file")
	}
}
