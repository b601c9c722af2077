package main

import (
	"os"
	"path/filepath"
	"testing"
)

func setMissingConfigFile(t *testing.T) {
	t.Helper()
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "missing-config.yaml"))
}

func TestLoadConfigDefaults(t *testing.T) {
	setMissingConfigFile(t)

	cfg := LoadConfig()

	if cfg.LLMProvider != "ollama" {
		t.Fatalf("unexpected provider default: %q", cfg.LLMProvider)
	}
	if cfg.OllamaURL != defaultOllamaURL {
		t.Fatalf("unexpected ollama url default: %q", cfg.OllamaURL)
	}
	if cfg.RetryLimit != 3 {
		t.Fatalf("unexpected retry limit default: %d", cfg.RetryLimit)
	}
	if cfg.RetryDelaySeconds != 2 {
		t.Fatalf("unexpected retry delay default: %d", cfg.RetryDelaySeconds)
	}
	if cfg.RequestTimeoutSeconds != int(defaultRequestTimeout.Seconds()) {
		t.Fatalf("unexpected request timeout default: %d", cfg.RequestTimeoutSeconds)
	}
	if cfg.DBPath != "" {
		t.Fatalf("run history should be disabled by default, got %q", cfg.DBPath)
	}
}

func TestLoadConfigYAMLAndEnvOverride(t *testing.T) {
	cfgPath := filepath.Join(t.TempDir(), "config.yaml")
	content := `
llm_provider: ollama
llm_model: llama3
ollama_url: http://gpu-box:11434
retry_limit: 5
db_path: ./history.db
`
	if err := os.WriteFile(cfgPath, []byte(content), 0644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv("CONFIG_PATH", cfgPath)
	t.Setenv("LLM_MODEL", "gemma3:27b")

	cfg := LoadConfig()

	if cfg.LLMModel != "gemma3:27b" {
		t.Fatalf("env must override yaml, got %q", cfg.LLMModel)
	}
	if cfg.OllamaURL != "http://gpu-box:11434" {
		t.Fatalf("yaml value lost: %q", cfg.OllamaURL)
	}
	if cfg.RetryLimit != 5 {
		t.Fatalf("yaml retry_limit lost: %d", cfg.RetryLimit)
	}
	if cfg.DBPath != "./history.db" {
		t.Fatalf("yaml db_path lost: %q", cfg.DBPath)
	}
}

func TestLoadConfigAnthropicProvider(t *testing.T) {
	setMissingConfigFile(t)
	t.Setenv("LLM_PROVIDER", "anthropic")
	t.Setenv("ANTHROPIC_API_KEY", "sk-test")

	cfg := LoadConfig()

	if cfg.LLMProvider != "anthropic" || cfg.AnthropicAPIKey != "sk-test" {
		t.Fatalf("unexpected config: %+v", cfg)
	}
}

func TestResolveSchemaDefault(t *testing.T) {
	schema, err := Config{}.ResolveSchema()
	if err != nil {
		t.Fatalf("ResolveSchema failed: %v", err)
	}
	if len(schema.Levels) != 3 {
		t.Fatalf("expected built-in schema, got %+v", schema)
	}
}

func TestResolveSchemaFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "schema.yaml")
	if err := os.WriteFile(path, []byte("levels: [low, high]\n"), 0644); err != nil {
		t.Fatalf("write schema: %v", err)
	}

	schema, err := Config{SchemaPath: path}.ResolveSchema()
	if err != nil {
		t.Fatalf("ResolveSchema failed: %v", err)
	}
	if len(schema.Levels) != 2 {
		t.Fatalf("expected schema from file, got %+v", schema)
	}
}
