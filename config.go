package main

import (
	"log"
	"os"
	"strconv"

	"github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"
)

type Config struct {
	LLMProvider     string `yaml:"llm_provider"` // "ollama" or "anthropic"
	LLMModel        string `yaml:"llm_model"`
	OllamaURL       string `yaml:"ollama_url"`
	AnthropicAPIKey string `yaml:"anthropic_api_key"`

	RequestTimeoutSeconds int `yaml:"request_timeout_seconds"`
	RetryLimit            int `yaml:"retry_limit"` // total attempts per item
	RetryDelaySeconds     int `yaml:"retry_delay_seconds"`

	SchemaPath string `yaml:"schema_path"` // empty uses the built-in schema
	DBPath     string `yaml:"db_path"`     // empty disables run history

	SlackBotToken  string `yaml:"slack_bot_token"` // both empty disables notification
	SlackChannelID string `yaml:"slack_channel_id"`

	Schedule string `yaml:"schedule"` // cron spec; empty runs once

	// Set from CLI flags, not the config file.
	Verbose   bool `yaml:"-"`
	Reasoning bool `yaml:"reasoning"`
}

func LoadConfig() Config {
	var cfg Config

	// Load from config.yaml if it exists
	configPath := "config.yaml"
	if envPath := os.Getenv("CONFIG_PATH"); envPath != "" {
		configPath = envPath
	}
	if data, err := os.ReadFile(configPath); err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			log.Fatalf("Error parsing %s: %v", configPath, err)
		}
		log.Printf("Loaded config from %s", configPath)
	}

	// Env vars override YAML values
	envOverride(&cfg.LLMProvider, "LLM_PROVIDER")
	envOverride(&cfg.LLMModel, "LLM_MODEL")
	envOverride(&cfg.OllamaURL, "OLLAMA_URL")
	envOverride(&cfg.AnthropicAPIKey, "ANTHROPIC_API_KEY")
	envOverrideInt(&cfg.RequestTimeoutSeconds, "REQUEST_TIMEOUT_SECONDS")
	envOverrideInt(&cfg.RetryLimit, "RETRY_LIMIT")
	envOverrideInt(&cfg.RetryDelaySeconds, "RETRY_DELAY_SECONDS")
	envOverride(&cfg.SchemaPath, "SCHEMA_PATH")
	envOverride(&cfg.DBPath, "DB_PATH")
	envOverride(&cfg.SlackBotToken, "SLACK_BOT_TOKEN")
	envOverride(&cfg.SlackChannelID, "SLACK_CHANNEL_ID")
	envOverride(&cfg.Schedule, "SCHEDULE")

	// Defaults
	if cfg.LLMProvider == "" {
		cfg.LLMProvider = "ollama"
	}
	if cfg.OllamaURL == "" {
		cfg.OllamaURL = defaultOllamaURL
	}
	if cfg.RequestTimeoutSeconds == 0 {
		cfg.RequestTimeoutSeconds = int(defaultRequestTimeout.Seconds())
	}
	if cfg.RetryLimit == 0 {
		cfg.RetryLimit = 3
	}
	if cfg.RetryDelaySeconds == 0 {
		cfg.RetryDelaySeconds = 2
	}

	// Validate
	switch cfg.LLMProvider {
	case "ollama":
	case "anthropic":
		if cfg.AnthropicAPIKey == "" {
			log.Fatalf("anthropic_api_key is required when llm_provider=anthropic")
		}
	default:
		log.Fatalf("llm_provider must be 'ollama' or 'anthropic', got '%s'", cfg.LLMProvider)
	}

	if cfg.RetryLimit < 1 {
		log.Fatalf("invalid retry_limit '%d': must be >= 1", cfg.RetryLimit)
	}
	if cfg.RetryDelaySeconds < 0 {
		log.Fatalf("invalid retry_delay_seconds '%d': must be >= 0", cfg.RetryDelaySeconds)
	}
	if cfg.RequestTimeoutSeconds < 1 {
		log.Fatalf("invalid request_timeout_seconds '%d': must be >= 1", cfg.RequestTimeoutSeconds)
	}
	if cfg.SchemaPath != "" {
		if _, err := LoadSchema(cfg.SchemaPath); err != nil {
			log.Fatalf("invalid schema_path '%s': %v", cfg.SchemaPath, err)
		}
	}
	if cfg.Schedule != "" {
		parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
		if _, err := parser.Parse(cfg.Schedule); err != nil {
			log.Fatalf("invalid schedule '%s': %v", cfg.Schedule, err)
		}
	}
	if (cfg.SlackBotToken == "") != (cfg.SlackChannelID == "") {
		log.Fatalf("slack_bot_token and slack_channel_id must be set together")
	}

	return cfg
}

// ResolveSchema returns the configured classification schema, built once at
// startup.
func (c Config) ResolveSchema() (ClassificationSchema, error) {
	if c.SchemaPath == "" {
		return DefaultSchema(), nil
	}
	return LoadSchema(c.SchemaPath)
}

func envOverride(field *string, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		*field = val
	}
}

func envOverrideInt(field *int, envKey string) {
	if val := os.Getenv(envKey); val != "" {
		parsed, err := strconv.Atoi(val)
		if err != nil {
			log.Fatalf("invalid %s '%s': %v", envKey, val, err)
		}
		*field = parsed
	}
}
