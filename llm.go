package main

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

const defaultOllamaURL = "http://localhost:11434"
const defaultOllamaModel = "gemma3:12b"
const defaultAnthropicModel = "claude-sonnet-4-5-20250929"

// classifyIdentifier sends one classification request for the identifier and
// returns the raw reply text. Any transport or endpoint failure is a request
// error; interpreting the reply is the parser's job.
func classifyIdentifier(ctx context.Context, cfg Config, httpClient *http.Client, schema ClassificationSchema, identifier string) (string, error) {
	prompt := buildAnalysisPrompt(schema, identifier, cfg.Reasoning)

	var reply string
	var err error

	switch cfg.LLMProvider {
	case "anthropic":
		reply, err = callAnthropic(ctx, cfg.AnthropicAPIKey, resolvedModel(cfg), prompt)
	default:
		// Constrained JSON output only works without a reasoning preamble.
		format := ""
		if !cfg.Reasoning {
			format = "json"
		}
		reply, err = callOllama(ctx, httpClient, cfg.OllamaURL, resolvedModel(cfg), prompt, format)
	}
	if err != nil {
		return "", err
	}

	if cfg.Verbose {
		log.Printf("llm reply identifier=%q:\n%s", identifier, reply)
	}
	return reply, nil
}

// pingEndpoint verifies the local endpoint answers at all before any item is
// processed, so a dead endpoint is a setup failure rather than a full roster
// of request errors. Hosted providers are not probed.
func pingEndpoint(ctx context.Context, cfg Config, httpClient *http.Client) error {
	if cfg.LLMProvider != "ollama" {
		return nil
	}
	base := cfg.OllamaURL
	if base == "" {
		base = defaultOllamaURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, base, nil)
	if err != nil {
		return fmt.Errorf("creating ping request: %w", err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("ollama endpoint unreachable at %s: %w", base, err)
	}
	resp.Body.Close()
	return nil
}

// resolvedModel applies the per-provider default model name.
func resolvedModel(cfg Config) string {
	if cfg.LLMModel != "" {
		return cfg.LLMModel
	}
	if cfg.LLMProvider == "anthropic" {
		return defaultAnthropicModel
	}
	return defaultOllamaModel
}

// buildAnalysisPrompt renders the fixed instruction template for one
// identifier. The rubric bounds and level vocabulary come from the schema,
// so a custom schema file changes the prompt and the validator together.
func buildAnalysisPrompt(schema ClassificationSchema, identifier string, reasoning bool) string {
	var levelLines strings.Builder
	for _, level := range schema.Levels {
		levelLines.WriteString(fmt.Sprintf("- %s\n", level))
	}

	reasoningBlock := ""
	outputBlock := `Respond ONLY with a valid JSON object in the format: {"risk_score": <score>, "classification": "<chosen level>", "data_type": ["label1", "label2"]}`
	if reasoning {
		reasoningBlock = `
First, give a short step-by-step analysis of the name: which keywords you identified and how they map to the classification levels and the risk rubric.
After the reasoning, provide the final JSON object enclosed in ` + "```json markdown fences." + `
`
		outputBlock = ""
	}

	return fmt.Sprintf(`You are a senior data security analyst. Analyze a file or item name and provide three pieces of information: a granular risk score, a classification level, and the likely data types.
%s
1. Risk Score (%d-%d): rate the severity and potential impact of a breach. Low scores mean public data with negligible impact; the top of the range means extremely sensitive data such as privileged credentials, where a breach causes severe and immediate harm.

2. Classification: select the single best fit from this vocabulary, ordered lowest to highest severity:
%s
3. Data Type: a "data_type" array of short descriptive labels (e.g. "PII", "financial"). Use an empty array when nothing sensitive is suggested.

The score reflects severity while the classification is the category: "server_passwords.txt" scores %d at the highest level, while "donor_contact_list.xlsx" is also at the highest level but scores lower.

%s
Name to analyze: %q`,
		reasoningBlock, schema.MinScore, schema.MaxScore, levelLines.String(), schema.MaxScore, outputBlock, identifier)
}

// --- Ollama ---

type ollamaRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
	Format string `json:"format,omitempty"`
}

type ollamaResponse struct {
	Response string `json:"response"`
	Done     bool   `json:"done"`
	Error    string `json:"error,omitempty"`
}

func callOllama(ctx context.Context, httpClient *http.Client, baseURL, model, prompt, format string) (string, error) {
	if baseURL == "" {
		baseURL = defaultOllamaURL
	}
	url := strings.TrimSuffix(baseURL, "/") + "/api/generate"

	body, err := json.Marshal(ollamaRequest{
		Model:  model,
		Prompt: prompt,
		Stream: false,
		Format: format,
	})
	if err != nil {
		return "", fmt.Errorf("marshaling request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("ollama request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("reading response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("ollama error (status %d): %s", resp.StatusCode, strings.TrimSpace(string(respBody)))
	}

	var ollamaResp ollamaResponse
	if err := json.Unmarshal(respBody, &ollamaResp); err != nil {
		return "", fmt.Errorf("parsing ollama response: %w", err)
	}
	if ollamaResp.Error != "" {
		return "", fmt.Errorf("ollama error: %s", ollamaResp.Error)
	}

	return ollamaResp.Response, nil
}

// --- Anthropic ---

func callAnthropic(ctx context.Context, apiKey, model, prompt string) (string, error) {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))

	message, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1024,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", fmt.Errorf("anthropic API error: %w", err)
	}

	for _, block := range message.Content {
		if block.Type == "text" {
			return block.Text, nil
		}
	}
	return "", fmt.Errorf("no text content in anthropic response")
}
