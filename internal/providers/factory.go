package providers

import (
	"strings"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// Params are the raw values needed to construct any schema.LLMProvider.
// Extracted from config.Config by the caller to avoid an import cycle.
type Params struct {
	APIKey       string
	APIBase      string
	ExtraHeaders map[string]string
	DefaultModel string
	ProviderName string // "openai", "anthropic", "gemini", "openrouter", ...
}

// New creates the appropriate schema.LLMProvider for the given params.
// Dispatch is by explicit provider name first, then by model-name prefix;
// everything unrecognised goes through the OpenAI-compatible adapter, which
// covers gateways like OpenRouter as well.
func New(p Params) schema.LLMProvider {
	name := strings.ToLower(strings.TrimSpace(p.ProviderName))
	model := strings.ToLower(p.DefaultModel)

	switch {
	case name == "anthropic" || (name == "" && strings.Contains(model, "claude")):
		return NewAnthropicProvider(p.APIKey, p.APIBase, p.DefaultModel)
	case name == "gemini" || name == "google" || (name == "" && strings.Contains(model, "gemini")):
		return NewGeminiProvider(p.APIKey, p.APIBase, p.DefaultModel)
	default:
		return NewOpenAIProvider(p.APIKey, p.APIBase, p.DefaultModel, p.ExtraHeaders)
	}
}
