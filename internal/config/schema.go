// Package config defines the watchdeck configuration schema, loaded from
// ~/.watchdeck/config.json.
package config

import (
	"os"
	"path/filepath"
)

// ProviderConfig holds credentials for one LLM provider.
type ProviderConfig struct {
	APIKey       string            `json:"apiKey"`
	APIBase      string            `json:"apiBase,omitempty"`
	ExtraHeaders map[string]string `json:"extraHeaders,omitempty"`
}

// ProvidersConfig holds credentials for all supported LLM providers.
type ProvidersConfig struct {
	OpenAI     ProviderConfig `json:"openai"`
	Anthropic  ProviderConfig `json:"anthropic"`
	Gemini     ProviderConfig `json:"gemini"`
	OpenRouter ProviderConfig `json:"openrouter"`
	Custom     ProviderConfig `json:"custom"`
}

// AgentDefaults holds the copilot tuning knobs.
type AgentDefaults struct {
	Workspace    string  `json:"workspace"`
	Provider     string  `json:"provider"` // openai | anthropic | gemini | openrouter | custom
	Model        string  `json:"model"`
	MaxTokens    int     `json:"maxTokens"`
	Temperature  float64 `json:"temperature"`
	MaxFollowUps int     `json:"maxFollowUps"`
	MemoryWindow int     `json:"memoryWindow"`
}

func defaultAgentDefaults() AgentDefaults {
	return AgentDefaults{
		Workspace:    "~/.watchdeck/workspace",
		Provider:     "openai",
		Model:        "gpt-4o",
		MaxTokens:    4096,
		Temperature:  0.2,
		MaxFollowUps: 1,
		MemoryWindow: 20,
	}
}

// AgentsConfig wraps agent defaults.
type AgentsConfig struct {
	Defaults AgentDefaults `json:"defaults"`
}

// PlatformConfig holds credentials and scope for the data platform APIs.
type PlatformConfig struct {
	BaseURL     string `json:"baseUrl"`
	AccessToken string `json:"accessToken"`
	OrgID       string `json:"orgId"`
	Sandbox     string `json:"sandbox"`
}

func defaultPlatformConfig() PlatformConfig {
	return PlatformConfig{Sandbox: "prod"}
}

// GatewayConfig holds the dashboard gateway listen settings.
type GatewayConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

func defaultGatewayConfig() GatewayConfig {
	return GatewayConfig{Host: "127.0.0.1", Port: 18790}
}

// DigestsConfig points at the digest definitions file.
type DigestsConfig struct {
	Path string `json:"path"`
}

// SlackNotifyConfig configures the Slack notifier.
type SlackNotifyConfig struct {
	Enabled  bool   `json:"enabled"`
	BotToken string `json:"botToken"`
	Channel  string `json:"channel"`
}

// TelegramNotifyConfig configures the Telegram notifier.
type TelegramNotifyConfig struct {
	Enabled bool   `json:"enabled"`
	Token   string `json:"token"`
	ChatID  int64  `json:"chatId"`
}

// NotifyConfig groups the outbound notifier settings.
type NotifyConfig struct {
	Slack    SlackNotifyConfig    `json:"slack"`
	Telegram TelegramNotifyConfig `json:"telegram"`
}

// Config is the root configuration object.
type Config struct {
	Agents    AgentsConfig    `json:"agents"`
	Providers ProvidersConfig `json:"providers"`
	Platform  PlatformConfig  `json:"platform"`
	Gateway   GatewayConfig   `json:"gateway"`
	Digests   DigestsConfig   `json:"digests"`
	Notify    NotifyConfig    `json:"notify"`
}

// DefaultConfig returns a Config populated with all default values.
func DefaultConfig() Config {
	return Config{
		Agents:   AgentsConfig{Defaults: defaultAgentDefaults()},
		Platform: defaultPlatformConfig(),
		Gateway:  defaultGatewayConfig(),
	}
}

// WorkspacePath returns the expanded absolute path to the workspace.
func (c *Config) WorkspacePath() string {
	ws := c.Agents.Defaults.Workspace
	if ws == "" {
		ws = "~/.watchdeck/workspace"
	}
	if len(ws) >= 2 && ws[:2] == "~/" {
		home, err := os.UserHomeDir()
		if err == nil {
			ws = filepath.Join(home, ws[2:])
		}
	}
	return ws
}

// DigestsPath returns the digest definitions file path, defaulting to
// digests.yaml under the data directory.
func (c *Config) DigestsPath() string {
	if c.Digests.Path != "" {
		return c.Digests.Path
	}
	return filepath.Join(DataDir(), "digests.yaml")
}

// ProviderByName returns the ProviderConfig matching name, nil if unknown.
func (c *Config) ProviderByName(name string) *ProviderConfig {
	switch name {
	case "openai":
		return &c.Providers.OpenAI
	case "anthropic":
		return &c.Providers.Anthropic
	case "gemini":
		return &c.Providers.Gemini
	case "openrouter":
		return &c.Providers.OpenRouter
	case "custom":
		return &c.Providers.Custom
	}
	return nil
}

// ActiveProvider resolves the configured provider name and its credentials,
// falling back to openai.
func (c *Config) ActiveProvider() (string, ProviderConfig) {
	name := c.Agents.Defaults.Provider
	if name == "" {
		name = "openai"
	}
	if p := c.ProviderByName(name); p != nil {
		return name, *p
	}
	return "openai", c.Providers.OpenAI
}
