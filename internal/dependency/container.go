// Package dependency wires core watchdeck services using go.uber.org/dig.
package dependency

import (
	"fmt"

	"go.uber.org/dig"

	"github.com/watchdeck/watchdeck/internal/agent"
	"github.com/watchdeck/watchdeck/internal/config"
	"github.com/watchdeck/watchdeck/internal/conversation"
	"github.com/watchdeck/watchdeck/internal/digest"
	"github.com/watchdeck/watchdeck/internal/executor"
	"github.com/watchdeck/watchdeck/internal/gateway"
	"github.com/watchdeck/watchdeck/internal/notify"
	"github.com/watchdeck/watchdeck/internal/platform"
	"github.com/watchdeck/watchdeck/internal/providers"
	"github.com/watchdeck/watchdeck/internal/registry"
	"github.com/watchdeck/watchdeck/internal/schema"
	"github.com/watchdeck/watchdeck/internal/session"
)

// ServiceContainer holds the resolved core service singletons.
// Callers use the typed getter methods; they never need to import dig directly.
type ServiceContainer struct {
	provider  schema.LLMProvider
	reg       *registry.Registry
	exec      *executor.Executor
	copilot   *agent.Copilot
	sessions  *session.Manager
	notifiers *notify.Set
	gateway   *gateway.Server
	digests   *digest.Service
}

func (c *ServiceContainer) Provider() schema.LLMProvider { return c.provider }
func (c *ServiceContainer) Registry() *registry.Registry { return c.reg }
func (c *ServiceContainer) Executor() *executor.Executor { return c.exec }
func (c *ServiceContainer) Copilot() *agent.Copilot      { return c.copilot }
func (c *ServiceContainer) Sessions() *session.Manager   { return c.sessions }
func (c *ServiceContainer) Notifiers() *notify.Set       { return c.notifiers }
func (c *ServiceContainer) Gateway() *gateway.Server     { return c.gateway }
func (c *ServiceContainer) Digests() *digest.Service     { return c.digests }

// New builds and wires all core services from cfg.
func New(cfg *config.Config) (*ServiceContainer, error) {
	d := dig.New()

	constructors := []any{
		func() *config.Config { return cfg },
		newProvider,
		newPlatformClient,
		newRegistry,
		newExecutor,
		newPrompt,
		newCopilot,
		newSessionManager,
		newNotifierSet,
		newGateway,
		newDigestService,
	}
	for _, ctor := range constructors {
		if err := d.Provide(ctor); err != nil {
			return nil, err
		}
	}

	var result *ServiceContainer
	err := d.Invoke(func(
		provider schema.LLMProvider,
		reg *registry.Registry,
		exec *executor.Executor,
		copilot *agent.Copilot,
		sessions *session.Manager,
		notifiers *notify.Set,
		gw *gateway.Server,
		digests *digest.Service,
	) {
		result = &ServiceContainer{
			provider:  provider,
			reg:       reg,
			exec:      exec,
			copilot:   copilot,
			sessions:  sessions,
			notifiers: notifiers,
			gateway:   gw,
			digests:   digests,
		}
	})
	return result, err
}

func newProvider(cfg *config.Config) (schema.LLMProvider, error) {
	name, creds := cfg.ActiveProvider()
	if creds.APIKey == "" {
		return nil, fmt.Errorf("no API key configured for provider %q; edit %s", name, config.ConfigPath())
	}
	return providers.New(providers.Params{
		APIKey:       creds.APIKey,
		APIBase:      creds.APIBase,
		ExtraHeaders: creds.ExtraHeaders,
		DefaultModel: cfg.Agents.Defaults.Model,
		ProviderName: name,
	}), nil
}

func newPlatformClient(cfg *config.Config) *platform.Client {
	p := cfg.Platform
	return platform.NewClient(p.BaseURL, p.AccessToken, p.OrgID, p.Sandbox)
}

func newRegistry(client *platform.Client) (*registry.Registry, error) {
	return platform.BuildRegistry(client)
}

func newExecutor(reg *registry.Registry) *executor.Executor {
	return executor.New(reg)
}

func newPrompt(cfg *config.Config) *conversation.Prompt {
	return conversation.NewPrompt(cfg.Platform.OrgID, cfg.Platform.Sandbox)
}

func newCopilot(
	provider schema.LLMProvider,
	reg *registry.Registry,
	exec *executor.Executor,
	prompt *conversation.Prompt,
	cfg *config.Config,
) *agent.Copilot {
	defaults := cfg.Agents.Defaults
	model := defaults.Model
	if model == "" {
		model = provider.DefaultModel()
	}
	return agent.New(provider, reg, exec, prompt, agent.Settings{
		Model:        model,
		MaxTokens:    defaults.MaxTokens,
		Temperature:  defaults.Temperature,
		MemoryWindow: defaults.MemoryWindow,
		MaxFollowUps: defaults.MaxFollowUps,
	})
}

func newSessionManager(cfg *config.Config) (*session.Manager, error) {
	return session.NewManager(cfg.WorkspacePath())
}

func newNotifierSet(cfg *config.Config) *notify.Set {
	var notifiers []notify.Notifier
	if s := cfg.Notify.Slack; s.Enabled && s.BotToken != "" && s.Channel != "" {
		notifiers = append(notifiers, notify.NewSlackNotifier(s.BotToken, s.Channel))
	}
	if t := cfg.Notify.Telegram; t.Enabled && t.Token != "" && t.ChatID != 0 {
		notifiers = append(notifiers, notify.NewTelegramNotifier(t.Token, t.ChatID))
	}
	return notify.NewSet(notifiers...)
}

func newGateway(copilot *agent.Copilot, sessions *session.Manager, notifiers *notify.Set) *gateway.Server {
	return gateway.NewServer(copilot, sessions, notifiers)
}

func newDigestService(
	cfg *config.Config,
	copilot *agent.Copilot,
	sessions *session.Manager,
	notifiers *notify.Set,
) (*digest.Service, error) {
	defs, err := digest.LoadDefinitions(cfg.DigestsPath())
	if err != nil {
		return nil, fmt.Errorf("load digests: %w", err)
	}
	return digest.NewService(defs, copilot, sessions, notifiers), nil
}
