package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/watchdeck/watchdeck/internal/config"
	"github.com/watchdeck/watchdeck/internal/digest"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show watchdeck status",
	RunE:  runStatus,
}

func runStatus(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	fmt.Printf("%s watchdeck Status\n\n", logo)

	_, statErr := os.Stat(cfgPath)
	cfgMark := "✗"
	if statErr == nil {
		cfgMark = "✓"
	}
	fmt.Printf("Config:    %s %s\n", cfgPath, cfgMark)

	cfg, err := config.Load(cfgPath)
	if err != nil {
		fmt.Printf("  (could not load config: %v)\n", err)
		return nil
	}

	ws := cfg.WorkspacePath()
	_, wsErr := os.Stat(ws)
	wsMark := "✗"
	if wsErr == nil {
		wsMark = "✓"
	}
	fmt.Printf("Workspace: %s %s\n", ws, wsMark)

	name, _ := cfg.ActiveProvider()
	fmt.Printf("Provider:  %s\n", name)
	fmt.Printf("Model:     %s\n\n", cfg.Agents.Defaults.Model)

	fmt.Println("Platform:")
	if cfg.Platform.BaseURL != "" {
		fmt.Printf("  API:     %s\n", cfg.Platform.BaseURL)
	} else {
		fmt.Println("  API:     (not set)")
	}
	if cfg.Platform.OrgID != "" {
		fmt.Printf("  Org:     %s (sandbox %s)\n", cfg.Platform.OrgID, cfg.Platform.Sandbox)
	} else {
		fmt.Println("  Org:     (not set)")
	}
	tokenMark := "(not set)"
	if cfg.Platform.AccessToken != "" {
		tokenMark = "✓"
	}
	fmt.Printf("  Token:   %s\n\n", tokenMark)

	fmt.Println("Notifiers:")
	slackMark := "(disabled)"
	if cfg.Notify.Slack.Enabled {
		slackMark = "✓ " + cfg.Notify.Slack.Channel
	}
	fmt.Printf("  %-10s %s\n", "slack", slackMark)
	telegramMark := "(disabled)"
	if cfg.Notify.Telegram.Enabled {
		telegramMark = "✓"
	}
	fmt.Printf("  %-10s %s\n\n", "telegram", telegramMark)

	defs, err := digest.LoadDefinitions(cfg.DigestsPath())
	if err != nil {
		fmt.Printf("Digests:   (invalid: %v)\n", err)
		return nil
	}
	fmt.Printf("Digests:   %d defined (%s)\n", len(defs), cfg.DigestsPath())
	return nil
}
