package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/watchdeck/watchdeck/internal/config"
	"github.com/watchdeck/watchdeck/internal/platform"
)

var opsCmd = &cobra.Command{
	Use:   "ops",
	Short: "List the platform operations the copilot can call",
	RunE:  runOps,
}

func runOps(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	p := cfg.Platform
	client := platform.NewClient(p.BaseURL, p.AccessToken, p.OrgID, p.Sandbox)
	reg, err := platform.BuildRegistry(client)
	if err != nil {
		return err
	}

	fmt.Printf("%-28s %-10s %s\n", "Operation", "Approval", "Description")
	fmt.Println(strings.Repeat("-", 96))
	for _, info := range reg.List() {
		approval := ""
		if info.RequiresApproval {
			approval = "required"
		}
		fmt.Printf("%-28s %-10s %s\n", info.Name, approval, truncStr(info.Description, 56))
	}
	fmt.Printf("\n%d operations registered.\n", reg.Len())
	return nil
}

func truncStr(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max-1] + "…"
}
