package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/watchdeck/watchdeck/internal/config"
)

var onboardCmd = &cobra.Command{
	Use:   "onboard",
	Short: "Initialize configuration and workspace",
	RunE:  runOnboard,
}

func runOnboard(_ *cobra.Command, _ []string) error {
	cfgPath := config.ConfigPath()

	if _, err := os.Stat(cfgPath); err == nil {
		fmt.Printf("Config already exists at %s\n", cfgPath)
		fmt.Printf("Press Enter to refresh (keep existing values) or Ctrl+C to cancel: ")
		fmt.Scanln()
		existing, loadErr := config.Load(cfgPath)
		if loadErr != nil {
			def := config.DefaultConfig()
			existing = &def
		}
		if err := config.Save(existing, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Config refreshed at %s\n", cfgPath)
	} else {
		cfg := config.DefaultConfig()
		if err := config.Save(&cfg, cfgPath); err != nil {
			return err
		}
		fmt.Printf("✓ Created config at %s\n", cfgPath)
	}

	def := config.DefaultConfig()
	workspace := def.WorkspacePath()
	if err := os.MkdirAll(workspace, 0o755); err != nil {
		return fmt.Errorf("create workspace: %w", err)
	}
	fmt.Printf("✓ Workspace at %s\n", workspace)

	createDigestTemplate(def.DigestsPath())

	fmt.Printf("\n%s watchdeck is ready!\n\n", logo)
	fmt.Println("Next steps:")
	fmt.Printf("  1. Add your LLM API key and platform credentials to %s\n", cfgPath)
	fmt.Printf("  2. Chat: watchdeck chat -m \"any failed batches today?\"\n")
	fmt.Println("  3. Serve the dashboard gateway: watchdeck serve")
	return nil
}

// createDigestTemplate writes a commented starter digests file unless one exists.
func createDigestTemplate(path string) {
	if _, err := os.Stat(path); err == nil {
		return
	}
	template := `# Scheduled digests. Each digest runs its prompt through the copilot on the
# given cron schedule and (optionally) pushes the answer to the configured
# notifiers.
digests: []
#  - name: morning-ingestion
#    schedule: "0 9 * * 1-5"
#    prompt: "Summarise batch ingestion failures from the last 24 hours."
#    notify: true
`
	if err := os.WriteFile(path, []byte(template), 0o644); err == nil {
		fmt.Printf("  Created %s\n", path)
	}
}
