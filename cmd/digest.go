package cmd

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchdeck/watchdeck/internal/config"
	"github.com/watchdeck/watchdeck/internal/dependency"
	"github.com/watchdeck/watchdeck/internal/digest"
)

var digestCmd = &cobra.Command{
	Use:   "digest",
	Short: "Manage scheduled digests",
}

func init() {
	digestCmd.AddCommand(digestListCmd)
	digestCmd.AddCommand(digestRunCmd)
}

var digestListCmd = &cobra.Command{
	Use:   "list",
	Short: "List configured digests",
	RunE: func(_ *cobra.Command, _ []string) error {
		cfg, err := config.Load(config.ConfigPath())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		defs, err := digest.LoadDefinitions(cfg.DigestsPath())
		if err != nil {
			return err
		}
		if len(defs) == 0 {
			fmt.Println("No digests configured.")
			return nil
		}
		fmt.Printf("%-24s %-16s %-8s %s\n", "Name", "Schedule", "Notify", "Prompt")
		fmt.Println(strings.Repeat("-", 92))
		for _, d := range defs {
			notify := ""
			if d.Notify {
				notify = "yes"
			}
			fmt.Printf("%-24s %-16s %-8s %s\n", d.Name, d.Schedule, notify, truncStr(d.Prompt, 40))
		}
		return nil
	},
}

var digestRunCmd = &cobra.Command{
	Use:   "run <name>",
	Short: "Run a digest now",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load(config.ConfigPath())
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		container, err := dependency.New(cfg)
		if err != nil {
			return err
		}

		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()

		text, err := container.Digests().Run(ctx, args[0])
		if err != nil {
			return err
		}
		printResponse(text)
		return nil
	},
}
