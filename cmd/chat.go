package cmd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/watchdeck/watchdeck/internal/agent"
	"github.com/watchdeck/watchdeck/internal/config"
	"github.com/watchdeck/watchdeck/internal/dependency"
	"github.com/watchdeck/watchdeck/internal/session"
)

var (
	chatMessage string
	chatSession string
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Talk to the copilot",
	RunE:  runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatMessage, "message", "m", "", "Send a single message and exit")
	chatCmd.Flags().StringVarP(&chatSession, "session", "s", "cli:direct", "Session key")
}

var exitCommands = map[string]bool{
	"exit":  true,
	"quit":  true,
	"/exit": true,
	"/quit": true,
	":q":    true,
}

func runChat(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load(config.ConfigPath())
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	container, err := dependency.New(cfg)
	if err != nil {
		return err
	}

	copilot := container.Copilot()
	sessions := container.Sessions()

	if chatMessage != "" {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		return converseOnce(ctx, copilot, sessions, chatSession, chatMessage)
	}

	return runInteractive(copilot, sessions)
}

// runInteractive reads lines from stdin and sends each to the copilot,
// prompting inline for any operation that needs approval.
func runInteractive(copilot *agent.Copilot, sessions *session.Manager) error {
	fmt.Printf("%s Interactive mode (type 'exit' or Ctrl+C to quit)\n\n", logo)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listenForSignals(cancel)

	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("You: ")

		if !scanner.Scan() {
			fmt.Println("\nGoodbye!")
			return nil
		}

		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		if exitCommands[strings.ToLower(line)] {
			fmt.Println("Goodbye!")
			return nil
		}

		if err := converseOnce(ctx, copilot, sessions, chatSession, line); err != nil {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
	}
}

// converseOnce runs one full conversational turn, walking the approval
// prompts until the copilot produces a final answer, then persists it.
func converseOnce(ctx context.Context, copilot *agent.Copilot, sessions *session.Manager, key, text string) error {
	sess := sessions.GetOrCreate(key)

	fmt.Fprintf(os.Stderr, "  ↳ thinking...\n")
	outcome, err := copilot.Converse(ctx, sess.History(0), text)
	if err != nil {
		return err
	}

	stdin := bufio.NewScanner(os.Stdin)
	for outcome.Pending != nil {
		req := outcome.Pending.Requests[0]
		fmt.Printf("\n%s wants to run %s", logo, req.Operation)
		if len(req.Arguments) > 0 {
			args, _ := json.Marshal(req.Arguments)
			fmt.Printf(" %s", args)
		}
		fmt.Print("\nApprove? [y/N]: ")

		approve := false
		if stdin.Scan() {
			answer := strings.ToLower(strings.TrimSpace(stdin.Text()))
			approve = answer == "y" || answer == "yes"
		}

		outcome, err = copilot.Resume(ctx, outcome.Pending, req.RequestID, approve)
		if err != nil {
			return err
		}
	}

	printResponse(outcome.FinalText)
	if len(outcome.OperationsUsed) > 0 {
		fmt.Fprintf(os.Stderr, "  (operations: %s)\n", strings.Join(outcome.OperationsUsed, ", "))
	}

	if len(outcome.NewMessages) > 0 {
		sess.AddMessages(outcome.NewMessages)
		if err := sessions.Save(sess); err != nil {
			return fmt.Errorf("save session: %w", err)
		}
	}
	return nil
}

// listenForSignals cancels ctx on SIGINT or SIGTERM and exits.
func listenForSignals(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		fmt.Println("\nGoodbye!")
		cancel()
		os.Exit(0)
	}()
}

func printResponse(text string) {
	fmt.Printf("\n%s watchdeck\n%s\n\n", logo, text)
}
