// Package digest runs scheduled copilot turns. Definitions live in a YAML
// file the operator edits; each one fires a prompt against its own session
// on a cron schedule and optionally pushes the answer to the notifiers.
package digest

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	robfigcron "github.com/robfig/cron/v3"
	"gopkg.in/yaml.v3"

	"github.com/watchdeck/watchdeck/internal/agent"
	"github.com/watchdeck/watchdeck/internal/notify"
	"github.com/watchdeck/watchdeck/internal/schema"
	"github.com/watchdeck/watchdeck/internal/session"
)

// Definition is one scheduled digest from the YAML file.
type Definition struct {
	Name     string `yaml:"name"`
	Schedule string `yaml:"schedule"` // standard 5-field cron expression
	Prompt   string `yaml:"prompt"`
	Notify   bool   `yaml:"notify"`
}

type definitionsFile struct {
	Digests []Definition `yaml:"digests"`
}

var cronParser = robfigcron.NewParser(
	robfigcron.Minute | robfigcron.Hour | robfigcron.Dom | robfigcron.Month | robfigcron.Dow,
)

// LoadDefinitions reads and validates the digest YAML file. A missing file
// is not an error: digests are optional.
func LoadDefinitions(path string) ([]Definition, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read digests file: %w", err)
	}

	var f definitionsFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse digests file: %w", err)
	}

	seen := map[string]bool{}
	for _, d := range f.Digests {
		if d.Name == "" || d.Prompt == "" {
			return nil, fmt.Errorf("digest needs both name and prompt: %+v", d)
		}
		if seen[d.Name] {
			return nil, fmt.Errorf("duplicate digest %q", d.Name)
		}
		seen[d.Name] = true
		if _, err := cronParser.Parse(d.Schedule); err != nil {
			return nil, fmt.Errorf("digest %q: bad schedule %q: %w", d.Name, d.Schedule, err)
		}
	}
	return f.Digests, nil
}

// Converser is the copilot surface the digest service needs.
type Converser interface {
	Converse(ctx context.Context, history []schema.Message, userText string) (*agent.Outcome, error)
	Resume(ctx context.Context, p *agent.PendingApproval, requestID string, approve bool) (*agent.Outcome, error)
}

// Service schedules and fires digests.
type Service struct {
	defs      []Definition
	copilot   Converser
	sessions  *session.Manager
	notifiers *notify.Set
	cron      *robfigcron.Cron
}

// NewService creates a digest Service over already-loaded definitions.
func NewService(defs []Definition, copilot Converser, sessions *session.Manager, notifiers *notify.Set) *Service {
	return &Service{
		defs:      defs,
		copilot:   copilot,
		sessions:  sessions,
		notifiers: notifiers,
		cron:      robfigcron.New(),
	}
}

// Start arms every digest and blocks until ctx is cancelled.
func (s *Service) Start(ctx context.Context) error {
	for _, d := range s.defs {
		d := d
		if _, err := s.cron.AddFunc(d.Schedule, func() { s.Fire(ctx, d) }); err != nil {
			return fmt.Errorf("schedule digest %q: %w", d.Name, err)
		}
	}

	s.cron.Start()
	slog.Info("digests started", "count", len(s.defs))

	<-ctx.Done()
	<-s.cron.Stop().Done()
	return ctx.Err()
}

// Run fires the named digest immediately and returns its answer. Used by the
// CLI; scheduled fires go through Fire and report via notifiers instead.
func (s *Service) Run(ctx context.Context, name string) (string, error) {
	for _, d := range s.defs {
		if d.Name != name {
			continue
		}

		sess := s.sessions.GetOrCreate("digest:" + d.Name)
		out, declined, err := s.converse(ctx, sess, d)
		if err != nil {
			return "", err
		}
		if declined > 0 {
			slog.Info("digest declined gated operations", "name", d.Name, "declined", declined)
		}
		if len(out.NewMessages) > 0 {
			sess.AddMessages(out.NewMessages)
			if err := s.sessions.Save(sess); err != nil {
				slog.Warn("digest session save failed", "name", d.Name, "error", err)
			}
		}
		return out.FinalText, nil
	}
	return "", fmt.Errorf("no digest named %q", name)
}

// Fire runs one digest turn now. There is no operator to answer an approval
// prompt, so any gated operations the turn requests are declined and the
// notification says so.
func (s *Service) Fire(ctx context.Context, d Definition) {
	slog.Info("running digest", "name", d.Name)

	sess := s.sessions.GetOrCreate("digest:" + d.Name)
	out, declined, err := s.converse(ctx, sess, d)
	if err != nil {
		slog.Error("digest turn failed", "name", d.Name, "error", err)
		return
	}

	if len(out.NewMessages) > 0 {
		sess.AddMessages(out.NewMessages)
		if err := s.sessions.Save(sess); err != nil {
			slog.Warn("digest session save failed", "name", d.Name, "error", err)
		}
	}

	if d.Notify && out.FinalText != "" {
		text := fmt.Sprintf("[%s] %s", d.Name, out.FinalText)
		if declined > 0 {
			text = fmt.Sprintf("%s (declined %d operation(s) that needed approval)", text, declined)
		}
		s.notifiers.Broadcast(ctx, text)
	}
}

// converse runs the digest prompt and declines every approval-gated request
// the turn parks, so the turn always settles and nothing is left pending.
func (s *Service) converse(ctx context.Context, sess *session.Session, d Definition) (*agent.Outcome, int, error) {
	out, err := s.copilot.Converse(ctx, sess.History(0), d.Prompt)
	if err != nil {
		return nil, 0, err
	}

	declined := 0
	for out.Pending != nil {
		req := out.Pending.Requests[0]
		slog.Warn("digest declining gated operation", "name", d.Name, "operation", req.Operation)
		out, err = s.copilot.Resume(ctx, out.Pending, req.RequestID, false)
		if err != nil {
			return nil, declined, err
		}
		declined++
	}
	return out, declined, nil
}
