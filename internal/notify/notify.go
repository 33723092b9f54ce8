// Package notify pushes operator-facing alerts (pending approvals, digest
// output) to configured channels. Notifiers are outbound-only; the
// dashboard gateway is where decisions come back in.
package notify

import (
	"context"
	"log/slog"
)

// Notifier delivers one message to one channel.
type Notifier interface {
	Name() string
	Send(ctx context.Context, text string) error
}

// Set broadcasts to every configured notifier. Delivery is best-effort:
// one failing channel never blocks the others, failures are logged.
type Set struct {
	notifiers []Notifier
}

// NewSet builds a Set from the enabled notifiers.
func NewSet(notifiers ...Notifier) *Set {
	return &Set{notifiers: notifiers}
}

// Broadcast sends text to every notifier.
func (s *Set) Broadcast(ctx context.Context, text string) {
	for _, n := range s.notifiers {
		if err := n.Send(ctx, text); err != nil {
			slog.Warn("notification failed", "channel", n.Name(), "error", err)
		}
	}
}

// Len returns the number of configured notifiers.
func (s *Set) Len() int { return len(s.notifiers) }
