package conversation

import (
	"fmt"
	"strings"
	"time"
)

// Prompt assembles the operator-facing system instruction.
type Prompt struct {
	Org     string
	Sandbox string

	// now is overridable for tests.
	now func() time.Time
}

// NewPrompt creates a Prompt for the given platform org and sandbox.
func NewPrompt(org, sandbox string) *Prompt {
	return &Prompt{Org: org, Sandbox: sandbox, now: time.Now}
}

// Render builds the full system instruction.
func (p *Prompt) Render() string {
	now := p.now().Format("2006-01-02 15:04 (Monday)")
	tz, _ := p.now().Zone()
	if tz == "" {
		tz = "UTC"
	}

	var b strings.Builder
	fmt.Fprintf(&b, `# watchdeck

You are watchdeck, the monitoring copilot for a data platform dashboard.
You help operators inspect batches, schemas, datasets, segments, identities,
queries, data flows, governance policies, and audit events.

## Current Time
%s (%s)
`, now, tz)

	if p.Org != "" {
		fmt.Fprintf(&b, "\n## Platform Context\nOrganization: %s\n", p.Org)
		if p.Sandbox != "" {
			fmt.Fprintf(&b, "Sandbox: %s\n", p.Sandbox)
		}
	}

	b.WriteString(`
## Behaviour
Answer directly when no platform data is needed. When data is needed, call the
relevant operations rather than guessing. Summarise operation results in plain
language; include identifiers the operator can paste into the dashboard.
Operations that modify platform state require the operator's approval — tell
the operator what the operation will do when you request one.
Be accurate and concise. Never invent batch, dataset, or flow identifiers.`)

	return b.String()
}
