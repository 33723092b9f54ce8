package llmutils

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/watchdeck/watchdeck/internal/schema"
)

var reThink = regexp.MustCompile(`(?s)<think>.*?</think>`)

// Truncate shortens a string to at most n characters, adding "..." if it was truncated.
func Truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

// StripThink removes <think>…</think> blocks that some models embed.
func StripThink(s string) string {
	return strings.TrimSpace(reThink.ReplaceAllString(s, ""))
}

// StringOrDefault returns s if it's not empty, or def if s is empty.
func StringOrDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// OperationHint generates a short hint string for a list of operation
// requests, e.g. `list_batches("failed")`.
func OperationHint(reqs []schema.OperationRequest) string {
	parts := make([]string, 0, len(reqs))
	for _, req := range reqs {
		var firstVal string
		for _, v := range req.Arguments {
			if s, ok := v.(string); ok {
				firstVal = s
			}
			break
		}
		if firstVal == "" {
			parts = append(parts, req.Name)
			continue
		}
		if len(firstVal) > 40 {
			firstVal = firstVal[:40] + "…"
		}
		parts = append(parts, fmt.Sprintf("%s(%q)", req.Name, firstVal))
	}
	return strings.Join(parts, ", ")
}
