// Package schema contains the core contracts shared across watchdeck packages.
// Concrete implementations live in their respective packages; this package is
// the single canonical source of truth for every shared type definition.
package schema

import (
	"context"
	"encoding/json"
)

// Operation is the interface every LLM-callable platform operation must
// satisfy. Operations are registered once at startup and never mutated.
type Operation interface {
	Name() string
	Description() string
	// Parameters returns the JSON Schema (as raw JSON bytes) for this
	// operation's arguments.
	Parameters() json.RawMessage
	// RequiresApproval reports whether a human must confirm each invocation
	// before the handler runs.
	RequiresApproval() bool
	// Execute runs the operation. The result must be JSON-serialisable.
	// Failures are returned as one of the typed errors in errors.go; anything
	// else is converted to an UpstreamError at the execution boundary.
	Execute(ctx context.Context, args map[string]any) (any, error)
}
