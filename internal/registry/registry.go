// Package registry holds the immutable catalog of platform operations the
// LLM may invoke. The catalog is assembled once at process start and is
// read-only afterwards, so lookups need no locking.
package registry

import (
	"encoding/json"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// Info describes one operation without exposing its handler. Used to
// advertise capabilities to providers and the dashboard.
type Info struct {
	Name             string          `json:"name"`
	Description      string          `json:"description"`
	Parameters       json.RawMessage `json:"parameters"`
	RequiresApproval bool            `json:"requiresApproval"`
}

// Registry holds a set of named operations and exposes them for execution.
type Registry struct {
	ops   map[string]schema.Operation
	order []string // registration order, for deterministic listings
}

// Get returns the operation with the given name. The second return value
// reports whether the name is registered.
func (r *Registry) Get(name string) (schema.Operation, bool) {
	op, ok := r.ops[name]
	return op, ok
}

// Has reports whether name resolves to a registered operation.
func (r *Registry) Has(name string) bool {
	_, ok := r.ops[name]
	return ok
}

// Len returns the number of registered operations.
func (r *Registry) Len() int { return len(r.ops) }

// Names returns all registered operation names in registration order.
func (r *Registry) Names() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

// List returns the catalog in registration order, handlers excluded.
func (r *Registry) List() []Info {
	out := make([]Info, 0, len(r.order))
	for _, name := range r.order {
		op := r.ops[name]
		out = append(out, Info{
			Name:             op.Name(),
			Description:      op.Description(),
			Parameters:       op.Parameters(),
			RequiresApproval: op.RequiresApproval(),
		})
	}
	return out
}

// Definitions returns all operation declarations in OpenAI function-calling
// format, in registration order. Provider adapters convert this to their own
// wire format.
func (r *Registry) Definitions() []map[string]any {
	list := make([]map[string]any, 0, len(r.order))
	for _, name := range r.order {
		op := r.ops[name]
		var params any
		if err := json.Unmarshal(op.Parameters(), &params); err != nil {
			params = map[string]any{"type": "object", "properties": map[string]any{}}
		}
		list = append(list, map[string]any{
			"type": "function",
			"function": map[string]any{
				"name":        op.Name(),
				"description": op.Description(),
				"parameters":  params,
			},
		})
	}
	return list
}
