package registry

import (
	"fmt"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// Builder accumulates operations during the construction phase.
// Call Build() to produce an immutable Registry ready for use.
type Builder struct {
	ops   map[string]schema.Operation
	order []string
	dup   error // first duplicate registration, reported at Build
}

// NewBuilder returns a fresh Builder.
func NewBuilder() *Builder {
	return &Builder{ops: make(map[string]schema.Operation)}
}

// With adds one operation and returns the builder, enabling chaining.
// Registering the same name twice poisons the builder; Build reports it.
func (b *Builder) With(op schema.Operation) *Builder {
	name := op.Name()
	if _, exists := b.ops[name]; exists {
		if b.dup == nil {
			b.dup = fmt.Errorf("duplicate operation %q", name)
		}
		return b
	}
	b.ops[name] = op
	b.order = append(b.order, name)
	return b
}

// WithAll adds a batch of operations.
func (b *Builder) WithAll(ops ...schema.Operation) *Builder {
	for _, op := range ops {
		b.With(op)
	}
	return b
}

// Build produces an immutable Registry from the accumulated operations.
// A duplicate name is an error: the process must fail at startup, not at
// call time.
func (b *Builder) Build() (*Registry, error) {
	if b.dup != nil {
		return nil, b.dup
	}
	ops := make(map[string]schema.Operation, len(b.ops))
	for k, v := range b.ops {
		ops[k] = v
	}
	order := make([]string, len(b.order))
	copy(order, b.order)
	return &Registry{ops: ops, order: order}, nil
}
