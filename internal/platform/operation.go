package platform

import (
	"context"
	"encoding/json"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// op is one declaratively defined catalog operation. The handler is a thin
// parameterized call through the shared client; anything beyond argument
// plumbing belongs in the platform, not here.
type op struct {
	client      *Client
	name        string
	description string
	parameters  string
	approval    bool
	handler     func(ctx context.Context, c *Client, args map[string]any) (any, error)
}

func (o *op) Name() string                { return o.name }
func (o *op) Description() string         { return o.description }
func (o *op) RequiresApproval() bool      { return o.approval }
func (o *op) Parameters() json.RawMessage { return json.RawMessage(o.parameters) }

func (o *op) Execute(ctx context.Context, args map[string]any) (any, error) {
	return o.handler(ctx, o.client, args)
}

var _ schema.Operation = (*op)(nil)

// noParams is the schema for operations that take no arguments.
const noParams = `{"type":"object","properties":{}}`
