package platform

import (
	"context"
	"net/url"
	"strconv"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// flowOps covers dataflows and their runs. Pausing, resuming and restarting
// change ingestion behavior and are approval-gated.
func flowOps(c *Client) []schema.Operation {
	return []schema.Operation{
		&op{
			client:      c,
			name:        "list_flows",
			description: "List dataflows and their current state.",
			parameters: `{
				"type": "object",
				"properties": {
					"limit": {"type": "integer", "description": "Max flows to return (default 20)"}
				}
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				q := url.Values{}
				q.Set("limit", strconv.Itoa(optInt(args, "limit", 20)))
				return c.get(ctx, "/flow/flows", q)
			},
		},
		&op{
			client:      c,
			name:        "get_flow",
			description: "Get one dataflow's configuration and health.",
			parameters: `{
				"type": "object",
				"properties": {
					"flowId": {"type": "string", "description": "Dataflow identifier"}
				},
				"required": ["flowId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "flowId")
				if err != nil {
					return nil, err
				}
				out, err := c.get(ctx, "/flow/flows/"+id, nil)
				return out, notFound(err, "flow", id)
			},
		},
		&op{
			client:      c,
			name:        "list_flow_runs",
			description: "List recent runs for a dataflow, newest first.",
			parameters: `{
				"type": "object",
				"properties": {
					"flowId": {"type": "string", "description": "Dataflow identifier"},
					"limit": {"type": "integer", "description": "Max runs to return (default 10)"}
				},
				"required": ["flowId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "flowId")
				if err != nil {
					return nil, err
				}
				q := url.Values{}
				q.Set("flowId", id)
				q.Set("limit", strconv.Itoa(optInt(args, "limit", 10)))
				out, err := c.get(ctx, "/flow/runs", q)
				return out, notFound(err, "flow", id)
			},
		},
		&op{
			client:      c,
			name:        "pause_flow",
			description: "Pause a dataflow. No new runs start until it is resumed.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"flowId": {"type": "string", "description": "Dataflow identifier"}
				},
				"required": ["flowId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "flowId")
				if err != nil {
					return nil, err
				}
				out, err := c.post(ctx, "/flow/flows/"+id+"/disable", nil)
				return out, notFound(err, "flow", id)
			},
		},
		&op{
			client:      c,
			name:        "resume_flow",
			description: "Resume a paused dataflow.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"flowId": {"type": "string", "description": "Dataflow identifier"}
				},
				"required": ["flowId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "flowId")
				if err != nil {
					return nil, err
				}
				out, err := c.post(ctx, "/flow/flows/"+id+"/enable", nil)
				return out, notFound(err, "flow", id)
			},
		},
		&op{
			client:      c,
			name:        "restart_flow_run",
			description: "Restart a failed dataflow run. Re-processes its source data.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"runId": {"type": "string", "description": "Flow run identifier"}
				},
				"required": ["runId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "runId")
				if err != nil {
					return nil, err
				}
				out, err := c.post(ctx, "/flow/runs/"+id+"/restart", nil)
				return out, notFound(err, "flow run", id)
			},
		},
	}
}
