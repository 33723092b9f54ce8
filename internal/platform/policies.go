package platform

import (
	"context"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// policyOps covers data governance policies. Evaluation is read-only;
// flipping a policy on or off changes enforcement and is approval-gated.
func policyOps(c *Client) []schema.Operation {
	return []schema.Operation{
		&op{
			client:      c,
			name:        "list_policies",
			description: "List data governance policies and whether each is enabled.",
			parameters:  noParams,
			handler: func(ctx context.Context, c *Client, _ map[string]any) (any, error) {
				return c.get(ctx, "/policies", nil)
			},
		},
		&op{
			client:      c,
			name:        "get_policy",
			description: "Get one governance policy's rules and enforcement status.",
			parameters: `{
				"type": "object",
				"properties": {
					"policyId": {"type": "string", "description": "Policy identifier"}
				},
				"required": ["policyId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "policyId")
				if err != nil {
					return nil, err
				}
				out, err := c.get(ctx, "/policies/"+id, nil)
				return out, notFound(err, "policy", id)
			},
		},
		&op{
			client:      c,
			name:        "evaluate_policies",
			description: "Check whether an action on a dataset would violate governance policies.",
			parameters: `{
				"type": "object",
				"properties": {
					"datasetId": {"type": "string", "description": "Dataset the action targets"},
					"action": {"type": "string", "description": "Marketing action to evaluate, e.g. export or email_targeting"}
				},
				"required": ["datasetId", "action"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				ds, err := stringArg(args, "datasetId")
				if err != nil {
					return nil, err
				}
				action, err := stringArg(args, "action")
				if err != nil {
					return nil, err
				}
				body := map[string]any{"datasetId": ds, "action": action}
				out, err := c.post(ctx, "/policies/evaluate", body)
				return out, notFound(err, "dataset", ds)
			},
		},
		&op{
			client:      c,
			name:        "enable_policy",
			description: "Enable enforcement of a governance policy.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"policyId": {"type": "string", "description": "Policy identifier"}
				},
				"required": ["policyId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "policyId")
				if err != nil {
					return nil, err
				}
				out, err := c.post(ctx, "/policies/"+id+"/enable", nil)
				return out, notFound(err, "policy", id)
			},
		},
		&op{
			client:      c,
			name:        "disable_policy",
			description: "Disable enforcement of a governance policy.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"policyId": {"type": "string", "description": "Policy identifier"}
				},
				"required": ["policyId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "policyId")
				if err != nil {
					return nil, err
				}
				out, err := c.post(ctx, "/policies/"+id+"/disable", nil)
				return out, notFound(err, "policy", id)
			},
		},
	}
}
