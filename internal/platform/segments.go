package platform

import (
	"context"
	"net/url"
	"strconv"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// segmentOps covers audience segment definitions and evaluation jobs.
// Kicking off a job and deleting a definition are approval-gated.
func segmentOps(c *Client) []schema.Operation {
	return []schema.Operation{
		&op{
			client:      c,
			name:        "list_segments",
			description: "List audience segment definitions.",
			parameters: `{
				"type": "object",
				"properties": {
					"limit": {"type": "integer", "description": "Max definitions to return (default 20)"}
				}
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				q := url.Values{}
				q.Set("limit", strconv.Itoa(optInt(args, "limit", 20)))
				return c.get(ctx, "/segments/definitions", q)
			},
		},
		&op{
			client:      c,
			name:        "get_segment",
			description: "Get one segment definition, including its expression and last evaluation.",
			parameters: `{
				"type": "object",
				"properties": {
					"segmentId": {"type": "string", "description": "Segment definition identifier"}
				},
				"required": ["segmentId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "segmentId")
				if err != nil {
					return nil, err
				}
				out, err := c.get(ctx, "/segments/definitions/"+id, nil)
				return out, notFound(err, "segment", id)
			},
		},
		&op{
			client:      c,
			name:        "get_segment_job",
			description: "Get the status and result counts of a segment evaluation job.",
			parameters: `{
				"type": "object",
				"properties": {
					"jobId": {"type": "string", "description": "Evaluation job identifier"}
				},
				"required": ["jobId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "jobId")
				if err != nil {
					return nil, err
				}
				out, err := c.get(ctx, "/segments/jobs/"+id, nil)
				return out, notFound(err, "segment job", id)
			},
		},
		&op{
			client:      c,
			name:        "create_segment_job",
			description: "Kick off a segment evaluation job. Consumes compute and updates audience membership.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"segmentId": {"type": "string", "description": "Segment definition to evaluate"}
				},
				"required": ["segmentId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "segmentId")
				if err != nil {
					return nil, err
				}
				body := map[string]any{"segmentId": id}
				out, err := c.post(ctx, "/segments/jobs", body)
				return out, notFound(err, "segment", id)
			},
		},
		&op{
			client:      c,
			name:        "delete_segment",
			description: "Delete a segment definition. Downstream activations lose this audience.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"segmentId": {"type": "string", "description": "Segment definition identifier"}
				},
				"required": ["segmentId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "segmentId")
				if err != nil {
					return nil, err
				}
				out, err := c.delete(ctx, "/segments/definitions/"+id)
				return out, notFound(err, "segment", id)
			},
		},
	}
}
