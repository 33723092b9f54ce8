package platform

import (
	"context"
	"net/url"
	"strconv"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// batchOps covers ingestion batches: listing, inspection, failed-record
// retrieval and replay. Replay is the one mutating operation here.
func batchOps(c *Client) []schema.Operation {
	return []schema.Operation{
		&op{
			client:      c,
			name:        "list_batches",
			description: "List ingestion batches, optionally filtered by status or dataset.",
			parameters: `{
				"type": "object",
				"properties": {
					"status": {"type": "string", "enum": ["success", "failed", "processing", "staged", "retrying"], "description": "Filter by batch status"},
					"datasetId": {"type": "string", "description": "Only batches targeting this dataset"},
					"limit": {"type": "integer", "description": "Max batches to return (default 20)"}
				}
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				q := url.Values{}
				if s := optString(args, "status"); s != "" {
					q.Set("status", s)
				}
				if ds := optString(args, "datasetId"); ds != "" {
					q.Set("dataset", ds)
				}
				q.Set("limit", strconv.Itoa(optInt(args, "limit", 20)))
				return c.get(ctx, "/catalog/batches", q)
			},
		},
		&op{
			client:      c,
			name:        "get_batch",
			description: "Get full details for one ingestion batch, including error counts.",
			parameters: `{
				"type": "object",
				"properties": {
					"batchId": {"type": "string", "description": "Batch identifier"}
				},
				"required": ["batchId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "batchId")
				if err != nil {
					return nil, err
				}
				out, err := c.get(ctx, "/catalog/batches/"+id, nil)
				return out, notFound(err, "batch", id)
			},
		},
		&op{
			client:      c,
			name:        "get_batch_errors",
			description: "Fetch the failed records and error diagnostics for a batch.",
			parameters: `{
				"type": "object",
				"properties": {
					"batchId": {"type": "string", "description": "Batch identifier"},
					"limit": {"type": "integer", "description": "Max error records (default 10)"}
				},
				"required": ["batchId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "batchId")
				if err != nil {
					return nil, err
				}
				q := url.Values{}
				q.Set("limit", strconv.Itoa(optInt(args, "limit", 10)))
				out, err := c.get(ctx, "/catalog/batches/"+id+"/failed", q)
				return out, notFound(err, "batch", id)
			},
		},
		&op{
			client:      c,
			name:        "replay_batch",
			description: "Re-ingest a failed batch. This writes data into the target dataset.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"batchId": {"type": "string", "description": "Batch to replay"}
				},
				"required": ["batchId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "batchId")
				if err != nil {
					return nil, err
				}
				out, err := c.post(ctx, "/catalog/batches/"+id+"/replay", nil)
				return out, notFound(err, "batch", id)
			},
		},
	}
}
