package platform

import (
	"context"
	"net/url"
	"strconv"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// datasetOps covers dataset inventory and lifecycle. Deletion and profile
// enablement change platform state and are approval-gated.
func datasetOps(c *Client) []schema.Operation {
	return []schema.Operation{
		&op{
			client:      c,
			name:        "list_datasets",
			description: "List datasets in the current sandbox.",
			parameters: `{
				"type": "object",
				"properties": {
					"limit": {"type": "integer", "description": "Max datasets to return (default 20)"}
				}
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				q := url.Values{}
				q.Set("limit", strconv.Itoa(optInt(args, "limit", 20)))
				return c.get(ctx, "/catalog/datasets", q)
			},
		},
		&op{
			client:      c,
			name:        "get_dataset",
			description: "Get one dataset's details: schema reference, tags, ingestion stats.",
			parameters: `{
				"type": "object",
				"properties": {
					"datasetId": {"type": "string", "description": "Dataset identifier"}
				},
				"required": ["datasetId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "datasetId")
				if err != nil {
					return nil, err
				}
				out, err := c.get(ctx, "/catalog/datasets/"+id, nil)
				return out, notFound(err, "dataset", id)
			},
		},
		&op{
			client:      c,
			name:        "list_dataset_batches",
			description: "List recent ingestion batches for one dataset.",
			parameters: `{
				"type": "object",
				"properties": {
					"datasetId": {"type": "string", "description": "Dataset identifier"},
					"limit": {"type": "integer", "description": "Max batches to return (default 20)"}
				},
				"required": ["datasetId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "datasetId")
				if err != nil {
					return nil, err
				}
				q := url.Values{}
				q.Set("limit", strconv.Itoa(optInt(args, "limit", 20)))
				out, err := c.get(ctx, "/catalog/datasets/"+id+"/batches", q)
				return out, notFound(err, "dataset", id)
			},
		},
		&op{
			client:      c,
			name:        "enable_dataset_profile",
			description: "Enable a dataset for real-time profile ingestion.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"datasetId": {"type": "string", "description": "Dataset identifier"}
				},
				"required": ["datasetId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "datasetId")
				if err != nil {
					return nil, err
				}
				out, err := c.post(ctx, "/catalog/datasets/"+id+"/profile", nil)
				return out, notFound(err, "dataset", id)
			},
		},
		&op{
			client:      c,
			name:        "delete_dataset",
			description: "Permanently delete a dataset and all of its data.",
			approval:    true,
			parameters: `{
				"type": "object",
				"properties": {
					"datasetId": {"type": "string", "description": "Dataset identifier"}
				},
				"required": ["datasetId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "datasetId")
				if err != nil {
					return nil, err
				}
				out, err := c.delete(ctx, "/catalog/datasets/"+id)
				return out, notFound(err, "dataset", id)
			},
		},
	}
}
