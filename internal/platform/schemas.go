package platform

import (
	"context"
	"net/url"
	"strconv"

	"github.com/watchdeck/watchdeck/internal/schema"
)

// schemaOps covers the schema registry. Everything here is read-only.
func schemaOps(c *Client) []schema.Operation {
	return []schema.Operation{
		&op{
			client:      c,
			name:        "list_schemas",
			description: "List schemas in the schema registry.",
			parameters: `{
				"type": "object",
				"properties": {
					"limit": {"type": "integer", "description": "Max schemas to return (default 20)"}
				}
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				q := url.Values{}
				q.Set("limit", strconv.Itoa(optInt(args, "limit", 20)))
				return c.get(ctx, "/registry/schemas", q)
			},
		},
		&op{
			client:      c,
			name:        "get_schema",
			description: "Get one schema's full structure, including field groups.",
			parameters: `{
				"type": "object",
				"properties": {
					"schemaId": {"type": "string", "description": "Schema identifier"}
				},
				"required": ["schemaId"]
			}`,
			handler: func(ctx context.Context, c *Client, args map[string]any) (any, error) {
				id, err := stringArg(args, "schemaId")
				if err != nil {
					return nil, err
				}
				out, err := c.get(ctx, "/registry/schemas/"+id, nil)
				return out, notFound(err, "schema", id)
			},
		},
		&op{
			client:      c,
			name:        "list_field_groups",
			description: "List reusable field groups available for schema composition.",
			parameters:  noParams,
			handler: func(ctx context.Context, c *Client, _ map[string]any) (any, error) {
				return c.get(ctx, "/registry/fieldgroups", nil)
			},
		},
		&op{
			client:      c,
			name:        "list_classes",
			description: "List the base classes schemas can extend.",
			parameters:  noParams,
			handler: func(ctx context.Context, c *Client, _ map[string]any) (any, error) {
				return c.get(ctx, "/registry/classes", nil)
			},
		},
	}
}
